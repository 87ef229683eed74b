package lang

import "fmt"

// ErrorCategory identifies which stage produced an error. It is rendered as
// a one-letter prefix of the error code.
type ErrorCategory uint8

const (
	ErrorCategoryLexer    ErrorCategory = iota // L
	ErrorCategoryParser                        // P
	ErrorCategoryCompiler                      // C
)

// Prefix returns the one-letter category prefix.
func (c ErrorCategory) Prefix() string {
	switch c {
	case ErrorCategoryLexer:
		return "L"
	case ErrorCategoryParser:
		return "P"
	default:
		return "C"
	}
}

// Error is a located compilation error. Code is a stable identifier such as
// "UnknownIdentifier"; Message is the rendered prose.
type Error struct {
	Category ErrorCategory
	Code     string
	Location SourceLocation
	Message  string
}

// NewCompilerError builds a compiler-stage error with a formatted message.
func NewCompilerError(location SourceLocation, code string, format string, args ...interface{}) *Error {
	return &Error{
		Category: ErrorCategoryCompiler,
		Code:     code,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error renders the classic diagnostic format:
//
//	(L,C -> L,C): C<Code> error: <message>
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s%s error: %s", e.Location.String(), e.Category.Prefix(), e.Code, e.Message)
}

// FormatVS renders the Visual Studio diagnostic format:
//
//	<path>(L,C): error <prefix><Code>: <message>
//
// path should be the absolute path of the offending file; when the location
// carries a file it takes precedence.
func (e *Error) FormatVS(path string) string {
	if e.Location.File != nil {
		path = *e.Location.File
	}
	return fmt.Sprintf("%s(%d,%d): error %s%s: %s", path, e.Location.StartLine, e.Location.StartColumn, e.Category.Prefix(), e.Code, e.Message)
}

// ErrorCode extracts the code of a *lang.Error, or "" for other errors.
func ErrorCode(err error) string {
	if cerr, ok := err.(*Error); ok {
		return cerr.Code
	}
	return ""
}
