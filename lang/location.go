// Package lang provides the pieces shared by every stage of the NZSL
// compiler: source locations and located error values.
//
// The compiler passes report failures as *lang.Error values
// carrying a SourceLocation, a category (lexer, parser or compiler) and a
// stable error code, so that tools can match on codes while humans read the
// rendered message.
package lang

import "fmt"

// SourceLocation identifies a range of source text. Lines and columns are
// 1-based; a zero value means "no location". File is a shared pointer so
// that every node of a parsed file aliases a single interned path string.
type SourceLocation struct {
	File        *string
	StartLine   uint32
	StartColumn uint32
	EndLine     uint32
	EndColumn   uint32
}

// Location builds a SourceLocation spanning (startLine,startColumn) to
// (endLine,endColumn) with no file attached.
func Location(startLine, startColumn, endLine, endColumn uint32) SourceLocation {
	return SourceLocation{
		StartLine:   startLine,
		StartColumn: startColumn,
		EndLine:     endLine,
		EndColumn:   endColumn,
	}
}

// LocationInFile is Location with an interned file path.
func LocationInFile(file *string, startLine, startColumn, endLine, endColumn uint32) SourceLocation {
	loc := Location(startLine, startColumn, endLine, endColumn)
	loc.File = file
	return loc
}

// InternFile interns a file path for use in SourceLocation.File.
func InternFile(path string) *string {
	return &path
}

// IsValid reports whether the location points at actual source text.
func (l SourceLocation) IsValid() bool {
	return l.StartLine != 0
}

// ExtendToRight merges the right edge of other into l, producing a location
// covering both. Used when a construct spans several tokens.
func (l SourceLocation) ExtendToRight(other SourceLocation) SourceLocation {
	if !other.IsValid() {
		return l
	}
	if !l.IsValid() {
		return other
	}
	l.EndLine = other.EndLine
	l.EndColumn = other.EndColumn
	return l
}

// String renders the location in the classic diagnostic form:
//
//	(L, C)             single position
//	(L,C1 -> C2)       range on one line
//	(L1 -> L2,C1 -> C2) range across lines
func (l SourceLocation) String() string {
	switch {
	case l.StartLine != l.EndLine:
		return fmt.Sprintf("(%d -> %d,%d -> %d)", l.StartLine, l.EndLine, l.StartColumn, l.EndColumn)
	case l.StartColumn != l.EndColumn:
		return fmt.Sprintf("(%d,%d -> %d)", l.StartLine, l.StartColumn, l.EndColumn)
	default:
		return fmt.Sprintf("(%d, %d)", l.StartLine, l.StartColumn)
	}
}
