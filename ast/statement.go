package ast

import "github.com/gogpu/nzsl/lang"

// BranchStatement is an if/else-if/else chain. When IsConst is set, the
// conditions must be compile-time constants and the statement is resolved
// during sanitization or constant propagation.
type BranchStatement struct {
	StatementBase

	CondStatements []ConditionalBranch
	ElseStatement  Statement
	IsConst        bool
}

// ConditionalBranch is one (condition, body) pair of a branch statement.
type ConditionalBranch struct {
	Condition Expression
	Statement Statement
}

func (*BranchStatement) NodeType() NodeType    { return NodeBranchStatement }
func (s *BranchStatement) Visit(v StatementVisitor) { v.VisitBranch(s) }

// ConditionalStatement guards a statement with a compile-time condition
// (the cond attribute).
type ConditionalStatement struct {
	StatementBase

	Condition Expression
	Statement Statement
}

func (*ConditionalStatement) NodeType() NodeType    { return NodeConditionalStatement }
func (s *ConditionalStatement) Visit(v StatementVisitor) { v.VisitConditionalStatement(s) }

// DeclareAliasStatement declares an alias of a type or declaration.
type DeclareAliasStatement struct {
	StatementBase

	AliasIndex *uint32
	Name       string
	Expression Expression
}

func (*DeclareAliasStatement) NodeType() NodeType    { return NodeDeclareAliasStatement }
func (s *DeclareAliasStatement) Visit(v StatementVisitor) { v.VisitDeclareAlias(s) }

// DeclareConstStatement declares a compile-time constant.
type DeclareConstStatement struct {
	StatementBase

	ConstIndex *uint32
	Name       string
	Type       ExpressionValue[ExpressionType]
	Expression Expression
}

func (*DeclareConstStatement) NodeType() NodeType    { return NodeDeclareConstStatement }
func (s *DeclareConstStatement) Visit(v StatementVisitor) { v.VisitDeclareConst(s) }

// DeclareExternalStatement declares a block of shader-visible resources
// bound from the host.
type DeclareExternalStatement struct {
	StatementBase

	ExternalVars []ExternalVar
	BindingSet   ExpressionValue[uint32]
}

// ExternalVar is one resource of an external block.
type ExternalVar struct {
	VarIndex       *uint32
	Name           string
	Type           ExpressionValue[ExpressionType]
	BindingIndex   ExpressionValue[uint32]
	BindingSet     ExpressionValue[uint32]
	SourceLocation lang.SourceLocation
}

func (*DeclareExternalStatement) NodeType() NodeType    { return NodeDeclareExternalStatement }
func (s *DeclareExternalStatement) Visit(v StatementVisitor) { v.VisitDeclareExternal(s) }

// DeclareFunctionStatement declares a free function, possibly an entry
// point.
type DeclareFunctionStatement struct {
	StatementBase

	FuncIndex          *uint32
	Name               string
	Parameters         []FunctionParameter
	Statements         []Statement
	ReturnType         ExpressionValue[ExpressionType]
	DepthWrite         ExpressionValue[DepthWriteMode]
	EarlyFragmentTests ExpressionValue[bool]
	EntryStage         ExpressionValue[ShaderStageType]
	IsExported         ExpressionValue[bool]
}

// FunctionParameter is one parameter of a function declaration.
type FunctionParameter struct {
	VarIndex       *uint32
	Name           string
	Type           ExpressionValue[ExpressionType]
	SourceLocation lang.SourceLocation
}

func (*DeclareFunctionStatement) NodeType() NodeType    { return NodeDeclareFunctionStatement }
func (s *DeclareFunctionStatement) Visit(v StatementVisitor) { v.VisitDeclareFunction(s) }

// DeclareOptionStatement declares a compile-time option with an optional
// default value.
type DeclareOptionStatement struct {
	StatementBase

	OptIndex     *uint32
	OptName      string
	OptType      ExpressionValue[ExpressionType]
	DefaultValue Expression
}

func (*DeclareOptionStatement) NodeType() NodeType    { return NodeDeclareOptionStatement }
func (s *DeclareOptionStatement) Visit(v StatementVisitor) { v.VisitDeclareOption(s) }

// DeclareStructStatement declares a struct type.
type DeclareStructStatement struct {
	StatementBase

	StructIndex *uint32
	IsExported  ExpressionValue[bool]
	Description StructDescription
}

// StructDescription is the layout and member list of a struct declaration.
type StructDescription struct {
	Name    string
	Layout  ExpressionValue[MemoryLayout]
	Members []StructMember
}

// StructMember is one member of a struct declaration.
type StructMember struct {
	Name           string
	Type           ExpressionValue[ExpressionType]
	Builtin        ExpressionValue[BuiltinEntry]
	Cond           ExpressionValue[bool]
	LocationIndex  ExpressionValue[uint32]
	SourceLocation lang.SourceLocation
}

func (*DeclareStructStatement) NodeType() NodeType    { return NodeDeclareStructStatement }
func (s *DeclareStructStatement) Visit(v StatementVisitor) { v.VisitDeclareStruct(s) }

// DeclareVariableStatement declares a local variable.
type DeclareVariableStatement struct {
	StatementBase

	VarIndex          *uint32
	VarName           string
	VarType           ExpressionValue[ExpressionType]
	InitialExpression Expression
}

func (*DeclareVariableStatement) NodeType() NodeType    { return NodeDeclareVariableStatement }
func (s *DeclareVariableStatement) Visit(v StatementVisitor) { v.VisitDeclareVariable(s) }

// DiscardStatement aborts the current fragment invocation.
type DiscardStatement struct {
	StatementBase
}

func (*DiscardStatement) NodeType() NodeType    { return NodeDiscardStatement }
func (s *DiscardStatement) Visit(v StatementVisitor) { v.VisitDiscard(s) }

// ExpressionStatement evaluates an expression for its side effects.
type ExpressionStatement struct {
	StatementBase

	Expression Expression
}

func (*ExpressionStatement) NodeType() NodeType    { return NodeExpressionStatement }
func (s *ExpressionStatement) Visit(v StatementVisitor) { v.VisitExpressionStatement(s) }

// ForStatement is a numeric range loop: for name in From -> To : Step.
type ForStatement struct {
	StatementBase

	VarIndex *uint32
	VarName  string
	FromExpr Expression
	ToExpr   Expression
	StepExpr Expression
	Unroll   ExpressionValue[LoopUnroll]
	Body     Statement
}

func (*ForStatement) NodeType() NodeType    { return NodeForStatement }
func (s *ForStatement) Visit(v StatementVisitor) { v.VisitFor(s) }

// ForEachStatement iterates over the elements of an array.
type ForEachStatement struct {
	StatementBase

	VarIndex   *uint32
	VarName    string
	Expression Expression
	Unroll     ExpressionValue[LoopUnroll]
	Body       Statement
}

func (*ForEachStatement) NodeType() NodeType    { return NodeForEachStatement }
func (s *ForEachStatement) Visit(v StatementVisitor) { v.VisitForEach(s) }

// ImportStatement brings identifiers of another module into scope.
type ImportStatement struct {
	StatementBase

	ModuleName  string
	Identifiers []ImportIdentifier
}

// ImportIdentifier is one imported name; Identifier "*" imports every
// exported symbol. RenamedIdentifier is empty when no rename was requested.
type ImportIdentifier struct {
	Identifier        string
	RenamedIdentifier string
	SourceLocation    lang.SourceLocation
	RenamedLocation   lang.SourceLocation
}

func (*ImportStatement) NodeType() NodeType    { return NodeImportStatement }
func (s *ImportStatement) Visit(v StatementVisitor) { v.VisitImport(s) }

// MultiStatement is an ordered sequence of statements. The sanitizer opens
// a lexical scope around its statements.
type MultiStatement struct {
	StatementBase

	Statements []Statement
}

func (*MultiStatement) NodeType() NodeType    { return NodeMultiStatement }
func (s *MultiStatement) Visit(v StatementVisitor) { v.VisitMulti(s) }

// NoOpStatement does nothing. It replaces statements removed by passes.
type NoOpStatement struct {
	StatementBase
}

func (*NoOpStatement) NodeType() NodeType    { return NodeNoOpStatement }
func (s *NoOpStatement) Visit(v StatementVisitor) { v.VisitNoOp(s) }

// ReturnStatement returns from the enclosing function, possibly with a
// value.
type ReturnStatement struct {
	StatementBase

	ReturnExpr Expression
}

func (*ReturnStatement) NodeType() NodeType    { return NodeReturnStatement }
func (s *ReturnStatement) Visit(v StatementVisitor) { v.VisitReturn(s) }

// ScopedStatement introduces a lexical scope around its inner statement.
type ScopedStatement struct {
	StatementBase

	Statement Statement
}

func (*ScopedStatement) NodeType() NodeType    { return NodeScopedStatement }
func (s *ScopedStatement) Visit(v StatementVisitor) { v.VisitScoped(s) }

// WhileStatement loops while a condition holds.
type WhileStatement struct {
	StatementBase

	Condition Expression
	Unroll    ExpressionValue[LoopUnroll]
	Body      Statement
}

func (*WhileStatement) NodeType() NodeType    { return NodeWhileStatement }
func (s *WhileStatement) Visit(v StatementVisitor) { v.VisitWhile(s) }

// BreakStatement exits the innermost enclosing loop.
type BreakStatement struct {
	StatementBase
}

func (*BreakStatement) NodeType() NodeType    { return NodeBreakStatement }
func (s *BreakStatement) Visit(v StatementVisitor) { v.VisitBreak(s) }

// ContinueStatement skips to the next iteration of the innermost enclosing
// loop.
type ContinueStatement struct {
	StatementBase
}

func (*ContinueStatement) NodeType() NodeType    { return NodeContinueStatement }
func (s *ContinueStatement) Visit(v StatementVisitor) { v.VisitContinue(s) }
