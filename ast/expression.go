package ast

import "github.com/gogpu/nzsl/lang"

// AccessIdentifierExpression is a chain of member accesses by name
// (a.b.c). The sanitizer resolves it into AccessIndexExpression chains
// (or keeps it, under UseIdentifierAccessesForStructs).
type AccessIdentifierExpression struct {
	ExpressionBase

	Expr        Expression
	Identifiers []AccessIdentifier
}

// AccessIdentifier is one member name of an access chain.
type AccessIdentifier struct {
	Identifier     string
	SourceLocation lang.SourceLocation
}

func (*AccessIdentifierExpression) NodeType() NodeType { return NodeAccessIdentifierExpression }

// Visit dispatches to the matching visitor method.
func (e *AccessIdentifierExpression) Visit(v ExpressionVisitor) { v.VisitAccessIdentifier(e) }

// AccessIndexExpression is a chain of accesses by index (a[0][i]). Struct
// member accesses are by constant index after sanitization.
type AccessIndexExpression struct {
	ExpressionBase

	Expr    Expression
	Indices []Expression
}

func (*AccessIndexExpression) NodeType() NodeType     { return NodeAccessIndexExpression }
func (e *AccessIndexExpression) Visit(v ExpressionVisitor) { v.VisitAccessIndex(e) }

// AliasValueExpression references a declared alias by index.
type AliasValueExpression struct {
	ExpressionBase

	AliasID uint32
}

func (*AliasValueExpression) NodeType() NodeType     { return NodeAliasValueExpression }
func (e *AliasValueExpression) Visit(v ExpressionVisitor) { v.VisitAliasValue(e) }

// AssignExpression assigns Right into the l-value Left, possibly combining
// with a compound operator.
type AssignExpression struct {
	ExpressionBase

	Op    AssignType
	Left  Expression
	Right Expression
}

func (*AssignExpression) NodeType() NodeType     { return NodeAssignExpression }
func (e *AssignExpression) Visit(v ExpressionVisitor) { v.VisitAssign(e) }

// BinaryExpression applies a binary operator to two operands.
type BinaryExpression struct {
	ExpressionBase

	Op    BinaryType
	Left  Expression
	Right Expression
}

func (*BinaryExpression) NodeType() NodeType     { return NodeBinaryExpression }
func (e *BinaryExpression) Visit(v ExpressionVisitor) { v.VisitBinary(e) }

// CallFunctionExpression calls TargetFunction with Parameters. After
// sanitization TargetFunction is a FunctionExpression.
type CallFunctionExpression struct {
	ExpressionBase

	TargetFunction Expression
	Parameters     []Expression
}

func (*CallFunctionExpression) NodeType() NodeType     { return NodeCallFunctionExpression }
func (e *CallFunctionExpression) Visit(v ExpressionVisitor) { v.VisitCallFunction(e) }

// CallMethodExpression calls a method by name on Object (e.g. sampler
// sampling). The sanitizer lowers known methods to intrinsics.
type CallMethodExpression struct {
	ExpressionBase

	Object     Expression
	MethodName string
	Parameters []Expression
}

func (*CallMethodExpression) NodeType() NodeType     { return NodeCallMethodExpression }
func (e *CallMethodExpression) Visit(v ExpressionVisitor) { v.VisitCallMethod(e) }

// CastExpression converts up to four operand slots into TargetType. Unused
// trailing slots are nil.
type CastExpression struct {
	ExpressionBase

	TargetType  ExpressionValue[ExpressionType]
	Expressions []Expression
}

func (*CastExpression) NodeType() NodeType     { return NodeCastExpression }
func (e *CastExpression) Visit(v ExpressionVisitor) { v.VisitCast(e) }

// ConditionalExpression selects TruePath or FalsePath depending on a
// compile-time condition.
type ConditionalExpression struct {
	ExpressionBase

	Condition Expression
	TruePath  Expression
	FalsePath Expression
}

func (*ConditionalExpression) NodeType() NodeType     { return NodeConditionalExpression }
func (e *ConditionalExpression) Visit(v ExpressionVisitor) { v.VisitConditional(e) }

// ConstantExpression references a declared constant by index.
type ConstantExpression struct {
	ExpressionBase

	ConstantID uint32
}

func (*ConstantExpression) NodeType() NodeType     { return NodeConstantExpression }
func (e *ConstantExpression) Visit(v ExpressionVisitor) { v.VisitConstant(e) }

// ConstantValueExpression carries a literal constant value.
type ConstantValueExpression struct {
	ExpressionBase

	Value ConstantValue
}

func (*ConstantValueExpression) NodeType() NodeType     { return NodeConstantValueExpression }
func (e *ConstantValueExpression) Visit(v ExpressionVisitor) { v.VisitConstantValue(e) }

// FunctionExpression references a declared function by index.
type FunctionExpression struct {
	ExpressionBase

	FuncID uint32
}

func (*FunctionExpression) NodeType() NodeType     { return NodeFunctionExpression }
func (e *FunctionExpression) Visit(v ExpressionVisitor) { v.VisitFunction(e) }

// IdentifierExpression is an unresolved name. None survive sanitization
// (unless partial sanitization left it unresolved).
type IdentifierExpression struct {
	ExpressionBase

	Identifier string
}

func (*IdentifierExpression) NodeType() NodeType     { return NodeIdentifierExpression }
func (e *IdentifierExpression) Visit(v ExpressionVisitor) { v.VisitIdentifier(e) }

// IntrinsicExpression invokes a built-in operation.
type IntrinsicExpression struct {
	ExpressionBase

	Intrinsic  IntrinsicType
	Parameters []Expression
}

func (*IntrinsicExpression) NodeType() NodeType     { return NodeIntrinsicExpression }
func (e *IntrinsicExpression) Visit(v ExpressionVisitor) { v.VisitIntrinsic(e) }

// IntrinsicFunctionExpression references a registered intrinsic by index,
// before it is applied to arguments.
type IntrinsicFunctionExpression struct {
	ExpressionBase

	IntrinsicID uint32
}

func (*IntrinsicFunctionExpression) NodeType() NodeType     { return NodeIntrinsicFunctionExpression }
func (e *IntrinsicFunctionExpression) Visit(v ExpressionVisitor) { v.VisitIntrinsicFunction(e) }

// StructTypeExpression references a declared struct type by index.
type StructTypeExpression struct {
	ExpressionBase

	StructTypeID uint32
}

func (*StructTypeExpression) NodeType() NodeType     { return NodeStructTypeExpression }
func (e *StructTypeExpression) Visit(v ExpressionVisitor) { v.VisitStructType(e) }

// SwizzleExpression projects and rearranges up to four vector components.
// Components beyond ComponentCount are unused.
type SwizzleExpression struct {
	ExpressionBase

	Expression     Expression
	Components     [4]uint32
	ComponentCount uint32
}

func (*SwizzleExpression) NodeType() NodeType     { return NodeSwizzleExpression }
func (e *SwizzleExpression) Visit(v ExpressionVisitor) { v.VisitSwizzle(e) }

// TypeExpression denotes a type as a value (e.g. a type used as a cast
// target).
type TypeExpression struct {
	ExpressionBase

	TypeID uint32
}

func (*TypeExpression) NodeType() NodeType     { return NodeTypeExpression }
func (e *TypeExpression) Visit(v ExpressionVisitor) { v.VisitType(e) }

// UnaryExpression applies a unary operator to an operand.
type UnaryExpression struct {
	ExpressionBase

	Op         UnaryType
	Expression Expression
}

func (*UnaryExpression) NodeType() NodeType     { return NodeUnaryExpression }
func (e *UnaryExpression) Visit(v ExpressionVisitor) { v.VisitUnary(e) }

// VariableValueExpression references a declared variable by index.
type VariableValueExpression struct {
	ExpressionBase

	VariableID uint32
}

func (*VariableValueExpression) NodeType() NodeType     { return NodeVariableValueExpression }
func (e *VariableValueExpression) Visit(v ExpressionVisitor) { v.VisitVariableValue(e) }
