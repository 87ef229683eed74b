package ast

// NodeType tags every AST node variant. Expressions come first, statements
// second; the serialized form relies on this ordering being stable.
type NodeType int8

const (
	NodeNone NodeType = -1

	// Expressions
	NodeAccessIdentifierExpression NodeType = iota - 1
	NodeAccessIndexExpression
	NodeAliasValueExpression
	NodeAssignExpression
	NodeBinaryExpression
	NodeCallFunctionExpression
	NodeCallMethodExpression
	NodeCastExpression
	NodeConditionalExpression
	NodeConstantExpression
	NodeConstantValueExpression
	NodeFunctionExpression
	NodeIdentifierExpression
	NodeIntrinsicExpression
	NodeIntrinsicFunctionExpression
	NodeStructTypeExpression
	NodeSwizzleExpression
	NodeTypeExpression
	NodeUnaryExpression
	NodeVariableValueExpression

	// Statements
	NodeBranchStatement
	NodeConditionalStatement
	NodeDeclareAliasStatement
	NodeDeclareConstStatement
	NodeDeclareExternalStatement
	NodeDeclareFunctionStatement
	NodeDeclareOptionStatement
	NodeDeclareStructStatement
	NodeDeclareVariableStatement
	NodeDiscardStatement
	NodeExpressionStatement
	NodeForStatement
	NodeForEachStatement
	NodeImportStatement
	NodeMultiStatement
	NodeNoOpStatement
	NodeReturnStatement
	NodeScopedStatement
	NodeWhileStatement
	NodeBreakStatement
	NodeContinueStatement

	nodeTypeMax = NodeContinueStatement
)

// IsExpression reports whether the tag names an expression variant.
func IsExpression(nodeType NodeType) bool {
	return nodeType >= NodeAccessIdentifierExpression && nodeType <= NodeVariableValueExpression
}

// IsStatement reports whether the tag names a statement variant.
func IsStatement(nodeType NodeType) bool {
	return nodeType >= NodeBranchStatement && nodeType <= NodeContinueStatement
}

// AssignType enumerates the assignment forms.
type AssignType uint8

const (
	AssignSimple             AssignType = iota // a = b
	AssignCompoundAdd                          // a += b
	AssignCompoundDivide                       // a /= b
	AssignCompoundModulo                       // a %= b
	AssignCompoundMultiply                     // a *= b
	AssignCompoundLogicalAnd                   // a &&= b
	AssignCompoundLogicalOr                    // a ||= b
	AssignCompoundSubtract                     // a -= b
)

// BinaryType enumerates binary operators.
type BinaryType uint8

const (
	BinaryAdd        BinaryType = iota // +
	BinaryCompEq                       // ==
	BinaryCompGe                       // >=
	BinaryCompGt                       // >
	BinaryCompLe                       // <=
	BinaryCompLt                       // <
	BinaryCompNe                       // !=
	BinaryDivide                       // /
	BinaryModulo                       // %
	BinaryMultiply                     // *
	BinaryLogicalAnd                   // &&
	BinaryLogicalOr                    // ||
	BinarySubtract                     // -
)

// String returns the operator's source spelling.
func (b BinaryType) String() string {
	switch b {
	case BinaryAdd:
		return "+"
	case BinaryCompEq:
		return "=="
	case BinaryCompGe:
		return ">="
	case BinaryCompGt:
		return ">"
	case BinaryCompLe:
		return "<="
	case BinaryCompLt:
		return "<"
	case BinaryCompNe:
		return "!="
	case BinaryDivide:
		return "/"
	case BinaryModulo:
		return "%"
	case BinaryMultiply:
		return "*"
	case BinaryLogicalAnd:
		return "&&"
	case BinaryLogicalOr:
		return "||"
	case BinarySubtract:
		return "-"
	default:
		return "<unknown>"
	}
}

// UnaryType enumerates unary operators.
type UnaryType uint8

const (
	UnaryLogicalNot UnaryType = iota // !v
	UnaryMinus                       // -v
	UnaryPlus                        // +v
)

// BuiltinEntry names the shader built-in values addressable from struct
// members via the builtin attribute. The explicit values are part of the
// serialized format.
type BuiltinEntry uint32

const (
	BuiltinVertexPosition BuiltinEntry = 0 // gl_Position
	BuiltinFragCoord      BuiltinEntry = 1 // gl_FragCoord
	BuiltinFragDepth      BuiltinEntry = 2 // gl_FragDepth
)

// String returns the attribute spelling of the builtin.
func (b BuiltinEntry) String() string {
	switch b {
	case BuiltinVertexPosition:
		return "position"
	case BuiltinFragCoord:
		return "fragcoord"
	case BuiltinFragDepth:
		return "fragdepth"
	default:
		return "<unknown>"
	}
}

// DepthWriteMode controls how a fragment entry point writes depth.
type DepthWriteMode uint8

const (
	DepthWriteGreater DepthWriteMode = iota
	DepthWriteLess
	DepthWriteReplace
	DepthWriteUnchanged
)

// ShaderStageType identifies a pipeline stage.
type ShaderStageType uint8

const (
	ShaderStageFragment ShaderStageType = iota
	ShaderStageVertex
)

// String returns the stage name used in diagnostics.
func (s ShaderStageType) String() string {
	switch s {
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageVertex:
		return "vertex"
	default:
		return "<unknown>"
	}
}

// ShaderStageFlags is a bit set of shader stages.
type ShaderStageFlags uint32

const (
	ShaderStageFlagFragment ShaderStageFlags = 1 << ShaderStageFragment
	ShaderStageFlagVertex   ShaderStageFlags = 1 << ShaderStageVertex

	// ShaderStageAll selects every stage.
	ShaderStageAll = ShaderStageFlagFragment | ShaderStageFlagVertex
)

// Flag returns the flag bit of a single stage.
func (s ShaderStageType) Flag() ShaderStageFlags {
	return 1 << s
}

// Test reports whether the stage bit is set.
func (f ShaderStageFlags) Test(stage ShaderStageType) bool {
	return f&stage.Flag() != 0
}

// FunctionFlag marks stage-constraining behaviors of a function body.
type FunctionFlag uint8

const (
	FunctionFlagDoesDiscard FunctionFlag = 1 << iota
	FunctionFlagDoesWriteFragDepth
)

// IntrinsicType enumerates the built-in callables. The explicit values are
// part of the serialized format.
type IntrinsicType uint32

const (
	IntrinsicCrossProduct  IntrinsicType = 0
	IntrinsicDotProduct    IntrinsicType = 1
	IntrinsicSampleTexture IntrinsicType = 2
	IntrinsicLength        IntrinsicType = 3
	IntrinsicMax           IntrinsicType = 4
	IntrinsicMin           IntrinsicType = 5
	IntrinsicPow           IntrinsicType = 6
	IntrinsicExp           IntrinsicType = 7
	IntrinsicReflect       IntrinsicType = 8
	IntrinsicNormalize     IntrinsicType = 9
	IntrinsicInverse       IntrinsicType = 10
	IntrinsicTranspose     IntrinsicType = 11
)

// LoopUnroll controls loop unrolling for the for and for-each statements.
type LoopUnroll uint8

const (
	LoopUnrollAlways LoopUnroll = iota
	LoopUnrollHint
	LoopUnrollNever
)

// MemoryLayout selects the layout of a struct's members.
type MemoryLayout uint8

const (
	MemoryLayoutStd140 MemoryLayout = iota
)

// PrimitiveType enumerates the scalar types of the language.
type PrimitiveType uint8

const (
	PrimitiveBoolean PrimitiveType = iota // bool
	PrimitiveFloat32                      // f32
	PrimitiveInt32                        // i32
	PrimitiveUInt32                       // u32
	PrimitiveString                       // str
)

func (PrimitiveType) expressionType() {}

// String returns the source spelling of the primitive type.
func (p PrimitiveType) String() string {
	switch p {
	case PrimitiveBoolean:
		return "bool"
	case PrimitiveFloat32:
		return "f32"
	case PrimitiveInt32:
		return "i32"
	case PrimitiveUInt32:
		return "u32"
	case PrimitiveString:
		return "str"
	default:
		return "<unknown>"
	}
}

// ImageDim enumerates sampler dimensionalities.
type ImageDim uint8

const (
	ImageDim1D ImageDim = iota
	ImageDim1DArray
	ImageDim2D
	ImageDim2DArray
	ImageDim3D
	ImageDimCube
)

// String returns the source spelling used inside sampler type names.
func (d ImageDim) String() string {
	switch d {
	case ImageDim1D:
		return "1D"
	case ImageDim1DArray:
		return "1D_array"
	case ImageDim2D:
		return "2D"
	case ImageDim2DArray:
		return "2D_array"
	case ImageDim3D:
		return "3D"
	case ImageDimCube:
		return "cube"
	default:
		return "<unknown>"
	}
}

// ModuleFeature is an opt-in switch altering the set of legal constructs in
// a module.
type ModuleFeature uint32

const (
	// ModuleFeaturePrimitiveExternals allows primitives, vectors and
	// matrices in external blocks.
	ModuleFeaturePrimitiveExternals ModuleFeature = iota
	// ModuleFeatureFloat64 allows 64-bit float literals.
	ModuleFeatureFloat64
	// ModuleFeatureTexture1D allows 1D samplers.
	ModuleFeatureTexture1D
)

// String returns the feature's attribute spelling.
func (f ModuleFeature) String() string {
	switch f {
	case ModuleFeaturePrimitiveExternals:
		return "primitive_externals"
	case ModuleFeatureFloat64:
		return "float64"
	case ModuleFeatureTexture1D:
		return "texture1D"
	default:
		return "<unknown>"
	}
}
