package ast

import "fmt"

// ExpressionType is the closed sum of types an expression can take.
// Equality is structural except for struct, function, alias and intrinsic
// types, which compare by module-scoped index.
type ExpressionType interface {
	expressionType()
	String() string
}

// NoType is the type of expressions producing no value (and of functions
// returning nothing).
type NoType struct{}

func (NoType) expressionType() {}

func (NoType) String() string { return "()" }

// VectorType is a 2, 3 or 4 component vector of a primitive type.
type VectorType struct {
	ComponentCount uint32
	ComponentType  PrimitiveType
}

func (VectorType) expressionType() {}

func (t VectorType) String() string {
	return fmt.Sprintf("vec%d[%s]", t.ComponentCount, t.ComponentType)
}

// MatrixType is a column-major matrix of a primitive type.
type MatrixType struct {
	ColumnCount   uint32
	RowCount      uint32
	ComponentType PrimitiveType
}

func (MatrixType) expressionType() {}

func (t MatrixType) String() string {
	if t.ColumnCount == t.RowCount {
		return fmt.Sprintf("mat%d[%s]", t.ColumnCount, t.ComponentType)
	}
	return fmt.Sprintf("mat%dx%d[%s]", t.ColumnCount, t.RowCount, t.ComponentType)
}

// ArrayType is a fixed-size array. Length 0 means the size has not been
// resolved yet; the sanitizer only accepts it where the length can be
// inferred from an initializer.
type ArrayType struct {
	ContainedType ExpressionType
	Length        uint32
}

func (ArrayType) expressionType() {}

func (t ArrayType) String() string {
	if t.Length == 0 {
		return fmt.Sprintf("array[%s]", t.ContainedType)
	}
	return fmt.Sprintf("array[%s, %d]", t.ContainedType, t.Length)
}

// StructType references a struct declaration by module-scoped index.
type StructType struct {
	StructIndex uint32
}

func (StructType) expressionType() {}

func (t StructType) String() string { return fmt.Sprintf("struct #%d", t.StructIndex) }

// SamplerType is a texture sampler.
type SamplerType struct {
	SampledType PrimitiveType
	Dim         ImageDim
}

func (SamplerType) expressionType() {}

func (t SamplerType) String() string {
	if t.Dim == ImageDimCube {
		return fmt.Sprintf("sampler_cube[%s]", t.SampledType)
	}
	return fmt.Sprintf("sampler%s[%s]", t.Dim, t.SampledType)
}

// UniformType is a uniform buffer wrapping a struct.
type UniformType struct {
	ContainedType StructType
}

func (UniformType) expressionType() {}

func (t UniformType) String() string { return fmt.Sprintf("uniform[%s]", t.ContainedType) }

// AliasType references an alias declaration by index together with the type
// it resolves to.
type AliasType struct {
	AliasIndex uint32
	// TargetType is the aliased type; it may itself be an alias.
	TargetType ExpressionType
}

func (AliasType) expressionType() {}

func (t AliasType) String() string { return fmt.Sprintf("alias #%d -> %s", t.AliasIndex, t.TargetType) }

// FunctionType references a function declaration by index.
type FunctionType struct {
	FuncIndex uint32
}

func (FunctionType) expressionType() {}

func (t FunctionType) String() string { return fmt.Sprintf("function #%d", t.FuncIndex) }

// IntrinsicFunctionType references an intrinsic callable.
type IntrinsicFunctionType struct {
	Intrinsic IntrinsicType
}

func (IntrinsicFunctionType) expressionType() {}

func (t IntrinsicFunctionType) String() string { return fmt.Sprintf("intrinsic #%d", t.Intrinsic) }

// MethodType is the type of a method projected from an object (e.g.
// sampler.Sample before the call is applied).
type MethodType struct {
	ObjectType  ExpressionType
	MethodIndex uint32
}

func (MethodType) expressionType() {}

func (t MethodType) String() string {
	return fmt.Sprintf("method #%d of %s", t.MethodIndex, t.ObjectType)
}

// TypeType is the type of an expression denoting a type (e.g. a struct name
// used as a constructor).
type TypeType struct {
	ContainedType ExpressionType
}

func (TypeType) expressionType() {}

func (t TypeType) String() string { return fmt.Sprintf("type[%s]", t.ContainedType) }

// TypeEquals reports structural type equality; struct, function, alias and
// intrinsic references compare by index.
func TypeEquals(a, b ExpressionType) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch lhs := a.(type) {
	case NoType:
		_, ok := b.(NoType)
		return ok
	case PrimitiveType:
		rhs, ok := b.(PrimitiveType)
		return ok && lhs == rhs
	case VectorType:
		rhs, ok := b.(VectorType)
		return ok && lhs == rhs
	case MatrixType:
		rhs, ok := b.(MatrixType)
		return ok && lhs == rhs
	case ArrayType:
		rhs, ok := b.(ArrayType)
		return ok && lhs.Length == rhs.Length && TypeEquals(lhs.ContainedType, rhs.ContainedType)
	case StructType:
		rhs, ok := b.(StructType)
		return ok && lhs == rhs
	case SamplerType:
		rhs, ok := b.(SamplerType)
		return ok && lhs == rhs
	case UniformType:
		rhs, ok := b.(UniformType)
		return ok && lhs == rhs
	case AliasType:
		rhs, ok := b.(AliasType)
		return ok && lhs.AliasIndex == rhs.AliasIndex
	case FunctionType:
		rhs, ok := b.(FunctionType)
		return ok && lhs == rhs
	case IntrinsicFunctionType:
		rhs, ok := b.(IntrinsicFunctionType)
		return ok && lhs == rhs
	case MethodType:
		rhs, ok := b.(MethodType)
		return ok && lhs.MethodIndex == rhs.MethodIndex && TypeEquals(lhs.ObjectType, rhs.ObjectType)
	case TypeType:
		rhs, ok := b.(TypeType)
		return ok && TypeEquals(lhs.ContainedType, rhs.ContainedType)
	default:
		return false
	}
}

// ResolveAlias unwraps alias chains, returning the first non-alias type.
func ResolveAlias(t ExpressionType) ExpressionType {
	for {
		alias, ok := t.(AliasType)
		if !ok {
			return t
		}
		t = alias.TargetType
	}
}

// IsNoType reports whether t is NoType.
func IsNoType(t ExpressionType) bool {
	_, ok := t.(NoType)
	return ok
}

// IsPrimitiveType reports whether t is a primitive type.
func IsPrimitiveType(t ExpressionType) bool {
	_, ok := t.(PrimitiveType)
	return ok
}

// IsVectorType reports whether t is a vector type.
func IsVectorType(t ExpressionType) bool {
	_, ok := t.(VectorType)
	return ok
}

// IsMatrixType reports whether t is a matrix type.
func IsMatrixType(t ExpressionType) bool {
	_, ok := t.(MatrixType)
	return ok
}

// IsArrayType reports whether t is an array type.
func IsArrayType(t ExpressionType) bool {
	_, ok := t.(ArrayType)
	return ok
}

// IsStructType reports whether t is a struct type.
func IsStructType(t ExpressionType) bool {
	_, ok := t.(StructType)
	return ok
}

// IsSamplerType reports whether t is a sampler type.
func IsSamplerType(t ExpressionType) bool {
	_, ok := t.(SamplerType)
	return ok
}

// IsUniformType reports whether t is a uniform type.
func IsUniformType(t ExpressionType) bool {
	_, ok := t.(UniformType)
	return ok
}

// IsAliasType reports whether t is an alias type.
func IsAliasType(t ExpressionType) bool {
	_, ok := t.(AliasType)
	return ok
}

// IsFunctionType reports whether t is a function type.
func IsFunctionType(t ExpressionType) bool {
	_, ok := t.(FunctionType)
	return ok
}

// MatrixColumnType returns the type of one column of m.
func MatrixColumnType(m MatrixType) VectorType {
	return VectorType{ComponentCount: m.RowCount, ComponentType: m.ComponentType}
}

// ArrayElement returns the contained type of an array.
func ArrayElement(a ArrayType) ExpressionType {
	return a.ContainedType
}
