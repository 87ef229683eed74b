package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ConstantValue is the closed sum of compile-time constant values: scalars,
// 2/3/4-component vectors and 2/3/4 square float matrices.
type ConstantValue interface {
	constantValue()
	// ConstantType returns the expression type of the value.
	ConstantType() ExpressionType
	// String renders the value the way the language writes it, for use in
	// diagnostics.
	String() string
}

// ConstantScalar constrains the element types of constant vectors.
type ConstantScalar interface {
	~bool | ~int32 | ~uint32 | ~float32
}

// NoValue is the value of constant slots that hold nothing.
type NoValue struct{}

func (NoValue) constantValue() {}

// ConstantType returns NoType.
func (NoValue) ConstantType() ExpressionType { return NoType{} }

func (NoValue) String() string { return "<no value>" }

// BoolValue is a bool constant.
type BoolValue bool

func (BoolValue) constantValue() {}

// ConstantType returns the bool primitive type.
func (BoolValue) ConstantType() ExpressionType { return PrimitiveBoolean }

func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

// Float32Value is an f32 constant.
type Float32Value float32

func (Float32Value) constantValue() {}

// ConstantType returns the f32 primitive type.
func (Float32Value) ConstantType() ExpressionType { return PrimitiveFloat32 }

func (v Float32Value) String() string { return formatFloat(float32(v)) }

// Int32Value is an i32 constant.
type Int32Value int32

func (Int32Value) constantValue() {}

// ConstantType returns the i32 primitive type.
func (Int32Value) ConstantType() ExpressionType { return PrimitiveInt32 }

func (v Int32Value) String() string { return strconv.FormatInt(int64(v), 10) }

// UInt32Value is a u32 constant.
type UInt32Value uint32

func (UInt32Value) constantValue() {}

// ConstantType returns the u32 primitive type.
func (UInt32Value) ConstantType() ExpressionType { return PrimitiveUInt32 }

func (v UInt32Value) String() string { return strconv.FormatUint(uint64(v), 10) }

// StringValue is a str constant.
type StringValue string

func (StringValue) constantValue() {}

// ConstantType returns the str primitive type.
func (StringValue) ConstantType() ExpressionType { return PrimitiveString }

func (v StringValue) String() string { return strconv.Quote(string(v)) }

// Vector2 is a two-component constant vector.
type Vector2[T ConstantScalar] struct {
	X, Y T
}

func (Vector2[T]) constantValue() {}

// ConstantType returns the matching vec2 type.
func (v Vector2[T]) ConstantType() ExpressionType {
	return VectorType{ComponentCount: 2, ComponentType: scalarPrimitive[T]()}
}

func (v Vector2[T]) String() string {
	return formatVector(scalarPrimitive[T](), []string{formatScalar(v.X), formatScalar(v.Y)})
}

// Vector3 is a three-component constant vector.
type Vector3[T ConstantScalar] struct {
	X, Y, Z T
}

func (Vector3[T]) constantValue() {}

// ConstantType returns the matching vec3 type.
func (v Vector3[T]) ConstantType() ExpressionType {
	return VectorType{ComponentCount: 3, ComponentType: scalarPrimitive[T]()}
}

func (v Vector3[T]) String() string {
	return formatVector(scalarPrimitive[T](), []string{formatScalar(v.X), formatScalar(v.Y), formatScalar(v.Z)})
}

// Vector4 is a four-component constant vector.
type Vector4[T ConstantScalar] struct {
	X, Y, Z, W T
}

func (Vector4[T]) constantValue() {}

// ConstantType returns the matching vec4 type.
func (v Vector4[T]) ConstantType() ExpressionType {
	return VectorType{ComponentCount: 4, ComponentType: scalarPrimitive[T]()}
}

func (v Vector4[T]) String() string {
	return formatVector(scalarPrimitive[T](), []string{formatScalar(v.X), formatScalar(v.Y), formatScalar(v.Z), formatScalar(v.W)})
}

// Matrix2 is a 2x2 f32 constant matrix, column-major.
type Matrix2 struct {
	Columns [2]Vector2[float32]
}

func (Matrix2) constantValue() {}

// ConstantType returns mat2[f32].
func (Matrix2) ConstantType() ExpressionType {
	return MatrixType{ColumnCount: 2, RowCount: 2, ComponentType: PrimitiveFloat32}
}

func (m Matrix2) String() string {
	return fmt.Sprintf("mat2[f32](%s, %s)", m.Columns[0], m.Columns[1])
}

// Matrix3 is a 3x3 f32 constant matrix, column-major.
type Matrix3 struct {
	Columns [3]Vector3[float32]
}

func (Matrix3) constantValue() {}

// ConstantType returns mat3[f32].
func (Matrix3) ConstantType() ExpressionType {
	return MatrixType{ColumnCount: 3, RowCount: 3, ComponentType: PrimitiveFloat32}
}

func (m Matrix3) String() string {
	return fmt.Sprintf("mat3[f32](%s, %s, %s)", m.Columns[0], m.Columns[1], m.Columns[2])
}

// Matrix4 is a 4x4 f32 constant matrix, column-major.
type Matrix4 struct {
	Columns [4]Vector4[float32]
}

func (Matrix4) constantValue() {}

// ConstantType returns mat4[f32].
func (Matrix4) ConstantType() ExpressionType {
	return MatrixType{ColumnCount: 4, RowCount: 4, ComponentType: PrimitiveFloat32}
}

func (m Matrix4) String() string {
	return fmt.Sprintf("mat4[f32](%s, %s, %s, %s)", m.Columns[0], m.Columns[1], m.Columns[2], m.Columns[3])
}

// scalarPrimitive maps a Go scalar type parameter to its PrimitiveType.
func scalarPrimitive[T ConstantScalar]() PrimitiveType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return PrimitiveBoolean
	case int32:
		return PrimitiveInt32
	case uint32:
		return PrimitiveUInt32
	default:
		return PrimitiveFloat32
	}
}

func formatScalar[T ConstantScalar](v T) string {
	switch val := any(v).(type) {
	case bool:
		return BoolValue(val).String()
	case int32:
		return Int32Value(val).String()
	case uint32:
		return UInt32Value(val).String()
	case float32:
		return formatFloat(val)
	default:
		return fmt.Sprint(val)
	}
}

func formatVector(component PrimitiveType, values []string) string {
	return fmt.Sprintf("vec%d[%s](%s)", len(values), component, strings.Join(values, ", "))
}

// formatFloat renders a float the way the language writes literals: the
// shortest representation that still carries a decimal point.
func formatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEnI") {
		s += ".0"
	}
	return s
}
