package ast

import "testing"

func TestEvalBinary_ScalarArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   BinaryType
		lhs  ConstantValue
		rhs  ConstantValue
		want ConstantValue
	}{
		{"add i32", BinaryAdd, Int32Value(40), Int32Value(2), Int32Value(42)},
		{"sub u32", BinarySubtract, UInt32Value(7), UInt32Value(3), UInt32Value(4)},
		{"mul f32", BinaryMultiply, Float32Value(6), Float32Value(7), Float32Value(42)},
		{"div i32", BinaryDivide, Int32Value(84), Int32Value(2), Int32Value(42)},
		{"mod i32", BinaryModulo, Int32Value(6), Int32Value(7), Int32Value(6)},
		{"i32 wraps on overflow", BinaryAdd, Int32Value(2147483647), Int32Value(1), Int32Value(-2147483648)},
		{"compare lt", BinaryCompLt, Int32Value(3), Int32Value(5), BoolValue(true)},
		{"compare ne", BinaryCompNe, Float32Value(1), Float32Value(1), BoolValue(false)},
		{"logical and", BinaryLogicalAnd, BoolValue(true), BoolValue(false), BoolValue(false)},
		{"logical or", BinaryLogicalOr, BoolValue(false), BoolValue(true), BoolValue(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalBinary(tt.op, tt.lhs, tt.rhs)
			if err != nil {
				t.Fatalf("evalBinary error: %v", err)
			}
			if got != tt.want {
				t.Errorf("evalBinary = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalBinary_DivisionByZero(t *testing.T) {
	if _, err := evalBinary(BinaryDivide, Int32Value(42), Int32Value(0)); err != errIntegralDivisionByZeroFold {
		t.Errorf("i32 division by zero: got %v", err)
	}
	if _, err := evalBinary(BinaryModulo, Int32Value(42), Int32Value(0)); err != errIntegralModuloByZeroFold {
		t.Errorf("i32 modulo by zero: got %v", err)
	}

	// a single zero lane fails the whole vector
	lhs := Vector4[int32]{7, 6, 5, 4}
	rhs := Vector4[int32]{3, 2, 1, 0}
	if _, err := evalBinary(BinaryDivide, lhs, rhs); err != errIntegralDivisionByZeroFold {
		t.Errorf("vector division by zero lane: got %v", err)
	}

	// float division by zero is IEEE, not an error
	got, err := evalBinary(BinaryDivide, Float32Value(1), Float32Value(0))
	if err != nil {
		t.Fatalf("float division by zero: %v", err)
	}
	if f := got.(Float32Value); f == f && !(f > 0) {
		t.Errorf("float 1/0 = %v, want +Inf", f)
	}
}

func TestEvalBinary_Vectors(t *testing.T) {
	sum, err := evalBinary(BinaryAdd, Vector3[float32]{1, 2, 3}, Vector3[float32]{4, 5, 6})
	if err != nil {
		t.Fatalf("vec add: %v", err)
	}
	if sum != (Vector3[float32]{5, 7, 9}) {
		t.Errorf("vec add = %v", sum)
	}

	scaled, err := evalBinary(BinaryMultiply, Vector2[int32]{3, 4}, Int32Value(2))
	if err != nil {
		t.Fatalf("vec*scalar: %v", err)
	}
	if scaled != (Vector2[int32]{6, 8}) {
		t.Errorf("vec*scalar = %v", scaled)
	}

	eq, err := evalBinary(BinaryCompEq, Vector2[float32]{1, 2}, Vector2[float32]{1, 2})
	if err != nil {
		t.Fatalf("vec ==: %v", err)
	}
	if eq != BoolValue(true) {
		t.Errorf("vec == = %v", eq)
	}
}

func TestEvalBinary_Matrices(t *testing.T) {
	identity := Matrix2{Columns: [2]Vector2[float32]{{1, 0}, {0, 1}}}
	m := Matrix2{Columns: [2]Vector2[float32]{{1, 2}, {3, 4}}}

	product, err := evalBinary(BinaryMultiply, identity, m)
	if err != nil {
		t.Fatalf("mat*mat: %v", err)
	}
	if product != m {
		t.Errorf("identity * m = %v, want %v", product, m)
	}

	vec, err := evalBinary(BinaryMultiply, m, Vector2[float32]{1, 1})
	if err != nil {
		t.Fatalf("mat*vec: %v", err)
	}
	if vec != (Vector2[float32]{4, 6}) {
		t.Errorf("m * (1,1) = %v, want (4, 6)", vec)
	}

	doubled, err := evalBinary(BinaryMultiply, m, Float32Value(2))
	if err != nil {
		t.Fatalf("mat*scalar: %v", err)
	}
	want := Matrix2{Columns: [2]Vector2[float32]{{2, 4}, {6, 8}}}
	if doubled != want {
		t.Errorf("m * 2 = %v, want %v", doubled, want)
	}
}

func TestEvalUnary(t *testing.T) {
	neg, err := evalUnary(UnaryMinus, Int32Value(42))
	if err != nil || neg != Int32Value(-42) {
		t.Errorf("-42 = %v (%v)", neg, err)
	}

	not, err := evalUnary(UnaryLogicalNot, BoolValue(false))
	if err != nil || not != BoolValue(true) {
		t.Errorf("!false = %v (%v)", not, err)
	}

	negVec, err := evalUnary(UnaryMinus, Vector2[float32]{1, -2})
	if err != nil || negVec != (Vector2[float32]{-1, 2}) {
		t.Errorf("-(1,-2) = %v (%v)", negVec, err)
	}

	if _, err := evalUnary(UnaryMinus, BoolValue(true)); err == nil {
		t.Error("-bool folded, want error")
	}
}

func TestCastConstant(t *testing.T) {
	scalar, err := castConstant(PrimitiveFloat32, []ConstantValue{Int32Value(3)})
	if err != nil || scalar != Float32Value(3) {
		t.Errorf("f32(3) = %v (%v)", scalar, err)
	}

	splat, err := castConstant(VectorType{ComponentCount: 4, ComponentType: PrimitiveFloat32}, []ConstantValue{Float32Value(42)})
	if err != nil || splat != (Vector4[float32]{42, 42, 42, 42}) {
		t.Errorf("vec4(42.0) = %v (%v)", splat, err)
	}

	composed, err := castConstant(
		VectorType{ComponentCount: 4, ComponentType: PrimitiveFloat32},
		[]ConstantValue{Vector3[float32]{1, 2, 3}, Float32Value(4)},
	)
	if err != nil || composed != (Vector4[float32]{1, 2, 3, 4}) {
		t.Errorf("vec4(vec3, 4) = %v (%v)", composed, err)
	}

	converted, err := castConstant(
		VectorType{ComponentCount: 2, ComponentType: PrimitiveInt32},
		[]ConstantValue{Vector2[float32]{1.9, -2.9}},
	)
	if err != nil || converted != (Vector2[int32]{1, -2}) {
		t.Errorf("vec2[i32](vec2f) = %v (%v)", converted, err)
	}
}

func TestSwizzleConstant(t *testing.T) {
	vec := Vector4[float32]{3, 0, 1, 2}

	single, err := swizzleConstant(vec, []uint32{2})
	if err != nil || single != Float32Value(1) {
		t.Errorf("v.z = %v (%v)", single, err)
	}

	rotated, err := swizzleConstant(vec, []uint32{1, 2, 3, 0})
	if err != nil || rotated != (Vector4[float32]{0, 1, 2, 3}) {
		t.Errorf("v.yzwx = %v (%v)", rotated, err)
	}

	scalarSplat, err := swizzleConstant(Float32Value(42), []uint32{0, 0, 0, 0})
	if err != nil || scalarSplat != (Vector4[float32]{42, 42, 42, 42}) {
		t.Errorf("scalar.xxxx = %v (%v)", scalarSplat, err)
	}
}

func TestConstantValueString(t *testing.T) {
	tests := []struct {
		value ConstantValue
		want  string
	}{
		{Int32Value(42), "42"},
		{Float32Value(42), "42.0"},
		{BoolValue(true), "true"},
		{Vector4[int32]{7, 6, 5, 4}, "vec4[i32](7, 6, 5, 4)"},
		{Vector2[float32]{1.5, -2}, "vec2[f32](1.5, -2.0)"},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
