package ast

import (
	"errors"
	"math"
)

// Errors surfaced by constant evaluation. errUnsupportedFold means the
// operation cannot be folded; the propagation pass then keeps the original
// expression instead of failing.
var (
	errUnsupportedFold            = errors.New("operation cannot be constant-folded")
	errIntegralDivisionByZeroFold = errors.New("integral division by zero")
	errIntegralModuloByZeroFold   = errors.New("integral modulo by zero")
)

type integral interface {
	~int32 | ~uint32
}

func intArith[T integral](op BinaryType, a, b T) (T, error) {
	switch op {
	case BinaryAdd:
		return a + b, nil
	case BinarySubtract:
		return a - b, nil
	case BinaryMultiply:
		return a * b, nil
	case BinaryDivide:
		if b == 0 {
			return 0, errIntegralDivisionByZeroFold
		}
		return a / b, nil
	case BinaryModulo:
		if b == 0 {
			return 0, errIntegralModuloByZeroFold
		}
		return a % b, nil
	default:
		return 0, errUnsupportedFold
	}
}

func floatArith(op BinaryType, a, b float32) (float32, error) {
	switch op {
	case BinaryAdd:
		return a + b, nil
	case BinarySubtract:
		return a - b, nil
	case BinaryMultiply:
		return a * b, nil
	case BinaryDivide:
		// IEEE semantics, infinity and NaN are not errors
		return a / b, nil
	case BinaryModulo:
		return float32(math.Mod(float64(a), float64(b))), nil
	default:
		return 0, errUnsupportedFold
	}
}

func compareOrdered[T int32 | uint32 | float32](op BinaryType, a, b T) (bool, error) {
	switch op {
	case BinaryCompEq:
		return a == b, nil
	case BinaryCompNe:
		return a != b, nil
	case BinaryCompGe:
		return a >= b, nil
	case BinaryCompGt:
		return a > b, nil
	case BinaryCompLe:
		return a <= b, nil
	case BinaryCompLt:
		return a < b, nil
	default:
		return false, errUnsupportedFold
	}
}

// scalarBinary evaluates a binary operator on two scalar constants of the
// same type.
func scalarBinary(op BinaryType, lhs, rhs ConstantValue) (ConstantValue, error) {
	switch l := lhs.(type) {
	case Int32Value:
		r, ok := rhs.(Int32Value)
		if !ok {
			return nil, errUnsupportedFold
		}
		if isComparison(op) {
			res, err := compareOrdered(op, int32(l), int32(r))
			if err != nil {
				return nil, err
			}
			return BoolValue(res), nil
		}
		res, err := intArith(op, int32(l), int32(r))
		if err != nil {
			return nil, err
		}
		return Int32Value(res), nil

	case UInt32Value:
		r, ok := rhs.(UInt32Value)
		if !ok {
			return nil, errUnsupportedFold
		}
		if isComparison(op) {
			res, err := compareOrdered(op, uint32(l), uint32(r))
			if err != nil {
				return nil, err
			}
			return BoolValue(res), nil
		}
		res, err := intArith(op, uint32(l), uint32(r))
		if err != nil {
			return nil, err
		}
		return UInt32Value(res), nil

	case Float32Value:
		r, ok := rhs.(Float32Value)
		if !ok {
			return nil, errUnsupportedFold
		}
		if isComparison(op) {
			res, err := compareOrdered(op, float32(l), float32(r))
			if err != nil {
				return nil, err
			}
			return BoolValue(res), nil
		}
		res, err := floatArith(op, float32(l), float32(r))
		if err != nil {
			return nil, err
		}
		return Float32Value(res), nil

	case BoolValue:
		r, ok := rhs.(BoolValue)
		if !ok {
			return nil, errUnsupportedFold
		}
		switch op {
		case BinaryCompEq:
			return BoolValue(l == r), nil
		case BinaryCompNe:
			return BoolValue(l != r), nil
		case BinaryLogicalAnd:
			return BoolValue(l && r), nil
		case BinaryLogicalOr:
			return BoolValue(l || r), nil
		default:
			return nil, errUnsupportedFold
		}

	case StringValue:
		r, ok := rhs.(StringValue)
		if !ok {
			return nil, errUnsupportedFold
		}
		switch op {
		case BinaryCompEq:
			return BoolValue(l == r), nil
		case BinaryCompNe:
			return BoolValue(l != r), nil
		case BinaryAdd:
			return l + r, nil
		default:
			return nil, errUnsupportedFold
		}

	default:
		return nil, errUnsupportedFold
	}
}

func isComparison(op BinaryType) bool {
	switch op {
	case BinaryCompEq, BinaryCompGe, BinaryCompGt, BinaryCompLe, BinaryCompLt, BinaryCompNe:
		return true
	default:
		return false
	}
}

// vectorComponents decomposes a constant vector into its scalar constants.
// The second result is false for non-vector values.
func vectorComponents(v ConstantValue) ([]ConstantValue, bool) {
	switch vec := v.(type) {
	case Vector2[bool]:
		return []ConstantValue{BoolValue(vec.X), BoolValue(vec.Y)}, true
	case Vector2[int32]:
		return []ConstantValue{Int32Value(vec.X), Int32Value(vec.Y)}, true
	case Vector2[uint32]:
		return []ConstantValue{UInt32Value(vec.X), UInt32Value(vec.Y)}, true
	case Vector2[float32]:
		return []ConstantValue{Float32Value(vec.X), Float32Value(vec.Y)}, true
	case Vector3[bool]:
		return []ConstantValue{BoolValue(vec.X), BoolValue(vec.Y), BoolValue(vec.Z)}, true
	case Vector3[int32]:
		return []ConstantValue{Int32Value(vec.X), Int32Value(vec.Y), Int32Value(vec.Z)}, true
	case Vector3[uint32]:
		return []ConstantValue{UInt32Value(vec.X), UInt32Value(vec.Y), UInt32Value(vec.Z)}, true
	case Vector3[float32]:
		return []ConstantValue{Float32Value(vec.X), Float32Value(vec.Y), Float32Value(vec.Z)}, true
	case Vector4[bool]:
		return []ConstantValue{BoolValue(vec.X), BoolValue(vec.Y), BoolValue(vec.Z), BoolValue(vec.W)}, true
	case Vector4[int32]:
		return []ConstantValue{Int32Value(vec.X), Int32Value(vec.Y), Int32Value(vec.Z), Int32Value(vec.W)}, true
	case Vector4[uint32]:
		return []ConstantValue{UInt32Value(vec.X), UInt32Value(vec.Y), UInt32Value(vec.Z), UInt32Value(vec.W)}, true
	case Vector4[float32]:
		return []ConstantValue{Float32Value(vec.X), Float32Value(vec.Y), Float32Value(vec.Z), Float32Value(vec.W)}, true
	default:
		return nil, false
	}
}

// scalarOf extracts the Go value of a scalar constant into T.
func scalarOf[T ConstantScalar](v ConstantValue) (T, bool) {
	var zero T
	switch val := v.(type) {
	case BoolValue:
		if cast, ok := any(bool(val)).(T); ok {
			return cast, true
		}
	case Int32Value:
		if cast, ok := any(int32(val)).(T); ok {
			return cast, true
		}
	case UInt32Value:
		if cast, ok := any(uint32(val)).(T); ok {
			return cast, true
		}
	case Float32Value:
		if cast, ok := any(float32(val)).(T); ok {
			return cast, true
		}
	}
	return zero, false
}

// makeVector recomposes a constant vector from scalar constants sharing the
// primitive type prim.
func makeVector(prim PrimitiveType, comps []ConstantValue) (ConstantValue, error) {
	switch prim {
	case PrimitiveBoolean:
		return composeVector[bool](comps)
	case PrimitiveInt32:
		return composeVector[int32](comps)
	case PrimitiveUInt32:
		return composeVector[uint32](comps)
	case PrimitiveFloat32:
		return composeVector[float32](comps)
	default:
		return nil, errUnsupportedFold
	}
}

func composeVector[T ConstantScalar](comps []ConstantValue) (ConstantValue, error) {
	values := make([]T, len(comps))
	for i, c := range comps {
		v, ok := scalarOf[T](c)
		if !ok {
			return nil, errUnsupportedFold
		}
		values[i] = v
	}
	switch len(values) {
	case 2:
		return Vector2[T]{values[0], values[1]}, nil
	case 3:
		return Vector3[T]{values[0], values[1], values[2]}, nil
	case 4:
		return Vector4[T]{values[0], values[1], values[2], values[3]}, nil
	default:
		return nil, errUnsupportedFold
	}
}

// matrixColumns decomposes a constant matrix into column slices.
func matrixColumns(v ConstantValue) ([][]float32, bool) {
	switch m := v.(type) {
	case Matrix2:
		return [][]float32{{m.Columns[0].X, m.Columns[0].Y}, {m.Columns[1].X, m.Columns[1].Y}}, true
	case Matrix3:
		cols := make([][]float32, 3)
		for i, c := range m.Columns {
			cols[i] = []float32{c.X, c.Y, c.Z}
		}
		return cols, true
	case Matrix4:
		cols := make([][]float32, 4)
		for i, c := range m.Columns {
			cols[i] = []float32{c.X, c.Y, c.Z, c.W}
		}
		return cols, true
	default:
		return nil, false
	}
}

func makeMatrix(cols [][]float32) (ConstantValue, error) {
	switch len(cols) {
	case 2:
		return Matrix2{Columns: [2]Vector2[float32]{
			{cols[0][0], cols[0][1]},
			{cols[1][0], cols[1][1]},
		}}, nil
	case 3:
		return Matrix3{Columns: [3]Vector3[float32]{
			{cols[0][0], cols[0][1], cols[0][2]},
			{cols[1][0], cols[1][1], cols[1][2]},
			{cols[2][0], cols[2][1], cols[2][2]},
		}}, nil
	case 4:
		return Matrix4{Columns: [4]Vector4[float32]{
			{cols[0][0], cols[0][1], cols[0][2], cols[0][3]},
			{cols[1][0], cols[1][1], cols[1][2], cols[1][3]},
			{cols[2][0], cols[2][1], cols[2][2], cols[2][3]},
			{cols[3][0], cols[3][1], cols[3][2], cols[3][3]},
		}}, nil
	default:
		return nil, errUnsupportedFold
	}
}

// evalBinary evaluates a binary operator over two constant values,
// dispatching on the operand shapes.
func evalBinary(op BinaryType, lhs, rhs ConstantValue) (ConstantValue, error) {
	lhsComps, lhsIsVec := vectorComponents(lhs)
	rhsComps, rhsIsVec := vectorComponents(rhs)
	lhsCols, lhsIsMat := matrixColumns(lhs)
	rhsCols, rhsIsMat := matrixColumns(rhs)

	switch {
	case !lhsIsVec && !rhsIsVec && !lhsIsMat && !rhsIsMat:
		return scalarBinary(op, lhs, rhs)

	case lhsIsVec && rhsIsVec:
		if len(lhsComps) != len(rhsComps) {
			return nil, errUnsupportedFold
		}
		if op == BinaryCompEq || op == BinaryCompNe {
			equal := true
			for i := range lhsComps {
				res, err := scalarBinary(BinaryCompEq, lhsComps[i], rhsComps[i])
				if err != nil {
					return nil, err
				}
				equal = equal && bool(res.(BoolValue))
			}
			if op == BinaryCompNe {
				equal = !equal
			}
			return BoolValue(equal), nil
		}
		return componentwise(op, lhsComps, rhsComps)

	case lhsIsVec && !rhsIsMat:
		// vector op scalar, componentwise
		return componentwise(op, lhsComps, repeatValue(rhs, len(lhsComps)))

	case rhsIsVec && !lhsIsMat:
		// scalar op vector, componentwise
		return componentwise(op, repeatValue(lhs, len(rhsComps)), rhsComps)

	case lhsIsMat && rhsIsMat:
		return matrixMatrixBinary(op, lhsCols, rhsCols)

	case lhsIsMat && rhsIsVec:
		if op != BinaryMultiply {
			return nil, errUnsupportedFold
		}
		return matrixVectorMultiply(lhsCols, rhsComps)

	case lhsIsMat:
		return matrixScalarBinary(op, lhsCols, rhs, false)

	case rhsIsMat:
		return matrixScalarBinary(op, rhsCols, lhs, true)

	default:
		return nil, errUnsupportedFold
	}
}

func repeatValue(v ConstantValue, count int) []ConstantValue {
	comps := make([]ConstantValue, count)
	for i := range comps {
		comps[i] = v
	}
	return comps
}

func componentwise(op BinaryType, lhs, rhs []ConstantValue) (ConstantValue, error) {
	prim, ok := componentPrimitive(lhs[0])
	if !ok {
		return nil, errUnsupportedFold
	}
	comps := make([]ConstantValue, len(lhs))
	for i := range lhs {
		res, err := scalarBinary(op, lhs[i], rhs[i])
		if err != nil {
			return nil, err
		}
		comps[i] = res
	}
	// comparisons yield bool lanes
	if isComparison(op) {
		prim = PrimitiveBoolean
	}
	return makeVector(prim, comps)
}

func componentPrimitive(v ConstantValue) (PrimitiveType, bool) {
	prim, ok := v.ConstantType().(PrimitiveType)
	return prim, ok
}

func matrixMatrixBinary(op BinaryType, lhs, rhs [][]float32) (ConstantValue, error) {
	if len(lhs) != len(rhs) {
		return nil, errUnsupportedFold
	}
	n := len(lhs)
	switch op {
	case BinaryAdd, BinarySubtract:
		cols := make([][]float32, n)
		for c := range lhs {
			cols[c] = make([]float32, n)
			for r := range lhs[c] {
				res, err := floatArith(op, lhs[c][r], rhs[c][r])
				if err != nil {
					return nil, err
				}
				cols[c][r] = res
			}
		}
		return makeMatrix(cols)

	case BinaryMultiply:
		cols := make([][]float32, n)
		for c := 0; c < n; c++ {
			cols[c] = make([]float32, n)
			for r := 0; r < n; r++ {
				var sum float32
				for k := 0; k < n; k++ {
					sum += lhs[k][r] * rhs[c][k]
				}
				cols[c][r] = sum
			}
		}
		return makeMatrix(cols)

	case BinaryCompEq, BinaryCompNe:
		equal := true
		for c := range lhs {
			for r := range lhs[c] {
				equal = equal && lhs[c][r] == rhs[c][r]
			}
		}
		if op == BinaryCompNe {
			equal = !equal
		}
		return BoolValue(equal), nil

	default:
		return nil, errUnsupportedFold
	}
}

func matrixVectorMultiply(cols [][]float32, vec []ConstantValue) (ConstantValue, error) {
	if len(cols) != len(vec) {
		return nil, errUnsupportedFold
	}
	n := len(cols[0])
	out := make([]ConstantValue, n)
	for r := 0; r < n; r++ {
		var sum float32
		for k := range cols {
			comp, ok := scalarOf[float32](vec[k])
			if !ok {
				return nil, errUnsupportedFold
			}
			sum += cols[k][r] * comp
		}
		out[r] = Float32Value(sum)
	}
	return makeVector(PrimitiveFloat32, out)
}

func matrixScalarBinary(op BinaryType, cols [][]float32, scalar ConstantValue, scalarIsLeft bool) (ConstantValue, error) {
	s, ok := scalarOf[float32](scalar)
	if !ok {
		return nil, errUnsupportedFold
	}
	if op != BinaryMultiply && op != BinaryDivide {
		return nil, errUnsupportedFold
	}
	if op == BinaryDivide && scalarIsLeft {
		return nil, errUnsupportedFold
	}
	out := make([][]float32, len(cols))
	for c := range cols {
		out[c] = make([]float32, len(cols[c]))
		for r := range cols[c] {
			res, err := floatArith(op, cols[c][r], s)
			if err != nil {
				return nil, err
			}
			out[c][r] = res
		}
	}
	return makeMatrix(out)
}

// evalUnary evaluates a unary operator over a constant value.
func evalUnary(op UnaryType, operand ConstantValue) (ConstantValue, error) {
	switch op {
	case UnaryPlus:
		switch operand.(type) {
		case Int32Value, UInt32Value, Float32Value:
			return operand, nil
		}
		if _, ok := vectorComponents(operand); ok {
			return operand, nil
		}
		return nil, errUnsupportedFold

	case UnaryMinus:
		switch v := operand.(type) {
		case Int32Value:
			return -v, nil
		case Float32Value:
			return -v, nil
		}
		if comps, ok := vectorComponents(operand); ok {
			prim, _ := componentPrimitive(comps[0])
			if prim == PrimitiveBoolean || prim == PrimitiveUInt32 {
				return nil, errUnsupportedFold
			}
			out := make([]ConstantValue, len(comps))
			for i, c := range comps {
				neg, err := evalUnary(UnaryMinus, c)
				if err != nil {
					return nil, err
				}
				out[i] = neg
			}
			return makeVector(prim, out)
		}
		if cols, ok := matrixColumns(operand); ok {
			out := make([][]float32, len(cols))
			for c := range cols {
				out[c] = make([]float32, len(cols[c]))
				for r := range cols[c] {
					out[c][r] = -cols[c][r]
				}
			}
			return makeMatrix(out)
		}
		return nil, errUnsupportedFold

	case UnaryLogicalNot:
		if b, ok := operand.(BoolValue); ok {
			return !b, nil
		}
		return nil, errUnsupportedFold

	default:
		return nil, errUnsupportedFold
	}
}

// convertScalar converts a numeric scalar constant to the target primitive
// type, following C-style conversion.
func convertScalar(target PrimitiveType, v ConstantValue) (ConstantValue, error) {
	switch val := v.(type) {
	case Int32Value:
		switch target {
		case PrimitiveInt32:
			return val, nil
		case PrimitiveUInt32:
			return UInt32Value(uint32(val)), nil
		case PrimitiveFloat32:
			return Float32Value(float32(val)), nil
		}
	case UInt32Value:
		switch target {
		case PrimitiveInt32:
			return Int32Value(int32(val)), nil
		case PrimitiveUInt32:
			return val, nil
		case PrimitiveFloat32:
			return Float32Value(float32(val)), nil
		}
	case Float32Value:
		switch target {
		case PrimitiveInt32:
			return Int32Value(int32(val)), nil
		case PrimitiveUInt32:
			return UInt32Value(uint32(val)), nil
		case PrimitiveFloat32:
			return val, nil
		}
	case BoolValue:
		if target == PrimitiveBoolean {
			return val, nil
		}
	}
	return nil, errUnsupportedFold
}

// castConstant folds a cast of constant operands into the target type.
func castConstant(target ExpressionType, operands []ConstantValue) (ConstantValue, error) {
	switch t := ResolveAlias(target).(type) {
	case PrimitiveType:
		if len(operands) != 1 {
			return nil, errUnsupportedFold
		}
		return convertScalar(t, operands[0])

	case VectorType:
		comps := flattenComponents(operands)
		if len(comps) == 1 {
			// splat a scalar across the vector
			splat := make([]ConstantValue, t.ComponentCount)
			for i := range splat {
				splat[i] = comps[0]
			}
			comps = splat
		}
		if uint32(len(comps)) != t.ComponentCount {
			return nil, errUnsupportedFold
		}
		converted := make([]ConstantValue, len(comps))
		for i, c := range comps {
			conv, err := convertScalar(t.ComponentType, c)
			if err != nil {
				return nil, err
			}
			converted[i] = conv
		}
		return makeVector(t.ComponentType, converted)

	case MatrixType:
		if t.ColumnCount != t.RowCount || t.ComponentType != PrimitiveFloat32 {
			return nil, errUnsupportedFold
		}
		if len(operands) == 1 {
			if cols, ok := matrixColumns(operands[0]); ok && uint32(len(cols)) == t.ColumnCount {
				return operands[0], nil
			}
			return nil, errUnsupportedFold
		}
		if uint32(len(operands)) != t.ColumnCount {
			return nil, errUnsupportedFold
		}
		cols := make([][]float32, len(operands))
		for i, op := range operands {
			comps, ok := vectorComponents(op)
			if !ok || uint32(len(comps)) != t.RowCount {
				return nil, errUnsupportedFold
			}
			col := make([]float32, len(comps))
			for j, c := range comps {
				f, ok := scalarOf[float32](c)
				if !ok {
					return nil, errUnsupportedFold
				}
				col[j] = f
			}
			cols[i] = col
		}
		return makeMatrix(cols)

	default:
		return nil, errUnsupportedFold
	}
}

// flattenComponents expands vectors into their scalar components, keeping
// scalars as-is.
func flattenComponents(operands []ConstantValue) []ConstantValue {
	var out []ConstantValue
	for _, op := range operands {
		if comps, ok := vectorComponents(op); ok {
			out = append(out, comps...)
			continue
		}
		out = append(out, op)
	}
	return out
}

// swizzleConstant folds a swizzle of a constant scalar or vector.
func swizzleConstant(v ConstantValue, components []uint32) (ConstantValue, error) {
	comps, isVec := vectorComponents(v)
	if !isVec {
		// scalar swizzle (x.xxx): every component references the scalar
		comps = []ConstantValue{v}
	}
	out := make([]ConstantValue, len(components))
	for i, c := range components {
		if int(c) >= len(comps) {
			return nil, errUnsupportedFold
		}
		out[i] = comps[c]
	}
	if len(out) == 1 {
		return out[0], nil
	}
	prim, ok := componentPrimitive(out[0])
	if !ok {
		return nil, errUnsupportedFold
	}
	return makeVector(prim, out)
}
