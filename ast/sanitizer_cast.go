package ast

import "github.com/gogpu/nzsl/lang"

func (s *sanitizer) CloneCast(node *CastExpression) Expression {
	targetType := s.resolveTypeValue(node.TargetType, node.SourceLocation, true)

	expressions := make([]Expression, 0, len(node.Expressions))
	for _, expr := range node.Expressions {
		if expr == nil {
			break
		}
		expressions = append(expressions, s.CloneExpression(expr))
	}

	if targetType == nil {
		// partial sanitization
		clone := &CastExpression{
			TargetType:  CloneExprValue(&s.Cloner, node.TargetType),
			Expressions: expressions,
		}
		clone.ExpressionBase = node.ExpressionBase
		return clone
	}

	switch t := ResolveAlias(targetType).(type) {
	case PrimitiveType:
		s.checkScalarCast(t, expressions, node.SourceLocation)

	case VectorType:
		s.checkVectorCast(t, expressions, node.SourceLocation)

	case MatrixType:
		if len(expressions) == 1 {
			if operandType, ok := ResolveAlias(GetExpressionType(expressions[0])).(MatrixType); ok {
				if s.options.RemoveMatrixCast && s.currentStatementList != nil {
					return s.expandMatrixCast(t, operandType, expressions[0], node.SourceLocation)
				}
				break
			}
		}
		s.checkMatrixComposition(t, expressions, node.SourceLocation)

	case ArrayType:
		if t.Length == 0 {
			if len(expressions) == 0 {
				throw(errArrayLengthRequired(node.SourceLocation))
			}
			t.Length = uint32(len(expressions))
		} else if len(expressions) != int(t.Length) {
			throw(errCastComponentMismatch(node.SourceLocation, uint32(len(expressions)), t.Length))
		}
		for _, expr := range expressions {
			exprType := GetExpressionType(expr)
			if exprType != nil && !TypeEquals(ResolveAlias(exprType), ResolveAlias(t.ContainedType)) {
				throw(errCastIncompatibleTypes(expr.Loc(), exprType, t.ContainedType))
			}
		}
		targetType = t

	default:
		if len(expressions) > 0 {
			throw(errCastIncompatibleTypes(node.SourceLocation, GetExpressionType(expressions[0]), targetType))
		}
	}

	clone := &CastExpression{
		TargetType:  ExprValue(targetType),
		Expressions: expressions,
	}
	clone.ExpressionBase = node.ExpressionBase
	clone.CachedExpressionType = targetType
	return clone
}

func isNumericPrimitiveType(t ExpressionType) bool {
	prim, ok := t.(PrimitiveType)
	return ok && prim != PrimitiveBoolean && prim != PrimitiveString
}

func (s *sanitizer) checkScalarCast(target PrimitiveType, expressions []Expression, loc lang.SourceLocation) {
	if len(expressions) != 1 {
		throw(errCastComponentMismatch(loc, uint32(len(expressions)), 1))
	}
	exprType := GetExpressionType(expressions[0])
	if exprType == nil {
		return
	}
	resolved := ResolveAlias(exprType)
	if target == PrimitiveBoolean {
		if !TypeEquals(resolved, PrimitiveBoolean) {
			throw(errCastIncompatibleTypes(loc, exprType, target))
		}
		return
	}
	if !isNumericPrimitiveType(resolved) {
		throw(errCastIncompatibleTypes(loc, exprType, target))
	}
}

func (s *sanitizer) checkVectorCast(target VectorType, expressions []Expression, loc lang.SourceLocation) {
	total := uint32(0)
	known := true
	for _, expr := range expressions {
		exprType := GetExpressionType(expr)
		if exprType == nil {
			known = false
			continue
		}
		switch t := ResolveAlias(exprType).(type) {
		case PrimitiveType:
			if t == PrimitiveBoolean && target.ComponentType != PrimitiveBoolean {
				throw(errCastIncompatibleTypes(expr.Loc(), exprType, target))
			}
			if t == PrimitiveString {
				throw(errCastIncompatibleTypes(expr.Loc(), exprType, target))
			}
			total++
		case VectorType:
			total += t.ComponentCount
		default:
			throw(errCastIncompatibleTypes(expr.Loc(), exprType, target))
		}
	}
	if !known {
		return
	}
	if total != 1 && total != target.ComponentCount {
		throw(errCastComponentMismatch(loc, total, target.ComponentCount))
	}
}

func (s *sanitizer) checkMatrixComposition(target MatrixType, expressions []Expression, loc lang.SourceLocation) {
	known := true
	for _, expr := range expressions {
		exprType := GetExpressionType(expr)
		if exprType == nil {
			known = false
			continue
		}
		vec, ok := ResolveAlias(exprType).(VectorType)
		if !ok {
			throw(errCastIncompatibleTypes(expr.Loc(), exprType, target))
		}
		if vec.ComponentCount != target.RowCount {
			throw(errCastMatrixVectorComponentMismatch(expr.Loc(), vec.ComponentCount, target.RowCount))
		}
	}
	if known && len(expressions) != int(target.ColumnCount) {
		throw(errCastComponentMismatch(loc, uint32(len(expressions)), target.ColumnCount))
	}
}

// expandMatrixCast lowers matN[T](m) with differing dimensions into a
// temporary declaration and per-column assignments: kept source columns are
// truncated or padded, missing columns become identity columns.
func (s *sanitizer) expandMatrixCast(target, source MatrixType, operand Expression, loc lang.SourceLocation) Expression {
	if target == source {
		// identity cast, nothing to assemble
		return operand
	}

	columnType := MatrixColumnType(target)

	tempIndex := s.registerVariable("temp", target)
	tempName := s.registerName("temp", identifierData{kind: identVariable, index: tempIndex})

	decl := &DeclareVariableStatement{
		VarIndex: &tempIndex,
		VarName:  tempName,
		VarType:  ExprValue[ExpressionType](target),
	}
	decl.SourceLocation = loc
	*s.currentStatementList = append(*s.currentStatementList, decl)

	cloner := NewCloner()
	tempValue := func() Expression {
		value := &VariableValueExpression{VariableID: tempIndex}
		value.SourceLocation = loc
		value.CachedExpressionType = target
		return value
	}
	columnIndex := func(base Expression, col uint32, colType ExpressionType) Expression {
		index := BuildConstantValue(Int32Value(col))
		index.SourceLocation = loc
		access := &AccessIndexExpression{Expr: base, Indices: []Expression{index}}
		access.SourceLocation = loc
		access.CachedExpressionType = colType
		return access
	}
	scalar := func(value float32) Expression {
		expr := BuildConstantValue(Float32Value(value))
		expr.SourceLocation = loc
		return expr
	}

	for col := uint32(0); col < target.ColumnCount; col++ {
		var rhs Expression

		if col < source.ColumnCount {
			srcColumn := columnIndex(cloner.Clone(operand), col, MatrixColumnType(source))
			switch {
			case target.RowCount < source.RowCount:
				swizzle := &SwizzleExpression{
					Expression:     srcColumn,
					ComponentCount: target.RowCount,
				}
				for r := uint32(0); r < target.RowCount; r++ {
					swizzle.Components[r] = r
				}
				swizzle.SourceLocation = loc
				swizzle.CachedExpressionType = columnType
				rhs = swizzle

			case target.RowCount == source.RowCount:
				rhs = srcColumn

			default:
				cast := &CastExpression{TargetType: ExprValue[ExpressionType](columnType)}
				cast.Expressions = append(cast.Expressions, srcColumn)
				for r := source.RowCount; r < target.RowCount; r++ {
					pad := float32(0)
					if r == col {
						pad = 1
					}
					cast.Expressions = append(cast.Expressions, scalar(pad))
				}
				cast.SourceLocation = loc
				cast.CachedExpressionType = columnType
				rhs = cast
			}
		} else {
			cast := &CastExpression{TargetType: ExprValue[ExpressionType](columnType)}
			for r := uint32(0); r < target.RowCount; r++ {
				component := float32(0)
				if r == col {
					component = 1
				}
				cast.Expressions = append(cast.Expressions, scalar(component))
			}
			cast.SourceLocation = loc
			cast.CachedExpressionType = columnType
			rhs = cast
		}

		assign := &AssignExpression{
			Op:    AssignSimple,
			Left:  columnIndex(tempValue(), col, columnType),
			Right: rhs,
		}
		assign.SourceLocation = loc
		assign.CachedExpressionType = columnType

		stmt := &ExpressionStatement{Expression: assign}
		stmt.SourceLocation = loc
		*s.currentStatementList = append(*s.currentStatementList, stmt)
	}

	return tempValue()
}
