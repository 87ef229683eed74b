package ast

import "github.com/gogpu/nzsl/lang"

func (s *sanitizer) CloneFor(node *ForStatement) Statement {
	from := s.CloneExpression(node.FromExpr)
	to := s.CloneExpression(node.ToExpr)
	var step Expression
	if node.StepExpr != nil {
		step = s.CloneExpression(node.StepExpr)
	}

	counterType := GetExpressionType(from)
	if counterType != nil {
		if !isIntegerType(ResolveAlias(counterType)) {
			throw(errIndexRequiresInteger(from.Loc(), counterType))
		}
		for _, bound := range []Expression{to, step} {
			boundType := GetExpressionType(bound)
			if bound != nil && boundType != nil && !TypeEquals(ResolveAlias(counterType), ResolveAlias(boundType)) {
				throw(errUnmatchingTypes(bound.Loc(), counterType, boundType))
			}
		}
	}

	unroll := s.resolveUnroll(node.Unroll)
	if unroll.IsResultingValue() && unroll.GetResultingValue() == LoopUnrollAlways {
		return s.unrollFor(node, from, to, step, counterType)
	}

	if s.options.ReduceLoopsToWhile {
		return s.reduceForToWhile(node, from, to, step, counterType)
	}

	clone := &ForStatement{
		VarName:  node.VarName,
		FromExpr: from,
		ToExpr:   to,
		StepExpr: step,
		Unroll:   unroll,
	}
	clone.StatementBase = node.StatementBase

	s.pushScope()
	index := s.registerVariable(node.VarName, counterType)
	clone.VarName = s.registerName(node.VarName, identifierData{kind: identVariable, index: index})
	clone.VarIndex = &index

	s.loopDepth++
	clone.Body = s.sanitizeBody(node.Body)
	s.loopDepth--
	s.popScope()
	return clone
}

// unrollFor replicates the loop body once per iteration, binding the
// counter to a constant inside a dedicated lexical scope. Loop control is
// illegal inside the replicated bodies.
func (s *sanitizer) unrollFor(node *ForStatement, from, to, step Expression, counterType ExpressionType) Statement {
	fromValue := s.requireIntegerConstant(from)
	toValue := s.requireIntegerConstant(to)
	stepValue := int64(1)
	if step != nil {
		stepValue = s.requireIntegerConstant(step)
	}
	if stepValue <= 0 {
		throw(errConstantExpressionRequired(node.SourceLocation))
	}

	multi := &MultiStatement{}
	multi.StatementBase = node.StatementBase

	for value := fromValue; value < toValue; value += stepValue {
		s.pushScope()

		index := s.registerVariable(node.VarName, counterType)
		name := s.registerName(node.VarName, identifierData{kind: identVariable, index: index})

		counter := BuildConstantValue(makeCounterValue(counterType, value))
		counter.SourceLocation = node.SourceLocation

		decl := &DeclareVariableStatement{
			VarIndex:          &index,
			VarName:           name,
			InitialExpression: counter,
		}
		if counterType != nil {
			decl.VarType = ExprValue(counterType)
		}
		decl.SourceLocation = node.SourceLocation

		statements := []Statement{decl}
		statements = appendFlattened(statements, s.sanitizeBody(node.Body))

		s.popScope()

		inner := &MultiStatement{Statements: statements}
		inner.SourceLocation = node.SourceLocation
		scope := &ScopedStatement{Statement: inner}
		scope.SourceLocation = node.SourceLocation
		multi.Statements = append(multi.Statements, scope)
	}
	return multi
}

// reduceForToWhile lowers a numeric for loop into a counter declaration
// followed by a while loop.
func (s *sanitizer) reduceForToWhile(node *ForStatement, from, to, step Expression, counterType ExpressionType) Statement {
	s.pushScope()

	index := s.registerVariable(node.VarName, counterType)
	name := s.registerName(node.VarName, identifierData{kind: identVariable, index: index})

	decl := &DeclareVariableStatement{
		VarIndex:          &index,
		VarName:           name,
		InitialExpression: from,
	}
	if counterType != nil {
		decl.VarType = ExprValue(counterType)
	}
	decl.SourceLocation = node.SourceLocation

	counterValue := func() Expression {
		value := &VariableValueExpression{VariableID: index}
		value.SourceLocation = node.SourceLocation
		value.CachedExpressionType = counterType
		return value
	}

	condition := &BinaryExpression{Op: BinaryCompLt, Left: counterValue(), Right: to}
	condition.SourceLocation = node.SourceLocation
	condition.CachedExpressionType = PrimitiveBoolean

	if step == nil {
		one := BuildConstantValue(makeCounterValue(counterType, 1))
		one.SourceLocation = node.SourceLocation
		step = one
	}

	s.loopDepth++
	body := s.sanitizeBody(node.Body)
	s.loopDepth--

	statements := appendFlattened(nil, body)
	statements = append(statements, s.makeCounterIncrement(counterValue(), step, node.SourceLocation))

	whileBody := &MultiStatement{Statements: statements}
	whileBody.SourceLocation = node.SourceLocation
	while := &WhileStatement{Condition: condition, Body: whileBody}
	while.SourceLocation = node.SourceLocation

	s.popScope()

	outer := &MultiStatement{Statements: []Statement{decl, while}}
	outer.SourceLocation = node.SourceLocation
	scope := &ScopedStatement{Statement: outer}
	scope.StatementBase = node.StatementBase
	return scope
}

func (s *sanitizer) CloneForEach(node *ForEachStatement) Statement {
	expr := s.CloneExpression(node.Expression)
	exprType := GetExpressionType(expr)

	var arrType ArrayType
	if exprType != nil {
		arr, ok := ResolveAlias(exprType).(ArrayType)
		if !ok {
			throw(errForEachUnsupportedType(node.SourceLocation, exprType))
		}
		arrType = arr
	}

	unroll := s.resolveUnroll(node.Unroll)
	if unroll.IsResultingValue() && unroll.GetResultingValue() == LoopUnrollAlways {
		return s.unrollForEach(node, expr, arrType)
	}

	if s.options.ReduceLoopsToWhile {
		return s.reduceForEachToWhile(node, expr, arrType)
	}

	clone := &ForEachStatement{
		Expression: expr,
		Unroll:     unroll,
	}
	clone.StatementBase = node.StatementBase

	s.pushScope()
	index := s.registerVariable(node.VarName, arrType.ContainedType)
	clone.VarName = s.registerName(node.VarName, identifierData{kind: identVariable, index: index})
	clone.VarIndex = &index

	s.loopDepth++
	clone.Body = s.sanitizeBody(node.Body)
	s.loopDepth--
	s.popScope()
	return clone
}

// unrollForEach replicates the body once per element, binding the element
// variable inside a dedicated scope.
func (s *sanitizer) unrollForEach(node *ForEachStatement, expr Expression, arrType ArrayType) Statement {
	multi := &MultiStatement{}
	multi.StatementBase = node.StatementBase

	cloner := NewCloner()
	for i := uint32(0); i < arrType.Length; i++ {
		s.pushScope()

		index := s.registerVariable(node.VarName, arrType.ContainedType)
		name := s.registerName(node.VarName, identifierData{kind: identVariable, index: index})

		elementIndex := BuildConstantValue(UInt32Value(i))
		elementIndex.SourceLocation = node.SourceLocation
		element := &AccessIndexExpression{
			Expr:    cloner.Clone(expr),
			Indices: []Expression{elementIndex},
		}
		element.SourceLocation = node.SourceLocation
		element.CachedExpressionType = arrType.ContainedType

		decl := &DeclareVariableStatement{
			VarIndex:          &index,
			VarName:           name,
			VarType:           ExprValue(arrType.ContainedType),
			InitialExpression: element,
		}
		decl.SourceLocation = node.SourceLocation

		statements := []Statement{decl}
		statements = appendFlattened(statements, s.sanitizeBody(node.Body))

		s.popScope()

		inner := &MultiStatement{Statements: statements}
		inner.SourceLocation = node.SourceLocation
		scope := &ScopedStatement{Statement: inner}
		scope.SourceLocation = node.SourceLocation
		multi.Statements = append(multi.Statements, scope)
	}
	return multi
}

// reduceForEachToWhile lowers a for-each loop into an index-driven while
// loop binding the element at the top of each iteration.
func (s *sanitizer) reduceForEachToWhile(node *ForEachStatement, expr Expression, arrType ArrayType) Statement {
	s.pushScope()

	counterIndex := s.registerVariable("i", PrimitiveUInt32)
	counterName := s.registerName("i", identifierData{kind: identVariable, index: counterIndex})

	zero := BuildConstantValue(UInt32Value(0))
	zero.SourceLocation = node.SourceLocation
	counterDecl := &DeclareVariableStatement{
		VarIndex:          &counterIndex,
		VarName:           counterName,
		VarType:           ExprValue[ExpressionType](PrimitiveUInt32),
		InitialExpression: zero,
	}
	counterDecl.SourceLocation = node.SourceLocation

	counterValue := func() Expression {
		value := &VariableValueExpression{VariableID: counterIndex}
		value.SourceLocation = node.SourceLocation
		value.CachedExpressionType = ExpressionType(PrimitiveUInt32)
		return value
	}

	length := BuildConstantValue(UInt32Value(arrType.Length))
	length.SourceLocation = node.SourceLocation
	condition := &BinaryExpression{Op: BinaryCompLt, Left: counterValue(), Right: length}
	condition.SourceLocation = node.SourceLocation
	condition.CachedExpressionType = PrimitiveBoolean

	s.pushScope()
	elementVar := s.registerVariable(node.VarName, arrType.ContainedType)
	elementName := s.registerName(node.VarName, identifierData{kind: identVariable, index: elementVar})

	element := &AccessIndexExpression{
		Expr:    expr,
		Indices: []Expression{counterValue()},
	}
	element.SourceLocation = node.SourceLocation
	element.CachedExpressionType = arrType.ContainedType

	elementDecl := &DeclareVariableStatement{
		VarIndex:          &elementVar,
		VarName:           elementName,
		InitialExpression: element,
	}
	if arrType.ContainedType != nil {
		elementDecl.VarType = ExprValue(arrType.ContainedType)
	}
	elementDecl.SourceLocation = node.SourceLocation

	s.loopDepth++
	body := s.sanitizeBody(node.Body)
	s.loopDepth--
	s.popScope()

	one := BuildConstantValue(UInt32Value(1))
	one.SourceLocation = node.SourceLocation

	statements := appendFlattened([]Statement{elementDecl}, body)
	statements = append(statements, s.makeCounterIncrement(counterValue(), one, node.SourceLocation))

	whileBody := &MultiStatement{Statements: statements}
	whileBody.SourceLocation = node.SourceLocation
	while := &WhileStatement{Condition: condition, Body: whileBody}
	while.SourceLocation = node.SourceLocation

	s.popScope()

	outer := &MultiStatement{Statements: []Statement{counterDecl, while}}
	outer.SourceLocation = node.SourceLocation
	scope := &ScopedStatement{Statement: outer}
	scope.StatementBase = node.StatementBase
	return scope
}

// makeCounterIncrement builds the i += step statement closing a lowered
// loop body, honoring compound-assignment removal.
func (s *sanitizer) makeCounterIncrement(counter, step Expression, loc lang.SourceLocation) Statement {
	counterType := GetExpressionType(counter)

	assign := &AssignExpression{Op: AssignCompoundAdd, Left: counter, Right: step}
	assign.SourceLocation = loc
	assign.CachedExpressionType = counterType

	if s.options.RemoveCompoundAssignments {
		cloner := NewCloner()
		sum := &BinaryExpression{Op: BinaryAdd, Left: cloner.Clone(counter), Right: step}
		sum.SourceLocation = loc
		sum.CachedExpressionType = counterType
		assign.Op = AssignSimple
		assign.Right = sum
	}

	stmt := &ExpressionStatement{Expression: assign}
	stmt.SourceLocation = loc
	return stmt
}

// requireIntegerConstant folds an expression to an integer constant.
func (s *sanitizer) requireIntegerConstant(expr Expression) int64 {
	value := s.computeConstantValue(expr)
	if value == nil {
		throw(errConstantExpressionRequired(expr.Loc()))
	}
	switch v := value.(type) {
	case Int32Value:
		return int64(v)
	case UInt32Value:
		return int64(v)
	default:
		throw(errConstantExpressionRequired(expr.Loc()))
		return 0
	}
}

func makeCounterValue(counterType ExpressionType, value int64) ConstantValue {
	if prim, ok := ResolveAlias(counterType).(PrimitiveType); ok && prim == PrimitiveUInt32 {
		return UInt32Value(value)
	}
	return Int32Value(value)
}

func isIntegerType(t ExpressionType) bool {
	prim, ok := t.(PrimitiveType)
	return ok && (prim == PrimitiveInt32 || prim == PrimitiveUInt32)
}

// appendFlattened appends a body statement, splicing multi statements so
// that lowered loops read naturally.
func appendFlattened(statements []Statement, body Statement) []Statement {
	if multi, ok := body.(*MultiStatement); ok {
		return append(statements, multi.Statements...)
	}
	if body != nil {
		statements = append(statements, body)
	}
	return statements
}
