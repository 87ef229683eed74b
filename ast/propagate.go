package ast

// PropagationOptions configures constant propagation.
type PropagationOptions struct {
	// ConstantQueryCallback resolves a constant index to its value, or nil
	// when unknown. When unset, module-level propagation falls back to the
	// module's own constant declarations.
	ConstantQueryCallback func(constantID uint32) ConstantValue
}

// constantPropagationVisitor folds constant subexpressions. It is a cloner:
// anything it does not fold is copied bit-for-bit.
type constantPropagationVisitor struct {
	Cloner
	options PropagationOptions
}

func newConstantPropagationVisitor(options PropagationOptions) *constantPropagationVisitor {
	v := &constantPropagationVisitor{options: options}
	v.SetHooks(v)
	return v
}

// PropagateConstants folds every constant expression of a sanitized module,
// resolving constant references against the module's own declarations.
func PropagateConstants(module *Module) (*Module, error) {
	return PropagateConstantsWithOptions(module, PropagationOptions{})
}

// PropagateConstantsWithOptions folds every constant expression of a
// sanitized module.
func PropagateConstantsWithOptions(module *Module, options PropagationOptions) (retModule *Module, err error) {
	defer catchError(&err)

	if options.ConstantQueryCallback == nil {
		constants := gatherModuleConstants(module)
		options.ConstantQueryCallback = func(constantID uint32) ConstantValue {
			return constants[constantID]
		}
	}

	visitor := newConstantPropagationVisitor(options)
	rootClone := visitor.CloneStatement(module.RootNode).(*MultiStatement)

	return &Module{
		Metadata:        module.Metadata,
		ImportedModules: module.ImportedModules,
		RootNode:        rootClone,
	}, nil
}

// PropagateExpressionConstants folds a single expression tree.
func PropagateExpressionConstants(expr Expression, options PropagationOptions) (retExpr Expression, err error) {
	defer catchError(&err)

	visitor := newConstantPropagationVisitor(options)
	return visitor.Clone(expr), nil
}

// PropagateStatementConstants folds a single statement tree.
func PropagateStatementConstants(stmt Statement, options PropagationOptions) (retStmt Statement, err error) {
	defer catchError(&err)

	visitor := newConstantPropagationVisitor(options)
	return visitor.CloneStmt(stmt), nil
}

// gatherModuleConstants indexes the constant declarations of a module and
// its transitive imports by constant index.
func gatherModuleConstants(module *Module) map[uint32]ConstantValue {
	constants := make(map[uint32]ConstantValue)
	seen := make(map[*Module]bool)
	var gather func(m *Module)
	gather = func(m *Module) {
		if m == nil || seen[m] {
			return
		}
		seen[m] = true
		for _, imported := range m.ImportedModules {
			gather(imported.Module)
		}
		if m.RootNode == nil {
			return
		}
		for _, stmt := range m.RootNode.Statements {
			decl, ok := stmt.(*DeclareConstStatement)
			if !ok || decl.ConstIndex == nil {
				continue
			}
			if value, ok := decl.Expression.(*ConstantValueExpression); ok {
				constants[*decl.ConstIndex] = value.Value
			}
		}
	}
	gather(module)
	return constants
}

func (v *constantPropagationVisitor) CloneBinary(node *BinaryExpression) Expression {
	left := v.CloneExpression(node.Left)
	right := v.CloneExpression(node.Right)

	lhs, lhsConst := left.(*ConstantValueExpression)
	rhs, rhsConst := right.(*ConstantValueExpression)
	if lhsConst && rhsConst {
		if folded, err := evalBinary(node.Op, lhs.Value, rhs.Value); err == nil {
			return v.foldedValue(folded, node)
		} else if err == errIntegralDivisionByZeroFold {
			throw(errIntegralDivisionByZero(node.SourceLocation, lhs.Value, rhs.Value))
		} else if err == errIntegralModuloByZeroFold {
			throw(errIntegralModuloByZero(node.SourceLocation, lhs.Value, rhs.Value))
		}
	}

	clone := &BinaryExpression{Op: node.Op, Left: left, Right: right}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (v *constantPropagationVisitor) CloneUnary(node *UnaryExpression) Expression {
	operand := v.CloneExpression(node.Expression)

	if constant, ok := operand.(*ConstantValueExpression); ok {
		if folded, err := evalUnary(node.Op, constant.Value); err == nil {
			return v.foldedValue(folded, node)
		}
	}

	clone := &UnaryExpression{Op: node.Op, Expression: operand}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (v *constantPropagationVisitor) CloneCast(node *CastExpression) Expression {
	expressions := v.cloneExpressions(node.Expressions)

	if node.TargetType.IsResultingValue() {
		operands := make([]ConstantValue, 0, len(expressions))
		allConstant := true
		for _, expr := range expressions {
			constant, ok := expr.(*ConstantValueExpression)
			if !ok {
				allConstant = false
				break
			}
			operands = append(operands, constant.Value)
		}
		if allConstant && len(operands) > 0 {
			if folded, err := castConstant(node.TargetType.GetResultingValue(), operands); err == nil {
				return v.foldedValue(folded, node)
			}
		}
	}

	clone := &CastExpression{
		TargetType:  CloneExprValue(&v.Cloner, node.TargetType),
		Expressions: expressions,
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (v *constantPropagationVisitor) CloneSwizzle(node *SwizzleExpression) Expression {
	inner := v.CloneExpression(node.Expression)

	if constant, ok := inner.(*ConstantValueExpression); ok {
		components := node.Components[:node.ComponentCount]
		if folded, err := swizzleConstant(constant.Value, components); err == nil {
			return v.foldedValue(folded, node)
		}
	}

	// compose swizzle chains so that v.xyz.yz.y becomes a single swizzle
	if innerSwizzle, ok := inner.(*SwizzleExpression); ok {
		composed := &SwizzleExpression{
			Expression:     innerSwizzle.Expression,
			ComponentCount: node.ComponentCount,
		}
		for i := uint32(0); i < node.ComponentCount; i++ {
			composed.Components[i] = innerSwizzle.Components[node.Components[i]]
		}
		composed.ExpressionBase = node.ExpressionBase
		return composed
	}

	clone := &SwizzleExpression{
		Expression:     inner,
		Components:     node.Components,
		ComponentCount: node.ComponentCount,
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (v *constantPropagationVisitor) CloneConditional(node *ConditionalExpression) Expression {
	condition := v.CloneExpression(node.Condition)

	if constant, ok := condition.(*ConstantValueExpression); ok {
		if cond, ok := constant.Value.(BoolValue); ok {
			if cond {
				return v.CloneExpression(node.TruePath)
			}
			return v.CloneExpression(node.FalsePath)
		}
	}

	clone := &ConditionalExpression{
		Condition: condition,
		TruePath:  v.CloneExpression(node.TruePath),
		FalsePath: v.CloneExpression(node.FalsePath),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (v *constantPropagationVisitor) CloneConstant(node *ConstantExpression) Expression {
	if v.options.ConstantQueryCallback != nil {
		if value := v.options.ConstantQueryCallback(node.ConstantID); value != nil {
			return v.foldedValue(value, node)
		}
	}

	clone := &ConstantExpression{ConstantID: node.ConstantID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (v *constantPropagationVisitor) CloneBranch(node *BranchStatement) Statement {
	var clone *BranchStatement

	for _, cond := range node.CondStatements {
		condition := v.CloneExpression(cond.Condition)

		if constant, ok := condition.(*ConstantValueExpression); ok {
			if value, ok := constant.Value.(BoolValue); ok {
				if !value {
					// always false, prune the branch
					continue
				}
				// always true: replaces the remaining chain
				body := v.CloneStatement(cond.Statement)
				if clone == nil {
					return v.unscope(body)
				}
				clone.ElseStatement = body
				return clone
			}
		}

		if clone == nil {
			clone = &BranchStatement{IsConst: node.IsConst}
			clone.StatementBase = node.StatementBase
		}
		clone.CondStatements = append(clone.CondStatements, ConditionalBranch{
			Condition: condition,
			Statement: v.CloneStatement(cond.Statement),
		})
	}

	elseStatement := v.CloneStatement(node.ElseStatement)

	if clone == nil {
		// every branch was pruned
		if elseStatement != nil {
			return v.unscope(elseStatement)
		}
		noop := &NoOpStatement{}
		noop.StatementBase = node.StatementBase
		return noop
	}

	clone.ElseStatement = elseStatement
	return clone
}

func (v *constantPropagationVisitor) CloneConditionalStatement(node *ConditionalStatement) Statement {
	condition := v.CloneExpression(node.Condition)

	if constant, ok := condition.(*ConstantValueExpression); ok {
		if value, ok := constant.Value.(BoolValue); ok {
			if value {
				return v.CloneStatement(node.Statement)
			}
			noop := &NoOpStatement{}
			noop.StatementBase = node.StatementBase
			return noop
		}
	}

	clone := &ConditionalStatement{
		Condition: condition,
		Statement: v.CloneStatement(node.Statement),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

// foldedValue wraps a folded constant into a ConstantValueExpression,
// keeping the original node's cached type and location.
func (v *constantPropagationVisitor) foldedValue(value ConstantValue, original Expression) Expression {
	expr := &ConstantValueExpression{Value: value}
	expr.SourceLocation = original.Loc()
	if cached := original.ExprType(); cached != nil {
		expr.CachedExpressionType = cached
	} else {
		expr.CachedExpressionType = value.ConstantType()
	}
	return expr
}

// unscope unwraps a scoped statement, so that a branch body replacing the
// whole branch does not introduce a stray scope.
func (v *constantPropagationVisitor) unscope(stmt Statement) Statement {
	if scoped, ok := stmt.(*ScopedStatement); ok {
		return scoped.Statement
	}
	return stmt
}
