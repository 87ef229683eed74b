package ast

// ClonerHooks is the override surface of the Cloner: one clone method per
// node variant. A pass embeds Cloner, overrides the hooks of the variants it
// rewrites, and installs itself with SetHooks so that the default traversal
// dispatches back through the overrides.
type ClonerHooks interface {
	CloneAccessIdentifier(node *AccessIdentifierExpression) Expression
	CloneAccessIndex(node *AccessIndexExpression) Expression
	CloneAliasValue(node *AliasValueExpression) Expression
	CloneAssign(node *AssignExpression) Expression
	CloneBinary(node *BinaryExpression) Expression
	CloneCallFunction(node *CallFunctionExpression) Expression
	CloneCallMethod(node *CallMethodExpression) Expression
	CloneCast(node *CastExpression) Expression
	CloneConditional(node *ConditionalExpression) Expression
	CloneConstant(node *ConstantExpression) Expression
	CloneConstantValue(node *ConstantValueExpression) Expression
	CloneFunction(node *FunctionExpression) Expression
	CloneIdentifier(node *IdentifierExpression) Expression
	CloneIntrinsic(node *IntrinsicExpression) Expression
	CloneIntrinsicFunction(node *IntrinsicFunctionExpression) Expression
	CloneStructType(node *StructTypeExpression) Expression
	CloneSwizzle(node *SwizzleExpression) Expression
	CloneTypeExpr(node *TypeExpression) Expression
	CloneUnary(node *UnaryExpression) Expression
	CloneVariableValue(node *VariableValueExpression) Expression

	CloneBranch(node *BranchStatement) Statement
	CloneConditionalStatement(node *ConditionalStatement) Statement
	CloneDeclareAlias(node *DeclareAliasStatement) Statement
	CloneDeclareConst(node *DeclareConstStatement) Statement
	CloneDeclareExternal(node *DeclareExternalStatement) Statement
	CloneDeclareFunction(node *DeclareFunctionStatement) Statement
	CloneDeclareOption(node *DeclareOptionStatement) Statement
	CloneDeclareStruct(node *DeclareStructStatement) Statement
	CloneDeclareVariable(node *DeclareVariableStatement) Statement
	CloneDiscard(node *DiscardStatement) Statement
	CloneExpressionStatement(node *ExpressionStatement) Statement
	CloneFor(node *ForStatement) Statement
	CloneForEach(node *ForEachStatement) Statement
	CloneImport(node *ImportStatement) Statement
	CloneMulti(node *MultiStatement) Statement
	CloneNoOp(node *NoOpStatement) Statement
	CloneReturn(node *ReturnStatement) Statement
	CloneScoped(node *ScopedStatement) Statement
	CloneWhile(node *WhileStatement) Statement
	CloneBreak(node *BreakStatement) Statement
	CloneContinue(node *ContinueStatement) Statement
}

// Cloner deep-copies AST subtrees, preserving cached expression types and
// source locations. It is the base of every transforming pass.
type Cloner struct {
	hooks ClonerHooks

	expressionStack []Expression
	statementStack  []Statement
}

// NewCloner returns a plain deep-copying cloner.
func NewCloner() *Cloner {
	c := &Cloner{}
	c.hooks = c
	return c
}

// SetHooks installs the override surface the traversal dispatches through.
func (c *Cloner) SetHooks(hooks ClonerHooks) { c.hooks = hooks }

func (c *Cloner) pushExpression(expr Expression) { c.expressionStack = append(c.expressionStack, expr) }

func (c *Cloner) popExpression() Expression {
	expr := c.expressionStack[len(c.expressionStack)-1]
	c.expressionStack = c.expressionStack[:len(c.expressionStack)-1]
	return expr
}

func (c *Cloner) pushStatement(stmt Statement) { c.statementStack = append(c.statementStack, stmt) }

func (c *Cloner) popStatement() Statement {
	stmt := c.statementStack[len(c.statementStack)-1]
	c.statementStack = c.statementStack[:len(c.statementStack)-1]
	return stmt
}

// Clone deep-copies a root expression, asserting stack discipline.
func (c *Cloner) Clone(expr Expression) Expression {
	if len(c.expressionStack) != 0 || len(c.statementStack) != 0 {
		panic("cloner stacks are not empty")
	}
	clone := c.CloneExpression(expr)
	if len(c.expressionStack) != 0 || len(c.statementStack) != 0 {
		panic("cloner stacks are not empty after clone")
	}
	return clone
}

// CloneStmt deep-copies a root statement, asserting stack discipline.
func (c *Cloner) CloneStmt(stmt Statement) Statement {
	if len(c.expressionStack) != 0 || len(c.statementStack) != 0 {
		panic("cloner stacks are not empty")
	}
	clone := c.CloneStatement(stmt)
	if len(c.expressionStack) != 0 || len(c.statementStack) != 0 {
		panic("cloner stacks are not empty after clone")
	}
	return clone
}

// CloneExpression deep-copies an expression subtree (nil-safe).
func (c *Cloner) CloneExpression(expr Expression) Expression {
	if expr == nil {
		return nil
	}
	expr.Visit(c)
	return c.popExpression()
}

// CloneStatement deep-copies a statement subtree (nil-safe).
func (c *Cloner) CloneStatement(stmt Statement) Statement {
	if stmt == nil {
		return nil
	}
	stmt.Visit(c)
	return c.popStatement()
}

func (c *Cloner) cloneExpressions(exprs []Expression) []Expression {
	if exprs == nil {
		return nil
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = c.CloneExpression(e)
	}
	return out
}

func (c *Cloner) cloneStatements(stmts []Statement) []Statement {
	if stmts == nil {
		return nil
	}
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = c.CloneStatement(s)
	}
	return out
}

// CloneExprValue deep-copies an attribute slot, cloning the held expression
// when the slot is unresolved.
func CloneExprValue[T any](c *Cloner, v ExpressionValue[T]) ExpressionValue[T] {
	switch {
	case v.Value != nil:
		value := *v.Value
		return ExpressionValue[T]{Value: &value}
	case v.Expr != nil:
		return ExpressionValue[T]{Expr: c.CloneExpression(v.Expr)}
	default:
		return ExpressionValue[T]{}
	}
}

func cloneIndex(idx *uint32) *uint32 {
	if idx == nil {
		return nil
	}
	value := *idx
	return &value
}

// Visitor plumbing: each Visit pushes the result of the matching hook, so
// that overridden hooks are reached through double dispatch.

func (c *Cloner) VisitAccessIdentifier(node *AccessIdentifierExpression) {
	c.pushExpression(c.hooks.CloneAccessIdentifier(node))
}
func (c *Cloner) VisitAccessIndex(node *AccessIndexExpression) {
	c.pushExpression(c.hooks.CloneAccessIndex(node))
}
func (c *Cloner) VisitAliasValue(node *AliasValueExpression) {
	c.pushExpression(c.hooks.CloneAliasValue(node))
}
func (c *Cloner) VisitAssign(node *AssignExpression) {
	c.pushExpression(c.hooks.CloneAssign(node))
}
func (c *Cloner) VisitBinary(node *BinaryExpression) {
	c.pushExpression(c.hooks.CloneBinary(node))
}
func (c *Cloner) VisitCallFunction(node *CallFunctionExpression) {
	c.pushExpression(c.hooks.CloneCallFunction(node))
}
func (c *Cloner) VisitCallMethod(node *CallMethodExpression) {
	c.pushExpression(c.hooks.CloneCallMethod(node))
}
func (c *Cloner) VisitCast(node *CastExpression) {
	c.pushExpression(c.hooks.CloneCast(node))
}
func (c *Cloner) VisitConditional(node *ConditionalExpression) {
	c.pushExpression(c.hooks.CloneConditional(node))
}
func (c *Cloner) VisitConstant(node *ConstantExpression) {
	c.pushExpression(c.hooks.CloneConstant(node))
}
func (c *Cloner) VisitConstantValue(node *ConstantValueExpression) {
	c.pushExpression(c.hooks.CloneConstantValue(node))
}
func (c *Cloner) VisitFunction(node *FunctionExpression) {
	c.pushExpression(c.hooks.CloneFunction(node))
}
func (c *Cloner) VisitIdentifier(node *IdentifierExpression) {
	c.pushExpression(c.hooks.CloneIdentifier(node))
}
func (c *Cloner) VisitIntrinsic(node *IntrinsicExpression) {
	c.pushExpression(c.hooks.CloneIntrinsic(node))
}
func (c *Cloner) VisitIntrinsicFunction(node *IntrinsicFunctionExpression) {
	c.pushExpression(c.hooks.CloneIntrinsicFunction(node))
}
func (c *Cloner) VisitStructType(node *StructTypeExpression) {
	c.pushExpression(c.hooks.CloneStructType(node))
}
func (c *Cloner) VisitSwizzle(node *SwizzleExpression) {
	c.pushExpression(c.hooks.CloneSwizzle(node))
}
func (c *Cloner) VisitType(node *TypeExpression) {
	c.pushExpression(c.hooks.CloneTypeExpr(node))
}
func (c *Cloner) VisitUnary(node *UnaryExpression) {
	c.pushExpression(c.hooks.CloneUnary(node))
}
func (c *Cloner) VisitVariableValue(node *VariableValueExpression) {
	c.pushExpression(c.hooks.CloneVariableValue(node))
}

func (c *Cloner) VisitBranch(node *BranchStatement) { c.pushStatement(c.hooks.CloneBranch(node)) }
func (c *Cloner) VisitConditionalStatement(node *ConditionalStatement) {
	c.pushStatement(c.hooks.CloneConditionalStatement(node))
}
func (c *Cloner) VisitDeclareAlias(node *DeclareAliasStatement) {
	c.pushStatement(c.hooks.CloneDeclareAlias(node))
}
func (c *Cloner) VisitDeclareConst(node *DeclareConstStatement) {
	c.pushStatement(c.hooks.CloneDeclareConst(node))
}
func (c *Cloner) VisitDeclareExternal(node *DeclareExternalStatement) {
	c.pushStatement(c.hooks.CloneDeclareExternal(node))
}
func (c *Cloner) VisitDeclareFunction(node *DeclareFunctionStatement) {
	c.pushStatement(c.hooks.CloneDeclareFunction(node))
}
func (c *Cloner) VisitDeclareOption(node *DeclareOptionStatement) {
	c.pushStatement(c.hooks.CloneDeclareOption(node))
}
func (c *Cloner) VisitDeclareStruct(node *DeclareStructStatement) {
	c.pushStatement(c.hooks.CloneDeclareStruct(node))
}
func (c *Cloner) VisitDeclareVariable(node *DeclareVariableStatement) {
	c.pushStatement(c.hooks.CloneDeclareVariable(node))
}
func (c *Cloner) VisitDiscard(node *DiscardStatement) { c.pushStatement(c.hooks.CloneDiscard(node)) }
func (c *Cloner) VisitExpressionStatement(node *ExpressionStatement) {
	c.pushStatement(c.hooks.CloneExpressionStatement(node))
}
func (c *Cloner) VisitFor(node *ForStatement)         { c.pushStatement(c.hooks.CloneFor(node)) }
func (c *Cloner) VisitForEach(node *ForEachStatement) { c.pushStatement(c.hooks.CloneForEach(node)) }
func (c *Cloner) VisitImport(node *ImportStatement)   { c.pushStatement(c.hooks.CloneImport(node)) }
func (c *Cloner) VisitMulti(node *MultiStatement)     { c.pushStatement(c.hooks.CloneMulti(node)) }
func (c *Cloner) VisitNoOp(node *NoOpStatement)       { c.pushStatement(c.hooks.CloneNoOp(node)) }
func (c *Cloner) VisitReturn(node *ReturnStatement)   { c.pushStatement(c.hooks.CloneReturn(node)) }
func (c *Cloner) VisitScoped(node *ScopedStatement)   { c.pushStatement(c.hooks.CloneScoped(node)) }
func (c *Cloner) VisitWhile(node *WhileStatement)     { c.pushStatement(c.hooks.CloneWhile(node)) }
func (c *Cloner) VisitBreak(node *BreakStatement)     { c.pushStatement(c.hooks.CloneBreak(node)) }
func (c *Cloner) VisitContinue(node *ContinueStatement) {
	c.pushStatement(c.hooks.CloneContinue(node))
}

// Default hooks: bit-for-bit deep copies.

func (c *Cloner) CloneAccessIdentifier(node *AccessIdentifierExpression) Expression {
	clone := &AccessIdentifierExpression{
		Expr:        c.CloneExpression(node.Expr),
		Identifiers: append([]AccessIdentifier(nil), node.Identifiers...),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneAccessIndex(node *AccessIndexExpression) Expression {
	clone := &AccessIndexExpression{
		Expr:    c.CloneExpression(node.Expr),
		Indices: c.cloneExpressions(node.Indices),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneAliasValue(node *AliasValueExpression) Expression {
	clone := &AliasValueExpression{AliasID: node.AliasID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneAssign(node *AssignExpression) Expression {
	clone := &AssignExpression{
		Op:    node.Op,
		Left:  c.CloneExpression(node.Left),
		Right: c.CloneExpression(node.Right),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneBinary(node *BinaryExpression) Expression {
	clone := &BinaryExpression{
		Op:    node.Op,
		Left:  c.CloneExpression(node.Left),
		Right: c.CloneExpression(node.Right),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneCallFunction(node *CallFunctionExpression) Expression {
	clone := &CallFunctionExpression{
		TargetFunction: c.CloneExpression(node.TargetFunction),
		Parameters:     c.cloneExpressions(node.Parameters),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneCallMethod(node *CallMethodExpression) Expression {
	clone := &CallMethodExpression{
		Object:     c.CloneExpression(node.Object),
		MethodName: node.MethodName,
		Parameters: c.cloneExpressions(node.Parameters),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneCast(node *CastExpression) Expression {
	clone := &CastExpression{
		TargetType:  CloneExprValue(c, node.TargetType),
		Expressions: c.cloneExpressions(node.Expressions),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneConditional(node *ConditionalExpression) Expression {
	clone := &ConditionalExpression{
		Condition: c.CloneExpression(node.Condition),
		TruePath:  c.CloneExpression(node.TruePath),
		FalsePath: c.CloneExpression(node.FalsePath),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneConstant(node *ConstantExpression) Expression {
	clone := &ConstantExpression{ConstantID: node.ConstantID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneConstantValue(node *ConstantValueExpression) Expression {
	clone := &ConstantValueExpression{Value: node.Value}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneFunction(node *FunctionExpression) Expression {
	clone := &FunctionExpression{FuncID: node.FuncID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneIdentifier(node *IdentifierExpression) Expression {
	clone := &IdentifierExpression{Identifier: node.Identifier}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneIntrinsic(node *IntrinsicExpression) Expression {
	clone := &IntrinsicExpression{
		Intrinsic:  node.Intrinsic,
		Parameters: c.cloneExpressions(node.Parameters),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneIntrinsicFunction(node *IntrinsicFunctionExpression) Expression {
	clone := &IntrinsicFunctionExpression{IntrinsicID: node.IntrinsicID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneStructType(node *StructTypeExpression) Expression {
	clone := &StructTypeExpression{StructTypeID: node.StructTypeID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneSwizzle(node *SwizzleExpression) Expression {
	clone := &SwizzleExpression{
		Expression:     c.CloneExpression(node.Expression),
		Components:     node.Components,
		ComponentCount: node.ComponentCount,
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneTypeExpr(node *TypeExpression) Expression {
	clone := &TypeExpression{TypeID: node.TypeID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneUnary(node *UnaryExpression) Expression {
	clone := &UnaryExpression{
		Op:         node.Op,
		Expression: c.CloneExpression(node.Expression),
	}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneVariableValue(node *VariableValueExpression) Expression {
	clone := &VariableValueExpression{VariableID: node.VariableID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}

func (c *Cloner) CloneBranch(node *BranchStatement) Statement {
	clone := &BranchStatement{
		CondStatements: make([]ConditionalBranch, len(node.CondStatements)),
		ElseStatement:  c.CloneStatement(node.ElseStatement),
		IsConst:        node.IsConst,
	}
	for i, cond := range node.CondStatements {
		clone.CondStatements[i] = ConditionalBranch{
			Condition: c.CloneExpression(cond.Condition),
			Statement: c.CloneStatement(cond.Statement),
		}
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneConditionalStatement(node *ConditionalStatement) Statement {
	clone := &ConditionalStatement{
		Condition: c.CloneExpression(node.Condition),
		Statement: c.CloneStatement(node.Statement),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDeclareAlias(node *DeclareAliasStatement) Statement {
	clone := &DeclareAliasStatement{
		AliasIndex: cloneIndex(node.AliasIndex),
		Name:       node.Name,
		Expression: c.CloneExpression(node.Expression),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDeclareConst(node *DeclareConstStatement) Statement {
	clone := &DeclareConstStatement{
		ConstIndex: cloneIndex(node.ConstIndex),
		Name:       node.Name,
		Type:       CloneExprValue(c, node.Type),
		Expression: c.CloneExpression(node.Expression),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDeclareExternal(node *DeclareExternalStatement) Statement {
	clone := &DeclareExternalStatement{
		ExternalVars: make([]ExternalVar, len(node.ExternalVars)),
		BindingSet:   CloneExprValue(c, node.BindingSet),
	}
	for i, extVar := range node.ExternalVars {
		clone.ExternalVars[i] = ExternalVar{
			VarIndex:       cloneIndex(extVar.VarIndex),
			Name:           extVar.Name,
			Type:           CloneExprValue(c, extVar.Type),
			BindingIndex:   CloneExprValue(c, extVar.BindingIndex),
			BindingSet:     CloneExprValue(c, extVar.BindingSet),
			SourceLocation: extVar.SourceLocation,
		}
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDeclareFunction(node *DeclareFunctionStatement) Statement {
	clone := &DeclareFunctionStatement{
		FuncIndex:          cloneIndex(node.FuncIndex),
		Name:               node.Name,
		Parameters:         make([]FunctionParameter, len(node.Parameters)),
		Statements:         c.cloneStatements(node.Statements),
		ReturnType:         CloneExprValue(c, node.ReturnType),
		DepthWrite:         CloneExprValue(c, node.DepthWrite),
		EarlyFragmentTests: CloneExprValue(c, node.EarlyFragmentTests),
		EntryStage:         CloneExprValue(c, node.EntryStage),
		IsExported:         CloneExprValue(c, node.IsExported),
	}
	for i, param := range node.Parameters {
		clone.Parameters[i] = FunctionParameter{
			VarIndex:       cloneIndex(param.VarIndex),
			Name:           param.Name,
			Type:           CloneExprValue(c, param.Type),
			SourceLocation: param.SourceLocation,
		}
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDeclareOption(node *DeclareOptionStatement) Statement {
	clone := &DeclareOptionStatement{
		OptIndex:     cloneIndex(node.OptIndex),
		OptName:      node.OptName,
		OptType:      CloneExprValue(c, node.OptType),
		DefaultValue: c.CloneExpression(node.DefaultValue),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDeclareStruct(node *DeclareStructStatement) Statement {
	clone := &DeclareStructStatement{
		StructIndex: cloneIndex(node.StructIndex),
		IsExported:  CloneExprValue(c, node.IsExported),
		Description: StructDescription{
			Name:    node.Description.Name,
			Layout:  CloneExprValue(c, node.Description.Layout),
			Members: make([]StructMember, len(node.Description.Members)),
		},
	}
	for i, member := range node.Description.Members {
		clone.Description.Members[i] = StructMember{
			Name:           member.Name,
			Type:           CloneExprValue(c, member.Type),
			Builtin:        CloneExprValue(c, member.Builtin),
			Cond:           CloneExprValue(c, member.Cond),
			LocationIndex:  CloneExprValue(c, member.LocationIndex),
			SourceLocation: member.SourceLocation,
		}
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDeclareVariable(node *DeclareVariableStatement) Statement {
	clone := &DeclareVariableStatement{
		VarIndex:          cloneIndex(node.VarIndex),
		VarName:           node.VarName,
		VarType:           CloneExprValue(c, node.VarType),
		InitialExpression: c.CloneExpression(node.InitialExpression),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneDiscard(node *DiscardStatement) Statement {
	clone := &DiscardStatement{}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneExpressionStatement(node *ExpressionStatement) Statement {
	clone := &ExpressionStatement{Expression: c.CloneExpression(node.Expression)}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneFor(node *ForStatement) Statement {
	clone := &ForStatement{
		VarIndex: cloneIndex(node.VarIndex),
		VarName:  node.VarName,
		FromExpr: c.CloneExpression(node.FromExpr),
		ToExpr:   c.CloneExpression(node.ToExpr),
		StepExpr: c.CloneExpression(node.StepExpr),
		Unroll:   CloneExprValue(c, node.Unroll),
		Body:     c.CloneStatement(node.Body),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneForEach(node *ForEachStatement) Statement {
	clone := &ForEachStatement{
		VarIndex:   cloneIndex(node.VarIndex),
		VarName:    node.VarName,
		Expression: c.CloneExpression(node.Expression),
		Unroll:     CloneExprValue(c, node.Unroll),
		Body:       c.CloneStatement(node.Body),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneImport(node *ImportStatement) Statement {
	clone := &ImportStatement{
		ModuleName:  node.ModuleName,
		Identifiers: append([]ImportIdentifier(nil), node.Identifiers...),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneMulti(node *MultiStatement) Statement {
	clone := &MultiStatement{Statements: c.cloneStatements(node.Statements)}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneNoOp(node *NoOpStatement) Statement {
	clone := &NoOpStatement{}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneReturn(node *ReturnStatement) Statement {
	clone := &ReturnStatement{ReturnExpr: c.CloneExpression(node.ReturnExpr)}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneScoped(node *ScopedStatement) Statement {
	clone := &ScopedStatement{Statement: c.CloneStatement(node.Statement)}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneWhile(node *WhileStatement) Statement {
	clone := &WhileStatement{
		Condition: c.CloneExpression(node.Condition),
		Unroll:    CloneExprValue(c, node.Unroll),
		Body:      c.CloneStatement(node.Body),
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneBreak(node *BreakStatement) Statement {
	clone := &BreakStatement{}
	clone.StatementBase = node.StatementBase
	return clone
}

func (c *Cloner) CloneContinue(node *ContinueStatement) Statement {
	clone := &ContinueStatement{}
	clone.StatementBase = node.StatementBase
	return clone
}
