package ast

import "github.com/gogpu/nzsl/lang"

// Builder helpers construct AST nodes programmatically, the way a parser
// would. They are used heavily by tests and by passes that synthesize
// replacement subtrees.

// BuildIdentifier builds an unresolved identifier expression.
func BuildIdentifier(name string) *IdentifierExpression {
	return &IdentifierExpression{Identifier: name}
}

// BuildConstantValue builds a literal constant expression with its type
// cached.
func BuildConstantValue(value ConstantValue) *ConstantValueExpression {
	expr := &ConstantValueExpression{Value: value}
	expr.CachedExpressionType = value.ConstantType()
	return expr
}

// BuildBinary builds a binary expression.
func BuildBinary(op BinaryType, left, right Expression) *BinaryExpression {
	return &BinaryExpression{Op: op, Left: left, Right: right}
}

// BuildUnary builds a unary expression.
func BuildUnary(op UnaryType, operand Expression) *UnaryExpression {
	return &UnaryExpression{Op: op, Expression: operand}
}

// BuildAssign builds an assignment expression.
func BuildAssign(op AssignType, left, right Expression) *AssignExpression {
	return &AssignExpression{Op: op, Left: left, Right: right}
}

// BuildCast builds a cast of the given operands to targetType.
func BuildCast(targetType ExpressionType, expressions ...Expression) *CastExpression {
	return &CastExpression{
		TargetType:  ExprValue(targetType),
		Expressions: expressions,
	}
}

// BuildSwizzle builds a swizzle projecting the listed components.
func BuildSwizzle(expr Expression, components ...uint32) *SwizzleExpression {
	swizzle := &SwizzleExpression{
		Expression:     expr,
		ComponentCount: uint32(len(components)),
	}
	copy(swizzle.Components[:], components)
	return swizzle
}

// BuildAccessMember builds an access-by-identifier chain.
func BuildAccessMember(expr Expression, members ...string) *AccessIdentifierExpression {
	access := &AccessIdentifierExpression{Expr: expr}
	for _, m := range members {
		access.Identifiers = append(access.Identifiers, AccessIdentifier{Identifier: m})
	}
	return access
}

// BuildAccessIndex builds an access-by-index chain.
func BuildAccessIndex(expr Expression, indices ...Expression) *AccessIndexExpression {
	return &AccessIndexExpression{Expr: expr, Indices: indices}
}

// BuildCallFunction builds a function call expression.
func BuildCallFunction(target Expression, parameters ...Expression) *CallFunctionExpression {
	return &CallFunctionExpression{TargetFunction: target, Parameters: parameters}
}

// BuildIntrinsic builds an intrinsic invocation.
func BuildIntrinsic(intrinsic IntrinsicType, parameters ...Expression) *IntrinsicExpression {
	return &IntrinsicExpression{Intrinsic: intrinsic, Parameters: parameters}
}

// BuildConditionalExpr builds a compile-time conditional expression.
func BuildConditionalExpr(condition, truePath, falsePath Expression) *ConditionalExpression {
	return &ConditionalExpression{Condition: condition, TruePath: truePath, FalsePath: falsePath}
}

// BuildVariableDecl declares a variable of an explicit type without
// initializer.
func BuildVariableDecl(name string, varType ExpressionType) *DeclareVariableStatement {
	decl := &DeclareVariableStatement{VarName: name}
	if varType != nil {
		decl.VarType = ExprValue(varType)
	}
	return decl
}

// BuildVariableDeclInit declares a variable with an initializer; the type
// is inferred unless varType is non-nil.
func BuildVariableDeclInit(name string, varType ExpressionType, initial Expression) *DeclareVariableStatement {
	decl := &DeclareVariableStatement{VarName: name, InitialExpression: initial}
	if varType != nil {
		decl.VarType = ExprValue(varType)
	}
	return decl
}

// BuildConstDecl declares a compile-time constant.
func BuildConstDecl(name string, constType ExpressionType, expression Expression) *DeclareConstStatement {
	decl := &DeclareConstStatement{Name: name, Expression: expression}
	if constType != nil {
		decl.Type = ExprValue(constType)
	}
	return decl
}

// BuildOptionDecl declares a compile-time option with a default value.
func BuildOptionDecl(name string, optType ExpressionType, defaultValue Expression) *DeclareOptionStatement {
	return &DeclareOptionStatement{
		OptName:      name,
		OptType:      ExprValue(optType),
		DefaultValue: defaultValue,
	}
}

// BuildAliasDecl declares an alias of the target expression.
func BuildAliasDecl(name string, expression Expression) *DeclareAliasStatement {
	return &DeclareAliasStatement{Name: name, Expression: expression}
}

// BuildStructDecl declares a struct.
func BuildStructDecl(name string, members ...StructMember) *DeclareStructStatement {
	return &DeclareStructStatement{
		Description: StructDescription{Name: name, Members: members},
	}
}

// BuildStructMember builds one struct member of the given type.
func BuildStructMember(name string, memberType ExpressionType) StructMember {
	return StructMember{Name: name, Type: ExprValue(memberType)}
}

// BuildExternal declares an external block.
func BuildExternal(vars ...ExternalVar) *DeclareExternalStatement {
	return &DeclareExternalStatement{ExternalVars: vars}
}

// BuildExternalVar builds one external variable with binding indices.
func BuildExternalVar(name string, varType ExpressionType, set, binding uint32) ExternalVar {
	return ExternalVar{
		Name:         name,
		Type:         ExprValue(varType),
		BindingSet:   ExprValue(set),
		BindingIndex: ExprValue(binding),
	}
}

// BuildFunction declares a free function.
func BuildFunction(name string, returnType ExpressionType, parameters []FunctionParameter, statements ...Statement) *DeclareFunctionStatement {
	fn := &DeclareFunctionStatement{
		Name:       name,
		Parameters: parameters,
		Statements: statements,
	}
	if returnType != nil {
		fn.ReturnType = ExprValue(returnType)
	}
	return fn
}

// BuildEntryFunction declares an entry-point function for the given stage.
func BuildEntryFunction(stage ShaderStageType, name string, returnType ExpressionType, parameters []FunctionParameter, statements ...Statement) *DeclareFunctionStatement {
	fn := BuildFunction(name, returnType, parameters, statements...)
	fn.EntryStage = ExprValue(stage)
	return fn
}

// BuildFunctionParameter builds one function parameter.
func BuildFunctionParameter(name string, paramType ExpressionType) FunctionParameter {
	return FunctionParameter{Name: name, Type: ExprValue(paramType)}
}

// BuildReturn builds a return statement (expr may be nil).
func BuildReturn(expr Expression) *ReturnStatement {
	return &ReturnStatement{ReturnExpr: expr}
}

// BuildExpressionStatement wraps an expression into a statement.
func BuildExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{Expression: expr}
}

// BuildMulti builds a multi-statement.
func BuildMulti(statements ...Statement) *MultiStatement {
	return &MultiStatement{Statements: statements}
}

// BuildScoped wraps a statement into a lexical scope.
func BuildScoped(statement Statement) *ScopedStatement {
	return &ScopedStatement{Statement: statement}
}

// BuildBranch builds an if/else chain; elseStatement may be nil.
func BuildBranch(condStatements []ConditionalBranch, elseStatement Statement) *BranchStatement {
	return &BranchStatement{CondStatements: condStatements, ElseStatement: elseStatement}
}

// BuildConstBranch builds a const-if chain resolved at sanitization time.
func BuildConstBranch(condStatements []ConditionalBranch, elseStatement Statement) *BranchStatement {
	branch := BuildBranch(condStatements, elseStatement)
	branch.IsConst = true
	return branch
}

// BuildFor builds a numeric range loop.
func BuildFor(varName string, from, to, step Expression, body Statement) *ForStatement {
	return &ForStatement{
		VarName:  varName,
		FromExpr: from,
		ToExpr:   to,
		StepExpr: step,
		Body:     body,
	}
}

// BuildForEach builds a loop over the elements of an array expression.
func BuildForEach(varName string, expr Expression, body Statement) *ForEachStatement {
	return &ForEachStatement{VarName: varName, Expression: expr, Body: body}
}

// BuildWhile builds a while loop.
func BuildWhile(condition Expression, body Statement) *WhileStatement {
	return &WhileStatement{Condition: condition, Body: body}
}

// BuildImport builds an import directive; identifiers may be empty to
// import every exported symbol.
func BuildImport(moduleName string, identifiers ...ImportIdentifier) *ImportStatement {
	return &ImportStatement{ModuleName: moduleName, Identifiers: identifiers}
}

// BuildVariableValue references a variable by resolved index.
func BuildVariableValue(variableID uint32) *VariableValueExpression {
	return &VariableValueExpression{VariableID: variableID}
}

// BuildFunctionExpr references a function by resolved index.
func BuildFunctionExpr(funcID uint32) *FunctionExpression {
	return &FunctionExpression{FuncID: funcID}
}

// At attaches a source location to a node and returns it, for fluent test
// construction.
func At[T Node](node T, loc lang.SourceLocation) T {
	switch n := any(node).(type) {
	case Expression:
		setNodeLoc(n, loc)
	case Statement:
		setNodeLoc(n, loc)
	}
	return node
}

func setNodeLoc(node Node, loc lang.SourceLocation) {
	type locSetter interface{ setLoc(lang.SourceLocation) }
	if setter, ok := node.(locSetter); ok {
		setter.setLoc(loc)
	}
}
