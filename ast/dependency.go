package ast

// UsageSet records which declarations of a module are reachable, one bit set
// per declaration kind, addressed by declaration index.
type UsageSet struct {
	UsedAliases   Bitset
	UsedConsts    Bitset
	UsedFunctions Bitset
	UsedOptions   Bitset
	UsedStructs   Bitset
	UsedVariables Bitset
}

func (u *UsageSet) union(other *UsageSet) bool {
	changed := u.UsedAliases.Union(&other.UsedAliases)
	changed = u.UsedConsts.Union(&other.UsedConsts) || changed
	changed = u.UsedFunctions.Union(&other.UsedFunctions) || changed
	changed = u.UsedOptions.Union(&other.UsedOptions) || changed
	changed = u.UsedStructs.Union(&other.UsedStructs) || changed
	changed = u.UsedVariables.Union(&other.UsedVariables) || changed
	return changed
}

// DependencyConfig configures which entry points root the reachability
// analysis.
type DependencyConfig struct {
	// UsedShaderStages selects the stages whose entry functions are roots.
	UsedShaderStages ShaderStageFlags
}

// DefaultDependencyConfig roots the analysis at every shader stage.
func DefaultDependencyConfig() DependencyConfig {
	return DependencyConfig{UsedShaderStages: ShaderStageAll}
}

// DependencyChecker computes transitive usage of declarations from the
// entry points of a module. It is a recursive visitor: declarations record
// their own dependency sets, entry points seed the roots, and Resolve
// closes the relation.
type DependencyChecker struct {
	config DependencyConfig

	globalUsage  UsageSet
	resolved     UsageSet
	functionDeps map[uint32]*UsageSet
	structDeps   map[uint32]*UsageSet
	variableDeps map[uint32]*UsageSet
	constDeps    map[uint32]*UsageSet
	aliasDeps    map[uint32]*UsageSet

	// currentUsage receives the dependencies found while walking the body
	// of the declaration being registered; nil at module level.
	currentUsage *UsageSet
}

// NewDependencyChecker builds a checker rooted at the stages of config.
func NewDependencyChecker(config DependencyConfig) *DependencyChecker {
	return &DependencyChecker{
		config:       config,
		functionDeps: make(map[uint32]*UsageSet),
		structDeps:   make(map[uint32]*UsageSet),
		variableDeps: make(map[uint32]*UsageSet),
		constDeps:    make(map[uint32]*UsageSet),
		aliasDeps:    make(map[uint32]*UsageSet),
	}
}

// MarkFunctionAsUsed adds a function root besides the entry points.
func (d *DependencyChecker) MarkFunctionAsUsed(funcIndex uint32) {
	d.globalUsage.UsedFunctions.UnboundedSet(funcIndex)
}

// MarkStructAsUsed adds a struct root.
func (d *DependencyChecker) MarkStructAsUsed(structIndex uint32) {
	d.globalUsage.UsedStructs.UnboundedSet(structIndex)
}

// Register walks a module root, recording the dependency set of every
// declaration it contains.
func (d *DependencyChecker) Register(statement Statement) {
	d.visitStatement(statement)
}

// RegisterModule registers a module and its transitive imports.
func (d *DependencyChecker) RegisterModule(module *Module) {
	seen := make(map[*Module]bool)
	var register func(m *Module)
	register = func(m *Module) {
		if m == nil || seen[m] {
			return
		}
		seen[m] = true
		for _, imported := range m.ImportedModules {
			register(imported.Module)
		}
		if m.RootNode != nil {
			d.Register(m.RootNode)
		}
	}
	register(module)
}

// Resolve computes the transitive closure of the recorded usage.
func (d *DependencyChecker) Resolve() {
	d.resolved = UsageSet{}
	d.resolved.union(&d.globalUsage)

	for changed := true; changed; {
		changed = false
		changed = d.expand(&d.resolved.UsedFunctions, d.functionDeps) || changed
		changed = d.expand(&d.resolved.UsedStructs, d.structDeps) || changed
		changed = d.expand(&d.resolved.UsedVariables, d.variableDeps) || changed
		changed = d.expand(&d.resolved.UsedConsts, d.constDeps) || changed
		changed = d.expand(&d.resolved.UsedAliases, d.aliasDeps) || changed
	}
}

func (d *DependencyChecker) expand(used *Bitset, deps map[uint32]*UsageSet) bool {
	changed := false
	for index, set := range deps {
		if used.Test(index) {
			changed = d.resolved.union(set) || changed
		}
	}
	return changed
}

// Usage returns the resolved usage set; call Resolve first.
func (d *DependencyChecker) Usage() *UsageSet {
	return &d.resolved
}

func (d *DependencyChecker) mark(fill func(u *UsageSet)) {
	if d.currentUsage != nil {
		fill(d.currentUsage)
		return
	}
	fill(&d.globalUsage)
}

func (d *DependencyChecker) registerType(t ExpressionType) {
	switch typ := t.(type) {
	case StructType:
		d.mark(func(u *UsageSet) { u.UsedStructs.UnboundedSet(typ.StructIndex) })
	case UniformType:
		d.registerType(typ.ContainedType)
	case ArrayType:
		d.registerType(typ.ContainedType)
	case AliasType:
		d.mark(func(u *UsageSet) { u.UsedAliases.UnboundedSet(typ.AliasIndex) })
		d.registerType(typ.TargetType)
	case TypeType:
		if typ.ContainedType != nil {
			d.registerType(typ.ContainedType)
		}
	}
}

func (d *DependencyChecker) registerExprValueType(v ExpressionValue[ExpressionType]) {
	if v.IsResultingValue() {
		d.registerType(v.GetResultingValue())
	} else if v.IsExpression() {
		d.visitExpression(v.GetExpression())
	}
}

func (d *DependencyChecker) visitExpression(expr Expression) {
	if expr == nil {
		return
	}
	expr.Visit(d)
}

func (d *DependencyChecker) visitStatement(stmt Statement) {
	if stmt == nil {
		return
	}
	stmt.Visit(d)
}

// Expression visitor

func (d *DependencyChecker) VisitAccessIdentifier(node *AccessIdentifierExpression) {
	d.visitExpression(node.Expr)
}

func (d *DependencyChecker) VisitAccessIndex(node *AccessIndexExpression) {
	d.visitExpression(node.Expr)
	for _, index := range node.Indices {
		d.visitExpression(index)
	}
}

func (d *DependencyChecker) VisitAliasValue(node *AliasValueExpression) {
	d.mark(func(u *UsageSet) { u.UsedAliases.UnboundedSet(node.AliasID) })
}

func (d *DependencyChecker) VisitAssign(node *AssignExpression) {
	d.visitExpression(node.Left)
	d.visitExpression(node.Right)
}

func (d *DependencyChecker) VisitBinary(node *BinaryExpression) {
	d.visitExpression(node.Left)
	d.visitExpression(node.Right)
}

func (d *DependencyChecker) VisitCallFunction(node *CallFunctionExpression) {
	d.visitExpression(node.TargetFunction)
	for _, param := range node.Parameters {
		d.visitExpression(param)
	}
}

func (d *DependencyChecker) VisitCallMethod(node *CallMethodExpression) {
	d.visitExpression(node.Object)
	for _, param := range node.Parameters {
		d.visitExpression(param)
	}
}

func (d *DependencyChecker) VisitCast(node *CastExpression) {
	d.registerExprValueType(node.TargetType)
	for _, expr := range node.Expressions {
		d.visitExpression(expr)
	}
}

func (d *DependencyChecker) VisitConditional(node *ConditionalExpression) {
	d.visitExpression(node.Condition)
	d.visitExpression(node.TruePath)
	d.visitExpression(node.FalsePath)
}

func (d *DependencyChecker) VisitConstant(node *ConstantExpression) {
	d.mark(func(u *UsageSet) { u.UsedConsts.UnboundedSet(node.ConstantID) })
}

func (d *DependencyChecker) VisitConstantValue(node *ConstantValueExpression) {}

func (d *DependencyChecker) VisitFunction(node *FunctionExpression) {
	d.mark(func(u *UsageSet) { u.UsedFunctions.UnboundedSet(node.FuncID) })
}

func (d *DependencyChecker) VisitIdentifier(node *IdentifierExpression) {}

func (d *DependencyChecker) VisitIntrinsic(node *IntrinsicExpression) {
	for _, param := range node.Parameters {
		d.visitExpression(param)
	}
}

func (d *DependencyChecker) VisitIntrinsicFunction(node *IntrinsicFunctionExpression) {}

func (d *DependencyChecker) VisitStructType(node *StructTypeExpression) {
	d.mark(func(u *UsageSet) { u.UsedStructs.UnboundedSet(node.StructTypeID) })
}

func (d *DependencyChecker) VisitSwizzle(node *SwizzleExpression) {
	d.visitExpression(node.Expression)
}

func (d *DependencyChecker) VisitType(node *TypeExpression) {}

func (d *DependencyChecker) VisitUnary(node *UnaryExpression) {
	d.visitExpression(node.Expression)
}

func (d *DependencyChecker) VisitVariableValue(node *VariableValueExpression) {
	d.mark(func(u *UsageSet) { u.UsedVariables.UnboundedSet(node.VariableID) })
}

// Statement visitor

func (d *DependencyChecker) VisitBranch(node *BranchStatement) {
	for _, cond := range node.CondStatements {
		d.visitExpression(cond.Condition)
		d.visitStatement(cond.Statement)
	}
	d.visitStatement(node.ElseStatement)
}

func (d *DependencyChecker) VisitConditionalStatement(node *ConditionalStatement) {
	d.visitExpression(node.Condition)
	d.visitStatement(node.Statement)
}

func (d *DependencyChecker) VisitDeclareAlias(node *DeclareAliasStatement) {
	if node.AliasIndex == nil {
		return
	}
	usage := &UsageSet{}
	d.aliasDeps[*node.AliasIndex] = usage

	previous := d.currentUsage
	d.currentUsage = usage
	d.visitExpression(node.Expression)
	d.currentUsage = previous
}

func (d *DependencyChecker) VisitDeclareConst(node *DeclareConstStatement) {
	if node.ConstIndex == nil {
		return
	}
	usage := &UsageSet{}
	d.constDeps[*node.ConstIndex] = usage

	previous := d.currentUsage
	d.currentUsage = usage
	d.registerExprValueType(node.Type)
	d.visitExpression(node.Expression)
	d.currentUsage = previous
}

func (d *DependencyChecker) VisitDeclareExternal(node *DeclareExternalStatement) {
	for _, extVar := range node.ExternalVars {
		if extVar.VarIndex == nil {
			continue
		}
		usage := &UsageSet{}
		d.variableDeps[*extVar.VarIndex] = usage

		previous := d.currentUsage
		d.currentUsage = usage
		d.registerExprValueType(extVar.Type)
		d.currentUsage = previous
	}
}

func (d *DependencyChecker) VisitDeclareFunction(node *DeclareFunctionStatement) {
	if node.FuncIndex == nil {
		return
	}
	usage := &UsageSet{}
	d.functionDeps[*node.FuncIndex] = usage

	previous := d.currentUsage
	d.currentUsage = usage
	for _, param := range node.Parameters {
		d.registerExprValueType(param.Type)
	}
	d.registerExprValueType(node.ReturnType)
	for _, stmt := range node.Statements {
		d.visitStatement(stmt)
	}
	d.currentUsage = previous

	if node.EntryStage.IsResultingValue() {
		stage := node.EntryStage.GetResultingValue()
		if d.config.UsedShaderStages.Test(stage) {
			d.globalUsage.UsedFunctions.UnboundedSet(*node.FuncIndex)
		}
	}
}

func (d *DependencyChecker) VisitDeclareOption(node *DeclareOptionStatement) {
	if node.OptIndex == nil {
		return
	}
	// options have no dependencies of their own beyond their default value
	d.visitExpression(node.DefaultValue)
}

func (d *DependencyChecker) VisitDeclareStruct(node *DeclareStructStatement) {
	if node.StructIndex == nil {
		return
	}
	usage := &UsageSet{}
	d.structDeps[*node.StructIndex] = usage

	previous := d.currentUsage
	d.currentUsage = usage
	for _, member := range node.Description.Members {
		d.registerExprValueType(member.Type)
		if member.Cond.IsExpression() {
			d.visitExpression(member.Cond.GetExpression())
		}
	}
	d.currentUsage = previous
}

func (d *DependencyChecker) VisitDeclareVariable(node *DeclareVariableStatement) {
	if node.VarIndex == nil {
		return
	}
	usage := &UsageSet{}
	d.variableDeps[*node.VarIndex] = usage

	previous := d.currentUsage
	d.currentUsage = usage
	d.registerExprValueType(node.VarType)
	d.visitExpression(node.InitialExpression)
	d.currentUsage = previous

	// a local variable declaration inside a used function keeps its
	// dependencies alive through the enclosing function's set
	if previous != nil {
		previous.UsedVariables.UnboundedSet(*node.VarIndex)
	}
}

func (d *DependencyChecker) VisitDiscard(node *DiscardStatement) {}

func (d *DependencyChecker) VisitExpressionStatement(node *ExpressionStatement) {
	d.visitExpression(node.Expression)
}

func (d *DependencyChecker) VisitFor(node *ForStatement) {
	d.visitExpression(node.FromExpr)
	d.visitExpression(node.ToExpr)
	d.visitExpression(node.StepExpr)
	d.visitStatement(node.Body)
}

func (d *DependencyChecker) VisitForEach(node *ForEachStatement) {
	d.visitExpression(node.Expression)
	d.visitStatement(node.Body)
}

func (d *DependencyChecker) VisitImport(node *ImportStatement) {}

func (d *DependencyChecker) VisitMulti(node *MultiStatement) {
	for _, stmt := range node.Statements {
		d.visitStatement(stmt)
	}
}

func (d *DependencyChecker) VisitNoOp(node *NoOpStatement) {}

func (d *DependencyChecker) VisitReturn(node *ReturnStatement) {
	d.visitExpression(node.ReturnExpr)
}

func (d *DependencyChecker) VisitScoped(node *ScopedStatement) {
	d.visitStatement(node.Statement)
}

func (d *DependencyChecker) VisitWhile(node *WhileStatement) {
	d.visitExpression(node.Condition)
	d.visitStatement(node.Body)
}

func (d *DependencyChecker) VisitBreak(node *BreakStatement)       {}
func (d *DependencyChecker) VisitContinue(node *ContinueStatement) {}
