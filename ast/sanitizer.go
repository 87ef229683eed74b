package ast

import (
	"fmt"
	"hash/crc32"

	"github.com/gogpu/nzsl/lang"
)

// SanitizeOptions configures the sanitizer. Every boolean canonicalization
// is opt-in; Sanitize applies none of them.
type SanitizeOptions struct {
	// AllowPartialSanitization keeps unresolved identifiers in place
	// instead of failing, so that library modules without entry points can
	// still be processed.
	AllowPartialSanitization bool
	// MakeVariableNameUnique renames shadowing declarations with a numeric
	// suffix.
	MakeVariableNameUnique bool
	// ReduceLoopsToWhile lowers for and for-each loops to while loops.
	ReduceLoopsToWhile bool
	// RemoveAliases resolves alias references and drops the declarations.
	RemoveAliases bool
	// RemoveCompoundAssignments rewrites a op= b into a = a op b.
	RemoveCompoundAssignments bool
	// RemoveConstDeclaration inlines constant values and drops the
	// declarations.
	RemoveConstDeclaration bool
	// RemoveOptionDeclaration inlines option values and drops the
	// declarations.
	RemoveOptionDeclaration bool
	// RemoveScalarSwizzling rewrites scalar swizzles into vector casts.
	RemoveScalarSwizzling bool
	// RemoveMatrixCast expands dimension-changing matrix casts into
	// element-wise column assembly.
	RemoveMatrixCast bool
	// SplitMultipleBranches rewrites if/else-if chains into nested
	// if/else statements.
	SplitMultipleBranches bool
	// UseIdentifierAccessesForStructs keeps struct member accesses by
	// name instead of lowering them to indices.
	UseIdentifierAccessesForStructs bool

	// ReservedIdentifiers forces a rename of colliding declarations.
	ReservedIdentifiers map[string]struct{}
	// OptionValues overrides option defaults, keyed by OptionHash of the
	// option name.
	OptionValues map[uint32]ConstantValue
	// ModuleResolver resolves import directives.
	ModuleResolver ModuleResolver
}

// DefaultSanitizeOptions enables variable-name uniquing, loop reduction to
// while loops, alias removal and option-declaration removal; the other
// canonicalizations stay off.
func DefaultSanitizeOptions() SanitizeOptions {
	return SanitizeOptions{
		MakeVariableNameUnique:    true,
		ReduceLoopsToWhile:        true,
		RemoveAliases:             true,
		RemoveCompoundAssignments: false,
		RemoveConstDeclaration:    false,
		RemoveOptionDeclaration:   true,
		RemoveScalarSwizzling:     false,
		RemoveMatrixCast:          false,
		SplitMultipleBranches:     false,
	}
}

// OptionHash hashes an option name the way OptionValues keys expect.
func OptionHash(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}

// Sanitize resolves, checks and canonicalizes a parsed module with an empty
// option set.
func Sanitize(module *Module) (*Module, error) {
	return SanitizeWithOptions(module, SanitizeOptions{})
}

// SanitizeWithOptions resolves names across modules, infers and checks
// types, validates attributes and applies the configured canonicalizations.
// The input module is not modified; a new module satisfying the sanitized
// invariants is returned.
func SanitizeWithOptions(module *Module, options SanitizeOptions) (retModule *Module, err error) {
	defer catchError(&err)

	s := newSanitizer(&options)
	return s.sanitizeModule(module), nil
}

type identifierKind uint8

const (
	identVariable identifierKind = iota
	identFunction
	identStruct
	identAlias
	identConstant
	identIntrinsic
	identModule
	identUnresolved
)

type identifierData struct {
	kind  identifierKind
	index uint32
}

type scopedIdentifier struct {
	name string
	data identifierData
}

type variableData struct {
	name    string
	varType ExpressionType
}

type constantData struct {
	name      string
	constType ExpressionType
	value     ConstantValue // nil when unknown (partial sanitization)
	isOption  bool
}

type aliasData struct {
	name   string
	target identifierData
	// targetType is the type an alias reference resolves through
	targetType ExpressionType
}

type optionData struct {
	name       string
	optType    ExpressionType
	constIndex uint32
}

type stageConstraint struct {
	stage   ShaderStageType
	loc     lang.SourceLocation
	builtin *BuiltinEntry
}

type functionCall struct {
	funcIndex uint32
	loc       lang.SourceLocation
}

type functionData struct {
	index      uint32
	name       string
	node       *DeclareFunctionStatement
	entryStage *ShaderStageType
	returnType ExpressionType
	paramTypes []ExpressionType

	calledFunctions  []functionCall
	stageConstraints []stageConstraint
}

type structData struct {
	name string
	desc *StructDescription
}

type moduleExports struct {
	index      uint32
	name       string
	identifier string
	module     *Module
	exports    map[string]identifierData
}

// sanitizer carries the whole compilation context: the scope environment,
// the per-kind declaration arenas (shared across imported modules) and the
// canonicalization state.
type sanitizer struct {
	Cloner
	options *SanitizeOptions

	module *Module

	// scope environment: a flat stack of identifiers with frame markers
	identifiers []scopedIdentifier
	scopeSizes  []int

	variables []variableData
	constants []constantData
	functions []*functionData
	structs   []structData
	aliases   []aliasData
	optionsTb []optionData

	modulesByName   map[string]*moduleExports
	importedModules []*moduleExports
	importStack     []string

	currentFunc          *functionData
	currentStatementList *[]Statement
	loopDepth            int

	entryStages map[ShaderStageType]bool
}

func newSanitizer(options *SanitizeOptions) *sanitizer {
	s := &sanitizer{
		options:       options,
		modulesByName: make(map[string]*moduleExports),
		entryStages:   make(map[ShaderStageType]bool),
	}
	s.SetHooks(s)
	return s
}

// sanitizeModule sanitizes the top-level module after registering the
// global scope.
func (s *sanitizer) sanitizeModule(module *Module) *Module {
	metadata := *module.Metadata
	s.checkFeatureUniqueness(&metadata)

	s.module = &Module{Metadata: &metadata}
	s.pushScope()
	s.registerIntrinsics()
	s.pushScope()

	root := &MultiStatement{}
	root.SourceLocation = module.RootNode.SourceLocation
	s.module.RootNode = root

	// re-register already linked children (sanitizing a sanitized module
	// keeps its imports)
	for _, imported := range module.ImportedModules {
		childData, ok := s.modulesByName[imported.Identifier]
		if !ok {
			childData = s.sanitizeImportedModule(imported.Identifier, imported.Module)
		}
		s.installImportedModule(childData)
	}

	s.sanitizeInto(&root.Statements, module.RootNode.Statements)

	s.popScope()
	s.popScope()

	s.resolveStageDependencies()
	return s.module
}

func (s *sanitizer) checkFeatureUniqueness(metadata *ModuleMetadata) {
	seen := make(map[ModuleFeature]bool)
	for _, feature := range metadata.EnabledFeatures {
		if seen[feature] {
			throw(errModuleFeatureMultipleUnique(lang.SourceLocation{}, feature))
		}
		seen[feature] = true
	}
}

// Scope management

func (s *sanitizer) pushScope() {
	s.scopeSizes = append(s.scopeSizes, len(s.identifiers))
}

func (s *sanitizer) popScope() {
	size := s.scopeSizes[len(s.scopeSizes)-1]
	s.scopeSizes = s.scopeSizes[:len(s.scopeSizes)-1]
	s.identifiers = s.identifiers[:size]
}

func (s *sanitizer) findIdentifier(name string) (identifierData, bool) {
	for i := len(s.identifiers) - 1; i >= 0; i-- {
		if s.identifiers[i].name == name {
			return s.identifiers[i].data, true
		}
	}
	return identifierData{}, false
}

// isNameInUse reports whether name exists anywhere in scope, used
// for uniquing decisions.
func (s *sanitizer) isNameInUse(name string) bool {
	if _, reserved := s.options.ReservedIdentifiers[name]; reserved {
		return true
	}
	_, found := s.findIdentifier(name)
	return found
}

// registerName installs a declaration name in the current scope, renaming
// it when uniquing is requested or the name is reserved.
func (s *sanitizer) registerName(name string, data identifierData) string {
	_, reserved := s.options.ReservedIdentifiers[name]
	if reserved || (s.options.MakeVariableNameUnique && s.isNameInUse(name)) {
		base := name
		for suffix := 2; ; suffix++ {
			candidate := fmt.Sprintf("%s_%d", base, suffix)
			if !s.isNameInUse(candidate) {
				name = candidate
				break
			}
		}
	}
	s.identifiers = append(s.identifiers, scopedIdentifier{name: name, data: data})
	return name
}

func (s *sanitizer) registerIntrinsics() {
	intrinsics := []struct {
		name      string
		intrinsic IntrinsicType
	}{
		{"cross", IntrinsicCrossProduct},
		{"dot", IntrinsicDotProduct},
		{"exp", IntrinsicExp},
		{"inverse", IntrinsicInverse},
		{"length", IntrinsicLength},
		{"max", IntrinsicMax},
		{"min", IntrinsicMin},
		{"normalize", IntrinsicNormalize},
		{"pow", IntrinsicPow},
		{"reflect", IntrinsicReflect},
		{"transpose", IntrinsicTranspose},
	}
	for _, entry := range intrinsics {
		s.identifiers = append(s.identifiers, scopedIdentifier{
			name: entry.name,
			data: identifierData{kind: identIntrinsic, index: uint32(entry.intrinsic)},
		})
	}
}

// Declaration registration

func (s *sanitizer) registerVariable(name string, varType ExpressionType) uint32 {
	index := uint32(len(s.variables))
	s.variables = append(s.variables, variableData{name: name, varType: varType})
	return index
}

func (s *sanitizer) registerConstant(name string, constType ExpressionType, value ConstantValue) uint32 {
	index := uint32(len(s.constants))
	s.constants = append(s.constants, constantData{name: name, constType: constType, value: value})
	return index
}

func (s *sanitizer) registerFunction(fn *functionData) uint32 {
	fn.index = uint32(len(s.functions))
	s.functions = append(s.functions, fn)
	return fn.index
}

func (s *sanitizer) registerStruct(name string, desc *StructDescription) uint32 {
	index := uint32(len(s.structs))
	s.structs = append(s.structs, structData{name: name, desc: desc})
	return index
}

func (s *sanitizer) registerAlias(name string, target identifierData, targetType ExpressionType) uint32 {
	index := uint32(len(s.aliases))
	s.aliases = append(s.aliases, aliasData{name: name, target: target, targetType: targetType})
	return index
}

// Statement lists: expression canonicalizations may need to emit statements
// (a temporary matrix declaration, say) in front of the one being
// sanitized. sanitizeInto installs the output slice as the current list so
// those insertions land in order.

func (s *sanitizer) sanitizeInto(out *[]Statement, stmts []Statement) {
	previous := s.currentStatementList
	s.currentStatementList = out
	for _, stmt := range stmts {
		sanitized := s.CloneStatement(stmt)
		*out = append(*out, sanitized)
	}
	s.currentStatementList = previous
}

// sanitizeBody sanitizes a single body statement; statements emitted during
// its sanitization wrap the result into a multi statement.
func (s *sanitizer) sanitizeBody(stmt Statement) Statement {
	var list []Statement
	previous := s.currentStatementList
	s.currentStatementList = &list
	sanitized := s.CloneStatement(stmt)
	s.currentStatementList = previous

	if len(list) == 0 {
		return sanitized
	}
	multi := &MultiStatement{Statements: append(list, sanitized)}
	multi.SourceLocation = sanitized.Loc()
	return multi
}

// ComputeConstantValue folds an already sanitized expression down to a
// constant value, resolving constant references against the registered
// constants. Returns nil when the expression is not constant.
func (s *sanitizer) computeConstantValue(expr Expression) ConstantValue {
	folded, err := PropagateExpressionConstants(expr, PropagationOptions{
		ConstantQueryCallback: func(constantID uint32) ConstantValue {
			if int(constantID) < len(s.constants) {
				return s.constants[constantID].value
			}
			return nil
		},
	})
	if err != nil {
		// fold-time failures (division by zero) are compiler errors
		if cerr, ok := err.(*lang.Error); ok {
			throw(cerr)
		}
		return nil
	}
	if constant, ok := folded.(*ConstantValueExpression); ok {
		return constant.Value
	}
	return nil
}

// Statement hooks

func (s *sanitizer) CloneMulti(node *MultiStatement) Statement {
	clone := &MultiStatement{}
	clone.StatementBase = node.StatementBase

	s.pushScope()
	s.sanitizeInto(&clone.Statements, node.Statements)
	s.popScope()
	return clone
}

func (s *sanitizer) CloneScoped(node *ScopedStatement) Statement {
	clone := &ScopedStatement{}
	clone.StatementBase = node.StatementBase

	s.pushScope()
	clone.Statement = s.sanitizeBody(node.Statement)
	s.popScope()
	return clone
}

func (s *sanitizer) CloneBranch(node *BranchStatement) Statement {
	if node.IsConst {
		return s.resolveConstBranch(node)
	}

	clone := &BranchStatement{IsConst: false}
	clone.StatementBase = node.StatementBase

	for _, cond := range node.CondStatements {
		condition := s.CloneExpression(cond.Condition)
		s.checkBoolCondition(condition)

		s.pushScope()
		body := s.sanitizeBody(cond.Statement)
		s.popScope()

		clone.CondStatements = append(clone.CondStatements, ConditionalBranch{
			Condition: condition,
			Statement: body,
		})
	}

	if node.ElseStatement != nil {
		s.pushScope()
		clone.ElseStatement = s.sanitizeBody(node.ElseStatement)
		s.popScope()
	}

	if s.options.SplitMultipleBranches && len(clone.CondStatements) > 1 {
		return splitBranches(clone)
	}
	return clone
}

// resolveConstBranch selects the taken branch of a const-if chain at
// compile time.
func (s *sanitizer) resolveConstBranch(node *BranchStatement) Statement {
	for _, cond := range node.CondStatements {
		condition := s.CloneExpression(cond.Condition)
		value := s.computeConstantValue(condition)
		if value == nil {
			if s.options.AllowPartialSanitization {
				// cannot resolve yet, keep the whole chain
				return s.Cloner.CloneBranch(node)
			}
			throw(errConstantExpressionRequired(condition.Loc()))
		}
		taken, ok := value.(BoolValue)
		if !ok {
			throw(errConditionExpectedBool(condition.Loc(), value.ConstantType()))
		}
		if !taken {
			continue
		}
		s.pushScope()
		body := s.sanitizeBody(cond.Statement)
		s.popScope()
		return unscopeStatement(body)
	}

	if node.ElseStatement != nil {
		s.pushScope()
		body := s.sanitizeBody(node.ElseStatement)
		s.popScope()
		return unscopeStatement(body)
	}

	noop := &NoOpStatement{}
	noop.StatementBase = node.StatementBase
	return noop
}

// splitBranches turns an if/else-if/else chain into nested if/else
// statements.
func splitBranches(node *BranchStatement) Statement {
	root := &BranchStatement{
		CondStatements: []ConditionalBranch{node.CondStatements[0]},
	}
	root.StatementBase = node.StatementBase

	current := root
	for _, cond := range node.CondStatements[1:] {
		nested := &BranchStatement{CondStatements: []ConditionalBranch{cond}}
		nested.SourceLocation = cond.Condition.Loc()
		wrapper := &MultiStatement{Statements: []Statement{nested}}
		wrapper.SourceLocation = nested.SourceLocation
		current.ElseStatement = wrapper
		current = nested
	}
	current.ElseStatement = node.ElseStatement
	return root
}

func (s *sanitizer) CloneConditionalStatement(node *ConditionalStatement) Statement {
	condition := s.CloneExpression(node.Condition)
	value := s.computeConstantValue(condition)
	if value == nil {
		if s.options.AllowPartialSanitization {
			clone := &ConditionalStatement{
				Condition: condition,
				Statement: s.CloneStatement(node.Statement),
			}
			clone.StatementBase = node.StatementBase
			return clone
		}
		throw(errConstantExpressionRequired(condition.Loc()))
	}

	taken, ok := value.(BoolValue)
	if !ok {
		throw(errConditionExpectedBool(condition.Loc(), value.ConstantType()))
	}
	if !taken {
		noop := &NoOpStatement{}
		noop.StatementBase = node.StatementBase
		return noop
	}
	return s.CloneStatement(node.Statement)
}

func (s *sanitizer) CloneDeclareAlias(node *DeclareAliasStatement) Statement {
	expression := s.CloneExpression(node.Expression)

	target, targetType := s.aliasTarget(expression)
	index := s.registerAlias(node.Name, target, targetType)
	name := node.Name
	s.identifiers = append(s.identifiers, scopedIdentifier{
		name: name,
		data: identifierData{kind: identAlias, index: index},
	})

	if s.options.RemoveAliases {
		noop := &NoOpStatement{}
		noop.StatementBase = node.StatementBase
		return noop
	}

	clone := &DeclareAliasStatement{
		AliasIndex: &index,
		Name:       name,
		Expression: expression,
	}
	clone.StatementBase = node.StatementBase
	return clone
}

// aliasTarget extracts what an alias points at from its sanitized target
// expression.
func (s *sanitizer) aliasTarget(expr Expression) (identifierData, ExpressionType) {
	switch target := expr.(type) {
	case *StructTypeExpression:
		return identifierData{kind: identStruct, index: target.StructTypeID}, StructType{StructIndex: target.StructTypeID}
	case *FunctionExpression:
		return identifierData{kind: identFunction, index: target.FuncID}, FunctionType{FuncIndex: target.FuncID}
	case *AliasValueExpression:
		alias := s.aliases[target.AliasID]
		return alias.target, alias.targetType
	case *ConstantExpression:
		return identifierData{kind: identConstant, index: target.ConstantID}, GetExpressionType(target)
	default:
		if s.options.AllowPartialSanitization {
			return identifierData{kind: identUnresolved}, GetExpressionType(expr)
		}
		throw(errUnknownIdentifier(expr.Loc(), "<alias target>"))
		return identifierData{}, nil
	}
}

func (s *sanitizer) CloneDeclareConst(node *DeclareConstStatement) Statement {
	expression := s.CloneExpression(node.Expression)
	exprType := GetExpressionType(expression)

	declaredType := s.resolveTypeValue(node.Type, node.SourceLocation, true)

	value := s.computeConstantValue(expression)
	if value != nil {
		folded := &ConstantValueExpression{Value: value}
		folded.SourceLocation = expression.Loc()
		folded.CachedExpressionType = exprType
		if folded.CachedExpressionType == nil {
			folded.CachedExpressionType = value.ConstantType()
		}
		expression = folded
		exprType = folded.CachedExpressionType
	} else if !isConstantStructure(expression) && !s.options.AllowPartialSanitization {
		// array literals have no folded value form but are still constant
		throw(errConstantExpressionRequired(node.SourceLocation))
	}

	constType := exprType
	if declaredType != nil {
		declaredType = s.inferArrayLength(declaredType, exprType, node.SourceLocation)
		if exprType != nil && !TypeEquals(ResolveAlias(declaredType), ResolveAlias(exprType)) {
			throw(errVarDeclarationTypeUnmatching(node.SourceLocation, exprType, declaredType))
		}
		constType = declaredType
	}

	index := s.registerConstant(node.Name, constType, value)
	name := s.registerName(node.Name, identifierData{kind: identConstant, index: index})

	if s.options.RemoveConstDeclaration {
		noop := &NoOpStatement{}
		noop.StatementBase = node.StatementBase
		return noop
	}

	clone := &DeclareConstStatement{
		ConstIndex: &index,
		Name:       name,
		Expression: expression,
	}
	if constType != nil {
		clone.Type = ExprValue(constType)
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (s *sanitizer) CloneDeclareOption(node *DeclareOptionStatement) Statement {
	optType := s.resolveTypeValue(node.OptType, node.SourceLocation, false)

	var defaultValue Expression
	var value ConstantValue
	if node.DefaultValue != nil {
		defaultValue = s.CloneExpression(node.DefaultValue)
		value = s.computeConstantValue(defaultValue)
		if value != nil && optType != nil && !TypeEquals(ResolveAlias(optType), value.ConstantType()) {
			throw(errVarDeclarationTypeUnmatching(node.SourceLocation, value.ConstantType(), optType))
		}
	}

	if override, ok := s.options.OptionValues[OptionHash(node.OptName)]; ok {
		if optType != nil && !TypeEquals(ResolveAlias(optType), override.ConstantType()) {
			throw(errVarDeclarationTypeUnmatching(node.SourceLocation, override.ConstantType(), optType))
		}
		value = override
	}

	if value == nil && !s.options.AllowPartialSanitization {
		throw(errAttributeMissingParameter(node.SourceLocation, "option "+node.OptName))
	}

	constIndex := s.registerConstant(node.OptName, optType, value)
	s.constants[constIndex].isOption = true
	optIndex := uint32(len(s.optionsTb))
	s.optionsTb = append(s.optionsTb, optionData{name: node.OptName, optType: optType, constIndex: constIndex})
	name := s.registerName(node.OptName, identifierData{kind: identConstant, index: constIndex})

	if s.options.RemoveOptionDeclaration {
		noop := &NoOpStatement{}
		noop.StatementBase = node.StatementBase
		return noop
	}

	clone := &DeclareOptionStatement{
		OptIndex:     &optIndex,
		OptName:      name,
		DefaultValue: defaultValue,
	}
	if optType != nil {
		clone.OptType = ExprValue(optType)
	}
	clone.StatementBase = node.StatementBase
	return clone
}

func (s *sanitizer) CloneDeclareExternal(node *DeclareExternalStatement) Statement {
	clone := &DeclareExternalStatement{
		BindingSet: CloneExprValue(&s.Cloner, node.BindingSet),
	}
	clone.StatementBase = node.StatementBase

	defaultSet := uint32(0)
	if node.BindingSet.IsResultingValue() {
		defaultSet = node.BindingSet.GetResultingValue()
	}

	for _, extVar := range node.ExternalVars {
		varType := s.resolveTypeValue(extVar.Type, extVar.SourceLocation, false)
		if varType != nil {
			s.checkExternalType(extVar.Name, varType, extVar.SourceLocation)
		}

		if !extVar.BindingIndex.HasValue() {
			throw(errAttributeMissingParameter(extVar.SourceLocation, "binding"))
		}

		bindingSet := extVar.BindingSet
		if !bindingSet.HasValue() {
			bindingSet = ExprValue(defaultSet)
		}

		index := s.registerVariable(extVar.Name, varType)
		name := s.registerName(extVar.Name, identifierData{kind: identVariable, index: index})

		sanitizedVar := ExternalVar{
			VarIndex:       &index,
			Name:           name,
			BindingIndex:   CloneExprValue(&s.Cloner, extVar.BindingIndex),
			BindingSet:     bindingSet,
			SourceLocation: extVar.SourceLocation,
		}
		if varType != nil {
			sanitizedVar.Type = ExprValue(varType)
		} else {
			sanitizedVar.Type = CloneExprValue(&s.Cloner, extVar.Type)
		}
		clone.ExternalVars = append(clone.ExternalVars, sanitizedVar)
	}
	return clone
}

// checkExternalType enforces the external-block type restrictions.
func (s *sanitizer) checkExternalType(name string, varType ExpressionType, loc lang.SourceLocation) {
	resolved := ResolveAlias(varType)
	switch resolved.(type) {
	case SamplerType, UniformType:
		return
	case PrimitiveType, VectorType, MatrixType:
		if s.module.Metadata.HasFeature(ModuleFeaturePrimitiveExternals) {
			return
		}
	}
	throw(errExtTypeNotAllowed(loc, name, varType))
}

func (s *sanitizer) CloneDeclareFunction(node *DeclareFunctionStatement) Statement {
	fn := &functionData{name: node.Name, node: node}
	index := s.registerFunction(fn)
	name := s.registerName(node.Name, identifierData{kind: identFunction, index: index})

	clone := &DeclareFunctionStatement{
		FuncIndex:          &index,
		Name:               name,
		DepthWrite:         CloneExprValue(&s.Cloner, node.DepthWrite),
		EarlyFragmentTests: CloneExprValue(&s.Cloner, node.EarlyFragmentTests),
		EntryStage:         CloneExprValue(&s.Cloner, node.EntryStage),
		IsExported:         CloneExprValue(&s.Cloner, node.IsExported),
	}
	clone.StatementBase = node.StatementBase
	fn.node = clone

	if node.EntryStage.IsResultingValue() {
		stage := node.EntryStage.GetResultingValue()
		fn.entryStage = &stage
		if s.entryStages[stage] {
			throw(errEntryPointAlreadyDefined(node.SourceLocation, stage))
		}
		s.entryStages[stage] = true
	}

	if fn.entryStage == nil || *fn.entryStage != ShaderStageFragment {
		if node.DepthWrite.HasValue() {
			throw(errUnexpectedAttribute(node.SourceLocation, "depth_write"))
		}
		if node.EarlyFragmentTests.HasValue() {
			throw(errUnexpectedAttribute(node.SourceLocation, "early_fragment_tests"))
		}
	}

	if returnType := s.resolveTypeValue(node.ReturnType, node.SourceLocation, false); returnType != nil {
		fn.returnType = returnType
		clone.ReturnType = ExprValue(returnType)
	} else {
		fn.returnType = NoType{}
	}

	if fn.entryStage != nil {
		if len(node.Parameters) > 1 {
			throw(errEntryFunctionParameter(node.SourceLocation, node.Name))
		}
		if !IsNoType(fn.returnType) && !IsStructType(ResolveAlias(fn.returnType)) {
			throw(errEntryFunctionParameter(node.SourceLocation, node.Name))
		}
	}

	previousFunc := s.currentFunc
	s.currentFunc = fn
	s.pushScope()

	for _, param := range node.Parameters {
		paramType := s.resolveTypeValue(param.Type, param.SourceLocation, false)
		if fn.entryStage != nil && paramType != nil && !IsStructType(ResolveAlias(paramType)) {
			throw(errEntryFunctionParameter(param.SourceLocation, node.Name))
		}
		paramIndex := s.registerVariable(param.Name, paramType)
		paramName := s.registerName(param.Name, identifierData{kind: identVariable, index: paramIndex})
		fn.paramTypes = append(fn.paramTypes, paramType)

		sanitizedParam := FunctionParameter{
			VarIndex:       &paramIndex,
			Name:           paramName,
			SourceLocation: param.SourceLocation,
		}
		if paramType != nil {
			sanitizedParam.Type = ExprValue(paramType)
		} else {
			sanitizedParam.Type = CloneExprValue(&s.Cloner, param.Type)
		}
		clone.Parameters = append(clone.Parameters, sanitizedParam)
	}

	s.sanitizeInto(&clone.Statements, node.Statements)

	s.popScope()
	s.currentFunc = previousFunc
	return clone
}

func (s *sanitizer) CloneDeclareStruct(node *DeclareStructStatement) Statement {
	clone := &DeclareStructStatement{
		IsExported: CloneExprValue(&s.Cloner, node.IsExported),
		Description: StructDescription{
			Name:   node.Description.Name,
			Layout: node.Description.Layout,
		},
	}
	clone.StatementBase = node.StatementBase

	for i := range node.Description.Members {
		source := &node.Description.Members[i]
		member := StructMember{
			Name:           source.Name,
			Type:           source.Type,
			Builtin:        source.Builtin,
			Cond:           source.Cond,
			LocationIndex:  source.LocationIndex,
			SourceLocation: source.SourceLocation,
		}

		memberType := s.resolveTypeValue(source.Type, source.SourceLocation, false)
		if memberType != nil {
			member.Type = ExprValue(memberType)
		}

		if source.Cond.IsExpression() {
			cond := s.CloneExpression(source.Cond.GetExpression())
			if value := s.computeConstantValue(cond); value != nil {
				if b, ok := value.(BoolValue); ok {
					member.Cond = ExprValue(bool(b))
				} else {
					throw(errConditionExpectedBool(cond.Loc(), value.ConstantType()))
				}
			} else {
				member.Cond = ExpressionValue[bool]{Expr: cond}
			}
		}

		if source.Builtin.IsResultingValue() && memberType != nil {
			builtin := source.Builtin.GetResultingValue()
			entry, known := builtinTable[builtin]
			if known && !TypeEquals(ResolveAlias(memberType), entry.exprType) {
				throw(errBuiltinUnexpectedType(source.SourceLocation, builtin, entry.exprType, memberType))
			}
		}

		clone.Description.Members = append(clone.Description.Members, member)
	}

	index := s.registerStruct(node.Description.Name, &clone.Description)
	name := s.registerName(node.Description.Name, identifierData{kind: identStruct, index: index})
	clone.Description.Name = name
	clone.StructIndex = &index
	return clone
}

func (s *sanitizer) CloneDeclareVariable(node *DeclareVariableStatement) Statement {
	var initial Expression
	var initialType ExpressionType
	if node.InitialExpression != nil {
		initial = s.CloneExpression(node.InitialExpression)
		initialType = GetExpressionType(initial)
	}

	declaredType := s.resolveTypeValue(node.VarType, node.SourceLocation, true)
	varType := declaredType
	if varType != nil {
		varType = s.inferArrayLength(varType, initialType, node.SourceLocation)
		if initialType != nil && !TypeEquals(ResolveAlias(varType), ResolveAlias(initialType)) {
			throw(errVarDeclarationTypeUnmatching(node.SourceLocation, initialType, varType))
		}
	} else {
		varType = initialType
	}
	if varType != nil {
		if arr, ok := ResolveAlias(varType).(ArrayType); ok && arr.Length == 0 {
			throw(errArrayLengthRequired(node.SourceLocation))
		}
	}

	index := s.registerVariable(node.VarName, varType)
	name := s.registerName(node.VarName, identifierData{kind: identVariable, index: index})

	clone := &DeclareVariableStatement{
		VarIndex:          &index,
		VarName:           name,
		InitialExpression: initial,
	}
	if varType != nil {
		clone.VarType = ExprValue(varType)
	}
	clone.StatementBase = node.StatementBase
	return clone
}

// isConstantStructure reports whether an expression is built purely from
// constants, even when it has no folded value form (array literals).
func isConstantStructure(expr Expression) bool {
	switch node := expr.(type) {
	case *ConstantValueExpression, *ConstantExpression:
		return true
	case *CastExpression:
		for _, operand := range node.Expressions {
			if operand == nil {
				break
			}
			if !isConstantStructure(operand) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// inferArrayLength adopts the initializer's length for an unsized declared
// array type.
func (s *sanitizer) inferArrayLength(declared, initType ExpressionType, loc lang.SourceLocation) ExpressionType {
	arr, ok := ResolveAlias(declared).(ArrayType)
	if !ok || arr.Length != 0 {
		return declared
	}
	initArr, ok := ResolveAlias(initType).(ArrayType)
	if !ok || initArr.Length == 0 {
		throw(errArrayLengthRequired(loc))
	}
	if !TypeEquals(ResolveAlias(arr.ContainedType), ResolveAlias(initArr.ContainedType)) {
		throw(errVarDeclarationTypeUnmatching(loc, initType, declared))
	}
	arr.Length = initArr.Length
	return arr
}

func (s *sanitizer) CloneDiscard(node *DiscardStatement) Statement {
	if s.currentFunc != nil {
		s.currentFunc.stageConstraints = append(s.currentFunc.stageConstraints, stageConstraint{
			stage: ShaderStageFragment,
			loc:   node.SourceLocation,
		})
	}
	clone := &DiscardStatement{}
	clone.StatementBase = node.StatementBase
	return clone
}

func (s *sanitizer) CloneReturn(node *ReturnStatement) Statement {
	clone := &ReturnStatement{ReturnExpr: s.CloneExpression(node.ReturnExpr)}
	clone.StatementBase = node.StatementBase

	if s.currentFunc != nil {
		returnType := GetExpressionType(clone.ReturnExpr)
		expected := s.currentFunc.returnType
		if clone.ReturnExpr == nil {
			if expected != nil && !IsNoType(expected) {
				throw(errUnmatchingTypes(node.SourceLocation, NoType{}, expected))
			}
		} else if returnType != nil && expected != nil && !TypeEquals(ResolveAlias(returnType), ResolveAlias(expected)) {
			throw(errUnmatchingTypes(node.SourceLocation, returnType, expected))
		}
	}
	return clone
}

func (s *sanitizer) CloneWhile(node *WhileStatement) Statement {
	condition := s.CloneExpression(node.Condition)
	s.checkBoolCondition(condition)

	clone := &WhileStatement{
		Condition: condition,
		Unroll:    s.resolveUnroll(node.Unroll),
	}
	clone.StatementBase = node.StatementBase

	s.pushScope()
	s.loopDepth++
	clone.Body = s.sanitizeBody(node.Body)
	s.loopDepth--
	s.popScope()
	return clone
}

func (s *sanitizer) CloneBreak(node *BreakStatement) Statement {
	if s.loopDepth == 0 {
		throw(errLoopControlOutsideOfLoop(node.SourceLocation, "break"))
	}
	clone := &BreakStatement{}
	clone.StatementBase = node.StatementBase
	return clone
}

func (s *sanitizer) CloneContinue(node *ContinueStatement) Statement {
	if s.loopDepth == 0 {
		throw(errLoopControlOutsideOfLoop(node.SourceLocation, "continue"))
	}
	clone := &ContinueStatement{}
	clone.StatementBase = node.StatementBase
	return clone
}

func (s *sanitizer) checkBoolCondition(condition Expression) {
	condType := GetExpressionType(condition)
	if condType == nil {
		return
	}
	if !TypeEquals(ResolveAlias(condType), PrimitiveBoolean) {
		throw(errConditionExpectedBool(condition.Loc(), condType))
	}
}

func (s *sanitizer) resolveUnroll(unroll ExpressionValue[LoopUnroll]) ExpressionValue[LoopUnroll] {
	if unroll.IsExpression() {
		expr := s.CloneExpression(unroll.GetExpression())
		if value := s.computeConstantValue(expr); value != nil {
			// unroll modes fold as integer constants
			if mode, ok := value.(Int32Value); ok {
				return ExprValue(LoopUnroll(mode))
			}
		}
		return ExpressionValue[LoopUnroll]{Expr: expr}
	}
	return unroll
}

func unscopeStatement(stmt Statement) Statement {
	if scoped, ok := stmt.(*ScopedStatement); ok {
		return scoped.Statement
	}
	return stmt
}

// builtinTable maps builtins to the stage that may touch them and the type
// their member must have.
var builtinTable = map[BuiltinEntry]struct {
	stage    ShaderStageType
	exprType ExpressionType
}{
	BuiltinVertexPosition: {ShaderStageVertex, VectorType{ComponentCount: 4, ComponentType: PrimitiveFloat32}},
	BuiltinFragCoord:      {ShaderStageFragment, VectorType{ComponentCount: 4, ComponentType: PrimitiveFloat32}},
	BuiltinFragDepth:      {ShaderStageFragment, PrimitiveFloat32},
}

// resolveStageDependencies verifies that every stage-restricted construct is
// only reachable from entry points of the matching stage.
func (s *sanitizer) resolveStageDependencies() {
	for _, fn := range s.functions {
		if fn.entryStage == nil {
			continue
		}
		stage := *fn.entryStage
		visited := make(map[uint32]bool)
		s.checkStageReachability(fn, stage, visited)
	}
}

func (s *sanitizer) checkStageReachability(fn *functionData, stage ShaderStageType, visited map[uint32]bool) {
	if visited[fn.index] {
		return
	}
	visited[fn.index] = true

	for _, constraint := range fn.stageConstraints {
		if constraint.stage == stage {
			continue
		}
		if constraint.builtin != nil {
			throw(errBuiltinUnsupportedStage(constraint.loc, *constraint.builtin, stage))
		}
		throw(errInvalidStageDependency(constraint.loc, constraint.stage, stage))
	}

	for _, call := range fn.calledFunctions {
		if int(call.funcIndex) < len(s.functions) {
			s.checkStageReachability(s.functions[call.funcIndex], stage, visited)
		}
	}
}
