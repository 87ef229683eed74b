package ast

// eliminateUnusedVisitor prunes declarations that the dependency checker
// did not mark as reachable. It is a cloner: everything kept is copied
// bit-for-bit.
type eliminateUnusedVisitor struct {
	Cloner
	usage *UsageSet
}

func newEliminateUnusedVisitor(usage *UsageSet) *eliminateUnusedVisitor {
	v := &eliminateUnusedVisitor{usage: usage}
	v.SetHooks(v)
	return v
}

// EliminateUnused removes every declaration not reachable from an entry
// point, rooting the analysis at all shader stages.
func EliminateUnused(module *Module) (*Module, error) {
	return EliminateUnusedWithConfig(module, DefaultDependencyConfig())
}

// EliminateUnusedWithConfig removes every declaration not reachable from an
// entry point of the configured stages. Struct members whose cond attribute
// resolved to false are dropped as well.
func EliminateUnusedWithConfig(module *Module, config DependencyConfig) (retModule *Module, err error) {
	defer catchError(&err)

	checker := NewDependencyChecker(config)
	checker.RegisterModule(module)
	checker.Resolve()

	return EliminateUnusedWithUsage(module, checker.Usage())
}

// EliminateUnusedWithUsage prunes a module against an already resolved
// usage set.
func EliminateUnusedWithUsage(module *Module, usage *UsageSet) (retModule *Module, err error) {
	defer catchError(&err)

	visitor := newEliminateUnusedVisitor(usage)

	imported := make([]ImportedModule, len(module.ImportedModules))
	for i, imp := range module.ImportedModules {
		imported[i] = ImportedModule{
			Identifier: imp.Identifier,
			Module: &Module{
				Metadata:        imp.Module.Metadata,
				ImportedModules: imp.Module.ImportedModules,
				RootNode:        visitor.CloneStatement(imp.Module.RootNode).(*MultiStatement),
			},
		}
	}

	return &Module{
		Metadata:        module.Metadata,
		ImportedModules: imported,
		RootNode:        visitor.CloneStatement(module.RootNode).(*MultiStatement),
	}, nil
}

// isStatementUsed decides whether a top-level declaration survives.
func (v *eliminateUnusedVisitor) isStatementUsed(stmt Statement) bool {
	switch decl := stmt.(type) {
	case *DeclareAliasStatement:
		return decl.AliasIndex == nil || v.usage.UsedAliases.Test(*decl.AliasIndex)
	case *DeclareConstStatement:
		return decl.ConstIndex == nil || v.usage.UsedConsts.Test(*decl.ConstIndex)
	case *DeclareFunctionStatement:
		return decl.FuncIndex == nil || v.usage.UsedFunctions.Test(*decl.FuncIndex)
	case *DeclareOptionStatement:
		// options are part of the module's host-facing interface and are
		// kept even when nothing references them anymore
		return true
	case *DeclareStructStatement:
		return decl.StructIndex == nil || v.usage.UsedStructs.Test(*decl.StructIndex)
	case *DeclareExternalStatement:
		for _, extVar := range decl.ExternalVars {
			if extVar.VarIndex == nil || v.usage.UsedVariables.Test(*extVar.VarIndex) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func (v *eliminateUnusedVisitor) CloneMulti(node *MultiStatement) Statement {
	clone := &MultiStatement{}
	clone.StatementBase = node.StatementBase
	for _, stmt := range node.Statements {
		if !v.isStatementUsed(stmt) {
			continue
		}
		clone.Statements = append(clone.Statements, v.CloneStatement(stmt))
	}
	return clone
}

func (v *eliminateUnusedVisitor) CloneDeclareExternal(node *DeclareExternalStatement) Statement {
	clone := &DeclareExternalStatement{
		BindingSet: CloneExprValue(&v.Cloner, node.BindingSet),
	}
	clone.StatementBase = node.StatementBase
	for _, extVar := range node.ExternalVars {
		if extVar.VarIndex != nil && !v.usage.UsedVariables.Test(*extVar.VarIndex) {
			continue
		}
		clone.ExternalVars = append(clone.ExternalVars, ExternalVar{
			VarIndex:       cloneIndex(extVar.VarIndex),
			Name:           extVar.Name,
			Type:           CloneExprValue(&v.Cloner, extVar.Type),
			BindingIndex:   CloneExprValue(&v.Cloner, extVar.BindingIndex),
			BindingSet:     CloneExprValue(&v.Cloner, extVar.BindingSet),
			SourceLocation: extVar.SourceLocation,
		})
	}
	return clone
}

func (v *eliminateUnusedVisitor) CloneDeclareStruct(node *DeclareStructStatement) Statement {
	clone := v.Cloner.CloneDeclareStruct(node).(*DeclareStructStatement)

	// drop members whose cond attribute resolved to false
	members := clone.Description.Members[:0]
	for _, member := range clone.Description.Members {
		if member.Cond.IsResultingValue() && !member.Cond.GetResultingValue() {
			continue
		}
		members = append(members, member)
	}
	clone.Description.Members = members
	return clone
}
