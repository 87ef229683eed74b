package ast

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/gogpu/nzsl/lang"
)

// Module linking. Imports are resolved through the configured
// ModuleResolver, sanitized recursively into the same index space, and
// replaced by alias declarations binding the imported names locally.

func (s *sanitizer) CloneImport(node *ImportStatement) Statement {
	wildcard := false
	requested := make(map[string]lang.SourceLocation)
	for _, ident := range node.Identifiers {
		if ident.Identifier == "*" {
			if wildcard {
				throw(errImportMultipleWildcard(ident.SourceLocation))
			}
			if ident.RenamedIdentifier != "" {
				throw(errImportWildcardRename(ident.SourceLocation.ExtendToRight(ident.RenamedLocation)))
			}
			wildcard = true
			continue
		}
		if _, duplicate := requested[ident.Identifier]; duplicate {
			throw(errImportIdentifierAlreadyPresent(ident.SourceLocation, ident.Identifier))
		}
		requested[ident.Identifier] = ident.SourceLocation
	}

	moduleData := s.resolveImportedModule(node.ModuleName, node.SourceLocation)
	if moduleData == nil {
		// partial sanitization without a resolver
		return s.Cloner.CloneImport(node)
	}

	// every feature required by the imported module must be enabled here
	for _, feature := range moduleData.module.Metadata.EnabledFeatures {
		if !s.module.Metadata.HasFeature(feature) {
			throw(errModuleFeatureMismatch(node.SourceLocation, node.ModuleName, feature))
		}
	}

	s.installImportedModule(moduleData)

	type importedName struct {
		source string
		local  string
		loc    lang.SourceLocation
	}
	var names []importedName

	if len(node.Identifiers) == 0 || wildcard {
		exported := maps.Keys(moduleData.exports)
		slices.Sort(exported)
		for _, name := range exported {
			names = append(names, importedName{source: name, local: name, loc: node.SourceLocation})
		}
	}
	for _, ident := range node.Identifiers {
		if ident.Identifier == "*" {
			continue
		}
		local := ident.Identifier
		if ident.RenamedIdentifier != "" {
			local = ident.RenamedIdentifier
		}
		if _, exists := moduleData.exports[ident.Identifier]; !exists {
			throw(errUnknownIdentifier(ident.SourceLocation, ident.Identifier))
		}
		names = append(names, importedName{source: ident.Identifier, local: local, loc: ident.SourceLocation})
	}

	multi := &MultiStatement{}
	multi.StatementBase = node.StatementBase

	for _, name := range names {
		data := moduleData.exports[name.source]
		target := s.expressionFromIdentifier(data, name.source, name.loc)
		_, targetType := s.aliasTarget(target)

		aliasIndex := s.registerAlias(name.local, data, targetType)
		localName := s.registerName(name.local, identifierData{kind: identAlias, index: aliasIndex})

		if s.options.RemoveAliases {
			continue
		}

		decl := &DeclareAliasStatement{
			AliasIndex: &aliasIndex,
			Name:       localName,
			Expression: target,
		}
		decl.SourceLocation = name.loc
		multi.Statements = append(multi.Statements, decl)
	}

	if len(multi.Statements) == 0 {
		noop := &NoOpStatement{}
		noop.StatementBase = node.StatementBase
		return noop
	}
	return multi
}

// resolveImportedModule resolves and sanitizes a module by name, caching
// the result so that shared imports reuse one sanitized instance.
func (s *sanitizer) resolveImportedModule(name string, loc lang.SourceLocation) *moduleExports {
	if existing, ok := s.modulesByName[name]; ok {
		return existing
	}
	for _, pending := range s.importStack {
		if pending == name {
			throw(errCircularImport(loc, name))
		}
	}
	if s.options.ModuleResolver == nil {
		if s.options.AllowPartialSanitization {
			return nil
		}
		throw(errModuleNotFound(loc, name))
	}
	parsed := s.options.ModuleResolver.Resolve(name)
	if parsed == nil {
		throw(errModuleNotFound(loc, name))
	}

	s.importStack = append(s.importStack, name)
	moduleData := s.sanitizeImportedModule(name, parsed)
	s.importStack = s.importStack[:len(s.importStack)-1]
	return moduleData
}

// installImportedModule attaches a sanitized child module to the module
// currently being sanitized and brings its namespace into scope.
func (s *sanitizer) installImportedModule(moduleData *moduleExports) {
	for _, imported := range s.module.ImportedModules {
		if imported.Module == moduleData.module {
			return
		}
	}
	s.module.ImportedModules = append(s.module.ImportedModules, ImportedModule{
		Identifier: moduleData.identifier,
		Module:     moduleData.module,
	})
	s.identifiers = append(s.identifiers, scopedIdentifier{
		name: moduleData.name,
		data: identifierData{kind: identModule, index: moduleData.index},
	})
}

// sanitizeImportedModule sanitizes a child module in a fresh scope
// environment sharing the declaration index space, then collects its
// exported symbols.
func (s *sanitizer) sanitizeImportedModule(name string, parsed *Module) *moduleExports {
	metadata := *parsed.Metadata
	s.checkFeatureUniqueness(&metadata)
	child := &Module{Metadata: &metadata}

	savedIdentifiers := s.identifiers
	savedScopeSizes := s.scopeSizes
	savedFunc := s.currentFunc
	savedList := s.currentStatementList
	savedLoopDepth := s.loopDepth
	savedEntryStages := s.entryStages
	savedModule := s.module

	s.identifiers = nil
	s.scopeSizes = nil
	s.currentFunc = nil
	s.currentStatementList = nil
	s.loopDepth = 0
	s.entryStages = make(map[ShaderStageType]bool)
	s.module = child

	s.pushScope()
	s.registerIntrinsics()
	s.pushScope()

	root := &MultiStatement{}
	if parsed.RootNode != nil {
		root.SourceLocation = parsed.RootNode.SourceLocation
	}
	child.RootNode = root

	// re-register already linked children first (sanitizing a sanitized
	// module keeps its imports)
	for _, imported := range parsed.ImportedModules {
		childData, ok := s.modulesByName[imported.Identifier]
		if !ok {
			childData = s.sanitizeImportedModule(imported.Identifier, imported.Module)
		}
		s.installImportedModule(childData)
	}

	if parsed.RootNode != nil {
		s.sanitizeInto(&root.Statements, parsed.RootNode.Statements)
	}

	exports := s.collectExports(root)

	s.popScope()
	s.popScope()

	s.identifiers = savedIdentifiers
	s.scopeSizes = savedScopeSizes
	s.currentFunc = savedFunc
	s.currentStatementList = savedList
	s.loopDepth = savedLoopDepth
	s.entryStages = savedEntryStages
	s.module = savedModule

	moduleData := &moduleExports{
		index:      uint32(len(s.importedModules)),
		name:       name,
		identifier: strings.ReplaceAll(name, ".", "_"),
		module:     child,
		exports:    exports,
	}
	s.importedModules = append(s.importedModules, moduleData)
	s.modulesByName[name] = moduleData
	return moduleData
}

// collectExports indexes the exported declarations of a sanitized module
// root by name.
func (s *sanitizer) collectExports(root *MultiStatement) map[string]identifierData {
	exports := make(map[string]identifierData)
	for _, stmt := range root.Statements {
		switch decl := stmt.(type) {
		case *DeclareStructStatement:
			if decl.IsExported.IsResultingValue() && decl.IsExported.GetResultingValue() && decl.StructIndex != nil {
				exports[decl.Description.Name] = identifierData{kind: identStruct, index: *decl.StructIndex}
			}
		case *DeclareFunctionStatement:
			if decl.IsExported.IsResultingValue() && decl.IsExported.GetResultingValue() && decl.FuncIndex != nil {
				exports[decl.Name] = identifierData{kind: identFunction, index: *decl.FuncIndex}
			}
		}
	}
	return exports
}
