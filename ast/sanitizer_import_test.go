package ast

import (
	"testing"

	"github.com/gogpu/nzsl/lang"
)

// mapResolver resolves modules from a plain map, standing in for the
// filesystem resolver in tests.
type mapResolver map[string]*Module

func (r mapResolver) Resolve(moduleName string) *Module { return r[moduleName] }

func buildSimpleLibrary() *Module {
	dataStruct := BuildStructDecl("Data", BuildStructMember("value", f32Type))
	dataStruct.IsExported = ExprValue(true)

	unused := BuildStructDecl("Unused", BuildStructMember("value", f32Type))

	getter := BuildFunction("GetDataValue", f32Type,
		[]FunctionParameter{{Name: "data", Type: ExprOf[ExpressionType](BuildIdentifier("Data"))}},
		BuildReturn(BuildAccessMember(BuildIdentifier("data"), "value")),
	)
	getter.IsExported = ExprValue(true)

	return &Module{
		Metadata: testMetadata("SimpleModule"),
		RootNode: BuildMulti(dataStruct, unused, getter),
	}
}

func TestSanitize_ImportModule(t *testing.T) {
	module := testModule(
		BuildImport("SimpleModule"),
		BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
			BuildVariableDecl("d", nil),
			BuildVariableDeclInit("v", nil, BuildCallFunction(BuildIdentifier("GetDataValue"), BuildIdentifier("d"))),
		),
	)
	module.RootNode.Statements[1].(*DeclareFunctionStatement).Statements[0].(*DeclareVariableStatement).VarType =
		ExprOf[ExpressionType](BuildIdentifier("Data"))

	options := SanitizeOptions{
		ModuleResolver: mapResolver{"SimpleModule": buildSimpleLibrary()},
	}
	sanitized := mustSanitize(t, module, options)

	if len(sanitized.ImportedModules) != 1 {
		t.Fatalf("imported %d modules, want 1", len(sanitized.ImportedModules))
	}
	imported := sanitized.ImportedModules[0]
	if imported.Identifier != "SimpleModule" {
		t.Errorf("imported identifier = %q, want SimpleModule", imported.Identifier)
	}
	if imported.Module.Metadata.ModuleName != "SimpleModule" {
		t.Errorf("imported module name = %q", imported.Module.Metadata.ModuleName)
	}

	// the import statement became alias declarations, sorted by name
	aliases := sanitized.RootNode.Statements[0].(*MultiStatement)
	var names []string
	for _, stmt := range aliases.Statements {
		names = append(names, stmt.(*DeclareAliasStatement).Name)
	}
	if len(names) != 2 || names[0] != "Data" || names[1] != "GetDataValue" {
		t.Errorf("installed aliases = %v, want [Data GetDataValue]", names)
	}

	counter := newNodeCounter()
	counter.countModule(sanitized)
	if counter.identifiers != 0 {
		t.Errorf("%d identifier expressions remain, want 0", counter.identifiers)
	}
}

func TestSanitize_ImportSharedModule(t *testing.T) {
	library := buildSimpleLibrary()

	makeUser := func(name string) *Module {
		user := &Module{
			Metadata: testMetadata(name),
			RootNode: BuildMulti(BuildImport("SimpleModule")),
		}
		return user
	}

	parent := testModule(
		BuildImport("UserA"),
		BuildImport("UserB"),
	)

	options := SanitizeOptions{
		ModuleResolver: mapResolver{
			"SimpleModule": library,
			"UserA":        makeUser("UserA"),
			"UserB":        makeUser("UserB"),
		},
	}
	sanitized := mustSanitize(t, parent, options)

	if len(sanitized.ImportedModules) != 2 {
		t.Fatalf("imported %d modules, want 2", len(sanitized.ImportedModules))
	}
	shared0 := sanitized.ImportedModules[0].Module.ImportedModules[0].Module
	shared1 := sanitized.ImportedModules[1].Module.ImportedModules[0].Module
	if shared0 != shared1 {
		t.Error("shared import sanitized twice, want a single shared instance")
	}
}

func TestSanitize_ImportErrors(t *testing.T) {
	t.Run("multiple wildcards", func(t *testing.T) {
		module := testModule(BuildImport("Module",
			ImportIdentifier{Identifier: "*"},
			ImportIdentifier{Identifier: "*", SourceLocation: locAt(5, 11, 5, 11)},
		))
		expectSanitizeError(t, module, SanitizeOptions{},
			"(5, 11): CImportMultipleWildcard error: only one wildcard can be present in an import directive")
	})

	t.Run("renamed wildcard", func(t *testing.T) {
		module := testModule(BuildImport("Module",
			ImportIdentifier{
				Identifier:        "*",
				RenamedIdentifier: "Y",
				SourceLocation:    locAt(5, 8, 5, 8),
				RenamedLocation:   locAt(5, 13, 5, 13),
			},
		))
		expectSanitizeError(t, module, SanitizeOptions{},
			"(5,8 -> 13): CImportWildcardRename error: wildcard cannot be renamed")
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		module := testModule(BuildImport("Module",
			ImportIdentifier{Identifier: "X"},
			ImportIdentifier{Identifier: "X", SourceLocation: locAt(5, 11, 5, 11)},
		))
		expectSanitizeError(t, module, SanitizeOptions{},
			"(5, 11): CImportIdentifierAlreadyPresent error: X identifier was already imported")
	})

	t.Run("unknown module", func(t *testing.T) {
		module := testModule(At(BuildImport("Nowhere"), locAt(5, 1, 5, 20)))
		expectSanitizeError(t, module, SanitizeOptions{ModuleResolver: mapResolver{}},
			"(5,1 -> 20): CModuleNotFound error: module Nowhere not found")
	})

	t.Run("circular import", func(t *testing.T) {
		moduleA := &Module{Metadata: testMetadata("A"), RootNode: BuildMulti(BuildImport("B"))}
		moduleB := &Module{Metadata: testMetadata("B"), RootNode: BuildMulti(BuildImport("A"))}
		main := testModule(BuildImport("A"))

		_, err := SanitizeWithOptions(main, SanitizeOptions{
			ModuleResolver: mapResolver{"A": moduleA, "B": moduleB},
		})
		if err == nil {
			t.Fatal("circular import sanitized, want CircularImport")
		}
		if code := lang.ErrorCode(err); code != "CircularImport" {
			t.Errorf("error code = %q, want CircularImport", code)
		}
	})

	t.Run("feature mismatch", func(t *testing.T) {
		library := &Module{
			Metadata: &ModuleMetadata{
				ModuleName:      "Module",
				ShaderLangVer:   MakeShaderLangVersion(1, 0, 0),
				EnabledFeatures: []ModuleFeature{ModuleFeaturePrimitiveExternals},
			},
			RootNode: BuildMulti(),
		}
		module := testModule(At(BuildImport("Module"), locAt(5, 1, 5, 21)))
		expectSanitizeError(t, module, SanitizeOptions{ModuleResolver: mapResolver{"Module": library}},
			"(5,1 -> 21): CModuleFeatureMismatch error: module Module requires feature primitive_externals")
	})
}

func TestSanitize_ModuleQualifiedAccess(t *testing.T) {
	module := testModule(
		BuildImport("SimpleModule", ImportIdentifier{Identifier: "Data"}),
		BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
			BuildVariableDecl("d", nil),
			BuildVariableDeclInit("v", nil,
				BuildCallFunction(
					BuildAccessMember(BuildIdentifier("SimpleModule"), "GetDataValue"),
					BuildIdentifier("d"))),
		),
	)
	module.RootNode.Statements[1].(*DeclareFunctionStatement).Statements[0].(*DeclareVariableStatement).VarType =
		ExprOf[ExpressionType](BuildIdentifier("Data"))

	options := SanitizeOptions{
		ModuleResolver: mapResolver{"SimpleModule": buildSimpleLibrary()},
	}
	sanitized := mustSanitize(t, module, options)

	fn := findFunction(t, sanitized, "main")
	call := fn.Statements[1].(*DeclareVariableStatement).InitialExpression.(*CallFunctionExpression)
	if _, ok := call.TargetFunction.(*FunctionExpression); !ok {
		t.Errorf("qualified access resolved to %T, want function expression", call.TargetFunction)
	}
}
