package ast

import "testing"

// buildShaderWithDeadCode builds the classic elimination scenario: an
// unused struct, an unused external and an unused helper function next to a
// fragment entry point that only touches one external.
func buildShaderWithDeadCode() *Module {
	uniformOf := func(structName string) ExpressionValue[ExpressionType] {
		return ExprOf[ExpressionType](BuildAccessIndex(BuildIdentifier("uniform"), BuildIdentifier(structName)))
	}

	return &Module{
		Metadata: testMetadata(""),
		RootNode: BuildMulti(
			BuildStructDecl("inputStruct", BuildStructMember("value", vec4f32Type)),
			BuildStructDecl("notUsed", BuildStructMember("value", vec4f32Type)),
			BuildExternal(
				ExternalVar{
					Name:         "unusedData",
					Type:         uniformOf("notUsed"),
					BindingSet:   ExprValue(uint32(0)),
					BindingIndex: ExprValue(uint32(0)),
				},
				ExternalVar{
					Name:         "data",
					Type:         uniformOf("inputStruct"),
					BindingSet:   ExprValue(uint32(0)),
					BindingIndex: ExprValue(uint32(1)),
				},
			),
			BuildFunction("unusedFunction", vec4f32Type, nil,
				BuildReturn(BuildAccessMember(BuildIdentifier("unusedData"), "value")),
			),
			BuildStructDecl("Output", BuildStructMember("value", vec4f32Type)),
			func() Statement {
				fn := BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
					BuildVariableDecl("output", nil),
					BuildExpressionStatement(BuildAssign(AssignSimple,
						BuildAccessMember(BuildIdentifier("output"), "value"),
						BuildAccessMember(BuildIdentifier("data"), "value"))),
					BuildReturn(BuildIdentifier("output")),
				)
				fn.ReturnType = ExprOf[ExpressionType](BuildIdentifier("Output"))
				fn.Statements[0].(*DeclareVariableStatement).VarType = ExprOf[ExpressionType](BuildIdentifier("Output"))
				return fn
			}(),
		),
	}
}

func TestEliminateUnused_DeadCode(t *testing.T) {
	sanitized := mustSanitize(t, buildShaderWithDeadCode(), SanitizeOptions{})

	pruned, err := EliminateUnused(sanitized)
	if err != nil {
		t.Fatalf("EliminateUnused failed: %v", err)
	}

	var structNames, functionNames []string
	var externalNames []string
	for _, stmt := range pruned.RootNode.Statements {
		switch decl := stmt.(type) {
		case *DeclareStructStatement:
			structNames = append(structNames, decl.Description.Name)
		case *DeclareFunctionStatement:
			functionNames = append(functionNames, decl.Name)
		case *DeclareExternalStatement:
			for _, extVar := range decl.ExternalVars {
				externalNames = append(externalNames, extVar.Name)
			}
		}
	}

	wantStructs := []string{"inputStruct", "Output"}
	if len(structNames) != 2 || structNames[0] != wantStructs[0] || structNames[1] != wantStructs[1] {
		t.Errorf("surviving structs = %v, want %v", structNames, wantStructs)
	}
	if len(functionNames) != 1 || functionNames[0] != "main" {
		t.Errorf("surviving functions = %v, want [main]", functionNames)
	}
	if len(externalNames) != 1 || externalNames[0] != "data" {
		t.Errorf("surviving externals = %v, want [data]", externalNames)
	}
}

func TestEliminateUnused_StageFilter(t *testing.T) {
	module := testModule(
		BuildEntryFunction(ShaderStageFragment, "fragMain", nil, nil),
		BuildEntryFunction(ShaderStageVertex, "vertMain", nil, nil),
	)
	sanitized := mustSanitize(t, module, SanitizeOptions{})

	pruned, err := EliminateUnusedWithConfig(sanitized, DependencyConfig{
		UsedShaderStages: ShaderStageFlagVertex,
	})
	if err != nil {
		t.Fatalf("EliminateUnusedWithConfig failed: %v", err)
	}

	var names []string
	for _, stmt := range pruned.RootNode.Statements {
		if fn, ok := stmt.(*DeclareFunctionStatement); ok {
			names = append(names, fn.Name)
		}
	}
	if len(names) != 1 || names[0] != "vertMain" {
		t.Errorf("surviving entry points = %v, want [vertMain]", names)
	}
}

func TestEliminateUnused_DropsDisabledMembers(t *testing.T) {
	enabled := BuildStructMember("color", vec4f32Type)
	enabled.Cond = ExprValue(true)
	disabled := BuildStructMember("debugInfo", vec4f32Type)
	disabled.Cond = ExprValue(false)

	structIndex := uint32(0)
	decl := BuildStructDecl("Data", enabled, disabled)
	decl.StructIndex = &structIndex

	module := &Module{
		Metadata: testMetadata(""),
		RootNode: BuildMulti(decl),
	}

	checker := NewDependencyChecker(DefaultDependencyConfig())
	checker.MarkStructAsUsed(structIndex)
	checker.RegisterModule(module)
	checker.Resolve()

	pruned, err := EliminateUnusedWithUsage(module, checker.Usage())
	if err != nil {
		t.Fatalf("EliminateUnusedWithUsage failed: %v", err)
	}

	members := pruned.RootNode.Statements[0].(*DeclareStructStatement).Description.Members
	if len(members) != 1 || members[0].Name != "color" {
		t.Errorf("surviving members = %+v, want only color", members)
	}
}

func TestDependencyChecker_TransitiveUsage(t *testing.T) {
	// main -> helper -> external
	module := testModule(
		BuildStructDecl("Data", BuildStructMember("value", f32Type)),
		BuildExternal(ExternalVar{
			Name:         "data",
			Type:         ExprOf[ExpressionType](BuildAccessIndex(BuildIdentifier("uniform"), BuildIdentifier("Data"))),
			BindingSet:   ExprValue(uint32(0)),
			BindingIndex: ExprValue(uint32(0)),
		}),
		BuildFunction("helper", f32Type, nil,
			BuildReturn(BuildAccessMember(BuildIdentifier("data"), "value")),
		),
		BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
			BuildVariableDeclInit("x", nil, BuildCallFunction(BuildIdentifier("helper"))),
		),
	)
	sanitized := mustSanitize(t, module, SanitizeOptions{})

	checker := NewDependencyChecker(DefaultDependencyConfig())
	checker.RegisterModule(sanitized)
	checker.Resolve()
	usage := checker.Usage()

	if !usage.UsedFunctions.Test(0) {
		t.Error("helper (function 0) not marked used through main")
	}
	if !usage.UsedFunctions.Test(1) {
		t.Error("main (function 1) not marked used")
	}
	if !usage.UsedVariables.Test(0) {
		t.Error("external variable not marked used through helper")
	}
	if !usage.UsedStructs.Test(0) {
		t.Error("struct not marked used through the external's type")
	}
}
