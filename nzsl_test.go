package nzsl

import (
	"bytes"
	"testing"

	"github.com/gogpu/nzsl/ast"
)

// buildTestShader returns a parsed-module stand-in: one used external, one
// unused helper, a fragment entry point.
func buildTestShader() *ast.Module {
	return &ast.Module{
		Metadata: &ast.ModuleMetadata{
			ModuleName:    "TestShader",
			ShaderLangVer: LangVersion,
		},
		RootNode: ast.BuildMulti(
			ast.BuildStructDecl("inputStruct",
				ast.BuildStructMember("value", ast.VectorType{ComponentCount: 4, ComponentType: ast.PrimitiveFloat32})),
			ast.BuildExternal(ast.ExternalVar{
				Name:         "data",
				Type:         ast.ExprOf[ast.ExpressionType](ast.BuildAccessIndex(ast.BuildIdentifier("uniform"), ast.BuildIdentifier("inputStruct"))),
				BindingSet:   ast.ExprValue(uint32(0)),
				BindingIndex: ast.ExprValue(uint32(0)),
			}),
			ast.BuildFunction("unusedHelper", nil, nil),
			ast.BuildEntryFunction(ast.ShaderStageFragment, "main", nil, nil,
				ast.BuildVariableDeclInit("value", nil,
					ast.BuildBinary(ast.BinaryMultiply,
						ast.BuildAccessMember(ast.BuildIdentifier("data"), "value"),
						ast.BuildConstantValue(ast.Float32Value(2)))),
			),
		),
	}
}

func TestProcess(t *testing.T) {
	processed, err := Process(buildTestShader(), DefaultOptions())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	for _, stmt := range processed.RootNode.Statements {
		if fn, ok := stmt.(*ast.DeclareFunctionStatement); ok && fn.Name == "unusedHelper" {
			t.Error("unused helper survived the pipeline")
		}
	}
}

func TestCompile(t *testing.T) {
	blob, err := Compile(buildTestShader(), DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// the compiled form starts with a length-prefixed magic
	if len(blob) < 9 || !bytes.Equal(blob[4:9], []byte("NZSLB")) {
		t.Errorf("compiled blob does not carry the NZSLB magic: %v", blob[:9])
	}

	restored, err := ast.DeserializeModule(blob)
	if err != nil {
		t.Fatalf("DeserializeModule failed: %v", err)
	}
	if restored.Metadata.ModuleName != "TestShader" {
		t.Errorf("restored module name = %q", restored.Metadata.ModuleName)
	}
}

func TestProcess_ErrorsSurface(t *testing.T) {
	module := &ast.Module{
		Metadata: &ast.ModuleMetadata{ModuleName: "Broken", ShaderLangVer: LangVersion},
		RootNode: ast.BuildMulti(
			ast.BuildConstDecl("V", nil,
				ast.BuildBinary(ast.BinaryDivide,
					ast.BuildConstantValue(ast.Int32Value(42)),
					ast.BuildConstantValue(ast.Int32Value(0)))),
		),
	}

	if _, err := Process(module, DefaultOptions()); err == nil {
		t.Fatal("Process succeeded on a division by zero")
	}
}
