package nzsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/nzsl/ast"
)

const profileSource = `
[options]
UseInt = true
LightCount = 3
Exposure = 1.5
Variant = "deferred"
Tint = [1.0, 0.5, 0.25]
`

func TestParseOptions(t *testing.T) {
	values, err := ParseOptions([]byte(profileSource))
	if err != nil {
		t.Fatalf("ParseOptions failed: %v", err)
	}

	tests := []struct {
		name string
		want ast.ConstantValue
	}{
		{"UseInt", ast.BoolValue(true)},
		{"LightCount", ast.Int32Value(3)},
		{"Exposure", ast.Float32Value(1.5)},
		{"Variant", ast.StringValue("deferred")},
		{"Tint", ast.Vector3[float32]{X: 1, Y: 0.5, Z: 0.25}},
	}
	for _, tt := range tests {
		got, ok := values[ast.OptionHash(tt.name)]
		if !ok {
			t.Errorf("option %s missing from profile", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("option %s = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestLoadOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	if err := os.WriteFile(path, []byte(profileSource), 0o644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadOptionsFile(path)
	if err != nil {
		t.Fatalf("LoadOptionsFile failed: %v", err)
	}
	if len(values) != 5 {
		t.Errorf("loaded %d options, want 5", len(values))
	}
}

func TestParseOptions_DrivesSanitizer(t *testing.T) {
	values, err := ParseOptions([]byte("[options]\nUseInt = true\n"))
	if err != nil {
		t.Fatalf("ParseOptions failed: %v", err)
	}

	module := &ast.Module{
		Metadata: &ast.ModuleMetadata{ShaderLangVer: LangVersion},
		RootNode: ast.BuildMulti(
			ast.BuildOptionDecl("UseInt", ast.PrimitiveBoolean, ast.BuildConstantValue(ast.BoolValue(false))),
			ast.BuildFunction("main", nil, nil,
				ast.BuildVariableDecl("value", ast.PrimitiveFloat32),
				ast.BuildConstBranch([]ast.ConditionalBranch{{
					Condition: ast.BuildIdentifier("UseInt"),
					Statement: ast.BuildExpressionStatement(ast.BuildAssign(ast.AssignSimple,
						ast.BuildIdentifier("value"), ast.BuildConstantValue(ast.Float32Value(1)))),
				}}, nil),
			),
		),
	}

	sanitized, err := ast.SanitizeWithOptions(module, ast.SanitizeOptions{OptionValues: values})
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}

	var fn *ast.DeclareFunctionStatement
	for _, stmt := range sanitized.RootNode.Statements {
		if decl, ok := stmt.(*ast.DeclareFunctionStatement); ok {
			fn = decl
		}
	}
	if fn == nil {
		t.Fatal("function not found")
	}
	if _, ok := fn.Statements[1].(*ast.ExpressionStatement); !ok {
		t.Errorf("const-if did not select the enabled branch, got %T", fn.Statements[1])
	}
}

func TestParseOptions_RejectsBadVector(t *testing.T) {
	if _, err := ParseOptions([]byte("[options]\nTint = [1.0]\n")); err == nil {
		t.Error("single-component vector accepted")
	}
}
