package ast

import (
	"testing"

	"github.com/gogpu/nzsl/lang"
)

var (
	f32Type     = PrimitiveFloat32
	i32Type     = PrimitiveInt32
	vec4f32Type = VectorType{ComponentCount: 4, ComponentType: PrimitiveFloat32}
	vec3f32Type = VectorType{ComponentCount: 3, ComponentType: PrimitiveFloat32}
	mat3f32Type = MatrixType{ColumnCount: 3, RowCount: 3, ComponentType: PrimitiveFloat32}
	mat4f32Type = MatrixType{ColumnCount: 4, RowCount: 4, ComponentType: PrimitiveFloat32}
)

func testMetadata(name string) *ModuleMetadata {
	return &ModuleMetadata{
		ModuleName:    name,
		ShaderLangVer: MakeShaderLangVersion(1, 0, 0),
	}
}

func testModule(statements ...Statement) *Module {
	return &Module{
		Metadata: testMetadata(""),
		RootNode: BuildMulti(statements...),
	}
}

func i32(v int32) *ConstantValueExpression { return BuildConstantValue(Int32Value(v)) }

func f32(v float32) *ConstantValueExpression { return BuildConstantValue(Float32Value(v)) }

func mustSanitize(t *testing.T, module *Module, options SanitizeOptions) *Module {
	t.Helper()
	sanitized, err := SanitizeWithOptions(module, options)
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	return sanitized
}

func expectSanitizeError(t *testing.T, module *Module, options SanitizeOptions, wantMessage string) {
	t.Helper()
	_, err := SanitizeWithOptions(module, options)
	if err == nil {
		t.Fatalf("Sanitize succeeded, want error %q", wantMessage)
	}
	if err.Error() != wantMessage {
		t.Errorf("Sanitize error = %q, want %q", err.Error(), wantMessage)
	}
}

// nodeCounter counts node variants by walking a tree through the cloner
// hooks.
type nodeCounter struct {
	Cloner
	identifiers int
	loops       int
}

func newNodeCounter() *nodeCounter {
	c := &nodeCounter{}
	c.SetHooks(c)
	return c
}

func (c *nodeCounter) CloneIdentifier(node *IdentifierExpression) Expression {
	c.identifiers++
	return c.Cloner.CloneIdentifier(node)
}

func (c *nodeCounter) CloneFor(node *ForStatement) Statement {
	c.loops++
	return c.Cloner.CloneFor(node)
}

func (c *nodeCounter) CloneForEach(node *ForEachStatement) Statement {
	c.loops++
	return c.Cloner.CloneForEach(node)
}

func (c *nodeCounter) countModule(module *Module) {
	for _, imported := range module.ImportedModules {
		c.CloneStmt(imported.Module.RootNode)
	}
	c.CloneStmt(module.RootNode)
}

func locAt(startLine, startCol, endLine, endCol uint32) lang.SourceLocation {
	return lang.Location(startLine, startCol, endLine, endCol)
}

// findFunction returns the declaration of the named function in a module
// root.
func findFunction(t *testing.T, module *Module, name string) *DeclareFunctionStatement {
	t.Helper()
	for _, stmt := range module.RootNode.Statements {
		if fn, ok := stmt.(*DeclareFunctionStatement); ok && fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %s not found in module root", name)
	return nil
}
