package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCloner_DeepCopy(t *testing.T) {
	original := At(BuildBinary(BinaryAdd,
		At(f32(1), locAt(1, 5, 1, 8)),
		BuildSwizzle(BuildCast(vec4f32Type, f32(1), f32(2), f32(3), f32(4)), 1, 0)),
		locAt(1, 5, 1, 20))
	original.CachedExpressionType = vec4f32Type

	clone := NewCloner().Clone(original)

	if diff := cmp.Diff(Expression(original), clone); diff != "" {
		t.Errorf("clone differs from original:\n%s", diff)
	}
	if clone == Expression(original) {
		t.Fatal("clone aliases the original")
	}

	// mutating the clone leaves the original untouched
	clone.(*BinaryExpression).Op = BinarySubtract
	if original.Op != BinaryAdd {
		t.Error("mutating the clone changed the original")
	}
}

func TestCloner_PreservesCachedTypesAndLocations(t *testing.T) {
	inner := f32(42)
	inner.SourceLocation = locAt(3, 1, 3, 5)
	inner.CachedExpressionType = PrimitiveFloat32

	clone := NewCloner().Clone(inner).(*ConstantValueExpression)
	if !TypeEquals(clone.CachedExpressionType, PrimitiveFloat32) {
		t.Errorf("cached type = %v, want f32", clone.CachedExpressionType)
	}
	if clone.SourceLocation != inner.SourceLocation {
		t.Errorf("source location = %v, want %v", clone.SourceLocation, inner.SourceLocation)
	}
}

func TestCloner_Statements(t *testing.T) {
	original := BuildMulti(
		BuildVariableDeclInit("x", f32Type, f32(1)),
		BuildBranch([]ConditionalBranch{{
			Condition: BuildBinary(BinaryCompLt, BuildIdentifier("x"), f32(2)),
			Statement: BuildExpressionStatement(BuildAssign(AssignCompoundAdd, BuildIdentifier("x"), f32(1))),
		}}, BuildScoped(BuildMulti(&DiscardStatement{}))),
		BuildWhile(BuildConstantValue(BoolValue(true)), BuildMulti(&BreakStatement{})),
	)

	clone := NewCloner().CloneStmt(original)
	if diff := cmp.Diff(Statement(original), clone); diff != "" {
		t.Errorf("clone differs from original:\n%s", diff)
	}

	// rewrites through subtree substitution leave siblings shared-nothing
	clone.(*MultiStatement).Statements[0].(*DeclareVariableStatement).VarName = "y"
	if original.Statements[0].(*DeclareVariableStatement).VarName != "x" {
		t.Error("mutating the clone changed the original")
	}
}

// rewritingCloner doubles every float literal, exercising the override
// protocol.
type rewritingCloner struct {
	Cloner
}

func (c *rewritingCloner) CloneConstantValue(node *ConstantValueExpression) Expression {
	clone := c.Cloner.CloneConstantValue(node).(*ConstantValueExpression)
	if value, ok := clone.Value.(Float32Value); ok {
		clone.Value = value * 2
	}
	return clone
}

func TestCloner_OverrideHook(t *testing.T) {
	c := &rewritingCloner{}
	c.SetHooks(c)

	tree := BuildBinary(BinaryAdd, f32(1), BuildUnary(UnaryMinus, f32(2)))
	rewritten := c.Clone(tree).(*BinaryExpression)

	left := rewritten.Left.(*ConstantValueExpression).Value
	right := rewritten.Right.(*UnaryExpression).Expression.(*ConstantValueExpression).Value
	if left != Float32Value(2) || right != Float32Value(4) {
		t.Errorf("override rewrote to %v and %v, want 2 and 4", left, right)
	}
}
