package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitize_ConstFolding(t *testing.T) {
	module := testModule(
		BuildConstDecl("LightCount", nil, i32(3)),
		BuildConstDecl("LightCapacity", nil, BuildBinary(BinaryAdd, BuildIdentifier("LightCount"), i32(2))),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{})

	decl := sanitized.RootNode.Statements[1].(*DeclareConstStatement)
	value := decl.Expression.(*ConstantValueExpression).Value
	if value != Int32Value(5) {
		t.Errorf("LightCapacity = %v, want 5", value)
	}
	if decl.ConstIndex == nil || *decl.ConstIndex != 1 {
		t.Errorf("LightCapacity index = %v, want 1", decl.ConstIndex)
	}
}

func TestSanitize_ConstDivisionByZero(t *testing.T) {
	expr := At(BuildBinary(BinaryDivide,
		BuildBinary(BinaryMultiply, i32(21), i32(2)),
		BuildBinary(BinarySubtract, i32(9), BuildBinary(BinaryMultiply, i32(3), i32(3)))),
		locAt(5, 11, 5, 30))

	module := testModule(BuildConstDecl("V", nil, expr))
	expectSanitizeError(t, module, SanitizeOptions{},
		"(5,11 -> 30): CIntegralDivisionByZero error: integral division by zero in expression (42 / 0)")
}

func TestSanitize_ConstVectorDivisionByZero(t *testing.T) {
	expr := At(BuildBinary(BinaryDivide,
		BuildCast(VectorType{ComponentCount: 4, ComponentType: PrimitiveInt32}, i32(7), i32(6), i32(5), i32(4)),
		BuildCast(VectorType{ComponentCount: 4, ComponentType: PrimitiveInt32}, i32(3), i32(2), i32(1), i32(0))),
		locAt(5, 11, 5, 55))

	module := testModule(BuildConstDecl("V", nil, expr))
	expectSanitizeError(t, module, SanitizeOptions{},
		"(5,11 -> 55): CIntegralDivisionByZero error: integral division by zero in expression (vec4[i32](7, 6, 5, 4) / vec4[i32](3, 2, 1, 0))")
}

func TestSanitize_ConstIfSelection(t *testing.T) {
	buildModule := func() *Module {
		return testModule(
			BuildOptionDecl("UseInt", PrimitiveBoolean, BuildConstantValue(BoolValue(false))),
			BuildFunction("main", nil, nil,
				BuildVariableDecl("value", f32Type),
				BuildConstBranch([]ConditionalBranch{{
					Condition: BuildIdentifier("UseInt"),
					Statement: BuildExpressionStatement(BuildAssign(AssignSimple, BuildIdentifier("value"), f32(1))),
				}},
					BuildExpressionStatement(BuildAssign(AssignSimple, BuildIdentifier("value"), f32(2)))),
			),
		)
	}

	t.Run("enabled", func(t *testing.T) {
		options := SanitizeOptions{
			OptionValues: map[uint32]ConstantValue{OptionHash("UseInt"): BoolValue(true)},
		}
		sanitized := mustSanitize(t, buildModule(), options)

		fn := findFunction(t, sanitized, "main")
		if len(fn.Statements) != 2 {
			t.Fatalf("main has %d statements, want 2", len(fn.Statements))
		}
		assign := fn.Statements[1].(*ExpressionStatement).Expression.(*AssignExpression)
		if value := assign.Right.(*ConstantValueExpression).Value; value != Float32Value(1) {
			t.Errorf("taken branch assigns %v, want 1.0", value)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		sanitized := mustSanitize(t, buildModule(), SanitizeOptions{})

		fn := findFunction(t, sanitized, "main")
		assign := fn.Statements[1].(*ExpressionStatement).Expression.(*AssignExpression)
		if value := assign.Right.(*ConstantValueExpression).Value; value != Float32Value(2) {
			t.Errorf("else branch assigns %v, want 2.0", value)
		}
	})
}

func TestSanitize_UnrollNumericFor(t *testing.T) {
	loop := BuildFor("i", i32(0), i32(10), i32(2),
		BuildExpressionStatement(BuildAssign(AssignCompoundAdd, BuildIdentifier("color"), BuildIdentifier("i"))))
	loop.Unroll = ExprValue(LoopUnrollAlways)

	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDeclInit("color", nil, i32(0)),
			loop,
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{})

	fn := findFunction(t, sanitized, "main")
	unrolled, ok := fn.Statements[1].(*MultiStatement)
	if !ok {
		t.Fatalf("loop lowered to %T, want multi statement", fn.Statements[1])
	}
	if len(unrolled.Statements) != 5 {
		t.Fatalf("unrolled into %d iterations, want 5", len(unrolled.Statements))
	}

	wantValues := []int32{0, 2, 4, 6, 8}
	for i, stmt := range unrolled.Statements {
		scope, ok := stmt.(*ScopedStatement)
		if !ok {
			t.Fatalf("iteration %d is %T, want scoped statement", i, stmt)
		}
		body := scope.Statement.(*MultiStatement)
		decl := body.Statements[0].(*DeclareVariableStatement)
		if decl.VarName != "i" {
			t.Errorf("iteration %d binds %q, want i", i, decl.VarName)
		}
		value := decl.InitialExpression.(*ConstantValueExpression).Value
		if value != Int32Value(wantValues[i]) {
			t.Errorf("iteration %d binds i = %v, want %d", i, value, wantValues[i])
		}
	}

	counter := newNodeCounter()
	counter.countModule(sanitized)
	if counter.loops != 0 {
		t.Errorf("%d loop nodes remain after unrolling, want 0", counter.loops)
	}
}

func TestSanitize_BreakInsideUnrolledLoop(t *testing.T) {
	loop := BuildFor("i", i32(0), i32(10), nil,
		BuildBranch([]ConditionalBranch{{
			Condition: BuildBinary(BinaryCompGt, BuildIdentifier("i"), i32(5)),
			Statement: At(&BreakStatement{}, locAt(11, 4, 11, 8)),
		}}, nil))
	loop.Unroll = ExprValue(LoopUnrollAlways)

	module := testModule(BuildFunction("main", nil, nil, loop))
	expectSanitizeError(t, module, SanitizeOptions{},
		"(11,4 -> 8): CLoopControlOutsideOfLoop error: loop control instruction break found outside of loop")
}

func TestSanitize_BreakOutsideLoop(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil, At(&BreakStatement{}, locAt(7, 2, 7, 6))),
	)
	expectSanitizeError(t, module, SanitizeOptions{},
		"(7,2 -> 6): CLoopControlOutsideOfLoop error: loop control instruction break found outside of loop")
}

func TestSanitize_ReduceForToWhile(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDeclInit("x", nil, i32(0)),
			BuildFor("i", i32(0), i32(10), nil,
				BuildExpressionStatement(BuildAssign(AssignCompoundAdd, BuildIdentifier("x"), BuildIdentifier("i")))),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{ReduceLoopsToWhile: true})

	fn := findFunction(t, sanitized, "main")
	scope := fn.Statements[1].(*ScopedStatement)
	lowered := scope.Statement.(*MultiStatement)

	decl := lowered.Statements[0].(*DeclareVariableStatement)
	if decl.VarName != "i" {
		t.Errorf("counter named %q, want i", decl.VarName)
	}
	while, ok := lowered.Statements[1].(*WhileStatement)
	if !ok {
		t.Fatalf("second lowered statement is %T, want while", lowered.Statements[1])
	}
	cond := while.Condition.(*BinaryExpression)
	if cond.Op != BinaryCompLt {
		t.Errorf("while condition operator = %v, want <", cond.Op)
	}
	body := while.Body.(*MultiStatement)
	last := body.Statements[len(body.Statements)-1].(*ExpressionStatement)
	incr := last.Expression.(*AssignExpression)
	if incr.Op != AssignCompoundAdd {
		t.Errorf("loop increment operator = %v, want +=", incr.Op)
	}
}

func TestSanitize_ReduceForEachToWhile(t *testing.T) {
	module := testModule(
		BuildStructDecl("inputStruct",
			BuildStructMember("value", ArrayType{ContainedType: f32Type, Length: 10})),
		BuildExternal(ExternalVar{
			Name:         "data",
			Type:         ExprOf[ExpressionType](BuildAccessIndex(BuildIdentifier("uniform"), BuildIdentifier("inputStruct"))),
			BindingSet:   ExprValue(uint32(0)),
			BindingIndex: ExprValue(uint32(0)),
		}),
		BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
			BuildVariableDeclInit("x", nil, f32(0)),
			BuildForEach("v", BuildAccessMember(BuildIdentifier("data"), "value"),
				BuildExpressionStatement(BuildAssign(AssignCompoundAdd, BuildIdentifier("x"), BuildIdentifier("v")))),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{ReduceLoopsToWhile: true})

	fn := findFunction(t, sanitized, "main")
	scope := fn.Statements[1].(*ScopedStatement)
	lowered := scope.Statement.(*MultiStatement)

	counterDecl := lowered.Statements[0].(*DeclareVariableStatement)
	if !TypeEquals(counterDecl.VarType.GetResultingValue(), PrimitiveUInt32) {
		t.Errorf("counter type = %v, want u32", counterDecl.VarType.GetResultingValue())
	}
	if value := counterDecl.InitialExpression.(*ConstantValueExpression).Value; value != UInt32Value(0) {
		t.Errorf("counter initialized to %v, want 0", value)
	}

	while := lowered.Statements[1].(*WhileStatement)
	bound := while.Condition.(*BinaryExpression).Right.(*ConstantValueExpression).Value
	if bound != UInt32Value(10) {
		t.Errorf("loop bound = %v, want 10", bound)
	}

	body := while.Body.(*MultiStatement)
	elementDecl := body.Statements[0].(*DeclareVariableStatement)
	if elementDecl.VarName != "v" {
		t.Errorf("element variable named %q, want v", elementDecl.VarName)
	}
	if _, ok := elementDecl.InitialExpression.(*AccessIndexExpression); !ok {
		t.Errorf("element initializer is %T, want index access", elementDecl.InitialExpression)
	}

	counter := newNodeCounter()
	counter.countModule(sanitized)
	if counter.loops != 0 {
		t.Errorf("%d for-each nodes remain, want 0", counter.loops)
	}
}

func TestSanitize_UnrollForEach(t *testing.T) {
	module := testModule(
		BuildFunction("helper", nil,
			[]FunctionParameter{BuildFunctionParameter("values", ArrayType{ContainedType: f32Type, Length: 3})},
			func() Statement {
				loop := BuildForEach("v", BuildIdentifier("values"),
					BuildExpressionStatement(BuildAssign(AssignCompoundAdd, BuildIdentifier("x"), BuildIdentifier("v"))))
				loop.Unroll = ExprValue(LoopUnrollAlways)
				return BuildMulti(BuildVariableDeclInit("x", nil, f32(0)), loop)
			}(),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{})

	fn := findFunction(t, sanitized, "helper")
	body := fn.Statements[0].(*MultiStatement)
	unrolled := body.Statements[1].(*MultiStatement)
	if len(unrolled.Statements) != 3 {
		t.Fatalf("unrolled into %d iterations, want 3", len(unrolled.Statements))
	}
	for i, stmt := range unrolled.Statements {
		scope := stmt.(*ScopedStatement)
		decl := scope.Statement.(*MultiStatement).Statements[0].(*DeclareVariableStatement)
		access := decl.InitialExpression.(*AccessIndexExpression)
		index := access.Indices[0].(*ConstantValueExpression).Value
		if index != UInt32Value(i) {
			t.Errorf("iteration %d reads element %v", i, index)
		}
	}
}

func TestSanitize_MatrixCastExpansion(t *testing.T) {
	module := testModule(
		BuildFunction("test", mat4f32Type,
			[]FunctionParameter{BuildFunctionParameter("input", mat3f32Type)},
			BuildReturn(BuildCast(mat4f32Type, BuildIdentifier("input"))),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{RemoveMatrixCast: true})

	fn := findFunction(t, sanitized, "test")
	if len(fn.Statements) != 6 {
		t.Fatalf("expanded function has %d statements, want 6 (decl + 4 columns + return)", len(fn.Statements))
	}

	decl := fn.Statements[0].(*DeclareVariableStatement)
	if !TypeEquals(decl.VarType.GetResultingValue(), mat4f32Type) {
		t.Errorf("temporary type = %v, want mat4[f32]", decl.VarType.GetResultingValue())
	}

	// columns 0..2 are vec4(input[col], 0.0)
	for col := 0; col < 3; col++ {
		assign := fn.Statements[1+col].(*ExpressionStatement).Expression.(*AssignExpression)
		cast := assign.Right.(*CastExpression)
		if len(cast.Expressions) != 2 {
			t.Fatalf("column %d built from %d operands, want source column + padding", col, len(cast.Expressions))
		}
		if _, ok := cast.Expressions[0].(*AccessIndexExpression); !ok {
			t.Errorf("column %d first operand is %T, want source column access", col, cast.Expressions[0])
		}
		pad := cast.Expressions[1].(*ConstantValueExpression).Value
		if pad != Float32Value(0) {
			t.Errorf("column %d padding = %v, want 0.0", col, pad)
		}
	}

	// column 3 is the identity column vec4(0, 0, 0, 1)
	assign := fn.Statements[4].(*ExpressionStatement).Expression.(*AssignExpression)
	cast := assign.Right.(*CastExpression)
	if len(cast.Expressions) != 4 {
		t.Fatalf("identity column built from %d operands, want 4", len(cast.Expressions))
	}
	wantIdentity := []float32{0, 0, 0, 1}
	for i, expr := range cast.Expressions {
		if value := expr.(*ConstantValueExpression).Value; value != Float32Value(wantIdentity[i]) {
			t.Errorf("identity column component %d = %v, want %v", i, value, wantIdentity[i])
		}
	}

	if _, ok := fn.Statements[5].(*ReturnStatement); !ok {
		t.Errorf("last statement is %T, want return", fn.Statements[5])
	}
}

func TestSanitize_MatrixCastTruncation(t *testing.T) {
	module := testModule(
		BuildFunction("test", MatrixType{ColumnCount: 2, RowCount: 2, ComponentType: PrimitiveFloat32},
			[]FunctionParameter{BuildFunctionParameter("input", mat4f32Type)},
			BuildReturn(BuildCast(MatrixType{ColumnCount: 2, RowCount: 2, ComponentType: PrimitiveFloat32}, BuildIdentifier("input"))),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{RemoveMatrixCast: true})

	fn := findFunction(t, sanitized, "test")
	// decl + 2 columns + return
	if len(fn.Statements) != 4 {
		t.Fatalf("expanded function has %d statements, want 4", len(fn.Statements))
	}
	for col := 0; col < 2; col++ {
		assign := fn.Statements[1+col].(*ExpressionStatement).Expression.(*AssignExpression)
		swizzle, ok := assign.Right.(*SwizzleExpression)
		if !ok {
			t.Fatalf("column %d assembled from %T, want truncating swizzle", col, assign.Right)
		}
		if swizzle.ComponentCount != 2 || swizzle.Components[0] != 0 || swizzle.Components[1] != 1 {
			t.Errorf("column %d swizzle = %v x%d, want .xy", col, swizzle.Components, swizzle.ComponentCount)
		}
	}
}

func TestSanitize_SplitMultipleBranches(t *testing.T) {
	assign := func(value float32) Statement {
		return BuildExpressionStatement(BuildAssign(AssignSimple, BuildIdentifier("value"), f32(value)))
	}
	cond := func(bound float32) Expression {
		return BuildBinary(BinaryCompGt, BuildIdentifier("value"), f32(bound))
	}

	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDecl("value", f32Type),
			BuildBranch([]ConditionalBranch{
				{Condition: cond(3), Statement: assign(3)},
				{Condition: cond(2), Statement: assign(2)},
				{Condition: cond(1), Statement: assign(1)},
			}, assign(0)),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{SplitMultipleBranches: true})

	fn := findFunction(t, sanitized, "main")
	branch := fn.Statements[1].(*BranchStatement)

	depth := 0
	for branch != nil {
		if len(branch.CondStatements) != 1 {
			t.Fatalf("depth %d has %d conditions, want 1", depth, len(branch.CondStatements))
		}
		depth++
		next := branch.ElseStatement
		if multi, ok := next.(*MultiStatement); ok && len(multi.Statements) == 1 {
			next = multi.Statements[0]
		}
		nested, ok := next.(*BranchStatement)
		if !ok {
			break
		}
		branch = nested
	}
	if depth != 3 {
		t.Errorf("nested depth = %d, want 3", depth)
	}
}

func TestSanitize_RemoveAliases(t *testing.T) {
	module := testModule(
		BuildStructDecl("inputStruct", BuildStructMember("value", f32Type)),
		BuildAliasDecl("Input", BuildIdentifier("inputStruct")),
		BuildAliasDecl("In", BuildIdentifier("Input")),
		BuildExternal(ExternalVar{
			Name:         "data",
			Type:         ExprOf[ExpressionType](BuildAccessIndex(BuildIdentifier("uniform"), BuildIdentifier("In"))),
			BindingSet:   ExprValue(uint32(0)),
			BindingIndex: ExprValue(uint32(0)),
		}),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{RemoveAliases: true})

	for _, stmt := range sanitized.RootNode.Statements {
		if _, ok := stmt.(*DeclareAliasStatement); ok {
			t.Error("alias declaration survived RemoveAliases")
		}
	}

	external := sanitized.RootNode.Statements[3].(*DeclareExternalStatement)
	extType := external.ExternalVars[0].Type.GetResultingValue()
	uniform, ok := extType.(UniformType)
	if !ok {
		t.Fatalf("external type = %v, want uniform", extType)
	}
	if uniform.ContainedType.StructIndex != 0 {
		t.Errorf("uniform wraps struct %d, want 0 (inputStruct)", uniform.ContainedType.StructIndex)
	}
}

func TestSanitize_RemoveCompoundAssignments(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDeclInit("x", nil, f32(1)),
			BuildExpressionStatement(BuildAssign(AssignCompoundAdd, BuildIdentifier("x"), f32(2))),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{RemoveCompoundAssignments: true})

	fn := findFunction(t, sanitized, "main")
	assign := fn.Statements[1].(*ExpressionStatement).Expression.(*AssignExpression)
	if assign.Op != AssignSimple {
		t.Fatalf("assignment operator = %v, want simple", assign.Op)
	}
	binary, ok := assign.Right.(*BinaryExpression)
	if !ok {
		t.Fatalf("right side is %T, want x + 2.0", assign.Right)
	}
	if binary.Op != BinaryAdd {
		t.Errorf("rewritten operator = %v, want +", binary.Op)
	}
	if _, ok := binary.Left.(*VariableValueExpression); !ok {
		t.Errorf("rewritten left operand is %T, want the assigned variable", binary.Left)
	}
}

func TestSanitize_RemoveScalarSwizzling(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDeclInit("x", nil, f32(42)),
			BuildVariableDeclInit("v", nil, BuildAccessMember(BuildIdentifier("x"), "xxxx")),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{RemoveScalarSwizzling: true})

	fn := findFunction(t, sanitized, "main")
	decl := fn.Statements[1].(*DeclareVariableStatement)
	cast, ok := decl.InitialExpression.(*CastExpression)
	if !ok {
		t.Fatalf("scalar swizzle lowered to %T, want cast", decl.InitialExpression)
	}
	if !TypeEquals(cast.TargetType.GetResultingValue(), vec4f32Type) {
		t.Errorf("cast target = %v, want vec4[f32]", cast.TargetType.GetResultingValue())
	}
	if len(cast.Expressions) != 4 {
		t.Errorf("cast has %d operands, want 4 replicated scalars", len(cast.Expressions))
	}
}

func TestSanitize_ArrayLengthRequired(t *testing.T) {
	t.Run("variable without initializer", func(t *testing.T) {
		module := testModule(
			BuildFunction("main", nil, nil,
				At(BuildVariableDecl("data", ArrayType{ContainedType: f32Type}), locAt(7, 2, 7, 22)),
			),
		)
		expectSanitizeError(t, module, SanitizeOptions{},
			"(7,2 -> 22): CArrayLengthRequired error: array length is required in this context")
	})

	t.Run("struct member", func(t *testing.T) {
		member := BuildStructMember("data", ArrayType{ContainedType: PrimitiveBoolean})
		member.SourceLocation = locAt(7, 2, 7, 5)
		module := testModule(BuildStructDecl("Data", member))
		expectSanitizeError(t, module, SanitizeOptions{},
			"(7,2 -> 5): CArrayLengthRequired error: array length is required in this context")
	})

	t.Run("inferred from literal", func(t *testing.T) {
		module := testModule(
			BuildConstDecl("data", ArrayType{ContainedType: f32Type},
				BuildCast(ArrayType{ContainedType: f32Type}, f32(1), f32(2), f32(3))),
		)
		sanitized := mustSanitize(t, module, SanitizeOptions{})
		decl := sanitized.RootNode.Statements[0].(*DeclareConstStatement)
		arr := decl.Type.GetResultingValue().(ArrayType)
		if arr.Length != 3 {
			t.Errorf("inferred length = %d, want 3", arr.Length)
		}
	})
}

func TestSanitize_ArrayComponentMismatch(t *testing.T) {
	module := testModule(
		At(BuildConstDecl("data", nil,
			BuildCast(ArrayType{ContainedType: f32Type, Length: 4}, f32(1), f32(2), f32(3))),
			locAt(5, 14, 5, 41)),
	)
	// the cast inherits no location of its own, the declaration carries it
	cast := module.RootNode.Statements[0].(*DeclareConstStatement).Expression.(*CastExpression)
	cast.SourceLocation = locAt(5, 14, 5, 41)

	expectSanitizeError(t, module, SanitizeOptions{},
		"(5,14 -> 41): CCastComponentMismatch error: component count (3) doesn't match required component count (4)")
}

func TestSanitize_MatrixVectorComponentMismatch(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDecl("a", VectorType{ComponentCount: 2, ComponentType: PrimitiveFloat32}),
			BuildVariableDecl("b", vec3f32Type),
			BuildVariableDeclInit("x", nil,
				BuildCast(MatrixType{ColumnCount: 2, RowCount: 2, ComponentType: PrimitiveFloat32},
					BuildIdentifier("a"),
					At(BuildIdentifier("b"), locAt(9, 23, 9, 23)))),
		),
	)
	expectSanitizeError(t, module, SanitizeOptions{},
		"(9, 23): CCastMatrixVectorComponentMismatch error: vector component count (3) doesn't match target matrix row count (2)")
}

func TestSanitize_VarDeclarationTypeUnmatching(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			At(BuildVariableDeclInit("a", i32Type, f32(42.66)), locAt(7, 2, 7, 20)),
		),
	)
	expectSanitizeError(t, module, SanitizeOptions{},
		"(7,2 -> 20): CVarDeclarationTypeUnmatching error: initial expression type (f32) doesn't match specified type (i32)")
}

func TestSanitize_UnknownIdentifier(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildExpressionStatement(At(BuildIdentifier("nazara"), locAt(3, 1, 3, 6))),
		),
	)
	expectSanitizeError(t, module, SanitizeOptions{},
		"(3,1 -> 6): CUnknownIdentifier error: unknown identifier nazara")

	partial, err := SanitizeWithOptions(module, SanitizeOptions{AllowPartialSanitization: true})
	if err != nil {
		t.Fatalf("partial sanitization failed: %v", err)
	}
	counter := newNodeCounter()
	counter.countModule(partial)
	if counter.identifiers != 1 {
		t.Errorf("partial sanitization kept %d identifiers, want 1", counter.identifiers)
	}
}

func TestSanitize_NoIdentifiersRemain(t *testing.T) {
	module := testModule(
		BuildStructDecl("inputStruct", BuildStructMember("value", vec4f32Type)),
		BuildExternal(ExternalVar{
			Name:         "data",
			Type:         ExprOf[ExpressionType](BuildAccessIndex(BuildIdentifier("uniform"), BuildIdentifier("inputStruct"))),
			BindingSet:   ExprValue(uint32(0)),
			BindingIndex: ExprValue(uint32(0)),
		}),
		BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
			BuildVariableDeclInit("value", nil, BuildAccessMember(BuildIdentifier("data"), "value", "x")),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{})

	counter := newNodeCounter()
	counter.countModule(sanitized)
	if counter.identifiers != 0 {
		t.Errorf("%d identifier expressions remain after sanitization, want 0", counter.identifiers)
	}

	fn := findFunction(t, sanitized, "main")
	decl := fn.Statements[0].(*DeclareVariableStatement)
	if !TypeEquals(decl.VarType.GetResultingValue(), PrimitiveFloat32) {
		t.Errorf("swizzled member type = %v, want f32", decl.VarType.GetResultingValue())
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	module := testModule(
		BuildStructDecl("inputStruct", BuildStructMember("value", vec4f32Type)),
		BuildExternal(ExternalVar{
			Name:         "data",
			Type:         ExprOf[ExpressionType](BuildAccessIndex(BuildIdentifier("uniform"), BuildIdentifier("inputStruct"))),
			BindingSet:   ExprValue(uint32(0)),
			BindingIndex: ExprValue(uint32(0)),
		}),
		BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
			BuildVariableDeclInit("value", nil, BuildAccessMember(BuildIdentifier("data"), "value")),
		),
	)

	options := SanitizeOptions{}
	first := mustSanitize(t, module, options)
	second := mustSanitize(t, first, options)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("sanitize is not idempotent (-first +second):\n%s", diff)
	}
}

func TestSanitize_BuiltinUnexpectedType(t *testing.T) {
	member := BuildStructMember("pos", f32Type)
	member.Builtin = ExprValue(BuiltinVertexPosition)
	member.SourceLocation = locAt(7, 22, 7, 24)

	module := testModule(BuildStructDecl("Input", member))
	expectSanitizeError(t, module, SanitizeOptions{},
		"(7,22 -> 24): CBuiltinUnexpectedType error: builtin position expected type vec4[f32], got type f32")
}

func TestSanitize_StageDependencies(t *testing.T) {
	t.Run("discard from vertex entry", func(t *testing.T) {
		module := testModule(
			BuildFunction("clip", nil, nil,
				At(&DiscardStatement{}, locAt(13, 3, 13, 9)),
			),
			BuildEntryFunction(ShaderStageVertex, "main", nil, nil,
				BuildExpressionStatement(BuildCallFunction(BuildIdentifier("clip"))),
			),
		)
		expectSanitizeError(t, module, SanitizeOptions{},
			"(13,3 -> 9): CInvalidStageDependency error: this is only valid in the fragment stage but this functions gets called in the vertex stage")
	})

	t.Run("discard from fragment entry", func(t *testing.T) {
		module := testModule(
			BuildFunction("clip", nil, nil, &DiscardStatement{}),
			BuildEntryFunction(ShaderStageFragment, "main", nil, nil,
				BuildExpressionStatement(BuildCallFunction(BuildIdentifier("clip"))),
			),
		)
		mustSanitize(t, module, SanitizeOptions{})
	})

	t.Run("vertex builtin read from fragment entry", func(t *testing.T) {
		member := BuildStructMember("pos", vec4f32Type)
		member.Builtin = ExprValue(BuiltinVertexPosition)

		module := testModule(
			BuildStructDecl("Input", member),
			BuildFunction("test", vec4f32Type,
				[]FunctionParameter{{Name: "input", Type: ExprOf[ExpressionType](BuildIdentifier("Input"))}},
				BuildReturn(func() Expression {
					access := BuildAccessMember(BuildIdentifier("input"), "pos")
					access.Identifiers[0].SourceLocation = locAt(12, 9, 12, 17)
					return access
				}()),
			),
			BuildEntryFunction(ShaderStageFragment, "main", nil,
				[]FunctionParameter{{Name: "input", Type: ExprOf[ExpressionType](BuildIdentifier("Input"))}},
				BuildExpressionStatement(BuildCallFunction(BuildIdentifier("test"), BuildIdentifier("input"))),
			),
		)
		expectSanitizeError(t, module, SanitizeOptions{},
			"(12,9 -> 17): CBuiltinUnsupportedStage error: builtin position is not available in fragment stage")
	})
}

func TestSanitize_ExternalTypeRestrictions(t *testing.T) {
	buildModule := func() *Module {
		return testModule(
			BuildExternal(ExternalVar{
				Name:           "data",
				Type:           ExprValue[ExpressionType](mat4f32Type),
				BindingSet:     ExprValue(uint32(0)),
				BindingIndex:   ExprValue(uint32(0)),
				SourceLocation: locAt(7, 15, 7, 29),
			}),
		)
	}

	expectSanitizeError(t, buildModule(), SanitizeOptions{},
		"(7,15 -> 29): CExtTypeNotAllowed error: external variable data has unauthorized type (mat4[f32]): only storage buffers, samplers and uniform buffers (and primitives, vectors and matrices if primitive external feature is enabled) are allowed in external blocks")

	// the primitive_externals feature unlocks it
	module := buildModule()
	module.Metadata.EnabledFeatures = []ModuleFeature{ModuleFeaturePrimitiveExternals}
	mustSanitize(t, module, SanitizeOptions{})
}

func TestSanitize_IntrinsicExpectedType(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDecl("a", MatrixType{ColumnCount: 2, RowCount: 3, ComponentType: PrimitiveFloat32}),
			BuildVariableDeclInit("b", nil,
				BuildCallFunction(BuildIdentifier("inverse"), At(BuildIdentifier("a"), locAt(8, 18, 8, 18)))),
		),
	)
	expectSanitizeError(t, module, SanitizeOptions{},
		"(8, 18): CIntrinsicExpectedType error: expected type square matrix for parameter #0, got mat2x3[f32]")
}

func TestSanitize_EntryPointConstraints(t *testing.T) {
	t.Run("duplicate entry stage", func(t *testing.T) {
		module := testModule(
			BuildEntryFunction(ShaderStageFragment, "a", nil, nil),
			At(BuildEntryFunction(ShaderStageFragment, "b", nil, nil), locAt(9, 1, 9, 10)),
		)
		expectSanitizeError(t, module, SanitizeOptions{},
			"(9,1 -> 10): CEntryPointAlreadyDefined error: the fragment entry type has been defined multiple times")
	})

	t.Run("entry with two parameters", func(t *testing.T) {
		module := testModule(
			BuildStructDecl("In", BuildStructMember("value", f32Type)),
			At(BuildEntryFunction(ShaderStageFragment, "main", nil,
				[]FunctionParameter{
					{Name: "a", Type: ExprOf[ExpressionType](BuildIdentifier("In"))},
					{Name: "b", Type: ExprOf[ExpressionType](BuildIdentifier("In"))},
				}), locAt(5, 1, 5, 9)),
		)
		expectSanitizeError(t, module, SanitizeOptions{},
			"(5,1 -> 9): CEntryFunctionParameter error: entry function main can either take one struct parameter or no parameter")
	})

	t.Run("depth write on non-fragment entry", func(t *testing.T) {
		fn := BuildEntryFunction(ShaderStageVertex, "main", nil, nil)
		fn.DepthWrite = ExprValue(DepthWriteGreater)
		module := testModule(At(fn, locAt(5, 1, 5, 9)))
		expectSanitizeError(t, module, SanitizeOptions{},
			"(5,1 -> 9): CUnexpectedAttribute error: unexpected attribute depth_write")
	})
}

func TestSanitize_MakeVariableNameUnique(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDeclInit("value", nil, f32(1)),
			BuildScoped(BuildMulti(
				BuildVariableDeclInit("value", nil, f32(2)),
			)),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{MakeVariableNameUnique: true})

	fn := findFunction(t, sanitized, "main")
	outer := fn.Statements[0].(*DeclareVariableStatement)
	inner := fn.Statements[1].(*ScopedStatement).Statement.(*MultiStatement).Statements[0].(*DeclareVariableStatement)
	if outer.VarName != "value" {
		t.Errorf("outer variable renamed to %q", outer.VarName)
	}
	if inner.VarName != "value_2" {
		t.Errorf("shadowing variable named %q, want value_2", inner.VarName)
	}
}

func TestSanitize_ReservedIdentifiers(t *testing.T) {
	module := testModule(
		BuildFunction("main", nil, nil,
			BuildVariableDeclInit("texture", nil, f32(1)),
		),
	)

	sanitized := mustSanitize(t, module, SanitizeOptions{
		ReservedIdentifiers: map[string]struct{}{"texture": {}},
	})

	fn := findFunction(t, sanitized, "main")
	decl := fn.Statements[0].(*DeclareVariableStatement)
	if decl.VarName != "texture_2" {
		t.Errorf("reserved identifier renamed to %q, want texture_2", decl.VarName)
	}
}
