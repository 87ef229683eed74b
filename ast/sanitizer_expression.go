package ast

import (
	"strconv"
	"strings"

	"github.com/gogpu/nzsl/lang"
)

// Type resolution. Before sanitization, types mentioning names are carried
// as expressions (an identifier for a named type, an access-by-index chain
// for template forms like array[T, N] or vec3[f32]); the sanitizer resolves
// them into concrete ExpressionType values.

var primitiveTypeNames = map[string]PrimitiveType{
	"bool": PrimitiveBoolean,
	"f32":  PrimitiveFloat32,
	"i32":  PrimitiveInt32,
	"u32":  PrimitiveUInt32,
	"str":  PrimitiveString,
}

var samplerTypeNames = map[string]ImageDim{
	"sampler1D":       ImageDim1D,
	"sampler1D_array": ImageDim1DArray,
	"sampler2D":       ImageDim2D,
	"sampler2D_array": ImageDim2DArray,
	"sampler3D":       ImageDim3D,
	"sampler_cube":    ImageDimCube,
}

// resolveTypeValue turns an unresolved type slot into a concrete type, or
// nil when it is absent (or unresolved under partial sanitization).
func (s *sanitizer) resolveTypeValue(value ExpressionValue[ExpressionType], loc lang.SourceLocation, allowUnsized bool) ExpressionType {
	var resolved ExpressionType
	switch {
	case value.IsResultingValue():
		resolved = value.GetResultingValue()
	case value.IsExpression():
		resolved = s.resolveTypeExpression(value.GetExpression())
	default:
		return nil
	}
	if resolved == nil {
		return nil
	}
	if s.options.RemoveAliases {
		resolved = stripAliases(resolved)
	}
	if !allowUnsized {
		s.checkSizedType(resolved, loc)
	}
	return resolved
}

// checkSizedType rejects unsized arrays outside initializer positions.
func (s *sanitizer) checkSizedType(t ExpressionType, loc lang.SourceLocation) {
	switch typ := ResolveAlias(t).(type) {
	case ArrayType:
		if typ.Length == 0 {
			throw(errArrayLengthRequired(loc))
		}
		s.checkSizedType(typ.ContainedType, loc)
	}
}

// stripAliases removes alias wrappers everywhere inside a type.
func stripAliases(t ExpressionType) ExpressionType {
	switch typ := ResolveAlias(t).(type) {
	case ArrayType:
		typ.ContainedType = stripAliases(typ.ContainedType)
		return typ
	case TypeType:
		if typ.ContainedType != nil {
			typ.ContainedType = stripAliases(typ.ContainedType)
		}
		return typ
	default:
		return typ
	}
}

// resolveTypeExpression resolves a type spelled as an expression.
func (s *sanitizer) resolveTypeExpression(expr Expression) ExpressionType {
	switch node := expr.(type) {
	case *IdentifierExpression:
		return s.resolveTypeName(node.Identifier, node.SourceLocation)

	case *AccessIdentifierExpression:
		// module-qualified type name (Module.Type)
		resolved := s.CloneExpression(expr)
		return s.typeFromResolvedExpression(resolved)

	case *AccessIndexExpression:
		return s.resolveTemplateType(node)

	default:
		resolved := s.CloneExpression(expr)
		return s.typeFromResolvedExpression(resolved)
	}
}

// resolveTypeName resolves a bare type name: a primitive, a declared struct
// or an alias.
func (s *sanitizer) resolveTypeName(name string, loc lang.SourceLocation) ExpressionType {
	if prim, ok := primitiveTypeNames[name]; ok {
		return prim
	}
	data, found := s.findIdentifier(name)
	if !found {
		if s.options.AllowPartialSanitization {
			return nil
		}
		throw(errUnknownIdentifier(loc, name))
	}
	return s.typeFromIdentifier(data, loc, name)
}

func (s *sanitizer) typeFromIdentifier(data identifierData, loc lang.SourceLocation, name string) ExpressionType {
	switch data.kind {
	case identStruct:
		return StructType{StructIndex: data.index}
	case identAlias:
		alias := s.aliases[data.index]
		if s.options.RemoveAliases {
			return stripAliases(AliasType{AliasIndex: data.index, TargetType: alias.targetType})
		}
		return AliasType{AliasIndex: data.index, TargetType: alias.targetType}
	case identUnresolved:
		return nil
	default:
		throw(errUnknownIdentifier(loc, name))
		return nil
	}
}

// typeFromResolvedExpression extracts a type from an already sanitized
// expression denoting one.
func (s *sanitizer) typeFromResolvedExpression(expr Expression) ExpressionType {
	switch node := expr.(type) {
	case *StructTypeExpression:
		return StructType{StructIndex: node.StructTypeID}
	case *AliasValueExpression:
		alias := s.aliases[node.AliasID]
		aliasType := AliasType{AliasIndex: node.AliasID, TargetType: alias.targetType}
		if s.options.RemoveAliases {
			return stripAliases(aliasType)
		}
		return aliasType
	case *IdentifierExpression:
		// left unresolved by partial sanitization
		return nil
	default:
		if t, ok := GetExpressionType(expr).(TypeType); ok {
			return t.ContainedType
		}
		throw(errUnknownIdentifier(expr.Loc(), "<type expression>"))
		return nil
	}
}

// resolveTemplateType resolves template type forms: vecN[T], matN[T],
// matCxR[T], array[T], array[T, N], uniform[S], samplerXX[T].
func (s *sanitizer) resolveTemplateType(node *AccessIndexExpression) ExpressionType {
	base, ok := node.Expr.(*IdentifierExpression)
	if !ok {
		throw(errIndexUnexpectedType(node.SourceLocation, GetExpressionType(node.Expr)))
	}
	name := base.Identifier

	typeArg := func(i int) ExpressionType {
		return s.resolveTypeExpression(node.Indices[i])
	}
	primitiveArg := func(i int) (PrimitiveType, bool) {
		prim, ok := ResolveAlias(typeArg(i)).(PrimitiveType)
		return prim, ok
	}

	switch {
	case strings.HasPrefix(name, "vec"):
		count, err := strconv.Atoi(name[3:])
		if err != nil || count < 2 || count > 4 || len(node.Indices) != 1 {
			throw(errUnknownIdentifier(base.SourceLocation, name))
		}
		prim, ok := primitiveArg(0)
		if !ok {
			return nil
		}
		return VectorType{ComponentCount: uint32(count), ComponentType: prim}

	case strings.HasPrefix(name, "mat"):
		dims := name[3:]
		var cols, rows int
		if cross := strings.IndexByte(dims, 'x'); cross >= 0 {
			cols, _ = strconv.Atoi(dims[:cross])
			rows, _ = strconv.Atoi(dims[cross+1:])
		} else {
			cols, _ = strconv.Atoi(dims)
			rows = cols
		}
		if cols < 2 || cols > 4 || rows < 2 || rows > 4 || len(node.Indices) != 1 {
			throw(errUnknownIdentifier(base.SourceLocation, name))
		}
		prim, ok := primitiveArg(0)
		if !ok {
			return nil
		}
		return MatrixType{ColumnCount: uint32(cols), RowCount: uint32(rows), ComponentType: prim}

	case name == "array":
		if len(node.Indices) < 1 || len(node.Indices) > 2 {
			throw(errUnknownIdentifier(base.SourceLocation, name))
		}
		contained := typeArg(0)
		if contained == nil {
			return nil
		}
		length := uint32(0)
		if len(node.Indices) == 2 {
			sizeExpr := s.CloneExpression(node.Indices[1])
			value := s.computeConstantValue(sizeExpr)
			if value == nil {
				if s.options.AllowPartialSanitization {
					return nil
				}
				throw(errConstantExpressionRequired(node.Indices[1].Loc()))
			}
			switch size := value.(type) {
			case Int32Value:
				length = uint32(size)
			case UInt32Value:
				length = uint32(size)
			default:
				throw(errConstantExpressionRequired(node.Indices[1].Loc()))
			}
		}
		return ArrayType{ContainedType: contained, Length: length}

	case name == "uniform":
		if len(node.Indices) != 1 {
			throw(errUnknownIdentifier(base.SourceLocation, name))
		}
		inner := ResolveAlias(typeArg(0))
		if inner == nil {
			return nil
		}
		st, ok := inner.(StructType)
		if !ok {
			throw(errIndexUnexpectedType(node.SourceLocation, inner))
		}
		return UniformType{ContainedType: st}

	default:
		if dim, ok := samplerTypeNames[name]; ok {
			if len(node.Indices) != 1 {
				throw(errUnknownIdentifier(base.SourceLocation, name))
			}
			prim, ok := primitiveArg(0)
			if !ok {
				return nil
			}
			return SamplerType{SampledType: prim, Dim: dim}
		}
		throw(errUnknownIdentifier(base.SourceLocation, name))
		return nil
	}
}

// Expression hooks

func (s *sanitizer) CloneIdentifier(node *IdentifierExpression) Expression {
	data, found := s.findIdentifier(node.Identifier)
	if !found {
		if s.options.AllowPartialSanitization {
			return s.Cloner.CloneIdentifier(node)
		}
		throw(errUnknownIdentifier(node.SourceLocation, node.Identifier))
	}
	return s.expressionFromIdentifier(data, node.Identifier, node.SourceLocation)
}

func (s *sanitizer) expressionFromIdentifier(data identifierData, name string, loc lang.SourceLocation) Expression {
	switch data.kind {
	case identVariable:
		expr := &VariableValueExpression{VariableID: data.index}
		expr.SourceLocation = loc
		expr.CachedExpressionType = s.variables[data.index].varType
		return expr

	case identFunction:
		expr := &FunctionExpression{FuncID: data.index}
		expr.SourceLocation = loc
		expr.CachedExpressionType = FunctionType{FuncIndex: data.index}
		return expr

	case identStruct:
		expr := &StructTypeExpression{StructTypeID: data.index}
		expr.SourceLocation = loc
		expr.CachedExpressionType = TypeType{ContainedType: StructType{StructIndex: data.index}}
		return expr

	case identAlias:
		alias := s.aliases[data.index]
		if s.options.RemoveAliases {
			return s.expressionFromIdentifier(alias.target, name, loc)
		}
		expr := &AliasValueExpression{AliasID: data.index}
		expr.SourceLocation = loc
		expr.CachedExpressionType = AliasType{AliasIndex: data.index, TargetType: alias.targetType}
		return expr

	case identConstant:
		constant := s.constants[data.index]
		inline := s.options.RemoveConstDeclaration
		if constant.isOption {
			inline = s.options.RemoveOptionDeclaration
		}
		if inline && constant.value != nil {
			expr := &ConstantValueExpression{Value: constant.value}
			expr.SourceLocation = loc
			expr.CachedExpressionType = constant.value.ConstantType()
			return expr
		}
		expr := &ConstantExpression{ConstantID: data.index}
		expr.SourceLocation = loc
		if constant.constType != nil {
			expr.CachedExpressionType = constant.constType
		} else if constant.value != nil {
			expr.CachedExpressionType = constant.value.ConstantType()
		}
		return expr

	case identIntrinsic:
		expr := &IntrinsicFunctionExpression{IntrinsicID: data.index}
		expr.SourceLocation = loc
		expr.CachedExpressionType = IntrinsicFunctionType{Intrinsic: IntrinsicType(data.index)}
		return expr

	default:
		if s.options.AllowPartialSanitization {
			expr := &IdentifierExpression{Identifier: name}
			expr.SourceLocation = loc
			return expr
		}
		throw(errUnknownIdentifier(loc, name))
		return nil
	}
}

var swizzleComponents = map[byte]uint32{
	'x': 0, 'y': 1, 'z': 2, 'w': 3,
	'r': 0, 'g': 1, 'b': 2, 'a': 3,
}

func (s *sanitizer) CloneAccessIdentifier(node *AccessIdentifierExpression) Expression {
	var current Expression

	identifiers := node.Identifiers

	// module namespace access resolves directly to the child declaration;
	// dotted module names span several chain segments
	if base, ok := node.Expr.(*IdentifierExpression); ok {
		name := base.Identifier
		rest := identifiers
		for len(rest) > 0 {
			if data, found := s.findIdentifier(name); found {
				if data.kind != identModule {
					break
				}
				moduleData := s.moduleByIndex(data.index)
				memberData, exists := moduleData.exports[rest[0].Identifier]
				if !exists {
					throw(errUnknownIdentifier(rest[0].SourceLocation, rest[0].Identifier))
				}
				current = s.expressionFromIdentifier(memberData, rest[0].Identifier, rest[0].SourceLocation)
				identifiers = rest[1:]
				break
			}
			name = name + "." + rest[0].Identifier
			rest = rest[1:]
		}
	}

	if current == nil {
		current = s.CloneExpression(node.Expr)
	}

	for _, ident := range identifiers {
		current = s.resolveMemberAccess(current, ident)
	}
	return current
}

// resolveMemberAccess resolves one segment of an access chain against the
// type of the expression built so far.
func (s *sanitizer) resolveMemberAccess(object Expression, ident AccessIdentifier) Expression {
	objectType := GetExpressionType(object)
	if objectType == nil {
		// partial sanitization: keep the chain unresolved
		access := &AccessIdentifierExpression{
			Expr:        object,
			Identifiers: []AccessIdentifier{ident},
		}
		access.SourceLocation = ident.SourceLocation
		return access
	}

	resolved := ResolveAlias(objectType)
	if uniform, ok := resolved.(UniformType); ok {
		resolved = uniform.ContainedType
	}

	switch t := resolved.(type) {
	case StructType:
		memberIndex, member := s.findStructMember(t.StructIndex, ident.Identifier)
		if member == nil {
			throw(errUnknownIdentifier(ident.SourceLocation, ident.Identifier))
		}

		if member.Builtin.IsResultingValue() && s.currentFunc != nil {
			builtin := member.Builtin.GetResultingValue()
			if entry, known := builtinTable[builtin]; known {
				s.currentFunc.stageConstraints = append(s.currentFunc.stageConstraints, stageConstraint{
					stage:   entry.stage,
					loc:     ident.SourceLocation,
					builtin: &builtin,
				})
			}
		}

		memberType := s.resolveTypeValue(member.Type, member.SourceLocation, false)

		if s.options.UseIdentifierAccessesForStructs {
			access := &AccessIdentifierExpression{
				Expr:        object,
				Identifiers: []AccessIdentifier{ident},
			}
			access.SourceLocation = ident.SourceLocation
			access.CachedExpressionType = memberType
			return access
		}

		index := BuildConstantValue(Int32Value(memberIndex))
		index.SourceLocation = ident.SourceLocation
		access := &AccessIndexExpression{
			Expr:    object,
			Indices: []Expression{index},
		}
		access.SourceLocation = ident.SourceLocation
		access.CachedExpressionType = memberType
		return access

	case VectorType:
		components, ok := parseSwizzle(ident.Identifier, t.ComponentCount)
		if !ok {
			throw(errInvalidSwizzle(ident.SourceLocation, ident.Identifier))
		}
		return s.buildSwizzle(object, components, ident.SourceLocation, t.ComponentType)

	case PrimitiveType:
		components, ok := parseSwizzle(ident.Identifier, 1)
		if !ok {
			throw(errInvalidSwizzle(ident.SourceLocation, ident.Identifier))
		}
		return s.buildSwizzle(object, components, ident.SourceLocation, t)

	default:
		throw(errIndexUnexpectedType(ident.SourceLocation, objectType))
		return nil
	}
}

func parseSwizzle(text string, sourceComponents uint32) ([]uint32, bool) {
	if len(text) == 0 || len(text) > 4 {
		return nil, false
	}
	components := make([]uint32, len(text))
	for i := 0; i < len(text); i++ {
		component, ok := swizzleComponents[text[i]]
		if !ok || component >= sourceComponents {
			return nil, false
		}
		components[i] = component
	}
	return components, true
}

// buildSwizzle assembles a swizzle node (running it through the swizzle
// hook so scalar-swizzle removal applies).
func (s *sanitizer) buildSwizzle(object Expression, components []uint32, loc lang.SourceLocation, componentType PrimitiveType) Expression {
	swizzle := &SwizzleExpression{
		Expression:     object,
		ComponentCount: uint32(len(components)),
	}
	copy(swizzle.Components[:], components)
	swizzle.SourceLocation = loc
	return s.finishSwizzle(swizzle, componentType)
}

func (s *sanitizer) finishSwizzle(node *SwizzleExpression, componentType PrimitiveType) Expression {
	if node.ComponentCount == 1 {
		node.CachedExpressionType = componentType
	} else {
		node.CachedExpressionType = VectorType{ComponentCount: node.ComponentCount, ComponentType: componentType}
	}

	if s.options.RemoveScalarSwizzling && IsPrimitiveType(ResolveAlias(GetExpressionType(node.Expression))) {
		if node.ComponentCount == 1 {
			return node.Expression
		}
		targetType := node.CachedExpressionType
		cloner := NewCloner()
		cast := &CastExpression{TargetType: ExprValue(targetType)}
		for i := uint32(0); i < node.ComponentCount; i++ {
			cast.Expressions = append(cast.Expressions, cloner.Clone(node.Expression))
		}
		cast.SourceLocation = node.SourceLocation
		cast.CachedExpressionType = targetType
		return cast
	}
	return node
}

func (s *sanitizer) CloneSwizzle(node *SwizzleExpression) Expression {
	inner := s.CloneExpression(node.Expression)

	clone := &SwizzleExpression{
		Expression:     inner,
		Components:     node.Components,
		ComponentCount: node.ComponentCount,
	}
	clone.ExpressionBase = node.ExpressionBase

	innerType := GetExpressionType(inner)
	if innerType == nil {
		return clone
	}

	switch t := ResolveAlias(innerType).(type) {
	case VectorType:
		for i := uint32(0); i < clone.ComponentCount; i++ {
			if clone.Components[i] >= t.ComponentCount {
				throw(errInvalidSwizzle(node.SourceLocation, swizzleText(clone)))
			}
		}
		return s.finishSwizzle(clone, t.ComponentType)
	case PrimitiveType:
		for i := uint32(0); i < clone.ComponentCount; i++ {
			if clone.Components[i] != 0 {
				throw(errInvalidSwizzle(node.SourceLocation, swizzleText(clone)))
			}
		}
		return s.finishSwizzle(clone, t)
	default:
		throw(errIndexUnexpectedType(node.SourceLocation, innerType))
		return nil
	}
}

func swizzleText(node *SwizzleExpression) string {
	letters := [4]byte{'x', 'y', 'z', 'w'}
	var sb strings.Builder
	for i := uint32(0); i < node.ComponentCount; i++ {
		component := node.Components[i]
		if component < 4 {
			sb.WriteByte(letters[component])
		}
	}
	return sb.String()
}

func (s *sanitizer) CloneAccessIndex(node *AccessIndexExpression) Expression {
	current := s.CloneExpression(node.Expr)

	for _, indexExpr := range node.Indices {
		index := s.CloneExpression(indexExpr)
		current = s.resolveIndexAccess(current, index, indexExpr.Loc())
	}
	return current
}

func (s *sanitizer) resolveIndexAccess(object, index Expression, loc lang.SourceLocation) Expression {
	access := &AccessIndexExpression{
		Expr:    object,
		Indices: []Expression{index},
	}
	access.SourceLocation = loc

	objectType := GetExpressionType(object)
	if objectType == nil {
		return access
	}

	indexType := GetExpressionType(index)
	if indexType != nil {
		switch ResolveAlias(indexType) {
		case PrimitiveInt32, PrimitiveUInt32:
		default:
			throw(errIndexRequiresInteger(loc, indexType))
		}
	}

	switch t := ResolveAlias(objectType).(type) {
	case ArrayType:
		access.CachedExpressionType = t.ContainedType
	case VectorType:
		access.CachedExpressionType = t.ComponentType
	case MatrixType:
		access.CachedExpressionType = MatrixColumnType(t)
	case StructType:
		constant, ok := index.(*ConstantValueExpression)
		if !ok {
			throw(errConstantExpressionRequired(loc))
		}
		memberIndex, ok := constantAsIndex(constant.Value)
		if !ok {
			throw(errIndexRequiresInteger(loc, GetExpressionType(index)))
		}
		desc := s.structs[t.StructIndex].desc
		if int(memberIndex) >= len(desc.Members) {
			throw(errIndexUnexpectedType(loc, objectType))
		}
		member := desc.Members[memberIndex]
		access.CachedExpressionType = s.resolveTypeValue(member.Type, member.SourceLocation, false)
	case UniformType:
		constant, ok := index.(*ConstantValueExpression)
		if !ok {
			throw(errConstantExpressionRequired(loc))
		}
		memberIndex, _ := constantAsIndex(constant.Value)
		desc := s.structs[t.ContainedType.StructIndex].desc
		if int(memberIndex) >= len(desc.Members) {
			throw(errIndexUnexpectedType(loc, objectType))
		}
		member := desc.Members[memberIndex]
		access.CachedExpressionType = s.resolveTypeValue(member.Type, member.SourceLocation, false)
	default:
		throw(errIndexUnexpectedType(loc, objectType))
	}
	return access
}

func constantAsIndex(value ConstantValue) (uint32, bool) {
	switch v := value.(type) {
	case Int32Value:
		return uint32(v), v >= 0
	case UInt32Value:
		return uint32(v), true
	default:
		return 0, false
	}
}

// findStructMember locates a member by name, skipping members disabled by a
// resolved cond attribute.
func (s *sanitizer) findStructMember(structIndex uint32, name string) (uint32, *StructMember) {
	desc := s.structs[structIndex].desc
	for i := range desc.Members {
		member := &desc.Members[i]
		if member.Cond.IsResultingValue() && !member.Cond.GetResultingValue() {
			continue
		}
		if member.Name == name {
			return uint32(i), member
		}
	}
	return 0, nil
}

func (s *sanitizer) moduleByIndex(index uint32) *moduleExports {
	return s.importedModules[index]
}

func (s *sanitizer) CloneAssign(node *AssignExpression) Expression {
	left := s.CloneExpression(node.Left)
	right := s.CloneExpression(node.Right)

	if !isLValue(left) {
		throw(errAssignTemporary(node.SourceLocation))
	}

	leftType := GetExpressionType(left)
	rightType := GetExpressionType(right)

	op := node.Op
	if op == AssignSimple {
		if leftType != nil && rightType != nil && !TypeEquals(ResolveAlias(leftType), ResolveAlias(rightType)) {
			throw(errUnmatchingTypes(node.SourceLocation, leftType, rightType))
		}
	} else {
		binaryOp := compoundToBinary(op)
		if leftType != nil && rightType != nil {
			resultType := s.validateBinaryOp(binaryOp, leftType, rightType, node.SourceLocation)
			if resultType != nil && !TypeEquals(ResolveAlias(leftType), ResolveAlias(resultType)) {
				throw(errUnmatchingTypes(node.SourceLocation, leftType, resultType))
			}
		}

		if s.options.RemoveCompoundAssignments {
			cloner := NewCloner()
			binary := &BinaryExpression{
				Op:    binaryOp,
				Left:  cloner.Clone(left),
				Right: right,
			}
			binary.SourceLocation = node.SourceLocation
			binary.CachedExpressionType = leftType
			right = binary
			op = AssignSimple
		}
	}

	clone := &AssignExpression{Op: op, Left: left, Right: right}
	clone.ExpressionBase = node.ExpressionBase
	clone.CachedExpressionType = leftType
	return clone
}

func compoundToBinary(op AssignType) BinaryType {
	switch op {
	case AssignCompoundAdd:
		return BinaryAdd
	case AssignCompoundDivide:
		return BinaryDivide
	case AssignCompoundModulo:
		return BinaryModulo
	case AssignCompoundMultiply:
		return BinaryMultiply
	case AssignCompoundLogicalAnd:
		return BinaryLogicalAnd
	case AssignCompoundLogicalOr:
		return BinaryLogicalOr
	default:
		return BinarySubtract
	}
}

func isLValue(expr Expression) bool {
	switch node := expr.(type) {
	case *VariableValueExpression:
		return true
	case *AccessIndexExpression:
		return isLValue(node.Expr)
	case *AccessIdentifierExpression:
		return node.Expr == nil || isLValue(node.Expr)
	case *SwizzleExpression:
		return isLValue(node.Expression)
	case *IdentifierExpression:
		// unresolved under partial sanitization
		return true
	default:
		return false
	}
}

func (s *sanitizer) CloneBinary(node *BinaryExpression) Expression {
	left := s.CloneExpression(node.Left)
	right := s.CloneExpression(node.Right)

	clone := &BinaryExpression{Op: node.Op, Left: left, Right: right}
	clone.ExpressionBase = node.ExpressionBase

	leftType := GetExpressionType(left)
	rightType := GetExpressionType(right)
	if leftType != nil && rightType != nil {
		clone.CachedExpressionType = s.validateBinaryOp(node.Op, leftType, rightType, node.SourceLocation)
	}
	return clone
}

// validateBinaryOp checks operand compatibility and returns the result
// type.
func (s *sanitizer) validateBinaryOp(op BinaryType, leftType, rightType ExpressionType, loc lang.SourceLocation) ExpressionType {
	left := ResolveAlias(leftType)
	right := ResolveAlias(rightType)

	switch op {
	case BinaryLogicalAnd, BinaryLogicalOr:
		if !TypeEquals(left, PrimitiveBoolean) || !TypeEquals(right, PrimitiveBoolean) {
			throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
		}
		return PrimitiveBoolean

	case BinaryCompEq, BinaryCompNe:
		if !TypeEquals(left, right) {
			throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
		}
		return PrimitiveBoolean

	case BinaryCompGe, BinaryCompGt, BinaryCompLe, BinaryCompLt:
		if !TypeEquals(left, right) {
			throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
		}
		if prim, ok := left.(PrimitiveType); !ok || prim == PrimitiveBoolean || prim == PrimitiveString {
			if _, isVec := left.(VectorType); !isVec {
				throw(errBinaryUnsupported(loc, "left", leftType))
			}
		}
		return PrimitiveBoolean

	default:
		return s.validateArithmeticOp(op, left, right, leftType, rightType, loc)
	}
}

func (s *sanitizer) validateArithmeticOp(op BinaryType, left, right ExpressionType, leftType, rightType ExpressionType, loc lang.SourceLocation) ExpressionType {
	isNumericPrimitive := func(t ExpressionType) bool {
		prim, ok := t.(PrimitiveType)
		return ok && prim != PrimitiveBoolean && prim != PrimitiveString
	}

	switch lhs := left.(type) {
	case PrimitiveType:
		if !isNumericPrimitive(left) {
			// strings fold concatenation, everything else is invalid
			if lhs == PrimitiveString && op == BinaryAdd && TypeEquals(left, right) {
				return left
			}
			throw(errBinaryUnsupported(loc, "left", leftType))
		}
		switch rhs := right.(type) {
		case PrimitiveType:
			if lhs != rhs {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return left
		case VectorType:
			if op != BinaryMultiply || rhs.ComponentType != lhs {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return right
		case MatrixType:
			if op != BinaryMultiply || rhs.ComponentType != lhs {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return right
		default:
			throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			return nil
		}

	case VectorType:
		switch rhs := right.(type) {
		case VectorType:
			if lhs != rhs {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return left
		case PrimitiveType:
			if (op != BinaryMultiply && op != BinaryDivide) || lhs.ComponentType != rhs {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return left
		default:
			throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			return nil
		}

	case MatrixType:
		switch rhs := right.(type) {
		case MatrixType:
			if op == BinaryMultiply {
				if lhs.ColumnCount != rhs.RowCount || lhs.ComponentType != rhs.ComponentType {
					throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
				}
				return MatrixType{ColumnCount: rhs.ColumnCount, RowCount: lhs.RowCount, ComponentType: lhs.ComponentType}
			}
			if (op != BinaryAdd && op != BinarySubtract) || lhs != rhs {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return left
		case VectorType:
			if op != BinaryMultiply || lhs.ColumnCount != rhs.ComponentCount || lhs.ComponentType != rhs.ComponentType {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return VectorType{ComponentCount: lhs.RowCount, ComponentType: lhs.ComponentType}
		case PrimitiveType:
			if (op != BinaryMultiply && op != BinaryDivide) || lhs.ComponentType != rhs {
				throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			}
			return left
		default:
			throw(errBinaryIncompatibleTypes(loc, leftType, rightType))
			return nil
		}

	default:
		throw(errBinaryUnsupported(loc, "left", leftType))
		return nil
	}
}

func (s *sanitizer) CloneUnary(node *UnaryExpression) Expression {
	operand := s.CloneExpression(node.Expression)
	clone := &UnaryExpression{Op: node.Op, Expression: operand}
	clone.ExpressionBase = node.ExpressionBase

	operandType := GetExpressionType(operand)
	if operandType != nil {
		resolved := ResolveAlias(operandType)
		switch node.Op {
		case UnaryLogicalNot:
			if !TypeEquals(resolved, PrimitiveBoolean) {
				throw(errUnaryUnsupported(node.SourceLocation, operandType))
			}
		case UnaryMinus, UnaryPlus:
			switch t := resolved.(type) {
			case PrimitiveType:
				if t == PrimitiveBoolean || t == PrimitiveString {
					throw(errUnaryUnsupported(node.SourceLocation, operandType))
				}
			case VectorType, MatrixType:
			default:
				throw(errUnaryUnsupported(node.SourceLocation, operandType))
			}
		}
		clone.CachedExpressionType = operandType
	}
	return clone
}

func (s *sanitizer) CloneConditional(node *ConditionalExpression) Expression {
	condition := s.CloneExpression(node.Condition)

	value := s.computeConstantValue(condition)
	if value == nil {
		if s.options.AllowPartialSanitization {
			clone := &ConditionalExpression{
				Condition: condition,
				TruePath:  s.CloneExpression(node.TruePath),
				FalsePath: s.CloneExpression(node.FalsePath),
			}
			clone.ExpressionBase = node.ExpressionBase
			return clone
		}
		throw(errConstantExpressionRequired(condition.Loc()))
	}
	taken, ok := value.(BoolValue)
	if !ok {
		throw(errConditionExpectedBool(condition.Loc(), value.ConstantType()))
	}
	if taken {
		return s.CloneExpression(node.TruePath)
	}
	return s.CloneExpression(node.FalsePath)
}

func (s *sanitizer) CloneConstant(node *ConstantExpression) Expression {
	clone := &ConstantExpression{ConstantID: node.ConstantID}
	clone.ExpressionBase = node.ExpressionBase
	if int(node.ConstantID) < len(s.constants) {
		constant := s.constants[node.ConstantID]
		if constant.constType != nil {
			clone.CachedExpressionType = constant.constType
		} else if constant.value != nil {
			clone.CachedExpressionType = constant.value.ConstantType()
		}
	}
	return clone
}

func (s *sanitizer) CloneConstantValue(node *ConstantValueExpression) Expression {
	clone := &ConstantValueExpression{Value: node.Value}
	clone.ExpressionBase = node.ExpressionBase
	if clone.CachedExpressionType == nil && node.Value != nil {
		clone.CachedExpressionType = node.Value.ConstantType()
	}
	return clone
}

func (s *sanitizer) CloneVariableValue(node *VariableValueExpression) Expression {
	clone := &VariableValueExpression{VariableID: node.VariableID}
	clone.ExpressionBase = node.ExpressionBase
	if int(node.VariableID) < len(s.variables) {
		clone.CachedExpressionType = s.variables[node.VariableID].varType
	}
	return clone
}

func (s *sanitizer) CloneFunction(node *FunctionExpression) Expression {
	clone := &FunctionExpression{FuncID: node.FuncID}
	clone.ExpressionBase = node.ExpressionBase
	clone.CachedExpressionType = FunctionType{FuncIndex: node.FuncID}
	return clone
}

func (s *sanitizer) CloneStructType(node *StructTypeExpression) Expression {
	clone := &StructTypeExpression{StructTypeID: node.StructTypeID}
	clone.ExpressionBase = node.ExpressionBase
	clone.CachedExpressionType = TypeType{ContainedType: StructType{StructIndex: node.StructTypeID}}
	return clone
}

func (s *sanitizer) CloneAliasValue(node *AliasValueExpression) Expression {
	if s.options.RemoveAliases && int(node.AliasID) < len(s.aliases) {
		return s.expressionFromIdentifier(s.aliases[node.AliasID].target, "", node.SourceLocation)
	}
	clone := &AliasValueExpression{AliasID: node.AliasID}
	clone.ExpressionBase = node.ExpressionBase
	if int(node.AliasID) < len(s.aliases) {
		clone.CachedExpressionType = AliasType{AliasIndex: node.AliasID, TargetType: s.aliases[node.AliasID].targetType}
	}
	return clone
}

func (s *sanitizer) CloneIntrinsicFunction(node *IntrinsicFunctionExpression) Expression {
	clone := &IntrinsicFunctionExpression{IntrinsicID: node.IntrinsicID}
	clone.ExpressionBase = node.ExpressionBase
	clone.CachedExpressionType = IntrinsicFunctionType{Intrinsic: IntrinsicType(node.IntrinsicID)}
	return clone
}

func (s *sanitizer) CloneCallFunction(node *CallFunctionExpression) Expression {
	target := s.CloneExpression(node.TargetFunction)
	if alias, ok := target.(*AliasValueExpression); ok && int(alias.AliasID) < len(s.aliases) {
		if aliased := s.aliases[alias.AliasID].target; aliased.kind == identFunction {
			target = s.expressionFromIdentifier(aliased, "", alias.SourceLocation)
		}
	}

	parameters := make([]Expression, len(node.Parameters))
	for i, param := range node.Parameters {
		parameters[i] = s.CloneExpression(param)
	}

	switch fn := target.(type) {
	case *IntrinsicFunctionExpression:
		intrinsic := &IntrinsicExpression{
			Intrinsic:  IntrinsicType(fn.IntrinsicID),
			Parameters: parameters,
		}
		intrinsic.SourceLocation = node.SourceLocation
		intrinsic.CachedExpressionType = s.validateIntrinsic(intrinsic)
		return intrinsic

	case *FunctionExpression:
		if int(fn.FuncID) >= len(s.functions) {
			clone := &CallFunctionExpression{TargetFunction: target, Parameters: parameters}
			clone.ExpressionBase = node.ExpressionBase
			return clone
		}
		fnData := s.functions[fn.FuncID]
		if len(parameters) != len(fnData.paramTypes) {
			throw(errFunctionCallParameterCount(node.SourceLocation, fnData.name, len(fnData.paramTypes), len(parameters)))
		}
		for i, param := range parameters {
			paramType := GetExpressionType(param)
			expected := fnData.paramTypes[i]
			if paramType != nil && expected != nil && !TypeEquals(ResolveAlias(paramType), ResolveAlias(expected)) {
				throw(errFunctionCallParameterType(param.Loc(), fnData.name, i, expected, paramType))
			}
		}
		if s.currentFunc != nil {
			s.currentFunc.calledFunctions = append(s.currentFunc.calledFunctions, functionCall{
				funcIndex: fn.FuncID,
				loc:       node.SourceLocation,
			})
		}

		clone := &CallFunctionExpression{TargetFunction: target, Parameters: parameters}
		clone.ExpressionBase = node.ExpressionBase
		clone.CachedExpressionType = fnData.returnType
		return clone

	default:
		targetType := GetExpressionType(target)
		if targetType == nil && s.options.AllowPartialSanitization {
			clone := &CallFunctionExpression{TargetFunction: target, Parameters: parameters}
			clone.ExpressionBase = node.ExpressionBase
			return clone
		}
		throw(errExpectedFunction(node.SourceLocation, targetType))
		return nil
	}
}

func (s *sanitizer) CloneCallMethod(node *CallMethodExpression) Expression {
	object := s.CloneExpression(node.Object)
	objectType := GetExpressionType(object)

	parameters := make([]Expression, len(node.Parameters))
	for i, param := range node.Parameters {
		parameters[i] = s.CloneExpression(param)
	}

	if objectType == nil && s.options.AllowPartialSanitization {
		clone := &CallMethodExpression{
			Object:     object,
			MethodName: node.MethodName,
			Parameters: parameters,
		}
		clone.ExpressionBase = node.ExpressionBase
		return clone
	}

	if sampler, ok := ResolveAlias(objectType).(SamplerType); ok && node.MethodName == "Sample" {
		intrinsic := &IntrinsicExpression{
			Intrinsic:  IntrinsicSampleTexture,
			Parameters: append([]Expression{object}, parameters...),
		}
		intrinsic.SourceLocation = node.SourceLocation
		intrinsic.CachedExpressionType = VectorType{ComponentCount: 4, ComponentType: sampler.SampledType}
		return intrinsic
	}

	throw(errUnknownIdentifier(node.SourceLocation, node.MethodName))
	return nil
}

func (s *sanitizer) CloneIntrinsic(node *IntrinsicExpression) Expression {
	clone := &IntrinsicExpression{Intrinsic: node.Intrinsic}
	clone.ExpressionBase = node.ExpressionBase
	clone.Parameters = make([]Expression, len(node.Parameters))
	for i, param := range node.Parameters {
		clone.Parameters[i] = s.CloneExpression(param)
	}
	clone.CachedExpressionType = s.validateIntrinsic(clone)
	return clone
}

// validateIntrinsic checks an intrinsic's signature and returns its result
// type.
func (s *sanitizer) validateIntrinsic(node *IntrinsicExpression) ExpressionType {
	paramType := func(i int) ExpressionType {
		if i >= len(node.Parameters) {
			return nil
		}
		t := GetExpressionType(node.Parameters[i])
		if t == nil {
			return nil
		}
		return ResolveAlias(t)
	}
	requireCount := func(count int) {
		if len(node.Parameters) != count {
			throw(errIntrinsicExpectedParameterCount(node.SourceLocation, count))
		}
	}
	requireVector := func(i int) (VectorType, bool) {
		t := paramType(i)
		if t == nil {
			return VectorType{}, false
		}
		vec, ok := t.(VectorType)
		if !ok {
			throw(errIntrinsicExpectedType(node.Parameters[i].Loc(), i, "vector", GetExpressionType(node.Parameters[i])))
		}
		return vec, true
	}

	switch node.Intrinsic {
	case IntrinsicCrossProduct:
		requireCount(2)
		vec, ok := requireVector(0)
		if !ok {
			return nil
		}
		if _, ok := requireVector(1); !ok {
			return nil
		}
		return vec

	case IntrinsicDotProduct, IntrinsicLength:
		if node.Intrinsic == IntrinsicDotProduct {
			requireCount(2)
		} else {
			requireCount(1)
		}
		vec, ok := requireVector(0)
		if !ok {
			return nil
		}
		return vec.ComponentType

	case IntrinsicExp, IntrinsicNormalize:
		requireCount(1)
		t := paramType(0)
		if t == nil {
			return nil
		}
		return t

	case IntrinsicMax, IntrinsicMin, IntrinsicPow, IntrinsicReflect:
		requireCount(2)
		t := paramType(0)
		if t == nil {
			return nil
		}
		return t

	case IntrinsicInverse:
		requireCount(1)
		t := paramType(0)
		if t == nil {
			return nil
		}
		mat, ok := t.(MatrixType)
		if !ok || mat.ColumnCount != mat.RowCount {
			throw(errIntrinsicExpectedType(node.Parameters[0].Loc(), 0, "square matrix", GetExpressionType(node.Parameters[0])))
		}
		return mat

	case IntrinsicTranspose:
		requireCount(1)
		t := paramType(0)
		if t == nil {
			return nil
		}
		mat, ok := t.(MatrixType)
		if !ok {
			throw(errIntrinsicExpectedType(node.Parameters[0].Loc(), 0, "matrix", GetExpressionType(node.Parameters[0])))
		}
		return MatrixType{ColumnCount: mat.RowCount, RowCount: mat.ColumnCount, ComponentType: mat.ComponentType}

	case IntrinsicSampleTexture:
		if len(node.Parameters) < 2 {
			throw(errIntrinsicExpectedParameterCount(node.SourceLocation, 2))
		}
		t := paramType(0)
		if t == nil {
			return nil
		}
		sampler, ok := t.(SamplerType)
		if !ok {
			throw(errIntrinsicExpectedType(node.Parameters[0].Loc(), 0, "sampler", GetExpressionType(node.Parameters[0])))
		}
		return VectorType{ComponentCount: 4, ComponentType: sampler.SampledType}

	default:
		return nil
	}
}

func (s *sanitizer) CloneTypeExpr(node *TypeExpression) Expression {
	clone := &TypeExpression{TypeID: node.TypeID}
	clone.ExpressionBase = node.ExpressionBase
	return clone
}
