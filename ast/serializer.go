package ast

import (
	"github.com/pkg/errors"

	"github.com/gogpu/nzsl/lang"
	"github.com/gogpu/nzsl/serializer"
)

// Compiled module format: magic, u16 format version, metadata, imported
// modules (identifier + recursive module), root node. Node fields follow
// declaration order, except that a branch writes IsConst first, an external
// block writes its BindingSet before its variables and a swizzle writes its
// component count before its components; containers are prefixed by a u32
// count; strings used in source locations are interned once per stream.
const (
	moduleMagic         = "NZSLB"
	moduleFormatVersion = uint16(1)
)

// SerializeModule serializes a sanitized module into the compiled module
// format. Serialize/deserialize/serialize round-trips are bit-exact.
func SerializeModule(module *Module) ([]byte, error) {
	stream := serializer.NewWriter()
	s := newModuleSerializer(stream)

	magic := moduleMagic
	stream.String(&magic)
	version := moduleFormatVersion
	stream.U16(&version)

	if err := s.module(&module); err != nil {
		return nil, err
	}
	return stream.Bytes(), nil
}

// DeserializeModule reconstructs a module from its compiled form.
func DeserializeModule(data []byte) (*Module, error) {
	stream := serializer.NewReader(data)
	s := newModuleSerializer(stream)

	var magic string
	stream.String(&magic)
	if stream.Err() != nil {
		return nil, stream.Err()
	}
	if magic != moduleMagic {
		return nil, errors.Errorf("invalid shader module: bad magic %q", magic)
	}
	var version uint16
	stream.U16(&version)
	if version != moduleFormatVersion {
		return nil, errors.Errorf("unsupported shader module version %d", version)
	}

	var module *Module
	if err := s.module(&module); err != nil {
		return nil, err
	}
	return module, nil
}

// moduleSerializer walks a module symmetrically: the same methods describe
// both serialization directions, dispatching on stream.IsWriting().
type moduleSerializer struct {
	stream serializer.Stream

	// writer-side interning of shared strings
	stringIndices map[string]uint32
	// reader-side table, pointer-shared per index
	strings []*string

	err error
}

func newModuleSerializer(stream serializer.Stream) *moduleSerializer {
	return &moduleSerializer{
		stream:        stream,
		stringIndices: make(map[string]uint32),
	}
}

func (s *moduleSerializer) isWriting() bool { return s.stream.IsWriting() }

func (s *moduleSerializer) fail(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

func (s *moduleSerializer) checkErr() error {
	if s.err != nil {
		return s.err
	}
	return s.stream.Err()
}

func (s *moduleSerializer) module(module **Module) error {
	if !s.isWriting() && *module == nil {
		*module = &Module{}
	}
	m := *module

	s.metadata(&m.Metadata)

	count := uint32(len(m.ImportedModules))
	s.stream.U32(&count)
	if !s.isWriting() && count > 0 {
		m.ImportedModules = make([]ImportedModule, count)
	}
	for i := range m.ImportedModules {
		imported := &m.ImportedModules[i]
		s.stream.String(&imported.Identifier)
		if err := s.module(&imported.Module); err != nil {
			return err
		}
	}

	var root Statement
	if s.isWriting() {
		root = m.RootNode
	}
	s.statement(&root)
	if !s.isWriting() {
		if multi, ok := root.(*MultiStatement); ok {
			m.RootNode = multi
		} else if root != nil {
			s.fail(errors.New("invalid shader module: root node is not a multi statement"))
		}
	}

	return s.checkErr()
}

func (s *moduleSerializer) metadata(metadata **ModuleMetadata) {
	if !s.isWriting() && *metadata == nil {
		*metadata = &ModuleMetadata{}
	}
	m := *metadata

	version := uint32(m.ShaderLangVer)
	s.stream.U32(&version)
	m.ShaderLangVer = ShaderLangVersion(version)

	s.stream.String(&m.ModuleName)
	s.stream.String(&m.Author)
	s.stream.String(&m.Description)
	s.stream.String(&m.License)

	count := uint32(len(m.EnabledFeatures))
	s.stream.U32(&count)
	if !s.isWriting() && count > 0 {
		m.EnabledFeatures = make([]ModuleFeature, count)
	}
	for i := range m.EnabledFeatures {
		feature := uint32(m.EnabledFeatures[i])
		s.stream.U32(&feature)
		m.EnabledFeatures[i] = ModuleFeature(feature)
	}
}

// sharedString transfers an interned string pointer. The writer emits the
// table index, followed by the payload on first occurrence; the reader
// rebuilds the table so that equal indices share one pointer.
func (s *moduleSerializer) sharedString(v **string) {
	present := *v != nil
	s.stream.Bool(&present)
	if !present {
		if !s.isWriting() {
			*v = nil
		}
		return
	}

	if s.isWriting() {
		if index, ok := s.stringIndices[**v]; ok {
			s.stream.U32(&index)
			return
		}
		index := uint32(len(s.stringIndices))
		s.stringIndices[**v] = index
		s.stream.U32(&index)
		s.stream.String(*v)
		return
	}

	var index uint32
	s.stream.U32(&index)
	if int(index) < len(s.strings) {
		*v = s.strings[index]
		return
	}
	if int(index) != len(s.strings) {
		s.fail(errors.Errorf("invalid shader module: shared string index %d out of order", index))
		return
	}
	var value string
	s.stream.String(&value)
	s.strings = append(s.strings, &value)
	*v = &value
}

func (s *moduleSerializer) sourceLoc(loc *lang.SourceLocation) {
	s.sharedString(&loc.File)
	s.stream.U32(&loc.StartLine)
	s.stream.U32(&loc.StartColumn)
	s.stream.U32(&loc.EndLine)
	s.stream.U32(&loc.EndColumn)
}

func (s *moduleSerializer) optIndex(v **uint32) {
	present := *v != nil
	s.stream.Bool(&present)
	if !present {
		if !s.isWriting() {
			*v = nil
		}
		return
	}
	if !s.isWriting() {
		*v = new(uint32)
	}
	s.stream.U32(*v)
}

// Expression type encoding

const (
	typeTagNone uint8 = iota
	typeTagPrimitive
	typeTagVector
	typeTagMatrix
	typeTagArray
	typeTagStruct
	typeTagSampler
	typeTagUniform
	typeTagAlias
	typeTagFunction
	typeTagIntrinsicFunction
	typeTagMethod
	typeTagType
)

func (s *moduleSerializer) exprType(t *ExpressionType) {
	var tag uint8
	if s.isWriting() {
		switch (*t).(type) {
		case NoType:
			tag = typeTagNone
		case PrimitiveType:
			tag = typeTagPrimitive
		case VectorType:
			tag = typeTagVector
		case MatrixType:
			tag = typeTagMatrix
		case ArrayType:
			tag = typeTagArray
		case StructType:
			tag = typeTagStruct
		case SamplerType:
			tag = typeTagSampler
		case UniformType:
			tag = typeTagUniform
		case AliasType:
			tag = typeTagAlias
		case FunctionType:
			tag = typeTagFunction
		case IntrinsicFunctionType:
			tag = typeTagIntrinsicFunction
		case MethodType:
			tag = typeTagMethod
		case TypeType:
			tag = typeTagType
		default:
			s.fail(errors.Errorf("unserializable expression type %T", *t))
			return
		}
	}
	s.stream.U8(&tag)

	switch tag {
	case typeTagNone:
		if !s.isWriting() {
			*t = NoType{}
		}

	case typeTagPrimitive:
		var prim uint8
		if s.isWriting() {
			prim = uint8((*t).(PrimitiveType))
		}
		s.stream.U8(&prim)
		if !s.isWriting() {
			*t = PrimitiveType(prim)
		}

	case typeTagVector:
		var vec VectorType
		if s.isWriting() {
			vec = (*t).(VectorType)
		}
		prim := uint8(vec.ComponentType)
		s.stream.U32(&vec.ComponentCount)
		s.stream.U8(&prim)
		if !s.isWriting() {
			vec.ComponentType = PrimitiveType(prim)
			*t = vec
		}

	case typeTagMatrix:
		var mat MatrixType
		if s.isWriting() {
			mat = (*t).(MatrixType)
		}
		prim := uint8(mat.ComponentType)
		s.stream.U32(&mat.ColumnCount)
		s.stream.U32(&mat.RowCount)
		s.stream.U8(&prim)
		if !s.isWriting() {
			mat.ComponentType = PrimitiveType(prim)
			*t = mat
		}

	case typeTagArray:
		var arr ArrayType
		if s.isWriting() {
			arr = (*t).(ArrayType)
		}
		s.exprType(&arr.ContainedType)
		s.stream.U32(&arr.Length)
		if !s.isWriting() {
			*t = arr
		}

	case typeTagStruct:
		var st StructType
		if s.isWriting() {
			st = (*t).(StructType)
		}
		s.stream.U32(&st.StructIndex)
		if !s.isWriting() {
			*t = st
		}

	case typeTagSampler:
		var sampler SamplerType
		if s.isWriting() {
			sampler = (*t).(SamplerType)
		}
		prim := uint8(sampler.SampledType)
		dim := uint8(sampler.Dim)
		s.stream.U8(&prim)
		s.stream.U8(&dim)
		if !s.isWriting() {
			sampler.SampledType = PrimitiveType(prim)
			sampler.Dim = ImageDim(dim)
			*t = sampler
		}

	case typeTagUniform:
		var uniform UniformType
		if s.isWriting() {
			uniform = (*t).(UniformType)
		}
		s.stream.U32(&uniform.ContainedType.StructIndex)
		if !s.isWriting() {
			*t = uniform
		}

	case typeTagAlias:
		var alias AliasType
		if s.isWriting() {
			alias = (*t).(AliasType)
		}
		s.stream.U32(&alias.AliasIndex)
		s.exprType(&alias.TargetType)
		if !s.isWriting() {
			*t = alias
		}

	case typeTagFunction:
		var fn FunctionType
		if s.isWriting() {
			fn = (*t).(FunctionType)
		}
		s.stream.U32(&fn.FuncIndex)
		if !s.isWriting() {
			*t = fn
		}

	case typeTagIntrinsicFunction:
		var intr IntrinsicFunctionType
		if s.isWriting() {
			intr = (*t).(IntrinsicFunctionType)
		}
		value := uint32(intr.Intrinsic)
		s.stream.U32(&value)
		if !s.isWriting() {
			intr.Intrinsic = IntrinsicType(value)
			*t = intr
		}

	case typeTagMethod:
		var method MethodType
		if s.isWriting() {
			method = (*t).(MethodType)
		}
		s.exprType(&method.ObjectType)
		s.stream.U32(&method.MethodIndex)
		if !s.isWriting() {
			*t = method
		}

	case typeTagType:
		var tt TypeType
		if s.isWriting() {
			tt = (*t).(TypeType)
		}
		present := tt.ContainedType != nil
		s.stream.Bool(&present)
		if present {
			s.exprType(&tt.ContainedType)
		}
		if !s.isWriting() {
			*t = tt
		}

	default:
		s.fail(errors.Errorf("invalid shader module: unknown type tag %d", tag))
	}
}

func (s *moduleSerializer) optExprType(t *ExpressionType) {
	present := *t != nil
	s.stream.Bool(&present)
	if !present {
		if !s.isWriting() {
			*t = nil
		}
		return
	}
	s.exprType(t)
}

// Constant value encoding

const (
	valueTagNone uint8 = iota
	valueTagBool
	valueTagF32
	valueTagI32
	valueTagU32
	valueTagString
	valueTagVec2F32
	valueTagVec3F32
	valueTagVec4F32
	valueTagVec2I32
	valueTagVec3I32
	valueTagVec4I32
	valueTagVec2U32
	valueTagVec3U32
	valueTagVec4U32
	valueTagVec2Bool
	valueTagVec3Bool
	valueTagVec4Bool
	valueTagMat2
	valueTagMat3
	valueTagMat4
)

func (s *moduleSerializer) constantValue(v *ConstantValue) {
	var tag uint8
	if s.isWriting() {
		switch (*v).(type) {
		case NoValue, nil:
			tag = valueTagNone
		case BoolValue:
			tag = valueTagBool
		case Float32Value:
			tag = valueTagF32
		case Int32Value:
			tag = valueTagI32
		case UInt32Value:
			tag = valueTagU32
		case StringValue:
			tag = valueTagString
		case Vector2[float32]:
			tag = valueTagVec2F32
		case Vector3[float32]:
			tag = valueTagVec3F32
		case Vector4[float32]:
			tag = valueTagVec4F32
		case Vector2[int32]:
			tag = valueTagVec2I32
		case Vector3[int32]:
			tag = valueTagVec3I32
		case Vector4[int32]:
			tag = valueTagVec4I32
		case Vector2[uint32]:
			tag = valueTagVec2U32
		case Vector3[uint32]:
			tag = valueTagVec3U32
		case Vector4[uint32]:
			tag = valueTagVec4U32
		case Vector2[bool]:
			tag = valueTagVec2Bool
		case Vector3[bool]:
			tag = valueTagVec3Bool
		case Vector4[bool]:
			tag = valueTagVec4Bool
		case Matrix2:
			tag = valueTagMat2
		case Matrix3:
			tag = valueTagMat3
		case Matrix4:
			tag = valueTagMat4
		default:
			s.fail(errors.Errorf("unserializable constant value %T", *v))
			return
		}
	}
	s.stream.U8(&tag)

	switch tag {
	case valueTagNone:
		if !s.isWriting() {
			*v = NoValue{}
		}
	case valueTagBool:
		var value bool
		if s.isWriting() {
			value = bool((*v).(BoolValue))
		}
		s.stream.Bool(&value)
		if !s.isWriting() {
			*v = BoolValue(value)
		}
	case valueTagF32:
		var value float32
		if s.isWriting() {
			value = float32((*v).(Float32Value))
		}
		s.stream.F32(&value)
		if !s.isWriting() {
			*v = Float32Value(value)
		}
	case valueTagI32:
		var value int32
		if s.isWriting() {
			value = int32((*v).(Int32Value))
		}
		s.stream.I32(&value)
		if !s.isWriting() {
			*v = Int32Value(value)
		}
	case valueTagU32:
		var value uint32
		if s.isWriting() {
			value = uint32((*v).(UInt32Value))
		}
		s.stream.U32(&value)
		if !s.isWriting() {
			*v = UInt32Value(value)
		}
	case valueTagString:
		var value string
		if s.isWriting() {
			value = string((*v).(StringValue))
		}
		s.stream.String(&value)
		if !s.isWriting() {
			*v = StringValue(value)
		}
	case valueTagVec2F32:
		serializeVec[float32](s, v, 2, s.stream.F32)
	case valueTagVec3F32:
		serializeVec[float32](s, v, 3, s.stream.F32)
	case valueTagVec4F32:
		serializeVec[float32](s, v, 4, s.stream.F32)
	case valueTagVec2I32:
		serializeVec[int32](s, v, 2, s.stream.I32)
	case valueTagVec3I32:
		serializeVec[int32](s, v, 3, s.stream.I32)
	case valueTagVec4I32:
		serializeVec[int32](s, v, 4, s.stream.I32)
	case valueTagVec2U32:
		serializeVec[uint32](s, v, 2, s.stream.U32)
	case valueTagVec3U32:
		serializeVec[uint32](s, v, 3, s.stream.U32)
	case valueTagVec4U32:
		serializeVec[uint32](s, v, 4, s.stream.U32)
	case valueTagVec2Bool:
		serializeVec[bool](s, v, 2, s.stream.Bool)
	case valueTagVec3Bool:
		serializeVec[bool](s, v, 3, s.stream.Bool)
	case valueTagVec4Bool:
		serializeVec[bool](s, v, 4, s.stream.Bool)
	case valueTagMat2, valueTagMat3, valueTagMat4:
		s.matrixValue(tag, v)
	default:
		s.fail(errors.Errorf("invalid shader module: unknown value tag %d", tag))
	}
}

func serializeVec[T ConstantScalar](s *moduleSerializer, v *ConstantValue, count int, transfer func(*T)) {
	comps := make([]T, count)
	if s.isWriting() {
		values, _ := vectorComponents(*v)
		for i, value := range values {
			comps[i], _ = scalarOf[T](value)
		}
	}
	for i := range comps {
		transfer(&comps[i])
	}
	if !s.isWriting() {
		switch count {
		case 2:
			*v = Vector2[T]{comps[0], comps[1]}
		case 3:
			*v = Vector3[T]{comps[0], comps[1], comps[2]}
		default:
			*v = Vector4[T]{comps[0], comps[1], comps[2], comps[3]}
		}
	}
}

func (s *moduleSerializer) matrixValue(tag uint8, v *ConstantValue) {
	size := int(tag-valueTagMat2) + 2
	cols := make([][]float32, size)
	if s.isWriting() {
		cols, _ = matrixColumns(*v)
	}
	for c := 0; c < size; c++ {
		if !s.isWriting() {
			cols[c] = make([]float32, size)
		}
		for r := 0; r < size; r++ {
			s.stream.F32(&cols[c][r])
		}
	}
	if !s.isWriting() {
		value, err := makeMatrix(cols)
		if err != nil {
			s.fail(err)
			return
		}
		*v = value
	}
}

// ExpressionValue encoding: one state byte (absent, value, expression)
// followed by the payload.

const (
	exprValueAbsent uint8 = iota
	exprValueResolved
	exprValueExpression
)

func exprValueState[T any](s *moduleSerializer, v *ExpressionValue[T]) uint8 {
	var state uint8
	if s.isWriting() {
		switch {
		case v.Value != nil:
			state = exprValueResolved
		case v.Expr != nil:
			state = exprValueExpression
		}
	}
	s.stream.U8(&state)
	return state
}

func serializeExprValue[T any](s *moduleSerializer, v *ExpressionValue[T], transfer func(*T)) {
	switch exprValueState(s, v) {
	case exprValueResolved:
		if !s.isWriting() {
			v.Value = new(T)
		}
		transfer(v.Value)
	case exprValueExpression:
		s.expression(&v.Expr)
	default:
		if !s.isWriting() {
			v.Reset()
		}
	}
}

func serializeExprValueEnum[T ~uint8](s *moduleSerializer, v *ExpressionValue[T]) {
	serializeExprValue(s, v, func(value *T) {
		raw := uint8(*value)
		s.stream.U8(&raw)
		*value = T(raw)
	})
}

func (s *moduleSerializer) exprValueType(v *ExpressionValue[ExpressionType]) {
	serializeExprValue(s, v, func(t *ExpressionType) { s.exprType(t) })
}

func (s *moduleSerializer) exprValueU32(v *ExpressionValue[uint32]) {
	serializeExprValue(s, v, s.stream.U32)
}

func (s *moduleSerializer) exprValueBool(v *ExpressionValue[bool]) {
	serializeExprValue(s, v, s.stream.Bool)
}

func (s *moduleSerializer) exprValueBuiltin(v *ExpressionValue[BuiltinEntry]) {
	serializeExprValue(s, v, func(value *BuiltinEntry) {
		raw := uint32(*value)
		s.stream.U32(&raw)
		*value = BuiltinEntry(raw)
	})
}

// Node encoding: u8 tag (0 for nil, NodeType+1 otherwise), variant fields,
// then the shared trailer (cached type for expressions, source location for
// every node).

func (s *moduleSerializer) nodeTag(node Node) uint8 {
	if node == nil {
		return 0
	}
	return uint8(node.NodeType()) + 1
}

func (s *moduleSerializer) expression(expr *Expression) {
	var tag uint8
	if s.isWriting() {
		tag = s.nodeTag(*expr)
	}
	s.stream.U8(&tag)
	if tag == 0 {
		if !s.isWriting() {
			*expr = nil
		}
		return
	}

	if !s.isWriting() {
		node := newExpressionNode(NodeType(tag) - 1)
		if node == nil {
			s.fail(errors.Errorf("invalid shader module: unknown expression tag %d", tag))
			return
		}
		*expr = node
	}

	s.expressionFields(*expr)

	// expression trailer
	node := *expr
	cached := node.ExprType()
	s.optExprType(&cached)
	if !s.isWriting() {
		node.SetExprType(cached)
	}
	s.nodeLoc(node)
}

func (s *moduleSerializer) statement(stmt *Statement) {
	var tag uint8
	if s.isWriting() {
		tag = s.nodeTag(*stmt)
	}
	s.stream.U8(&tag)
	if tag == 0 {
		if !s.isWriting() {
			*stmt = nil
		}
		return
	}

	if !s.isWriting() {
		node := newStatementNode(NodeType(tag) - 1)
		if node == nil {
			s.fail(errors.Errorf("invalid shader module: unknown statement tag %d", tag))
			return
		}
		*stmt = node
	}

	s.statementFields(*stmt)
	s.nodeLoc(*stmt)
}

func (s *moduleSerializer) nodeLoc(node Node) {
	type locAccess interface{ locRef() *lang.SourceLocation }
	if access, ok := node.(locAccess); ok {
		s.sourceLoc(access.locRef())
	}
}

func (s *moduleSerializer) expressionList(exprs *[]Expression) {
	count := uint32(len(*exprs))
	s.stream.U32(&count)
	if !s.isWriting() && count > 0 {
		*exprs = make([]Expression, count)
	}
	for i := range *exprs {
		s.expression(&(*exprs)[i])
	}
}

func (s *moduleSerializer) statementList(stmts *[]Statement) {
	count := uint32(len(*stmts))
	s.stream.U32(&count)
	if !s.isWriting() && count > 0 {
		*stmts = make([]Statement, count)
	}
	for i := range *stmts {
		s.statement(&(*stmts)[i])
	}
}

func newExpressionNode(tag NodeType) Expression {
	switch tag {
	case NodeAccessIdentifierExpression:
		return &AccessIdentifierExpression{}
	case NodeAccessIndexExpression:
		return &AccessIndexExpression{}
	case NodeAliasValueExpression:
		return &AliasValueExpression{}
	case NodeAssignExpression:
		return &AssignExpression{}
	case NodeBinaryExpression:
		return &BinaryExpression{}
	case NodeCallFunctionExpression:
		return &CallFunctionExpression{}
	case NodeCallMethodExpression:
		return &CallMethodExpression{}
	case NodeCastExpression:
		return &CastExpression{}
	case NodeConditionalExpression:
		return &ConditionalExpression{}
	case NodeConstantExpression:
		return &ConstantExpression{}
	case NodeConstantValueExpression:
		return &ConstantValueExpression{}
	case NodeFunctionExpression:
		return &FunctionExpression{}
	case NodeIdentifierExpression:
		return &IdentifierExpression{}
	case NodeIntrinsicExpression:
		return &IntrinsicExpression{}
	case NodeIntrinsicFunctionExpression:
		return &IntrinsicFunctionExpression{}
	case NodeStructTypeExpression:
		return &StructTypeExpression{}
	case NodeSwizzleExpression:
		return &SwizzleExpression{}
	case NodeTypeExpression:
		return &TypeExpression{}
	case NodeUnaryExpression:
		return &UnaryExpression{}
	case NodeVariableValueExpression:
		return &VariableValueExpression{}
	default:
		return nil
	}
}

func newStatementNode(tag NodeType) Statement {
	switch tag {
	case NodeBranchStatement:
		return &BranchStatement{}
	case NodeConditionalStatement:
		return &ConditionalStatement{}
	case NodeDeclareAliasStatement:
		return &DeclareAliasStatement{}
	case NodeDeclareConstStatement:
		return &DeclareConstStatement{}
	case NodeDeclareExternalStatement:
		return &DeclareExternalStatement{}
	case NodeDeclareFunctionStatement:
		return &DeclareFunctionStatement{}
	case NodeDeclareOptionStatement:
		return &DeclareOptionStatement{}
	case NodeDeclareStructStatement:
		return &DeclareStructStatement{}
	case NodeDeclareVariableStatement:
		return &DeclareVariableStatement{}
	case NodeDiscardStatement:
		return &DiscardStatement{}
	case NodeExpressionStatement:
		return &ExpressionStatement{}
	case NodeForStatement:
		return &ForStatement{}
	case NodeForEachStatement:
		return &ForEachStatement{}
	case NodeImportStatement:
		return &ImportStatement{}
	case NodeMultiStatement:
		return &MultiStatement{}
	case NodeNoOpStatement:
		return &NoOpStatement{}
	case NodeReturnStatement:
		return &ReturnStatement{}
	case NodeScopedStatement:
		return &ScopedStatement{}
	case NodeWhileStatement:
		return &WhileStatement{}
	case NodeBreakStatement:
		return &BreakStatement{}
	case NodeContinueStatement:
		return &ContinueStatement{}
	default:
		return nil
	}
}

func (s *moduleSerializer) expressionFields(expr Expression) {
	switch node := expr.(type) {
	case *AccessIdentifierExpression:
		s.expression(&node.Expr)
		count := uint32(len(node.Identifiers))
		s.stream.U32(&count)
		if !s.isWriting() && count > 0 {
			node.Identifiers = make([]AccessIdentifier, count)
		}
		for i := range node.Identifiers {
			s.stream.String(&node.Identifiers[i].Identifier)
			s.sourceLoc(&node.Identifiers[i].SourceLocation)
		}

	case *AccessIndexExpression:
		s.expression(&node.Expr)
		s.expressionList(&node.Indices)

	case *AliasValueExpression:
		s.stream.U32(&node.AliasID)

	case *AssignExpression:
		op := uint8(node.Op)
		s.stream.U8(&op)
		node.Op = AssignType(op)
		s.expression(&node.Left)
		s.expression(&node.Right)

	case *BinaryExpression:
		op := uint8(node.Op)
		s.stream.U8(&op)
		node.Op = BinaryType(op)
		s.expression(&node.Left)
		s.expression(&node.Right)

	case *CallFunctionExpression:
		s.expression(&node.TargetFunction)
		s.expressionList(&node.Parameters)

	case *CallMethodExpression:
		s.expression(&node.Object)
		s.stream.String(&node.MethodName)
		s.expressionList(&node.Parameters)

	case *CastExpression:
		s.exprValueType(&node.TargetType)
		s.expressionList(&node.Expressions)

	case *ConditionalExpression:
		s.expression(&node.Condition)
		s.expression(&node.TruePath)
		s.expression(&node.FalsePath)

	case *ConstantExpression:
		s.stream.U32(&node.ConstantID)

	case *ConstantValueExpression:
		s.constantValue(&node.Value)

	case *FunctionExpression:
		s.stream.U32(&node.FuncID)

	case *IdentifierExpression:
		s.stream.String(&node.Identifier)

	case *IntrinsicExpression:
		intrinsic := uint32(node.Intrinsic)
		s.stream.U32(&intrinsic)
		node.Intrinsic = IntrinsicType(intrinsic)
		s.expressionList(&node.Parameters)

	case *IntrinsicFunctionExpression:
		s.stream.U32(&node.IntrinsicID)

	case *StructTypeExpression:
		s.stream.U32(&node.StructTypeID)

	case *SwizzleExpression:
		s.expression(&node.Expression)
		s.stream.U32(&node.ComponentCount)
		for i := range node.Components {
			s.stream.U32(&node.Components[i])
		}

	case *TypeExpression:
		s.stream.U32(&node.TypeID)

	case *UnaryExpression:
		op := uint8(node.Op)
		s.stream.U8(&op)
		node.Op = UnaryType(op)
		s.expression(&node.Expression)

	case *VariableValueExpression:
		s.stream.U32(&node.VariableID)
	}
}

func (s *moduleSerializer) statementFields(stmt Statement) {
	switch node := stmt.(type) {
	case *BranchStatement:
		s.stream.Bool(&node.IsConst)
		count := uint32(len(node.CondStatements))
		s.stream.U32(&count)
		if !s.isWriting() && count > 0 {
			node.CondStatements = make([]ConditionalBranch, count)
		}
		for i := range node.CondStatements {
			s.expression(&node.CondStatements[i].Condition)
			s.statement(&node.CondStatements[i].Statement)
		}
		s.statement(&node.ElseStatement)

	case *ConditionalStatement:
		s.expression(&node.Condition)
		s.statement(&node.Statement)

	case *DeclareAliasStatement:
		s.optIndex(&node.AliasIndex)
		s.stream.String(&node.Name)
		s.expression(&node.Expression)

	case *DeclareConstStatement:
		s.optIndex(&node.ConstIndex)
		s.stream.String(&node.Name)
		s.exprValueType(&node.Type)
		s.expression(&node.Expression)

	case *DeclareExternalStatement:
		s.exprValueU32(&node.BindingSet)
		count := uint32(len(node.ExternalVars))
		s.stream.U32(&count)
		if !s.isWriting() && count > 0 {
			node.ExternalVars = make([]ExternalVar, count)
		}
		for i := range node.ExternalVars {
			extVar := &node.ExternalVars[i]
			s.optIndex(&extVar.VarIndex)
			s.stream.String(&extVar.Name)
			s.exprValueType(&extVar.Type)
			s.exprValueU32(&extVar.BindingIndex)
			s.exprValueU32(&extVar.BindingSet)
			s.sourceLoc(&extVar.SourceLocation)
		}

	case *DeclareFunctionStatement:
		s.optIndex(&node.FuncIndex)
		s.stream.String(&node.Name)
		count := uint32(len(node.Parameters))
		s.stream.U32(&count)
		if !s.isWriting() && count > 0 {
			node.Parameters = make([]FunctionParameter, count)
		}
		for i := range node.Parameters {
			param := &node.Parameters[i]
			s.optIndex(&param.VarIndex)
			s.stream.String(&param.Name)
			s.exprValueType(&param.Type)
			s.sourceLoc(&param.SourceLocation)
		}
		s.statementList(&node.Statements)
		s.exprValueType(&node.ReturnType)
		serializeExprValueEnum(s, &node.DepthWrite)
		s.exprValueBool(&node.EarlyFragmentTests)
		serializeExprValueEnum(s, &node.EntryStage)
		s.exprValueBool(&node.IsExported)

	case *DeclareOptionStatement:
		s.optIndex(&node.OptIndex)
		s.stream.String(&node.OptName)
		s.exprValueType(&node.OptType)
		s.expression(&node.DefaultValue)

	case *DeclareStructStatement:
		s.optIndex(&node.StructIndex)
		s.exprValueBool(&node.IsExported)
		s.stream.String(&node.Description.Name)
		serializeExprValueEnum(s, &node.Description.Layout)
		count := uint32(len(node.Description.Members))
		s.stream.U32(&count)
		if !s.isWriting() && count > 0 {
			node.Description.Members = make([]StructMember, count)
		}
		for i := range node.Description.Members {
			member := &node.Description.Members[i]
			s.stream.String(&member.Name)
			s.exprValueType(&member.Type)
			s.exprValueBuiltin(&member.Builtin)
			s.exprValueBool(&member.Cond)
			s.exprValueU32(&member.LocationIndex)
			s.sourceLoc(&member.SourceLocation)
		}

	case *DeclareVariableStatement:
		s.optIndex(&node.VarIndex)
		s.stream.String(&node.VarName)
		s.exprValueType(&node.VarType)
		s.expression(&node.InitialExpression)

	case *DiscardStatement:

	case *ExpressionStatement:
		s.expression(&node.Expression)

	case *ForStatement:
		s.optIndex(&node.VarIndex)
		s.stream.String(&node.VarName)
		s.expression(&node.FromExpr)
		s.expression(&node.ToExpr)
		s.expression(&node.StepExpr)
		serializeExprValueEnum(s, &node.Unroll)
		s.statement(&node.Body)

	case *ForEachStatement:
		s.optIndex(&node.VarIndex)
		s.stream.String(&node.VarName)
		s.expression(&node.Expression)
		serializeExprValueEnum(s, &node.Unroll)
		s.statement(&node.Body)

	case *ImportStatement:
		s.stream.String(&node.ModuleName)
		count := uint32(len(node.Identifiers))
		s.stream.U32(&count)
		if !s.isWriting() && count > 0 {
			node.Identifiers = make([]ImportIdentifier, count)
		}
		for i := range node.Identifiers {
			ident := &node.Identifiers[i]
			s.stream.String(&ident.Identifier)
			s.stream.String(&ident.RenamedIdentifier)
			s.sourceLoc(&ident.SourceLocation)
			s.sourceLoc(&ident.RenamedLocation)
		}

	case *MultiStatement:
		s.statementList(&node.Statements)

	case *NoOpStatement:

	case *ReturnStatement:
		s.expression(&node.ReturnExpr)

	case *ScopedStatement:
		s.statement(&node.Statement)

	case *WhileStatement:
		s.expression(&node.Condition)
		serializeExprValueEnum(s, &node.Unroll)
		s.statement(&node.Body)

	case *BreakStatement:

	case *ContinueStatement:
	}
}
