package ast

import "github.com/gogpu/nzsl/lang"

// Compiler error constructors. Every pass reports failures as *lang.Error
// values built here, so that codes and message wording stay consistent
// between the sanitizer, the constant folder and the tests.

func errArrayLengthRequired(loc lang.SourceLocation) *lang.Error {
	return lang.NewCompilerError(loc, "ArrayLengthRequired", "array length is required in this context")
}

func errAttributeInvalidParameter(loc lang.SourceLocation, param, attribute string) *lang.Error {
	return lang.NewCompilerError(loc, "AttributeInvalidParameter", "invalid parameter %s for attribute %s", param, attribute)
}

func errAttributeMissingParameter(loc lang.SourceLocation, attribute string) *lang.Error {
	return lang.NewCompilerError(loc, "AttributeMissingParameter", "attribute %s requires a parameter", attribute)
}

func errAttributeMultipleUnique(loc lang.SourceLocation, attribute string) *lang.Error {
	return lang.NewCompilerError(loc, "AttributeMultipleUnique", "attribute %s can only be present once", attribute)
}

func errAttributeUnexpectedExpression(loc lang.SourceLocation, attribute string) *lang.Error {
	return lang.NewCompilerError(loc, "AttributeUnexpectedExpression", "attribute %s requires a constant parameter", attribute)
}

func errAssignTemporary(loc lang.SourceLocation) *lang.Error {
	return lang.NewCompilerError(loc, "AssignTemporary", "cannot assign to this expression")
}

func errBinaryIncompatibleTypes(loc lang.SourceLocation, left, right ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "BinaryIncompatibleTypes", "incompatible types (%s and %s)", left, right)
}

func errBinaryUnsupported(loc lang.SourceLocation, side string, operandType ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "BinaryUnsupported", "%s operand type (%s) does not support this operation", side, operandType)
}

func errBuiltinUnexpectedType(loc lang.SourceLocation, builtin BuiltinEntry, expected, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "BuiltinUnexpectedType", "builtin %s expected type %s, got type %s", builtin, expected, got)
}

func errBuiltinUnsupportedStage(loc lang.SourceLocation, builtin BuiltinEntry, stage ShaderStageType) *lang.Error {
	return lang.NewCompilerError(loc, "BuiltinUnsupportedStage", "builtin %s is not available in %s stage", builtin, stage)
}

func errCastComponentMismatch(loc lang.SourceLocation, got, required uint32) *lang.Error {
	return lang.NewCompilerError(loc, "CastComponentMismatch", "component count (%d) doesn't match required component count (%d)", got, required)
}

func errCastIncompatibleTypes(loc lang.SourceLocation, from, to ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "CastIncompatibleTypes", "casting from %s to %s is not allowed", from, to)
}

func errCastMatrixVectorComponentMismatch(loc lang.SourceLocation, vectorComponents, matrixRows uint32) *lang.Error {
	return lang.NewCompilerError(loc, "CastMatrixVectorComponentMismatch", "vector component count (%d) doesn't match target matrix row count (%d)", vectorComponents, matrixRows)
}

func errCircularImport(loc lang.SourceLocation, moduleName string) *lang.Error {
	return lang.NewCompilerError(loc, "CircularImport", "circular import detected involving module %s", moduleName)
}

func errConditionExpectedBool(loc lang.SourceLocation, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "ConditionExpectedBool", "expected a bool condition, got %s", got)
}

func errConstantExpressionRequired(loc lang.SourceLocation) *lang.Error {
	return lang.NewCompilerError(loc, "ConstantExpressionRequired", "a constant expression is required in this context")
}

func errEntryFunctionParameter(loc lang.SourceLocation, name string) *lang.Error {
	return lang.NewCompilerError(loc, "EntryFunctionParameter", "entry function %s can either take one struct parameter or no parameter", name)
}

func errEntryPointAlreadyDefined(loc lang.SourceLocation, stage ShaderStageType) *lang.Error {
	return lang.NewCompilerError(loc, "EntryPointAlreadyDefined", "the %s entry type has been defined multiple times", stage)
}

func errExpectedFunction(loc lang.SourceLocation, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "FunctionCallExpectedFunction", "expected function expression, got %s", got)
}

func errExtTypeNotAllowed(loc lang.SourceLocation, name string, extType ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "ExtTypeNotAllowed", "external variable %s has unauthorized type (%s): only storage buffers, samplers and uniform buffers (and primitives, vectors and matrices if primitive external feature is enabled) are allowed in external blocks", name, extType)
}

func errForEachUnsupportedType(loc lang.SourceLocation, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "ForEachUnsupportedType", "for-each statements can only be used on arrays, got %s", got)
}

func errFunctionCallParameterCount(loc lang.SourceLocation, name string, expected, got int) *lang.Error {
	return lang.NewCompilerError(loc, "FunctionCallUnmatchingParameterCount", "function %s expects %d parameter(s), but got %d", name, expected, got)
}

func errFunctionCallParameterType(loc lang.SourceLocation, name string, index int, expected, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "FunctionCallUnmatchingParameterType", "function %s parameter #%d type mismatch (expected %s, got %s)", name, index, expected, got)
}

func errImportIdentifierAlreadyPresent(loc lang.SourceLocation, identifier string) *lang.Error {
	return lang.NewCompilerError(loc, "ImportIdentifierAlreadyPresent", "%s identifier was already imported", identifier)
}

func errImportMultipleWildcard(loc lang.SourceLocation) *lang.Error {
	return lang.NewCompilerError(loc, "ImportMultipleWildcard", "only one wildcard can be present in an import directive")
}

func errImportWildcardRename(loc lang.SourceLocation) *lang.Error {
	return lang.NewCompilerError(loc, "ImportWildcardRename", "wildcard cannot be renamed")
}

func errIndexRequiresInteger(loc lang.SourceLocation, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "IndexRequiresIntegerIndices", "index access requires integer indices, got %s", got)
}

func errIndexUnexpectedType(loc lang.SourceLocation, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "IndexUnexpectedType", "type %s cannot be indexed", got)
}

func errIntegralDivisionByZero(loc lang.SourceLocation, lhs, rhs ConstantValue) *lang.Error {
	return lang.NewCompilerError(loc, "IntegralDivisionByZero", "integral division by zero in expression (%s / %s)", lhs, rhs)
}

func errIntegralModuloByZero(loc lang.SourceLocation, lhs, rhs ConstantValue) *lang.Error {
	return lang.NewCompilerError(loc, "IntegralModuloByZero", "integral modulo by zero in expression (%s %% %s)", lhs, rhs)
}

func errIntrinsicExpectedParameterCount(loc lang.SourceLocation, expected int) *lang.Error {
	return lang.NewCompilerError(loc, "IntrinsicExpectedParameterCount", "expected %d parameter(s)", expected)
}

func errIntrinsicExpectedType(loc lang.SourceLocation, index int, expected string, got ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "IntrinsicExpectedType", "expected type %s for parameter #%d, got %s", expected, index, got)
}

func errInvalidStageDependency(loc lang.SourceLocation, required, calling ShaderStageType) *lang.Error {
	return lang.NewCompilerError(loc, "InvalidStageDependency", "this is only valid in the %s stage but this functions gets called in the %s stage", required, calling)
}

func errInvalidSwizzle(loc lang.SourceLocation, swizzle string) *lang.Error {
	return lang.NewCompilerError(loc, "InvalidSwizzle", "invalid swizzle %s", swizzle)
}

func errLoopControlOutsideOfLoop(loc lang.SourceLocation, control string) *lang.Error {
	return lang.NewCompilerError(loc, "LoopControlOutsideOfLoop", "loop control instruction %s found outside of loop", control)
}

func errModuleFeatureMismatch(loc lang.SourceLocation, moduleName string, feature ModuleFeature) *lang.Error {
	return lang.NewCompilerError(loc, "ModuleFeatureMismatch", "module %s requires feature %s", moduleName, feature)
}

func errModuleFeatureMultipleUnique(loc lang.SourceLocation, feature ModuleFeature) *lang.Error {
	return lang.NewCompilerError(loc, "ModuleFeatureMultipleUnique", "module feature %s has already been specified", feature)
}

func errModuleNotFound(loc lang.SourceLocation, moduleName string) *lang.Error {
	return lang.NewCompilerError(loc, "ModuleNotFound", "module %s not found", moduleName)
}

func errUnaryUnsupported(loc lang.SourceLocation, operandType ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "UnaryUnsupported", "type (%s) does not support this unary operation", operandType)
}

func errUnexpectedAttribute(loc lang.SourceLocation, attribute string) *lang.Error {
	return lang.NewCompilerError(loc, "UnexpectedAttribute", "unexpected attribute %s", attribute)
}

func errUnknownIdentifier(loc lang.SourceLocation, identifier string) *lang.Error {
	return lang.NewCompilerError(loc, "UnknownIdentifier", "unknown identifier %s", identifier)
}

func errUnmatchingTypes(loc lang.SourceLocation, left, right ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "UnmatchingTypes", "left expression type (%s) doesn't match right expression type (%s)", left, right)
}

func errVarDeclarationTypeUnmatching(loc lang.SourceLocation, exprType, specifiedType ExpressionType) *lang.Error {
	return lang.NewCompilerError(loc, "VarDeclarationTypeUnmatching", "initial expression type (%s) doesn't match specified type (%s)", exprType, specifiedType)
}

// throw unwinds the current pass with a compiler error; pass boundaries
// recover it via catchError.
func throw(err *lang.Error) {
	panic(err)
}

// catchError converts a thrown *lang.Error back into an error return. Any
// other panic is re-raised.
func catchError(err *error) {
	if r := recover(); r != nil {
		if cerr, ok := r.(*lang.Error); ok {
			*err = cerr
			return
		}
		panic(r)
	}
}
