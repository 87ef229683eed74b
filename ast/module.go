package ast

// ShaderLangVersion packs a language version as major*100 + minor*10 + patch.
type ShaderLangVersion uint32

// MakeShaderLangVersion builds a packed language version number.
func MakeShaderLangVersion(major, minor, patch uint32) ShaderLangVersion {
	return ShaderLangVersion(major*100 + minor*10 + patch)
}

// ModuleMetadata describes a module: its name, language version, optional
// provenance strings and enabled feature flags.
type ModuleMetadata struct {
	ModuleName    string
	ShaderLangVer ShaderLangVersion
	Author        string
	Description   string
	License       string
	// EnabledFeatures lists the module feature flags, in declaration order.
	EnabledFeatures []ModuleFeature
}

// HasFeature reports whether the feature flag is enabled.
func (m *ModuleMetadata) HasFeature(feature ModuleFeature) bool {
	for _, f := range m.EnabledFeatures {
		if f == feature {
			return true
		}
	}
	return false
}

// ImportedModule is a fully sanitized child module installed under a local
// identifier. The same child module may be shared by several parents;
// modules are immutable after sanitization, which makes the sharing safe.
type ImportedModule struct {
	Identifier string
	Module     *Module
}

// Module is a parsed (and possibly sanitized) shader module: metadata, the
// modules it imports, and a root multi-statement holding every top-level
// declaration. Sanitization guarantees that modules form a DAG with stable
// traversal order.
type Module struct {
	Metadata        *ModuleMetadata
	ImportedModules []ImportedModule
	RootNode        *MultiStatement
}

// NewModule builds an empty module with the given metadata.
func NewModule(metadata *ModuleMetadata) *Module {
	return &Module{
		Metadata: metadata,
		RootNode: &MultiStatement{},
	}
}

// ModuleResolver maps module names to parsed (not necessarily sanitized)
// module trees. Implementations may be backed by the filesystem, an
// in-memory table, or anything else; returning nil means "unknown module".
type ModuleResolver interface {
	Resolve(moduleName string) *Module
}
