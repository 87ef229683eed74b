// Package nzsl provides the NZSL shader compiler core.
//
// nzsl parses nothing by itself: a front-end hands it a parsed module tree
// (package ast), which the core then resolves, checks and canonicalizes
// (Sanitize), constant-folds (PropagateConstants), prunes
// (EliminateUnused) and serializes into the compiled .nzslb form.
//
// Typical pipeline:
//
//	module, err := nzsl.Process(parsed, nzsl.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	blob, err := ast.SerializeModule(module)
//
// Backends (GLSL, SPIR-V, pretty-printed NZSL) consume the processed module
// through the ast visitors, relying on the sanitized invariants: resolved
// indices everywhere, cached expression types, and no surprise control
// flow.
package nzsl

import (
	"github.com/gogpu/nzsl/ast"
)

// Version of the compiler core.
const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

// LangVersion is the language version this core implements.
var LangVersion = ast.MakeShaderLangVersion(1, 0, 0)

// Options configures the full processing pipeline.
type Options struct {
	// Sanitize configures the sanitizer pass.
	Sanitize ast.SanitizeOptions
	// Propagation configures constant propagation.
	Propagation ast.PropagationOptions
	// Dependency selects the entry points rooting dead-code elimination.
	Dependency ast.DependencyConfig
	// EliminateUnused removes declarations unreachable from entry points.
	EliminateUnused bool
}

// DefaultOptions enables the canonicalizations and prunes unused code for
// every shader stage.
func DefaultOptions() Options {
	return Options{
		Sanitize:        ast.DefaultSanitizeOptions(),
		Dependency:      ast.DefaultDependencyConfig(),
		EliminateUnused: true,
	}
}

// Process runs the pass pipeline over a parsed module: sanitize, propagate
// constants, then optionally eliminate unused declarations. The input
// module is left untouched.
func Process(module *ast.Module, options Options) (*ast.Module, error) {
	sanitized, err := ast.SanitizeWithOptions(module, options.Sanitize)
	if err != nil {
		return nil, err
	}

	folded, err := ast.PropagateConstantsWithOptions(sanitized, options.Propagation)
	if err != nil {
		return nil, err
	}

	if !options.EliminateUnused {
		return folded, nil
	}
	return ast.EliminateUnusedWithConfig(folded, options.Dependency)
}

// Compile processes a parsed module and serializes the result into the
// compiled module format.
func Compile(module *ast.Module, options Options) ([]byte, error) {
	processed, err := Process(module, options)
	if err != nil {
		return nil, err
	}
	return ast.SerializeModule(processed)
}
