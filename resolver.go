package nzsl

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	"go.uber.org/multierr"

	"github.com/gogpu/nzsl/ast"
)

// File extensions recognized by the filesystem resolver.
const (
	ModuleExtension         = ".nzsl"
	CompiledModuleExtension = ".nzslb"
)

// InMemoryModuleResolver resolves modules from a registration table. Safe
// for concurrent use.
type InMemoryModuleResolver struct {
	mu      sync.RWMutex
	modules map[string]*ast.Module
}

// NewInMemoryModuleResolver returns an empty resolver.
func NewInMemoryModuleResolver() *InMemoryModuleResolver {
	return &InMemoryModuleResolver{modules: make(map[string]*ast.Module)}
}

// Register installs a parsed module under its metadata name.
func (r *InMemoryModuleResolver) Register(module *ast.Module) error {
	if module.Metadata == nil || module.Metadata.ModuleName == "" {
		return errors.New("module has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[module.Metadata.ModuleName] = module
	return nil
}

// Resolve returns the registered module, or nil.
func (r *InMemoryModuleResolver) Resolve(moduleName string) *ast.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modules[moduleName]
}

// ParseFunc parses NZSL source text into a module tree. The text parser is
// a front-end collaborator; the filesystem resolver uses it for .nzsl
// files when one is installed.
type ParseFunc func(source []byte, filePath string) (*ast.Module, error)

// FilesystemModuleResolver resolves modules from .nzsl and .nzslb files on
// disk. Compiled modules are deserialized directly; source modules require
// a ParseFunc. Entries are cached by module name until invalidated. Safe
// for concurrent use.
type FilesystemModuleResolver struct {
	// Parse handles .nzsl source files; without it only .nzslb files can
	// be registered.
	Parse ParseFunc

	mu           sync.RWMutex
	modules      map[string]*ast.Module
	moduleByPath map[string]string

	log commonlog.Logger
}

// NewFilesystemModuleResolver returns an empty filesystem resolver.
func NewFilesystemModuleResolver() *FilesystemModuleResolver {
	return &FilesystemModuleResolver{
		modules:      make(map[string]*ast.Module),
		moduleByPath: make(map[string]string),
		log:          commonlog.GetLogger("nzsl.resolver"),
	}
}

// Resolve returns the module registered under moduleName, or nil.
func (r *FilesystemModuleResolver) Resolve(moduleName string) *ast.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modules[moduleName]
}

// RegisterModule installs an already parsed module under its metadata
// name.
func (r *FilesystemModuleResolver) RegisterModule(module *ast.Module) error {
	if module.Metadata == nil || module.Metadata.ModuleName == "" {
		return errors.New("module has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[module.Metadata.ModuleName] = module
	r.log.Debugf("registered module %s", module.Metadata.ModuleName)
	return nil
}

// RegisterFile loads one module file (.nzsl or .nzslb) and registers it.
func (r *FilesystemModuleResolver) RegisterFile(path string) error {
	module, err := r.loadFile(path)
	if err != nil {
		return err
	}
	if module.Metadata == nil || module.Metadata.ModuleName == "" {
		return errors.Errorf("%s: module has no name", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	name := module.Metadata.ModuleName
	r.modules[name] = module
	r.moduleByPath[path] = name
	r.log.Infof("registered module %s from %s", name, path)
	return nil
}

// RegisterDirectory walks a directory tree, registering every module file
// found. Per-file failures are accumulated and do not stop the scan.
func (r *FilesystemModuleResolver) RegisterDirectory(dir string) error {
	var errs error
	walkErr := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		if entry.IsDir() || !hasModuleExtension(path) {
			return nil
		}
		if err := r.RegisterFile(path); err != nil {
			r.log.Errorf("skipping %s: %s", path, err)
			errs = multierr.Append(errs, err)
		}
		return nil
	})
	return multierr.Append(errs, walkErr)
}

// Invalidate drops a cached module, typically after its file changed on
// disk.
func (r *FilesystemModuleResolver) Invalidate(moduleName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modules, moduleName)
	for path, name := range r.moduleByPath {
		if name == moduleName {
			delete(r.moduleByPath, path)
		}
	}
	r.log.Debugf("invalidated module %s", moduleName)
}

// InvalidatePath drops the module registered from a file path.
func (r *FilesystemModuleResolver) InvalidatePath(path string) {
	r.mu.RLock()
	name, ok := r.moduleByPath[path]
	r.mu.RUnlock()
	if ok {
		r.Invalidate(name)
	}
}

func (r *FilesystemModuleResolver) loadFile(path string) (*ast.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading module %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case CompiledModuleExtension:
		module, err := ast.DeserializeModule(data)
		if err != nil {
			return nil, errors.Wrapf(err, "deserializing module %s", path)
		}
		return module, nil

	case ModuleExtension:
		if r.Parse == nil {
			return nil, errors.Errorf("%s: no parser installed for source modules", path)
		}
		module, err := r.Parse(data, path)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing module %s", path)
		}
		return module, nil

	default:
		return nil, errors.Errorf("%s: unknown module extension", path)
	}
}

func hasModuleExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ModuleExtension, CompiledModuleExtension:
		return true
	default:
		return false
	}
}
