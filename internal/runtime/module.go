package runtime

import (
	prismerrors "github.com/prism-lang/prism/internal/errors"
	"github.com/prism-lang/prism/internal/token"
	"github.com/prism-lang/prism/internal/value"
)

// ModuleRegistry is an evaluator's table of evaluated modules, keyed
// by module name; each Evaluator owns its own registry. A module is registered once, after its body
// has finished evaluating, and resolved by name on every subsequent
// import.
type ModuleRegistry struct {
	modules map[string]*value.Module
}

func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]*value.Module)}
}

// Register adds a fully-evaluated module. It errors if a module of
// the same name was already registered, since Prism modules are
// singletons within one registry.
func (r *ModuleRegistry) Register(m *value.Module) error {
	if _, exists := r.modules[m.Name]; exists {
		return prismerrors.New(prismerrors.ModuleAlreadyExists, token.Position{}, "module already registered: %s", m.Name)
	}
	r.modules[m.Name] = m
	return nil
}

// Lookup returns the registered module by name, if any.
func (r *ModuleRegistry) Lookup(name string) (*value.Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// ResolveImport looks up a single exported name from a registered
// module and multiplies in the module's declared confidence exactly
// once, the operation backing `import { name } from "module"`.
func (r *ModuleRegistry) ResolveImport(moduleName, exportName string) (value.Value, error) {
	m, ok := r.Lookup(moduleName)
	if !ok {
		return value.Nil, prismerrors.New(prismerrors.ModuleNotFound, token.Position{}, "module not found: %s", moduleName)
	}
	v, ok := m.Exports.Get(exportName)
	if !ok {
		return value.Nil, prismerrors.New(prismerrors.ExportNotFound, token.Position{}, "export %q not found in module %s", exportName, moduleName)
	}
	return v.WithConfidence(v.Confidence * m.DeclaredConfidence), nil
}
