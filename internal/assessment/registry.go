// internal/assessment/registry.go
package assessment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RunFunc executes one assessment model over a decoded input. Implementations
// convert model-level failures into error-shaped outputs; a returned error
// means the request itself cannot be served.
type RunFunc func(ctx context.Context, input Input) (Output, error)

// Definition describes one assessment in the catalog: its identity, how to
// decode its input, how to run it, and how to reconstruct its output from a
// cached payload.
type Definition struct {
	// Name identifies the assessment and keys its cache entries, e.g.
	// "alzheimer_diagnosis_basic".
	Name string

	// Type is the persisted assessment_type, e.g. "diagnosis_basic".
	Type string

	// Version is the persisted algorithm_version.
	Version string

	// Route is the URL path the endpoint factory mounts, e.g.
	// "/alzheimer/diagnosis/basic".
	Route string

	// InputSchema optionally declares a JSON schema validated before
	// decoding. Nil skips schema validation.
	InputSchema map[string]interface{}

	// NewInput returns an empty input for request decoding.
	NewInput func() Input

	// NewOutput returns an empty output for cache-hit decoding.
	NewOutput func() Output

	// Run executes the model.
	Run RunFunc

	// Cacheable enables result memoization. Deterministic models are
	// cacheable; anything consulting external state is not.
	Cacheable bool
}

// Specialty derives the clinical specialty from the assessment name, the
// segment before the first underscore.
func (d *Definition) Specialty() string {
	if i := strings.Index(d.Name, "_"); i > 0 {
		return d.Name[:i]
	}
	return d.Name
}

func (d *Definition) validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("definition has no name")
	case d.Type == "":
		return fmt.Errorf("definition %q has no type", d.Name)
	case d.Version == "":
		return fmt.Errorf("definition %q has no version", d.Name)
	case d.Route == "":
		return fmt.Errorf("definition %q has no route", d.Name)
	case d.NewInput == nil:
		return fmt.Errorf("definition %q has no input constructor", d.Name)
	case d.NewOutput == nil:
		return fmt.Errorf("definition %q has no output constructor", d.Name)
	case d.Run == nil:
		return fmt.Errorf("definition %q has no run function", d.Name)
	}
	return nil
}

// Registry is the catalog of registered assessment definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition to the catalog. Duplicate names are rejected.
func (r *Registry) Register(def *Definition) error {
	if err := def.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("assessment %q is already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Get looks up a definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// List returns every registered definition, sorted by name.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
