package annotations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toyz/contractscan/internal/models"
)

// AnnotationSchema describes a recognized annotation
type AnnotationSchema struct {
	Name        string                   // simple name without '@'
	Kind        AnnotationKind           // role during extraction
	HTTPMethod  string                   // verb implied by a mapping annotation
	Binding     models.BindingAnnotation // set for binding annotations
	Description string                   // human-readable description
}

// AnnotationRegistry defines the interface for looking up annotation schemas
type AnnotationRegistry interface {
	// Register adds a schema; names are unique
	Register(schema AnnotationSchema) error

	// Lookup retrieves the schema for a simple annotation name
	Lookup(name string) (AnnotationSchema, bool)

	// ListNames returns all registered names, sorted
	ListNames() []string

	// IsKind reports whether name is registered with the given kind
	IsKind(name string, kind AnnotationKind) bool
}

// registry is the concrete implementation of AnnotationRegistry
type registry struct {
	mu      sync.RWMutex
	schemas map[string]AnnotationSchema
}

// NewRegistry creates an empty annotation registry
func NewRegistry() AnnotationRegistry {
	return &registry{
		schemas: make(map[string]AnnotationSchema),
	}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global registry holding the built-in schemas
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, schema := range BuiltinSchemas {
			if err := defaultRegistry.Register(schema); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// Register adds a new schema to the registry
func (r *registry) Register(schema AnnotationSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schema.Name == "" {
		return fmt.Errorf("annotation schema requires a name")
	}
	if schema.Kind == UnknownKind {
		return fmt.Errorf("annotation %s has no kind", schema.Name)
	}
	if schema.Kind == BindingKind && schema.Binding == "" {
		return fmt.Errorf("binding annotation %s has no binding", schema.Name)
	}
	if _, exists := r.schemas[schema.Name]; exists {
		return fmt.Errorf("annotation %s is already registered", schema.Name)
	}

	r.schemas[schema.Name] = schema
	return nil
}

// Lookup retrieves the schema for an annotation name
func (r *registry) Lookup(name string) (AnnotationSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[name]
	return schema, ok
}

// ListNames returns all registered annotation names
func (r *registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKind reports whether name is registered with kind
func (r *registry) IsKind(name string, kind AnnotationKind) bool {
	schema, ok := r.Lookup(name)
	return ok && schema.Kind == kind
}
