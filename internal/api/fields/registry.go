package fields

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/OLEGSHA/kendb3/internal/model"
)

// Binding ties an assembled class to its engine and its object store.
type Binding struct {
	Class  *model.Class
	Engine *Engine
	Store  model.Store
}

// Registry is the explicit collection of API models. It is owned by
// the top-level application assembly step and passed into each model's
// registration call; nothing populates it implicitly.
type Registry struct {
	mu           sync.RWMutex
	byAPIName    map[string]*Binding
	byClassName  map[string]*Binding
	order        []string
	lastModified []*Binding
}

// NewRegistry creates an empty model registry.
func NewRegistry() *Registry {
	return &Registry{
		byAPIName:   make(map[string]*Binding),
		byClassName: make(map[string]*Binding),
	}
}

// Register assembles the engine against the class and adds the binding
// to the registry. Classes declaring the last-modified capability are
// recorded for last-modification tracking.
func (r *Registry) Register(class *model.Class, engine *Engine) (*Binding, error) {
	if err := engine.Assemble(class); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	apiName := engine.APIName()
	if _, exists := r.byAPIName[apiName]; exists {
		return nil, fmt.Errorf("model %s is already registered", apiName)
	}

	binding := &Binding{Class: class, Engine: engine}
	r.byAPIName[apiName] = binding
	r.byClassName[class.Name()] = binding
	r.order = append(r.order, apiName)
	if class.TracksLastModified() {
		r.lastModified = append(r.lastModified, binding)
	}
	return binding, nil
}

// Bind attaches an object store to a registered model.
func (r *Registry) Bind(apiName string, store model.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	binding, ok := r.byAPIName[apiName]
	if !ok {
		return fmt.Errorf("model %s is not registered", apiName)
	}
	binding.Store = store
	return nil
}

// Get retrieves a binding by its API name.
func (r *Registry) Get(apiName string) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byAPIName[apiName]
	return b, ok
}

// GetClass retrieves a binding by class type name.
func (r *Registry) GetClass(className string) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byClassName[className]
	return b, ok
}

// All returns every binding in registration order.
func (r *Registry) All() []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Binding, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.byAPIName[name])
	}
	return result
}

// Sorted returns every binding sorted by class name. The schema
// exporter iterates in this order so its output is stable.
func (r *Registry) Sorted() []*Binding {
	result := r.All()
	sort.Slice(result, func(i, j int) bool {
		return result[i].Class.Name() < result[j].Class.Name()
	})
	return result
}

// Count returns the number of registered models.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAPIName)
}

// LastModified returns the newest last_modified timestamp across all
// models declaring the capability. The zero time is returned when no
// tracked instance exists.
func (r *Registry) LastModified(ctx context.Context) (time.Time, error) {
	r.mu.RLock()
	tracked := append([]*Binding(nil), r.lastModified...)
	r.mu.RUnlock()

	var newest time.Time
	for _, binding := range tracked {
		if binding.Store == nil {
			continue
		}
		instances, err := binding.Store.All(ctx)
		if err != nil {
			return time.Time{}, fmt.Errorf("last-modified scan of %s: %w", binding.Engine.APIName(), err)
		}
		for _, inst := range instances {
			value, err := inst.Get("last_modified")
			if err != nil {
				continue
			}
			if ts, ok := value.(time.Time); ok && ts.After(newest) {
				newest = ts
			}
		}
	}
	return newest, nil
}
