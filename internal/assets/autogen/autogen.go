// Package autogen sequences one-shot asset generators.
//
// Generators produce build inputs, such as frontend source files,
// before the asset pipeline runs. They execute sequentially in
// registration order, exactly once per process. When asset generation
// is disabled the registered generators are simply never run.
package autogen

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Generator produces one derived asset.
type Generator func(ctx context.Context) error

// Registry accumulates generators until they are run.
type Registry struct {
	mu         sync.Mutex
	generators []entry
	closed     bool
}

type entry struct {
	name string
	gen  Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named generator. Registration fails once the
// registry has run or been cancelled; a late registration is a setup
// bug, not a condition to tolerate silently.
func (r *Registry) Register(name string, gen Generator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("autogen: registration of %q is no longer possible", name)
	}
	r.generators = append(r.generators, entry{name: name, gen: gen})
	return nil
}

// Run executes all registered generators in registration order and
// closes the registry. The first failure aborts the sequence.
func (r *Registry) Run(ctx context.Context, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	r.mu.Lock()
	generators := r.generators
	r.generators = nil
	r.closed = true
	r.mu.Unlock()

	for _, e := range generators {
		log.Info("running asset generator", zap.String("generator", e.name))
		if err := e.gen(ctx); err != nil {
			return fmt.Errorf("autogen: %s: %w", e.name, err)
		}
	}
	return nil
}

// CancelRegistrations closes the registry without running anything.
func (r *Registry) CancelRegistrations() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generators = nil
	r.closed = true
}
