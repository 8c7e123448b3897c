package model

import "context"

// Store is the object-store contract for one class. The relational
// engine behind it is out of scope here; the API layer only relies on
// filtering, stable int64 primary keys and ordinary attribute access.
//
// Predicate maps support two keys: "pk" with an int64 or []int64 value
// (the latter meaning membership), and any field name with an exact
// value to match.
type Store interface {
	// All returns every instance, ordered by primary key.
	All(ctx context.Context) ([]*Instance, error)

	// Filter returns instances matching the predicate, ordered by
	// primary key.
	Filter(ctx context.Context, where map[string]any) ([]*Instance, error)

	// Get returns the single instance matching the predicate.
	// ErrNotFound and ErrMultipleObjects report the failure modes.
	Get(ctx context.Context, where map[string]any) (*Instance, error)

	// Save persists an instance, assigning a primary key when the
	// instance has none.
	Save(ctx context.Context, inst *Instance) error
}
