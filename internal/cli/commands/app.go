package commands

import (
	"context"
	"fmt"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
	"github.com/OLEGSHA/kendb3/internal/cli/config"
	"github.com/OLEGSHA/kendb3/internal/profiles"
	"github.com/OLEGSHA/kendb3/internal/store/memory"
	"github.com/OLEGSHA/kendb3/internal/store/sqlite"
	"github.com/OLEGSHA/kendb3/internal/submissions"
)

// buildRegistry declares and assembles every model of the application.
func buildRegistry() (*fields.Registry, error) {
	registry := fields.NewRegistry()
	if err := profiles.Register(registry); err != nil {
		return nil, fmt.Errorf("registering profiles: %w", err)
	}
	if err := submissions.Register(registry); err != nil {
		return nil, fmt.Errorf("registering submissions: %w", err)
	}
	return registry, nil
}

// bindStores attaches a store to every registered model according to
// the database configuration. The returned cleanup releases the
// backing database.
func bindStores(ctx context.Context, registry *fields.Registry, cfg *config.DatabaseConfig) (func() error, error) {
	switch cfg.Driver {
	case "memory":
		for _, binding := range registry.All() {
			if err := registry.Bind(binding.Engine.APIName(), memory.New(binding.Class)); err != nil {
				return nil, err
			}
		}
		return func() error { return nil }, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		for _, binding := range registry.All() {
			store := sqlite.New(db, binding.Class)
			if err := store.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, err
			}
			if err := registry.Bind(binding.Engine.APIName(), store); err != nil {
				db.Close()
				return nil, err
			}
		}
		return db.Close, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
