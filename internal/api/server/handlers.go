package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
)

// DataManager serves model instances to the frontend data manager.
type DataManager struct {
	registry *fields.Registry
	log      *zap.Logger
}

// NewDataManager creates a handler over the given model registry.
func NewDataManager(registry *fields.Registry, log *zap.Logger) *DataManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &DataManager{registry: registry, log: log}
}

// Routes returns the router serving the data-manager endpoint.
func (d *DataManager) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{model_name}", d.ServeModel)
	return r
}

// ServeModel processes one data-manager request.
//
// Query parameters are restricted to exactly ids and fields: ids is
// "all" or a comma-separated list of integers, fields names a declared
// field group. Malformed client input produces a structured failure
// payload, never a crash.
func (d *DataManager) ServeModel(w http.ResponseWriter, r *http.Request) {
	modelName := chi.URLParam(r, "model_name")
	binding, ok := d.registry.Get(modelName)
	if !ok {
		Failure(w, "Unknown model", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	for key := range query {
		if key != "ids" && key != "fields" {
			Failure(w, "Invalid request: unsupported parameters", 0)
			return
		}
	}
	if !query.Has("ids") || !query.Has("fields") {
		Failure(w, "Invalid request: 'ids' and 'fields' are required", 0)
		return
	}

	ids, err := ParseIDs(query.Get("ids"))
	if err != nil {
		Failure(w, "Could not decode ids", 0)
		return
	}

	group := query.Get("fields")
	if !binding.Engine.HasGroup(group) {
		Failure(w, "Unknown field group requested", 0)
		return
	}

	payload, err := d.GetModels(r.Context(), ids, group, binding)
	if err != nil {
		d.log.Error("data manager query failed",
			zap.String("model", modelName),
			zap.String("fields", group),
			zap.Error(err))
		Failure(w, "Internal error", http.StatusInternalServerError)
		return
	}
	Success(w, payload)
}

// GetModels builds a frontend data-manager packet. A nil ids slice
// selects all instances and marks the packet as a dump.
func (d *DataManager) GetModels(ctx context.Context, ids []int64, group string, binding *fields.Binding) (map[string]any, error) {
	var (
		instances []map[string]any
		err       error
	)
	instances, err = serializeQuery(ctx, ids, group, binding)
	if err != nil {
		return nil, err
	}

	lastModified, err := d.registry.LastModified(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"instances":     instances,
		"last_modified": lastModified.UTC().Format(time.RFC3339),
		"dump":          ids == nil,
	}, nil
}

func serializeQuery(ctx context.Context, ids []int64, group string, binding *fields.Binding) ([]map[string]any, error) {
	var where map[string]any
	if ids != nil {
		where = map[string]any{"pk": ids}
	}

	found, err := binding.Store.Filter(ctx, where)
	if err != nil {
		return nil, err
	}

	result := make([]map[string]any, 0, len(found))
	for _, inst := range found {
		serialized, err := binding.Engine.Serialize(inst, group)
		if err != nil {
			return nil, err
		}
		result = append(result, serialized)
	}
	return result, nil
}

// ParseIDs parses the ids query parameter. "all" yields nil; anything
// else must be a comma-separated list of integers.
func ParseIDs(raw string) ([]int64, error) {
	if raw == "all" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
