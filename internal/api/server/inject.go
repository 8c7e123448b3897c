package server

import (
	"context"
	"fmt"
	"time"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
	"github.com/OLEGSHA/kendb3/internal/model"
)

// Packet is one injected batch of serialized instances, embedded into
// a server-rendered page so the frontend data manager starts warm.
type Packet struct {
	Model  string         `json:"model"`
	Fields string         `json:"fields"`
	Packet map[string]any `json:"packet"`
}

// PageContext accumulates injection packets for one rendered page.
type PageContext struct {
	Injected []Packet `json:"injected_packets,omitempty"`
}

// Inject appends a packet with the given instances to the page
// context. Nil instances are skipped; an empty batch is a no-op. All
// instances must belong to the same registered model.
func Inject(ctx context.Context, registry *fields.Registry, page *PageContext, instances []*model.Instance, group string, dump bool) error {
	kept := instances[:0:0]
	for _, inst := range instances {
		if inst != nil {
			kept = append(kept, inst)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	class := kept[0].Class()
	for _, inst := range kept[1:] {
		if inst.Class() != class {
			return fmt.Errorf("injection mixes %s and %s instances",
				class.Name(), inst.Class().Name())
		}
	}

	binding, ok := registry.GetClass(class.Name())
	if !ok {
		return fmt.Errorf("model %s is not registered", class.Name())
	}

	serialized := make([]map[string]any, 0, len(kept))
	for _, inst := range kept {
		payload, err := binding.Engine.Serialize(inst, group)
		if err != nil {
			return err
		}
		serialized = append(serialized, payload)
	}

	lastModified, err := registry.LastModified(ctx)
	if err != nil {
		return err
	}

	page.Injected = append(page.Injected, Packet{
		Model:  class.Name(),
		Fields: group,
		Packet: map[string]any{
			"instances":     serialized,
			"last_modified": lastModified.UTC().Format(time.RFC3339),
			"dump":          dump,
		},
	})
	return nil
}
