package fields

import (
	"fmt"

	"github.com/OLEGSHA/kendb3/internal/model"
)

// Serialize converts a borrowed instance into a plain key-value
// payload using the fields of one group. The payload always carries
// the primary key under "id". Getters run in registration order.
func (e *Engine) Serialize(inst *model.Instance, group string) (map[string]any, error) {
	fieldList, err := e.Fields(group)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any, len(fieldList)+1)
	for _, field := range fieldList {
		value, err := field.Get(inst, field.Name)
		if err != nil {
			return nil, fmt.Errorf("serializing %s.%s: %w", e.className(), field.Name, err)
		}
		result[field.Name] = value
	}
	result["id"] = inst.PK()
	return result, nil
}

// Deserialize creates a new, unsaved instance from a payload.
//
// When the payload carries "id" it is assigned as the primary key.
// Setters run in registration order, only for fields present in the
// payload; payload keys with no corresponding field and fields absent
// from the payload are silently ignored - partial updates are
// intentional. The caller is responsible for persisting the instance.
func (e *Engine) Deserialize(payload map[string]any, group string) (*model.Instance, error) {
	fieldList, err := e.Fields(group)
	if err != nil {
		return nil, err
	}

	inst := e.class.New()
	if id, ok := payload["id"]; ok {
		pk, err := model.CoerceInt(id)
		if err != nil {
			return nil, err
		}
		inst.SetPK(pk)
	}

	for _, field := range fieldList {
		value, ok := payload[field.Name]
		if !ok {
			continue
		}
		if err := field.Set(inst, field.Name, value); err != nil {
			return nil, fmt.Errorf("deserializing %s.%s: %w", e.className(), field.Name, err)
		}
	}
	return inst, nil
}
