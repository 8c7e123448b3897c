package fields

import (
	"fmt"

	"github.com/OLEGSHA/kendb3/internal/model"
)

// Getter reads one field value from a borrowed instance.
type Getter func(inst *model.Instance, name string) (any, error)

// Setter writes one field value on a borrowed instance.
type Setter func(inst *model.Instance, name string, value any) error

// attrGet and attrSet are the default accessor pair: plain attribute
// access on the instance.
func attrGet(inst *model.Instance, name string) (any, error) {
	return inst.Get(name)
}

func attrSet(inst *model.Instance, name string, value any) error {
	return inst.Set(name, value)
}

// relatedGet and relatedSet access to-many relation managers. The
// field serializes as the list of related primary keys; assignment
// replaces the membership.
func relatedGet(inst *model.Instance, name string) (any, error) {
	return inst.RelatedIDs(name), nil
}

func relatedSet(inst *model.Instance, name string, value any) error {
	ids, err := model.CoerceIntList(value)
	if err != nil {
		return err
	}
	inst.SetRelatedIDs(name, ids)
	return nil
}

// tagsGet and tagsSet access tag-collection managers. The field
// serializes as the list of tag names; assignment replaces the set.
func tagsGet(inst *model.Instance, name string) (any, error) {
	return inst.Tags(name), nil
}

func tagsSet(inst *model.Instance, name string, value any) error {
	normalized, err := (&model.TagSet{}).Normalize(value)
	if err != nil {
		return err
	}
	tags, _ := normalized.([]string)
	inst.SetTags(name, tags)
	return nil
}

// propertyAccessors adapts a Property descriptor to the accessor pair
// shape. Assigning a read-only property is an error.
func propertyAccessors(prop *Property) (Getter, Setter) {
	get := func(inst *model.Instance, _ string) (any, error) {
		return prop.get(inst)
	}
	set := func(inst *model.Instance, name string, value any) error {
		if prop.set == nil {
			return fmt.Errorf("property %s of %s has no setter", name, inst.Class().Name())
		}
		return prop.set(inst, value)
	}
	return get, set
}
