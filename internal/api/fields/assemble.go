package fields

import (
	"github.com/OLEGSHA/kendb3/internal/model"
)

// Assemble resolves every pending registration against the finished
// class namespace and freezes the engine. It runs exactly once per
// class, at declaration time; afterwards the engine permanently
// rejects registrations.
func (e *Engine) Assemble(class *model.Class) error {
	if e.assembled {
		return &AssembledError{Locator: "class " + class.Name()}
	}
	requests := e.requests
	e.requests = nil
	e.assembled = true

	fieldGroups := make(map[string][]Field)
	var groupOrder []string
	var allFields []string
	seenField := make(map[string]bool)

	for _, req := range requests {
		name, found, err := resolveLocator(class, req)
		if err != nil {
			return err
		}
		if !found {
			// A mark that matched no annotation. This covers marks
			// created but never attached; not a coding error.
			continue
		}

		field := Field{Name: name, Get: req.get, Set: req.set}
		if field.Get == nil && field.Set == nil {
			field = inferAccessors(class, name)
		} else {
			if field.Get == nil {
				field.Get = attrGet
			}
			if field.Set == nil {
				field.Set = attrSet
			}
		}

		for _, group := range req.groups {
			if _, ok := fieldGroups[group]; !ok {
				groupOrder = append(groupOrder, group)
			}
			fieldGroups[group] = append(fieldGroups[group], field)
		}
		if !seenField[field.Name] {
			seenField[field.Name] = true
			allFields = append(allFields, field.Name)
		}
	}

	e.class = class
	e.fieldGroups = fieldGroups
	e.groupOrder = groupOrder
	e.allFields = allFields
	e.apiName = apiNameOf(class)
	return nil
}

// resolveLocator turns a request's locator into a concrete attribute
// name. found is false when a Registrar matched no annotation, which
// is tolerated as a silent skip.
func resolveLocator(class *model.Class, req *Request) (name string, found bool, err error) {
	switch locator := req.locator.(type) {
	case string:
		return locator, true, nil

	case *Registrar:
		var matches []string
		for _, n := range class.AnnotatedNames() {
			if ann, _ := class.Annotation(n); ann == any(locator) {
				matches = append(matches, n)
			}
		}
		switch len(matches) {
		case 0:
			return "", false, nil
		case 1:
			return matches[0], true, nil
		default:
			return "", false, &AmbiguousMarkerError{
				Class:   class.Name(),
				Locator: locator.String(),
				Matches: matches,
			}
		}

	default:
		// Attribute object, matched by identity in the namespace.
		var matches []string
		for _, n := range class.AttrNames() {
			if attr, _ := class.Attr(n); attr == locator {
				matches = append(matches, n)
			}
		}
		switch len(matches) {
		case 0:
			return "", false, &MarkerNotFoundError{
				Class:   class.Name(),
				Locator: describeLocator(locator),
			}
		case 1:
			return matches[0], true, nil
		default:
			return "", false, &AmbiguousMarkerError{
				Class:   class.Name(),
				Locator: describeLocator(locator),
				Matches: matches,
			}
		}
	}
}

// inferAccessors picks the accessor pair for a resolved attribute.
// Foreign keys register the raw key column under <name>_id; relation
// and tag managers get their list-valued pairs; anything else,
// including dynamic attributes absent from the namespace, uses plain
// attribute access.
func inferAccessors(class *model.Class, name string) Field {
	attr, declared := class.Attr(name)
	if !declared {
		// Probably a dynamic attribute.
		return Field{Name: name, Get: attrGet, Set: attrSet}
	}

	switch attr.Kind() {
	case model.KindForeignKey, model.KindOneToOne:
		return Field{Name: name + "_id", Get: attrGet, Set: attrSet}
	case model.KindRelatedSet:
		return Field{Name: name, Get: relatedGet, Set: relatedSet}
	case model.KindTagSet:
		return Field{Name: name, Get: tagsGet, Set: tagsSet}
	case model.KindVirtual:
		if prop, ok := attr.(*Property); ok {
			get, set := propertyAccessors(prop)
			return Field{Name: name, Get: get, Set: set}
		}
		return Field{Name: name, Get: attrGet, Set: attrSet}
	default:
		return Field{Name: name, Get: attrGet, Set: attrSet}
	}
}
