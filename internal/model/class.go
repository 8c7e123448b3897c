package model

import (
	"fmt"
	"strings"
)

// Class is the descriptor of a model type: an ordered attribute
// namespace plus the annotations attached to attribute declarations.
//
// A Class is built once during startup and never mutated afterwards.
type Class struct {
	name string
	doc  string

	attrOrder []string
	attrs     map[string]Attribute

	annOrder    []string
	annotations map[string]any

	pkName             string
	tracksLastModified bool
}

// NewClass creates an empty class descriptor for the given type name.
func NewClass(name string) *Class {
	return &Class{
		name:        name,
		attrs:       make(map[string]Attribute),
		annotations: make(map[string]any),
		pkName:      "id",
	}
}

// SetDoc attaches documentation to the class. It is carried into the
// generated frontend declarations.
func (c *Class) SetDoc(doc string) *Class {
	c.doc = doc
	return c
}

// Declare adds an attribute to the class namespace. An optional
// annotation value may be attached; request resolution scans these
// annotation values by identity.
//
// Declaring the same name twice panics: the namespace is assembled in
// startup code and a duplicate is a programming mistake that must be
// fixed before deploy.
func (c *Class) Declare(name string, attr Attribute, annotation ...any) *Class {
	if _, exists := c.attrs[name]; exists {
		panic(fmt.Sprintf("model: attribute %q declared twice in %s", name, c.name))
	}
	c.attrOrder = append(c.attrOrder, name)
	c.attrs[name] = attr

	switch len(annotation) {
	case 0:
	case 1:
		c.annOrder = append(c.annOrder, name)
		c.annotations[name] = annotation[0]
	default:
		panic(fmt.Sprintf("model: attribute %q in %s carries %d annotations, at most one allowed",
			name, c.name, len(annotation)))
	}
	return c
}

// SetPrimaryKey names the attribute backing the primary key. The
// default is "id"; the value is informational, instances always expose
// the key through PK.
func (c *Class) SetPrimaryKey(name string) *Class {
	c.pkName = name
	return c
}

// TrackLastModified declares that instances of this class carry a
// last_modified timestamp that participates in the global
// last-modification tracking. This is an explicit capability, not an
// after-the-fact scan over columns.
func (c *Class) TrackLastModified() *Class {
	c.tracksLastModified = true
	return c
}

// Name returns the class type name.
func (c *Class) Name() string { return c.name }

// Doc returns the class documentation.
func (c *Class) Doc() string { return c.doc }

// PrimaryKey returns the declared primary key attribute name.
func (c *Class) PrimaryKey() string { return c.pkName }

// TracksLastModified reports the last-modified capability.
func (c *Class) TracksLastModified() bool { return c.tracksLastModified }

// AttrNames returns attribute names in declaration order.
func (c *Class) AttrNames() []string {
	return append([]string(nil), c.attrOrder...)
}

// Attr looks up a declared attribute by name.
func (c *Class) Attr(name string) (Attribute, bool) {
	a, ok := c.attrs[name]
	return a, ok
}

// AnnotatedNames returns the names of annotated attributes in
// declaration order.
func (c *Class) AnnotatedNames() []string {
	return append([]string(nil), c.annOrder...)
}

// Annotation returns the annotation value attached to an attribute.
func (c *Class) Annotation(name string) (any, bool) {
	v, ok := c.annotations[name]
	return v, ok
}

// FieldAttr resolves a serialized field name back to the attribute
// that owns it. Foreign keys are declared under x but serialized under
// x_id, so the _id suffix is stripped when the direct lookup misses.
func (c *Class) FieldAttr(field string) (Attribute, bool) {
	if a, ok := c.attrs[field]; ok {
		return a, ok
	}
	if base, found := strings.CutSuffix(field, "_id"); found {
		if a, ok := c.attrs[base]; ok {
			k := a.Kind()
			if k == KindForeignKey || k == KindOneToOne {
				return a, true
			}
		}
	}
	return nil, false
}
