package fields

import (
	"fmt"
	"strings"

	"github.com/OLEGSHA/kendb3/internal/model"
)

// Registrar marks attributes for later resolution. It is created by
// Engine.Mark and is usable in two ways: as an annotation value on a
// class attribute, or as a factory of tracked properties.
type Registrar struct {
	engine  *Engine
	groups  []string
	request *Request
}

// String identifies the registrar in error messages.
func (r *Registrar) String() string {
	quoted := make([]string, len(r.groups))
	for i, g := range r.groups {
		quoted[i] = fmt.Sprintf("%q", g)
	}
	return fmt.Sprintf("Mark(%s)", strings.Join(quoted, ", "))
}

// Attr marks an attribute object for registration and returns it, so
// the mark can wrap the attribute inside a Declare call. The attribute
// is located by identity in the class namespace at assembly time.
func (r *Registrar) Attr(attr model.Attribute) model.Attribute {
	if _, isProp := attr.(*Property); isProp {
		// Properties come with their own registration; marking one
		// again would register the field twice.
		panic(fmt.Sprintf("fields: use %s.Property, not %s.Attr on a property", r, r))
	}
	if _, err := r.engine.Request(attr, r.groups); err != nil {
		panic(err)
	}
	return attr
}

// PropGetter computes a property value from an instance.
type PropGetter func(inst *model.Instance) (any, error)

// PropSetter applies a property value to an instance.
type PropSetter func(inst *model.Instance, value any) error

// Property returns a tracked property descriptor marked as an API
// field. The descriptor is meant to be declared in the class namespace
// under the field's name; resolution finds it there by identity.
func (r *Registrar) Property(get PropGetter) *Property {
	if get == nil {
		panic(fmt.Sprintf("fields: %s.Property requires a getter", r))
	}

	prop := &Property{registrar: r, get: get}
	req, err := r.engine.Request(prop, r.groups)
	if err != nil {
		panic(err)
	}
	prop.request = req
	return prop
}

// Property is a data descriptor that behaves like a computed attribute
// and keeps its originating registration up to date.
//
// Each call to Getter or Setter produces a new descriptor, which would
// make the declared attribute hard to track; the descriptor retargets
// the registration to the newest instance automatically, so resolution
// always finds the descriptor that actually ended up in the class
// namespace.
type Property struct {
	registrar *Registrar
	request   *Request
	get       PropGetter
	set       PropSetter
}

// Getter returns a copy of the property with a replaced getter.
func (p *Property) Getter(get PropGetter) *Property {
	return p.rebind(get, p.set)
}

// Setter returns a copy of the property with a replaced setter.
func (p *Property) Setter(set PropSetter) *Property {
	return p.rebind(p.get, set)
}

func (p *Property) rebind(get PropGetter, set PropSetter) *Property {
	next := &Property{
		registrar: p.registrar,
		request:   p.request,
		get:       get,
		set:       set,
	}
	p.request.Retarget(next)
	return next
}

// String identifies the property in error messages.
func (p *Property) String() string {
	return fmt.Sprintf("%s.Property", p.registrar)
}

// Kind implements model.Attribute so properties can live in a class
// namespace alongside columns.
func (p *Property) Kind() model.Kind { return model.KindVirtual }

// Default implements model.Attribute.
func (p *Property) Default() any { return nil }

// Normalize implements model.Attribute.
func (p *Property) Normalize(v any) (any, error) { return v, nil }
