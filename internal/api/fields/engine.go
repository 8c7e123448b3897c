package fields

import (
	"fmt"
	"strings"

	"github.com/OLEGSHA/kendb3/internal/model"
	utilstrings "github.com/OLEGSHA/kendb3/internal/util/strings"
)

// Field is the resolved metadata of one API field: its serialized name
// and its accessor pair.
type Field struct {
	Name string
	Get  Getter
	Set  Setter
}

// Request is a deferred field registration. It stays mutable until
// assembly so that property rebinding can retarget the locator.
type Request struct {
	locator any
	groups  []string

	// Explicit accessors; both nil unless the registration carried them.
	get Getter
	set Setter
}

// Retarget points the request at a different locator object.
func (r *Request) Retarget(locator any) {
	r.locator = locator
}

// Groups returns the field groups this registration targets.
func (r *Request) Groups() []string {
	return append([]string(nil), r.groups...)
}

// Engine collects field registrations for one class and, once
// assembled, owns the frozen per-group field lists.
//
// The lifecycle is strictly two-phased: registrations are accepted
// only before Assemble, and reads are valid only after. Both phases
// are single-threaded by construction (class declaration happens at
// startup); the frozen state is safe for concurrent reads.
type Engine struct {
	requests  []*Request
	assembled bool

	class       *model.Class
	fieldGroups map[string][]Field
	groupOrder  []string
	allFields   []string
	apiName     string
}

// NewEngine creates an open engine with no registrations.
func NewEngine() *Engine {
	return &Engine{}
}

// Mark returns a Registrar bound to the given groups (default "*").
// As a side effect the registrar immediately files a request with
// itself as the locator, to be matched against class annotations at
// assembly time.
func (e *Engine) Mark(groups ...string) *Registrar {
	if len(groups) == 0 {
		groups = []string{"*"}
	}
	reg := &Registrar{engine: e, groups: groups}
	req, err := e.Request(reg, groups)
	if err != nil {
		// Marks appear in class-declaration expressions where an error
		// return has nowhere to go. A bad mark is a programming
		// mistake that must abort startup.
		panic(err)
	}
	reg.request = req
	return reg
}

// Request files a deferred field registration and returns its mutable
// handle.
//
// The locator identifies the attribute to register:
//   - a string is used as the field name directly;
//   - a *Registrar is matched by identity against class annotations;
//   - any other value is matched by identity against the class
//     namespace.
func (e *Engine) Request(locator any, groups []string) (*Request, error) {
	return e.RequestAccessors(locator, groups, nil, nil)
}

// RequestAccessors files a registration carrying an explicit accessor
// pair, bypassing accessor inference at assembly time.
func (e *Engine) RequestAccessors(locator any, groups []string, get Getter, set Setter) (*Request, error) {
	if e.assembled {
		return nil, &AssembledError{Locator: describeLocator(locator)}
	}
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	req := &Request{
		locator: locator,
		groups:  append([]string(nil), groups...),
		get:     get,
		set:     set,
	}
	e.requests = append(e.requests, req)
	return req, nil
}

// AddField registers a field by literal name. No groups means "*".
func (e *Engine) AddField(name string, groups ...string) error {
	if len(groups) == 0 {
		groups = []string{"*"}
	}
	_, err := e.Request(name, groups)
	return err
}

// AddFieldAs registers a field by literal name with an explicit
// accessor pair.
func (e *Engine) AddFieldAs(name string, groups []string, get Getter, set Setter) error {
	if len(groups) == 0 {
		groups = []string{"*"}
	}
	_, err := e.RequestAccessors(name, groups, get, set)
	return err
}

// AddRelated registers a to-many relation manager field: it serializes
// as the list of related primary keys and deserializes by replacing
// the membership.
func (e *Engine) AddRelated(name string, groups ...string) error {
	if len(groups) == 0 {
		groups = []string{"*"}
	}
	_, err := e.RequestAccessors(name, groups, relatedGet, relatedSet)
	return err
}

// Class returns the assembled class, or nil before assembly.
func (e *Engine) Class() *model.Class { return e.class }

// APIName returns the canonical wire name of the assembled class.
func (e *Engine) APIName() string { return e.apiName }

// Assembled reports whether Assemble has completed.
func (e *Engine) Assembled() bool { return e.assembled }

// Groups returns the field group names in registration order.
func (e *Engine) Groups() []string {
	return append([]string(nil), e.groupOrder...)
}

// HasGroup reports whether the group was declared.
func (e *Engine) HasGroup(group string) bool {
	_, ok := e.fieldGroups[group]
	return ok
}

// AllFields returns the union of field names across all groups, in
// first-registration order.
func (e *Engine) AllFields() []string {
	return append([]string(nil), e.allFields...)
}

// Fields returns the resolved field list of a group in registration
// order. Requesting an undeclared group is a lookup error.
func (e *Engine) Fields(group string) ([]Field, error) {
	fields, ok := e.fieldGroups[group]
	if !ok {
		return nil, &UnknownGroupError{Class: e.className(), Group: group}
	}
	return fields, nil
}

func (e *Engine) className() string {
	if e.class == nil {
		return "<unassembled>"
	}
	return e.class.Name()
}

func validateGroups(groups []string) error {
	if len(groups) == 0 {
		return &BadGroupError{Reason: "at least one group is required"}
	}
	for _, g := range groups {
		switch {
		case g == "":
			return &BadGroupError{Group: g, Reason: "group names must not be empty"}
		case strings.ContainsAny(g, ", \t\n"):
			return &BadGroupError{Group: g, Reason: "group names must not contain commas or whitespace"}
		}
	}
	return nil
}

func describeLocator(locator any) string {
	switch l := locator.(type) {
	case string:
		return fmt.Sprintf("field %q", l)
	case *Registrar:
		return l.String()
	case *Property:
		return l.String()
	default:
		return fmt.Sprintf("attribute object %T", locator)
	}
}

// apiNameOf derives the wire name of a class.
func apiNameOf(class *model.Class) string {
	return utilstrings.APIName(class.Name())
}
