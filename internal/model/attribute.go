// Package model defines the descriptor-based model layer: attribute
// kinds, class namespaces, borrowed instances and the object-store
// contract. Classes are declared once at startup and frozen; instances
// are owned by the storage layer and only borrowed by callers.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Kind classifies an attribute for accessor inference.
type Kind int

const (
	KindScalar Kind = iota
	KindForeignKey
	KindOneToOne
	KindRelatedSet
	KindTagSet
	KindVirtual
)

// String returns the string representation of the attribute kind
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindForeignKey:
		return "foreign_key"
	case KindOneToOne:
		return "one_to_one"
	case KindRelatedSet:
		return "related_set"
	case KindTagSet:
		return "tag_set"
	case KindVirtual:
		return "virtual"
	default:
		return "unknown"
	}
}

// CascadeAction represents the on-delete action of a relation
type CascadeAction int

const (
	CascadeRestrict CascadeAction = iota
	CascadeCascade
	CascadeSetNull
	CascadeProtect
)

// String returns the string representation of the cascade action
func (c CascadeAction) String() string {
	switch c {
	case CascadeRestrict:
		return "restrict"
	case CascadeCascade:
		return "cascade"
	case CascadeSetNull:
		return "set_null"
	case CascadeProtect:
		return "protect"
	default:
		return "unknown"
	}
}

// Attribute is a declared member of a class namespace.
//
// Attribute implementations must be used as pointers: request
// resolution matches attribute objects by identity, not by value.
type Attribute interface {
	// Kind reports the attribute kind used for accessor inference.
	Kind() Kind
	// Default returns the value a freshly created instance holds.
	Default() any
	// Normalize validates and coerces an incoming value.
	Normalize(v any) (any, error)
}

// Relation is an attribute that points at another class.
type Relation interface {
	Attribute
	// Target returns the type name of the related class.
	Target() string
}

// Choice is one allowed value of an integer column
type Choice struct {
	Value int64
	Label string
}

// IntColumn is an integer-valued column
type IntColumn struct {
	Help       string
	Choices    []Choice
	HasDefault bool
	DefaultVal int64
}

func (a *IntColumn) Kind() Kind { return KindScalar }

func (a *IntColumn) Default() any {
	if a.HasDefault {
		return a.DefaultVal
	}
	return nil
}

func (a *IntColumn) Normalize(v any) (any, error) {
	n, err := CoerceInt(v)
	if err != nil {
		return nil, err
	}
	if len(a.Choices) > 0 {
		for _, c := range a.Choices {
			if c.Value == n {
				return n, nil
			}
		}
		return nil, &BadValueError{Value: v, Reason: fmt.Sprintf("%d is not a valid choice", n)}
	}
	return n, nil
}

// BoolColumn is a boolean column
type BoolColumn struct {
	Help       string
	DefaultVal bool
}

func (a *BoolColumn) Kind() Kind    { return KindScalar }
func (a *BoolColumn) Default() any  { return a.DefaultVal }

func (a *BoolColumn) Normalize(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, &BadValueError{Value: v, Reason: "expected a boolean"}
	}
	return b, nil
}

// CharColumn is a length-limited text column
type CharColumn struct {
	Help      string
	MaxLength int
	Blank     bool
}

func (a *CharColumn) Kind() Kind   { return KindScalar }
func (a *CharColumn) Default() any { return "" }

func (a *CharColumn) Normalize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, &BadValueError{Value: v, Reason: "expected a string"}
	}
	if a.MaxLength > 0 && len(s) > a.MaxLength {
		return nil, &BadValueError{
			Value:  v,
			Reason: fmt.Sprintf("value is too long (%d > %d)", len(s), a.MaxLength),
		}
	}
	return s, nil
}

// TextColumn is an unbounded text column
type TextColumn struct {
	Help string
}

func (a *TextColumn) Kind() Kind   { return KindScalar }
func (a *TextColumn) Default() any { return "" }

func (a *TextColumn) Normalize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, &BadValueError{Value: v, Reason: "expected a string"}
	}
	return s, nil
}

// JSONColumn holds an arbitrary JSON-encodable value
type JSONColumn struct {
	Help string
}

func (a *JSONColumn) Kind() Kind               { return KindScalar }
func (a *JSONColumn) Default() any             { return nil }
func (a *JSONColumn) Normalize(v any) (any, error) { return v, nil }

// DateTimeColumn is a timestamp column
type DateTimeColumn struct {
	Help string
	// AutoNowAdd stamps the current time when the instance is first saved.
	AutoNowAdd bool
	// AutoNow stamps the current time on every save.
	AutoNow bool
}

func (a *DateTimeColumn) Kind() Kind   { return KindScalar }
func (a *DateTimeColumn) Default() any { return nil }

func (a *DateTimeColumn) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, &BadValueError{Value: v, Reason: "expected an RFC 3339 timestamp"}
		}
		return parsed.UTC(), nil
	case nil:
		return nil, nil
	default:
		return nil, &BadValueError{Value: v, Reason: "expected a timestamp"}
	}
}

// ForeignKey is a to-one relation stored as the target's primary key.
// The engine registers it under the <name>_id field name.
type ForeignKey struct {
	Help     string
	To       string
	OnDelete CascadeAction
}

func (a *ForeignKey) Kind() Kind     { return KindForeignKey }
func (a *ForeignKey) Default() any   { return nil }
func (a *ForeignKey) Target() string { return a.To }

func (a *ForeignKey) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return CoerceInt(v)
}

// OneToOne is a unique to-one relation, treated like a ForeignKey by
// the engine.
type OneToOne struct {
	Help     string
	To       string
	OnDelete CascadeAction
}

func (a *OneToOne) Kind() Kind     { return KindOneToOne }
func (a *OneToOne) Default() any   { return nil }
func (a *OneToOne) Target() string { return a.To }

func (a *OneToOne) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return CoerceInt(v)
}

// RelatedSet is a to-many relation manager. Its value is the set of
// related primary keys; assignment replaces the membership.
type RelatedSet struct {
	Help string
	To   string
}

func (a *RelatedSet) Kind() Kind     { return KindRelatedSet }
func (a *RelatedSet) Default() any   { return nil }
func (a *RelatedSet) Target() string { return a.To }

func (a *RelatedSet) Normalize(v any) (any, error) {
	return CoerceIntList(v)
}

// TagSet is a tag-collection manager. Its value is the list of tag
// names; assignment replaces the tag set.
type TagSet struct {
	Help string
}

func (a *TagSet) Kind() Kind   { return KindTagSet }
func (a *TagSet) Default() any { return nil }

func (a *TagSet) Normalize(v any) (any, error) {
	switch tags := v.(type) {
	case []string:
		return append([]string(nil), tags...), nil
	case []any:
		result := make([]string, 0, len(tags))
		for _, t := range tags {
			s, ok := t.(string)
			if !ok {
				return nil, &BadValueError{Value: t, Reason: "tags must be strings"}
			}
			result = append(result, s)
		}
		return result, nil
	case nil:
		return []string(nil), nil
	default:
		return nil, &BadValueError{Value: v, Reason: "expected a list of tag names"}
	}
}

// CoerceInt converts JSON-ish numeric values to int64.
func CoerceInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, &BadValueError{Value: v, Reason: "expected an integer"}
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, &BadValueError{Value: v, Reason: "expected an integer"}
		}
		return i, nil
	default:
		return 0, &BadValueError{Value: v, Reason: "expected an integer"}
	}
}

// CoerceIntList converts a JSON-ish list of numbers to []int64.
func CoerceIntList(v any) ([]int64, error) {
	switch list := v.(type) {
	case []int64:
		return append([]int64(nil), list...), nil
	case []any:
		result := make([]int64, 0, len(list))
		for _, item := range list {
			n, err := CoerceInt(item)
			if err != nil {
				return nil, err
			}
			result = append(result, n)
		}
		return result, nil
	case nil:
		return []int64(nil), nil
	default:
		return nil, &BadValueError{Value: v, Reason: "expected a list of identifiers"}
	}
}
