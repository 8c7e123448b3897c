package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get when no instance matches.
var ErrNotFound = errors.New("instance not found")

// ErrMultipleObjects is returned by Store.Get when several instances match.
var ErrMultipleObjects = errors.New("multiple instances match")

// BadValueError reports a value that an attribute refused to accept.
// It is a data error: the HTTP boundary converts it into a structured
// failure payload instead of crashing the request.
type BadValueError struct {
	Value  any
	Reason string
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf("bad value %v: %s", e.Value, e.Reason)
}

// UnknownAttributeError reports access to a field name the class does
// not declare.
type UnknownAttributeError struct {
	Class string
	Name  string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.Class, e.Name)
}
