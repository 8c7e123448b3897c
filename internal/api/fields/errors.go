package fields

import (
	"fmt"
	"strings"
)

// Configuration errors indicate a programming mistake in model
// declarations. They surface during startup, before any request is
// served, and are meant to fail the process.
//
// Lookup errors are caused by caller input (an unknown field group)
// and are converted into 400-class responses at the HTTP boundary.

// ConfigError marks registration- and assembly-time failures.
type ConfigError interface {
	error
	configError()
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	_, ok := err.(ConfigError)
	return ok
}

// AssembledError reports a registration attempt after assembly.
type AssembledError struct {
	Locator string
}

func (e *AssembledError) Error() string {
	return fmt.Sprintf("cannot register after assembly: registration of %s rejected", e.Locator)
}

func (e *AssembledError) configError() {}

// BadGroupError reports an invalid field group name in a registration.
type BadGroupError struct {
	Group  string
	Reason string
}

func (e *BadGroupError) Error() string {
	return fmt.Sprintf("bad field group %q: %s", e.Group, e.Reason)
}

func (e *BadGroupError) configError() {}

// AmbiguousMarkerError reports a marker that matched several
// attributes where exactly one was required.
type AmbiguousMarkerError struct {
	Class   string
	Locator string
	Matches []string
}

func (e *AmbiguousMarkerError) Error() string {
	return fmt.Sprintf("%s reused on several attributes in %s: %s",
		e.Locator, e.Class, strings.Join(e.Matches, ", "))
}

func (e *AmbiguousMarkerError) configError() {}

// MarkerNotFoundError reports an attribute object that was marked for
// the API but never declared in the class namespace.
type MarkerNotFoundError struct {
	Class   string
	Locator string
}

func (e *MarkerNotFoundError) Error() string {
	return fmt.Sprintf("attribute object %s, marked for the API, not found in %s",
		e.Locator, e.Class)
}

func (e *MarkerNotFoundError) configError() {}

// UnknownGroupError reports a serialize/deserialize call against a
// field group the class never declared. It is a lookup error, distinct
// from every configuration error.
type UnknownGroupError struct {
	Class string
	Group string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("no fields registered in group %q of %s", e.Group, e.Class)
}
