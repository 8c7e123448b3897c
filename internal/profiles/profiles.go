// Package profiles declares the Profile model.
//
// All other code should reference profiles instead of raw user
// accounts unless in an authentication or authorization context.
package profiles

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
	"github.com/OLEGSHA/kendb3/internal/model"
)

// displayNamePattern is the shape display names have to match: groups
// of allowed non-whitespace characters separated by exactly one space.
// Length limits are enforced separately.
var displayNamePattern = regexp.MustCompile(
	`^(?:[A-Za-z0-9.@+_()\[\]{}&=#~-]+ ?)*[A-Za-z0-9.@+_()\[\]{}&=#~-]$`,
)

// NewProfileClass declares the Profile model.
//
// The display_name field is computed: it reads the preferred name and
// falls back to the account name, and writing it validates length and
// characters before storing the preferred name.
func NewProfileClass() (*model.Class, *fields.Engine) {
	engine := fields.NewEngine()

	class := model.NewClass("Profile").
		SetDoc("Profile model.\n\n" +
			"To be extended in future versions. All other code should " +
			"reference Profiles instead of Users unless in " +
			"authentication/authorization context.")

	class.Declare("user", &model.OneToOne{
		Help:     "Corresponding user account.",
		To:       "User",
		OnDelete: model.CascadeCascade,
	}, engine.Mark())

	// Mirrored account columns backing display_name. Not API fields.
	class.Declare("username", &model.CharColumn{MaxLength: 150})
	class.Declare("first_name", &model.CharColumn{MaxLength: 150, Blank: true})

	class.Declare("display_name",
		engine.Mark("basic", "*").
			Property(getDisplayName).
			Setter(setDisplayName))

	return class, engine
}

// Register declares and registers the Profile model.
func Register(registry *fields.Registry) error {
	class, engine := NewProfileClass()
	_, err := registry.Register(class, engine)
	return err
}

// getDisplayName returns the preferred name for the user.
func getDisplayName(inst *model.Instance) (any, error) {
	first, err := inst.Get("first_name")
	if err != nil {
		return nil, err
	}
	if s, ok := first.(string); ok && s != "" {
		return s, nil
	}
	return inst.Get("username")
}

func setDisplayName(inst *model.Instance, value any) error {
	if value == nil {
		return inst.Set("first_name", "")
	}

	name, ok := value.(string)
	if !ok {
		return &model.BadValueError{Value: value, Reason: "display name must be a string"}
	}

	switch n := utf8.RuneCountInString(name); {
	case n > 150:
		return &model.BadValueError{
			Value:  value,
			Reason: fmt.Sprintf("display name is too long (%d > 150)", n),
		}
	case n < 3:
		return &model.BadValueError{
			Value:  value,
			Reason: fmt.Sprintf("display name is too short (%d < 3)", n),
		}
	}
	if !displayNamePattern.MatchString(name) {
		return &model.BadValueError{
			Value:  value,
			Reason: "display name contains illegal characters",
		}
	}
	return inst.Set("first_name", name)
}
