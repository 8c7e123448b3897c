// Package submissions declares submissions, submission revisions and
// Minecraft versions.
package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
	"github.com/OLEGSHA/kendb3/internal/model"
)

// Version families. Comparators are only meaningful within one family.
const (
	FamilyJE    int64 = 1
	FamilyBE    int64 = 2
	FamilyOther int64 = 3
)

// ErrDifferentFamilies is returned when two versions of different
// families are compared.
var ErrDifferentFamilies = errors.New("submissions: cannot compare versions of different families")

// ErrNoRevisions is returned by LatestRevision for a submission that
// has no revisions yet.
var ErrNoRevisions = errors.New("submissions: no revisions found")

// NewMinecraftVersionClass declares the MinecraftVersion model.
func NewMinecraftVersionClass() (*model.Class, *fields.Engine) {
	engine := fields.NewEngine()

	class := model.NewClass("MinecraftVersion").
		SetDoc("A Minecraft version.")

	class.Declare("comparator", &model.IntColumn{
		Help: "Version number that can be used to compare versions.",
	}, engine.Mark())

	class.Declare("family", &model.IntColumn{
		Help: "Family of versions comparable by <code>comparator</code>.",
		Choices: []model.Choice{
			{Value: FamilyJE, Label: "JE"},
			{Value: FamilyBE, Label: "BE"},
			{Value: FamilyOther, Label: "Other"},
		},
		HasDefault: true,
		DefaultVal: FamilyJE,
	}, engine.Mark())

	class.Declare("display_name", &model.CharColumn{
		Help: "Displayed user-friendly name like <code>JE 1.19.4</code>. " +
			"Plain text, HTML will be escaped.",
		MaxLength: 32,
	}, engine.Mark())

	class.Declare("is_common", &model.BoolColumn{
		Help: "True when this version is well-known and likely to be " +
			"filtered against.",
	}, engine.Mark())

	return class, engine
}

// NewSubmissionClass declares the Submission model.
//
// Most fields describing a submission live on its revisions; the
// submission itself only carries its visitor-facing identifier and the
// revision set.
func NewSubmissionClass() (*model.Class, *fields.Engine) {
	engine := fields.NewEngine()

	class := model.NewClass("Submission").
		SetDoc("Submission model.\n\n" +
			"Most fields describing the submission are part of a revision.").
		SetPrimaryKey("submission_id")

	class.Declare("revisions", &model.RelatedSet{
		To: "SubmissionRevision",
	})
	if err := engine.AddRelated("revisions"); err != nil {
		panic(err)
	}

	return class, engine
}

// NewSubmissionRevisionClass declares the SubmissionRevision model.
func NewSubmissionRevisionClass() (*model.Class, *fields.Engine) {
	engine := fields.NewEngine()

	class := model.NewClass("SubmissionRevision").
		SetDoc("Revision of a submission.").
		TrackLastModified()

	class.Declare("revision_of", &model.ForeignKey{
		Help:     "Submission this object is a revision of.",
		To:       "Submission",
		OnDelete: model.CascadeCascade,
	}, engine.Mark("*", "basic"))

	class.Declare("name", &model.CharColumn{
		Help: "Display name for the submission. Blank for untitled. " +
			"Plain text, HTML will be escaped.",
		MaxLength: 256,
		Blank:     true,
	}, engine.Mark("*", "basic"))

	class.Declare("revision_string", &model.CharColumn{
		Help: "Version string, e.g. <code>1.0.3</code>. " +
			"Plain text, HTML will be escaped.",
		MaxLength: 16,
	}, engine.Mark("*", "basic"))

	class.Declare("submitted_by", &model.ForeignKey{
		Help:     "User that submitted this revision.",
		To:       "Profile",
		OnDelete: model.CascadeProtect,
	}, engine.Mark())

	class.Declare("submitted_at", &model.DateTimeColumn{
		Help: "Timestamp of the submission message.",
	}, engine.Mark())

	class.Declare("added_at", &model.DateTimeColumn{
		Help:       "First time the revision was added to the database.",
		AutoNowAdd: true,
	}, engine.Mark())

	class.Declare("minecraft_version_max", &model.ForeignKey{
		Help: "Newest Minecraft version supported. " +
			"Must be comparable with, and greater than or equal to " +
			"<code>minecraft_version_min</code>.",
		To:       "MinecraftVersion",
		OnDelete: model.CascadeProtect,
	}, engine.Mark("*", "basic"))

	class.Declare("minecraft_version_min", &model.ForeignKey{
		Help: "Oldest Minecraft version supported. " +
			"Must be comparable with, and less than or equal to " +
			"<code>minecraft_version_max</code>.",
		To:       "MinecraftVersion",
		OnDelete: model.CascadeProtect,
	}, engine.Mark("*", "basic"))

	class.Declare("tags", &model.TagSet{
		Help: "Freeform categorization tags.",
	}, engine.Mark("*", "basic"))

	class.Declare("download_url", &model.CharColumn{
		Help: "Download URL starting with <code>http[s]://</code> or " +
			"a human-readable explanation. " +
			"HTML will be retained for non-URL values.",
		MaxLength: 256,
	}, engine.Mark())

	class.Declare("intended_solution_url", &model.CharColumn{
		Help: "Video URL of the intended solution starting with " +
			"<code>http[s]://</code> or a human-readable explanation. " +
			"Blank if none available. " +
			"HTML will be retained for non-URL values.",
		MaxLength: 256,
		Blank:     true,
	}, engine.Mark())

	class.Declare("rules", &model.JSONColumn{
		Help: "Rules, permissions and other important remarks players " +
			"should read before playing.",
	}, engine.Mark())

	class.Declare("author_notes", &model.TextColumn{
		Help: "Less important notes interested players may want to read. " +
			"Unsanitized HTML-disabled Markdown.",
	}, engine.Mark())

	class.Declare("changelog", &model.TextColumn{
		Help: "Summary of changes in this revision. " +
			"Unsanitized HTML-disabled Markdown.",
	}, engine.Mark())

	class.Declare("editors_comment", &model.TextColumn{
		Help: "Database editors' comments on the submission. " +
			"Unsanitized HTML-disabled Markdown.",
	}, engine.Mark())

	class.Declare("last_modified", &model.DateTimeColumn{
		Help:    "Last time this revision changed in the database.",
		AutoNow: true,
	}, engine.Mark())

	return class, engine
}

// Register declares and registers all models of this package.
func Register(registry *fields.Registry) error {
	for _, declare := range []func() (*model.Class, *fields.Engine){
		NewMinecraftVersionClass,
		NewSubmissionClass,
		NewSubmissionRevisionClass,
	} {
		class, engine := declare()
		if _, err := registry.Register(class, engine); err != nil {
			return err
		}
	}
	return nil
}

// CanCompare reports whether two version instances belong to the same
// family, which makes Less and Equal meaningful.
func CanCompare(a, b *model.Instance) bool {
	fa, errA := versionFamily(a)
	fb, errB := versionFamily(b)
	return errA == nil && errB == nil && fa == fb
}

// Less reports whether version a precedes version b.
func Less(a, b *model.Instance) (bool, error) {
	ca, cb, err := comparators(a, b)
	if err != nil {
		return false, err
	}
	return ca < cb, nil
}

// Equal reports whether two versions share a comparator value.
func Equal(a, b *model.Instance) (bool, error) {
	ca, cb, err := comparators(a, b)
	if err != nil {
		return false, err
	}
	return ca == cb, nil
}

func comparators(a, b *model.Instance) (int64, int64, error) {
	fa, err := versionFamily(a)
	if err != nil {
		return 0, 0, err
	}
	fb, err := versionFamily(b)
	if err != nil {
		return 0, 0, err
	}
	if fa != fb {
		va, _ := a.Get("display_name")
		vb, _ := b.Get("display_name")
		return 0, 0, fmt.Errorf("%w: %v and %v", ErrDifferentFamilies, va, vb)
	}

	ca, err := versionInt(a, "comparator")
	if err != nil {
		return 0, 0, err
	}
	cb, err := versionInt(b, "comparator")
	if err != nil {
		return 0, 0, err
	}
	return ca, cb, nil
}

func versionFamily(inst *model.Instance) (int64, error) {
	return versionInt(inst, "family")
}

func versionInt(inst *model.Instance, name string) (int64, error) {
	v, err := inst.Get(name)
	if err != nil {
		return 0, err
	}
	n, err := model.CoerceInt(v)
	if err != nil {
		return 0, fmt.Errorf("submissions: %s: %w", name, err)
	}
	return n, nil
}

// LatestRevision fetches the newest revision of a submission by
// submission timestamp. Submissions without revisions yield
// ErrNoRevisions.
func LatestRevision(ctx context.Context, revisions model.Store, sub *model.Instance) (*model.Instance, error) {
	ids := sub.RelatedIDs("revisions")
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w for submission #%d", ErrNoRevisions, sub.PK())
	}

	candidates, err := revisions.Filter(ctx, map[string]any{"pk": ids})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w for submission #%d", ErrNoRevisions, sub.PK())
	}

	latest := candidates[0]
	latestAt := submittedAt(latest)
	for _, rev := range candidates[1:] {
		if at := submittedAt(rev); at.After(latestAt) {
			latest = rev
			latestAt = at
		}
	}
	return latest, nil
}

func submittedAt(rev *model.Instance) time.Time {
	v, err := rev.Get("submitted_at")
	if err != nil {
		return time.Time{}
	}
	at, ok := v.(time.Time)
	if !ok {
		return time.Time{}
	}
	return at
}
