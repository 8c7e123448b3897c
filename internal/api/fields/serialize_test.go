package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OLEGSHA/kendb3/internal/model"
)

// revisionClass mixes scalar, foreign-key, related-set and tag fields.
func revisionClass(t *testing.T) (*model.Class, *Engine) {
	t.Helper()

	api := NewEngine()
	class := model.NewClass("Revision").
		Declare("name", &model.CharColumn{MaxLength: 64}, api.Mark("*", "basic")).
		Declare("revision_of", &model.ForeignKey{To: "Submission"}, api.Mark("*", "basic")).
		Declare("tags", &model.TagSet{}, api.Mark("*", "basic"))
	require.NoError(t, api.AddRelated("playtesters"))
	require.NoError(t, api.Assemble(class))
	return class, api
}

func TestSerialize(t *testing.T) {
	t.Run("keys are the group fields plus id", func(t *testing.T) {
		class, api := revisionClass(t)

		inst := class.New()
		inst.SetPK(123)
		require.NoError(t, inst.Set("name", "Skyblock"))
		require.NoError(t, inst.Set("revision_of_id", int64(7)))
		inst.SetTags("tags", []string{"parkour", "redstone"})
		inst.SetRelatedIDs("playtesters", []int64{1, 2})

		payload, err := api.Serialize(inst, "*")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"id":             int64(123),
			"name":           "Skyblock",
			"revision_of_id": int64(7),
			"tags":           []string{"parkour", "redstone"},
			"playtesters":    []int64{1, 2},
		}, payload)
	})

	t.Run("group selects a subset", func(t *testing.T) {
		class, api := revisionClass(t)

		inst := class.New()
		inst.SetPK(5)
		payload, err := api.Serialize(inst, "basic")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"id", "name", "revision_of_id", "tags"}, mapKeys(payload))
	})

	t.Run("unknown group is a lookup error, not a config error", func(t *testing.T) {
		class, api := revisionClass(t)

		_, err := api.Serialize(class.New(), "nonexistent")
		var unknown *UnknownGroupError
		require.ErrorAs(t, err, &unknown)
		assert.False(t, IsConfigError(err))
	})

	t.Run("foreign key serializes the raw identifier", func(t *testing.T) {
		class, api := revisionClass(t)

		inst := class.New()
		require.NoError(t, inst.Set("revision_of_id", 42))
		payload, err := api.Serialize(inst, "*")
		require.NoError(t, err)
		assert.Equal(t, int64(42), payload["revision_of_id"])
	})
}

func TestDeserialize(t *testing.T) {
	t.Run("round-trips scalars and relation identifiers", func(t *testing.T) {
		class, api := revisionClass(t)

		original := class.New()
		original.SetPK(11)
		require.NoError(t, original.Set("name", "Original"))
		require.NoError(t, original.Set("revision_of_id", int64(3)))
		original.SetTags("tags", []string{"one"})
		original.SetRelatedIDs("playtesters", []int64{9, 8})

		payload, err := api.Serialize(original, "*")
		require.NoError(t, err)

		restored, err := api.Deserialize(payload, "*")
		require.NoError(t, err)

		assert.Equal(t, int64(11), restored.PK())
		name, _ := restored.Get("name")
		assert.Equal(t, "Original", name)
		fk, _ := restored.Get("revision_of_id")
		assert.Equal(t, int64(3), fk)
		assert.Equal(t, []int64{9, 8}, restored.RelatedIDs("playtesters"))
		assert.Equal(t, []string{"one"}, restored.Tags("tags"))
	})

	t.Run("ignores unknown keys and keeps defaults", func(t *testing.T) {
		class, api := revisionClass(t)
		_ = class

		inst, err := api.Deserialize(map[string]any{"id": 7, "bogus": 1}, "*")
		require.NoError(t, err)

		assert.Equal(t, int64(7), inst.PK())
		name, _ := inst.Get("name")
		assert.Equal(t, "", name)
	})

	t.Run("missing id leaves the instance unsaved and keyless", func(t *testing.T) {
		_, api := revisionClass(t)

		inst, err := api.Deserialize(map[string]any{"name": "anon"}, "*")
		require.NoError(t, err)
		assert.False(t, inst.HasPK())
	})

	t.Run("json numbers coerce to identifiers", func(t *testing.T) {
		_, api := revisionClass(t)

		inst, err := api.Deserialize(map[string]any{
			"id":             float64(2),
			"revision_of_id": float64(15),
			"playtesters":    []any{float64(1), float64(4)},
		}, "*")
		require.NoError(t, err)
		assert.Equal(t, int64(2), inst.PK())
		fk, _ := inst.Get("revision_of_id")
		assert.Equal(t, int64(15), fk)
		assert.Equal(t, []int64{1, 4}, inst.RelatedIDs("playtesters"))
	})

	t.Run("related membership is replaced, not merged", func(t *testing.T) {
		_, api := revisionClass(t)

		inst, err := api.Deserialize(map[string]any{"playtesters": []any{float64(5)}}, "*")
		require.NoError(t, err)
		require.Equal(t, []int64{5}, inst.RelatedIDs("playtesters"))

		fieldList, err := api.Fields("*")
		require.NoError(t, err)
		for _, f := range fieldList {
			if f.Name == "playtesters" {
				require.NoError(t, f.Set(inst, f.Name, []int64{6, 7}))
			}
		}
		assert.Equal(t, []int64{6, 7}, inst.RelatedIDs("playtesters"))
	})

	t.Run("bad identifier values are data errors", func(t *testing.T) {
		_, api := revisionClass(t)

		_, err := api.Deserialize(map[string]any{"revision_of_id": "seven"}, "*")
		require.Error(t, err)
		assert.False(t, IsConfigError(err))
	})
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
