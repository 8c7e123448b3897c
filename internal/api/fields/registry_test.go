package fields

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OLEGSHA/kendb3/internal/model"
	"github.com/OLEGSHA/kendb3/internal/store/memory"
)

func TestRegistry(t *testing.T) {
	newModel := func(name string) (*model.Class, *Engine) {
		api := NewEngine()
		class := model.NewClass(name).
			Declare("value", &model.IntColumn{}, api.Mark())
		return class, api
	}

	t.Run("register assembles and indexes by api name", func(t *testing.T) {
		reg := NewRegistry()
		class, api := newModel("MinecraftVersion")

		binding, err := reg.Register(class, api)
		require.NoError(t, err)
		assert.True(t, api.Assembled())

		got, ok := reg.Get("minecraft_version")
		require.True(t, ok)
		assert.Same(t, binding, got)

		byClass, ok := reg.GetClass("MinecraftVersion")
		require.True(t, ok)
		assert.Same(t, binding, byClass)
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		reg := NewRegistry()
		class1, api1 := newModel("Thing")
		class2, api2 := newModel("Thing")

		_, err := reg.Register(class1, api1)
		require.NoError(t, err)
		_, err = reg.Register(class2, api2)
		assert.Error(t, err)
	})

	t.Run("assembly errors propagate", func(t *testing.T) {
		reg := NewRegistry()
		api := NewEngine()
		x := api.Mark()
		class := model.NewClass("Broken").
			Declare("a", &model.IntColumn{}, x).
			Declare("b", &model.IntColumn{}, x)

		_, err := reg.Register(class, api)
		var ambiguous *AmbiguousMarkerError
		require.ErrorAs(t, err, &ambiguous)
	})

	t.Run("sorted order is by class name", func(t *testing.T) {
		reg := NewRegistry()
		for _, name := range []string{"Zebra", "Aardvark", "Mole"} {
			class, api := newModel(name)
			_, err := reg.Register(class, api)
			require.NoError(t, err)
		}

		var names []string
		for _, b := range reg.Sorted() {
			names = append(names, b.Class.Name())
		}
		assert.Equal(t, []string{"Aardvark", "Mole", "Zebra"}, names)
	})
}

func TestRegistryLastModified(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	api := NewEngine()
	class := model.NewClass("Entry").
		Declare("name", &model.CharColumn{MaxLength: 16}, api.Mark()).
		Declare("last_modified", &model.DateTimeColumn{AutoNow: true}).
		TrackLastModified()
	_, err := reg.Register(class, api)
	require.NoError(t, err)

	store := memory.New(class)
	require.NoError(t, reg.Bind("entry", store))

	// No instances: zero time.
	ts, err := reg.LastModified(ctx)
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	first := class.New()
	require.NoError(t, first.Set("last_modified", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	second := class.New()
	require.NoError(t, second.Set("last_modified", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	// Save stamps last_modified via AutoNow.
	for _, inst := range []*model.Instance{first, second} {
		require.NoError(t, store.Save(ctx, inst))
	}

	ts, err = reg.LastModified(ctx)
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}
