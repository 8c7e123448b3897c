package memory

import (
	"context"
	"testing"
	"time"

	"github.com/OLEGSHA/kendb3/internal/model"
)

func widgetClass() *model.Class {
	return model.NewClass("Widget").
		Declare("label", &model.CharColumn{MaxLength: 32}).
		Declare("count", &model.IntColumn{}).
		Declare("added_at", &model.DateTimeColumn{AutoNowAdd: true})
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save assigns primary keys in order", func(t *testing.T) {
		s := New(widgetClass())

		for i := 0; i < 3; i++ {
			inst := s.Class().New()
			if err := s.Save(ctx, inst); err != nil {
				t.Fatalf("save: %v", err)
			}
		}

		all, err := s.All(ctx)
		if err != nil {
			t.Fatalf("all: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 instances, got %d", len(all))
		}
		for i, inst := range all {
			if inst.PK() != int64(i+1) {
				t.Errorf("instance %d: expected pk %d, got %d", i, i+1, inst.PK())
			}
		}
	})

	t.Run("filter by pk membership", func(t *testing.T) {
		s := New(widgetClass())
		for i := 0; i < 5; i++ {
			s.Save(ctx, s.Class().New())
		}

		found, err := s.Filter(ctx, map[string]any{"pk": []int64{2, 4}})
		if err != nil {
			t.Fatalf("filter: %v", err)
		}
		if len(found) != 2 || found[0].PK() != 2 || found[1].PK() != 4 {
			t.Errorf("unexpected result: %v", found)
		}
	})

	t.Run("filter by field value", func(t *testing.T) {
		s := New(widgetClass())
		a := s.Class().New()
		a.Set("label", "keep")
		b := s.Class().New()
		b.Set("label", "drop")
		s.Save(ctx, a)
		s.Save(ctx, b)

		found, err := s.Filter(ctx, map[string]any{"label": "keep"})
		if err != nil {
			t.Fatalf("filter: %v", err)
		}
		if len(found) != 1 {
			t.Fatalf("expected 1 instance, got %d", len(found))
		}
	})

	t.Run("get failure modes", func(t *testing.T) {
		s := New(widgetClass())
		for i := 0; i < 2; i++ {
			inst := s.Class().New()
			inst.Set("label", "dup")
			s.Save(ctx, inst)
		}

		if _, err := s.Get(ctx, map[string]any{"pk": int64(99)}); err != model.ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := s.Get(ctx, map[string]any{"label": "dup"}); err != model.ErrMultipleObjects {
			t.Errorf("expected ErrMultipleObjects, got %v", err)
		}
	})

	t.Run("stored state is isolated from borrowed instances", func(t *testing.T) {
		s := New(widgetClass())
		inst := s.Class().New()
		inst.Set("label", "original")
		s.Save(ctx, inst)

		borrowed, err := s.Get(ctx, map[string]any{"pk": inst.PK()})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		borrowed.Set("label", "mutated")

		again, _ := s.Get(ctx, map[string]any{"pk": inst.PK()})
		if v, _ := again.Get("label"); v != "original" {
			t.Errorf("borrowed mutation leaked into store: %v", v)
		}
	})

	t.Run("auto-now-add stamps only the first save", func(t *testing.T) {
		s := New(widgetClass())
		inst := s.Class().New()
		s.Save(ctx, inst)

		saved, _ := s.Get(ctx, map[string]any{"pk": inst.PK()})
		first, _ := saved.Get("added_at")
		stamp, ok := first.(time.Time)
		if !ok || stamp.IsZero() {
			t.Fatalf("added_at not stamped: %v", first)
		}

		time.Sleep(2 * time.Millisecond)
		s.Save(ctx, saved)
		again, _ := s.Get(ctx, map[string]any{"pk": inst.PK()})
		second, _ := again.Get("added_at")
		if !second.(time.Time).Equal(stamp) {
			t.Errorf("added_at restamped on update: %v != %v", second, stamp)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := New(widgetClass())
		inst := s.Class().New()
		s.Save(ctx, inst)

		if err := s.Delete(ctx, inst.PK()); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.Delete(ctx, inst.PK()); err != model.ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if s.Count() != 0 {
			t.Errorf("expected empty store, got %d", s.Count())
		}
	})
}
