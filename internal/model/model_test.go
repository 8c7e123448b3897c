package model

import (
	"testing"
	"time"
)

func TestClassNamespace(t *testing.T) {
	t.Run("declaration order is preserved", func(t *testing.T) {
		c := NewClass("Thing").
			Declare("b", &IntColumn{}).
			Declare("a", &CharColumn{MaxLength: 8}).
			Declare("c", &BoolColumn{})

		names := c.AttrNames()
		want := []string{"b", "a", "c"}
		if len(names) != len(want) {
			t.Fatalf("expected %d attributes, got %d", len(want), len(names))
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("attribute %d: expected %s, got %s", i, want[i], names[i])
			}
		}
	})

	t.Run("duplicate declaration panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for duplicate attribute")
			}
		}()
		NewClass("Thing").
			Declare("x", &IntColumn{}).
			Declare("x", &IntColumn{})
	})

	t.Run("field attr strips the id suffix for foreign keys only", func(t *testing.T) {
		c := NewClass("Rev").
			Declare("parent", &ForeignKey{To: "Sub"}).
			Declare("plain", &IntColumn{})

		if _, ok := c.FieldAttr("parent_id"); !ok {
			t.Error("parent_id should resolve to the foreign key")
		}
		if _, ok := c.FieldAttr("plain_id"); ok {
			t.Error("plain_id should not resolve")
		}
	})
}

func TestInstanceDefaults(t *testing.T) {
	c := NewClass("Widget").
		Declare("count", &IntColumn{HasDefault: true, DefaultVal: 3}).
		Declare("label", &CharColumn{MaxLength: 10}).
		Declare("active", &BoolColumn{DefaultVal: true}).
		Declare("owner", &ForeignKey{To: "Profile"}).
		Declare("parts", &RelatedSet{To: "Part"}).
		Declare("tags", &TagSet{})

	inst := c.New()

	if v, _ := inst.Get("count"); v != int64(3) {
		t.Errorf("count default: expected 3, got %v", v)
	}
	if v, _ := inst.Get("label"); v != "" {
		t.Errorf("label default: expected empty, got %v", v)
	}
	if v, _ := inst.Get("active"); v != true {
		t.Errorf("active default: expected true, got %v", v)
	}
	if v, _ := inst.Get("owner_id"); v != nil {
		t.Errorf("owner_id default: expected nil, got %v", v)
	}
	if _, err := inst.Get("owner"); err == nil {
		t.Error("relation object access should fail; only owner_id exists")
	}
}

func TestInstanceSet(t *testing.T) {
	c := NewClass("Widget").
		Declare("count", &IntColumn{Choices: []Choice{{1, "one"}, {2, "two"}}}).
		Declare("label", &CharColumn{MaxLength: 4}).
		Declare("when", &DateTimeColumn{})

	inst := c.New()

	if err := inst.Set("count", float64(2)); err != nil {
		t.Errorf("valid choice rejected: %v", err)
	}
	if err := inst.Set("count", 5); err == nil {
		t.Error("invalid choice accepted")
	}
	if err := inst.Set("label", "toolong"); err == nil {
		t.Error("overlong value accepted")
	}
	if err := inst.Set("when", "2024-05-01T12:00:00Z"); err != nil {
		t.Errorf("RFC 3339 string rejected: %v", err)
	}
	if v, _ := inst.Get("when"); v.(time.Time).Year() != 2024 {
		t.Errorf("timestamp not parsed: %v", v)
	}
}

func TestInstanceClone(t *testing.T) {
	c := NewClass("Widget").
		Declare("label", &CharColumn{MaxLength: 10}).
		Declare("parts", &RelatedSet{To: "Part"})

	inst := c.New()
	inst.SetPK(9)
	inst.Set("label", "orig")
	inst.SetRelatedIDs("parts", []int64{1})

	clone := inst.Clone()
	clone.Set("label", "changed")
	clone.SetRelatedIDs("parts", []int64{2, 3})

	if v, _ := inst.Get("label"); v != "orig" {
		t.Errorf("clone mutation leaked into original: %v", v)
	}
	if ids := inst.RelatedIDs("parts"); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("clone relation mutation leaked: %v", ids)
	}
	if clone.PK() != 9 {
		t.Errorf("clone lost pk: %d", clone.PK())
	}
}

func TestCoercions(t *testing.T) {
	if n, err := CoerceInt(float64(7)); err != nil || n != 7 {
		t.Errorf("CoerceInt(7.0) = %v, %v", n, err)
	}
	if _, err := CoerceInt(7.5); err == nil {
		t.Error("CoerceInt(7.5) should fail")
	}
	if _, err := CoerceInt("7"); err == nil {
		t.Error("CoerceInt(string) should fail")
	}
	ids, err := CoerceIntList([]any{float64(1), 2, int64(3)})
	if err != nil || len(ids) != 3 {
		t.Errorf("CoerceIntList mixed = %v, %v", ids, err)
	}
}
