// Package memory provides a map-backed object store, used as the
// default storage backend and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/OLEGSHA/kendb3/internal/model"
)

// Store is an in-memory object store for one class.
type Store struct {
	class *model.Class

	mu     sync.RWMutex
	byPK   map[int64]*model.Instance
	nextPK int64
}

// New creates an empty store for the given class.
func New(class *model.Class) *Store {
	return &Store{
		class:  class,
		byPK:   make(map[int64]*model.Instance),
		nextPK: 1,
	}
}

// Class returns the class this store holds instances of.
func (s *Store) Class() *model.Class { return s.class }

// All returns every instance ordered by primary key.
func (s *Store) All(ctx context.Context) ([]*model.Instance, error) {
	return s.Filter(ctx, nil)
}

// Filter returns instances matching the predicate, ordered by primary key.
func (s *Store) Filter(_ context.Context, where map[string]any) ([]*model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Instance
	for _, inst := range s.byPK {
		match, err := matches(inst, where)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, inst.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PK() < result[j].PK()
	})
	return result, nil
}

// Get returns the single instance matching the predicate.
func (s *Store) Get(ctx context.Context, where map[string]any) (*model.Instance, error) {
	found, err := s.Filter(ctx, where)
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, model.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return nil, model.ErrMultipleObjects
	}
}

// Save persists a clone of the instance, assigning a primary key when
// the instance has none and stamping auto-now timestamp columns.
func (s *Store) Save(_ context.Context, inst *model.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists := false
	if inst.HasPK() {
		_, exists = s.byPK[inst.PK()]
	}
	isNew := !exists

	if !inst.HasPK() {
		inst.SetPK(s.nextPK)
	}
	if inst.PK() >= s.nextPK {
		s.nextPK = inst.PK() + 1
	}

	stampAutoNow(inst, isNew)
	s.byPK[inst.PK()] = inst.Clone()
	return nil
}

// Delete removes an instance by primary key.
func (s *Store) Delete(_ context.Context, pk int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byPK[pk]; !ok {
		return model.ErrNotFound
	}
	delete(s.byPK, pk)
	return nil
}

// Count returns the number of stored instances.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPK)
}

func stampAutoNow(inst *model.Instance, isNew bool) {
	class := inst.Class()
	now := time.Now().UTC()
	for _, name := range class.AttrNames() {
		attr, _ := class.Attr(name)
		col, ok := attr.(*model.DateTimeColumn)
		if !ok {
			continue
		}
		if col.AutoNow || (col.AutoNowAdd && isNew) {
			inst.Set(name, now) //nolint:errcheck // time.Time always normalizes
		}
	}
}

func matches(inst *model.Instance, where map[string]any) (bool, error) {
	for key, want := range where {
		if key == "pk" {
			switch pks := want.(type) {
			case int64:
				if inst.PK() != pks {
					return false, nil
				}
			case int:
				if inst.PK() != int64(pks) {
					return false, nil
				}
			case []int64:
				found := false
				for _, pk := range pks {
					if inst.PK() == pk {
						found = true
						break
					}
				}
				if !found {
					return false, nil
				}
			default:
				return false, &model.BadValueError{Value: want, Reason: "pk predicate must be an int64 or []int64"}
			}
			continue
		}

		got, err := inst.Get(key)
		if err != nil {
			return false, err
		}
		// Normalize the predicate value so int/int64 mismatches in
		// caller code do not silently match nothing.
		if attr, ok := inst.Class().FieldAttr(key); ok {
			if n, err := attr.Normalize(want); err == nil {
				want = n
			}
		}
		if got != want {
			return false, nil
		}
	}
	return true, nil
}
