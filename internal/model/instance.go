package model

// Instance is one record of a class. Instances are owned by the
// storage layer; the API engine only borrows them for the duration of
// a serialize or deserialize call and never retains them.
type Instance struct {
	class *Class

	pk    int64
	pkSet bool

	values    map[string]any
	relations map[string][]int64
	tags      map[string][]string
}

// New creates a fresh, unsaved instance with every declared attribute
// at its default value.
func (c *Class) New() *Instance {
	inst := &Instance{
		class:     c,
		values:    make(map[string]any),
		relations: make(map[string][]int64),
		tags:      make(map[string][]string),
	}
	for _, name := range c.attrOrder {
		attr := c.attrs[name]
		switch attr.Kind() {
		case KindForeignKey, KindOneToOne:
			inst.values[name+"_id"] = nil
		case KindRelatedSet:
			inst.relations[name] = nil
		case KindTagSet:
			inst.tags[name] = nil
		case KindVirtual:
			// Virtual attributes have no backing slot.
		default:
			inst.values[name] = attr.Default()
		}
	}
	return inst
}

// Class returns the descriptor this instance belongs to.
func (i *Instance) Class() *Class { return i.class }

// PK returns the primary key. The key is zero until assigned.
func (i *Instance) PK() int64 { return i.pk }

// HasPK reports whether the primary key has been assigned.
func (i *Instance) HasPK() bool { return i.pkSet }

// SetPK assigns the primary key.
func (i *Instance) SetPK(pk int64) {
	i.pk = pk
	i.pkSet = true
}

// Get reads a field value. Relation managers read as their identifier
// or tag lists.
func (i *Instance) Get(name string) (any, error) {
	if v, ok := i.values[name]; ok {
		return v, nil
	}
	if ids, ok := i.relations[name]; ok {
		return append([]int64(nil), ids...), nil
	}
	if tags, ok := i.tags[name]; ok {
		return append([]string(nil), tags...), nil
	}
	return nil, &UnknownAttributeError{Class: i.class.name, Name: name}
}

// Set writes a field value, normalizing it through the declared
// attribute. Names with no declared attribute are treated as dynamic
// and stored as-is.
func (i *Instance) Set(name string, value any) error {
	attr, ok := i.class.FieldAttr(name)
	if !ok {
		i.values[name] = value
		return nil
	}

	switch attr.Kind() {
	case KindRelatedSet:
		ids, err := CoerceIntList(value)
		if err != nil {
			return err
		}
		i.relations[name] = ids
		return nil
	case KindTagSet:
		normalized, err := attr.Normalize(value)
		if err != nil {
			return err
		}
		i.tags[name], _ = normalized.([]string)
		return nil
	default:
		normalized, err := attr.Normalize(value)
		if err != nil {
			return err
		}
		i.values[name] = normalized
		return nil
	}
}

// RelatedIDs returns the membership of a to-many relation.
func (i *Instance) RelatedIDs(name string) []int64 {
	return append([]int64(nil), i.relations[name]...)
}

// SetRelatedIDs replaces the membership of a to-many relation.
func (i *Instance) SetRelatedIDs(name string, ids []int64) {
	i.relations[name] = append([]int64(nil), ids...)
}

// Tags returns the tag names of a tag collection.
func (i *Instance) Tags(name string) []string {
	return append([]string(nil), i.tags[name]...)
}

// SetTags replaces the tag set of a tag collection.
func (i *Instance) SetTags(name string, tags []string) {
	i.tags[name] = append([]string(nil), tags...)
}

// Clone returns a deep copy. Stores hand out clones so that borrowed
// instances cannot mutate stored state behind the store's back.
func (i *Instance) Clone() *Instance {
	clone := &Instance{
		class:     i.class,
		pk:        i.pk,
		pkSet:     i.pkSet,
		values:    make(map[string]any, len(i.values)),
		relations: make(map[string][]int64, len(i.relations)),
		tags:      make(map[string][]string, len(i.tags)),
	}
	for k, v := range i.values {
		clone.values[k] = v
	}
	for k, v := range i.relations {
		clone.relations[k] = append([]int64(nil), v...)
	}
	for k, v := range i.tags {
		clone.tags[k] = append([]string(nil), v...)
	}
	return clone
}
