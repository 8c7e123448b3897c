// Package fields automates the generation of REST-like model
// endpoints. Each field of a model should only be defined once, in its
// class declaration; everything else - serializers, deserializers,
// relation handling and frontend type declarations - is derived from
// those declarations.
//
// Models and API objects do not necessarily coincide: sometimes it
// only makes sense to serialize part of a model. Field groups solve
// this: every field is registered into one or more groups (default
// "*"), and serialization routines are told which group to use.
//
// # Declaring fields
//
// Create one Engine per class and register fields with it while the
// class namespace is being declared. Three options are available:
//
//  1. Annotation marks, appropriate for ordinary columns:
//
//     api := fields.NewEngine()
//     c := model.NewClass("Car").
//         Declare("make", &model.CharColumn{MaxLength: 64}, api.Mark()).
//         Declare("design", &model.TextColumn{}, api.Mark("looks"))
//
//  2. Tracked properties, appropriate for computed fields:
//
//     colorRGB := api.Mark("*", "looks").
//         Property(getColorRGB).
//         Setter(setColorRGB)
//     c.Declare("color_rgb", colorRGB)
//
//  3. Manually, for all those pesky special cases:
//
//     api.AddField("my_field")
//     api.AddField("fav_pizza", "food_prefs", "moral_worth")
//
// Once the namespace is complete, assemble the engine exactly once:
//
//	if err := api.Assemble(c); err != nil { ... }
//
// Assembly resolves every pending registration against the finished
// namespace, freezes the per-group field lists and permanently rejects
// further registrations. After assembly the engine is immutable and
// safe for unsynchronized concurrent reads.
//
// # Relational fields
//
// Foreign keys are serialized as raw primary keys: an attribute
// declared under x registers the field x_id. To-many relation managers
// and tag collections serialize as identifier and tag-name lists, and
// deserialize by replacing the membership. Fields are always set in
// the order of their registration.
package fields
