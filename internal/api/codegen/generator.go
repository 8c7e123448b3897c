// Package codegen generates the frontend model declarations matching
// the field-group schema of every registered model.
package codegen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
	"github.com/OLEGSHA/kendb3/internal/model"
)

// Generator emits TypeScript model class declarations for the
// data-manager frontend. It is driven entirely by the resolved engine
// metadata and runs once, after every model has registered.
type Generator struct {
	registry *fields.Registry

	// now is replaceable in tests for a stable header.
	now func() time.Time
}

// New creates a generator over the given registry.
func New(registry *fields.Registry) *Generator {
	return &Generator{registry: registry, now: time.Now}
}

// WriteFile generates into the given path, creating parent
// directories as needed.
func (g *Generator) WriteFile(path string) error {
	var b strings.Builder
	if err := g.Generate(&b); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// Generate writes the full declarations file.
//
// Models are emitted in name-sorted order. Relation id fields whose
// target model is also exported emit a raw identifier field plus a
// lazily-resolved joined-object field; because the target's class may
// be declared later in the file, joined fields are wired in a deferred
// block after all declarations exist. Relations pointing outside the
// exported set stay opaque.
func (g *Generator) Generate(w io.Writer) error {
	if err := g.writeHeader(w); err != nil {
		return err
	}

	// Pass 1: declarations, collecting relation wiring as we go.
	var wiring []string
	for _, binding := range g.registry.Sorted() {
		entry, err := g.writeModel(w, binding)
		if err != nil {
			return err
		}
		if entry != "" {
			wiring = append(wiring, entry)
		}
	}

	// Pass 2: wire joined fields now that every class is declared.
	return g.writeWiring(w, wiring)
}

func (g *Generator) writeHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, `/*
 * THIS IS AN AUTOGENERATED FILE
 * Do not commit this file to version control.
 * Generator: internal/api/codegen
 * Generated at: %s
 *
 * Model class declarations for dataman.ts
 */

import {
    ModelBase,
    ModelManager,
    manageModel,
    Status,
} from './api_lib';
import { getInjection } from 'common';

/**
 * Create a ModelManager and store it in modelClass.objects.
 *
 * Request URL is generated based on provided API model name.
 *
 * @param modelClass model class
 * @param modelAPIName model name to use in download URL
 */
function autogenManagerModel<Model extends ModelBase>(
    modelClass: new(id: number) => Model,
    modelAPIName: string,
): void {
    const template = getInjection<string>('dataman-endpoint');
    const path = template.replace('MODEL_NAME', modelAPIName);
    manageModel(modelClass, new URL(path, window.location.origin));
}
`, g.now().Format(time.RFC3339))
	return err
}

// writeModel emits one class declaration and returns its relation
// wiring statement, or "" when the model has no joined fields.
func (g *Generator) writeModel(w io.Writer, binding *fields.Binding) (string, error) {
	class := binding.Class
	engine := binding.Engine

	var b strings.Builder
	b.WriteString("\n")
	if doc := class.Doc(); doc != "" {
		b.WriteString(jsdoc(doc, 0))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "export class %s extends ModelBase {\n", class.Name())
	b.WriteString("    /*\n     * This model's ModelManager.\n     */\n")
	fmt.Fprintf(&b, "    static objects: ModelManager<%s>;\n\n", class.Name())

	var joined []string
	for _, field := range engine.AllFields() {
		target, ok := g.joinedTarget(binding, field)
		if !ok {
			fmt.Fprintf(&b, "    %s: any | null;\n", tsName(field))
			continue
		}
		base := strings.TrimSuffix(strings.TrimSuffix(field, "_id"), "_ids")
		fmt.Fprintf(&b, "    %s: number | null;\n", tsName(field))
		fmt.Fprintf(&b, "    %s: %s | null;\n", tsName(base), target)
		joined = append(joined, fmt.Sprintf("%s: %s", tsName(base), target))
	}

	b.WriteString("\n")
	for _, group := range engine.Groups() {
		fmt.Fprintf(&b, "    private '_fields_%s': Status = Status.NotRequested;\n", group)
	}

	b.WriteString("}\n")
	fmt.Fprintf(&b, "autogenManagerModel(%s, '%s');\n", class.Name(), engine.APIName())

	if _, err := io.WriteString(w, b.String()); err != nil {
		return "", err
	}

	if len(joined) == 0 {
		return "", nil
	}
	return fmt.Sprintf("%s.relations = { %s };", class.Name(), strings.Join(joined, ", ")), nil
}

func (g *Generator) writeWiring(w io.Writer, wiring []string) error {
	if len(wiring) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`
/*
 * Late-bound relation wiring. A relation's target class may be
 * declared after its referrer, so joined fields are wired only once
 * every declaration above exists.
 */
(() => {
`)
	for _, entry := range wiring {
		b.WriteString("    ")
		b.WriteString(entry)
		b.WriteString("\n")
	}
	b.WriteString("})();\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// joinedTarget reports whether a field is a relation identifier whose
// target model is part of the exported set, and if so the target's
// class name.
func (g *Generator) joinedTarget(binding *fields.Binding, field string) (string, bool) {
	var base string
	switch {
	case strings.HasSuffix(field, "_id"):
		base = strings.TrimSuffix(field, "_id")
	case strings.HasSuffix(field, "_ids"):
		base = strings.TrimSuffix(field, "_ids")
	default:
		return "", false
	}

	attr, ok := binding.Class.Attr(base)
	if !ok {
		return "", false
	}
	relation, ok := attr.(model.Relation)
	if !ok {
		return "", false
	}
	if _, exported := g.registry.GetClass(relation.Target()); !exported {
		return "", false
	}
	return relation.Target(), true
}

// tsName quotes field names that are not valid TypeScript identifiers.
func tsName(name string) string {
	for i, r := range name {
		valid := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !valid {
			return "'" + name + "'"
		}
	}
	return name
}

// jsdoc formats documentation as a JavaScript multi-line comment.
func jsdoc(doc string, indentLevel int) string {
	indent := strings.Repeat("    ", indentLevel)
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	var b strings.Builder
	b.WriteString(indent + "/*\n")
	for _, line := range lines {
		b.WriteString(indent + " * " + strings.TrimRight(line, " ") + "\n")
	}
	b.WriteString(indent + " */")
	return b.String()
}
