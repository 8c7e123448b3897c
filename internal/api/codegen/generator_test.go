package codegen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
	"github.com/OLEGSHA/kendb3/internal/model"
)

// exportFixture registers two mutually-referencing models plus one
// relation pointing outside the exported set.
func exportFixture(t *testing.T) *fields.Registry {
	t.Helper()

	author := model.NewClass("Author")
	author.SetDoc("A person that writes books.")
	authorEngine := fields.NewEngine()
	author.Declare("pen_name", &model.CharColumn{MaxLength: 64}, authorEngine.Mark())
	author.Declare("books", &model.RelatedSet{To: "Book"})

	book := model.NewClass("Book")
	bookEngine := fields.NewEngine()
	book.Declare("title", &model.CharColumn{MaxLength: 128}, bookEngine.Mark())
	book.Declare("author", &model.ForeignKey{To: "Author"}, bookEngine.Mark())
	book.Declare("publisher", &model.ForeignKey{To: "Publisher"}, bookEngine.Mark())

	registry := fields.NewRegistry()
	_, err := registry.Register(author, authorEngine)
	require.NoError(t, err)
	_, err = registry.Register(book, bookEngine)
	require.NoError(t, err)
	return registry
}

func generate(t *testing.T, registry *fields.Registry) string {
	t.Helper()

	g := New(registry)
	g.now = func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}

	var b strings.Builder
	require.NoError(t, g.Generate(&b))
	return b.String()
}

func TestGenerateHeader(t *testing.T) {
	out := generate(t, exportFixture(t))

	assert.True(t, strings.HasPrefix(out, "/*\n * THIS IS AN AUTOGENERATED FILE"))
	assert.Contains(t, out, "Generated at: 2024-05-01T12:00:00Z")
	assert.Contains(t, out, "function autogenManagerModel<Model extends ModelBase>(")
}

func TestGenerateDeclarations(t *testing.T) {
	out := generate(t, exportFixture(t))

	assert.Contains(t, out, "export class Author extends ModelBase {")
	assert.Contains(t, out, "export class Book extends ModelBase {")
	assert.Contains(t, out, "static objects: ModelManager<Author>;")
	assert.Contains(t, out, "pen_name: any | null;")
	assert.Contains(t, out, "private '_fields_*': Status = Status.NotRequested;")
	assert.Contains(t, out, "autogenManagerModel(Author, 'author');")
	assert.Contains(t, out, "autogenManagerModel(Book, 'book');")

	// Class docs surface as comments.
	assert.Contains(t, out, " * A person that writes books.")
}

func TestGenerateSortsByClassName(t *testing.T) {
	out := generate(t, exportFixture(t))

	authorAt := strings.Index(out, "export class Author")
	bookAt := strings.Index(out, "export class Book")
	require.NotEqual(t, -1, authorAt)
	require.NotEqual(t, -1, bookAt)
	assert.Less(t, authorAt, bookAt)
}

func TestGenerateJoinedRelations(t *testing.T) {
	out := generate(t, exportFixture(t))

	// Exported target: raw id plus joined-object declaration.
	assert.Contains(t, out, "author_id: number | null;")
	assert.Contains(t, out, "author: Author | null;")

	// Publisher is not registered, so its id stays opaque.
	assert.Contains(t, out, "publisher_id: any | null;")
	assert.NotContains(t, out, "publisher: ")

	// Wiring runs after all declarations.
	wiringAt := strings.Index(out, "Book.relations = { author: Author };")
	require.NotEqual(t, -1, wiringAt)
	assert.Greater(t, wiringAt, strings.Index(out, "export class Book"))
	assert.Greater(t, wiringAt, strings.Index(out, "export class Author"))
}

func TestGenerateNoWiringBlockWithoutJoins(t *testing.T) {
	solo := model.NewClass("Note")
	engine := fields.NewEngine()
	solo.Declare("text", &model.TextColumn{}, engine.Mark())

	registry := fields.NewRegistry()
	_, err := registry.Register(solo, engine)
	require.NoError(t, err)

	out := generate(t, registry)
	assert.NotContains(t, out, ".relations = {")
	assert.NotContains(t, out, "(() => {")
}

func TestTSName(t *testing.T) {
	assert.Equal(t, "display_name", tsName("display_name"))
	assert.Equal(t, "'_fields_*'", tsName("_fields_*"))
	assert.Equal(t, "'1abc'", tsName("1abc"))
}
