package sqlite

import (
	"fmt"
	"strings"

	"github.com/OLEGSHA/kendb3/internal/model"
	utilstrings "github.com/OLEGSHA/kendb3/internal/util/strings"
)

// TableName derives the sqlite table name of a class.
func TableName(class *model.Class) string {
	return utilstrings.APIName(class.Name())
}

// CreateTableSQL generates the CREATE TABLE statement for a class.
// Scalar columns map to native sqlite types; JSON values, relation
// memberships and tag sets are stored as JSON-encoded TEXT.
func CreateTableSQL(class *model.Class) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", quoteIdentifier(TableName(class))))
	b.WriteString("  pk INTEGER PRIMARY KEY AUTOINCREMENT")

	for _, name := range class.AttrNames() {
		attr, _ := class.Attr(name)
		column, columnType, ok, err := columnDefinition(name, attr)
		if err != nil {
			return "", fmt.Errorf("attribute %s: %w", name, err)
		}
		if !ok {
			continue
		}
		b.WriteString(",\n  ")
		b.WriteString(quoteIdentifier(column))
		b.WriteString(" ")
		b.WriteString(columnType)
	}

	b.WriteString("\n);")
	return b.String(), nil
}

// columnDefinition maps one attribute to a column name and type.
// Virtual attributes have no backing column.
func columnDefinition(name string, attr model.Attribute) (column, columnType string, ok bool, err error) {
	switch attr.Kind() {
	case model.KindForeignKey, model.KindOneToOne:
		return name + "_id", "INTEGER", true, nil
	case model.KindRelatedSet, model.KindTagSet:
		return name, "TEXT", true, nil
	case model.KindVirtual:
		return "", "", false, nil
	}

	switch attr.(type) {
	case *model.IntColumn:
		return name, "INTEGER", true, nil
	case *model.BoolColumn:
		return name, "INTEGER", true, nil
	case *model.CharColumn, *model.TextColumn:
		return name, "TEXT", true, nil
	case *model.JSONColumn:
		return name, "TEXT", true, nil
	case *model.DateTimeColumn:
		return name, "TEXT", true, nil
	default:
		return "", "", false, fmt.Errorf("no column mapping for %T", attr)
	}
}

// columns returns the backing column names of a class in declaration
// order, excluding pk.
func columns(class *model.Class) []string {
	var result []string
	for _, name := range class.AttrNames() {
		attr, _ := class.Attr(name)
		if column, _, ok, _ := columnDefinition(name, attr); ok {
			result = append(result, column)
		}
	}
	return result
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
