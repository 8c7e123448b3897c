// Package sqlite provides a sqlite-backed object store. One table per
// class; the schema is derived from the class's attribute namespace.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// sqlite3 driver registration
	_ "github.com/mattn/go-sqlite3"

	"github.com/OLEGSHA/kendb3/internal/model"
)

// Open opens (creating if necessary) a sqlite database file.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// sqlite allows a single writer; serializing access through one
	// connection avoids SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Store is a sqlite-backed object store for one class.
type Store struct {
	class *model.Class
	db    *sql.DB
	table string
	cols  []string
}

// New creates a store for the given class on an open database.
func New(db *sql.DB, class *model.Class) *Store {
	return &Store{
		class: class,
		db:    db,
		table: TableName(class),
		cols:  columns(class),
	}
}

// Class returns the class this store holds instances of.
func (s *Store) Class() *model.Class { return s.class }

// EnsureSchema creates the backing table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl, err := CreateTableSQL(s.class)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

// All returns every instance ordered by primary key.
func (s *Store) All(ctx context.Context) ([]*model.Instance, error) {
	return s.Filter(ctx, nil)
}

// Filter returns instances matching the predicate, ordered by primary key.
func (s *Store) Filter(ctx context.Context, where map[string]any) ([]*model.Instance, error) {
	query, args, err := s.selectSQL(where)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	var result []*model.Instance
	for rows.Next() {
		inst, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, rows.Err()
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

// Save persists an instance, assigning a primary key when the instance
// has none and stamping auto-now timestamp columns.
func (s *Store) Save(ctx context.Context, inst *model.Instance) error {
	isNew := !inst.HasPK()
	s.stampAutoNow(inst, isNew)

	values := make([]any, 0, len(s.cols)+1)
	for _, col := range s.cols {
		encoded, err := s.encodeColumn(inst, col)
		if err != nil {
			return err
		}
		values = append(values, encoded)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.cols)), ", ")
	quoted := make([]string, len(s.cols))
	for i, col := range s.cols {
		quoted[i] = quoteIdentifier(col)
	}
	colList := strings.Join(quoted, ", ")

	if isNew {
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdentifier(s.table), colList, placeholders)
		res, err := s.db.ExecContext(ctx, query, values...)
		if err != nil {
			return fmt.Errorf("inserting into %s: %w", s.table, err)
		}
		pk, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading inserted pk: %w", err)
		}
		inst.SetPK(pk)
		return nil
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (pk, %s) VALUES (?, %s)",
		quoteIdentifier(s.table), colList, placeholders)
	args := append([]any{inst.PK()}, values...)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting into %s: %w", s.table, err)
	}
	return nil
}

// Delete removes an instance by primary key.
func (s *Store) Delete(ctx context.Context, pk int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE pk = ?", quoteIdentifier(s.table))
	res, err := s.db.ExecContext(ctx, query, pk)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", s.table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) selectSQL(where map[string]any) (string, []any, error) {
	var b strings.Builder
	quoted := make([]string, len(s.cols))
	for i, col := range s.cols {
		quoted[i] = quoteIdentifier(col)
	}
	b.WriteString("SELECT pk")
	if len(quoted) > 0 {
		b.WriteString(", ")
		b.WriteString(strings.Join(quoted, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(quoteIdentifier(s.table))

	var clauses []string
	var args []any
	for key, want := range where {
		if key == "pk" {
			switch pks := want.(type) {
			case int64:
				clauses = append(clauses, "pk = ?")
				args = append(args, pks)
			case int:
				clauses = append(clauses, "pk = ?")
				args = append(args, int64(pks))
			case []int64:
				if len(pks) == 0 {
					clauses = append(clauses, "0")
					continue
				}
				marks := strings.TrimSuffix(strings.Repeat("?, ", len(pks)), ", ")
				clauses = append(clauses, "pk IN ("+marks+")")
				for _, pk := range pks {
					args = append(args, pk)
				}
			default:
				return "", nil, &model.BadValueError{Value: want, Reason: "pk predicate must be an int64 or []int64"}
			}
			continue
		}

		attr, ok := s.class.FieldAttr(key)
		if !ok {
			return "", nil, &model.UnknownAttributeError{Class: s.class.Name(), Name: key}
		}
		normalized, err := attr.Normalize(want)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, quoteIdentifier(key)+" = ?")
		args = append(args, encodeValue(attr, normalized))
	}

	if len(clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}
	b.WriteString(" ORDER BY pk")
	return b.String(), args, nil
}

func (s *Store) scanRow(rows *sql.Rows) (*model.Instance, error) {
	values := make([]any, len(s.cols)+1)
	valuePtrs := make([]any, len(values))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, fmt.Errorf("scanning %s row: %w", s.table, err)
	}

	inst := s.class.New()
	pk, err := model.CoerceInt(values[0])
	if err != nil {
		return nil, err
	}
	inst.SetPK(pk)

	colIdx := 1
	for _, name := range s.class.AttrNames() {
		attr, _ := s.class.Attr(name)
		column, _, ok, _ := columnDefinition(name, attr)
		if !ok {
			continue
		}
		if err := decodeColumn(inst, attr, name, column, values[colIdx]); err != nil {
			return nil, fmt.Errorf("decoding %s.%s: %w", s.table, column, err)
		}
		colIdx++
	}
	return inst, nil
}

func (s *Store) encodeColumn(inst *model.Instance, column string) (any, error) {
	attr, ok := s.class.FieldAttr(column)
	if !ok {
		return nil, &model.UnknownAttributeError{Class: s.class.Name(), Name: column}
	}

	switch attr.Kind() {
	case model.KindRelatedSet:
		return encodeJSON(inst.RelatedIDs(column))
	case model.KindTagSet:
		return encodeJSON(inst.Tags(column))
	default:
		value, err := inst.Get(column)
		if err != nil {
			return nil, err
		}
		return encodeValue(attr, value), nil
	}
}

func encodeValue(attr model.Attribute, value any) any {
	if value == nil {
		return nil
	}
	switch attr.(type) {
	case *model.BoolColumn:
		if b, ok := value.(bool); ok && b {
			return int64(1)
		}
		return int64(0)
	case *model.DateTimeColumn:
		if ts, ok := value.(time.Time); ok {
			return ts.UTC().Format(time.RFC3339Nano)
		}
		return nil
	case *model.JSONColumn:
		encoded, err := encodeJSON(value)
		if err != nil {
			return nil
		}
		return encoded
	default:
		return value
	}
}

func encodeJSON(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	return string(data), nil
}

func decodeColumn(inst *model.Instance, attr model.Attribute, name, column string, raw any) error {
	if raw == nil {
		return nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}

	switch attr.Kind() {
	case model.KindRelatedSet:
		var ids []int64
		if err := json.Unmarshal([]byte(raw.(string)), &ids); err != nil {
			return err
		}
		inst.SetRelatedIDs(name, ids)
		return nil
	case model.KindTagSet:
		var tags []string
		if err := json.Unmarshal([]byte(raw.(string)), &tags); err != nil {
			return err
		}
		inst.SetTags(name, tags)
		return nil
	}

	switch attr.(type) {
	case *model.BoolColumn:
		n, err := model.CoerceInt(raw)
		if err != nil {
			return err
		}
		return inst.Set(column, n != 0)
	case *model.JSONColumn:
		var value any
		if err := json.Unmarshal([]byte(raw.(string)), &value); err != nil {
			return err
		}
		return inst.Set(column, value)
	default:
		return inst.Set(column, raw)
	}
}

func (s *Store) stampAutoNow(inst *model.Instance, isNew bool) {
	now := time.Now().UTC()
	for _, name := range s.class.AttrNames() {
		attr, _ := s.class.Attr(name)
		col, ok := attr.(*model.DateTimeColumn)
		if !ok {
			continue
		}
		if col.AutoNow || (col.AutoNowAdd && isNew) {
			inst.Set(name, now) //nolint:errcheck // time.Time always normalizes
		}
	}
}
