// Package fieldmap maps Go struct fields to table columns using `db` tags.
//
// One Mapper per entity replaces hand-written row conversion: it produces the
// column list, INSERT statement and argument slice, while reads go through
// pgx.RowToStructByName, which honours the same tags.
package fieldmap

import (
	"fmt"
	"reflect"
	"strings"
)

type Mapper[T any] struct {
	table   string
	columns []string
	index   [][]int
	byField map[string]string
}

// New builds the mapper for T, which must be a struct. Fields without a db
// tag, or tagged "-", are not mapped.
func New[T any](table string) *Mapper[T] {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("fieldmap: %T is not a struct", zero))
	}

	m := &Mapper[T]{table: table, byField: make(map[string]string)}
	seen := make(map[string]bool)

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		if col == "" || col == "-" {
			continue
		}
		if seen[col] {
			panic(fmt.Sprintf("fieldmap: column %q mapped twice on %s", col, rt.Name()))
		}
		seen[col] = true
		m.columns = append(m.columns, col)
		m.index = append(m.index, f.Index)
		m.byField[f.Name] = col
	}

	return m
}

func (m *Mapper[T]) Table() string { return m.table }

// ColumnList is the comma-separated column list in declaration order.
func (m *Mapper[T]) ColumnList() string {
	return strings.Join(m.columns, ", ")
}

// Values returns the field values of v in column order.
func (m *Mapper[T]) Values(v *T) []any {
	rv := reflect.ValueOf(v).Elem()
	out := make([]any, len(m.index))
	for i, idx := range m.index {
		out[i] = rv.FieldByIndex(idx).Interface()
	}
	return out
}

func (m *Mapper[T]) InsertSQL() string {
	placeholders := make([]string, len(m.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		m.table, m.ColumnList(), strings.Join(placeholders, ", "))
}

func (m *Mapper[T]) SelectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", m.ColumnList(), m.table)
}

// Column returns the column for a Go field name.
func (m *Mapper[T]) Column(field string) (string, bool) {
	c, ok := m.byField[field]
	return c, ok
}

// MustColumn is Column for field names fixed at compile time.
func (m *Mapper[T]) MustColumn(field string) string {
	c, ok := m.Column(field)
	if !ok {
		panic(fmt.Sprintf("fieldmap: %s has no field %q", m.table, field))
	}
	return c
}
