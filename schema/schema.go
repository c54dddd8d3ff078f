// Package schema defines the table and column handles the mapping engine
// resolves fields against. Tables are usually produced by the introspect
// package, but they can also be declared by hand with NewTable.
package schema

import (
	"errors"
	"fmt"
)

// ErrTableNotFound is returned when a requested table is not part of a Schema.
var ErrTableNotFound = errors.New("dbmap: table not found")

// Schema represents a database schema containing multiple tables.
// It is the top-level container returned by introspection functions.
type Schema struct {
	// Tables contains all tables found in the introspected schema(s).
	Tables []Table
}

// Table represents a database table and its column handles.
type Table struct {
	// Name is the table name without schema qualification.
	Name string
	// Schema is the database schema containing this table (e.g., "public").
	Schema string
	// Columns contains all columns in the table, ordered by ordinal position.
	// Each column is a stable handle: mapping trees hold on to these pointers.
	Columns []*Column
	// PrimaryKeys lists column names that form the primary key.
	PrimaryKeys []string
}

// Column represents a database column within a table.
type Column struct {
	// Name is the column name.
	Name string
	// Table is the name of the table owning the column.
	Table string
	// Kind is the scalar kind staged values are checked against.
	Kind Kind
	// Type is the database type name (e.g., "int4", "varchar").
	Type string
	// Nullable indicates whether the column allows NULL values.
	Nullable bool
	// IsPrimaryKey indicates whether this column is part of the primary key.
	IsPrimaryKey bool
}

// NewTable builds a table from column templates, binding every column to it.
func NewTable(name string, columns ...Column) Table {
	t := Table{Name: name, Columns: make([]*Column, 0, len(columns))}
	for _, c := range columns {
		c := c
		c.Table = name
		if c.IsPrimaryKey {
			t.PrimaryKeys = append(t.PrimaryKeys, c.Name)
		}
		t.Columns = append(t.Columns, &c)
	}
	return t
}

// Col is shorthand for a non-null column template of the given kind.
func Col(name string, kind Kind) Column {
	return Column{Name: name, Kind: kind}
}

// NullableCol is shorthand for a nullable column template of the given kind.
func NullableCol(name string, kind Kind) Column {
	return Column{Name: name, Kind: kind, Nullable: true}
}

// QualifiedName returns the column name prefixed with its table, e.g. "films.id".
func (c *Column) QualifiedName() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

func (c *Column) String() string {
	return c.QualifiedName()
}

// Column returns the column with the given name, or nil.
func (t Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// QualifiedName returns the table name prefixed with its schema unless the
// schema is empty or "public".
func (t Table) QualifiedName() string {
	if t.Schema != "" && t.Schema != "public" {
		return fmt.Sprintf("%s.%s", t.Schema, t.Name)
	}
	return t.Name
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name || t.QualifiedName() == name {
			return t, true
		}
	}
	return Table{}, false
}

// Select returns the named tables in the order given. Order matters to the
// column registry, which resolves duplicate column names by table order.
func (s *Schema) Select(names ...string) ([]Table, error) {
	tables := make([]Table, 0, len(names))
	for _, name := range names {
		t, ok := s.Table(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
