// Package query runs SELECT, INSERT and UPDATE statements for mapping trees
// over database/sql. Statements are built from the columns a tree touches;
// identifiers are quoted with lib/pq and values are bound as $n parameters.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/lucasefe/dbmap/mapping"
	"github.com/lucasefe/dbmap/schema"
	"github.com/lucasefe/dbmap/sqlrow"
)

// ErrNoAssignments is returned when a write has no columns for its table.
var ErrNoAssignments = errors.New("dbmap: no columns staged for table")

// DB is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type join struct {
	kind  string
	table schema.Table
	on    string
}

// Source is the FROM clause of a SELECT: a table and its joins.
type Source struct {
	table schema.Table
	joins []join
}

// From starts a source at table.
func From(table schema.Table) Source {
	return Source{table: table}
}

// Join adds an inner join.
func (s Source) Join(table schema.Table, on string) Source {
	return s.with("JOIN", table, on)
}

// LeftJoin adds a left outer join.
func (s Source) LeftJoin(table schema.Table, on string) Source {
	return s.with("LEFT JOIN", table, on)
}

func (s Source) with(kind string, table schema.Table, on string) Source {
	joins := make([]join, len(s.joins), len(s.joins)+1)
	copy(joins, s.joins)
	s.joins = append(joins, join{kind: kind, table: table, on: on})
	return s
}

// Tables returns the joined tables in order, ready for a ChooseFirst registry.
func (s Source) Tables() []schema.Table {
	tables := []schema.Table{s.table}
	for _, j := range s.joins {
		tables = append(tables, j.table)
	}
	return tables
}

// String renders the FROM clause without the FROM keyword.
func (s Source) String() string {
	var b strings.Builder
	b.WriteString(quoteTable(s.table))
	for _, j := range s.joins {
		fmt.Fprintf(&b, " %s %s ON %s", j.kind, quoteTable(j.table), j.on)
	}
	return b.String()
}

// SelectSQL builds a SELECT of cols from source. where is appended verbatim
// when not empty.
func SelectSQL(cols []*schema.Column, from Source, where string) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteColumn(c)
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), from)
	if where != "" {
		q += " WHERE " + where
	}
	return q
}

// InsertSQL builds an INSERT of cols into table with $1..$n placeholders.
func InsertSQL(table schema.Table, cols []*schema.Column) string {
	names := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		names[i] = pq.QuoteIdentifier(c.Name)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTable(table), strings.Join(names, ", "), strings.Join(params, ", "))
}

// UpdateSQL builds an UPDATE of cols in table. The where clause owns
// placeholders $1..$whereArgs; the SET placeholders follow them.
func UpdateSQL(table schema.Table, cols []*schema.Column, where string, whereArgs int) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(c.Name), whereArgs+i+1)
	}
	q := fmt.Sprintf("UPDATE %s SET %s", quoteTable(table), strings.Join(sets, ", "))
	if where != "" {
		q += " WHERE " + where
	}
	return q
}

// Select fetches the mapper's columns from source and materializes one T per row.
func Select[T any](ctx context.Context, db DB, m *mapping.DataMapper[T], from Source, where string, args ...any) ([]T, error) {
	cols := m.Columns()
	rows, err := db.QueryContext(ctx, SelectSQL(cols, from, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", from.table.QualifiedName(), err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row, err := sqlrow.Scan(rows, cols)
		if err != nil {
			return nil, err
		}
		v, err := m.FromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", from.table.QualifiedName(), err)
	}
	return out, nil
}

// Stage projects v with m into a fresh set of assignments.
func Stage[T any](m *mapping.DataMapper[T], v T) (*sqlrow.Assignments, error) {
	a := sqlrow.NewAssignments()
	if err := m.ToWrite(v, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Insert writes the assignments staged for table as one row.
func Insert(ctx context.Context, db DB, table schema.Table, a *sqlrow.Assignments) (sql.Result, error) {
	own := a.Table(table.Name)
	if own.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAssignments, table.QualifiedName())
	}
	res, err := db.ExecContext(ctx, InsertSQL(table, own.Columns()), own.Values()...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table.QualifiedName(), err)
	}
	return res, nil
}

// Update writes the assignments staged for table to the rows matching where.
func Update(ctx context.Context, db DB, table schema.Table, a *sqlrow.Assignments, where string, args ...any) (sql.Result, error) {
	own := a.Table(table.Name)
	if own.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAssignments, table.QualifiedName())
	}
	q := UpdateSQL(table, own.Columns(), where, len(args))
	res, err := db.ExecContext(ctx, q, append(append([]any(nil), args...), own.Values()...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", table.QualifiedName(), err)
	}
	return res, nil
}

func quoteTable(t schema.Table) string {
	if t.Schema != "" && t.Schema != "public" {
		return pq.QuoteIdentifier(t.Schema) + "." + pq.QuoteIdentifier(t.Name)
	}
	return pq.QuoteIdentifier(t.Name)
}

func quoteColumn(c *schema.Column) string {
	if c.Table == "" {
		return pq.QuoteIdentifier(c.Name)
	}
	return pq.QuoteIdentifier(c.Table) + "." + pq.QuoteIdentifier(c.Name)
}
