package sqlrow

import (
	"fmt"

	"github.com/lucasefe/dbmap/schema"
)

// Assignments is an ordered set of staged column values for an INSERT or
// UPDATE. It implements mapping.Writer. Staging the same column twice
// overwrites the value but keeps the position of the first write.
type Assignments struct {
	cols   []*schema.Column
	values map[*schema.Column]any
}

// NewAssignments returns an empty set of assignments.
func NewAssignments() *Assignments {
	return &Assignments{values: make(map[*schema.Column]any)}
}

// Set stages value for col after checking it against the column kind.
func (a *Assignments) Set(col *schema.Column, value any) error {
	if err := col.Check(value); err != nil {
		return err
	}
	a.stage(col, value)
	return nil
}

// SetNull stages NULL for col. It fails for not-null columns.
func (a *Assignments) SetNull(col *schema.Column) error {
	if !col.Nullable {
		return fmt.Errorf("%w: NULL for not-null column %s", schema.ErrKindMismatch, col.QualifiedName())
	}
	a.stage(col, nil)
	return nil
}

func (a *Assignments) stage(col *schema.Column, value any) {
	if a.values == nil {
		a.values = make(map[*schema.Column]any)
	}
	if _, ok := a.values[col]; !ok {
		a.cols = append(a.cols, col)
	}
	a.values[col] = value
}

// Len returns the number of staged columns.
func (a *Assignments) Len() int {
	return len(a.cols)
}

// Columns returns the staged columns in first-write order.
func (a *Assignments) Columns() []*schema.Column {
	return append([]*schema.Column(nil), a.cols...)
}

// Values returns the staged values in the order of Columns. NULL is nil.
func (a *Assignments) Values() []any {
	vals := make([]any, len(a.cols))
	for i, c := range a.cols {
		vals[i] = a.values[c]
	}
	return vals
}

// Value returns the value staged for col and whether col was staged.
func (a *Assignments) Value(col *schema.Column) (any, bool) {
	v, ok := a.values[col]
	return v, ok
}

// Map returns the staged values keyed by qualified column name.
func (a *Assignments) Map() map[string]any {
	m := make(map[string]any, len(a.cols))
	for _, c := range a.cols {
		m[c.QualifiedName()] = a.values[c]
	}
	return m
}

// ToRow returns the staged values as a row, so a written value can be read
// back without a database.
func (a *Assignments) ToRow() MapRow {
	row := make(MapRow, len(a.cols))
	for _, c := range a.cols {
		row[c] = a.values[c]
	}
	return row
}

// Table splits the assignments by owning table, for writes against joins.
func (a *Assignments) Table(name string) *Assignments {
	out := NewAssignments()
	for _, c := range a.cols {
		if c.Table == name {
			out.stage(c, a.values[c])
		}
	}
	return out
}
