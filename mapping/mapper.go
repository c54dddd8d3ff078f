package mapping

import (
	"fmt"

	"github.com/lucasefe/dbmap/schema"
)

// Row gives access to the values of one fetched row.
type Row interface {
	// Get returns the value fetched for col, or None for SQL NULL.
	// An error means col was not fetched; it is returned to callers unchanged.
	Get(col *schema.Column) (Option[any], error)
}

// Writer stages column assignments for an INSERT or UPDATE.
type Writer interface {
	Set(col *schema.Column, value any) error
	SetNull(col *schema.Column) error
}

// Mapper is anything that can read a value from a row and stage it for a
// write. Trees implement it, so a tree can be a Custom rule of another tree.
type Mapper interface {
	// Columns returns the columns the mapper reads and writes.
	Columns() []*schema.Column
	Read(row Row) (Option[any], error)
	Write(value Option[any], w Writer) error
}

// DataMapper is a Tree bound to the Go type T it materializes.
type DataMapper[T any] struct {
	tree *Tree
}

// NewDataMapper binds a tree to T.
func NewDataMapper[T any](tree *Tree) *DataMapper[T] {
	return &DataMapper[T]{tree: tree}
}

// New derives a tree for shape and binds it to T.
func New[T any](shape *Shape, registry *Registry, opts ...DeriveOption) (*DataMapper[T], error) {
	tree, err := Derive(shape, registry, opts...)
	if err != nil {
		return nil, err
	}
	return NewDataMapper[T](tree), nil
}

// Tree returns the underlying mapping tree.
func (m *DataMapper[T]) Tree() *Tree {
	return m.tree
}

// Columns returns the columns a SELECT must fetch for FromRow.
func (m *DataMapper[T]) Columns() []*schema.Column {
	return m.tree.Columns()
}

// FromRow materializes a T from row.
func (m *DataMapper[T]) FromRow(row Row) (T, error) {
	var zero T
	v, err := m.tree.Materialize(row)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s constructed %T", ErrFieldType, m.tree.shape.Name, v)
	}
	return t, nil
}

// ToWrite stages the columns of v on w.
func (m *DataMapper[T]) ToWrite(v T, w Writer) error {
	return m.tree.Project(v, w)
}

func (m *DataMapper[T]) Read(row Row) (Option[any], error) {
	return m.tree.Read(row)
}

func (m *DataMapper[T]) Write(value Option[any], w Writer) error {
	return m.tree.Write(value, w)
}
