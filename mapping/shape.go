package mapping

import (
	"fmt"

	"github.com/lucasefe/dbmap/schema"
)

// ShapeKind distinguishes the three kinds of shapes.
type ShapeKind int

const (
	ScalarShape ShapeKind = iota
	ProductShape
	SumShape
)

func (k ShapeKind) String() string {
	switch k {
	case ScalarShape:
		return "scalar"
	case ProductShape:
		return "product"
	case SumShape:
		return "sum"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape describes the structure of a Go type to the mapping engine: a scalar
// stored in one column, a product with an ordered constructor parameter list,
// or a sum over product variants. Shapes are plain data so they can be
// emitted by a code generator; Product, Sum, Abstract and Scalar build them
// by hand.
//
// Shapes are compared by identity. Declare each one once, usually as a
// package-level variable, and share the pointer.
type Shape struct {
	// Name identifies the shape. For sum variants it is the variant identifier.
	Name string
	Kind ShapeKind

	// ColumnKind is the column kind scalar values are stored as.
	ColumnKind schema.Kind
	// Convert turns a value read from a row into the Go type of a scalar.
	Convert func(any) (any, error)

	// Params is the canonical constructor parameter list, in order.
	Params []Param
	// Fields are the readable fields of a product, matched to Params by name.
	Fields []Field
	// Construct builds a product value from positional arguments.
	// A product without Construct cannot be materialized.
	Construct func(Args) (any, error)
	// Match reports whether a value belongs to this product. Sum projection
	// uses it to find the concrete variant of a value.
	Match func(any) bool

	// Variants lists the members of a sum. Nested closed sums are flattened
	// by Leaves.
	Variants []*Shape
	// Closed is set for sums whose variant set is fully known. Open sums
	// ("abstract" families) get their variants from configuration.
	Closed bool
}

// Param is one constructor parameter of a product.
type Param struct {
	Name     string
	Shape    *Shape
	Optional bool
}

// Field is one readable field of a product.
type Field struct {
	Name     string
	Shape    *Shape
	Optional bool
	// Get reads the field off a value of the owning product. Absent optional
	// values are None.
	Get func(any) (Option[any], error)
}

// Param returns the constructor parameter matching the field.
func (f Field) Param() Param {
	return Param{Name: f.Name, Shape: f.Shape, Optional: f.Optional}
}

func (s *Shape) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}

// Field returns the named field of a product.
func (s *Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Leaves returns the concrete product variants of a closed sum, flattening
// nested closed sums in declaration order.
func (s *Shape) Leaves() ([]*Shape, error) {
	if s.Kind != SumShape {
		return nil, fmt.Errorf("%w: %s is a %s, not a sum", ErrNotInheritable, s.Name, s.Kind)
	}
	if !s.Closed {
		return nil, fmt.Errorf("%w: %s is an open family", ErrVariantsUnspecified, s.Name)
	}
	var leaves []*Shape
	for _, v := range s.Variants {
		switch v.Kind {
		case ProductShape:
			leaves = append(leaves, v)
		case SumShape:
			sub, err := v.Leaves()
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, sub...)
		default:
			return nil, fmt.Errorf("%w: variant %s of %s is a scalar", ErrNotInstantiable, v.Name, s.Name)
		}
	}
	return leaves, nil
}

// family reports whether the named shape is a sum nested in s.
func (s *Shape) family(name string) bool {
	for _, v := range s.Variants {
		if v.Kind == SumShape && (v.Name == name || v.family(name)) {
			return true
		}
	}
	return false
}

// Product describes a record type T whose constructor takes the given fields
// in order.
func Product[T any](name string, construct func(Args) (T, error), fields ...Field) *Shape {
	s := &Shape{
		Name:   name,
		Kind:   ProductShape,
		Fields: fields,
		Params: make([]Param, 0, len(fields)),
		Match: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
	}
	for _, f := range fields {
		s.Params = append(s.Params, f.Param())
	}
	if construct != nil {
		s.Construct = func(args Args) (any, error) {
			return construct(args)
		}
	}
	return s
}

// Object describes a field-less variant such as a case object.
func Object[T any](name string, value T) *Shape {
	return Product(name, func(Args) (T, error) { return value, nil })
}

// Sum describes a closed family: exactly one of variants is active per value.
func Sum(name string, variants ...*Shape) *Shape {
	return &Shape{
		Name:     name,
		Kind:     SumShape,
		Variants: variants,
		Closed:   true,
	}
}

// Abstract describes an open family whose variants are supplied by SumConfig.
func Abstract(name string) *Shape {
	return &Shape{Name: name, Kind: SumShape}
}

// FieldOf describes a required field of T.
func FieldOf[T, F any](name string, shape *Shape, get func(T) F) Field {
	return Field{
		Name:  name,
		Shape: shape,
		Get: func(v any) (Option[any], error) {
			t, ok := v.(T)
			if !ok {
				return None[any](), fmt.Errorf("%w: field %s read from %T", ErrFieldType, name, v)
			}
			return Some[any](get(t)), nil
		},
	}
}

// OptionalFieldOf describes an optional field of T.
func OptionalFieldOf[T, F any](name string, shape *Shape, get func(T) Option[F]) Field {
	return Field{
		Name:     name,
		Shape:    shape,
		Optional: true,
		Get: func(v any) (Option[any], error) {
			t, ok := v.(T)
			if !ok {
				return None[any](), fmt.Errorf("%w: field %s read from %T", ErrFieldType, name, v)
			}
			return get(t).Any(), nil
		},
	}
}
