package mapping

import (
	"errors"
	"fmt"
)

// Derivation errors. They are returned by Derive and NewRegistry and indicate
// a static configuration bug; a tree is never returned alongside them.
var (
	// ErrMissingColumn is returned when no column matches a field's effective column name.
	ErrMissingColumn = errors.New("dbmap: column not found")

	// ErrDuplicateColumn is returned by a Throw registry when two tables share a column name.
	ErrDuplicateColumn = errors.New("dbmap: duplicate column name")

	// ErrMissingDiscriminator is returned when an optional composite field has no null
	// discriminator, or a sum field has no case discriminator.
	ErrMissingDiscriminator = errors.New("dbmap: discriminator column required")

	// ErrUnexpectedDiscriminator is returned when a required field is given a null discriminator.
	ErrUnexpectedDiscriminator = errors.New("dbmap: null discriminator set for a required field")

	// ErrSkipRequired is returned when a required field is skipped in a tree used for reading.
	ErrSkipRequired = errors.New("dbmap: required field cannot be skipped when reading")

	// ErrVariantsUnspecified is returned when an open family has no configured variants.
	ErrVariantsUnspecified = errors.New("dbmap: sum variants unspecified")

	// ErrTypeMismatch is returned when a constructor parameter and its field disagree.
	ErrTypeMismatch = errors.New("dbmap: constructor parameter and field types differ")

	// ErrNotInstantiable is returned when a shape treated as a product cannot be built directly.
	ErrNotInstantiable = errors.New("dbmap: shape is not instantiable")

	// ErrNotInheritable is returned when a shape treated as a sum is not a family, or
	// a sum variant is itself a family.
	ErrNotInheritable = errors.New("dbmap: shape is not a family of variants")

	// ErrNoConstructor is returned when a product shape has no constructor.
	ErrNoConstructor = errors.New("dbmap: shape has no constructor")

	// ErrConfig is returned for malformed configuration.
	ErrConfig = errors.New("dbmap: invalid mapping config")
)

// Per-row errors returned by materialization and projection.
var (
	// ErrUnknownVariant is returned when a case value or a value matches no configured variant.
	ErrUnknownVariant = errors.New("dbmap: unknown variant")

	// ErrUnexpectedNull is returned when a required primitive field reads SQL NULL.
	ErrUnexpectedNull = errors.New("dbmap: unexpected NULL for required field")

	// ErrFieldType is returned when a value does not have the Go type its shape describes.
	ErrFieldType = errors.New("dbmap: value has unexpected type")
)

// ConstructError is returned when a product constructor fails.
type ConstructError struct {
	Shape string
	Args  Args
	Err   error
}

func (e *ConstructError) Error() string {
	vals := make([]any, len(e.Args))
	for i, a := range e.Args {
		if v, ok := a.Get(); ok {
			vals[i] = v
		}
	}
	return fmt.Sprintf("dbmap: constructing %s with %v: %v", e.Shape, vals, e.Err)
}

func (e *ConstructError) Unwrap() error {
	return e.Err
}
