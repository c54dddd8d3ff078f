package schema

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrKindMismatch is returned when a value cannot be stored in a column of a given kind.
var ErrKindMismatch = errors.New("dbmap: value does not match column kind")

// Kind classifies the values a column can hold.
type Kind int

const (
	// KindUnknown accepts any value. Introspected columns of unmapped types use it.
	KindUnknown Kind = iota
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindString
	KindTime
	// KindEnum holds enumeration values stored either as text or as integers.
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Check reports whether v can be staged into the column. A nil v is accepted
// only by nullable columns.
func (c *Column) Check(v any) error {
	if v == nil {
		if c.Nullable {
			return nil
		}
		return fmt.Errorf("%w: NULL for not-null column %s", ErrKindMismatch, c.QualifiedName())
	}
	if !c.Kind.Accepts(v) {
		return fmt.Errorf("%w: %T for %s column %s", ErrKindMismatch, v, c.Kind, c.QualifiedName())
	}
	return nil
}

// Accepts reports whether v is a value of kind k. Named types are classified
// by their underlying kind, so `type Genre string` is accepted by KindString.
func (k Kind) Accepts(v any) bool {
	if k == KindUnknown {
		return true
	}
	switch v.(type) {
	case time.Time:
		return k == KindTime
	case []byte:
		return k == KindBytes
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return k == KindInt || k == KindEnum
	case reflect.Float32, reflect.Float64:
		return k == KindFloat
	case reflect.Bool:
		return k == KindBool
	case reflect.String:
		return k == KindString || k == KindEnum
	default:
		return false
	}
}
