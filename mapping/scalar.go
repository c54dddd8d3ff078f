package mapping

import (
	"fmt"
	"time"

	"github.com/lucasefe/dbmap/schema"
)

// Directly representable scalar shapes.
var (
	Int     = Scalar("int", schema.KindInt, convertInt[int])
	Int8    = Scalar("int8", schema.KindInt, convertInt[int8])
	Int16   = Scalar("int16", schema.KindInt, convertInt[int16])
	Int32   = Scalar("int32", schema.KindInt, convertInt[int32])
	Int64   = Scalar("int64", schema.KindInt, convertInt[int64])
	Uint8   = Scalar("uint8", schema.KindInt, convertInt[uint8])
	Uint16  = Scalar("uint16", schema.KindInt, convertInt[uint16])
	Uint32  = Scalar("uint32", schema.KindInt, convertInt[uint32])
	Uint64  = Scalar("uint64", schema.KindInt, convertInt[uint64])
	Float32 = Scalar("float32", schema.KindFloat, convertFloat[float32])
	Float64 = Scalar("float64", schema.KindFloat, convertFloat[float64])
	Bool    = Scalar("bool", schema.KindBool, convertBool)
	Bytes   = Scalar("bytes", schema.KindBytes, convertBytes)
	String  = Scalar("string", schema.KindString, convertString[string])
	Time    = Scalar("time", schema.KindTime, convertTime)
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Scalar describes a type stored in a single column. convert receives the
// non-NULL value produced by the row accessor.
func Scalar[T any](name string, kind schema.Kind, convert func(any) (T, error)) *Shape {
	return &Shape{
		Name:       name,
		Kind:       ScalarShape,
		ColumnKind: kind,
		Convert: func(v any) (any, error) {
			return convert(v)
		},
	}
}

// EnumString describes an enumeration stored as text.
func EnumString[T ~string](name string) *Shape {
	return Scalar(name, schema.KindEnum, convertString[T])
}

// EnumInt describes an enumeration stored as an integer.
func EnumInt[T integer](name string) *Shape {
	return Scalar(name, schema.KindEnum, convertInt[T])
}

func convertInt[T integer](v any) (T, error) {
	switch x := v.(type) {
	case T:
		return x, nil
	case int:
		return fromSigned[T](int64(x), v)
	case int8:
		return fromSigned[T](int64(x), v)
	case int16:
		return fromSigned[T](int64(x), v)
	case int32:
		return fromSigned[T](int64(x), v)
	case int64:
		return fromSigned[T](x, v)
	case uint:
		return fromUnsigned[T](uint64(x), v)
	case uint8:
		return fromUnsigned[T](uint64(x), v)
	case uint16:
		return fromUnsigned[T](uint64(x), v)
	case uint32:
		return fromUnsigned[T](uint64(x), v)
	case uint64:
		return fromUnsigned[T](x, v)
	default:
		var zero T
		return zero, fmt.Errorf("%w: cannot read %T as %T", ErrFieldType, v, zero)
	}
}

// fromSigned converts x to T, failing when T cannot hold it.
func fromSigned[T integer](x int64, v any) (T, error) {
	t := T(x)
	if int64(t) != x || (t < 0) != (x < 0) {
		var zero T
		return zero, fmt.Errorf("%w: %v overflows %T", ErrFieldType, v, zero)
	}
	return t, nil
}

// fromUnsigned converts x to T, failing when T cannot hold it.
func fromUnsigned[T integer](x uint64, v any) (T, error) {
	t := T(x)
	if t < 0 || uint64(t) != x {
		var zero T
		return zero, fmt.Errorf("%w: %v overflows %T", ErrFieldType, v, zero)
	}
	return t, nil
}

func convertFloat[T ~float32 | ~float64](v any) (T, error) {
	switch x := v.(type) {
	case T:
		return x, nil
	case float32:
		return T(x), nil
	case float64:
		return T(x), nil
	case int64:
		return T(x), nil
	default:
		var zero T
		return zero, fmt.Errorf("%w: cannot read %T as %T", ErrFieldType, v, zero)
	}
}

func convertBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("%w: cannot read %T as bool", ErrFieldType, v)
}

func convertBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		return []byte(x), nil
	default:
		return nil, fmt.Errorf("%w: cannot read %T as []byte", ErrFieldType, v)
	}
}

func convertString[T ~string](v any) (T, error) {
	switch x := v.(type) {
	case T:
		return x, nil
	case string:
		return T(x), nil
	case []byte:
		return T(x), nil
	default:
		var zero T
		return zero, fmt.Errorf("%w: cannot read %T as %T", ErrFieldType, v, zero)
	}
}

func convertTime(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot read %T as time.Time", ErrFieldType, v)
}
