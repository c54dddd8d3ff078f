package mapping

// Option holds a value that may be absent. Optional fields and SQL NULLs are
// represented with it instead of nil pointers.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether the value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrZero returns the value, or the zero value of T when absent.
func (o Option[T]) OrZero() T {
	return o.value
}

// Any erases the value type.
func (o Option[T]) Any() Option[any] {
	if !o.ok {
		return None[any]()
	}
	return Some[any](o.value)
}

// Args are the positional constructor arguments produced by materialization,
// one per constructor parameter. Skipped and absent fields are None.
type Args []Option[any]

// Arg returns the i-th argument as a T. Absent arguments and arguments of a
// different type yield the zero value.
func Arg[T any](args Args, i int) T {
	v, _ := OptArg[T](args, i).Get()
	return v
}

// OptArg returns the i-th argument as an Option[T].
func OptArg[T any](args Args, i int) Option[T] {
	if i < 0 || i >= len(args) {
		return None[T]()
	}
	v, ok := args[i].Get()
	if !ok {
		return None[T]()
	}
	t, ok := v.(T)
	if !ok {
		return None[T]()
	}
	return Some(t)
}
