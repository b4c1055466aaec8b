package admin

// Capability is the result of an optional backend operation: either the
// backend supports it and Value holds the result, or it does not.
type Capability[T any] struct {
	Supported bool
	Value     T
}

// Supported wraps a value from a backend that implements the operation
func Supported[T any](value T) Capability[T] {
	return Capability[T]{Supported: true, Value: value}
}

// Unsupported marks an operation the backend does not implement
func Unsupported[T any]() Capability[T] {
	return Capability[T]{}
}

// ValueOr returns Value when supported, else fallback
func (c Capability[T]) ValueOr(fallback T) T {
	if c.Supported {
		return c.Value
	}
	return fallback
}
