package carrier

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Result is the outcome of one adapter call: either a value or an error,
// never both. Aggregations hold one Result per provider so a single failure
// cannot abort the others.
type Result[T any] struct {
	Provider string
	Value    T
	Err      *Error
}

// Ok wraps a successful value.
func Ok[T any](provider string, v T) Result[T] {
	return Result[T]{Provider: provider, Value: v}
}

// Failed wraps a failure.
func Failed[T any](provider string, err *Error) Result[T] {
	return Result[T]{Provider: provider, Err: err}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Invoke runs call with a bounded timeout and turns errors, panics and nil
// responses into a failed Result.
func Invoke[T any](ctx context.Context, provider string, timeout time.Duration, call func(context.Context) (T, error)) (res Result[T]) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res = Failed[T](provider, NewError(provider, CodePanic, fmt.Sprintf("adapter panicked: %v", r)))
		}
	}()

	v, err := call(ctx)
	if err != nil {
		return Failed[T](provider, AsError(provider, err))
	}
	if isNilPointer(v) {
		return Failed[T](provider, NewError(provider, CodeAPIError, "empty response"))
	}
	return Ok(provider, v)
}

func isNilPointer(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
