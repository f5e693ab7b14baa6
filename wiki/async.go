package wiki

import (
	"context"
)

// Callback receives the outcome of an asynchronous operation
type Callback[T any] func(result T, err error)

// Async runs fn on its own goroutine and delivers the outcome to cb exactly
// once. A nil cb is rejected with a UsageError before fn is started.
//
//	err := wiki.Async(ctx, func(ctx context.Context) (*wiki.LoginResult, error) {
//		return session.Login(ctx, user, pass)
//	}, func(res *wiki.LoginResult, err error) { ... })
func Async[T any](ctx context.Context, fn func(context.Context) (T, error), cb Callback[T]) error {
	if cb == nil {
		return &UsageError{Operation: "async", Message: "callback is not a function"}
	}
	if fn == nil {
		return &UsageError{Operation: "async", Message: "operation is nil"}
	}

	go func() {
		result, err := fn(ctx)
		cb(result, err)
	}()
	return nil
}
