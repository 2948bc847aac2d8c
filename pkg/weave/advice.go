package weave

import "context"

// Before runs fn ahead of the call. A non-nil error from fn short circuits the
// call and is returned to the caller.
func Before(fn func(ctx context.Context, jp *JoinPoint) error) Advice {
	return func(ctx context.Context, jp *JoinPoint) (any, error) {
		if err := fn(ctx, jp); err != nil {
			return nil, err
		}
		return jp.Proceed(ctx)
	}
}

// AfterReturning runs fn after the call returned without error
func AfterReturning(fn func(ctx context.Context, jp *JoinPoint, result any)) Advice {
	return func(ctx context.Context, jp *JoinPoint) (any, error) {
		result, err := jp.Proceed(ctx)
		if err == nil {
			fn(ctx, jp, result)
		}
		return result, err
	}
}

// AfterThrowing runs fn after the call returned an error. The error itself is
// passed on untouched.
func AfterThrowing(fn func(ctx context.Context, jp *JoinPoint, err error)) Advice {
	return func(ctx context.Context, jp *JoinPoint) (any, error) {
		result, err := jp.Proceed(ctx)
		if err != nil {
			fn(ctx, jp, err)
		}
		return result, err
	}
}

// After runs fn once the call is over, whatever the outcome, including a panic
func After(fn func(ctx context.Context, jp *JoinPoint)) Advice {
	return func(ctx context.Context, jp *JoinPoint) (any, error) {
		defer fn(ctx, jp)
		return jp.Proceed(ctx)
	}
}
