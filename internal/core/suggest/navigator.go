package suggest

import "context"

// Navigator performs the transition to a destination tool
// failures are reported to the caller and never retried by the session
type Navigator interface {
	Navigate(ctx context.Context, targetID string) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, targetID string) error

// Navigate calls f
func (f NavigatorFunc) Navigate(ctx context.Context, targetID string) error { return f(ctx, targetID) }

// nopNavigator is used when a session is built without a navigator
type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string) error { return nil }
