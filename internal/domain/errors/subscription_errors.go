package errors

import "errors"

// ErrSubscriptionNotFound indicates that no subscription matches the
// provider subscription id of a cancellation.
var ErrSubscriptionNotFound = errors.New("subscription not found")
