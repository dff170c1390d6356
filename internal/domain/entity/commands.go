package entity

// ResolveRequest identifies a user by id or email, with an optional
// email to try when the first value does not match.
type ResolveRequest struct {
	IDOrEmail     string
	FallbackEmail string
}

// CheckoutCompleted is the input of payment recording.
type CheckoutCompleted struct {
	ExternalSessionID string `validate:"required"`
	IDOrEmail         string
	ProductName       string
	PaymentMode       PaymentMode `validate:"omitempty,oneof=payment subscription setup"`
	Amount            int64       `validate:"gte=0"`
	Currency          string      `validate:"omitempty,len=3"`
	CustomerID        *string
	CustomerEmail     *string
	SubscriptionID    *string
}

// RecordResult reports the payment row for a session and whether this
// call created it.
type RecordResult struct {
	PaymentID string
	UserID    string
	Created   bool
}

// SubscriptionChange is the input of a subscription upsert.
type SubscriptionChange struct {
	IDOrEmail              string
	ExternalSubscriptionID string `validate:"required"`
	Status                 string `validate:"required"`
	CurrentPeriodEnd       *int64
	CustomerEmail          *string
	CustomerID             *string
}

// SubscriptionCanceled is the input of a subscription cancellation.
type SubscriptionCanceled struct {
	ExternalSubscriptionID string `validate:"required"`
	CurrentPeriodEnd       *int64
}
