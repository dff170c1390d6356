package entity

import "encoding/json"

// Event is a provider event whose signature has already been checked.
// Data holds the event object, e.g. the checkout session.
type Event struct {
	ID   string          `json:"id,omitempty"`
	Type string          `json:"eventType"`
	Data json.RawMessage `json:"data"`
}

// Result is the uniform outcome of dispatching an event.
type Result struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	Acknowledged   bool   `json:"acknowledged,omitempty"`
	PaymentID      string `json:"paymentId,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	SessionID      string `json:"sessionId,omitempty"`
}
