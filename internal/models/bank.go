package models

// Bank call outcome statuses
const (
	BankStatusSuccess      = "success"
	BankStatusError        = "error"
	BankStatusNotFound     = "not_found"
	BankStatusConnected    = "connected"
	BankStatusDisconnected = "disconnected"
)

// BankResult is the outcome of a call to the upstream bank API.
// Failures are reported through Status and Error rather than a Go error
// so callers can degrade gracefully when the bank is unreachable.
type BankResult struct {
	Status      string `json:"status"`
	CustomerOID string `json:"customer_oid,omitempty"`
	Data        any    `json:"data,omitempty"`
	Error       string `json:"error,omitempty"`
}
