package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds any single ledger transaction so a
	// stuck client cannot hold an account row lock indefinitely.
	DefaultTransactionTimeout = 10 * time.Second

	// WebhookEventTTL is how long processed webhook event ids are remembered
	// for replay suppression.
	WebhookEventTTL = 72 * time.Hour

	// ConversionCost is the number of credit units one conversion consumes.
	ConversionCost = "1"
)
