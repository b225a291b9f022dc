package domain

import "time"

// ConversionStatus is the lifecycle state of one screenshot-to-code attempt.
type ConversionStatus string

const (
	ConversionStatusPending   ConversionStatus = "pending"
	ConversionStatusCompleted ConversionStatus = "completed"
	ConversionStatusFailed    ConversionStatus = "failed"
)

// Conversion tracks a single paid conversion attempt. The credit is deducted
// before the external converter runs; Refunded guards the compensating
// credit so a failed attempt is never refunded twice.
type Conversion struct {
	ID           string
	AccountID    string
	Framework    string
	Status       ConversionStatus
	ErrorMessage string
	RetryCount   int
	Refunded     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
