package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LogNotifier records account notifications in the service log. Email
// delivery lives outside this service; operations tail these entries or a
// real sender is dropped in behind the same interface.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyLowBalance logs that an account has hit the low-balance threshold.
func (n *LogNotifier) NotifyLowBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	n.logger.Info().
		Str("account_id", accountID).
		Str("balance", balance.String()).
		Msg("account running low on credits")
	return nil
}
