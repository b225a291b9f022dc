package worker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/infrastructure/metrics"
	"github.com/snap2code/creditledger/internal/usecase"
)

// ConversionProcessor is the conversion lifecycle surface the worker drives.
type ConversionProcessor interface {
	MarkCompleted(ctx context.Context, conversionID string) error
	MarkFailed(ctx context.Context, conversionID, errorMessage string, retryCount int) error
	CompensateOnFailure(ctx context.Context, conversionID string) error
}

// ConversionWorker runs queued conversions against the external converter.
// Transient converter errors are retried with backoff; after the retry budget
// is spent the conversion is failed and its credit compensated.
type ConversionWorker struct {
	queue       chan *domain.Conversion
	converter   usecase.Converter
	processor   ConversionProcessor
	maxRetries  int
	callTimeout time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// Config for ConversionWorker.
type Config struct {
	Converter   usecase.Converter
	Processor   ConversionProcessor
	QueueSize   int
	MaxRetries  int
	CallTimeout time.Duration
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

// NewConversionWorker creates a new ConversionWorker.
func NewConversionWorker(cfg Config) *ConversionWorker {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 2 * time.Minute
	}

	return &ConversionWorker{
		queue:       make(chan *domain.Conversion, cfg.QueueSize),
		converter:   cfg.Converter,
		processor:   cfg.Processor,
		maxRetries:  cfg.MaxRetries,
		callTimeout: cfg.CallTimeout,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// Enqueue hands a started conversion to the worker. It reports false when
// the queue is full; the caller decides what to do with the charged credit.
func (w *ConversionWorker) Enqueue(conversion *domain.Conversion) bool {
	select {
	case w.queue <- conversion:
		return true
	default:
		return false
	}
}

// Start runs the worker loop until the context is cancelled.
func (w *ConversionWorker) Start(ctx context.Context) error {
	w.logger.Info().
		Int("queue_size", cap(w.queue)).
		Int("max_retries", w.maxRetries).
		Msg("conversion worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("conversion worker shutting down")
			return ctx.Err()
		case conversion := <-w.queue:
			w.process(ctx, conversion)
		}
	}
}

// process runs one conversion to a terminal state.
func (w *ConversionWorker) process(ctx context.Context, conversion *domain.Conversion) {
	logger := w.logger.With().
		Str("conversion_id", conversion.ID).
		Str("account_id", conversion.AccountID).
		Logger()

	attempts := 0

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(w.maxRetries))
	err := backoff.Retry(func() error {
		attempts++

		callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
		defer cancel()

		return w.converter.Convert(callCtx, conversion)
	}, backoff.WithContext(b, ctx))

	if w.metrics != nil {
		w.metrics.ConversionAttempts.Observe(float64(attempts))
	}

	if err == nil {
		if err := w.processor.MarkCompleted(ctx, conversion.ID); err != nil {
			logger.Error().Err(err).Msg("failed to mark conversion completed")
		}
		logger.Info().Int("attempts", attempts).Msg("conversion completed")
		return
	}

	logger.Warn().Err(err).Int("attempts", attempts).Msg("conversion failed terminally")

	if markErr := w.processor.MarkFailed(ctx, conversion.ID, err.Error(), attempts); markErr != nil {
		logger.Error().Err(markErr).Msg("failed to mark conversion failed")
	}

	if compErr := w.processor.CompensateOnFailure(ctx, conversion.ID); compErr != nil {
		logger.Error().Err(compErr).Msg("failed to compensate conversion")
	}
}
