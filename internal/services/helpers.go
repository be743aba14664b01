package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gigmatch/internal/events"
	"gigmatch/internal/storage"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Settings are the tunables shared by the services.
type Settings struct {
	FeeRate         decimal.Decimal
	MinWithdrawal   int64
	DefaultRadiusKm float64
	// Clock is overridable for tests; nil means time.Now in UTC.
	Clock func() time.Time
}

// DefaultSettings returns the platform defaults: 15% fee, 100 minimum
// withdrawal, 10 km search radius.
func DefaultSettings() Settings {
	return Settings{
		FeeRate:         decimal.RequireFromString("0.15"),
		MinWithdrawal:   100,
		DefaultRadiusKm: 10,
	}
}

func (s Settings) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// mapRepoError maps storage errors to service errors
func mapRepoError(err error, operation string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%w: %s (%v)", ErrConflict, operation, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// Log other unexpected errors
	zap.L().Error("unexpected repository error", zap.String("op", operation), zap.Error(err))
	return fmt.Errorf("internal error during %s: %w", operation, err)
}

// isServiceError reports whether err already carries a service error kind,
// so transaction callbacks can return it unchanged.
func isServiceError(err error) bool {
	for _, kind := range []error{
		ErrNotFound, ErrForbidden, ErrConflict, ErrValidation, ErrInvalidTransition,
		ErrInvalidPin, ErrBelowMinimum, ErrInsufficientBalance,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// inTx runs fn in a store transaction. Errors that are not already service
// errors (commit failures, raw storage errors) are mapped for op.
func inTx(ctx context.Context, store storage.Store, op string, fn func(ctx context.Context, tx storage.Repositories) error) error {
	err := store.RunInTx(ctx, fn)
	if err == nil || isServiceError(err) {
		return err
	}
	return mapRepoError(err, op)
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// generatePin draws a uniform 4-digit PIN in [1000, 9999].
func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate completion pin: %w", err)
	}
	return fmt.Sprintf("%04d", 1000+n.Int64()), nil
}

func pinMatches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// computeFee splits gross into fee and net. The fee is rounded half away from zero.
func computeFee(gross int64, rate decimal.Decimal) (fee, net int64) {
	fee = decimal.NewFromInt(gross).Mul(rate).Round(0).IntPart()
	return fee, gross - fee
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

const tracerName = "gigmatch/services"

// startSpan opens a span for a service operation and returns a logger
// carrying the trace identifiers. The tracer is resolved from the global
// provider on every call, so a provider installed at startup applies.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, *zap.Logger) {
	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	sc := span.SpanContext()
	log := zap.L().With(
		zap.String("op", name),
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
	return ctx, span, log
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish sends events after commit. Failures are logged and otherwise ignored.
func publish(ctx context.Context, pub events.Publisher, evts ...events.Event) {
	if pub == nil || len(evts) == 0 {
		return
	}
	if err := pub.Publish(ctx, evts...); err != nil {
		zap.L().Warn("failed to publish domain events", zap.Int("count", len(evts)), zap.Error(err))
	}
}
