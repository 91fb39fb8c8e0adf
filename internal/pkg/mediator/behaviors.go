package mediator

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/jcmexdev/ecommerce-basket/internal/pkg/mediator"

// ValidationBehavior runs every validator registered for the request type and
// short-circuits with a *ValidationError when any rule fails.
type ValidationBehavior struct {
	validators map[reflect.Type][]validateFunc
}

func (v *ValidationBehavior) Handle(ctx context.Context, req any, next Next) (any, error) {
	var failures []FieldError
	for _, validate := range v.validators[reflect.TypeOf(req)] {
		failures = append(failures, validate(req)...)
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Request: requestName(req), Failures: failures}
	}
	return next(ctx)
}

// LoggingBehavior records start, elapsed time and outcome of each request and
// opens a span around the rest of the chain. It never changes the result.
type LoggingBehavior struct {
	logger    *slog.Logger
	threshold time.Duration
	expected  []error
	now       func() time.Time
}

func (l *LoggingBehavior) Handle(ctx context.Context, req any, next Next) (any, error) {
	name := requestName(req)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "mediator."+name)
	defer span.End()

	l.logger.InfoContext(ctx, "handling request", "request", name)
	start := l.now()

	res, err := next(ctx)

	elapsed := l.now().Sub(start)
	span.SetAttributes(attribute.Int64("mediator.elapsed_ms", elapsed.Milliseconds()))

	if l.threshold > 0 && elapsed > l.threshold {
		l.logger.WarnContext(ctx, "slow request", "request", name, "elapsed", elapsed, "threshold", l.threshold)
	}

	if err != nil && l.isExpected(err) {
		span.SetAttributes(attribute.String("mediator.outcome", err.Error()))
		l.logger.InfoContext(ctx, "request not fulfilled", "request", name, "elapsed", elapsed, "reason", err)
		return res, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.logger.ErrorContext(ctx, "request failed", "request", name, "elapsed", elapsed, "error", err)
		return res, err
	}

	l.logger.InfoContext(ctx, "request handled", "request", name, "elapsed", elapsed)
	return res, nil
}

func (l *LoggingBehavior) isExpected(err error) bool {
	for _, target := range l.expected {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
