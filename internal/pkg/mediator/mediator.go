// Package mediator dispatches commands and queries to exactly one handler through
// a fixed chain of cross-cutting behaviors: validation first, then logging, which
// wraps the terminal handler.
//
// Handlers and validators are registered explicitly on a Builder at startup. Build
// freezes the registry; the resulting Mediator is read-only and safe for
// concurrent use.
//
//	b := mediator.NewBuilder(mediator.WithLogger(slog.Default()))
//	_ = mediator.Register[GetBasketQuery, GetBasketResult](b, handler)
//	_ = mediator.AddValidator[GetBasketQuery](b, validator)
//	m, err := b.Build()
//	res, err := mediator.Send[GetBasketResult](ctx, m, GetBasketQuery{UserName: "alice"})
package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

var (
	// ErrNoHandler is returned by Send when the request type was never registered.
	ErrNoHandler = errors.New("mediator: no handler registered")

	// ErrBuilt is returned when a Builder is changed after Build.
	ErrBuilt = errors.New("mediator: builder already built")
)

type Handler[Req any, Res any] interface {
	Handle(ctx context.Context, req Req) (Res, error)
}

type HandlerFunc[Req any, Res any] func(ctx context.Context, req Req) (Res, error)

func (f HandlerFunc[Req, Res]) Handle(ctx context.Context, req Req) (Res, error) {
	return f(ctx, req)
}

// Next invokes the remainder of the chain.
type Next func(ctx context.Context) (any, error)

// Behavior is one link of the pipeline. It decides whether to call next or
// short-circuit.
type Behavior interface {
	Handle(ctx context.Context, req any, next Next) (any, error)
}

type handleFunc func(ctx context.Context, req any) (any, error)

type validateFunc func(req any) []FieldError

type Option func(*Builder)

// WithLogger sets the logger used by the logging behavior.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithSlowThreshold sets the elapsed time above which a request is logged at WARN.
func WithSlowThreshold(d time.Duration) Option {
	return func(b *Builder) { b.slowThreshold = d }
}

// WithExpectedErrors lists outcomes that are part of normal operation, such as
// a missing resource. Errors matching one of them via errors.Is are logged at
// INFO instead of ERROR and do not mark the span as failed.
func WithExpectedErrors(errs ...error) Option {
	return func(b *Builder) { b.expected = append(b.expected, errs...) }
}

func withClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

type Builder struct {
	handlers      map[reflect.Type]handleFunc
	validators    map[reflect.Type][]validateFunc
	logger        *slog.Logger
	slowThreshold time.Duration
	expected      []error
	now           func() time.Time
	built         bool
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		handlers:      make(map[reflect.Type]handleFunc),
		validators:    make(map[reflect.Type][]validateFunc),
		logger:        slog.Default(),
		slowThreshold: 3 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register binds h as the single handler for Req. Registering a second handler
// for the same request type is an error, and so is an interface Req: Send
// dispatches on the concrete type of the request value.
func Register[Req any, Res any](b *Builder, h Handler[Req, Res]) error {
	t, err := b.requestType(reflect.TypeFor[Req]())
	if err != nil {
		return err
	}
	if _, dup := b.handlers[t]; dup {
		return fmt.Errorf("mediator: duplicate handler for %s", t)
	}
	b.handlers[t] = func(ctx context.Context, req any) (any, error) {
		return h.Handle(ctx, req.(Req))
	}
	return nil
}

type Validator[Req any] interface {
	Validate(req Req) []FieldError
}

type ValidatorFunc[Req any] func(req Req) []FieldError

func (f ValidatorFunc[Req]) Validate(req Req) []FieldError { return f(req) }

// AddValidator appends v to the validators run for Req. Every validator runs on
// each request; failures are aggregated.
func AddValidator[Req any](b *Builder, v Validator[Req]) error {
	t, err := b.requestType(reflect.TypeFor[Req]())
	if err != nil {
		return err
	}
	b.validators[t] = append(b.validators[t], func(req any) []FieldError {
		return v.Validate(req.(Req))
	})
	return nil
}

func (b *Builder) requestType(t reflect.Type) (reflect.Type, error) {
	if b.built {
		return nil, ErrBuilt
	}
	if t.Kind() == reflect.Interface {
		return nil, fmt.Errorf("mediator: request type %s is an interface", t)
	}
	return t, nil
}

// Build checks the registry and returns an immutable Mediator.
func (b *Builder) Build() (*Mediator, error) {
	var errs []error
	for t := range b.validators {
		if _, ok := b.handlers[t]; !ok {
			errs = append(errs, fmt.Errorf("mediator: validator registered for %s without a handler", t))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	b.built = true

	handlers := make(map[reflect.Type]handleFunc, len(b.handlers))
	for t, h := range b.handlers {
		handlers[t] = h
	}
	validators := make(map[reflect.Type][]validateFunc, len(b.validators))
	for t, v := range b.validators {
		validators[t] = append([]validateFunc(nil), v...)
	}

	return &Mediator{
		handlers: handlers,
		behaviors: []Behavior{
			&ValidationBehavior{validators: validators},
			&LoggingBehavior{
				logger:    b.logger,
				threshold: b.slowThreshold,
				expected:  append([]error(nil), b.expected...),
				now:       b.now,
			},
		},
	}, nil
}

type Mediator struct {
	handlers  map[reflect.Type]handleFunc
	behaviors []Behavior
}

// Send dispatches req through the behavior chain to the handler registered for
// its dynamic type, so a request passed as any reaches the same handler as the
// concrete value.
func Send[Res any, Req any](ctx context.Context, m *Mediator, req Req) (Res, error) {
	var zero Res

	t := reflect.TypeOf(req)
	if t == nil {
		return zero, fmt.Errorf("%w for <nil>", ErrNoHandler)
	}
	h, ok := m.handlers[t]
	if !ok {
		return zero, fmt.Errorf("%w for %s", ErrNoHandler, t)
	}

	next := Next(func(ctx context.Context) (any, error) { return h(ctx, req) })
	for i := len(m.behaviors) - 1; i >= 0; i-- {
		b, inner := m.behaviors[i], next
		next = func(ctx context.Context) (any, error) { return b.Handle(ctx, req, inner) }
	}

	out, err := next(ctx)
	if err != nil {
		return zero, err
	}
	res, ok := out.(Res)
	if !ok {
		return zero, fmt.Errorf("mediator: handler for %s returned %T, want %T", t, out, zero)
	}
	return res, nil
}

func requestName(req any) string {
	t := reflect.TypeOf(req)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}
