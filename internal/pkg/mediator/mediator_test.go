package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

type greetQuery struct{ Name string }

type greetResult struct{ Greeting string }

type otherQuery struct{}

// recordingHandler keeps every slog record for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

func greetHandler(calls *int) HandlerFunc[greetQuery, greetResult] {
	return func(ctx context.Context, q greetQuery) (greetResult, error) {
		*calls++
		return greetResult{Greeting: "hello " + q.Name}, nil
	}
}

func nameRequired(q greetQuery) []FieldError {
	if q.Name == "" {
		return []FieldError{{Field: "Name", Message: "Name is required"}}
	}
	return nil
}

func TestSendDispatchesToRegisteredHandler(t *testing.T) {
	calls := 0
	b := NewBuilder(WithLogger(slog.New(&recordingHandler{})))
	assert.NoError(t, Register[greetQuery, greetResult](b, greetHandler(&calls)))
	m, err := b.Build()
	assert.NoError(t, err)

	res, err := Send[greetResult](context.Background(), m, greetQuery{Name: "alice"})
	assert.NoError(t, err)
	assert.Equal(t, "hello alice", res.Greeting)
	assert.Equal(t, 1, calls)
}

func TestSendDispatchesOnDynamicType(t *testing.T) {
	calls := 0
	b := NewBuilder(WithLogger(slog.New(&recordingHandler{})))
	assert.NoError(t, Register[greetQuery, greetResult](b, greetHandler(&calls)))
	assert.NoError(t, AddValidator[greetQuery](b, ValidatorFunc[greetQuery](nameRequired)))
	m, err := b.Build()
	assert.NoError(t, err)

	var req any = greetQuery{Name: "alice"}
	res, err := Send[greetResult](context.Background(), m, req)
	assert.NoError(t, err)
	assert.Equal(t, "hello alice", res.Greeting)

	var invalid any = greetQuery{}
	_, err = Send[greetResult](context.Background(), m, invalid)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, calls)

	_, err = Send[greetResult, any](context.Background(), m, nil)
	assert.IsError(t, err, ErrNoHandler)
}

func TestRegisterRejectsInterfaceRequestType(t *testing.T) {
	b := NewBuilder()
	err := Register[any, greetResult](b, HandlerFunc[any, greetResult](
		func(ctx context.Context, req any) (greetResult, error) {
			return greetResult{}, nil
		}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "interface")

	err = AddValidator[any](b, ValidatorFunc[any](func(any) []FieldError { return nil }))
	assert.Error(t, err)
}

func TestBuilderRejectsChangesAfterBuild(t *testing.T) {
	calls := 0
	b := NewBuilder(WithLogger(slog.New(&recordingHandler{})))
	assert.NoError(t, Register[greetQuery, greetResult](b, greetHandler(&calls)))
	m, err := b.Build()
	assert.NoError(t, err)

	assert.IsError(t, AddValidator[greetQuery](b, ValidatorFunc[greetQuery](nameRequired)), ErrBuilt)
	assert.IsError(t, Register[otherQuery, greetResult](b, HandlerFunc[otherQuery, greetResult](
		func(context.Context, otherQuery) (greetResult, error) { return greetResult{}, nil })), ErrBuilt)

	_, err = Send[greetResult](context.Background(), m, greetQuery{})
	assert.NoError(t, err)
}

func TestRegisterRejectsDuplicateHandler(t *testing.T) {
	calls := 0
	b := NewBuilder()
	assert.NoError(t, Register[greetQuery, greetResult](b, greetHandler(&calls)))
	err := Register[greetQuery, greetResult](b, greetHandler(&calls))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate handler")
}

func TestBuildRejectsValidatorWithoutHandler(t *testing.T) {
	b := NewBuilder()
	assert.NoError(t, AddValidator[greetQuery](b, ValidatorFunc[greetQuery](nameRequired)))
	_, err := b.Build()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "without a handler")
}

func TestSendUnregisteredRequest(t *testing.T) {
	m, err := NewBuilder().Build()
	assert.NoError(t, err)

	_, err = Send[greetResult](context.Background(), m, otherQuery{})
	assert.IsError(t, err, ErrNoHandler)
}

func TestValidationShortCircuitsAndAggregates(t *testing.T) {
	calls := 0
	b := NewBuilder(WithLogger(slog.New(&recordingHandler{})))
	assert.NoError(t, Register[greetQuery, greetResult](b, greetHandler(&calls)))
	assert.NoError(t, AddValidator[greetQuery](b, ValidatorFunc[greetQuery](nameRequired)))
	assert.NoError(t, AddValidator[greetQuery](b, ValidatorFunc[greetQuery](func(q greetQuery) []FieldError {
		if len(q.Name) < 3 {
			return []FieldError{{Field: "Name", Message: "Name is too short"}}
		}
		return nil
	})))
	m, err := b.Build()
	assert.NoError(t, err)

	_, err = Send[greetResult](context.Background(), m, greetQuery{})

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "greetQuery", verr.Request)
	assert.Equal(t, []FieldError{
		{Field: "Name", Message: "Name is required"},
		{Field: "Name", Message: "Name is too short"},
	}, verr.Failures)
	assert.Equal(t, 0, calls)
}

func TestLoggingPropagatesHandlerErrorUnchanged(t *testing.T) {
	boom := errors.New("boom")
	rec := &recordingHandler{}
	b := NewBuilder(WithLogger(slog.New(rec)))
	assert.NoError(t, Register[greetQuery, greetResult](b, HandlerFunc[greetQuery, greetResult](
		func(ctx context.Context, q greetQuery) (greetResult, error) {
			return greetResult{}, boom
		})))
	m, err := b.Build()
	assert.NoError(t, err)

	_, err = Send[greetResult](context.Background(), m, greetQuery{Name: "bob"})
	assert.Equal(t, boom, err)
	assert.Equal(t, []string{"request failed"}, rec.messages(slog.LevelError))
}

func TestLoggingKeepsExpectedErrorsBelowError(t *testing.T) {
	missing := errors.New("missing")
	rec := &recordingHandler{}
	b := NewBuilder(WithLogger(slog.New(rec)), WithExpectedErrors(missing))
	assert.NoError(t, Register[greetQuery, greetResult](b, HandlerFunc[greetQuery, greetResult](
		func(ctx context.Context, q greetQuery) (greetResult, error) {
			return greetResult{}, fmt.Errorf("greet %s: %w", q.Name, missing)
		})))
	m, err := b.Build()
	assert.NoError(t, err)

	_, err = Send[greetResult](context.Background(), m, greetQuery{Name: "bob"})
	assert.IsError(t, err, missing)
	assert.Zero(t, len(rec.messages(slog.LevelError)))
	assert.Equal(t, []string{"handling request", "request not fulfilled"}, rec.messages(slog.LevelInfo))
}

func TestLoggingWarnsOnSlowRequest(t *testing.T) {
	calls := 0
	rec := &recordingHandler{}
	clock := time.Unix(0, 0)
	tick := func() time.Time {
		now := clock
		clock = clock.Add(5 * time.Second)
		return now
	}
	b := NewBuilder(WithLogger(slog.New(rec)), WithSlowThreshold(time.Second), withClock(tick))
	assert.NoError(t, Register[greetQuery, greetResult](b, greetHandler(&calls)))
	m, err := b.Build()
	assert.NoError(t, err)

	_, err = Send[greetResult](context.Background(), m, greetQuery{Name: "carol"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"slow request"}, rec.messages(slog.LevelWarn))
	assert.Equal(t, []string{"handling request", "request handled"}, rec.messages(slog.LevelInfo))
}

func TestValidationRunsBeforeLogging(t *testing.T) {
	calls := 0
	rec := &recordingHandler{}
	b := NewBuilder(WithLogger(slog.New(rec)))
	assert.NoError(t, Register[greetQuery, greetResult](b, greetHandler(&calls)))
	assert.NoError(t, AddValidator[greetQuery](b, ValidatorFunc[greetQuery](nameRequired)))
	m, err := b.Build()
	assert.NoError(t, err)

	_, err = Send[greetResult](context.Background(), m, greetQuery{})
	assert.Error(t, err)
	assert.Zero(t, len(rec.messages(slog.LevelInfo)))
}
