package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/infra/storage/memory"
)

const testCommandKey = "test.command"

type testCommand struct {
	ID      string
	IdemKey string
}

func (c testCommand) Key() string            { return testCommandKey }
func (c testCommand) IdempotencyKey() string { return c.IdemKey }
func (c testCommand) ResultPrototype() any   { return &testResult{} }

type testResult struct {
	Value string `json:"value"`
}

func newMemoryFactory() memory.Factory {
	return memory.Factory{
		ListingRepo:    memory.NewListingRepository(),
		BookingRepo:    memory.NewBookingRepository(),
		AccountingRepo: memory.NewAccountingRepository(),
		UserRepo:       memory.NewUserRepository(),
	}
}

func TestIdempotencyReplaysResult(t *testing.T) {
	bus := commands.NewInMemoryBus()
	calls := 0
	commands.RegisterHandler(bus, testCommandKey, commands.HandlerFunc[testCommand, *testResult](
		func(ctx context.Context, cmd testCommand) (*testResult, error) {
			calls++
			return &testResult{Value: cmd.ID}, nil
		}))

	wrapped := middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	first, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "a", IdemKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, "a", first.Value)

	// Same key replays the stored result, even for a different payload.
	second, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "b", IdemKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, "a", second.Value)
	assert.Equal(t, 1, calls)

	// A blank key skips the store entirely.
	_, err = commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyReplaysError(t *testing.T) {
	bus := commands.NewInMemoryBus()
	calls := 0
	commands.RegisterHandler(bus, testCommandKey, commands.HandlerFunc[testCommand, *testResult](
		func(ctx context.Context, cmd testCommand) (*testResult, error) {
			calls++
			return nil, errors.New("boom")
		}))

	wrapped := middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	_, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "a", IdemKey: "k1"})
	require.EqualError(t, err, "boom")

	_, err = commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "a", IdemKey: "k1"})
	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestTransactionProvidesUnitOfWork(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, testCommandKey, commands.HandlerFunc[testCommand, *testResult](
		func(ctx context.Context, cmd testCommand) (*testResult, error) {
			if _, ok := uow.FromContext(ctx); !ok {
				return nil, middleware.ErrUnitOfWorkMissing
			}
			return &testResult{Value: "ok"}, nil
		}))

	wrapped := middleware.ChainCommands(bus, middleware.Transaction(newMemoryFactory(), nil))

	res, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Value)
}

func TestOutboxFlushRunsOnSuccessOnly(t *testing.T) {
	box := memory.NewOutbox()
	bus := commands.NewInMemoryBus()
	fail := false
	commands.RegisterHandler(bus, testCommandKey, commands.HandlerFunc[testCommand, *testResult](
		func(ctx context.Context, cmd testCommand) (*testResult, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return &testResult{}, nil
		}))

	wrapped := middleware.ChainCommands(bus, middleware.OutboxFlush(box))

	record := appoutbox.EventRecord{ID: "ev-1", Name: "test.event", OccurredAt: time.Now().UTC()}
	require.NoError(t, box.Add(context.Background(), record))
	_, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "a"})
	require.NoError(t, err)
	assert.Empty(t, box.Pending())

	fail = true
	record.ID = "ev-2"
	require.NoError(t, box.Add(context.Background(), record))
	_, err = commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{ID: "b"})
	require.Error(t, err)
	assert.Len(t, box.Pending(), 1)
}
