package support_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/uow"
	"staybook/internal/infra/storage/memory"
)

type sessionKey struct{}

// sessionUnit wraps a memory unit with its own context state, the way the
// mongo unit carries a session that repositories resolve downstream.
type sessionUnit struct {
	uow.UnitOfWork
}

func (u *sessionUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, "bound")
}

type sessionFactory struct {
	inner memory.Factory
}

func (f sessionFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &sessionUnit{UnitOfWork: unit}, nil
}

func newSessionFactory() sessionFactory {
	return sessionFactory{inner: memory.Factory{
		ListingRepo:    memory.NewListingRepository(),
		BookingRepo:    memory.NewBookingRepository(),
		AccountingRepo: memory.NewAccountingRepository(),
		UserRepo:       memory.NewUserRepository(),
	}}
}

func TestStartWriteUnitBindsSessionState(t *testing.T) {
	unit, ctx, err := support.StartWriteUnit(context.Background(), newSessionFactory())
	require.NoError(t, err)
	require.NotNil(t, unit)

	found, ok := uow.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, unit, found)
	assert.Equal(t, "bound", ctx.Value(sessionKey{}), "unit session state must reach the context")
}

func TestBeginReadOnlyUnitJoinsExisting(t *testing.T) {
	factory := newSessionFactory()
	outer, outerCtx, err := support.StartWriteUnit(context.Background(), factory)
	require.NoError(t, err)

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(outerCtx, factory)
	require.NoError(t, err)
	assert.Same(t, outer, unit)
	assert.Nil(t, cleanup)
	assert.Equal(t, outerCtx, ctx)
}

func TestBeginReadOnlyUnitStartsAndBinds(t *testing.T) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(context.Background(), newSessionFactory())
	require.NoError(t, err)
	require.NotNil(t, unit)
	require.NotNil(t, cleanup)
	defer cleanup()

	assert.Equal(t, "bound", ctx.Value(sessionKey{}))
}

func TestBeginReadOnlyUnitRequiresFactory(t *testing.T) {
	_, _, _, err := support.BeginReadOnlyUnit(context.Background(), nil)
	assert.ErrorIs(t, err, uow.ErrUnitOfWorkMissing)
}
