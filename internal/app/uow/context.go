package uow

import (
	"context"
	"errors"
)

// ErrUnitOfWorkMissing is returned by code that needs a unit bound to the
// context and finds none.
var ErrUnitOfWorkMissing = errors.New("uow: no unit of work in context")

type contextKey struct{}

// contextBinder is implemented by units that carry session state of their
// own, such as a Mongo session, which repositories resolve from the context.
type contextBinder interface {
	InjectContext(ctx context.Context) context.Context
}

// Bind attaches the unit to the context for downstream repositories. Units
// implementing contextBinder get to bind their session state first; skipping
// that step would silently run their writes outside the transaction.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if binder, ok := unit.(contextBinder); ok {
		ctx = binder.InjectContext(ctx)
	}
	return ContextWithUnitOfWork(ctx, unit)
}

// ContextWithUnitOfWork attaches the unit itself without session state. Most
// callers want Bind.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, contextKey{}, unit)
}

// FromContext returns the unit bound to ctx, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(contextKey{}).(UnitOfWork)
	return unit, ok
}
