package support

import (
	"context"

	"staybook/internal/app/uow"
)

// BeginReadOnlyUnit joins the unit of work from context or starts a read-only
// one. The cleanup func is nil when the unit was joined rather than started.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// StartWriteUnit begins a writable unit of work and binds it to the returned
// context. The caller owns commit and rollback.
func StartWriteUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, error) {
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, err
	}
	return unit, uow.Bind(ctx, unit), nil
}
