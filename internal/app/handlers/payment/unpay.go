package payment

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainuser "staybook/internal/domain/user"
)

const unpayKey = "payment.unpay"

type UnpayCommand struct {
	BookingID   string
	RequesterID string
}

func (c UnpayCommand) Key() string { return unpayKey }

type UnpayResult struct {
	BookingID      string    `json:"booking_id"`
	RemovedRecords int64     `json:"removed_records"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type UnpayHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

// Handle reverts a confirmed booking to pending: removes the accounting
// record(s) referencing it and re-arms the hold expiry anchored at the
// booking's original creation time.
func (h *UnpayHandler) Handle(ctx context.Context, cmd UnpayCommand) (*UnpayResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, ctx, err = support.StartWriteUnit(ctx, h.UoWFactory)
		if err != nil {
			return nil, err
		}
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if !bk.OwnedBy(domainuser.ID(cmd.RequesterID)) {
		return nil, domainbooking.ErrForbidden
	}

	if err := bk.Unpay(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	// Only after the revert is saved is it safe to drop the ledger entries,
	// matching the confirm path on storage without transactional rollback.
	removed, err := unit.Accounting().DeleteByBooking(ctx, bk.ID)
	if err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	result := &UnpayResult{BookingID: string(bk.ID), RemovedRecords: removed}
	if bk.ExpiresAt != nil {
		result.ExpiresAt = *bk.ExpiresAt
	}
	return result, nil
}

func (h *UnpayHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UnpayCommand, *UnpayResult] = (*UnpayHandler)(nil)
