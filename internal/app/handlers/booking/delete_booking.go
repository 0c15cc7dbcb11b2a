package booking

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/events"
	domainuser "staybook/internal/domain/user"
)

const deleteBookingKey = "booking.delete"

type DeleteBookingCommand struct {
	BookingID   string
	RequesterID string
}

func (c DeleteBookingCommand) Key() string { return deleteBookingKey }

type DeleteBookingResult struct {
	BookingID string `json:"booking_id"`
}

type DeleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

// Handle hard-deletes the requester's booking. Any status may be deleted; a
// confirmed booking keeps its accounting record (see payment.unpay for the
// revert path).
func (h *DeleteBookingHandler) Handle(ctx context.Context, cmd DeleteBookingCommand) (*DeleteBookingResult, error) {
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

	if err := unit.Bookings().Delete(ctx, bk.ID); err != nil {
		return nil, err
	}

	ev := domainbooking.Deleted{BookingID: bk.ID, ListingID: bk.ListingID, At: time.Now().UTC()}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), []events.DomainEvent{ev}); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &DeleteBookingResult{BookingID: string(bk.ID)}, nil
}

func (h *DeleteBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[DeleteBookingCommand, *DeleteBookingResult] = (*DeleteBookingHandler)(nil)
