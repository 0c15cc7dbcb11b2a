package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/availability"
	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainrange "staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

const createBookingKey = "booking.create"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

// CreateBookingCommand carries dates as strings so parsing happens in the
// documented validation order, after the listing and party-size checks.
type CreateBookingCommand struct {
	CommandID       string
	ListingID       string
	UserID          string
	CheckIn         string
	CheckOut        string
	People          int
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID string    `json:"booking_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

// Handle validates in order: listing exists, party size, date parsing and
// ordering, booking lead time, then date availability. First failure wins.
func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
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

	listing, err := unit.Listings().ByID(ctx, domainlisting.ID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	if !listing.FitsPeople(cmd.People) {
		return nil, domainbooking.ErrInvalidPeople
	}

	dr, err := domainrange.Parse(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if dr.DaysUntilCheckIn(now) < domainbooking.MinLeadDays {
		return nil, domainbooking.ErrCheckInTooSoon
	}

	free, err := availability.IsAvailable(ctx, unit.Bookings(), listing.ID, dr, "")
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, domainbooking.ErrDatesUnavailable
	}

	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.ID(cmd.CommandID),
		ListingID: listing.ID,
		UserID:    domainuser.ID(cmd.UserID),
		Range:     dr,
		People:    cmd.People,
		Capacity:  listing.Capacity,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
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

	result := &CreateBookingResult{BookingID: string(bk.ID)}
	if bk.ExpiresAt != nil {
		result.ExpiresAt = *bk.ExpiresAt
	}
	return result, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
