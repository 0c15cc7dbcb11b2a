package me

import (
	"context"
	"time"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainuser "staybook/internal/domain/user"
)

const myBookingsKey = "me.bookings"

type MyBookingsQuery struct {
	UserID string
}

func (q MyBookingsQuery) Key() string { return myBookingsKey }

type BookingSummary struct {
	BookingID string     `json:"booking_id"`
	ListingID string     `json:"listing_id"`
	CheckIn   time.Time  `json:"check_in"`
	CheckOut  time.Time  `json:"check_out"`
	People    int        `json:"people"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type MyBookingsResult struct {
	Bookings []BookingSummary `json:"bookings"`
}

type MyBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *MyBookingsHandler) Handle(ctx context.Context, q MyBookingsQuery) (*MyBookingsResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Bookings().ListByUser(ctx, domainuser.ID(q.UserID))
	if err != nil {
		return nil, err
	}

	out := &MyBookingsResult{Bookings: make([]BookingSummary, 0, len(items))}
	for _, b := range items {
		out.Bookings = append(out.Bookings, BookingSummary{
			BookingID: string(b.ID),
			ListingID: string(b.ListingID),
			CheckIn:   b.Range.CheckIn,
			CheckOut:  b.Range.CheckOut,
			People:    b.People,
			Status:    string(b.Status),
			ExpiresAt: b.ExpiresAt,
			CreatedAt: b.CreatedAt,
		})
	}
	return out, nil
}

var _ queries.Handler[MyBookingsQuery, *MyBookingsResult] = (*MyBookingsHandler)(nil)
