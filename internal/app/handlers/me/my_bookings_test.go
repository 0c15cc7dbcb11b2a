package me

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybook/internal/domain/booking"
	domainrange "staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
)

func seedBooking(t *testing.T, repo *memory.BookingRepository, id, userID string, createdAt time.Time) {
	t.Helper()
	dr, err := domainrange.New(createdAt.AddDate(0, 0, 15), createdAt.AddDate(0, 0, 17))
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.ID(id),
		ListingID: "ls-1",
		UserID:    domainuser.ID(userID),
		Range:     dr,
		People:    2,
		Capacity:  4,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, repo.Save(context.Background(), b))
}

func TestMyBookings(t *testing.T) {
	bookings := memory.NewBookingRepository()
	factory := memory.Factory{
		ListingRepo:    memory.NewListingRepository(),
		BookingRepo:    bookings,
		AccountingRepo: memory.NewAccountingRepository(),
		UserRepo:       memory.NewUserRepository(),
	}

	now := time.Now().UTC()
	seedBooking(t, bookings, "bk-1", "usr-1", now.Add(-2*time.Hour))
	seedBooking(t, bookings, "bk-2", "usr-1", now.Add(-1*time.Hour))
	seedBooking(t, bookings, "bk-3", "usr-2", now)

	handler := &MyBookingsHandler{UoWFactory: factory}

	res, err := handler.Handle(context.Background(), MyBookingsQuery{UserID: "usr-1"})
	require.NoError(t, err)
	require.Len(t, res.Bookings, 2)
	// Most recent first.
	assert.Equal(t, "bk-2", res.Bookings[0].BookingID)
	assert.Equal(t, "bk-1", res.Bookings[1].BookingID)
	assert.Equal(t, string(domainbooking.StatusPending), res.Bookings[0].Status)
	require.NotNil(t, res.Bookings[0].ExpiresAt)

	res, err = handler.Handle(context.Background(), MyBookingsQuery{UserID: "usr-99"})
	require.NoError(t, err)
	assert.Empty(t, res.Bookings)
}
