package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

type fixture struct {
	factory  memory.Factory
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	outbox   *memory.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		listings: memory.NewListingRepository(),
		bookings: memory.NewBookingRepository(),
		outbox:   memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		ListingRepo:    f.listings,
		BookingRepo:    f.bookings,
		AccountingRepo: memory.NewAccountingRepository(),
		UserRepo:       memory.NewUserRepository(),
	}
	return f
}

func (f *fixture) seedListing(t *testing.T, id string, capacity int) *domainlisting.Listing {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:       domainlisting.ID(id),
		Owner:    "owner-1",
		Title:    "Lakeside cabin",
		Price:    money.Must(10000, "INR"),
		Location: "Manali",
		Capacity: capacity,
	})
	require.NoError(t, err)
	l.ClearEvents()
	require.NoError(t, f.listings.Save(context.Background(), l))
	return l
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "ls-1", 4)

	handler := &CreateBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	res, err := handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "ls-1",
		UserID:    "usr-1",
		CheckIn:   futureDate(15),
		CheckOut:  futureDate(18),
		People:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, "bk-1", res.BookingID)
	assert.False(t, res.ExpiresAt.IsZero())

	saved, err := f.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, saved.Status)
	assert.Equal(t, 2, saved.People)
	assert.Empty(t, saved.PendingEvents())

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "booking.requested", pending[0].Name)
}

func TestCreateBookingUnknownListing(t *testing.T) {
	f := newFixture(t)
	handler := &CreateBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	_, err := handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "missing",
		UserID:    "usr-1",
		CheckIn:   futureDate(15),
		CheckOut:  futureDate(18),
		People:    2,
	})
	assert.ErrorIs(t, err, domainlisting.ErrNotFound)
}

func TestCreateBookingValidationOrder(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "ls-1", 4)
	handler := &CreateBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	// Party size is rejected before the malformed dates are even parsed.
	_, err := handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "ls-1",
		UserID:    "usr-1",
		CheckIn:   "garbage",
		CheckOut:  "garbage",
		People:    9,
	})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidPeople)

	_, err = handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-2",
		ListingID: "ls-1",
		UserID:    "usr-1",
		CheckIn:   futureDate(18),
		CheckOut:  futureDate(15),
		People:    2,
	})
	assert.ErrorIs(t, err, domainrange.ErrInvalidRange)

	_, err = handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-3",
		ListingID: "ls-1",
		UserID:    "usr-1",
		CheckIn:   futureDate(9),
		CheckOut:  futureDate(12),
		People:    2,
	})
	assert.ErrorIs(t, err, domainbooking.ErrCheckInTooSoon)
}

func TestCreateBookingOverlap(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "ls-1", 4)
	handler := &CreateBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	first, err := handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "ls-1",
		UserID:    "usr-1",
		CheckIn:   futureDate(15),
		CheckOut:  futureDate(20),
		People:    2,
	})
	require.NoError(t, err)
	require.Equal(t, "bk-1", first.BookingID)

	_, err = handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-2",
		ListingID: "ls-1",
		UserID:    "usr-2",
		CheckIn:   futureDate(17),
		CheckOut:  futureDate(22),
		People:    2,
	})
	assert.ErrorIs(t, err, domainbooking.ErrDatesUnavailable)

	// Back-to-back with the existing stay is allowed.
	_, err = handler.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-3",
		ListingID: "ls-1",
		UserID:    "usr-2",
		CheckIn:   futureDate(20),
		CheckOut:  futureDate(23),
		People:    2,
	})
	assert.NoError(t, err)
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "ls-1", 4)

	create := &CreateBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := create.Handle(context.Background(), CreateBookingCommand{
		CommandID: "bk-1",
		ListingID: "ls-1",
		UserID:    "usr-1",
		CheckIn:   futureDate(15),
		CheckOut:  futureDate(18),
		People:    2,
	})
	require.NoError(t, err)

	del := &DeleteBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}

	_, err = del.Handle(context.Background(), DeleteBookingCommand{BookingID: "bk-1", RequesterID: "usr-2"})
	assert.ErrorIs(t, err, domainbooking.ErrForbidden)

	res, err := del.Handle(context.Background(), DeleteBookingCommand{BookingID: "bk-1", RequesterID: "usr-1"})
	require.NoError(t, err)
	assert.Equal(t, "bk-1", res.BookingID)

	_, err = f.bookings.ByID(context.Background(), "bk-1")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	pending := f.outbox.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "booking.deleted", pending[1].Name)

	_, err = del.Handle(context.Background(), DeleteBookingCommand{BookingID: "bk-1", RequesterID: "usr-1"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}
