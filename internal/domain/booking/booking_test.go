package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func testRange(t *testing.T, checkIn, checkOut string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func validParams(t *testing.T) CreateParams {
	t.Helper()
	return CreateParams{
		ID:        "bk-1",
		ListingID: "ls-1",
		UserID:    "usr-1",
		Range:     testRange(t, "2026-10-20", "2026-10-25"),
		People:    2,
		Capacity:  4,
		CreatedAt: testNow,
	}
}

func TestNewBooking(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status)
	require.NotNil(t, b.ExpiresAt)
	assert.Equal(t, testNow.Add(HoldWindow), *b.ExpiresAt)
	assert.Equal(t, testNow, b.CreatedAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
	assert.Equal(t, "bk-1", events[0].AggregateID())
}

func TestNewBookingRejectsBadPartySize(t *testing.T) {
	params := validParams(t)
	params.People = 0
	_, err := NewBooking(params)
	assert.ErrorIs(t, err, ErrInvalidPeople)

	params.People = 5
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrInvalidPeople)
}

func TestNewBookingLeadTime(t *testing.T) {
	params := validParams(t)
	params.Range = testRange(t, "2026-10-10", "2026-10-12")
	_, err := NewBooking(params)
	assert.ErrorIs(t, err, ErrCheckInTooSoon)

	// Exactly ten calendar days out is allowed regardless of time of day.
	params.Range = testRange(t, "2026-10-11", "2026-10-13")
	params.CreatedAt = time.Date(2026, 10, 1, 23, 30, 0, 0, time.UTC)
	_, err = NewBooking(params)
	assert.NoError(t, err)
}

func TestConfirm(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)
	b.ClearEvents()

	total := money.Must(60000, "INR")
	later := testNow.Add(time.Hour)
	require.NoError(t, b.Confirm(total, later))

	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Nil(t, b.ExpiresAt)
	assert.Equal(t, later, b.UpdatedAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.confirmed", events[0].EventName())

	assert.ErrorIs(t, b.Confirm(total, later), ErrInvalidState)
}

func TestUnpayRestoresOriginalHold(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)
	require.NoError(t, b.Confirm(money.Must(60000, "INR"), testNow.Add(time.Hour)))
	b.ClearEvents()

	require.NoError(t, b.Unpay(testNow.Add(2*time.Hour)))

	assert.Equal(t, StatusPending, b.Status)
	require.NotNil(t, b.ExpiresAt)
	// The hold is re-anchored to creation time, not to the unpay moment.
	assert.Equal(t, b.CreatedAt.Add(HoldWindow), *b.ExpiresAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.reverted", events[0].EventName())

	assert.ErrorIs(t, b.Unpay(testNow), ErrInvalidState)
}

func TestLapsed(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)

	assert.False(t, b.Lapsed(testNow))
	assert.False(t, b.Lapsed(testNow.Add(HoldWindow-time.Second)))
	assert.True(t, b.Lapsed(testNow.Add(HoldWindow)))

	require.NoError(t, b.Confirm(money.Must(100, "INR"), testNow))
	assert.False(t, b.Lapsed(testNow.Add(48*time.Hour)))
}

func TestOwnedBy(t *testing.T) {
	b, err := NewBooking(validParams(t))
	require.NoError(t, err)

	assert.True(t, b.OwnedBy("usr-1"))
	assert.False(t, b.OwnedBy("usr-2"))
}
