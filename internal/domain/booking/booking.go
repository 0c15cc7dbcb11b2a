package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/listing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

var (
	ErrNotFound         = errors.New("booking: not found")
	ErrForbidden        = errors.New("booking: requester does not own this booking")
	ErrInvalidPeople    = errors.New("booking: people count exceeds listing capacity or is below 1")
	ErrCheckInTooSoon   = errors.New("booking: check-in must be at least 10 days from today")
	ErrDatesUnavailable = errors.New("booking: listing is not available for the selected dates")
	ErrInvalidState     = errors.New("booking: invalid state transition")
)

const (
	// MinLeadDays is the minimum number of calendar days between booking and check-in.
	MinLeadDays = 10
	// HoldWindow is how long an unpaid booking stays pending before it expires.
	HoldWindow = 24 * time.Hour
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// Booking is a reservation hold for a listing over a half-open date range.
// ExpiresAt is set only while the booking is pending.
type Booking struct {
	ID        ID
	ListingID listing.ID
	UserID    user.ID
	Range     daterange.DateRange
	People    int
	Status    Status
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id ID) error
	// ActiveByListing returns pending and confirmed bookings for a listing.
	ActiveByListing(ctx context.Context, listingID listing.ID) ([]*Booking, error)
	ListByUser(ctx context.Context, userID user.ID) ([]*Booking, error)
	// ListExpired returns pending bookings whose hold lapsed before the cutoff.
	ListExpired(ctx context.Context, cutoff time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID        ID
	ListingID listing.ID
	UserID    user.ID
	Range     daterange.DateRange
	People    int
	Capacity  int
	CreatedAt time.Time
}

// NewBooking builds a pending booking with a 24 hour payment hold. Capacity is
// the listing limit the party size is checked against; date availability is the
// caller's concern.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.People < 1 || params.People > params.Capacity {
		return nil, ErrInvalidPeople
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.UserID == "" {
		return nil, errors.New("booking: user id required")
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	if params.Range.DaysUntilCheckIn(now) < MinLeadDays {
		return nil, ErrCheckInTooSoon
	}
	expires := now.Add(HoldWindow)
	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		UserID:    params.UserID,
		Range:     params.Range,
		People:    params.People,
		Status:    StatusPending,
		ExpiresAt: &expires,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(Requested{BookingID: b.ID, ListingID: b.ListingID, UserID: b.UserID, Range: b.Range, People: b.People, At: now})
	return b, nil
}

// OwnedBy reports whether the requester placed this booking.
func (b *Booking) OwnedBy(requester user.ID) bool {
	return b.UserID == requester
}

// Confirm moves a pending booking to confirmed and drops the payment hold.
func (b *Booking) Confirm(total money.Money, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.ExpiresAt = nil
	b.UpdatedAt = now.UTC()
	b.Record(Confirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, Total: total, At: b.UpdatedAt})
	return nil
}

// Unpay reverts a confirmed booking to pending. The hold expiry is anchored to
// the original creation time, not to now.
func (b *Booking) Unpay(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusPending
	expires := b.CreatedAt.Add(HoldWindow)
	b.ExpiresAt = &expires
	b.UpdatedAt = now.UTC()
	b.Record(Reverted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// Lapsed reports whether the pending hold has expired.
func (b *Booking) Lapsed(at time.Time) bool {
	if b.Status != StatusPending || b.ExpiresAt == nil {
		return false
	}
	return !b.ExpiresAt.After(at.UTC())
}
