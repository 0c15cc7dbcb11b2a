package accounting

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

var (
	ErrNotFound        = errors.New("accounting: record not found")
	ErrBookingRequired = errors.New("accounting: booking reference is required")
	ErrPayeeRequired   = errors.New("accounting: payee is required")
)

const (
	// TaxPercent is the GST rate applied to the base amount.
	TaxPercent int64 = 18
	// PlatformPercent is the platform fee rate applied to the base amount.
	PlatformPercent int64 = 2
)

type ID string

// Record is a ledger entry created when a booking is paid. Payee is the
// listing owner; the record references the booking rather than embedding it.
type Record struct {
	ID        ID
	BookingID booking.ID
	Payee     user.ID
	Base      money.Money
	Tax       money.Money
	Platform  money.Money
	Total     money.Money
	CreatedAt time.Time
}

type Repository interface {
	Save(ctx context.Context, record *Record) error
	ByBooking(ctx context.Context, bookingID booking.ID) ([]*Record, error)
	// DeleteByBooking removes every record referencing the booking and reports
	// how many were removed.
	DeleteByBooking(ctx context.Context, bookingID booking.ID) (int64, error)
	ListByPayee(ctx context.Context, payee user.ID) ([]*Record, error)
}

// Charges is the computed payment breakdown for a stay.
type Charges struct {
	Nights   int
	Base     money.Money
	Tax      money.Money
	Platform money.Money
	Total    money.Money
}

// ComputeCharges derives the ledger amounts from a nightly price and stay
// length: base = price * nights, tax = 18% of base, platform fee = 2% of base.
func ComputeCharges(nightlyPrice money.Money, nights int) Charges {
	base := nightlyPrice.Multiply(int64(nights))
	tax := base.Percent(TaxPercent)
	platform := base.Percent(PlatformPercent)
	total := base
	total, _ = total.Add(tax)
	total, _ = total.Add(platform)
	return Charges{
		Nights:   nights,
		Base:     base,
		Tax:      tax,
		Platform: platform,
		Total:    total,
	}
}

type CreateParams struct {
	ID        ID
	BookingID booking.ID
	Payee     user.ID
	Charges   Charges
	CreatedAt time.Time
}

func NewRecord(params CreateParams) (*Record, error) {
	if params.ID == "" {
		return nil, errors.New("accounting: id is required")
	}
	if params.BookingID == "" {
		return nil, ErrBookingRequired
	}
	if params.Payee == "" {
		return nil, ErrPayeeRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Record{
		ID:        params.ID,
		BookingID: params.BookingID,
		Payee:     params.Payee,
		Base:      params.Charges.Base,
		Tax:       params.Charges.Tax,
		Platform:  params.Charges.Platform,
		Total:     params.Charges.Total,
		CreatedAt: now.UTC(),
	}, nil
}
