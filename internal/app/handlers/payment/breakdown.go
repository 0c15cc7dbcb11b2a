package payment

import (
	"context"
	"time"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainaccounting "staybook/internal/domain/accounting"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

const breakdownKey = "payment.breakdown"

type BreakdownQuery struct {
	BookingID   string
	RequesterID string
}

func (q BreakdownQuery) Key() string { return breakdownKey }

// BreakdownResult is the computed charge sheet shown before paying.
type BreakdownResult struct {
	BookingID    string      `json:"booking_id"`
	ListingID    string      `json:"listing_id"`
	ListingTitle string      `json:"listing_title"`
	Status       string      `json:"status"`
	CheckIn      time.Time   `json:"check_in"`
	CheckOut     time.Time   `json:"check_out"`
	People       int         `json:"people"`
	Nights       int         `json:"nights"`
	Base         money.Money `json:"base_amount"`
	Tax          money.Money `json:"tax_amount"`
	Platform     money.Money `json:"platform_amount"`
	Total        money.Money `json:"total_amount"`
}

type BreakdownHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *BreakdownHandler) Handle(ctx context.Context, q BreakdownQuery) (*BreakdownResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.ID(q.BookingID))
	if err != nil {
		return nil, err
	}
	if !bk.OwnedBy(domainuser.ID(q.RequesterID)) {
		return nil, domainbooking.ErrForbidden
	}

	listing, err := unit.Listings().ByID(ctx, bk.ListingID)
	if err != nil {
		return nil, err
	}

	charges := domainaccounting.ComputeCharges(listing.Price, bk.Range.Nights())
	return &BreakdownResult{
		BookingID:    string(bk.ID),
		ListingID:    string(listing.ID),
		ListingTitle: listing.Title,
		Status:       string(bk.Status),
		CheckIn:      bk.Range.CheckIn,
		CheckOut:     bk.Range.CheckOut,
		People:       bk.People,
		Nights:       charges.Nights,
		Base:         charges.Base,
		Tax:          charges.Tax,
		Platform:     charges.Platform,
		Total:        charges.Total,
	}, nil
}

var _ queries.Handler[BreakdownQuery, *BreakdownResult] = (*BreakdownHandler)(nil)
