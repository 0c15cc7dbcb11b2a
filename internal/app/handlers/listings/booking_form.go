package listings

import (
	"context"
	"time"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainaccounting "staybook/internal/domain/accounting"
	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainrange "staybook/internal/domain/shared/daterange"
)

const bookingFormKey = "listings.booking_form"

// BookingFormQuery fetches everything the booking page needs: the listing,
// its owner's display name and the earliest allowed check-in date.
type BookingFormQuery struct {
	ListingID string
}

func (q BookingFormQuery) Key() string { return bookingFormKey }

type BookingFormResult struct {
	Listing      ListingSummary `json:"listing"`
	OwnerName    string         `json:"owner_name"`
	EarliestStay time.Time      `json:"earliest_check_in"`
	HoldHours    int            `json:"hold_hours"`
	TaxPercent   int64          `json:"tax_percent"`
	PlatformFee  int64          `json:"platform_fee_percent"`
}

type BookingFormHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *BookingFormHandler) Handle(ctx context.Context, q BookingFormQuery) (*BookingFormResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ID(q.ListingID))
	if err != nil {
		return nil, err
	}

	ownerName := ""
	if owner, err := unit.Users().ByID(ctx, l.Owner); err == nil {
		ownerName = owner.Name
	}

	earliest := domainrange.Midnight(time.Now()).AddDate(0, 0, domainbooking.MinLeadDays)
	return &BookingFormResult{
		Listing:      summarize(l),
		OwnerName:    ownerName,
		EarliestStay: earliest,
		HoldHours:    int(domainbooking.HoldWindow / time.Hour),
		TaxPercent:   domainaccounting.TaxPercent,
		PlatformFee:  domainaccounting.PlatformPercent,
	}, nil
}

var _ queries.Handler[BookingFormQuery, *BookingFormResult] = (*BookingFormHandler)(nil)
