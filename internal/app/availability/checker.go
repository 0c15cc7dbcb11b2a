package availability

import (
	"context"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listing"
	"staybook/internal/domain/shared/daterange"
)

// IsAvailable reports whether the listing has no pending or confirmed booking
// overlapping the candidate range. Two half-open ranges [a,b) and [c,d) overlap
// when a < d && c < b, so back-to-back stays are allowed. Pass exclude to skip
// one booking, e.g. when re-validating an existing hold. Pure read.
func IsAvailable(ctx context.Context, bookings booking.Repository, listingID listing.ID, dr daterange.DateRange, exclude booking.ID) (bool, error) {
	active, err := bookings.ActiveByListing(ctx, listingID)
	if err != nil {
		return false, err
	}
	for _, b := range active {
		if exclude != "" && b.ID == exclude {
			continue
		}
		if b.Range.Overlaps(dr) {
			return false, nil
		}
	}
	return true, nil
}
