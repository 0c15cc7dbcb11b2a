package listings

import (
	"context"

	"staybook/internal/app/availability"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlisting "staybook/internal/domain/listing"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

const searchKey = "listings.search"

// SearchQuery finds listings in a location with enough capacity, excluding
// those already booked over the requested dates. Dates are optional; without
// them only location and capacity filter the result.
type SearchQuery struct {
	Location string
	CheckIn  string
	CheckOut string
	People   int
}

func (q SearchQuery) Key() string { return searchKey }

type ListingSummary struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Capacity    int         `json:"capacity"`
	Price       money.Money `json:"price"`
	PhotoURL    string      `json:"photo_url,omitempty"`
}

type SearchResult struct {
	Listings []ListingSummary `json:"listings"`
}

type SearchHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	people := q.People
	if people < 1 {
		people = 1
	}

	var dr domainrange.DateRange
	filterDates := q.CheckIn != "" || q.CheckOut != ""
	if filterDates {
		dr, err = domainrange.Parse(q.CheckIn, q.CheckOut)
		if err != nil {
			return nil, err
		}
	}

	matches, err := unit.Listings().Search(ctx, domainlisting.SearchParams{
		Location:    q.Location,
		MinCapacity: people,
	})
	if err != nil {
		return nil, err
	}

	out := &SearchResult{Listings: make([]ListingSummary, 0, len(matches))}
	for _, l := range matches {
		if filterDates {
			free, err := availability.IsAvailable(ctx, unit.Bookings(), l.ID, dr, "")
			if err != nil {
				return nil, err
			}
			if !free {
				continue
			}
		}
		out.Listings = append(out.Listings, summarize(l))
	}
	return out, nil
}

func summarize(l *domainlisting.Listing) ListingSummary {
	return ListingSummary{
		ID:          string(l.ID),
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Capacity:    l.Capacity,
		Price:       l.Price,
		PhotoURL:    l.PhotoURL,
	}
}

var _ queries.Handler[SearchQuery, *SearchResult] = (*SearchHandler)(nil)
