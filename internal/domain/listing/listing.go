package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

var (
	ErrNotFound         = errors.New("listing: not found")
	ErrTitleRequired    = errors.New("listing: title is required")
	ErrLocationRequired = errors.New("listing: location is required")
	ErrInvalidCapacity  = errors.New("listing: capacity must be at least 1")
	ErrInvalidPrice     = errors.New("listing: nightly price must be positive")
	ErrNotOwned         = errors.New("listing: not owned by requester")
)

type ID string

// Listing is a rentable property record. Price is the nightly rate.
type Listing struct {
	ID          ID
	Owner       user.ID
	Title       string
	Description string
	Price       money.Money
	Location    string
	Capacity    int
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type SearchParams struct {
	// Location is matched as a case-insensitive substring of the listing location.
	Location    string
	MinCapacity int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
}

type CreateParams struct {
	ID          ID
	Owner       user.ID
	Title       string
	Description string
	Price       money.Money
	Location    string
	Capacity    int
	PhotoURL    string
	Now         time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listing: id is required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, errors.New("listing: owner is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(params.Location) == "" {
		return nil, ErrLocationRequired
	}
	if params.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if params.Price.Amount <= 0 || params.Price.Currency == "" {
		return nil, ErrInvalidPrice
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	l := &Listing{
		ID:          params.ID,
		Owner:       params.Owner,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Price:       params.Price,
		Location:    strings.TrimSpace(params.Location),
		Capacity:    params.Capacity,
		PhotoURL:    params.PhotoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.Record(Created{ListingID: l.ID, Owner: l.Owner, Location: l.Location, At: now})
	return l, nil
}

// MatchesLocation reports whether the listing location contains the query,
// case-insensitively. An empty query matches everything.
func (l *Listing) MatchesLocation(query string) bool {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Location), query)
}

// FitsPeople reports whether the listing can host the given party size.
func (l *Listing) FitsPeople(people int) bool {
	return people >= 1 && people <= l.Capacity
}

func (l *Listing) SetPhoto(url string, now time.Time) {
	l.PhotoURL = url
	l.touch(now)
}

func (l *Listing) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	l.UpdatedAt = now.UTC()
}
