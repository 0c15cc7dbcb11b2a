package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"staybook/internal/app/uow"
	domainaccounting "staybook/internal/domain/accounting"
	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainuser "staybook/internal/domain/user"
)

// ListingRepository is an in-memory implementation used in tests and demos.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[domainlisting.ID]*domainlisting.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[l.ID]; ok && stored.Version != l.Version {
		return uow.ErrConcurrentUpdate
	}
	saved := cloneListing(l)
	saved.Version++
	saved.ClearEvents()
	r.items[l.ID] = saved
	l.Version = saved.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) ([]*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainlisting.Listing, 0, len(r.items))
	for _, l := range r.items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if !l.MatchesLocation(params.Location) {
			continue
		}
		if params.MinCapacity > 0 && l.Capacity < params.MinCapacity {
			continue
		}
		matches = append(matches, cloneListing(l))
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

// BookingRepository stores bookings in memory with the same optimistic
// versioning contract as the mongo implementation.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[b.ID]; ok && stored.Version != b.Version {
		return uow.ErrConcurrentUpdate
	}
	saved := cloneBooking(b)
	saved.Version++
	saved.ClearEvents()
	r.items[b.ID] = saved
	b.Version = saved.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) ActiveByListing(ctx context.Context, listingID domainlisting.ID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.ListingID != listingID {
			continue
		}
		if b.Status != domainbooking.StatusPending && b.Status != domainbooking.StatusConfirmed {
			continue
		}
		matches = append(matches, cloneBooking(b))
	}
	sortBookings(matches)
	return matches, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.UserID == userID {
			matches = append(matches, cloneBooking(b))
		}
	}
	sortBookings(matches)
	return matches, nil
}

func (r *BookingRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.Lapsed(cutoff) {
			matches = append(matches, cloneBooking(b))
		}
	}
	sortBookings(matches)
	return matches, nil
}

// AccountingRepository keeps payment records in memory.
type AccountingRepository struct {
	mu    sync.RWMutex
	items map[domainaccounting.ID]*domainaccounting.Record
}

func NewAccountingRepository() *AccountingRepository {
	return &AccountingRepository{items: make(map[domainaccounting.ID]*domainaccounting.Record)}
}

func (r *AccountingRepository) Save(ctx context.Context, rec *domainaccounting.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *rec
	r.items[rec.ID] = &saved
	return nil
}

func (r *AccountingRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) ([]*domainaccounting.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainaccounting.Record, 0)
	for _, rec := range r.items {
		if rec.BookingID == bookingID {
			copied := *rec
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches, nil
}

func (r *AccountingRepository) DeleteByBooking(ctx context.Context, bookingID domainbooking.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, rec := range r.items {
		if rec.BookingID == bookingID {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

func (r *AccountingRepository) ListByPayee(ctx context.Context, payee domainuser.ID) ([]*domainaccounting.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainaccounting.Record, 0)
	for _, rec := range r.items {
		if rec.Payee == payee {
			copied := *rec
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches, nil
}

func cloneListing(l *domainlisting.Listing) *domainlisting.Listing {
	copied := *l
	return &copied
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	copied := *b
	if b.ExpiresAt != nil {
		expires := *b.ExpiresAt
		copied.ExpiresAt = &expires
	}
	return &copied
}

func sortBookings(items []*domainbooking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

var _ domainlisting.Repository = (*ListingRepository)(nil)
var _ domainbooking.Repository = (*BookingRepository)(nil)
var _ domainaccounting.Repository = (*AccountingRepository)(nil)
