package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainaccounting "staybook/internal/domain/accounting"
	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainuser "staybook/internal/domain/user"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingRepo    domainlisting.Repository
	BookingRepo    domainbooking.Repository
	AccountingRepo domainaccounting.Repository
	UserRepo       domainuser.Repository
}

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingRepo == nil || f.BookingRepo == nil || f.AccountingRepo == nil || f.UserRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:   f.ListingRepo,
		bookings:   f.BookingRepo,
		accounting: f.AccountingRepo,
		users:      f.UserRepo,
	}, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings   domainlisting.Repository
	bookings   domainbooking.Repository
	accounting domainaccounting.Repository
	users      domainuser.Repository
}

func (u *Unit) Listings() domainlisting.Repository      { return u.listings }
func (u *Unit) Bookings() domainbooking.Repository      { return u.bookings }
func (u *Unit) Accounting() domainaccounting.Repository { return u.accounting }
func (u *Unit) Users() domainuser.Repository            { return u.users }
func (u *Unit) Commit(ctx context.Context) error        { return nil }
func (u *Unit) Rollback(ctx context.Context) error      { return nil }

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
