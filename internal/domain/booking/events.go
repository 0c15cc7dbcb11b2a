package booking

import (
	"time"

	"staybook/internal/domain/listing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/domain/user"
)

type Requested struct {
	BookingID ID
	ListingID listing.ID
	UserID    user.ID
	Range     daterange.DateRange
	People    int
	At        time.Time
}

func (e Requested) EventName() string     { return "booking.requested" }
func (e Requested) AggregateID() string   { return string(e.BookingID) }
func (e Requested) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	BookingID ID
	ListingID listing.ID
	Range     daterange.DateRange
	Total     money.Money
	At        time.Time
}

func (e Confirmed) EventName() string     { return "booking.confirmed" }
func (e Confirmed) AggregateID() string   { return string(e.BookingID) }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type Reverted struct {
	BookingID ID
	At        time.Time
}

func (e Reverted) EventName() string     { return "booking.reverted" }
func (e Reverted) AggregateID() string   { return string(e.BookingID) }
func (e Reverted) OccurredAt() time.Time { return e.At }

type Deleted struct {
	BookingID ID
	ListingID listing.ID
	At        time.Time
}

func (e Deleted) EventName() string     { return "booking.deleted" }
func (e Deleted) AggregateID() string   { return string(e.BookingID) }
func (e Deleted) OccurredAt() time.Time { return e.At }

type Expired struct {
	BookingID ID
	ListingID listing.ID
	At        time.Time
}

func (e Expired) EventName() string     { return "booking.expired" }
func (e Expired) AggregateID() string   { return string(e.BookingID) }
func (e Expired) OccurredAt() time.Time { return e.At }
