package listing

import (
	"time"

	"staybook/internal/domain/user"
)

type Created struct {
	ListingID ID
	Owner     user.ID
	Location  string
	At        time.Time
}

func (e Created) EventName() string     { return "listing.created" }
func (e Created) AggregateID() string   { return string(e.ListingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type PhotoAdded struct {
	ListingID ID
	URL       string
	At        time.Time
}

func (e PhotoAdded) EventName() string     { return "listing.photo_added" }
func (e PhotoAdded) AggregateID() string   { return string(e.ListingID) }
func (e PhotoAdded) OccurredAt() time.Time { return e.At }
