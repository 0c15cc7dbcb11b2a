package listings

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlisting "staybook/internal/domain/listing"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

const createListingKey = "listings.create"

var ErrUnitOfWorkRequired = errors.New("listings: unit of work required")

type CreateListingCommand struct {
	CommandID       string
	OwnerID         string
	Title           string
	Description     string
	Price           int64
	Currency        string
	Location        string
	Capacity        int
	IdempotencyKeyV string
}

func (c CreateListingCommand) Key() string { return createListingKey }

func (c CreateListingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateListingCommand) ResultPrototype() any { return &CreateListingResult{} }

type CreateListingResult struct {
	ListingID string `json:"listing_id"`
}

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*CreateListingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, ctx, err = support.StartWriteUnit(ctx, h.UoWFactory)
		if err != nil {
			return nil, err
		}
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	currency := cmd.Currency
	if currency == "" {
		currency = "INR"
	}
	price, err := money.New(cmd.Price, currency)
	if err != nil {
		return nil, err
	}

	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          domainlisting.ID(cmd.CommandID),
		Owner:       domainuser.ID(cmd.OwnerID),
		Title:       cmd.Title,
		Description: cmd.Description,
		Price:       price,
		Location:    cmd.Location,
		Capacity:    cmd.Capacity,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, l); err != nil {
		return nil, err
	}

	pending := l.PendingEvents()
	l.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &CreateListingResult{ListingID: string(l.ID)}, nil
}

func (h *CreateListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateListingCommand, *CreateListingResult] = (*CreateListingHandler)(nil)
var _ middleware.IdempotentCommand = CreateListingCommand{}
