package payment

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainaccounting "staybook/internal/domain/accounting"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

const confirmPaymentKey = "payment.confirm"

var ErrUnitOfWorkRequired = errors.New("payment: unit of work required")

type ConfirmPaymentCommand struct {
	CommandID       string
	BookingID       string
	RequesterID     string
	IdempotencyKeyV string
}

func (c ConfirmPaymentCommand) Key() string { return confirmPaymentKey }

func (c ConfirmPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ConfirmPaymentCommand) ResultPrototype() any { return &ConfirmPaymentResult{} }

type ConfirmPaymentResult struct {
	BookingID    string      `json:"booking_id"`
	AccountingID string      `json:"accounting_id"`
	Nights       int         `json:"nights"`
	Base         money.Money `json:"base_amount"`
	Tax          money.Money `json:"tax_amount"`
	Platform     money.Money `json:"platform_amount"`
	Total        money.Money `json:"total_amount"`
}

type ConfirmPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

// Handle settles a pending booking: computes the charges, flips the booking
// to confirmed and writes one accounting record for the listing owner. The
// booking is confirmed and saved before the ledger write so that a rejected
// confirmation, or a lost optimistic-version race, never leaves a record
// behind even on storage without transactional rollback.
func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
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

	bk, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if !bk.OwnedBy(domainuser.ID(cmd.RequesterID)) {
		return nil, domainbooking.ErrForbidden
	}

	listing, err := unit.Listings().ByID(ctx, bk.ListingID)
	if err != nil {
		return nil, err
	}

	charges := domainaccounting.ComputeCharges(listing.Price, bk.Range.Nights())
	now := time.Now().UTC()

	if err := bk.Confirm(charges.Total, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	record, err := domainaccounting.NewRecord(domainaccounting.CreateParams{
		ID:        domainaccounting.ID(cmd.CommandID),
		BookingID: bk.ID,
		Payee:     listing.Owner,
		Charges:   charges,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Accounting().Save(ctx, record); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &ConfirmPaymentResult{
		BookingID:    string(bk.ID),
		AccountingID: string(record.ID),
		Nights:       charges.Nights,
		Base:         charges.Base,
		Tax:          charges.Tax,
		Platform:     charges.Platform,
		Total:        charges.Total,
	}, nil
}

func (h *ConfirmPaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ConfirmPaymentCommand, *ConfirmPaymentResult] = (*ConfirmPaymentHandler)(nil)
var _ middleware.IdempotentCommand = ConfirmPaymentCommand{}
