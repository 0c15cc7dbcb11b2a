package payment

import (
	"context"
	"time"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

const myPaymentsKey = "payment.by_payee"

// MyPaymentsQuery lists the accounting records paid out to the user with the
// given email, i.e. what an owner has earned.
type MyPaymentsQuery struct {
	Email string
}

func (q MyPaymentsQuery) Key() string { return myPaymentsKey }

type PayeeRecord struct {
	AccountingID string      `json:"accounting_id"`
	BookingID    string      `json:"booking_id"`
	Base         money.Money `json:"base_amount"`
	Tax          money.Money `json:"tax_amount"`
	Platform     money.Money `json:"platform_amount"`
	Total        money.Money `json:"total_amount"`
	CreatedAt    time.Time   `json:"created_at"`
}

type MyPaymentsResult struct {
	PayeeID string        `json:"payee_id"`
	Email   string        `json:"email"`
	Records []PayeeRecord `json:"records"`
}

type MyPaymentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *MyPaymentsHandler) Handle(ctx context.Context, q MyPaymentsQuery) (*MyPaymentsResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	payee, err := unit.Users().ByEmail(ctx, domainuser.NormalizeEmail(q.Email))
	if err != nil {
		return nil, err
	}

	records, err := unit.Accounting().ListByPayee(ctx, payee.ID)
	if err != nil {
		return nil, err
	}

	out := &MyPaymentsResult{
		PayeeID: string(payee.ID),
		Email:   payee.Email,
		Records: make([]PayeeRecord, 0, len(records)),
	}
	for _, rec := range records {
		out.Records = append(out.Records, PayeeRecord{
			AccountingID: string(rec.ID),
			BookingID:    string(rec.BookingID),
			Base:         rec.Base,
			Tax:          rec.Tax,
			Platform:     rec.Platform,
			Total:        rec.Total,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return out, nil
}

var _ queries.Handler[MyPaymentsQuery, *MyPaymentsResult] = (*MyPaymentsHandler)(nil)
