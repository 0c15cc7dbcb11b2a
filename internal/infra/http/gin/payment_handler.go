package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	PaymentApp "staybook/internal/app/handlers/payment"
	"staybook/internal/app/queries"
)

type PaymentHTTP interface {
	Breakdown(c *gin.Context)
	Confirm(c *gin.Context)
	Unpay(c *gin.Context)
	MyPayments(c *gin.Context)
}

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

// Breakdown shows the charge sheet for a booking before it is paid.
func (h PaymentHandler) Breakdown(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := PaymentApp.BreakdownQuery{BookingID: c.Param("id"), RequesterID: p.ID}
	result, err := queries.Ask[PaymentApp.BreakdownQuery, *PaymentApp.BreakdownResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) Confirm(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := PaymentApp.ConfirmPaymentCommand{
		CommandID:       uuid.NewString(),
		BookingID:       c.Param("id"),
		RequesterID:     p.ID,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[PaymentApp.ConfirmPaymentCommand, *PaymentApp.ConfirmPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) Unpay(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := PaymentApp.UnpayCommand{
		BookingID:   c.Param("id"),
		RequesterID: p.ID,
	}
	result, err := commands.Dispatch[PaymentApp.UnpayCommand, *PaymentApp.UnpayResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MyPayments lists the accounting records paid out to the given email.
func (h PaymentHandler) MyPayments(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}
	q := PaymentApp.MyPaymentsQuery{Email: c.Param("email")}
	result, err := queries.Ask[PaymentApp.MyPaymentsQuery, *PaymentApp.MyPaymentsResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
