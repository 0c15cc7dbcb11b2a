package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	listingapp "staybook/internal/app/handlers/listings"
	meapp "staybook/internal/app/handlers/me"
	paymentapp "staybook/internal/app/handlers/payment"
	"staybook/internal/app/middleware"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	users := memory.NewUserRepository()
	factory := memory.Factory{
		ListingRepo:    memory.NewListingRepository(),
		BookingRepo:    memory.NewBookingRepository(),
		AccountingRepo: memory.NewAccountingRepository(),
		UserRepo:       users,
	}
	box := memory.NewOutbox()

	svc := &authsvc.Service{
		Users:      users,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler(commandBus, bookingapp.DeleteBookingCommand{}.Key(), &bookingapp.DeleteBookingHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler(commandBus, paymentapp.ConfirmPaymentCommand{}.Key(), &paymentapp.ConfirmPaymentHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler(commandBus, paymentapp.UnpayCommand{}.Key(), &paymentapp.UnpayHandler{UoWFactory: factory, Outbox: box})
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{UoWFactory: factory, Outbox: box})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.SearchQuery{}.Key(), &listingapp.SearchHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, listingapp.BookingFormQuery{}.Key(), &listingapp.BookingFormHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, paymentapp.BreakdownQuery{}.Key(), &paymentapp.BreakdownHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, paymentapp.MyPaymentsQuery{}.Key(), &paymentapp.MyPaymentsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, meapp.MyBookingsQuery{}.Key(), &meapp.MyBookingsHandler{UoWFactory: factory})

	cmdBus := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	qryBus := middleware.ChainQueries(queryBus)

	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Auth:           AuthHandler{Service: svc},
		Listing:        ListingHandler{Commands: cmdBus, Queries: qryBus},
		Booking:        BookingHandler{Commands: cmdBus},
		Payment:        PaymentHandler{Commands: cmdBus, Queries: qryBus},
		Me:             MeHandler{Queries: qryBus},
		AuthMiddleware: AuthMiddleware{Service: svc}.Handle,
	})
	return server.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func registerUser(t *testing.T, h http.Handler, email, name string) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": "longenough",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	decode(t, w, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)

	w := doJSON(t, h, http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	h := newTestServer(t)

	ownerToken := registerUser(t, h, "owner@example.com", "Owner")
	guestToken := registerUser(t, h, "guest@example.com", "Guest")

	// The owner publishes a listing.
	w := doJSON(t, h, http.MethodPost, "/listings", ownerToken, map[string]any{
		"title":    "Beach house",
		"price":    10000,
		"location": "Goa",
		"capacity": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ListingID string `json:"listing_id"`
	}
	decode(t, w, &created)

	// Search works anonymously.
	w = doJSON(t, h, http.MethodGet, "/search?location=goa&people=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var search struct {
		Listings []struct {
			ID string `json:"id"`
		} `json:"listings"`
	}
	decode(t, w, &search)
	require.Len(t, search.Listings, 1)
	assert.Equal(t, created.ListingID, search.Listings[0].ID)

	// Booking without a token is rejected.
	bookURL := "/bookings/" + created.ListingID
	w = doJSON(t, h, http.MethodPost, bookURL, "", map[string]any{
		"check_in":  futureDate(15),
		"check_out": futureDate(17),
		"people":    2,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The guest places a two night hold.
	w = doJSON(t, h, http.MethodPost, bookURL, guestToken, map[string]any{
		"check_in":  futureDate(15),
		"check_out": futureDate(17),
		"people":    2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booked struct {
		BookingID string `json:"booking_id"`
	}
	decode(t, w, &booked)

	// Breakdown quotes base, tax, platform fee and total.
	w = doJSON(t, h, http.MethodGet, "/payments/"+booked.BookingID, guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var breakdown struct {
		Nights int `json:"nights"`
		Total  struct {
			Amount int64 `json:"amount"`
		} `json:"total_amount"`
	}
	decode(t, w, &breakdown)
	assert.Equal(t, 2, breakdown.Nights)
	assert.Equal(t, int64(24000), breakdown.Total.Amount)

	// Another user cannot see someone else's breakdown.
	w = doJSON(t, h, http.MethodGet, "/payments/"+booked.BookingID, ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The guest pays.
	w = doJSON(t, h, http.MethodPost, "/payments/"+booked.BookingID+"/confirm", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Paying twice hits validation.
	w = doJSON(t, h, http.MethodPost, "/payments/"+booked.BookingID+"/confirm", guestToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// The owner sees the payout.
	w = doJSON(t, h, http.MethodGet, "/getmypayments/owner@example.com", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var payments struct {
		Records []struct {
			Total struct {
				Amount int64 `json:"amount"`
			} `json:"total_amount"`
		} `json:"records"`
	}
	decode(t, w, &payments)
	require.Len(t, payments.Records, 1)
	assert.Equal(t, int64(24000), payments.Records[0].Total.Amount)

	// The guest reverses the payment, the payout disappears.
	w = doJSON(t, h, http.MethodGet, "/payments/"+booked.BookingID+"/makeunpay", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/getmypayments/owner@example.com", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &payments)
	assert.Empty(t, payments.Records)

	// The booking is pending again in the guest's list.
	w = doJSON(t, h, http.MethodGet, "/me/bookings", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Bookings []struct {
			BookingID string `json:"booking_id"`
			Status    string `json:"status"`
		} `json:"bookings"`
	}
	decode(t, w, &mine)
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, booked.BookingID, mine.Bookings[0].BookingID)
	assert.Equal(t, "pending", mine.Bookings[0].Status)

	// The guest cancels the hold.
	w = doJSON(t, h, http.MethodDelete, "/bookings/"+booked.BookingID, guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/me/bookings", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &mine)
	assert.Empty(t, mine.Bookings)
}

func TestBookingConflictOverHTTP(t *testing.T) {
	h := newTestServer(t)

	ownerToken := registerUser(t, h, "owner@example.com", "Owner")
	w := doJSON(t, h, http.MethodPost, "/listings", ownerToken, map[string]any{
		"title":    "Flat",
		"price":    5000,
		"location": "Pune",
		"capacity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ListingID string `json:"listing_id"`
	}
	decode(t, w, &created)

	guestToken := registerUser(t, h, "guest@example.com", "Guest")
	bookURL := "/bookings/" + created.ListingID

	w = doJSON(t, h, http.MethodPost, bookURL, guestToken, map[string]any{
		"check_in":  futureDate(15),
		"check_out": futureDate(18),
		"people":    2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	otherToken := registerUser(t, h, "other@example.com", "Other")
	w = doJSON(t, h, http.MethodPost, bookURL, otherToken, map[string]any{
		"check_in":  futureDate(16),
		"check_out": futureDate(19),
		"people":    2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	// Too short a lead time is also a validation failure.
	w = doJSON(t, h, http.MethodPost, bookURL, otherToken, map[string]any{
		"check_in":  futureDate(5),
		"check_out": futureDate(8),
		"people":    2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Party size over capacity.
	w = doJSON(t, h, http.MethodPost, bookURL, otherToken, map[string]any{
		"check_in":  futureDate(25),
		"check_out": futureDate(28),
		"people":    7,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	h := newTestServer(t)

	token := registerUser(t, h, "user@example.com", "User")

	// Duplicate registration conflicts.
	w := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "user@example.com",
		"name":     "User",
		"password": "longenough",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, h, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile struct {
		Email string `json:"email"`
	}
	decode(t, w, &profile)
	assert.Equal(t, "user@example.com", profile.Email)

	w = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, h, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, h, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownListingReturnsNotFound(t *testing.T) {
	h := newTestServer(t)
	token := registerUser(t, h, "user@example.com", "User")

	w := doJSON(t, h, http.MethodGet, fmt.Sprintf("/listings/%s/book", "missing"), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
