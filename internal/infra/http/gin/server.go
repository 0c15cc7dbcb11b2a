package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Booking        BookingHTTP
	Payment        PaymentHTTP
	Me             MeHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	if h.Auth != nil {
		router.POST("/auth/register", h.Auth.Register)
		router.POST("/auth/login", h.Auth.Login)
		router.POST("/auth/logout", h.Auth.Logout)
		router.GET("/auth/me", h.Auth.Me)
	}
	if h.Listing != nil {
		router.GET("/search", h.Listing.Search)
		router.POST("/listings", h.Listing.Create)
		router.GET("/listings/:id", h.Listing.Get)
		router.GET("/listings/:id/book", h.Listing.BookingForm)
		router.POST("/listings/:id/photo", h.Listing.UploadPhoto)
	}
	if h.Booking != nil {
		router.POST("/bookings/:id", h.Booking.Create)
		router.DELETE("/bookings/:id", h.Booking.Delete)
	}
	if h.Payment != nil {
		router.GET("/payments/:id", h.Payment.Breakdown)
		router.POST("/payments/:id/confirm", h.Payment.Confirm)
		router.GET("/payments/:id/makeunpay", h.Payment.Unpay)
		router.GET("/getmypayments/:email", h.Payment.MyPayments)
	}
	if h.Me != nil {
		router.GET("/me/bookings", h.Me.ListBookings)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
