package ginserver

import (
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	ListingApp "staybook/internal/app/handlers/listings"
	"staybook/internal/app/queries"
)

type ListingHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	BookingForm(c *gin.Context)
	Create(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

// Search is the one route that works without a principal.
func (h ListingHandler) Search(c *gin.Context) {
	people := 1
	if raw := strings.TrimSpace(c.Query("people")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "people must be a positive number"})
			return
		}
		people = parsed
	}
	q := ListingApp.SearchQuery{
		Location: c.Query("location"),
		CheckIn:  c.Query("checkIn"),
		CheckOut: c.Query("checkOut"),
		People:   people,
	}
	result, err := queries.Ask[ListingApp.SearchQuery, *ListingApp.SearchResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns a single listing.
func (h ListingHandler) Get(c *gin.Context) {
	q := ListingApp.BookingFormQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[ListingApp.BookingFormQuery, *ListingApp.BookingFormResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result.Listing)
}

// BookingForm returns the data the booking page renders: the listing, its
// owner and the quote defaults.
func (h ListingHandler) BookingForm(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}
	q := ListingApp.BookingFormQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[ListingApp.BookingFormQuery, *ListingApp.BookingFormResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ListingApp.CreateListingCommand{
		CommandID:       uuid.NewString(),
		OwnerID:         p.ID,
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Currency:        req.Currency,
		Location:        req.Location,
		Capacity:        req.Capacity,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[ListingApp.CreateListingCommand, *ListingApp.CreateListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UploadPhoto accepts a multipart "photo" file and stores it for the listing.
func (h ListingHandler) UploadPhoto(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read photo"})
		return
	}
	defer src.Close()

	listingID := c.Param("id")
	cmd := ListingApp.UploadPhotoCommand{
		OwnerID:     p.ID,
		ListingID:   listingID,
		ObjectKey:   "listings/" + listingID + "/" + uuid.NewString() + path.Ext(file.Filename),
		ContentType: file.Header.Get("Content-Type"),
		Reader:      src,
	}
	result, err := commands.Dispatch[ListingApp.UploadPhotoCommand, *ListingApp.UploadPhotoResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}
