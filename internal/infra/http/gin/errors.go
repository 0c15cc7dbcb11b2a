package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/uow"
	domainaccounting "staybook/internal/domain/accounting"
	domainbooking "staybook/internal/domain/booking"
	domainlisting "staybook/internal/domain/listing"
	domainrange "staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

// respondError maps domain errors onto the HTTP contract: missing things are
// 404, other people's things are 403, rejected input is 422, lost races are
// 409, everything else is 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainlisting.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound),
		errors.Is(err, domainaccounting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrForbidden),
		errors.Is(err, domainlisting.ErrNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrInvalidPeople),
		errors.Is(err, domainbooking.ErrCheckInTooSoon),
		errors.Is(err, domainbooking.ErrDatesUnavailable),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainlisting.ErrTitleRequired),
		errors.Is(err, domainlisting.ErrLocationRequired),
		errors.Is(err, domainlisting.ErrInvalidCapacity),
		errors.Is(err, domainlisting.ErrInvalidPrice):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, uow.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
