package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/auth"
	"parking-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	issuer *auth.TokenIssuer
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, issuer *auth.TokenIssuer) *Handler {
	return &Handler{
		store:  s,
		issuer: issuer,
	}
}

// writeStoreError maps the store error taxonomy onto HTTP status codes.
// Unknown errors become a 500 without leaking internals.
func writeStoreError(c *gin.Context, err error) {
	var validationErr *store.ValidationError
	var capacityErr *store.CapacityError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &capacityErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": capacityErr.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrNoAvailability):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "no available spot in lot"})
	case errors.Is(err, store.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "operation conflicts with current state"})
	case errors.Is(err, store.ErrAlreadyReleased):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "reservation already released"})
	case errors.Is(err, store.ErrNotOccupied):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "spot is not occupied"})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
