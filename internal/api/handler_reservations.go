package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/mw"
)

type allocateRequest struct {
	LotID     int64  `json:"lotId" binding:"required"`
	VehicleNo string `json:"vehicleNo" binding:"required"`
}

// Allocate handles POST /api/reservations. The reservation is always created
// for the authenticated caller; there is no way to book on someone else's
// behalf.
func (h *Handler) Allocate(c *gin.Context) {
	identity := mw.CallerIdentity(c)
	if identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.store.Allocate(c.Request.Context(), time.Now().UTC(), identity.UserID, req.LotID, req.VehicleNo)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

// Release handles POST /api/reservations/{id}/release. Only the reservation
// owner or an admin may close it.
func (h *Handler) Release(c *gin.Context) {
	identity := mw.CallerIdentity(c)
	if identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid reservation ID"})
		return
	}

	if !identity.IsAdmin {
		reservation, err := h.store.ReservationByID(c.Request.Context(), reservationID)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		if reservation.UserID != identity.UserID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you can only release your own reservations"})
			return
		}
	}

	reservation, err := h.store.Release(c.Request.Context(), time.Now().UTC(), reservationID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}
