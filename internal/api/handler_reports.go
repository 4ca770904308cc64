package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/mw"
)

// LotReport handles GET /api/reports/lots.
func (h *Handler) LotReport(c *gin.Context) {
	report, err := h.store.LotSummaries(c.Request.Context(), time.Now().UTC())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UserSummary handles GET /api/users/{user_id}/summary. Admins may look at
// any user, everyone else only at themselves.
func (h *Handler) UserSummary(c *gin.Context) {
	identity := mw.CallerIdentity(c)
	if identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	if !identity.IsAdmin && identity.UserID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you can only view your own summary"})
		return
	}

	report, err := h.store.UserSummary(c.Request.Context(), time.Now().UTC(), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SpotDetail handles GET /api/spots/{spot_id}.
func (h *Handler) SpotDetail(c *gin.Context) {
	spotID, err := strconv.ParseInt(c.Param("spot_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid spot ID"})
		return
	}

	detail, err := h.store.OccupiedSpotDetail(c.Request.Context(), time.Now().UTC(), spotID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
