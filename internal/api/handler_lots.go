package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking-reservation-backend/internal/store"
)

type createLotRequest struct {
	Name       string  `json:"name" binding:"required"`
	Address    string  `json:"address" binding:"required"`
	Pincode    string  `json:"pincode" binding:"required"`
	HourlyRate float64 `json:"hourlyRate" binding:"required"`
	Capacity   int     `json:"capacity" binding:"required"`
}

type resizeLotRequest struct {
	Capacity int `json:"capacity" binding:"required"`
}

// CreateLot handles POST /api/lots.
func (h *Handler) CreateLot(c *gin.Context) {
	var req createLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lot, err := h.store.CreateLot(c.Request.Context(), store.CreateLotParams{
		Name:       req.Name,
		Address:    req.Address,
		Pincode:    req.Pincode,
		HourlyRate: req.HourlyRate,
		Capacity:   req.Capacity,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// ResizeLot handles PUT /api/lots/{lot_id}/capacity.
func (h *Handler) ResizeLot(c *gin.Context) {
	lotID, err := strconv.ParseInt(c.Param("lot_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid lot ID"})
		return
	}
	var req resizeLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lot, err := h.store.ResizeLot(c.Request.Context(), lotID, req.Capacity)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// DeleteLot handles DELETE /api/lots/{lot_id}.
func (h *Handler) DeleteLot(c *gin.Context) {
	lotID, err := strconv.ParseInt(c.Param("lot_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid lot ID"})
		return
	}
	if err := h.store.DeleteLot(c.Request.Context(), lotID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSpot handles DELETE /api/spots/{spot_id}.
func (h *Handler) DeleteSpot(c *gin.Context) {
	spotID, err := strconv.ParseInt(c.Param("spot_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid spot ID"})
		return
	}
	if err := h.store.DeleteSpot(c.Request.Context(), spotID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchLots handles GET /api/lots?by=location|pincode&q=...
func (h *Handler) SearchLots(c *gin.Context) {
	kind := store.SearchKind(c.DefaultQuery("by", string(store.SearchByLocation)))
	results, err := h.store.SearchLots(c.Request.Context(), kind, c.Query("q"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
