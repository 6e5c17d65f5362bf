package handlers

import (
	"net/http"
	"strconv"

	"juicybets/internal/auth"
	"juicybets/internal/engine"
	"juicybets/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WagerHandler struct {
	engine *engine.Engine
}

func NewWagerHandler(e *engine.Engine) *WagerHandler {
	return &WagerHandler{engine: e}
}

// PlaceWager stakes on one party of an open bet
// POST /api/wagers
func (h *WagerHandler) PlaceWager(c *gin.Context) {
	bettor, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.PlaceWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wager, err := h.engine.PlaceWager(c.Request.Context(), bettor, req.BetStateID, req.Party, req.Amount)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, wager)
}

// ListWagers retrieves the authenticated user's wagers with pagination
// GET /api/wagers
func (h *WagerHandler) ListWagers(c *gin.Context) {
	bettor, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	wagers, err := h.engine.ListWagers(c.Request.Context(), bettor, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list wagers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wagers": wagers,
		"total":  len(wagers),
	})
}

// CancelWager withdraws a wager from a still-open bet
// DELETE /api/wagers/:id
func (h *WagerHandler) CancelWager(c *gin.Context) {
	bettor, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	wagerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wager id"})
		return
	}

	if err := h.engine.CancelWager(c.Request.Context(), bettor, wagerID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "wager cancelled"})
}

// ClaimWinnings pays out a winning wager
// POST /api/wagers/:id/claim
func (h *WagerHandler) ClaimWinnings(c *gin.Context) {
	bettor, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	wagerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wager id"})
		return
	}

	result, err := h.engine.ClaimWinnings(c.Request.Context(), bettor, wagerID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
