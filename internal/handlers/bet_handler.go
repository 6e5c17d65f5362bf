package handlers

import (
	"net/http"
	"strconv"
	"time"

	"juicybets/internal/auth"
	"juicybets/internal/engine"
	"juicybets/internal/models"
	"juicybets/internal/prices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BetHandler struct {
	engine       *engine.Engine
	priceService *prices.Service
}

func NewBetHandler(e *engine.Engine, priceService *prices.Service) *BetHandler {
	return &BetHandler{
		engine:       e,
		priceService: priceService,
	}
}

// CreateBet opens a new bet state
// POST /api/bets
func (h *BetHandler) CreateBet(c *gin.Context) {
	creator, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Snapshot the reference price before the engine's critical section.
	referencePrice := decimal.Zero
	if req.ReferencePrice != nil {
		referencePrice = *req.ReferencePrice
	} else {
		price, err := h.priceService.GetPrice(c.Request.Context(), req.Symbol)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to snapshot reference price"})
			return
		}
		referencePrice = price
	}

	bet, err := h.engine.InitializeBetState(
		c.Request.Context(),
		creator,
		time.Now(),
		time.Duration(req.DurationSeconds)*time.Second,
		req.Symbol,
		referencePrice,
		req.BetRange,
	)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bet)
}

// GetBet retrieves a bet state by ID
// GET /api/bets/:id
func (h *BetHandler) GetBet(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	bet, err := h.engine.GetBetState(c.Request.Context(), betID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

// ListOpenBets retrieves open bets with pagination
// GET /api/bets
func (h *BetHandler) ListOpenBets(c *gin.Context) {
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

	bets, err := h.engine.ListOpenBets(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bets":  bets,
		"total": len(bets),
	})
}

// CloseBet closes an open bet
// POST /api/bets/:id/close
func (h *BetHandler) CloseBet(c *gin.Context) {
	caller, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	bet, err := h.engine.CloseBetState(c.Request.Context(), caller, betID, time.Now())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

// DecideBet sets the outcome of a closed bet
// POST /api/bets/:id/decide
func (h *BetHandler) DecideBet(c *gin.Context) {
	caller, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	var req models.DecideOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.engine.DecideBetStateOutcome(c.Request.Context(), caller, betID, req.Outcome)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

// SettleBet settles a closed, decided, fully drained bet
// POST /api/bets/:id/settle
func (h *BetHandler) SettleBet(c *gin.Context) {
	caller, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	bet, err := h.engine.SettleBetState(c.Request.Context(), caller, betID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}
