package handlers

import (
	"net/http"

	"juicybets/internal/auth"
	"juicybets/internal/engine"
	"juicybets/internal/models"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	engine *engine.Engine
}

func NewAccountHandler(e *engine.Engine) *AccountHandler {
	return &AccountHandler{engine: e}
}

// GetAccount returns the authenticated user's account and active wagers
// GET /api/account
func (h *AccountHandler) GetAccount(c *gin.Context) {
	wallet, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	account, err := h.engine.GetUserAccount(c.Request.Context(), wallet)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	wagers, err := h.engine.ListActiveWagers(c.Request.Context(), wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list active wagers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":       account,
		"active_wagers": wagers,
	})
}

// Deposit credits the authenticated user's balance
// POST /api/account/deposit
func (h *AccountHandler) Deposit(c *gin.Context) {
	wallet, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.engine.DepositIntoAccount(c.Request.Context(), wallet, req.Amount)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// Withdraw debits the authenticated user's balance
// POST /api/account/withdraw
func (h *AccountHandler) Withdraw(c *gin.Context) {
	wallet, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.engine.WithdrawFromAccount(c.Request.Context(), wallet, req.Amount)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// CloseAccount deletes the authenticated user's emptied account
// DELETE /api/account
func (h *AccountHandler) CloseAccount(c *gin.Context) {
	wallet, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.engine.CloseUserAccount(c.Request.Context(), wallet); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account closed"})
}
