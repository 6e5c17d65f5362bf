package handlers

import (
	"net/http"

	"juicybets/internal/auth"
	"juicybets/internal/engine"
	"juicybets/internal/wallet"

	"github.com/gin-gonic/gin"
)

// loginMessage is the message wallets must sign to authenticate.
// TODO: include a server-issued nonce to prevent replay.
const loginMessage = "Sign this message to authenticate with JuicyBets"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	engine *engine.Engine
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(e *engine.Engine) *AuthHandler {
	return &AuthHandler{engine: e}
}

// WalletLogin authenticates a user by their Solana wallet address and a
// signature of the login message, creating their account on first login.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := wallet.ValidateAddress(req.WalletAddress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	if err := wallet.VerifySignature(req.WalletAddress, loginMessage, req.Signature); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	account, err := h.engine.EnsureUserAccount(c.Request.Context(), req.WalletAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	token, err := auth.GenerateToken(account.WalletAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"account": account,
	})
}

// Logout handles user logout (stateless JWT, client-side only)
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}
