package handlers

import (
	"errors"
	"net/http"

	"campusrun/models"
	"campusrun/services/wallet"
	"campusrun/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletHandler exposes balance, deposit, withdrawal and history endpoints.
type WalletHandler struct {
	Svc wallet.WalletService
}

// NewWalletHandler returns a WalletHandler backed by the given service.
func NewWalletHandler(svc wallet.WalletService) *WalletHandler {
	return &WalletHandler{Svc: svc}
}

// Balance returns the actor's current wallet balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	balance, err := h.Svc.Balance(actor.ID)
	if err != nil {
		h.writeError(c, err, "BALANCE_ERROR", "Failed to get wallet balance")
		return
	}

	ok(c, http.StatusOK, gin.H{"balance": balance})
}

type depositRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"paymentMethod"`
	ExternalRef   string          `json:"externalRef"`
}

// Deposit credits the actor's wallet, replay-safe on externalRef.
func (h *WalletHandler) Deposit(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Amount must be a positive number", "INVALID_AMOUNT")
		return
	}

	tx, balance, err := h.Svc.Deposit(actor.ID, req.Amount, req.PaymentMethod, req.ExternalRef)
	if err != nil {
		h.writeError(c, err, "DEPOSIT_ERROR", "Failed to process deposit")
		return
	}

	ok(c, http.StatusOK, gin.H{"transaction": tx, "balance": balance})
}

type withdrawRequest struct {
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	WithdrawalMethod string          `json:"withdrawalMethod"`
	ExternalRef      string          `json:"externalRef"`
}

// Withdraw debits the actor's wallet, guarded against overdraft.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Amount must be a positive number", "INVALID_AMOUNT")
		return
	}

	tx, balance, err := h.Svc.Withdraw(actor.ID, req.Amount, req.WithdrawalMethod, req.ExternalRef)
	if err != nil {
		h.writeError(c, err, "WITHDRAWAL_ERROR", "Failed to process withdrawal")
		return
	}

	ok(c, http.StatusOK, gin.H{"transaction": tx, "balance": balance})
}

// Transactions lists the actor's ledger entries, newest first.
func (h *WalletHandler) Transactions(c *gin.Context) {
	actor, okActor := getActor(c)
	if !okActor {
		return
	}

	var filter models.TransactionFilter
	filter.Type = models.TransactionType(c.Query("type"))
	if filter.Type != "" && !filter.Type.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid transaction type", "VALIDATION_ERROR")
		return
	}
	filter.Page, filter.Limit = pageParams(c, 20)

	txs, pagination, err := h.Svc.Transactions(actor.ID, filter)
	if err != nil {
		h.writeError(c, err, "TRANSACTIONS_ERROR", "Failed to get transactions")
		return
	}

	ok(c, http.StatusOK, gin.H{"transactions": txs, "pagination": pagination})
}

func (h *WalletHandler) writeError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount):
		utils.JSONError(c, http.StatusBadRequest, "Amount must be a positive number", "INVALID_AMOUNT")
	case errors.Is(err, wallet.ErrInsufficientBalance):
		utils.JSONError(c, http.StatusBadRequest, "Insufficient wallet balance", "INSUFFICIENT_BALANCE")
	case errors.Is(err, wallet.ErrUserNotFound):
		utils.JSONError(c, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
	default:
		getLogger(c).Error(fallbackMsg, zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, fallbackMsg, fallbackCode)
	}
}
