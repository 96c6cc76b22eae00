package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-server/internal/api/middleware"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/service"
)

type WalletHandler struct {
	walletService *service.WalletService
}

func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// Get returns the wallet with recent transactions.
// GET /api/v1/wallet
func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	wallet, err := h.walletService.GetWallet(userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "wallet not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	txns, err := h.walletService.ListTransactions(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.WalletResponse{Wallet: wallet, Transactions: txns})
}

// ListWithdrawals returns the caller's withdrawal history.
// GET /api/v1/wallet/withdrawals
func (h *WalletHandler) ListWithdrawals(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	withdrawals, err := h.walletService.ListWithdrawals(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, withdrawals)
}

// Withdraw places a withdrawal request and its hold.
// POST /api/v1/wallet/withdrawals
func (h *WalletHandler) Withdraw(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	withdrawal, err := h.walletService.RequestWithdrawal(user, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientBalance):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "payment method not found")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, withdrawal)
}

// ListPaymentMethods returns the caller's payout methods.
// GET /api/v1/wallet/payment-methods
func (h *WalletHandler) ListPaymentMethods(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	methods, err := h.walletService.ListPaymentMethods(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, methods)
}

// AddPaymentMethod stores a payout destination.
// POST /api/v1/wallet/payment-methods
func (h *WalletHandler) AddPaymentMethod(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	method, err := h.walletService.AddPaymentMethod(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Created(c, method)
}

// SetPrimaryPaymentMethod flips the primary flag.
// POST /api/v1/wallet/payment-methods/:id/primary
func (h *WalletHandler) SetPrimaryPaymentMethod(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	methodID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid payment method id")
		return
	}

	if err := h.walletService.SetPrimaryPaymentMethod(userID, methodID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "payment method not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"primary": methodID})
}

// DeletePaymentMethod removes a payout destination.
// DELETE /api/v1/wallet/payment-methods/:id
func (h *WalletHandler) DeletePaymentMethod(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	methodID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid payment method id")
		return
	}

	if err := h.walletService.DeletePaymentMethod(userID, methodID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "payment method not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
