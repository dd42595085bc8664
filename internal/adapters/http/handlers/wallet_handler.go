// Package handlers - wallet lifecycle endpoints.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/ledgerhub/internal/adapters/http/common"
	"github.com/Haleralex/ledgerhub/internal/adapters/http/middleware"
	"github.com/Haleralex/ledgerhub/internal/application/dtos"
)

// CreateWalletUseCase opens a wallet for the caller.
type CreateWalletUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error)
}

// GetBalanceUseCase reads the balance of an owned wallet.
type GetBalanceUseCase interface {
	Execute(ctx context.Context, q dtos.BalanceQuery) (*dtos.BalanceDTO, error)
}

// WalletHandler serves the wallet lifecycle endpoints.
type WalletHandler struct {
	createWallet CreateWalletUseCase
	getBalance   GetBalanceUseCase
}

// NewWalletHandler creates the handler.
func NewWalletHandler(createWallet CreateWalletUseCase, getBalance GetBalanceUseCase) *WalletHandler {
	return &WalletHandler{createWallet: createWallet, getBalance: getBalance}
}

// CreateWalletRequest is the body of POST /wallets. The owner is the
// authenticated caller; it is never taken from the body.
type CreateWalletRequest struct {
	Currency string `json:"currency" binding:"required,currency_code"`
}

// WalletIDParam binds the wallet id path segment.
type WalletIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// CreateWallet handles POST /api/v1/wallets.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	userID := middleware.GetAuthUserID(c)
	if userID == "" {
		common.UnauthorizedResponse(c, "user not authenticated")
		return
	}

	var req CreateWalletRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.CreateWalletCommand{
		UserID:        userID,
		Currency:      req.Currency,
		CorrelationID: middleware.GetCorrelationID(c),
	}

	result, err := h.createWallet.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusCreated, result)
}

// GetBalance handles GET /api/v1/wallets/:id/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetAuthUserID(c)
	if userID == "" {
		common.UnauthorizedResponse(c, "user not authenticated")
		return
	}

	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.getBalance.Execute(c.Request.Context(), dtos.BalanceQuery{
		WalletID: params.ID,
		UserID:   userID,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}
