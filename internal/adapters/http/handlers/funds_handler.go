// Package handlers - money movement endpoints.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/ledgerhub/internal/adapters/http/common"
	"github.com/Haleralex/ledgerhub/internal/adapters/http/middleware"
	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

// IdempotencyKeyHeader is the header fallback for the idempotency key when
// the body omits it.
const IdempotencyKeyHeader = "Idempotency-Key"

// DepositUseCase credits a wallet.
type DepositUseCase interface {
	Execute(ctx context.Context, cmd dtos.DepositCommand) (*dtos.JournalEntryDTO, error)
}

// WithdrawUseCase debits a wallet.
type WithdrawUseCase interface {
	Execute(ctx context.Context, cmd dtos.WithdrawCommand) (*dtos.JournalEntryDTO, error)
}

// TransferUseCase moves funds between two wallets.
type TransferUseCase interface {
	Execute(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransferDTO, error)
}

// HistoryUseCase reads a wallet's journal.
type HistoryUseCase interface {
	Execute(ctx context.Context, q dtos.HistoryQuery) (*dtos.HistoryPageDTO, error)
}

// FundsHandler serves the money movement endpoints.
type FundsHandler struct {
	deposit  DepositUseCase
	withdraw WithdrawUseCase
	transfer TransferUseCase
	history  HistoryUseCase
}

// NewFundsHandler creates the handler.
func NewFundsHandler(deposit DepositUseCase, withdraw WithdrawUseCase, transfer TransferUseCase, history HistoryUseCase) *FundsHandler {
	return &FundsHandler{deposit: deposit, withdraw: withdraw, transfer: transfer, history: history}
}

// MovementRequest is the body of deposit and withdrawal requests.
type MovementRequest struct {
	Amount         string            `json:"amount" binding:"required,money_amount"`
	IdempotencyKey string            `json:"idempotency_key" binding:"omitempty,max=255"`
	Metadata       map[string]string `json:"metadata" binding:"omitempty,max=16"`
}

// TransferRequest is the body of POST /transfers.
type TransferRequest struct {
	SourceWalletID      string            `json:"source_wallet_id" binding:"required,uuid"`
	DestinationWalletID string            `json:"destination_wallet_id" binding:"required,uuid"`
	Amount              string            `json:"amount" binding:"required,money_amount"`
	IdempotencyKey      string            `json:"idempotency_key" binding:"omitempty,max=255"`
	Metadata            map[string]string `json:"metadata" binding:"omitempty,max=16"`
}

// HistoryParams binds the history query string.
type HistoryParams struct {
	Type     string `form:"type" binding:"omitempty,entry_type"`
	From     string `form:"from" binding:"omitempty"`
	To       string `form:"to" binding:"omitempty"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Deposit handles POST /api/v1/wallets/:id/deposit.
func (h *FundsHandler) Deposit(c *gin.Context) {
	userID := middleware.GetAuthUserID(c)
	if userID == "" {
		common.UnauthorizedResponse(c, "user not authenticated")
		return
	}
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}
	var req MovementRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.deposit.Execute(c.Request.Context(), dtos.DepositCommand{
		WalletID:       params.ID,
		Amount:         req.Amount,
		UserID:         userID,
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
		CorrelationID:  middleware.GetCorrelationID(c),
		Metadata:       req.Metadata,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	recordMovement(result)
	common.Success(c, http.StatusOK, result)
}

// Withdraw handles POST /api/v1/wallets/:id/withdraw.
func (h *FundsHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetAuthUserID(c)
	if userID == "" {
		common.UnauthorizedResponse(c, "user not authenticated")
		return
	}
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}
	var req MovementRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.withdraw.Execute(c.Request.Context(), dtos.WithdrawCommand{
		WalletID:       params.ID,
		Amount:         req.Amount,
		UserID:         userID,
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
		CorrelationID:  middleware.GetCorrelationID(c),
		Metadata:       req.Metadata,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	recordMovement(result)
	common.Success(c, http.StatusOK, result)
}

// Transfer handles POST /api/v1/transfers.
func (h *FundsHandler) Transfer(c *gin.Context) {
	userID := middleware.GetAuthUserID(c)
	if userID == "" {
		common.UnauthorizedResponse(c, "user not authenticated")
		return
	}
	var req TransferRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.transfer.Execute(c.Request.Context(), dtos.TransferCommand{
		SourceWalletID:      req.SourceWalletID,
		DestinationWalletID: req.DestinationWalletID,
		Amount:              req.Amount,
		UserID:              userID,
		IdempotencyKey:      idempotencyKey(c, req.IdempotencyKey),
		CorrelationID:       middleware.GetCorrelationID(c),
		Metadata:            req.Metadata,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	recordMovement(result.Debit)
	recordMovement(result.Credit)
	common.Success(c, http.StatusOK, result)
}

// History handles GET /api/v1/wallets/:id/history.
func (h *FundsHandler) History(c *gin.Context) {
	userID := middleware.GetAuthUserID(c)
	if userID == "" {
		common.UnauthorizedResponse(c, "user not authenticated")
		return
	}
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}
	var qp HistoryParams
	if !BindQuery(c, &qp) {
		return
	}

	q := dtos.HistoryQuery{
		WalletID: params.ID,
		UserID:   userID,
		Type:     qp.Type,
		Page:     qp.Page,
		PageSize: qp.PageSize,
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	if qp.From != "" {
		from, err := time.Parse(time.RFC3339, qp.From)
		if err != nil {
			common.ValidationErrorResponse(c, []common.FieldError{
				{Field: "from", Message: "must be an RFC3339 timestamp", Code: "datetime"},
			})
			return
		}
		q.From = &from
	}
	if qp.To != "" {
		to, err := time.Parse(time.RFC3339, qp.To)
		if err != nil {
			common.ValidationErrorResponse(c, []common.FieldError{
				{Field: "to", Message: "must be an RFC3339 timestamp", Code: "datetime"},
			})
			return
		}
		q.To = &to
	}

	result, err := h.history.Execute(c.Request.Context(), q)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	common.Success(c, http.StatusOK, result)
}

// idempotencyKey prefers the body field and falls back to the header.
func idempotencyKey(c *gin.Context, bodyKey string) string {
	if bodyKey != "" {
		return bodyKey
	}
	return c.GetHeader(IdempotencyKeyHeader)
}

// recordMovement feeds the business metrics from a committed entry.
func recordMovement(e *dtos.JournalEntryDTO) {
	if e == nil {
		return
	}
	amount, err := valueobjects.ParseAmount(e.Amount)
	if err != nil {
		return
	}
	middleware.RecordMovement(e.Type, e.Currency, amount.Units())
}
