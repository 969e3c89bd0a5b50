package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"barista/internal/domain"
	"barista/internal/dto"
	apperrors "barista/internal/errors"
	"barista/internal/respond"
)

type FinancialLedger interface {
	RedeemPoints(ctx context.Context, customerID uint, points int, note string) error
	TopUpWalletFromPoints(ctx context.Context, customerID uint, points int, rate float64) (*domain.WalletTransaction, error)
	ApproveWalletTopUp(ctx context.Context, txnID uint, approvedBy string) error
	RequestRefund(ctx context.Context, orderID uint, amount float64, reason, requestedBy string) (*domain.Refund, error)
	ApproveRefund(ctx context.Context, refundID uint, approvedBy string) (*domain.Refund, error)
	RejectRefund(ctx context.Context, refundID uint, reason, decidedBy string) (*domain.Refund, error)
	LoyaltySummary(ctx context.Context, customerID uint) (*domain.LoyaltyAccount, []domain.LoyaltyTransaction, error)
}

type LedgerController struct {
	ledger FinancialLedger
	logger *zap.Logger
}

func NewLedgerController(ledger FinancialLedger, logger *zap.Logger) *LedgerController {
	return &LedgerController{
		ledger: ledger,
		logger: logger,
	}
}

func (c *LedgerController) LoyaltySummary(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	customerID, ok := respond.PathID(w, logger, traceID, r, "customerId")
	if !ok {
		return
	}

	account, txns, err := c.ledger.LoyaltySummary(r.Context(), customerID)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusOK, dto.FromLoyalty(account, txns))
}

func (c *LedgerController) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	customerID, ok := respond.PathID(w, logger, traceID, r, "customerId")
	if !ok {
		return
	}

	var req dto.RedeemPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ValidationError(w, logger, traceID, "invalid JSON body")
		return
	}
	if req.Points <= 0 {
		respond.ValidationError(w, logger, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "points",
			Message: "points must be positive",
		})
		return
	}

	if err := c.ledger.RedeemPoints(r.Context(), customerID, req.Points, req.Note); err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *LedgerController) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	customerID, ok := respond.PathID(w, logger, traceID, r, "customerId")
	if !ok {
		return
	}

	var req dto.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ValidationError(w, logger, traceID, "invalid JSON body")
		return
	}
	if req.Points <= 0 || req.Rate <= 0 {
		respond.ValidationError(w, logger, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "points",
			Message: "points and rate must be positive",
		})
		return
	}

	txn, err := c.ledger.TopUpWalletFromPoints(r.Context(), customerID, req.Points, req.Rate)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusCreated, dto.FromWalletTransaction(txn))
}

func (c *LedgerController) ApproveTopUp(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	txnID, ok := respond.PathID(w, logger, traceID, r, "txnId")
	if !ok {
		return
	}

	var req dto.ApproveTopUpRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ValidationError(w, logger, traceID, "invalid JSON body")
			return
		}
	}

	if err := c.ledger.ApproveWalletTopUp(r.Context(), txnID, req.ApprovedBy); err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *LedgerController) RequestRefund(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ValidationError(w, logger, traceID, "invalid JSON body")
		return
	}

	var details []apperrors.ValidationDetail
	if req.OrderID == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "orderId", Message: "orderId is required"})
	}
	if req.Amount <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "amount", Message: "amount must be positive"})
	}
	if len(details) > 0 {
		respond.ValidationError(w, logger, traceID, "validation failed", details...)
		return
	}

	refund, err := c.ledger.RequestRefund(r.Context(), req.OrderID, req.Amount, req.Reason, req.RequestedBy)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusCreated, dto.FromRefund(refund))
}

func (c *LedgerController) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	refundID, ok := respond.PathID(w, logger, traceID, r, "refundId")
	if !ok {
		return
	}

	var req dto.RefundDecisionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ValidationError(w, logger, traceID, "invalid JSON body")
			return
		}
	}

	refund, err := c.ledger.ApproveRefund(r.Context(), refundID, req.Actor)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusOK, dto.FromRefund(refund))
}

func (c *LedgerController) RejectRefund(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	refundID, ok := respond.PathID(w, logger, traceID, r, "refundId")
	if !ok {
		return
	}

	var req dto.RefundDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ValidationError(w, logger, traceID, "invalid JSON body")
		return
	}

	refund, err := c.ledger.RejectRefund(r.Context(), refundID, req.Reason, req.Actor)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusOK, dto.FromRefund(refund))
}
