package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"barista/internal/domain"
	"barista/internal/dto"
	apperrors "barista/internal/errors"
	"barista/internal/order/service"
	"barista/internal/respond"
)

type OrderStateMachine interface {
	Create(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error)
	ConfirmPayment(ctx context.Context, orderID uint, method, confirmedBy string) (*domain.Order, error)
	Approve(ctx context.Context, orderID uint, actor string) (*domain.Order, error)
	Reject(ctx context.Context, orderID uint, reason, actor string) (*domain.Order, error)
	MarkServed(ctx context.Context, orderID uint, actor string) (*domain.Order, error)
	Get(ctx context.Context, orderID uint) (*domain.Order, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Order, error)
}

type OrderController struct {
	orders OrderStateMachine
	logger *zap.Logger
}

func NewOrderController(orders OrderStateMachine, logger *zap.Logger) *OrderController {
	return &OrderController{
		orders: orders,
		logger: logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if validationErr := validateCreateOrder(req); validationErr != nil {
		respond.Error(w, logger, traceID, validationErr)
		return
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = item.ToDomain()
	}

	order, err := c.orders.Create(r.Context(), service.CreateOrderInput{
		TableID:               req.TableID,
		Items:                 items,
		PaymentMethod:         req.PaymentMethod,
		PaymentStatusOverride: req.PaymentStatus,
		CustomerPhone:         req.CustomerPhone,
		CashierOrder:          req.CashierOrder,
		CreatedBy:             req.CreatedBy,
	})
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	respond.JSON(w, logger, http.StatusCreated, dto.FromOrder(order))
}

func validateCreateOrder(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if req.TableID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "tableId is required",
		})
	}
	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	for idx, item := range req.Items {
		if item.Name == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].name",
				Message: "name is required",
			})
		}
		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be at least 1",
			})
		}
		if item.Price < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].price",
				Message: "price must be non-negative",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *OrderController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := respond.PathID(w, logger, traceID, r, "orderId")
	if !ok {
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ValidationError(w, logger, traceID, "invalid JSON body")
		return
	}
	if req.Method == "" {
		respond.ValidationError(w, logger, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "method",
			Message: "payment method is required",
		})
		return
	}

	order, err := c.orders.ConfirmPayment(r.Context(), orderID, req.Method, req.ConfirmedBy)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusOK, dto.FromOrder(order))
}

func (c *OrderController) Approve(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(ctx context.Context, orderID uint, req dto.ActionRequest) (*domain.Order, error) {
		return c.orders.Approve(ctx, orderID, req.Actor)
	})
}

func (c *OrderController) Reject(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(ctx context.Context, orderID uint, req dto.ActionRequest) (*domain.Order, error) {
		return c.orders.Reject(ctx, orderID, req.Reason, req.Actor)
	})
}

func (c *OrderController) MarkServed(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(ctx context.Context, orderID uint, req dto.ActionRequest) (*domain.Order, error) {
		return c.orders.MarkServed(ctx, orderID, req.Actor)
	})
}

func (c *OrderController) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, orderID uint, req dto.ActionRequest) (*domain.Order, error)) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := respond.PathID(w, logger, traceID, r, "orderId")
	if !ok {
		return
	}

	var req dto.ActionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ValidationError(w, logger, traceID, "invalid JSON body")
			return
		}
	}

	order, err := fn(r.Context(), orderID, req)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusOK, dto.FromOrder(order))
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := respond.PathID(w, logger, traceID, r, "orderId")
	if !ok {
		return
	}

	order, err := c.orders.Get(r.Context(), orderID)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}
	respond.JSON(w, logger, http.StatusOK, dto.FromOrder(order))
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	status := r.URL.Query().Get("status")
	if status == "" {
		status = domain.OrderStatusPending
	}

	orders, err := c.orders.ListByStatus(r.Context(), status)
	if err != nil {
		respond.Error(w, logger, traceID, err)
		return
	}

	out := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		out[i] = dto.FromOrder(&orders[i])
	}
	respond.JSON(w, logger, http.StatusOK, out)
}
