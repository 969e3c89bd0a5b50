// Package respond holds the JSON envelope and error mapping shared by the
// HTTP controllers.
package respond

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "barista/internal/errors"
)

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

func JSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// Error maps a typed domain error to its HTTP status and reason code. No
// error is silently swallowed: anything unrecognized is logged and surfaces
// as a 500.
func Error(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	message := "an unexpected error occurred"
	var details []apperrors.ValidationDetail

	switch {
	case is(apperrors.IsNotFoundError(err)):
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	case is(apperrors.IsInvalidTransitionError(err)):
		status, code, message = http.StatusConflict, "INVALID_TRANSITION", err.Error()
	case is(apperrors.IsAlreadyPaidError(err)):
		status, code, message = http.StatusConflict, "ALREADY_PAID", err.Error()
	case is(apperrors.IsAlreadyProcessedError(err)):
		status, code, message = http.StatusConflict, "ALREADY_PROCESSED", err.Error()
	case is(apperrors.IsPaymentRequiredError(err)):
		status, code, message = http.StatusPaymentRequired, "PAYMENT_REQUIRED", err.Error()
	case is(apperrors.IsInsufficientPointsError(err)):
		status, code, message = http.StatusUnprocessableEntity, "INSUFFICIENT_POINTS", err.Error()
	case is(apperrors.IsInsufficientBalanceError(err)):
		status, code, message = http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", err.Error()
	case is(apperrors.IsOrderNotPaidError(err)):
		status, code, message = http.StatusUnprocessableEntity, "ORDER_NOT_PAID", err.Error()
	default:
		if ve, ok := apperrors.IsValidationError(err); ok {
			status, code, message = http.StatusBadRequest, "VALIDATION_ERROR", ve.Message
			details = ve.Details
		} else {
			logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
		}
	}

	JSON(w, logger, status, ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func is[T any](_ T, ok bool) bool {
	return ok
}

func ValidationError(w http.ResponseWriter, logger *zap.Logger, traceID, message string, details ...apperrors.ValidationDetail) {
	Error(w, logger, traceID, apperrors.NewValidationError(message, details...))
}

// PathID parses a positive integer path parameter, writing the validation
// error itself when the value is unusable.
func PathID(w http.ResponseWriter, logger *zap.Logger, traceID string, r *http.Request, param string) (uint, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ValidationError(w, logger, traceID, "invalid "+param, apperrors.ValidationDetail{
			Field:   param,
			Message: param + " must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}
