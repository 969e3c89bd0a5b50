package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nfe, ok := err.(*NotFoundError); ok {
		return nfe, true
	}
	return nil, false
}

// InvalidTransitionError is returned when an order, refund or wallet
// transaction is asked to move to a state its current state does not allow.
// The loser of a concurrent transition race receives this error.
type InvalidTransitionError struct {
	Message string
}

func (e *InvalidTransitionError) Error() string {
	return e.Message
}

func NewInvalidTransitionError(message string) *InvalidTransitionError {
	return &InvalidTransitionError{Message: message}
}

func IsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	if ite, ok := err.(*InvalidTransitionError); ok {
		return ite, true
	}
	return nil, false
}

// PaymentRequiredError: a cashier-originated order cannot be approved unpaid.
type PaymentRequiredError struct {
	Message string
}

func (e *PaymentRequiredError) Error() string {
	return e.Message
}

func NewPaymentRequiredError(message string) *PaymentRequiredError {
	return &PaymentRequiredError{Message: message}
}

func IsPaymentRequiredError(err error) (*PaymentRequiredError, bool) {
	if pre, ok := err.(*PaymentRequiredError); ok {
		return pre, true
	}
	return nil, false
}

type AlreadyPaidError struct {
	Message string
}

func (e *AlreadyPaidError) Error() string {
	return e.Message
}

func NewAlreadyPaidError(message string) *AlreadyPaidError {
	return &AlreadyPaidError{Message: message}
}

func IsAlreadyPaidError(err error) (*AlreadyPaidError, bool) {
	if ape, ok := err.(*AlreadyPaidError); ok {
		return ape, true
	}
	return nil, false
}

// AlreadyProcessedError: the refund already left its pending state.
type AlreadyProcessedError struct {
	Message string
}

func (e *AlreadyProcessedError) Error() string {
	return e.Message
}

func NewAlreadyProcessedError(message string) *AlreadyProcessedError {
	return &AlreadyProcessedError{Message: message}
}

func IsAlreadyProcessedError(err error) (*AlreadyProcessedError, bool) {
	if ape, ok := err.(*AlreadyProcessedError); ok {
		return ape, true
	}
	return nil, false
}

type InsufficientPointsError struct {
	Message string
}

func (e *InsufficientPointsError) Error() string {
	return e.Message
}

func NewInsufficientPointsError(message string) *InsufficientPointsError {
	return &InsufficientPointsError{Message: message}
}

func IsInsufficientPointsError(err error) (*InsufficientPointsError, bool) {
	if ipe, ok := err.(*InsufficientPointsError); ok {
		return ipe, true
	}
	return nil, false
}

type InsufficientBalanceError struct {
	Message string
}

func (e *InsufficientBalanceError) Error() string {
	return e.Message
}

func NewInsufficientBalanceError(message string) *InsufficientBalanceError {
	return &InsufficientBalanceError{Message: message}
}

func IsInsufficientBalanceError(err error) (*InsufficientBalanceError, bool) {
	if ibe, ok := err.(*InsufficientBalanceError); ok {
		return ibe, true
	}
	return nil, false
}

// OrderNotPaidError: refunds can only be requested against paid orders.
type OrderNotPaidError struct {
	Message string
}

func (e *OrderNotPaidError) Error() string {
	return e.Message
}

func NewOrderNotPaidError(message string) *OrderNotPaidError {
	return &OrderNotPaidError{Message: message}
}

func IsOrderNotPaidError(err error) (*OrderNotPaidError, bool) {
	if onpe, ok := err.(*OrderNotPaidError); ok {
		return onpe, true
	}
	return nil, false
}
