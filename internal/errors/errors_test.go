package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("invalid input", ValidationDetail{
		Field:   "items",
		Message: "items must not be empty",
	})

	assert.Equal(t, "invalid input", err.Error())
	assert.Len(t, err.Details, 1)

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, "items", ve.Details[0].Field)

	_, ok = IsValidationError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestInternalError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("querying orders", cause)

	assert.Equal(t, "querying orders: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestInternalError_NoCause(t *testing.T) {
	err := NewInternalError("something broke", nil)
	assert.Equal(t, "something broke", err.Error())
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("order with id 42 not found")

	nfe, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "order with id 42 not found", nfe.Error())

	_, ok = IsNotFoundError(errors.New("other"))
	assert.False(t, ok)
}

func TestTypedErrorChecks_DoNotCross(t *testing.T) {
	transition := NewInvalidTransitionError("order is served")
	paid := NewAlreadyPaidError("order is already paid")
	processed := NewAlreadyProcessedError("refund is already approved")
	payment := NewPaymentRequiredError("cashier order must be paid")
	points := NewInsufficientPointsError("balance too low")
	balance := NewInsufficientBalanceError("wallet too low")
	notPaid := NewOrderNotPaidError("order is unpaid")

	_, ok := IsInvalidTransitionError(transition)
	assert.True(t, ok)
	_, ok = IsInvalidTransitionError(paid)
	assert.False(t, ok)

	_, ok = IsAlreadyPaidError(paid)
	assert.True(t, ok)
	_, ok = IsAlreadyPaidError(processed)
	assert.False(t, ok)

	_, ok = IsAlreadyProcessedError(processed)
	assert.True(t, ok)

	_, ok = IsPaymentRequiredError(payment)
	assert.True(t, ok)

	_, ok = IsInsufficientPointsError(points)
	assert.True(t, ok)
	_, ok = IsInsufficientPointsError(balance)
	assert.False(t, ok)

	_, ok = IsInsufficientBalanceError(balance)
	assert.True(t, ok)

	_, ok = IsOrderNotPaidError(notPaid)
	assert.True(t, ok)
	_, ok = IsOrderNotPaidError(transition)
	assert.False(t, ok)
}
