package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSagaCompensateRunsInReverseOrder(t *testing.T) {
	// Arrange
	saga := newSagaExecution("rental-1", "car-1")
	var order []string

	saga.push("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	saga.push("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})
	saga.push("third", func(ctx context.Context) error {
		order = append(order, "third")
		return nil
	})

	// Act
	err := saga.compensate(context.Background(), errors.New("step failed"))

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestSagaCompensateRetriesTransientFailures(t *testing.T) {
	saga := newSagaExecution("rental-1", "car-1")
	attempts := 0

	saga.push("flaky", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	err := saga.compensate(context.Background(), nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestSagaCompensateGivesUpAfterBoundedAttempts(t *testing.T) {
	saga := newSagaExecution("rental-1", "car-1")
	saga.paymentUID = "payment-1"
	attempts := 0

	saga.push("release_reservation", func(ctx context.Context) error {
		return nil
	})
	saga.push("refund_payment", func(ctx context.Context) error {
		attempts++
		return errors.New("payment-service down")
	})

	err := saga.compensate(context.Background(), errors.New("persisting rental failed"))

	var compErr *CompensationError
	assert.ErrorAs(t, err, &compErr)
	assert.Equal(t, compensationMaxAttempts, attempts)
	assert.Equal(t, "rental-1", compErr.RentalUID)
	assert.Equal(t, "payment-1", compErr.PaymentUID)
	assert.Equal(t, []string{"refund_payment"}, compErr.Failed)
	assert.Contains(t, compErr.Reason, "payment-service down")
	assert.Contains(t, compErr.Reason, "persisting rental failed")
}

func TestSagaCompensateContinuesPastFailedStep(t *testing.T) {
	// Uma compensação que falha não impede as anteriores de serem desfeitas
	saga := newSagaExecution("rental-1", "car-1")
	released := false

	saga.push("release_reservation", func(ctx context.Context) error {
		released = true
		return nil
	})
	saga.push("refund_payment", func(ctx context.Context) error {
		return errors.New("down")
	})

	err := saga.compensate(context.Background(), nil)

	assert.Error(t, err)
	assert.True(t, released)
}

func TestRetryActionStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := retryAction(context.Background(), "noop", 5, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
