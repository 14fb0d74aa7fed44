package main

import (
	"testing"
	"time"
)

func TestNewRental(t *testing.T) {
	// Arrange
	rentalUID := "rental-123"
	username := "alice"
	carUID := "car-456"
	paymentUID := "payment-789"
	dateFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dateTo := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	// Act
	rental := NewRental(rentalUID, username, carUID, paymentUID, dateFrom, dateTo)

	// Assert
	if rental.RentalUID != rentalUID {
		t.Errorf("Expected RentalUID %s, got %s", rentalUID, rental.RentalUID)
	}
	if rental.Username != username {
		t.Errorf("Expected Username %s, got %s", username, rental.Username)
	}
	if rental.CarUID != carUID {
		t.Errorf("Expected CarUID %s, got %s", carUID, rental.CarUID)
	}
	if rental.PaymentUID != paymentUID {
		t.Errorf("Expected PaymentUID %s, got %s", paymentUID, rental.PaymentUID)
	}
	if rental.Status != RentalStatusCreated {
		t.Errorf("Expected Status %s, got %s", RentalStatusCreated, rental.Status)
	}
	if rental.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
	if rental.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}
}

func TestRentalStatusTransitions(t *testing.T) {
	if !RentalStatusCreated.CanTransitionTo(RentalStatusInProgress) {
		t.Error("Expected CREATED -> IN_PROGRESS to be allowed")
	}
	if !RentalStatusCreated.CanTransitionTo(RentalStatusCanceled) {
		t.Error("Expected CREATED -> CANCELED to be allowed")
	}
	if RentalStatusCreated.CanTransitionTo(RentalStatusFinished) {
		t.Error("Expected CREATED -> FINISHED to be forbidden")
	}
	if !RentalStatusInProgress.CanTransitionTo(RentalStatusFinished) {
		t.Error("Expected IN_PROGRESS -> FINISHED to be allowed")
	}
	if !RentalStatusInProgress.CanTransitionTo(RentalStatusCanceled) {
		t.Error("Expected IN_PROGRESS -> CANCELED to be allowed")
	}
}

func TestRentalStatusTerminalIsImmutable(t *testing.T) {
	for _, terminal := range []RentalStatus{RentalStatusFinished, RentalStatusCanceled} {
		if !terminal.Terminal() {
			t.Errorf("Expected %s to be terminal", terminal)
		}
		for _, next := range []RentalStatus{RentalStatusCreated, RentalStatusInProgress, RentalStatusFinished, RentalStatusCanceled} {
			if terminal.CanTransitionTo(next) {
				t.Errorf("Expected %s -> %s to be forbidden", terminal, next)
			}
		}
	}

	if RentalStatusCreated.Terminal() {
		t.Error("Expected CREATED to be transient")
	}
	if RentalStatusInProgress.Terminal() {
		t.Error("Expected IN_PROGRESS to be transient")
	}
}

func TestRentalPrice(t *testing.T) {
	dateFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if price := RentalPrice(100, dateFrom, dateFrom.AddDate(0, 0, 4)); price != 400 {
		t.Errorf("Expected price 400 for 4 full days, got %d", price)
	}
	if price := RentalPrice(100, dateFrom, dateFrom.Add(12*time.Hour)); price != 100 {
		t.Errorf("Expected price 100 for a partial day, got %d", price)
	}
	if price := RentalPrice(100, dateFrom, dateFrom.Add(36*time.Hour)); price != 200 {
		t.Errorf("Expected price 200 for one and a half days, got %d", price)
	}
}
