package main

import (
	"testing"
	"time"
)

func TestNewReservation(t *testing.T) {
	dateFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dateTo := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	reservation := NewReservation("res-1", "rental-1", "car-1", dateFrom, dateTo)

	if reservation.ReservationUID != "res-1" {
		t.Errorf("Expected ReservationUID res-1, got %s", reservation.ReservationUID)
	}
	if reservation.RentalUID != "rental-1" {
		t.Errorf("Expected RentalUID rental-1, got %s", reservation.RentalUID)
	}
	if reservation.CarUID != "car-1" {
		t.Errorf("Expected CarUID car-1, got %s", reservation.CarUID)
	}
	if reservation.Released {
		t.Error("Expected new reservation to not be released")
	}
	if reservation.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestReservationOverlaps(t *testing.T) {
	dateFrom := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	dateTo := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	reservation := NewReservation("res-1", "rental-1", "car-1", dateFrom, dateTo)

	day := func(d int) time.Time {
		return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	}

	if !reservation.Overlaps(day(15), day(25)) {
		t.Error("Expected overlap with a period starting inside the reservation")
	}
	if !reservation.Overlaps(day(5), day(15)) {
		t.Error("Expected overlap with a period ending inside the reservation")
	}
	if !reservation.Overlaps(day(5), day(25)) {
		t.Error("Expected overlap with a period covering the reservation")
	}
	if reservation.Overlaps(day(20), day(25)) {
		t.Error("Expected no overlap with a period starting at the reservation end")
	}
	if reservation.Overlaps(day(1), day(10)) {
		t.Error("Expected no overlap with a period ending at the reservation start")
	}
}
