package main

import (
	"time"
)

const dateLayout = "2006-01-02"

// Car representa um carro do catálogo
type Car struct {
	CarUID             string    `json:"car_uid" db:"car_uid"`
	Brand              string    `json:"brand" db:"brand"`
	Model              string    `json:"model" db:"model"`
	RegistrationNumber string    `json:"registration_number" db:"registration_number"`
	Power              int       `json:"power" db:"power"`
	Type               string    `json:"type" db:"type"`
	Price              int       `json:"price" db:"price"`
	Availability       bool      `json:"availability" db:"availability"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Reservation representa a reserva de um carro para um período.
// O rental_uid é a chave de idempotência fornecida pelo rental-service:
// repetir a mesma reserva não cria um segundo registro.
type Reservation struct {
	ReservationUID string    `json:"reservation_uid" db:"reservation_uid"`
	RentalUID      string    `json:"rental_uid" db:"rental_uid"`
	CarUID         string    `json:"car_uid" db:"car_uid"`
	DateFrom       time.Time `json:"date_from" db:"date_from"`
	DateTo         time.Time `json:"date_to" db:"date_to"`
	Released       bool      `json:"released" db:"released"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NewReservation cria uma nova instância de Reservation
func NewReservation(reservationUID, rentalUID, carUID string, dateFrom, dateTo time.Time) *Reservation {
	return &Reservation{
		ReservationUID: reservationUID,
		RentalUID:      rentalUID,
		CarUID:         carUID,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		Released:       false,
		CreatedAt:      time.Now(),
	}
}

// Overlaps indica se dois períodos de reserva se sobrepõem
func (r *Reservation) Overlaps(dateFrom, dateTo time.Time) bool {
	return r.DateFrom.Before(dateTo) && r.DateTo.After(dateFrom)
}
