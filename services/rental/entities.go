package main

import (
	"time"
)

// dateLayout é o formato de data usado na API e nas chamadas entre serviços
const dateLayout = "2006-01-02"

// RentalStatus representa os possíveis status de um aluguel
type RentalStatus string

const (
	RentalStatusCreated    RentalStatus = "CREATED"
	RentalStatusInProgress RentalStatus = "IN_PROGRESS"
	RentalStatusFinished   RentalStatus = "FINISHED"
	RentalStatusCanceled   RentalStatus = "CANCELED"
)

// rentalTransitions define a máquina de estados do ciclo de vida do aluguel
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusCreated:    {RentalStatusInProgress, RentalStatusCanceled},
	RentalStatusInProgress: {RentalStatusFinished, RentalStatusCanceled},
	RentalStatusFinished:   {},
	RentalStatusCanceled:   {},
}

// Terminal indica se o status é terminal (nenhuma transição é permitida depois)
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusFinished || s == RentalStatusCanceled
}

// CanTransitionTo verifica se a transição de status é permitida pela máquina de estados
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rental representa um aluguel de carro no sistema
type Rental struct {
	RentalUID  string       `json:"rental_uid" db:"rental_uid"`
	Username   string       `json:"username" db:"username"`
	CarUID     string       `json:"car_uid" db:"car_uid"`
	PaymentUID string       `json:"payment_uid" db:"payment_uid"`
	DateFrom   time.Time    `json:"date_from" db:"date_from"`
	DateTo     time.Time    `json:"date_to" db:"date_to"`
	Status     RentalStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// NewRental cria uma nova instância de Rental com status CREATED
func NewRental(rentalUID, username, carUID, paymentUID string, dateFrom, dateTo time.Time) *Rental {
	return &Rental{
		RentalUID:  rentalUID,
		Username:   username,
		CarUID:     carUID,
		PaymentUID: paymentUID,
		DateFrom:   dateFrom,
		DateTo:     dateTo,
		Status:     RentalStatusCreated,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// RentalPrice calcula o preço do aluguel: diárias completas vezes o preço do carro
func RentalPrice(pricePerDay int, dateFrom, dateTo time.Time) int {
	days := int(dateTo.Sub(dateFrom).Hours() / 24)
	if dateTo.Sub(dateFrom)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days * pricePerDay
}
