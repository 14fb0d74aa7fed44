package main

import (
	"time"
)

// PaymentStatus representa os possíveis status de um pagamento
const (
	PaymentStatusPaid     = "PAID"
	PaymentStatusCaptured = "CAPTURED"
	PaymentStatusReversed = "REVERSED"
)

// Payment representa um pagamento ligado a um aluguel. O rental_uid é único:
// é a chave de idempotência que impede cobrança dupla em retries.
type Payment struct {
	PaymentUID string    `json:"payment_uid" db:"payment_uid"`
	RentalUID  string    `json:"rental_uid" db:"rental_uid"`
	Username   string    `json:"username" db:"username"`
	Price      int       `json:"price" db:"price"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// NewPayment cria uma nova instância de Payment com status PAID
func NewPayment(paymentUID, rentalUID, username string, price int) *Payment {
	return &Payment{
		PaymentUID: paymentUID,
		RentalUID:  rentalUID,
		Username:   username,
		Price:      price,
		Status:     PaymentStatusPaid,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}
