package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound = fmt.Errorf("payment not found")
	ErrPaymentConflict = fmt.Errorf("payment status changed concurrently")
)

// PaymentRepository define a interface para operações de banco de dados de pagamentos
type PaymentRepository interface {
	// GetPaymentByRentalUID busca o pagamento pelo aluguel
	GetPaymentByRentalUID(ctx context.Context, rentalUID string) (*Payment, error)

	// CreatePayment insere o pagamento; idempotente sobre o rental_uid
	CreatePayment(ctx context.Context, payment *Payment) error

	// UpdatePaymentStatus atualiza o status com compare-and-set sobre o status
	// anterior; retorna ErrPaymentConflict se o status armazenado mudou
	UpdatePaymentStatus(ctx context.Context, rentalUID, from, to string) error
}

// PostgresPaymentRepository implementa PaymentRepository usando database/sql
type PostgresPaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository cria uma nova instância de PostgresPaymentRepository
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

// GetPaymentByRentalUID busca o pagamento pelo aluguel
func (r *PostgresPaymentRepository) GetPaymentByRentalUID(ctx context.Context, rentalUID string) (*Payment, error) {
	var payment Payment
	err := r.db.QueryRowContext(ctx, `
		SELECT payment_uid, rental_uid, username, price, status, created_at, updated_at
		FROM payments WHERE rental_uid = $1
	`, rentalUID).Scan(
		&payment.PaymentUID, &payment.RentalUID, &payment.Username,
		&payment.Price, &payment.Status, &payment.CreatedAt, &payment.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreatePayment insere o pagamento. ON CONFLICT DO NOTHING torna a inserção
// idempotente sobre o rental_uid: uma retry corrida não cria segunda cobrança.
func (r *PostgresPaymentRepository) CreatePayment(ctx context.Context, payment *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (payment_uid, rental_uid, username, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (rental_uid) DO NOTHING
	`, payment.PaymentUID, payment.RentalUID, payment.Username,
		payment.Price, payment.Status, payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// UpdatePaymentStatus atualiza o status com compare-and-set sobre o status anterior
func (r *PostgresPaymentRepository) UpdatePaymentStatus(ctx context.Context, rentalUID, from, to string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE rental_uid = $2 AND status = $3
	`, to, rentalUID, from)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPaymentConflict
	}
	return nil
}
