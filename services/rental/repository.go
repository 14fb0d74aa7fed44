package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository define a interface para operações de banco de dados de aluguéis
type Repository interface {
	// CreateRental cria um novo aluguel no banco de dados
	CreateRental(ctx context.Context, rental *Rental) error

	// GetRental busca um aluguel pelo UID, restrito ao usuário dono
	GetRental(ctx context.Context, username, rentalUID string) (*Rental, error)

	// ListRentals lista todos os aluguéis do usuário
	ListRentals(ctx context.Context, username string) ([]*Rental, error)

	// UpdateRentalStatus atualiza o status com compare-and-set sobre o status anterior.
	// Retorna ErrConflict se o status armazenado já não for o esperado.
	UpdateRentalStatus(ctx context.Context, rentalUID string, from, to RentalStatus) error
}

// RentalRepository implementa Repository usando PostgreSQL
type RentalRepository struct {
	db *pgxpool.Pool
}

// NewRentalRepository cria uma nova instância de RentalRepository
func NewRentalRepository(db *pgxpool.Pool) Repository {
	return &RentalRepository{
		db: db,
	}
}

// CreateRental cria um novo aluguel no banco de dados
func (r *RentalRepository) CreateRental(ctx context.Context, rental *Rental) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rentals (rental_uid, username, car_uid, payment_uid, date_from, date_to, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rental.RentalUID, rental.Username, rental.CarUID, rental.PaymentUID,
		rental.DateFrom, rental.DateTo, rental.Status, rental.CreatedAt, rental.UpdatedAt)
	return err
}

// GetRental busca um aluguel pelo UID, restrito ao usuário dono
func (r *RentalRepository) GetRental(ctx context.Context, username, rentalUID string) (*Rental, error) {
	var rental Rental
	err := r.db.QueryRow(ctx, `
		SELECT rental_uid, username, car_uid, payment_uid, date_from, date_to, status, created_at, updated_at
		FROM rentals WHERE rental_uid = $1 AND username = $2
	`, rentalUID, username).Scan(
		&rental.RentalUID, &rental.Username, &rental.CarUID, &rental.PaymentUID,
		&rental.DateFrom, &rental.DateTo, &rental.Status, &rental.CreatedAt, &rental.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRentalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// ListRentals lista todos os aluguéis do usuário
func (r *RentalRepository) ListRentals(ctx context.Context, username string) ([]*Rental, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rental_uid, username, car_uid, payment_uid, date_from, date_to, status, created_at, updated_at
		FROM rentals WHERE username = $1
		ORDER BY created_at
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := make([]*Rental, 0)
	for rows.Next() {
		var rental Rental
		err := rows.Scan(
			&rental.RentalUID, &rental.Username, &rental.CarUID, &rental.PaymentUID,
			&rental.DateFrom, &rental.DateTo, &rental.Status, &rental.CreatedAt, &rental.UpdatedAt)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, &rental)
	}
	return rentals, rows.Err()
}

// UpdateRentalStatus atualiza o status com compare-and-set sobre o status anterior.
// A condição no WHERE serializa Finish/Cancel concorrentes sobre o mesmo aluguel:
// apenas uma transação observa rows affected = 1, as demais recebem ErrConflict.
func (r *RentalRepository) UpdateRentalStatus(ctx context.Context, rentalUID string, from, to RentalStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE rentals
		SET status = $1, updated_at = NOW()
		WHERE rental_uid = $2 AND status = $3
	`, to, rentalUID, from)
	if err != nil {
		return fmt.Errorf("failed to update rental status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
