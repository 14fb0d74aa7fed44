package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCarNotFound    = fmt.Errorf("car not found")
	ErrCarUnavailable = fmt.Errorf("car unavailable for the requested period")
)

// CarRepository define a interface para operações de banco de dados de carros
type CarRepository interface {
	// GetCar busca um carro pelo UID
	GetCar(ctx context.Context, carUID string) (*Car, error)

	// ListCars lista o catálogo de carros
	ListCars(ctx context.Context) ([]*Car, error)

	// CreateReservation cria a reserva se o período estiver livre. Idempotente
	// sobre o rental_uid: repetir a mesma reserva não cria um segundo registro.
	CreateReservation(ctx context.Context, reservation *Reservation) error

	// ReleaseReservation marca a reserva como liberada. Liberar uma reserva
	// inexistente ou já liberada é no-op.
	ReleaseReservation(ctx context.Context, rentalUID string) error
}

// PostgresCarRepository implementa CarRepository usando PostgreSQL
type PostgresCarRepository struct {
	db *pgxpool.Pool
}

// NewCarRepository cria uma nova instância de PostgresCarRepository
func NewCarRepository(db *pgxpool.Pool) CarRepository {
	return &PostgresCarRepository{
		db: db,
	}
}

// GetCar busca um carro pelo UID
func (r *PostgresCarRepository) GetCar(ctx context.Context, carUID string) (*Car, error) {
	var car Car
	err := r.db.QueryRow(ctx, `
		SELECT car_uid, brand, model, registration_number, power, type, price, availability, created_at
		FROM cars WHERE car_uid = $1
	`, carUID).Scan(
		&car.CarUID, &car.Brand, &car.Model, &car.RegistrationNumber,
		&car.Power, &car.Type, &car.Price, &car.Availability, &car.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// ListCars lista o catálogo de carros
func (r *PostgresCarRepository) ListCars(ctx context.Context) ([]*Car, error) {
	rows, err := r.db.Query(ctx, `
		SELECT car_uid, brand, model, registration_number, power, type, price, availability, created_at
		FROM cars
		ORDER BY brand, model
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]*Car, 0)
	for rows.Next() {
		var car Car
		err := rows.Scan(
			&car.CarUID, &car.Brand, &car.Model, &car.RegistrationNumber,
			&car.Power, &car.Type, &car.Price, &car.Availability, &car.CreatedAt)
		if err != nil {
			return nil, err
		}
		cars = append(cars, &car)
	}
	return cars, rows.Err()
}

// CreateReservation cria a reserva dentro de uma transação. O lock pessimista
// na linha do carro serializa reservas concorrentes do mesmo carro; a checagem
// de sobreposição e o insert acontecem sob o mesmo lock.
func (r *PostgresCarRepository) CreateReservation(ctx context.Context, reservation *Reservation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reservation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var availability bool
	err = tx.QueryRow(ctx, `
		SELECT availability FROM cars WHERE car_uid = $1 FOR UPDATE
	`, reservation.CarUID).Scan(&availability)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCarNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock car row: %w", err)
	}
	if !availability {
		return ErrCarUnavailable
	}

	var overlapping bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE car_uid = $1
			  AND rental_uid <> $2
			  AND released = FALSE
			  AND date_from < $4
			  AND date_to > $3
		)
	`, reservation.CarUID, reservation.RentalUID, reservation.DateFrom, reservation.DateTo).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check reservation overlap: %w", err)
	}
	if overlapping {
		return ErrCarUnavailable
	}

	// ON CONFLICT DO NOTHING torna a reserva idempotente sobre o rental_uid
	_, err = tx.Exec(ctx, `
		INSERT INTO reservations (reservation_uid, rental_uid, car_uid, date_from, date_to, released, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (rental_uid) DO NOTHING
	`, reservation.ReservationUID, reservation.RentalUID, reservation.CarUID,
		reservation.DateFrom, reservation.DateTo, reservation.Released, reservation.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	return tx.Commit(ctx)
}

// ReleaseReservation marca a reserva como liberada; zero linhas afetadas
// significa que não há nada a liberar, e isso não é um erro
func (r *PostgresCarRepository) ReleaseReservation(ctx context.Context, rentalUID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET released = TRUE
		WHERE rental_uid = $1 AND released = FALSE
	`, rentalUID)
	if err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	return nil
}
