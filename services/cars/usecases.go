package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// CarUseCase contém a lógica de negócio do catálogo e das reservas
type CarUseCase struct {
	repository CarRepository
	cache      *CarCache

	reservationsCounter metric.Int64Counter
	releasesCounter     metric.Int64Counter
}

// NewCarUseCase cria uma nova instância de CarUseCase. O cache é opcional.
func NewCarUseCase(repository CarRepository, cache *CarCache) *CarUseCase {
	meter := otel.Meter("cars-service")
	reservations, _ := meter.Int64Counter("car_reservations_total")
	releases, _ := meter.Int64Counter("car_releases_total")

	return &CarUseCase{
		repository:          repository,
		cache:               cache,
		reservationsCounter: reservations,
		releasesCounter:     releases,
	}
}

// GetCar busca um carro do catálogo, passando pelo cache quando configurado
func (uc *CarUseCase) GetCar(ctx context.Context, carUID string) (*Car, error) {
	if uc.cache == nil {
		return uc.repository.GetCar(ctx, carUID)
	}
	return uc.cache.GetCar(ctx, carUID, func(ctx context.Context) (*Car, error) {
		return uc.repository.GetCar(ctx, carUID)
	})
}

// ListCars lista o catálogo de carros
func (uc *CarUseCase) ListCars(ctx context.Context) ([]*Car, error) {
	return uc.repository.ListCars(ctx)
}

// ReserveCar reserva o carro para o período, usando o rentalUID como chave de
// idempotência: repetir a mesma requisição após timeout não duplica a reserva
func (uc *CarUseCase) ReserveCar(ctx context.Context, carUID, rentalUID string, dateFrom, dateTo time.Time) error {
	log.Printf("➡️ [RESERVE] CarUID: %s | RentalUID: %s | %s..%s",
		carUID, rentalUID, dateFrom.Format(dateLayout), dateTo.Format(dateLayout))

	if !dateFrom.Before(dateTo) {
		return fmt.Errorf("%w: date_from must be before date_to", ErrCarUnavailable)
	}

	reservation := NewReservation(uuid.New().String(), rentalUID, carUID, dateFrom, dateTo)
	if err := uc.repository.CreateReservation(ctx, reservation); err != nil {
		log.Printf("❌ [RESERVE] Failed | CarUID: %s | RentalUID: %s | %v", carUID, rentalUID, err)
		return err
	}

	uc.reservationsCounter.Add(ctx, 1)
	log.Printf("✅ [RESERVE] CarUID: %s | RentalUID: %s", carUID, rentalUID)
	return nil
}

// ReleaseCar libera a reserva do carro; liberar duas vezes é no-op
func (uc *CarUseCase) ReleaseCar(ctx context.Context, rentalUID string) error {
	log.Printf("↩️ [RELEASE] RentalUID: %s", rentalUID)

	if err := uc.repository.ReleaseReservation(ctx, rentalUID); err != nil {
		log.Printf("❌ [RELEASE] Failed | RentalUID: %s | %v", rentalUID, err)
		return err
	}

	uc.releasesCounter.Add(ctx, 1)
	log.Printf("✅ [RELEASE] RentalUID: %s", rentalUID)
	return nil
}
