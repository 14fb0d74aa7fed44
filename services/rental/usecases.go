package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrInvalidDateRange  = fmt.Errorf("date_from must be before date_to")
	ErrCarNotFound       = fmt.Errorf("car not found")
	ErrCarUnavailable    = fmt.Errorf("car unavailable for the requested period")
	ErrRentalNotFound    = fmt.Errorf("rental not found")
	ErrConflict          = fmt.Errorf("conflicting status update")
	ErrInvalidState      = fmt.Errorf("operation not permitted in the current rental state")
	ErrPaymentFailed     = fmt.Errorf("payment failed")
	ErrRemoteUnavailable = fmt.Errorf("remote service unavailable")
)

// RentalUseCase orquestra o fluxo de aluguel entre o cars-service, o
// payment-service e o banco de aluguéis, aplicando compensações em falha parcial
type RentalUseCase struct {
	repository Repository
	cars       CarsClient
	payment    PaymentClient
	reconciler ReconciliationPublisher

	bookingsCounter       metric.Int64Counter
	compensationsCounter  metric.Int64Counter
	reconciliationCounter metric.Int64Counter
}

// NewRentalUseCase cria uma nova instância de RentalUseCase
func NewRentalUseCase(
	repository Repository,
	cars CarsClient,
	payment PaymentClient,
	reconciler ReconciliationPublisher,
) *RentalUseCase {
	meter := otel.Meter("rental-service")
	bookings, _ := meter.Int64Counter("rental_bookings_total")
	compensations, _ := meter.Int64Counter("rental_compensations_total")
	reconciliations, _ := meter.Int64Counter("rental_compensation_failures_total")

	return &RentalUseCase{
		repository:            repository,
		cars:                  cars,
		payment:               payment,
		reconciler:            reconciler,
		bookingsCounter:       bookings,
		compensationsCounter:  compensations,
		reconciliationCounter: reconciliations,
	}
}

// BookRental executa a saga de reserva: reserva o carro, cobra o pagamento,
// persiste o aluguel e o transiciona para IN_PROGRESS. Em falha parcial,
// compensa os passos já comitados na ordem inversa.
func (uc *RentalUseCase) BookRental(ctx context.Context, username, carUID string, dateFrom, dateTo time.Time) (*Rental, error) {
	if !dateFrom.Before(dateTo) {
		return nil, ErrInvalidDateRange
	}

	// A saga corre até um desfecho terminal mesmo que o chamador desconecte
	ctx = context.WithoutCancel(ctx)

	car, err := uc.cars.GetCar(ctx, carUID)
	if err != nil {
		return nil, fmt.Errorf("resolving car: %w", err)
	}

	rentalUID := uuid.New().String()
	price := RentalPrice(car.Price, dateFrom, dateTo)
	saga := newSagaExecution(rentalUID, carUID)

	log.Printf("🚀 [BOOK] Starting saga | RentalUID: %s | User: %s | CarUID: %s | Price: %d",
		rentalUID, username, carUID, price)

	// Passo 1: reservar o carro. Nada comitado ainda, falha aborta sem compensar.
	if err := uc.cars.ReserveCar(ctx, carUID, rentalUID, dateFrom, dateTo); err != nil {
		log.Printf("❌ [BOOK] Reservation failed | RentalUID: %s | %v", rentalUID, err)
		return nil, fmt.Errorf("reserving car: %w", err)
	}
	saga.push("release_reservation", func(ctx context.Context) error {
		return uc.cars.ReleaseCar(ctx, carUID, rentalUID)
	})

	// Passo 2: cobrar o pagamento
	payment, err := uc.payment.Charge(ctx, rentalUID, username, price)
	if err != nil {
		return nil, uc.abort(ctx, saga, fmt.Errorf("charging payment: %w", err))
	}
	saga.paymentUID = payment.PaymentUID
	saga.push("refund_payment", func(ctx context.Context) error {
		return uc.payment.Refund(ctx, rentalUID)
	})

	// Passo 3: persistir o aluguel com status CREATED
	rental := NewRental(rentalUID, username, carUID, payment.PaymentUID, dateFrom, dateTo)
	if err := uc.repository.CreateRental(ctx, rental); err != nil {
		return nil, uc.abort(ctx, saga, fmt.Errorf("persisting rental: %w", err))
	}
	saga.push("cancel_rental", func(ctx context.Context) error {
		err := uc.repository.UpdateRentalStatus(ctx, rentalUID, RentalStatusCreated, RentalStatusCanceled)
		if errors.Is(err, ErrConflict) {
			// já cancelado por uma repetição desta mesma compensação
			return nil
		}
		return err
	})

	// Passo 4: CREATED -> IN_PROGRESS
	if err := uc.repository.UpdateRentalStatus(ctx, rentalUID, RentalStatusCreated, RentalStatusInProgress); err != nil {
		return nil, uc.abort(ctx, saga, fmt.Errorf("activating rental: %w", err))
	}
	rental.Status = RentalStatusInProgress

	uc.bookingsCounter.Add(ctx, 1)
	log.Printf("✅ [BOOK] Saga committed | RentalUID: %s | PaymentUID: %s", rentalUID, payment.PaymentUID)
	return rental, nil
}

// FinishRental finaliza o aluguel: liquida o pagamento e libera a reserva.
// Idempotente sobre aluguéis já terminais; o compare-and-set garante que apenas
// uma chamada concorrente executa a liquidação.
func (uc *RentalUseCase) FinishRental(ctx context.Context, username, rentalUID string) error {
	ctx = context.WithoutCancel(ctx)

	rental, err := uc.repository.GetRental(ctx, username, rentalUID)
	if err != nil {
		return err
	}

	switch rental.Status {
	case RentalStatusFinished, RentalStatusCanceled:
		log.Printf("ℹ️ [FINISH] Rental already terminal (%s), no-op | RentalUID: %s", rental.Status, rentalUID)
		return nil
	case RentalStatusCreated:
		return fmt.Errorf("%w: rental %s is not in progress", ErrInvalidState, rentalUID)
	}

	// CAS primeiro: o vencedor executa a liquidação exatamente uma vez
	if err := uc.repository.UpdateRentalStatus(ctx, rentalUID, RentalStatusInProgress, RentalStatusFinished); err != nil {
		if errors.Is(err, ErrConflict) {
			return uc.resolveStatusConflict(ctx, username, rentalUID, "FINISH")
		}
		return err
	}

	log.Printf("✅ [FINISH] RentalUID: %s", rentalUID)
	return uc.teardown(ctx, rental, false)
}

// CancelRental cancela o aluguel: estorna o pagamento e libera a reserva.
// Permitido de CREATED ou IN_PROGRESS; cancelar um aluguel já cancelado é no-op;
// cancelar um aluguel finalizado falha com ErrInvalidState.
func (uc *RentalUseCase) CancelRental(ctx context.Context, username, rentalUID string) error {
	ctx = context.WithoutCancel(ctx)

	// Um Conflict no CAS é resolvido relendo o estado atual, nunca repetindo às cegas
	for attempt := 0; attempt < 2; attempt++ {
		rental, err := uc.repository.GetRental(ctx, username, rentalUID)
		if err != nil {
			return err
		}

		switch rental.Status {
		case RentalStatusCanceled:
			log.Printf("ℹ️ [CANCEL] Rental already canceled, no-op | RentalUID: %s", rentalUID)
			return nil
		case RentalStatusFinished:
			return fmt.Errorf("%w: rental %s already finished", ErrInvalidState, rentalUID)
		}

		err = uc.repository.UpdateRentalStatus(ctx, rentalUID, rental.Status, RentalStatusCanceled)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}

		log.Printf("✅ [CANCEL] RentalUID: %s", rentalUID)
		return uc.teardown(ctx, rental, true)
	}
	return ErrConflict
}

// GetRental busca um aluguel do usuário pelo UID
func (uc *RentalUseCase) GetRental(ctx context.Context, username, rentalUID string) (*Rental, error) {
	return uc.repository.GetRental(ctx, username, rentalUID)
}

// ListRentals lista os aluguéis do usuário
func (uc *RentalUseCase) ListRentals(ctx context.Context, username string) ([]*Rental, error) {
	return uc.repository.ListRentals(ctx, username)
}

// abort compensa os passos já comitados da saga e devolve o erro terminal da
// requisição: a causa original, ou um *CompensationError quando a própria
// compensação falhou definitivamente.
func (uc *RentalUseCase) abort(ctx context.Context, saga *sagaExecution, cause error) error {
	uc.compensationsCounter.Add(ctx, 1)
	log.Printf("↩️ [BOOK] Aborting saga | RentalUID: %s | Cause: %v", saga.rentalUID, cause)

	if err := saga.compensate(ctx, cause); err != nil {
		var compErr *CompensationError
		if errors.As(err, &compErr) {
			return uc.reportCompensationFailure(ctx, compErr)
		}
		return err
	}
	return cause
}

// teardown executa as ações de encerramento de Finish/Cancel (liquidar ou
// estornar o pagamento, liberar a reserva) sob a mesma política de retry
// limitado e reconciliação das compensações da saga.
func (uc *RentalUseCase) teardown(ctx context.Context, rental *Rental, refund bool) error {
	saga := newSagaExecution(rental.RentalUID, rental.CarUID)
	saga.paymentUID = rental.PaymentUID

	// compensate executa em ordem inversa: pagamento primeiro, reserva depois
	saga.push("release_reservation", func(ctx context.Context) error {
		return uc.cars.ReleaseCar(ctx, rental.CarUID, rental.RentalUID)
	})
	if refund {
		saga.push("refund_payment", func(ctx context.Context) error {
			return uc.payment.Refund(ctx, rental.RentalUID)
		})
	} else {
		saga.push("capture_payment", func(ctx context.Context) error {
			return uc.payment.Capture(ctx, rental.RentalUID)
		})
	}

	if err := saga.compensate(ctx, nil); err != nil {
		var compErr *CompensationError
		if errors.As(err, &compErr) {
			return uc.reportCompensationFailure(ctx, compErr)
		}
		return err
	}
	return nil
}

// resolveStatusConflict relê o aluguel após perder um CAS e aplica a regra de
// idempotência: estado terminal é devolvido como sucesso sem novos efeitos.
func (uc *RentalUseCase) resolveStatusConflict(ctx context.Context, username, rentalUID, op string) error {
	rental, err := uc.repository.GetRental(ctx, username, rentalUID)
	if err != nil {
		return err
	}
	if rental.Status.Terminal() {
		log.Printf("ℹ️ [%s] Lost the status race, rental already %s | RentalUID: %s", op, rental.Status, rentalUID)
		return nil
	}
	return ErrConflict
}

// reportCompensationFailure registra a falha de compensação para reconciliação
// manual e a devolve como erro terminal da requisição
func (uc *RentalUseCase) reportCompensationFailure(ctx context.Context, compErr *CompensationError) error {
	uc.reconciliationCounter.Add(ctx, 1)
	log.Printf("❌ [RECONCILIATION REQUIRED] %s", compErr.Error())

	if err := uc.reconciler.PublishCompensationFailure(ctx, compErr); err != nil {
		log.Printf("❌ Failed to publish reconciliation event: %v", err)
	}
	return compErr
}
