package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrUnprocessableEntity = fmt.Errorf("unprocessable entity")
	ErrAlreadyReversed     = fmt.Errorf("payment already reversed")
)

// PaymentUseCase contém a lógica de negócio de pagamentos
type PaymentUseCase struct {
	repository PaymentRepository

	chargesCounter metric.Int64Counter
	refundsCounter metric.Int64Counter
}

// NewPaymentUseCase cria uma nova instância de PaymentUseCase
func NewPaymentUseCase(repository PaymentRepository) *PaymentUseCase {
	meter := otel.Meter("payment-service")
	charges, _ := meter.Int64Counter("payment_charges_total")
	refunds, _ := meter.Int64Counter("payment_refunds_total")

	return &PaymentUseCase{
		repository:     repository,
		chargesCounter: charges,
		refundsCounter: refunds,
	}
}

// Charge cobra o valor do aluguel. Idempotente: uma cobrança repetida para o
// mesmo rental_uid devolve o pagamento existente sem cobrar de novo.
func (uc *PaymentUseCase) Charge(ctx context.Context, rentalUID, username string, price int) (*Payment, error) {
	log.Printf("➡️ [CHARGE] RentalUID: %s | User: %s | Price: %d", rentalUID, username, price)

	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrUnprocessableEntity)
	}

	existing, err := uc.repository.GetPaymentByRentalUID(ctx, rentalUID)
	if err == nil {
		log.Printf("ℹ️ [IDEMPOTENCY] Charge already processed for RentalUID=%s", rentalUID)
		return existing, nil
	}
	if !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}

	payment := NewPayment(uuid.New().String(), rentalUID, username, price)
	if err := uc.repository.CreatePayment(ctx, payment); err != nil {
		log.Printf("❌ [CHARGE] Failed for RentalUID=%s: %v", rentalUID, err)
		return nil, err
	}

	// Uma retry concorrente pode ter vencido o insert; o registro persistido
	// é a verdade, não o que acabamos de montar
	persisted, err := uc.repository.GetPaymentByRentalUID(ctx, rentalUID)
	if err != nil {
		return nil, err
	}

	uc.chargesCounter.Add(ctx, 1)
	log.Printf("✅ [CHARGE] Success: RentalUID=%s PaymentUID=%s", rentalUID, persisted.PaymentUID)
	return persisted, nil
}

// Capture liquida o pagamento ao final do aluguel. No-op se já liquidado;
// falha se o pagamento já foi estornado.
func (uc *PaymentUseCase) Capture(ctx context.Context, rentalUID string) error {
	log.Printf("➡️ [CAPTURE] RentalUID: %s", rentalUID)

	payment, err := uc.repository.GetPaymentByRentalUID(ctx, rentalUID)
	if err != nil {
		return err
	}

	switch payment.Status {
	case PaymentStatusCaptured:
		log.Printf("ℹ️ [IDEMPOTENCY] Capture already processed for RentalUID=%s", rentalUID)
		return nil
	case PaymentStatusReversed:
		return fmt.Errorf("%w: rental %s", ErrAlreadyReversed, rentalUID)
	}

	err = uc.repository.UpdatePaymentStatus(ctx, rentalUID, PaymentStatusPaid, PaymentStatusCaptured)
	if errors.Is(err, ErrPaymentConflict) {
		// perdeu a corrida; reler e decidir de novo
		return uc.Capture(ctx, rentalUID)
	}
	if err != nil {
		return err
	}

	log.Printf("✅ [CAPTURE] Success: RentalUID=%s", rentalUID)
	return nil
}

// Refund estorna o pagamento (compensação). Idempotente: estornar um pagamento
// já estornado é no-op.
func (uc *PaymentUseCase) Refund(ctx context.Context, rentalUID string) error {
	log.Printf("↩️ [REFUND] RentalUID: %s", rentalUID)

	payment, err := uc.repository.GetPaymentByRentalUID(ctx, rentalUID)
	if err != nil {
		return err
	}

	if payment.Status == PaymentStatusReversed {
		log.Printf("ℹ️ [IDEMPOTENCY] Refund already processed for RentalUID=%s", rentalUID)
		return nil
	}

	err = uc.repository.UpdatePaymentStatus(ctx, rentalUID, payment.Status, PaymentStatusReversed)
	if errors.Is(err, ErrPaymentConflict) {
		return uc.Refund(ctx, rentalUID)
	}
	if err != nil {
		return err
	}

	uc.refundsCounter.Add(ctx, 1)
	log.Printf("✅ [REFUND] Success: RentalUID=%s", rentalUID)
	return nil
}

// GetPayment busca o pagamento de um aluguel
func (uc *PaymentUseCase) GetPayment(ctx context.Context, rentalUID string) (*Payment, error) {
	return uc.repository.GetPaymentByRentalUID(ctx, rentalUID)
}
