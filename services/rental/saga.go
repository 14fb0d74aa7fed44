package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	// compensationMaxAttempts limita as tentativas de cada ação de compensação
	compensationMaxAttempts = 3

	// compensationRetryWait é a espera entre tentativas de compensação
	compensationRetryWait = 200 * time.Millisecond
)

// CompensationError é o erro fatal da requisição: uma ou mais compensações
// falharam mesmo após as tentativas limitadas. Carrega os handles sobreviventes
// para reconciliação manual.
type CompensationError struct {
	RentalUID  string   `json:"rental_uid"`
	CarUID     string   `json:"car_uid"`
	PaymentUID string   `json:"payment_uid"`
	Failed     []string `json:"failed_steps"`
	Reason     string   `json:"reason"`
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation failed for rental %s (steps: %s): %s",
		e.RentalUID, strings.Join(e.Failed, ", "), e.Reason)
}

// compensation é uma ação que desfaz semanticamente um passo já comitado
type compensation struct {
	name   string
	action func(ctx context.Context) error
}

// sagaExecution acumula o contexto efêmero de uma execução da saga: os handles
// dos passos já comitados e as compensações correspondentes. Nunca é persistido.
type sagaExecution struct {
	rentalUID     string
	carUID        string
	paymentUID    string
	compensations []compensation
}

func newSagaExecution(rentalUID, carUID string) *sagaExecution {
	return &sagaExecution{
		rentalUID:     rentalUID,
		carUID:        carUID,
		compensations: make([]compensation, 0),
	}
}

// push registra a compensação do passo recém comitado
func (s *sagaExecution) push(name string, action func(ctx context.Context) error) {
	s.compensations = append(s.compensations, compensation{name: name, action: action})
}

// compensate executa as compensações na ordem inversa do commit. Cada ação é
// tentada com retry limitado; se alguma falhar definitivamente, devolve um
// *CompensationError com os handles para reconciliação.
func (s *sagaExecution) compensate(ctx context.Context, cause error) error {
	var failed []string
	var lastErr error

	for i := len(s.compensations) - 1; i >= 0; i-- {
		comp := s.compensations[i]
		log.Printf("↩️ [COMPENSATE] RentalUID: %s | Step: %s", s.rentalUID, comp.name)

		if err := retryAction(ctx, comp.name, compensationMaxAttempts, comp.action); err != nil {
			log.Printf("❌ Compensation %s failed definitively: %v", comp.name, err)
			failed = append(failed, comp.name)
			lastErr = err
		}
	}

	if len(failed) > 0 {
		reason := lastErr.Error()
		if cause != nil {
			reason = fmt.Sprintf("%s (while recovering from: %s)", reason, cause.Error())
		}
		return &CompensationError{
			RentalUID:  s.rentalUID,
			CarUID:     s.carUID,
			PaymentUID: s.paymentUID,
			Failed:     failed,
			Reason:     reason,
		}
	}
	return nil
}

// retryAction executa a ação com no máximo attempts tentativas
func retryAction(ctx context.Context, name string, attempts int, action func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = action(ctx); err == nil {
			return nil
		}
		log.Printf("⏳ Retrying %s (%d/%d): %v", name, attempt, attempts, err)
		if attempt < attempts {
			time.Sleep(compensationRetryWait)
		}
	}
	return err
}
