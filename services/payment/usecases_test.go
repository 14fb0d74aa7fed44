package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPaymentRepository simula o PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetPaymentByRentalUID(ctx context.Context, rentalUID string) (*Payment, error) {
	args := m.Called(ctx, rentalUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockPaymentRepository) CreatePayment(ctx context.Context, payment *Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentStatus(ctx context.Context, rentalUID, from, to string) error {
	args := m.Called(ctx, rentalUID, from, to)
	return args.Error(0)
}

func TestCharge_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	persisted := NewPayment("payment-1", "rental-1", "alice", 400)

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(nil, ErrPaymentNotFound).Once()
	mockRepo.On("CreatePayment", ctx, mock.AnythingOfType("*main.Payment")).Return(nil)
	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(persisted, nil).Once()

	// Act
	payment, err := uc.Charge(ctx, "rental-1", "alice", 400)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, payment.Status)
	assert.Equal(t, 400, payment.Price)
	mockRepo.AssertExpectations(t)
}

func TestCharge_IdempotentForSameRental(t *testing.T) {
	// Uma cobrança repetida devolve o pagamento existente, sem cobrar de novo
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	existing := NewPayment("payment-1", "rental-1", "alice", 400)

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(existing, nil)

	payment, err := uc.Charge(ctx, "rental-1", "alice", 400)

	assert.NoError(t, err)
	assert.Equal(t, "payment-1", payment.PaymentUID)
	mockRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestCharge_RejectsNonPositivePrice(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)

	_, err := uc.Charge(context.Background(), "rental-1", "alice", 0)

	assert.ErrorIs(t, err, ErrUnprocessableEntity)
	mockRepo.AssertNotCalled(t, "GetPaymentByRentalUID", mock.Anything, mock.Anything)
}

func TestCapture_Success(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	payment := NewPayment("payment-1", "rental-1", "alice", 400)

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(payment, nil)
	mockRepo.On("UpdatePaymentStatus", ctx, "rental-1", PaymentStatusPaid, PaymentStatusCaptured).Return(nil)

	err := uc.Capture(ctx, "rental-1")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCapture_IdempotentWhenAlreadyCaptured(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	payment := NewPayment("payment-1", "rental-1", "alice", 400)
	payment.Status = PaymentStatusCaptured

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(payment, nil)

	err := uc.Capture(ctx, "rental-1")

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCapture_FailsWhenReversed(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	payment := NewPayment("payment-1", "rental-1", "alice", 400)
	payment.Status = PaymentStatusReversed

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(payment, nil)

	err := uc.Capture(ctx, "rental-1")

	assert.ErrorIs(t, err, ErrAlreadyReversed)
}

func TestRefund_Success(t *testing.T) {
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	payment := NewPayment("payment-1", "rental-1", "alice", 400)

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(payment, nil)
	mockRepo.On("UpdatePaymentStatus", ctx, "rental-1", PaymentStatusPaid, PaymentStatusReversed).Return(nil)

	err := uc.Refund(ctx, "rental-1")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRefund_IdempotentWhenAlreadyReversed(t *testing.T) {
	// Estornar duas vezes não gera segundo estorno
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	payment := NewPayment("payment-1", "rental-1", "alice", 400)
	payment.Status = PaymentStatusReversed

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(payment, nil)

	err := uc.Refund(ctx, "rental-1")

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefund_ResolvesStatusRaceByRereading(t *testing.T) {
	// O CAS perdeu a corrida; a releitura encontra o estorno já aplicado
	mockRepo := new(MockPaymentRepository)
	uc := NewPaymentUseCase(mockRepo)
	ctx := context.Background()
	paid := NewPayment("payment-1", "rental-1", "alice", 400)
	reversed := NewPayment("payment-1", "rental-1", "alice", 400)
	reversed.Status = PaymentStatusReversed

	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(paid, nil).Once()
	mockRepo.On("UpdatePaymentStatus", ctx, "rental-1", PaymentStatusPaid, PaymentStatusReversed).
		Return(ErrPaymentConflict)
	mockRepo.On("GetPaymentByRentalUID", ctx, "rental-1").Return(reversed, nil).Once()

	err := uc.Refund(ctx, "rental-1")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
