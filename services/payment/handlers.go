package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChargeRequest representa a requisição de cobrança
type ChargeRequest struct {
	RentalUID string `json:"rental_uid" binding:"required,uuid"`
	Username  string `json:"username" binding:"required"`
	Price     int    `json:"price" binding:"required,gt=0"`
}

// PaymentHandler contém os handlers HTTP para pagamentos
type PaymentHandler struct {
	useCase *PaymentUseCase
	tracer  trace.Tracer
}

// NewPaymentHandler cria uma nova instância de PaymentHandler
func NewPaymentHandler(useCase *PaymentUseCase, tracer trace.Tracer) *PaymentHandler {
	return &PaymentHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// Charge cobra o valor de um aluguel
func (h *PaymentHandler) Charge(c *gin.Context) {
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "charge_payment")
	defer span.End()
	span.SetAttributes(
		attribute.String("rental_uid", req.RentalUID),
		attribute.String("username", req.Username),
		attribute.Int("price", req.Price),
	)

	payment, err := h.useCase.Charge(ctx, req.RentalUID, req.Username, req.Price)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrUnprocessableEntity) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to charge payment"})
		return
	}

	c.JSON(http.StatusOK, payment)
}

// Capture liquida o pagamento de um aluguel finalizado
func (h *PaymentHandler) Capture(c *gin.Context) {
	rentalUID := c.Param("rentalUid")

	ctx, span := h.tracer.Start(c.Request.Context(), "capture_payment")
	defer span.End()
	span.SetAttributes(attribute.String("rental_uid", rentalUID))

	if err := h.useCase.Capture(ctx, rentalUID); err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrAlreadyReversed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to capture payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// Refund estorna o pagamento de um aluguel
func (h *PaymentHandler) Refund(c *gin.Context) {
	rentalUID := c.Param("rentalUid")

	ctx, span := h.tracer.Start(c.Request.Context(), "refund_payment")
	defer span.End()
	span.SetAttributes(attribute.String("rental_uid", rentalUID))

	if err := h.useCase.Refund(ctx, rentalUID); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refund payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// GetPayment busca o pagamento de um aluguel
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	rentalUID := c.Param("rentalUid")

	ctx, span := h.tracer.Start(c.Request.Context(), "get_payment")
	defer span.End()
	span.SetAttributes(attribute.String("rental_uid", rentalUID))

	payment, err := h.useCase.GetPayment(ctx, rentalUID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, payment)
}

// HealthCheck verifica a saúde do serviço
func (h *PaymentHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "payment-service",
	})
}
