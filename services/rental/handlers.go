package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RentalUseCaseInterface define a interface para o use case
type RentalUseCaseInterface interface {
	BookRental(ctx context.Context, username, carUID string, dateFrom, dateTo time.Time) (*Rental, error)
	FinishRental(ctx context.Context, username, rentalUID string) error
	CancelRental(ctx context.Context, username, rentalUID string) error
	GetRental(ctx context.Context, username, rentalUID string) (*Rental, error)
	ListRentals(ctx context.Context, username string) ([]*Rental, error)
}

// CreateRentalRequest representa a requisição para criar um aluguel
type CreateRentalRequest struct {
	CarUID   string `json:"carUid" binding:"required,uuid"`
	DateFrom string `json:"dateFrom" binding:"required"`
	DateTo   string `json:"dateTo" binding:"required"`
}

// RentalResponse é a representação externa do aluguel
type RentalResponse struct {
	RentalUID  string `json:"rentalUid"`
	Username   string `json:"username"`
	PaymentUID string `json:"paymentUid"`
	CarUID     string `json:"carUid"`
	DateFrom   string `json:"dateFrom"`
	DateTo     string `json:"dateTo"`
	Status     string `json:"status"`
}

func toRentalResponse(rental *Rental) RentalResponse {
	return RentalResponse{
		RentalUID:  rental.RentalUID,
		Username:   rental.Username,
		PaymentUID: rental.PaymentUID,
		CarUID:     rental.CarUID,
		DateFrom:   rental.DateFrom.Format(dateLayout),
		DateTo:     rental.DateTo.Format(dateLayout),
		Status:     string(rental.Status),
	}
}

// RentalHandler contém os handlers HTTP
type RentalHandler struct {
	useCase RentalUseCaseInterface
	tracer  trace.Tracer
}

// NewRentalHandler cria uma nova instância de RentalHandler
func NewRentalHandler(useCase RentalUseCaseInterface, tracer trace.Tracer) *RentalHandler {
	return &RentalHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// authenticatedUsername extrai a identidade já autenticada pelo gateway.
// Sem o header a requisição não tem dono e é rejeitada com 401.
func authenticatedUsername(c *gin.Context) (string, bool) {
	username := c.GetHeader("X-User-Name")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-Name header"})
		return "", false
	}
	return username, true
}

// ListRentals lista os aluguéis do usuário autenticado
func (h *RentalHandler) ListRentals(c *gin.Context) {
	username, ok := authenticatedUsername(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "list_rentals")
	defer span.End()
	span.SetAttributes(attribute.String("username", username))

	rentals, err := h.useCase.ListRentals(ctx, username)
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}

	response := make([]RentalResponse, 0, len(rentals))
	for _, rental := range rentals {
		response = append(response, toRentalResponse(rental))
	}
	c.JSON(http.StatusOK, response)
}

// GetRental busca um aluguel do usuário autenticado
func (h *RentalHandler) GetRental(c *gin.Context) {
	username, ok := authenticatedUsername(c)
	if !ok {
		return
	}
	rentalUID := c.Param("rentalUid")

	ctx, span := h.tracer.Start(c.Request.Context(), "get_rental")
	defer span.End()
	span.SetAttributes(
		attribute.String("username", username),
		attribute.String("rental_uid", rentalUID),
	)

	rental, err := h.useCase.GetRental(ctx, username, rentalUID)
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRentalResponse(rental))
}

// CreateRental inicia a saga de reserva de um aluguel
func (h *RentalHandler) CreateRental(c *gin.Context) {
	username, ok := authenticatedUsername(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "book_rental_saga")
	defer span.End()

	var req CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dateFrom, err := time.Parse(dateLayout, req.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dateFrom must be formatted as " + dateLayout})
		return
	}
	dateTo, err := time.Parse(dateLayout, req.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dateTo must be formatted as " + dateLayout})
		return
	}

	span.SetAttributes(
		attribute.String("username", username),
		attribute.String("car_uid", req.CarUID),
		attribute.String("date_from", req.DateFrom),
		attribute.String("date_to", req.DateTo),
	)

	rental, err := h.useCase.BookRental(ctx, username, req.CarUID, dateFrom, dateTo)
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}

	span.SetAttributes(attribute.String("rental_uid", rental.RentalUID))
	c.JSON(http.StatusOK, toRentalResponse(rental))
}

// FinishRental finaliza o aluguel do usuário autenticado
func (h *RentalHandler) FinishRental(c *gin.Context) {
	username, ok := authenticatedUsername(c)
	if !ok {
		return
	}
	rentalUID := c.Param("rentalUid")

	ctx, span := h.tracer.Start(c.Request.Context(), "finish_rental")
	defer span.End()
	span.SetAttributes(
		attribute.String("username", username),
		attribute.String("rental_uid", rentalUID),
	)

	if err := h.useCase.FinishRental(ctx, username, rentalUID); err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelRental cancela o aluguel do usuário autenticado
func (h *RentalHandler) CancelRental(c *gin.Context) {
	username, ok := authenticatedUsername(c)
	if !ok {
		return
	}
	rentalUID := c.Param("rentalUid")

	ctx, span := h.tracer.Start(c.Request.Context(), "cancel_rental")
	defer span.End()
	span.SetAttributes(
		attribute.String("username", username),
		attribute.String("rental_uid", rentalUID),
	)

	if err := h.useCase.CancelRental(ctx, username, rentalUID); err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HealthCheck verifica a saúde do serviço
func (h *RentalHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "rental-service",
	})
}

// writeError mapeia a taxonomia de erros do orquestrador para códigos HTTP
func (h *RentalHandler) writeError(c *gin.Context, err error) {
	var compErr *CompensationError
	switch {
	case errors.Is(err, ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRentalNotFound), errors.Is(err, ErrCarNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrCarUnavailable), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPaymentFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &compErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": compErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
