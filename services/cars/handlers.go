package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReserveCarRequest representa a requisição de reserva de um carro
type ReserveCarRequest struct {
	RentalUID string `json:"rental_uid" binding:"required,uuid"`
	DateFrom  string `json:"date_from" binding:"required"`
	DateTo    string `json:"date_to" binding:"required"`
}

// ReleaseCarRequest representa a requisição de liberação de uma reserva
type ReleaseCarRequest struct {
	RentalUID string `json:"rental_uid" binding:"required,uuid"`
}

// CarHandler contém os handlers HTTP
type CarHandler struct {
	useCase *CarUseCase
	tracer  trace.Tracer
}

// NewCarHandler cria uma nova instância de CarHandler
func NewCarHandler(useCase *CarUseCase, tracer trace.Tracer) *CarHandler {
	return &CarHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// GetCar busca um carro do catálogo
func (h *CarHandler) GetCar(c *gin.Context) {
	carUID := c.Param("carUid")

	ctx, span := h.tracer.Start(c.Request.Context(), "get_car")
	defer span.End()
	span.SetAttributes(attribute.String("car_uid", carUID))

	car, err := h.useCase.GetCar(ctx, carUID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrCarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, car)
}

// ListCars lista o catálogo de carros
func (h *CarHandler) ListCars(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_cars")
	defer span.End()

	cars, err := h.useCase.ListCars(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cars)
}

// ReserveCar reserva um carro para um período
func (h *CarHandler) ReserveCar(c *gin.Context) {
	carUID := c.Param("carUid")

	var req ReserveCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dateFrom, err := time.Parse(dateLayout, req.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be formatted as " + dateLayout})
		return
	}
	dateTo, err := time.Parse(dateLayout, req.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be formatted as " + dateLayout})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "reserve_car")
	defer span.End()
	span.SetAttributes(
		attribute.String("car_uid", carUID),
		attribute.String("rental_uid", req.RentalUID),
	)

	if err := h.useCase.ReserveCar(ctx, carUID, req.RentalUID, dateFrom, dateTo); err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, ErrCarNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrCarUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// ReleaseCar libera a reserva de um carro
func (h *CarHandler) ReleaseCar(c *gin.Context) {
	var req ReleaseCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "release_car")
	defer span.End()
	span.SetAttributes(
		attribute.String("car_uid", c.Param("carUid")),
		attribute.String("rental_uid", req.RentalUID),
	)

	if err := h.useCase.ReleaseCar(ctx, req.RentalUID); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// HealthCheck verifica a saúde do serviço
func (h *CarHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cars-service",
	})
}
