package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Car representa a visão do catálogo de carros exposta pelo cars-service
type Car struct {
	CarUID             string `json:"car_uid"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	RegistrationNumber string `json:"registration_number"`
	Price              int    `json:"price"`
	Availability       bool   `json:"availability"`
}

// CarsClient abstrai as chamadas remotas ao cars-service
type CarsClient interface {
	// GetCar busca um carro do catálogo pelo UID
	GetCar(ctx context.Context, carUID string) (*Car, error)

	// ReserveCar reserva o carro para o período. O rentalUID é a chave de
	// idempotência: repetir a chamada após timeout não cria reserva duplicada.
	ReserveCar(ctx context.Context, carUID, rentalUID string, dateFrom, dateTo time.Time) error

	// ReleaseCar libera a reserva. Liberar uma reserva já liberada é no-op.
	ReleaseCar(ctx context.Context, carUID, rentalUID string) error
}

type reserveCarRequest struct {
	RentalUID string `json:"rental_uid"`
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
}

type releaseCarRequest struct {
	RentalUID string `json:"rental_uid"`
}

// HTTPCarsClient implementa CarsClient sobre HTTP usando resty
type HTTPCarsClient struct {
	client *resty.Client
}

// NewCarsClient cria uma nova instância de HTTPCarsClient
func NewCarsClient(baseURL string, timeout time.Duration) *HTTPCarsClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry apenas em falhas transitórias; as operações são idempotentes
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &HTTPCarsClient{client: client}
}

// GetCar busca um carro do catálogo pelo UID
func (c *HTTPCarsClient) GetCar(ctx context.Context, carUID string) (*Car, error) {
	var car Car
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&car).
		Get("/api/v1/cars/" + carUID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting car: %v", ErrRemoteUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return &car, nil
	case http.StatusNotFound:
		return nil, ErrCarNotFound
	default:
		return nil, fmt.Errorf("%w: cars-service returned %d", ErrRemoteUnavailable, resp.StatusCode())
	}
}

// ReserveCar reserva o carro para o período usando o rentalUID como chave de idempotência
func (c *HTTPCarsClient) ReserveCar(ctx context.Context, carUID, rentalUID string, dateFrom, dateTo time.Time) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", rentalUID).
		SetBody(reserveCarRequest{
			RentalUID: rentalUID,
			DateFrom:  dateFrom.Format(dateLayout),
			DateTo:    dateTo.Format(dateLayout),
		}).
		Post("/api/v1/cars/" + carUID + "/reserve")
	if err != nil {
		return fmt.Errorf("%w: reserving car: %v", ErrRemoteUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrCarNotFound
	case http.StatusConflict:
		return ErrCarUnavailable
	default:
		return fmt.Errorf("%w: cars-service returned %d", ErrRemoteUnavailable, resp.StatusCode())
	}
}

// ReleaseCar libera a reserva do carro. 404 e 409 do serviço remoto significam
// que a reserva já não existe ou já foi liberada, portanto no-op.
func (c *HTTPCarsClient) ReleaseCar(ctx context.Context, carUID, rentalUID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", rentalUID).
		SetBody(releaseCarRequest{RentalUID: rentalUID}).
		Post("/api/v1/cars/" + carUID + "/release")
	if err != nil {
		return fmt.Errorf("%w: releasing car: %v", ErrRemoteUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusConflict:
		return nil
	default:
		return fmt.Errorf("%w: cars-service returned %d", ErrRemoteUnavailable, resp.StatusCode())
	}
}
