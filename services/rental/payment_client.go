package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Payment representa a visão do pagamento exposta pelo payment-service
type Payment struct {
	PaymentUID string `json:"payment_uid"`
	RentalUID  string `json:"rental_uid"`
	Price      int    `json:"price"`
	Status     string `json:"status"`
}

// PaymentClient abstrai as chamadas remotas ao payment-service
type PaymentClient interface {
	// Charge cobra o valor do aluguel. O rentalUID é a chave de idempotência:
	// repetir a chamada após timeout devolve o mesmo pagamento, sem cobrança dupla.
	Charge(ctx context.Context, rentalUID, username string, price int) (*Payment, error)

	// Capture liquida o pagamento ao finalizar o aluguel. No-op se já liquidado.
	Capture(ctx context.Context, rentalUID string) error

	// Refund estorna o pagamento. Estornar um pagamento já estornado é no-op.
	Refund(ctx context.Context, rentalUID string) error
}

type chargeRequest struct {
	RentalUID string `json:"rental_uid"`
	Username  string `json:"username"`
	Price     int    `json:"price"`
}

// HTTPPaymentClient implementa PaymentClient sobre HTTP usando resty
type HTTPPaymentClient struct {
	client *resty.Client
}

// NewPaymentClient cria uma nova instância de HTTPPaymentClient
func NewPaymentClient(baseURL string, timeout time.Duration) *HTTPPaymentClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &HTTPPaymentClient{client: client}
}

// Charge cobra o valor do aluguel usando o rentalUID como chave de idempotência
func (c *HTTPPaymentClient) Charge(ctx context.Context, rentalUID, username string, price int) (*Payment, error) {
	var payment Payment
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", rentalUID).
		SetBody(chargeRequest{RentalUID: rentalUID, Username: username, Price: price}).
		SetResult(&payment).
		Post("/api/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("%w: charging payment: %v", ErrRemoteUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		return &payment, nil
	case http.StatusBadRequest, http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: payment-service rejected charge (%d)", ErrPaymentFailed, resp.StatusCode())
	default:
		return nil, fmt.Errorf("%w: payment-service returned %d", ErrRemoteUnavailable, resp.StatusCode())
	}
}

// Capture liquida o pagamento do aluguel. 409 significa já liquidado, portanto no-op.
func (c *HTTPPaymentClient) Capture(ctx context.Context, rentalUID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", rentalUID).
		Post("/api/v1/payments/" + rentalUID + "/capture")
	if err != nil {
		return fmt.Errorf("%w: capturing payment: %v", ErrRemoteUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent, http.StatusConflict:
		return nil
	default:
		return fmt.Errorf("%w: payment-service returned %d", ErrRemoteUnavailable, resp.StatusCode())
	}
}

// Refund estorna o pagamento do aluguel. 404 e 409 significam que não há nada
// a estornar (pagamento inexistente ou já estornado), portanto no-op.
func (c *HTTPPaymentClient) Refund(ctx context.Context, rentalUID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", rentalUID).
		Post("/api/v1/payments/" + rentalUID + "/refund")
	if err != nil {
		return fmt.Errorf("%w: refunding payment: %v", ErrRemoteUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusConflict:
		return nil
	default:
		return fmt.Errorf("%w: payment-service returned %d", ErrRemoteUnavailable, resp.StatusCode())
	}
}
