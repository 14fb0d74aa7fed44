package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"
)

// MockRentalUseCase simula o RentalUseCaseInterface
type MockRentalUseCase struct {
	mock.Mock
}

func (m *MockRentalUseCase) BookRental(ctx context.Context, username, carUID string, dateFrom, dateTo time.Time) (*Rental, error) {
	args := m.Called(ctx, username, carUID, dateFrom, dateTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Rental), args.Error(1)
}

func (m *MockRentalUseCase) FinishRental(ctx context.Context, username, rentalUID string) error {
	args := m.Called(ctx, username, rentalUID)
	return args.Error(0)
}

func (m *MockRentalUseCase) CancelRental(ctx context.Context, username, rentalUID string) error {
	args := m.Called(ctx, username, rentalUID)
	return args.Error(0)
}

func (m *MockRentalUseCase) GetRental(ctx context.Context, username, rentalUID string) (*Rental, error) {
	args := m.Called(ctx, username, rentalUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Rental), args.Error(1)
}

func (m *MockRentalUseCase) ListRentals(ctx context.Context, username string) ([]*Rental, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Rental), args.Error(1)
}

func setupRouter(useCase RentalUseCaseInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewRentalHandler(useCase, otel.Tracer("test"))

	r := gin.New()
	r.GET("/api/v1/rental", handler.ListRentals)
	r.GET("/api/v1/rental/:rentalUid", handler.GetRental)
	r.POST("/api/v1/rental", handler.CreateRental)
	r.POST("/api/v1/rental/:rentalUid/finish", handler.FinishRental)
	r.DELETE("/api/v1/rental/:rentalUid", handler.CancelRental)
	return r
}

func TestHandlers_MissingUsernameHeader(t *testing.T) {
	useCase := new(MockRentalUseCase)
	router := setupRouter(useCase)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rental", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	useCase.AssertNotCalled(t, "ListRentals", mock.Anything, mock.Anything)
}

func TestGetRentalHandler_NotFound(t *testing.T) {
	useCase := new(MockRentalUseCase)
	router := setupRouter(useCase)

	useCase.On("GetRental", mock.Anything, "alice", "unknown").Return(nil, ErrRentalNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rental/unknown", nil)
	req.Header.Set("X-User-Name", "alice")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRentalHandler_Success(t *testing.T) {
	useCase := new(MockRentalUseCase)
	router := setupRouter(useCase)
	rental := NewRental("rental-1", "alice", "f2aee8a8-636e-4826-a93f-0c7c384fb29b", "payment-1", testDateFrom, testDateTo)
	rental.Status = RentalStatusInProgress

	useCase.On("BookRental", mock.Anything, "alice", "f2aee8a8-636e-4826-a93f-0c7c384fb29b", testDateFrom, testDateTo).
		Return(rental, nil)

	body := `{"carUid":"f2aee8a8-636e-4826-a93f-0c7c384fb29b","dateFrom":"2024-01-01","dateTo":"2024-01-05"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rental", strings.NewReader(body))
	req.Header.Set("X-User-Name", "alice")
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rentalUid":"rental-1"`)
	assert.Contains(t, w.Body.String(), `"status":"IN_PROGRESS"`)
}

func TestCreateRentalHandler_InvalidBody(t *testing.T) {
	useCase := new(MockRentalUseCase)
	router := setupRouter(useCase)

	body := `{"carUid":"not-a-uuid","dateFrom":"2024-01-01","dateTo":"2024-01-05"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rental", strings.NewReader(body))
	req.Header.Set("X-User-Name", "alice")
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	useCase.AssertNotCalled(t, "BookRental", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFinishRentalHandler_NoContent(t *testing.T) {
	useCase := new(MockRentalUseCase)
	router := setupRouter(useCase)

	useCase.On("FinishRental", mock.Anything, "alice", "rental-1").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rental/rental-1/finish", nil)
	req.Header.Set("X-User-Name", "alice")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCancelRentalHandler_InvalidStateConflict(t *testing.T) {
	useCase := new(MockRentalUseCase)
	router := setupRouter(useCase)

	useCase.On("CancelRental", mock.Anything, "alice", "rental-1").Return(ErrInvalidState)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rental/rental-1", nil)
	req.Header.Set("X-User-Name", "alice")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelRentalHandler_CompensationFailureIs500(t *testing.T) {
	useCase := new(MockRentalUseCase)
	router := setupRouter(useCase)

	compErr := &CompensationError{RentalUID: "rental-1", Failed: []string{"refund_payment"}, Reason: "down"}
	useCase.On("CancelRental", mock.Anything, "alice", "rental-1").Return(compErr)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rental/rental-1", nil)
	req.Header.Set("X-User-Name", "alice")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "refund_payment")
}
