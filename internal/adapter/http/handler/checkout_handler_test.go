package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/snap2code/creditledger/internal/adapter/http/dto"
	"github.com/snap2code/creditledger/internal/domain"
	"github.com/snap2code/creditledger/internal/usecase"
)

type orderServiceStub struct {
	createFn       func(ctx context.Context, accountID, packageCode string) (*usecase.CheckoutResult, error)
	cancelFn       func(ctx context.Context, orderID, reason string) error
	refundFn       func(ctx context.Context, orderID, reason string) error
	getFn          func(ctx context.Context, id string) (*domain.Order, error)
	listFn         func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error)
	listPackagesFn func(ctx context.Context) ([]*domain.Package, error)
}

func (s *orderServiceStub) CreateOrder(ctx context.Context, accountID, packageCode string) (*usecase.CheckoutResult, error) {
	return s.createFn(ctx, accountID, packageCode)
}

func (s *orderServiceStub) CancelOrder(ctx context.Context, orderID, reason string) error {
	return s.cancelFn(ctx, orderID, reason)
}

func (s *orderServiceStub) RefundOrder(ctx context.Context, orderID, reason string) error {
	return s.refundFn(ctx, orderID, reason)
}

func (s *orderServiceStub) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getFn(ctx, id)
}

func (s *orderServiceStub) ListOrders(ctx context.Context, accountID string, limit, offset int) ([]*domain.Order, error) {
	return s.listFn(ctx, accountID, limit, offset)
}

func (s *orderServiceStub) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	return s.listPackagesFn(ctx)
}

func TestCheckoutHandler_Create_Success(t *testing.T) {
	var gotAccountID, gotPackageCode string

	handler := NewCheckoutHandler(&orderServiceStub{
		createFn: func(ctx context.Context, accountID, packageCode string) (*usecase.CheckoutResult, error) {
			gotAccountID = accountID
			gotPackageCode = packageCode
			return &usecase.CheckoutResult{
				Order: &domain.Order{
					ID:               "ord-1",
					AccountID:        accountID,
					PackageCode:      packageCode,
					CreditsPurchased: decimal.NewFromInt(100),
					Status:           domain.OrderStatusPending,
				},
				CheckoutURL: "https://checkout.example.com/cs_123",
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateCheckoutRequest{AccountID: "acc-1", PackageCode: "pro"})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotAccountID != "acc-1" || gotPackageCode != "pro" {
		t.Fatalf("expected input to match request, got %s/%s", gotAccountID, gotPackageCode)
	}

	var resp dto.CheckoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CheckoutURL != "https://checkout.example.com/cs_123" {
		t.Fatalf("expected checkout URL in response, got %+v", resp)
	}
}

func TestCheckoutHandler_Create_InvalidBody(t *testing.T) {
	handler := NewCheckoutHandler(&orderServiceStub{
		createFn: func(ctx context.Context, accountID, packageCode string) (*usecase.CheckoutResult, error) {
			t.Fatal("CreateOrder should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckoutHandler_Create_UnknownPackage(t *testing.T) {
	handler := NewCheckoutHandler(&orderServiceStub{
		createFn: func(ctx context.Context, accountID, packageCode string) (*usecase.CheckoutResult, error) {
			return nil, domain.ErrPackageNotFound
		},
	})

	body, _ := json.Marshal(dto.CreateCheckoutRequest{AccountID: "acc-1", PackageCode: "nope"})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCheckoutHandler_Refund_SpentCredits(t *testing.T) {
	handler := NewCheckoutHandler(&orderServiceStub{
		refundFn: func(ctx context.Context, orderID, reason string) error {
			return domain.ErrInsufficientBalanceForRefund
		},
	})

	body, _ := json.Marshal(dto.RefundOrderRequest{Reason: "customer request"})
	req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/refund", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "ord-1")
	rec := httptest.NewRecorder()

	handler.Refund(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCheckoutHandler_ListPackages(t *testing.T) {
	handler := NewCheckoutHandler(&orderServiceStub{
		listPackagesFn: func(ctx context.Context) ([]*domain.Package, error) {
			return []*domain.Package{
				{Code: "starter", Name: "Starter", Price: decimal.NewFromInt(9), Credits: decimal.NewFromInt(25)},
				{Code: "pro", Name: "Pro", Price: decimal.NewFromInt(29), Credits: decimal.NewFromInt(100)},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/packages", nil)
	rec := httptest.NewRecorder()

	handler.ListPackages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []dto.PackageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].Code != "starter" {
		t.Fatalf("expected both packages, got %+v", resp)
	}
}
