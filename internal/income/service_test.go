package income

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
)

type stubRepo struct {
	delivered []models.SubOrder
	err       error
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) DeliveredByShipper(ctx context.Context, shipperID uuid.UUID, start, end time.Time) ([]models.SubOrder, error) {
	return r.delivered, r.err
}

func TestIncomeForSumsShippingFees(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{delivered: []models.SubOrder{
		{ID: uuid.New(), OrderID: uuid.New(), ShopID: uuid.New(), ShippingFeeCents: 500, Shipment: &models.Shipment{ActualDeliveryDate: &now}},
		{ID: uuid.New(), OrderID: uuid.New(), ShopID: uuid.New(), ShippingFeeCents: 700},
		{ID: uuid.New(), OrderID: uuid.New(), ShopID: uuid.New(), ShippingFeeCents: 300},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	report, err := svc.IncomeFor(context.Background(), uuid.New(), now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("income for: %v", err)
	}
	if report.TotalIncomeCents != 1500 {
		t.Fatalf("total income = %d, want 1500", report.TotalIncomeCents)
	}
	if report.TotalOrders != 3 {
		t.Fatalf("total orders = %d, want 3", report.TotalOrders)
	}
	if report.AveragePerOrderCents != 500 {
		t.Fatalf("average = %d, want 500", report.AveragePerOrderCents)
	}
}

func TestIncomeForEmptyRangeIsAllZero(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	now := time.Now()
	report, err := svc.IncomeFor(context.Background(), uuid.New(), now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("income for: %v", err)
	}
	if report.TotalIncomeCents != 0 || report.TotalOrders != 0 || report.AveragePerOrderCents != 0 {
		t.Fatalf("empty range should report zeros, got %+v", report)
	}
	if report.Orders == nil || len(report.Orders) != 0 {
		t.Fatalf("orders should be an empty slice, got %v", report.Orders)
	}
}

func TestIncomeForAverageRounds(t *testing.T) {
	repo := &stubRepo{delivered: []models.SubOrder{
		{ID: uuid.New(), ShippingFeeCents: 500},
		{ID: uuid.New(), ShippingFeeCents: 501},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	now := time.Now()
	report, err := svc.IncomeFor(context.Background(), uuid.New(), now.Add(-time.Hour), now)
	if err != nil {
		t.Fatalf("income for: %v", err)
	}
	// 1001 / 2 rounds to 501 (half away from zero).
	if report.AveragePerOrderCents != 501 {
		t.Fatalf("average = %d, want 501", report.AveragePerOrderCents)
	}
}

func TestIncomeForValidatesRange(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	now := time.Now()
	_, err = svc.IncomeFor(context.Background(), uuid.New(), now, now.Add(-time.Hour))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}

	_, err = svc.IncomeFor(context.Background(), uuid.Nil, now.Add(-time.Hour), now)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for missing shipper, got %v", err)
	}
}
