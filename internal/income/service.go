package income

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
)

// DeliveryRecord is one delivered sub-order contributing to income.
type DeliveryRecord struct {
	SubOrderID         uuid.UUID  `json:"sub_order_id"`
	OrderID            uuid.UUID  `json:"order_id"`
	ShopID             uuid.UUID  `json:"shop_id"`
	ShippingFeeCents   int        `json:"shipping_fee_cents"`
	ActualDeliveryDate *time.Time `json:"actual_delivery_date,omitempty"`
}

// Report is a shipper's earnings over a date range. Always recomputed from
// the delivered set, never cached incrementally.
type Report struct {
	Orders               []DeliveryRecord `json:"orders"`
	TotalIncomeCents     int              `json:"total_income_cents"`
	TotalOrders          int              `json:"total_orders"`
	AveragePerOrderCents int              `json:"average_per_order_cents"`
}

// Service derives shipper income from delivered sub-orders.
type Service interface {
	IncomeFor(ctx context.Context, shipperID uuid.UUID, start, end time.Time) (*Report, error)
}

type service struct {
	repo Repository
}

// NewService builds an income service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("income repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) IncomeFor(ctx context.Context, shipperID uuid.UUID, start, end time.Time) (*Report, error) {
	if shipperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shipper identity missing")
	}
	if start.IsZero() || end.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates required")
	}
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date before start date")
	}

	delivered, err := s.repo.DeliveredByShipper(ctx, shipperID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivered sub-orders")
	}

	report := &Report{Orders: []DeliveryRecord{}}
	for _, so := range delivered {
		record := DeliveryRecord{
			SubOrderID:       so.ID,
			OrderID:          so.OrderID,
			ShopID:           so.ShopID,
			ShippingFeeCents: so.ShippingFeeCents,
		}
		if so.Shipment != nil {
			record.ActualDeliveryDate = so.Shipment.ActualDeliveryDate
		}
		report.Orders = append(report.Orders, record)
		report.TotalIncomeCents += so.ShippingFeeCents
	}
	report.TotalOrders = len(report.Orders)

	// Empty ranges report zero across the board rather than dividing by zero.
	if report.TotalOrders > 0 {
		avg := decimal.NewFromInt(int64(report.TotalIncomeCents)).
			Div(decimal.NewFromInt(int64(report.TotalOrders))).
			Round(0).
			IntPart()
		report.AveragePerOrderCents = int(avg)
	}

	return report, nil
}
