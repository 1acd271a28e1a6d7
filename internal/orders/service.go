package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
	"github.com/thunww/Furniture-Web-sub002/pkg/metrics"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox/payloads"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

const defaultDeliveryWindow = 72 * time.Hour

// Service governs the sub-order state machine and order reads.
type Service interface {
	Accept(ctx context.Context, input TransitionInput) (*SubOrderView, error)
	Complete(ctx context.Context, input TransitionInput) (*SubOrderView, error)
	Cancel(ctx context.Context, input CancelInput) (*SubOrderView, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error)
	ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	ListAvailable(ctx context.Context, params pagination.Params) (*SubOrderPage, error)
	ListClaimed(ctx context.Context, shipperID uuid.UUID, params pagination.Params) (*SubOrderPage, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.FulfillmentMetrics
}

// NewService builds a lifecycle service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, fulfillment *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		metrics: fulfillment,
	}, nil
}

// Accept claims a processing sub-order for a shipper. The shipment row is the
// claim lock: the conditional update on shipper_id decides the race, so two
// concurrent accepts produce exactly one winner.
func (s *service) Accept(ctx context.Context, input TransitionInput) (*SubOrderView, error) {
	if input.SubOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-order id required")
	}
	if input.ShipperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shipper identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.ClaimShipment(ctx, input.SubOrderID, input.ShipperID, newTrackingNumber(), time.Now().Add(defaultDeliveryWindow))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim shipment")
		}
		if rows == 0 {
			if _, err := repo.FindShipmentBySubOrder(ctx, input.SubOrderID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "already claimed by another shipper")
		}

		rows, err = repo.TransitionSubOrder(ctx, input.SubOrderID,
			[]enums.SubOrderStatus{enums.SubOrderStatusProcessing},
			enums.SubOrderStatusShipped, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sub-order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sub-order cannot be accepted in its current state")
		}

		return s.emitTransition(ctx, tx, repo, input.SubOrderID, enums.SubOrderStatusProcessing, enums.SubOrderStatusShipped, &input.ShipperID, string(enums.RoleShipper))
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncTransition(enums.SubOrderStatusShipped.String(), string(enums.CancelActorShipper))
	}
	return s.subOrderView(ctx, input.SubOrderID)
}

// Complete marks a shipped sub-order delivered. Only the claiming shipper may
// complete it.
func (s *service) Complete(ctx context.Context, input TransitionInput) (*SubOrderView, error) {
	if input.SubOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-order id required")
	}
	if input.ShipperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shipper identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shipment, err := repo.FindShipmentBySubOrder(ctx, input.SubOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
		}
		if shipment.ShipperID == nil || *shipment.ShipperID != input.ShipperID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "sub-order is claimed by another shipper")
		}

		now := time.Now()
		rows, err := repo.TransitionSubOrder(ctx, input.SubOrderID,
			[]enums.SubOrderStatus{enums.SubOrderStatusShipped},
			enums.SubOrderStatusDelivered,
			map[string]any{"delivered_at": now})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sub-order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sub-order cannot be completed in its current state")
		}

		if err := repo.UpdateShipment(ctx, input.SubOrderID, map[string]any{"actual_delivery_date": now}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp delivery date")
		}

		return s.emitTransition(ctx, tx, repo, input.SubOrderID, enums.SubOrderStatusShipped, enums.SubOrderStatusDelivered, &input.ShipperID, string(enums.RoleShipper))
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncTransition(enums.SubOrderStatusDelivered.String(), string(enums.CancelActorShipper))
	}
	return s.subOrderView(ctx, input.SubOrderID)
}

// Cancel moves a sub-order to cancelled. Customers may cancel from pending or
// processing; the claiming shipper from processing or shipped. Terminal states
// always reject; re-cancelling a cancelled sub-order is an error, not a no-op.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*SubOrderView, error) {
	if input.SubOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !input.Actor.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cancel actor")
	}

	var from []enums.SubOrderStatus
	switch input.Actor {
	case enums.CancelActorCustomer:
		from = []enums.SubOrderStatus{enums.SubOrderStatusPending, enums.SubOrderStatusProcessing}
	case enums.CancelActorShipper:
		from = []enums.SubOrderStatus{enums.SubOrderStatusProcessing, enums.SubOrderStatusShipped}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subOrder, err := repo.FindSubOrder(ctx, input.SubOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-order")
		}

		switch input.Actor {
		case enums.CancelActorCustomer:
			order, err := repo.FindOrder(ctx, subOrder.OrderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
			}
			if order.UserID != input.ActorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "sub-order does not belong to user")
			}
		case enums.CancelActorShipper:
			if subOrder.Shipment == nil || subOrder.Shipment.ShipperID == nil || *subOrder.Shipment.ShipperID != input.ActorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "sub-order is not claimed by this shipper")
			}
		}

		previous := subOrder.Status
		rows, err := repo.TransitionSubOrder(ctx, input.SubOrderID, from,
			enums.SubOrderStatusCancelled,
			map[string]any{"cancelled_at": time.Now()})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sub-order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sub-order cannot be cancelled in its current state").WithDetails(map[string]any{
				"status": subOrder.Status,
			})
		}

		return s.emitTransition(ctx, tx, repo, input.SubOrderID, previous, enums.SubOrderStatusCancelled, nil, string(input.Actor))
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncTransition(enums.SubOrderStatusCancelled.String(), string(input.Actor))
	}
	return s.subOrderView(ctx, input.SubOrderID)
}

// ConfirmPayment marks a pending order paid and releases its pending
// sub-orders into processing.
func (s *service) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		rows, err := repo.MarkOrderPaid(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order payment is not pending")
		}

		if _, err := repo.ReleasePendingSubOrders(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release pending sub-orders")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			Data: payloads.OrderPaidEvent{
				OrderID: orderID,
				UserID:  order.UserID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	view := buildOrderView(*order)
	return &view, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := buildOrderView(*order)
	return &view, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	orders, err := s.repo.ListOrdersByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := &OrderPage{Orders: []OrderView{}}
	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}
	for _, order := range orders {
		page.Orders = append(page.Orders, buildOrderView(order))
	}
	if hasMore {
		last := orders[len(orders)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func (s *service) ListAvailable(ctx context.Context, params pagination.Params) (*SubOrderPage, error) {
	return s.listSubOrders(ctx, params, func(cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
		return s.repo.ListAvailableSubOrders(ctx, cursor, limit)
	})
}

func (s *service) ListClaimed(ctx context.Context, shipperID uuid.UUID, params pagination.Params) (*SubOrderPage, error) {
	if shipperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shipper identity missing")
	}
	return s.listSubOrders(ctx, params, func(cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
		return s.repo.ListSubOrdersByShipper(ctx, shipperID, cursor, limit)
	})
}

func (s *service) listSubOrders(ctx context.Context, params pagination.Params, fetch func(*pagination.Cursor, int) ([]models.SubOrder, error)) (*SubOrderPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	subOrders, err := fetch(cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sub-orders")
	}

	page := &SubOrderPage{SubOrders: []SubOrderView{}}
	hasMore := len(subOrders) > limit
	if hasMore {
		subOrders = subOrders[:limit]
	}
	for _, so := range subOrders {
		page.SubOrders = append(page.SubOrders, buildSubOrderView(so))
	}
	if hasMore {
		last := subOrders[len(subOrders)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func (s *service) emitTransition(ctx context.Context, tx *gorm.DB, repo Repository, subOrderID uuid.UUID, from, to enums.SubOrderStatus, shipperID *uuid.UUID, role string) error {
	subOrder, err := repo.FindSubOrder(ctx, subOrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload sub-order")
	}

	var actor *outbox.ActorRef
	if shipperID != nil {
		actor = &outbox.ActorRef{UserID: *shipperID, Role: role}
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventSubOrderStatusChanged,
		AggregateType: enums.AggregateSubOrder,
		AggregateID:   subOrderID,
		Version:       1,
		Actor:         actor,
		Data: payloads.SubOrderStatusChangedEvent{
			SubOrderID: subOrderID,
			OrderID:    subOrder.OrderID,
			ShopID:     subOrder.ShopID,
			From:       from,
			To:         to,
			ShipperID:  shipperID,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) subOrderView(ctx context.Context, id uuid.UUID) (*SubOrderView, error) {
	subOrder, err := s.repo.FindSubOrder(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload sub-order")
	}
	view := buildSubOrderView(*subOrder)
	return &view, nil
}

func newTrackingNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "FW-" + strings.ToUpper(raw[:12])
}
