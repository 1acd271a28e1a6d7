package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

type stubLifecycleRepo struct {
	orders    map[uuid.UUID]*models.Order
	subOrders map[uuid.UUID]*models.SubOrder
	shipments map[uuid.UUID]*models.Shipment

	claimRows      int64
	transitionRows int64
	paidRows       int64
	released       []models.SubOrder

	claimedBy     *uuid.UUID
	transitionTo  enums.SubOrderStatus
	availableList []models.SubOrder
	userOrders    []models.Order
}

func (r *stubLifecycleRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubLifecycleRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *stubLifecycleRepo) FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error) {
	so, ok := r.subOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return so, nil
}

func (r *stubLifecycleRepo) FindShipmentBySubOrder(ctx context.Context, subOrderID uuid.UUID) (*models.Shipment, error) {
	shipment, ok := r.shipments[subOrderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return shipment, nil
}

func (r *stubLifecycleRepo) TransitionSubOrder(ctx context.Context, id uuid.UUID, from []enums.SubOrderStatus, to enums.SubOrderStatus, extra map[string]any) (int64, error) {
	r.transitionTo = to
	if r.transitionRows > 0 {
		if so, ok := r.subOrders[id]; ok {
			so.Status = to
		}
	}
	return r.transitionRows, nil
}

func (r *stubLifecycleRepo) ClaimShipment(ctx context.Context, subOrderID, shipperID uuid.UUID, trackingNumber string, estimatedDelivery time.Time) (int64, error) {
	if r.claimRows > 0 {
		r.claimedBy = &shipperID
		if shipment, ok := r.shipments[subOrderID]; ok {
			shipment.ShipperID = &shipperID
		}
	}
	return r.claimRows, nil
}

func (r *stubLifecycleRepo) UpdateShipment(ctx context.Context, subOrderID uuid.UUID, updates map[string]any) error {
	return nil
}

func (r *stubLifecycleRepo) MarkOrderPaid(ctx context.Context, orderID uuid.UUID) (int64, error) {
	if r.paidRows > 0 {
		if order, ok := r.orders[orderID]; ok {
			order.PaymentStatus = enums.PaymentStatusPaid
		}
	}
	return r.paidRows, nil
}

func (r *stubLifecycleRepo) ReleasePendingSubOrders(ctx context.Context, orderID uuid.UUID) ([]models.SubOrder, error) {
	return r.released, nil
}

func (r *stubLifecycleRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	if limit > len(r.userOrders) {
		limit = len(r.userOrders)
	}
	return r.userOrders[:limit], nil
}

func (r *stubLifecycleRepo) ListAvailableSubOrders(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
	if limit > len(r.availableList) {
		limit = len(r.availableList)
	}
	return r.availableList[:limit], nil
}

func (r *stubLifecycleRepo) ListSubOrdersByShipper(ctx context.Context, shipperID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
	return nil, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubOutbox struct{ events []outbox.DomainEvent }

func (o *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	o.events = append(o.events, event)
	return nil
}

func seedSubOrder(repo *stubLifecycleRepo, status enums.SubOrderStatus, shipperID *uuid.UUID) *models.SubOrder {
	orderID := uuid.New()
	so := &models.SubOrder{
		ID:               uuid.New(),
		OrderID:          orderID,
		ShopID:           uuid.New(),
		Status:           status,
		SubtotalCents:    5000,
		TotalCents:       5500,
		ShippingFeeCents: 500,
		CreatedAt:        time.Now(),
	}
	shipment := &models.Shipment{ID: uuid.New(), SubOrderID: so.ID, ShipperID: shipperID}
	so.Shipment = shipment
	repo.subOrders[so.ID] = so
	repo.shipments[so.ID] = shipment
	repo.orders[orderID] = &models.Order{
		ID:            orderID,
		UserID:        uuid.New(),
		PaymentStatus: enums.PaymentStatusPending,
		SubOrders:     []models.SubOrder{*so},
	}
	return so
}

func newStubRepo() *stubLifecycleRepo {
	return &stubLifecycleRepo{
		orders:    map[uuid.UUID]*models.Order{},
		subOrders: map[uuid.UUID]*models.SubOrder{},
		shipments: map[uuid.UUID]*models.Shipment{},
	}
}

func newLifecycleService(t *testing.T, repo *stubLifecycleRepo) (Service, *stubOutbox) {
	t.Helper()
	ob := &stubOutbox{}
	svc, err := NewService(repo, stubTx{}, ob, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, ob
}

func TestAcceptClaimsProcessingSubOrder(t *testing.T) {
	repo := newStubRepo()
	repo.claimRows = 1
	repo.transitionRows = 1
	so := seedSubOrder(repo, enums.SubOrderStatusProcessing, nil)
	svc, ob := newLifecycleService(t, repo)
	shipperID := uuid.New()

	view, err := svc.Accept(context.Background(), TransitionInput{SubOrderID: so.ID, ShipperID: shipperID})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if view.Status != enums.SubOrderStatusShipped {
		t.Fatalf("status = %s, want shipped", view.Status)
	}
	if repo.claimedBy == nil || *repo.claimedBy != shipperID {
		t.Fatalf("shipment not claimed by shipper")
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventSubOrderStatusChanged {
		t.Fatalf("expected one status-changed event, got %+v", ob.events)
	}
}

func TestAcceptLoserGetsConflict(t *testing.T) {
	repo := newStubRepo()
	repo.claimRows = 0
	winner := uuid.New()
	so := seedSubOrder(repo, enums.SubOrderStatusShipped, &winner)
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Accept(context.Background(), TransitionInput{SubOrderID: so.ID, ShipperID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for second claimant, got %v", err)
	}
}

func TestAcceptUnknownSubOrderIsNotFound(t *testing.T) {
	repo := newStubRepo()
	repo.claimRows = 0
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Accept(context.Background(), TransitionInput{SubOrderID: uuid.New(), ShipperID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAcceptWrongStateIsStateConflict(t *testing.T) {
	// Claim succeeds but the status flip finds the sub-order outside
	// processing, so the whole accept fails.
	repo := newStubRepo()
	repo.claimRows = 1
	repo.transitionRows = 0
	so := seedSubOrder(repo, enums.SubOrderStatusPending, nil)
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Accept(context.Background(), TransitionInput{SubOrderID: so.ID, ShipperID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCompleteRequiresClaimingShipper(t *testing.T) {
	repo := newStubRepo()
	owner := uuid.New()
	so := seedSubOrder(repo, enums.SubOrderStatusShipped, &owner)
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Complete(context.Background(), TransitionInput{SubOrderID: so.ID, ShipperID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-claimant, got %v", err)
	}
}

func TestCompleteMarksDelivered(t *testing.T) {
	repo := newStubRepo()
	repo.transitionRows = 1
	shipperID := uuid.New()
	so := seedSubOrder(repo, enums.SubOrderStatusShipped, &shipperID)
	svc, _ := newLifecycleService(t, repo)

	view, err := svc.Complete(context.Background(), TransitionInput{SubOrderID: so.ID, ShipperID: shipperID})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if view.Status != enums.SubOrderStatusDelivered {
		t.Fatalf("status = %s, want delivered", view.Status)
	}
}

func TestCancelFromTerminalStateIsRejected(t *testing.T) {
	repo := newStubRepo()
	repo.transitionRows = 0
	so := seedSubOrder(repo, enums.SubOrderStatusCancelled, nil)
	order := repo.orders[so.OrderID]
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Cancel(context.Background(), CancelInput{
		SubOrderID: so.ID,
		ActorID:    order.UserID,
		Actor:      enums.CancelActorCustomer,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for terminal cancel, got %v", err)
	}
}

func TestCancelByStrangerIsForbidden(t *testing.T) {
	repo := newStubRepo()
	repo.transitionRows = 1
	so := seedSubOrder(repo, enums.SubOrderStatusPending, nil)
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Cancel(context.Background(), CancelInput{
		SubOrderID: so.ID,
		ActorID:    uuid.New(),
		Actor:      enums.CancelActorCustomer,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for other user's sub-order, got %v", err)
	}
}

func TestCancelByShipperRequiresClaim(t *testing.T) {
	repo := newStubRepo()
	repo.transitionRows = 1
	so := seedSubOrder(repo, enums.SubOrderStatusShipped, nil)
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.Cancel(context.Background(), CancelInput{
		SubOrderID: so.ID,
		ActorID:    uuid.New(),
		Actor:      enums.CancelActorShipper,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for unclaimed sub-order, got %v", err)
	}
}

func TestConfirmPaymentReleasesPendingSubOrders(t *testing.T) {
	repo := newStubRepo()
	repo.paidRows = 1
	so := seedSubOrder(repo, enums.SubOrderStatusPending, nil)
	order := repo.orders[so.OrderID]
	svc, ob := newLifecycleService(t, repo)

	view, err := svc.ConfirmPayment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if view.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", view.PaymentStatus)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderPaid {
		t.Fatalf("expected one order-paid event, got %+v", ob.events)
	}
}

func TestConfirmPaymentTwiceIsRejected(t *testing.T) {
	repo := newStubRepo()
	repo.paidRows = 0
	so := seedSubOrder(repo, enums.SubOrderStatusProcessing, nil)
	order := repo.orders[so.OrderID]
	order.PaymentStatus = enums.PaymentStatusPaid
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.ConfirmPayment(context.Background(), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on repeat confirmation, got %v", err)
	}
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	repo := newStubRepo()
	so := seedSubOrder(repo, enums.SubOrderStatusProcessing, nil)
	order := repo.orders[so.OrderID]
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.GetOrder(context.Background(), uuid.New(), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for other user's order, got %v", err)
	}

	view, err := svc.GetOrder(context.Background(), order.UserID, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if view.ID != order.ID {
		t.Fatalf("unexpected order %s", view.ID)
	}
}

func TestListAvailablePaginatesWithCursor(t *testing.T) {
	repo := newStubRepo()
	now := time.Now()
	for i := 0; i < 3; i++ {
		repo.availableList = append(repo.availableList, models.SubOrder{
			ID:        uuid.New(),
			OrderID:   uuid.New(),
			ShopID:    uuid.New(),
			Status:    enums.SubOrderStatusProcessing,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	svc, _ := newLifecycleService(t, repo)

	page, err := svc.ListAvailable(context.Background(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(page.SubOrders) != 2 {
		t.Fatalf("expected 2 sub-orders, got %d", len(page.SubOrders))
	}
	if page.NextCursor == nil {
		t.Fatalf("expected next cursor when more rows remain")
	}
	cursor, err := pagination.ParseCursor(*page.NextCursor)
	if err != nil || cursor == nil {
		t.Fatalf("next cursor should parse, got %v", err)
	}
	if cursor.ID != page.SubOrders[1].ID {
		t.Fatalf("cursor should point at the last returned row")
	}
}

func TestListOrdersRejectsMalformedCursor(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newLifecycleService(t, repo)

	_, err := svc.ListOrders(context.Background(), uuid.New(), pagination.Params{Cursor: "not-base64!!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad cursor, got %v", err)
	}
}
