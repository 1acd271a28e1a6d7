package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/thunww/Furniture-Web-sub002/api/controllers"
	ordersvc "github.com/thunww/Furniture-Web-sub002/internal/orders"
	pkgauth "github.com/thunww/Furniture-Web-sub002/pkg/auth"
	"github.com/thunww/Furniture-Web-sub002/pkg/config"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
	"github.com/thunww/Furniture-Web-sub002/pkg/logger"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubOrdersService struct{}

func (stubOrdersService) Accept(ctx context.Context, input ordersvc.TransitionInput) (*ordersvc.SubOrderView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
}

func (stubOrdersService) Complete(ctx context.Context, input ordersvc.TransitionInput) (*ordersvc.SubOrderView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
}

func (stubOrdersService) Cancel(ctx context.Context, input ordersvc.CancelInput) (*ordersvc.SubOrderView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
}

func (stubOrdersService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*ordersvc.OrderView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*ordersvc.OrderView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersvc.OrderPage, error) {
	return &ordersvc.OrderPage{Orders: []ordersvc.OrderView{}}, nil
}

func (stubOrdersService) ListAvailable(ctx context.Context, params pagination.Params) (*ordersvc.SubOrderPage, error) {
	return &ordersvc.SubOrderPage{SubOrders: []ordersvc.SubOrderView{}}, nil
}

func (stubOrdersService) ListClaimed(ctx context.Context, shipperID uuid.UUID, params pagination.Params) (*ordersvc.SubOrderPage, error) {
	return &ordersvc.SubOrderPage{SubOrders: []ordersvc.SubOrderView{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		Pingers:         map[string]controllers.Pinger{"database": stubPinger{}},
		OrdersService:   stubOrdersService{},
		MetricsGatherer: prometheus.NewRegistry(),
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if got := resp.Header().Get("X-FurniWeb-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestShipperGroupRequiresShipperRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/shippers/sub_orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	shipper := httptest.NewRequest(http.MethodGet, "/api/v1/shippers/sub_orders", nil)
	shipper.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleShipper))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, shipper)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for shipper got %d", resp.Code)
	}
}

func TestOrderListSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for order list got %d", resp.Code)
	}
}
