package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thunww/Furniture-Web-sub002/api/controllers"
	"github.com/thunww/Furniture-Web-sub002/api/middleware"
	cartsvc "github.com/thunww/Furniture-Web-sub002/internal/cart"
	checkoutsvc "github.com/thunww/Furniture-Web-sub002/internal/checkout"
	couponsvc "github.com/thunww/Furniture-Web-sub002/internal/coupon"
	incomesvc "github.com/thunww/Furniture-Web-sub002/internal/income"
	ordersvc "github.com/thunww/Furniture-Web-sub002/internal/orders"
	"github.com/thunww/Furniture-Web-sub002/pkg/config"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	"github.com/thunww/Furniture-Web-sub002/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Pingers map[string]controllers.Pinger

	CartService     cartsvc.Service
	CouponService   couponsvc.Service
	CheckoutService checkoutsvc.Service
	OrdersService   ordersvc.Service
	IncomeService   incomesvc.Service

	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Put("/items/{id}", controllers.CartUpdateItem(deps.CartService, logg))
			r.Delete("/items/{id}", controllers.CartRemoveItem(deps.CartService, logg))
			r.Patch("/items/{id}/select", controllers.CartSelectItem(deps.CartService, logg))
			r.Patch("/select-all", controllers.CartSelectAll(deps.CartService, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/validate/{code}", controllers.CouponValidate(deps.CouponService, logg))
			r.Post("/apply", controllers.CouponApply(deps.CouponService, logg))
			r.Post("/remove", controllers.CouponRemove(deps.CouponService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/create", controllers.OrderCreate(deps.CheckoutService, logg))
			r.Get("/", controllers.OrderList(deps.OrdersService, logg))
			r.Get("/{id}", controllers.OrderGet(deps.OrdersService, logg))
			r.Patch("/cancel-suborder/{id}", controllers.OrderCancelSubOrder(deps.OrdersService, logg))
			r.Post("/{id}/payment-confirmed", controllers.OrderConfirmPayment(deps.OrdersService, logg))
		})

		r.Route("/shippers", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleShipper), logg))
			r.Get("/sub_orders", controllers.ShipperListSubOrders(deps.OrdersService, logg))
			r.Post("/sub_orders/{id}/accept", controllers.ShipperAcceptSubOrder(deps.OrdersService, logg))
			r.Post("/sub_orders/{id}/complete", controllers.ShipperCompleteSubOrder(deps.OrdersService, logg))
			r.Post("/sub_orders/{id}/cancel", controllers.ShipperCancelSubOrder(deps.OrdersService, logg))
			r.Get("/income/filter", controllers.ShipperIncome(deps.IncomeService, logg))
		})
	})

	return r
}
