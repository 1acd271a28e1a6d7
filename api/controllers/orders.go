package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/thunww/Furniture-Web-sub002/api/middleware"
	"github.com/thunww/Furniture-Web-sub002/api/responses"
	"github.com/thunww/Furniture-Web-sub002/api/validators"
	checkoutsvc "github.com/thunww/Furniture-Web-sub002/internal/checkout"
	ordersvc "github.com/thunww/Furniture-Web-sub002/internal/orders"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
	"github.com/thunww/Furniture-Web-sub002/pkg/logger"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

type createOrderRequest struct {
	ShippingAddressID uuid.UUID `json:"shipping_address_id" validate:"required"`
	PaymentMethod     string    `json:"payment_method" validate:"required,oneof=cod card"`
	RedirectURL       string    `json:"redirect_url"`
}

// OrderCreate executes a checkout: one parent order, one sub-order per shop.
func OrderCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.Execute(r.Context(), checkoutsvc.Input{
			UserID:            userID,
			ShippingAddressID: payload.ShippingAddressID,
			PaymentMethod:     method,
			ActorRole:         middleware.RoleFromContext(r.Context()),
			RedirectURL:       payload.RedirectURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OrderList returns the caller's orders, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListOrders(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrderGet returns one of the caller's orders.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderCancelSubOrder is the customer-side cancellation of one sub-order.
func OrderCancelSubOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subOrderID, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Cancel(r.Context(), ordersvc.CancelInput{
			SubOrderID: subOrderID,
			ActorID:    userID,
			Actor:      enums.CancelActorCustomer,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderConfirmPayment marks a pending order paid and releases its sub-orders.
func OrderConfirmPayment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ConfirmPayment(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
