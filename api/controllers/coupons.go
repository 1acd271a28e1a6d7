package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thunww/Furniture-Web-sub002/api/responses"
	"github.com/thunww/Furniture-Web-sub002/api/validators"
	couponsvc "github.com/thunww/Furniture-Web-sub002/internal/coupon"
	"github.com/thunww/Furniture-Web-sub002/pkg/logger"
)

// CouponValidate checks a coupon against the caller's selected subtotal
// without applying it.
func CouponValidate(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eval, err := svc.Validate(r.Context(), userID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eval)
	}
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// CouponApply validates and stashes the coupon for the next checkout.
func CouponApply(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eval, err := svc.Apply(r.Context(), userID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eval)
	}
}

// CouponRemove clears the caller's applied coupon.
func CouponRemove(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}
