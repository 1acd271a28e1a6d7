package controllers

import (
	"net/http"
	"time"

	"github.com/thunww/Furniture-Web-sub002/api/responses"
	"github.com/thunww/Furniture-Web-sub002/api/validators"
	incomesvc "github.com/thunww/Furniture-Web-sub002/internal/income"
	ordersvc "github.com/thunww/Furniture-Web-sub002/internal/orders"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	"github.com/thunww/Furniture-Web-sub002/pkg/logger"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

// ShipperListSubOrders lists sub-orders for the shipper dashboard. With
// ?scope=mine it returns the caller's claimed sub-orders; the default is the
// unclaimed processing pool.
func ShipperListSubOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		var page *ordersvc.SubOrderPage
		if r.URL.Query().Get("scope") == "mine" {
			page, err = svc.ListClaimed(r.Context(), shipperID, params)
		} else {
			page, err = svc.ListAvailable(r.Context(), params)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ShipperAcceptSubOrder claims a processing sub-order for the caller.
func ShipperAcceptSubOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subOrderID, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Accept(r.Context(), ordersvc.TransitionInput{
			SubOrderID: subOrderID,
			ShipperID:  shipperID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ShipperCompleteSubOrder marks a shipped sub-order delivered.
func ShipperCompleteSubOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subOrderID, err := parsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Complete(r.Context(), ordersvc.TransitionInput{
			SubOrderID: subOrderID,
			ShipperID:  shipperID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ShipperCancelSubOrder is the shipper-side cancellation of a claimed
// sub-order.
func ShipperCancelSubOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipperID, err := requireUserID(r)
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
			ActorID:    shipperID,
			Actor:      enums.CancelActorShipper,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ShipperIncome reports the caller's earnings over an inclusive date range.
func ShipperIncome(svc incomesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipperID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := validators.ParseQueryDate(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// endDate is inclusive: extend it to the last instant of that day.
		end = end.Add(24*time.Hour - time.Nanosecond)

		report, err := svc.IncomeFor(r.Context(), shipperID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
