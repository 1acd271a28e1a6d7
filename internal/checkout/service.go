package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
	"github.com/thunww/Furniture-Web-sub002/pkg/logger"
	"github.com/thunww/Furniture-Web-sub002/pkg/metrics"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox/payloads"
	"github.com/thunww/Furniture-Web-sub002/pkg/payments"
)

// Service turns a cart's selected lines into one order per shop.
type Service interface {
	Execute(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	cart     CartReader
	lines    LineRemover
	coupons  CouponResolver
	address  AddressBook
	shipping ShippingQuoter
	payments payments.Initiator
	outbox   outboxPublisher
	metrics  *metrics.FulfillmentMetrics
	logg     *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
// The payments initiator may be nil when card checkout is disabled.
func NewService(
	repo Repository,
	tx txRunner,
	cart CartReader,
	lines LineRemover,
	coupons CouponResolver,
	address AddressBook,
	shipping ShippingQuoter,
	initiator payments.Initiator,
	outboxSvc outboxPublisher,
	fulfillment *metrics.FulfillmentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if lines == nil {
		return nil, fmt.Errorf("line remover required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	if address == nil {
		return nil, fmt.Errorf("address book required")
	}
	if shipping == nil {
		return nil, fmt.Errorf("shipping quoter required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		cart:     cart,
		lines:    lines,
		coupons:  coupons,
		address:  address,
		shipping: shipping,
		payments: initiator,
		outbox:   outboxSvc,
		metrics:  fulfillment,
		logg:     logg,
	}, nil
}

func (s *service) Execute(ctx context.Context, input Input) (*Result, error) {
	started := time.Now()
	result, err := s.execute(ctx, input)
	method := input.PaymentMethod.String()
	if s.metrics != nil {
		s.metrics.ObserveCheckout(method, time.Since(started))
		if err != nil {
			s.metrics.IncCheckout(method, "failure")
		} else {
			s.metrics.IncCheckout(method, "success")
		}
	}
	return result, err
}

func (s *service) execute(ctx context.Context, input Input) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ShippingAddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method must be cod or card")
	}

	lines, err := s.cart.SelectedLines(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no items selected for checkout")
	}

	ok, err := s.address.Exists(ctx, input.UserID, input.ShippingAddressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify shipping address")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping address not found")
	}

	subtotal := 0
	for _, line := range lines {
		subtotal += line.SubtotalCents()
	}

	var couponCode *string
	discount := 0
	applied, err := s.coupons.AppliedFor(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if applied != "" {
		// The applied coupon is re-validated against the final subtotal. A
		// coupon that expired or no longer qualifies fails the whole checkout
		// rather than silently pricing without it.
		coupon, d, err := s.coupons.Resolve(ctx, applied, subtotal)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeDependency {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "applied coupon is no longer valid")
			}
			return nil, err
		}
		couponCode = &coupon.Code
		discount = d
	}

	groups := groupByShop(lines)
	shopWeights := make([]int, len(groups))
	for i, g := range groups {
		for _, idx := range g.lines {
			shopWeights[i] += lines[idx].SubtotalCents()
		}
	}
	shopDiscounts := AllocateProportional(discount, shopWeights)

	initialStatus := enums.SubOrderStatusProcessing
	paymentStatus := enums.PaymentStatusPending
	if input.PaymentMethod == enums.PaymentMethodCard {
		// Card sub-orders stay pending until the payment confirmation
		// callback releases them.
		initialStatus = enums.SubOrderStatusPending
	}

	shippingTotal := 0
	subOrders := make([]models.SubOrder, 0, len(groups))
	for i, g := range groups {
		fee, err := s.shipping.Quote(ctx, g.shopID, shopWeights[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "quote shipping")
		}
		shippingTotal += fee

		lineWeights := make([]int, len(g.lines))
		for j, idx := range g.lines {
			lineWeights[j] = lines[idx].SubtotalCents()
		}
		lineDiscounts := AllocateProportional(shopDiscounts[i], lineWeights)

		items := make([]models.OrderItem, 0, len(g.lines))
		for j, idx := range g.lines {
			line := lines[idx]
			items = append(items, models.OrderItem{
				ProductID:      line.ProductID,
				VariantID:      line.VariantID,
				ProductName:    line.ProductName,
				UnitPriceCents: line.UnitPriceCents,
				Quantity:       line.Quantity,
				DiscountCents:  lineDiscounts[j],
				TotalCents:     line.SubtotalCents() - lineDiscounts[j],
			})
		}

		subOrders = append(subOrders, models.SubOrder{
			ShopID:           g.shopID,
			Status:           initialStatus,
			SubtotalCents:    shopWeights[i],
			DiscountCents:    shopDiscounts[i],
			TotalCents:       shopWeights[i] - shopDiscounts[i] + fee,
			ShippingFeeCents: fee,
			Items:            items,
			Shipment:         &models.Shipment{},
		})
	}

	order := &models.Order{
		UserID:            input.UserID,
		ShippingAddressID: input.ShippingAddressID,
		PaymentMethod:     input.PaymentMethod,
		PaymentStatus:     paymentStatus,
		SubtotalCents:     subtotal,
		DiscountCents:     discount,
		TotalCents:        subtotal - discount + shippingTotal,
		CouponCode:        couponCode,
		SubOrders:         subOrders,
	}

	lineIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.lines.DeleteLines(ctx, tx, lineIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear checked-out lines")
		}

		subOrderIDs := make([]uuid.UUID, 0, len(order.SubOrders))
		for _, so := range order.SubOrders {
			subOrderIDs = append(subOrderIDs, so.ID)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: input.ActorRole},
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				UserID:      input.UserID,
				SubOrderIDs: subOrderIDs,
				TotalCents:  order.TotalCents,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if couponCode != nil {
		if err := s.coupons.Remove(ctx, input.UserID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID), "failed to clear applied coupon after checkout")
		}
	}

	result := buildResult(order)

	if input.PaymentMethod == enums.PaymentMethodCard && s.payments != nil {
		link, err := s.payments.CreatePaymentLink(ctx, payments.LinkParams{
			OrderID:     order.ID,
			AmountCents: order.TotalCents,
			Description: fmt.Sprintf("Order %s", order.ID),
			RedirectURL: input.RedirectURL,
		})
		if err != nil {
			// The order is already committed; surface the link failure so the
			// client can retry payment initiation.
			return nil, err
		}
		result.PaymentLinkURL = &link.URL
	}

	return result, nil
}

func groupByShop(lines []models.CartLine) []shopGroup {
	groups := []shopGroup{}
	index := map[uuid.UUID]int{}
	for i, line := range lines {
		pos, ok := index[line.ShopID]
		if !ok {
			pos = len(groups)
			index[line.ShopID] = pos
			groups = append(groups, shopGroup{shopID: line.ShopID})
		}
		groups[pos].lines = append(groups[pos].lines, i)
	}
	return groups
}

func buildResult(order *models.Order) *Result {
	result := &Result{
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
		CouponCode:    order.CouponCode,
	}
	for _, so := range order.SubOrders {
		itemCount := 0
		for _, item := range so.Items {
			itemCount += item.Quantity
		}
		result.SubOrders = append(result.SubOrders, SubOrderSummary{
			ID:               so.ID,
			ShopID:           so.ShopID,
			Status:           so.Status,
			SubtotalCents:    so.SubtotalCents,
			DiscountCents:    so.DiscountCents,
			ShippingFeeCents: so.ShippingFeeCents,
			TotalCents:       so.TotalCents,
			ItemCount:        itemCount,
		})
	}
	return result
}
