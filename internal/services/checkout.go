package services

import (
	"context"
	"fmt"

	"klarna_checkout_echo/internal/models"
)

// CheckoutService runs the order/session synchronization pipelines. Every
// mutating gateway call is followed by an authoritative re-fetch, and the
// re-fetched detail is what lands in the local store; capture, refund and
// cancel return acknowledgments only, so the re-fetch is the sole source of
// truth for status and amounts. Mutating pipelines hold a per-business-key
// lock so two actions on the same order cannot interleave their store writes.
type CheckoutService struct {
	klarna *KlarnaService
	store  RecordStore
	locks  KeyLocker
}

func NewCheckoutService(klarna *KlarnaService, store RecordStore, locks KeyLocker) *CheckoutService {
	return &CheckoutService{klarna: klarna, store: store, locks: locks}
}

// DemoSessionRequest builds the cart used by the dashboard's "new session"
// button. A zero amount yields the fixed two-widget demo cart; a caller
// amount yields a single-line cart for that amount.
func DemoSessionRequest(orderAmount int64) models.SessionRequest {
	if orderAmount > 0 {
		return models.SessionRequest{
			Locale:             "en-US",
			PurchaseCountry:    "US",
			PurchaseCurrency:   "USD",
			MerchantReference1: "Klarna_customerorderID",
			OrderAmount:        orderAmount,
			OrderTaxAmount:     0,
			OrderLines: []models.OrderLine{
				{
					Reference:   "KLN-CUSTOM",
					Name:        "Custom Order",
					Type:        "physical",
					Quantity:    1,
					UnitPrice:   orderAmount,
					TotalAmount: orderAmount,
				},
			},
		}
	}

	return models.SessionRequest{
		Locale:             "en-US",
		PurchaseCountry:    "US",
		PurchaseCurrency:   "USD",
		MerchantReference1: "Klarna_customerorderID",
		OrderAmount:        18000,
		OrderTaxAmount:     2000,
		OrderLines: []models.OrderLine{
			{
				Reference:   "KLN-100",
				Name:        "Klarna Widget 1",
				Type:        "physical",
				Quantity:    1,
				UnitPrice:   8000,
				TotalAmount: 8000,
				ImageURL:    "https://www.klarna.com/example/image/prod.jpg",
				ProductURL:  "https://www.klarna.com/example/widget1=prod",
			},
			{
				Reference:   "KLN-101",
				Name:        "Klarna Widget 2",
				Type:        "physical",
				Quantity:    1,
				UnitPrice:   8000,
				TotalAmount: 8000,
				ImageURL:    "https://www.klarna.com/example/image/prod.jpg",
				ProductURL:  "https://www.klarna.com/example/widget2=prod",
			},
			{
				Name:        "Tax",
				Type:        "sales_tax",
				Quantity:    1,
				UnitPrice:   2000,
				TotalAmount: 2000,
			},
		},
	}
}

// StartSession creates a provider session and mirrors it locally with
// payment=true and status=incomplete. On gateway failure nothing is stored.
func (s *CheckoutService) StartSession(ctx context.Context, req models.SessionRequest) (*models.SessionRecord, error) {
	detail, err := s.klarna.CreateSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	rec := models.NewSessionRecord(req, detail)
	if err := s.store.InsertSession(rec); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return rec, nil
}

// PromoteSession converts an authorized session into an order. Steps, in
// order: fetch session detail, create the order from its purchase fields,
// insert the order mirror, then refresh both mirrors from authoritative
// detail. A failed re-fetch aborts the remaining steps without rolling back
// the ones already committed.
func (s *CheckoutService) PromoteSession(ctx context.Context, sessionID, authorizationToken string) (*models.OrderRecord, error) {
	unlock, err := s.locks.Lock(ctx, "session:"+sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	detail, err := s.klarna.GetSessionDetail(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch session %s: %w", sessionID, err)
	}

	orderReq := models.OrderRequest{
		Locale:             detail.Locale,
		PurchaseCountry:    detail.PurchaseCountry,
		PurchaseCurrency:   detail.PurchaseCurrency,
		MerchantReference1: detail.MerchantReference1,
		OrderAmount:        detail.OrderAmount,
		OrderTaxAmount:     detail.OrderTaxAmount,
		OrderLines:         detail.OrderLines,
	}

	created, err := s.klarna.CreateOrder(ctx, authorizationToken, orderReq)
	if err != nil {
		return nil, fmt.Errorf("create order from session %s: %w", sessionID, err)
	}

	rec := &models.OrderRecord{
		OrderID:     created.OrderID,
		Status:      models.OrderStatusAuthorized,
		OrderAmount: orderReq.OrderAmount,
	}
	if err := s.store.InsertOrder(rec); err != nil {
		return nil, fmt.Errorf("store order %s: %w", created.OrderID, err)
	}

	refreshed, err := s.klarna.GetSessionDetail(ctx, sessionID)
	if err != nil {
		return rec, fmt.Errorf("refresh session %s: %w", sessionID, err)
	}
	if err := s.store.UpdateSession(sessionID, models.SessionUpdate{
		Status:             refreshed.Status,
		AuthorizationToken: refreshed.AuthorizationToken,
	}); err != nil {
		return rec, fmt.Errorf("update session %s: %w", sessionID, err)
	}

	if err := s.refreshOrder(ctx, created.OrderID); err != nil {
		return rec, err
	}

	updated, err := s.store.GetOrder(created.OrderID)
	if err != nil {
		return rec, err
	}
	return updated, nil
}

// CaptureOrder captures the full remaining balance, order_amount minus
// captured_amount from the pre-capture fetch. A fully captured order yields a
// zero-amount capture request, which is sent as-is.
func (s *CheckoutService) CaptureOrder(ctx context.Context, orderID string) error {
	unlock, err := s.locks.Lock(ctx, "order:"+orderID)
	if err != nil {
		return err
	}
	defer unlock()

	detail, err := s.klarna.GetOrderDetail(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order %s: %w", orderID, err)
	}

	amount := detail.OrderAmount - detail.CapturedAmount
	if err := s.klarna.CaptureOrder(ctx, orderID, amount); err != nil {
		return fmt.Errorf("capture order %s: %w", orderID, err)
	}

	return s.refreshOrder(ctx, orderID)
}

// RefundOrder refunds the full remaining captured balance, captured_amount
// minus refunded_amount from the pre-refund fetch.
func (s *CheckoutService) RefundOrder(ctx context.Context, orderID string) error {
	unlock, err := s.locks.Lock(ctx, "order:"+orderID)
	if err != nil {
		return err
	}
	defer unlock()

	detail, err := s.klarna.GetOrderDetail(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order %s: %w", orderID, err)
	}

	amount := detail.CapturedAmount - detail.RefundedAmount
	if err := s.klarna.RefundOrder(ctx, orderID, amount); err != nil {
		return fmt.Errorf("refund order %s: %w", orderID, err)
	}

	return s.refreshOrder(ctx, orderID)
}

// CancelOrder cancels the order. The initial fetch is an existence check so
// an unknown id fails before the provider is asked to cancel anything.
func (s *CheckoutService) CancelOrder(ctx context.Context, orderID string) error {
	unlock, err := s.locks.Lock(ctx, "order:"+orderID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.klarna.GetOrderDetail(ctx, orderID); err != nil {
		return fmt.Errorf("fetch order %s: %w", orderID, err)
	}

	if err := s.klarna.CancelOrder(ctx, orderID); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}

	return s.refreshOrder(ctx, orderID)
}

// refreshOrder re-fetches authoritative order detail and overwrites the local
// mirror's mutable fields.
func (s *CheckoutService) refreshOrder(ctx context.Context, orderID string) error {
	detail, err := s.klarna.GetOrderDetail(ctx, orderID)
	if err != nil {
		return fmt.Errorf("refresh order %s: %w", orderID, err)
	}
	if err := s.store.UpdateOrder(orderID, models.OrderUpdateFromDetail(detail)); err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	return nil
}

// SessionDetail proxies the provider's session detail for display.
func (s *CheckoutService) SessionDetail(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	return s.klarna.GetSessionDetail(ctx, sessionID)
}

// OrderDetail proxies the provider's order detail for display.
func (s *CheckoutService) OrderDetail(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	return s.klarna.GetOrderDetail(ctx, orderID)
}

// Sessions lists the mirrored session records for the dashboard.
func (s *CheckoutService) Sessions() ([]models.SessionRecord, error) {
	return s.store.ListSessions()
}

// Orders lists the mirrored order records for the dashboard.
func (s *CheckoutService) Orders() ([]models.OrderRecord, error) {
	return s.store.ListOrders()
}
