package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"klarna_checkout_echo/internal/models"
)

// fakeProvider is an in-memory stand-in for the Klarna APIs. Authorization
// tokens follow the form "auth-<sessionID>" so tests can authorize a session
// without a real widget flow. Provider-side rules are enforced: capture and
// refund are rejected on a cancelled order, cancel is rejected once anything
// has been captured, and creating an order completes its session.
type fakeProvider struct {
	mu         sync.Mutex
	sessions   map[string]*models.SessionDetail
	orders     map[string]*models.OrderDetail
	nextID     int
	captures   []int64
	refunds    []int64
	failStatus map[string]int // op name -> HTTP status to fail with
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		sessions:   make(map[string]*models.SessionDetail),
		orders:     make(map[string]*models.OrderDetail),
		failStatus: make(map[string]int),
	}
}

func (p *fakeProvider) failWith(op string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failStatus[op] = status
}

func (p *fakeProvider) capturedAmounts() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.captures...)
}

func (p *fakeProvider) refundedAmounts() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.refunds...)
}

func (p *fakeProvider) checkFail(w http.ResponseWriter, op string) bool {
	if status, ok := p.failStatus[op]; ok {
		http.Error(w, fmt.Sprintf("injected %s failure", op), status)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && path == "/payments/v1/sessions":
		p.createSession(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/payments/v1/sessions/"):
		p.getSession(w, strings.TrimPrefix(path, "/payments/v1/sessions/"))
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/payments/v1/authorizations/"):
		token := strings.TrimSuffix(strings.TrimPrefix(path, "/payments/v1/authorizations/"), "/order")
		p.createOrder(w, r, token)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/ordermanagement/v1/orders/"):
		p.getOrder(w, strings.TrimPrefix(path, "/ordermanagement/v1/orders/"))
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/captures"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/ordermanagement/v1/orders/"), "/captures")
		p.capture(w, r, id)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/refunds"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/ordermanagement/v1/orders/"), "/refunds")
		p.refund(w, r, id)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/cancel"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/ordermanagement/v1/orders/"), "/cancel")
		p.cancel(w, id)
	default:
		http.NotFound(w, r)
	}
}

func (p *fakeProvider) createSession(w http.ResponseWriter, r *http.Request) {
	if p.checkFail(w, "createSession") {
		return
	}
	var req models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	p.nextID++
	id := fmt.Sprintf("sess-%d", p.nextID)
	detail := &models.SessionDetail{
		SessionID:          id,
		ClientToken:        "tok-" + id,
		Status:             models.SessionStatusIncomplete,
		Locale:             req.Locale,
		PurchaseCountry:    req.PurchaseCountry,
		PurchaseCurrency:   req.PurchaseCurrency,
		MerchantReference1: req.MerchantReference1,
		OrderAmount:        req.OrderAmount,
		OrderTaxAmount:     req.OrderTaxAmount,
		OrderLines:         req.OrderLines,
	}
	p.sessions[id] = detail
	writeJSON(w, detail)
}

func (p *fakeProvider) getSession(w http.ResponseWriter, id string) {
	if p.checkFail(w, "getSession") {
		return
	}
	detail, ok := p.sessions[id]
	if !ok {
		http.Error(w, "no such session", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func (p *fakeProvider) createOrder(w http.ResponseWriter, r *http.Request, token string) {
	if p.checkFail(w, "createOrder") {
		return
	}
	sessionID := strings.TrimPrefix(token, "auth-")
	session, ok := p.sessions[sessionID]
	if !ok || sessionID == token {
		http.Error(w, "invalid authorization token", http.StatusForbidden)
		return
	}
	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	p.nextID++
	id := fmt.Sprintf("order-%d", p.nextID)
	p.orders[id] = &models.OrderDetail{
		OrderID:          id,
		Status:           models.OrderStatusAuthorized,
		PurchaseCurrency: req.PurchaseCurrency,
		OrderAmount:      req.OrderAmount,
	}
	session.Status = models.SessionStatusComplete
	session.AuthorizationToken = token

	writeJSON(w, models.OrderResponse{OrderID: id, FraudStatus: "ACCEPTED"})
}

func (p *fakeProvider) getOrder(w http.ResponseWriter, id string) {
	if p.checkFail(w, "getOrder") {
		return
	}
	detail, ok := p.orders[id]
	if !ok {
		http.Error(w, "no such order", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func (p *fakeProvider) capture(w http.ResponseWriter, r *http.Request, id string) {
	if p.checkFail(w, "capture") {
		return
	}
	order, ok := p.orders[id]
	if !ok {
		http.Error(w, "no such order", http.StatusNotFound)
		return
	}
	if order.Status == models.OrderStatusCancelled {
		http.Error(w, "order is cancelled", http.StatusForbidden)
		return
	}
	var req models.CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	p.captures = append(p.captures, req.CapturedAmount)
	order.CapturedAmount += req.CapturedAmount
	switch {
	case order.CapturedAmount >= order.OrderAmount:
		order.Status = models.OrderStatusCaptured
	case order.CapturedAmount > 0:
		order.Status = models.OrderStatusPartCaptured
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *fakeProvider) refund(w http.ResponseWriter, r *http.Request, id string) {
	if p.checkFail(w, "refund") {
		return
	}
	order, ok := p.orders[id]
	if !ok {
		http.Error(w, "no such order", http.StatusNotFound)
		return
	}
	if order.Status == models.OrderStatusCancelled {
		http.Error(w, "order is cancelled", http.StatusForbidden)
		return
	}
	var req models.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if order.RefundedAmount+req.RefundedAmount > order.CapturedAmount {
		http.Error(w, "refund exceeds captured amount", http.StatusForbidden)
		return
	}
	p.refunds = append(p.refunds, req.RefundedAmount)
	order.RefundedAmount += req.RefundedAmount
	w.WriteHeader(http.StatusNoContent)
}

func (p *fakeProvider) cancel(w http.ResponseWriter, id string) {
	if p.checkFail(w, "cancel") {
		return
	}
	order, ok := p.orders[id]
	if !ok {
		http.Error(w, "no such order", http.StatusNotFound)
		return
	}
	if order.CapturedAmount > 0 {
		http.Error(w, "order has captures", http.StatusForbidden)
		return
	}
	order.Status = models.OrderStatusCancelled
	w.WriteHeader(http.StatusNoContent)
}

// newFakeGateway starts the fake provider and returns a client against it.
func newFakeGateway(t interface{ Cleanup(func()) }) (*fakeProvider, *KlarnaService) {
	provider := newFakeProvider()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)
	return provider, NewKlarnaService("merchant", "secret", srv.URL)
}
