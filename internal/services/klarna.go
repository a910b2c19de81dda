package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"klarna_checkout_echo/internal/models"
)

// GatewayErrorKind classifies gateway failures so callers can tell a missing
// record from a provider rejection from a transport failure.
type GatewayErrorKind string

const (
	GatewayErrorNetwork  GatewayErrorKind = "network"
	GatewayErrorNotFound GatewayErrorKind = "not_found"
	GatewayErrorProvider GatewayErrorKind = "provider"
)

// GatewayError is returned for every failed provider call. Status is the
// provider HTTP status, zero for transport failures.
type GatewayError struct {
	Kind    GatewayErrorKind
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("klarna gateway: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("klarna gateway: %s (status %d): %s", e.Kind, e.Status, e.Message)
}

// KlarnaService issues authenticated calls against the Klarna payments and
// ordermanagement APIs. It holds no per-request state and is safe for
// concurrent use.
type KlarnaService struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func NewKlarnaService(username, password, baseURL string) *KlarnaService {
	return &KlarnaService{
		baseURL:  baseURL,
		username: username,
		password: password,
		client:   &http.Client{},
	}
}

func (s *KlarnaService) makeRequest(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", s.baseURL, endpoint), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.username, s.password)

	resp, err := s.client.Do(req)
	if err != nil {
		return &GatewayError{Kind: GatewayErrorNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		kind := GatewayErrorProvider
		if resp.StatusCode == http.StatusNotFound {
			kind = GatewayErrorNotFound
		}
		return &GatewayError{Kind: kind, Status: resp.StatusCode, Message: string(body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CreateSession creates a new checkout session.
func (s *KlarnaService) CreateSession(ctx context.Context, req models.SessionRequest) (*models.SessionDetail, error) {
	var detail models.SessionDetail
	if err := s.makeRequest(ctx, http.MethodPost, "/payments/v1/sessions", req, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetSessionDetail fetches the current provider state of a session.
func (s *KlarnaService) GetSessionDetail(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	var detail models.SessionDetail
	endpoint := fmt.Sprintf("/payments/v1/sessions/%s", sessionID)
	if err := s.makeRequest(ctx, http.MethodGet, endpoint, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateOrder exchanges a shopper authorization for a confirmed order.
func (s *KlarnaService) CreateOrder(ctx context.Context, authorizationToken string, req models.OrderRequest) (*models.OrderResponse, error) {
	var resp models.OrderResponse
	endpoint := fmt.Sprintf("/payments/v1/authorizations/%s/order", authorizationToken)
	if err := s.makeRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrderDetail fetches the current provider state of an order.
func (s *KlarnaService) GetOrderDetail(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	endpoint := fmt.Sprintf("/ordermanagement/v1/orders/%s", orderID)
	if err := s.makeRequest(ctx, http.MethodGet, endpoint, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CaptureOrder captures the given amount. The capture endpoint returns only
// an acknowledgment; current amounts must be re-fetched via GetOrderDetail.
func (s *KlarnaService) CaptureOrder(ctx context.Context, orderID string, capturedAmount int64) error {
	endpoint := fmt.Sprintf("/ordermanagement/v1/orders/%s/captures", orderID)
	return s.makeRequest(ctx, http.MethodPost, endpoint, models.CaptureRequest{CapturedAmount: capturedAmount}, nil)
}

// RefundOrder refunds the given amount. Acknowledgment only, like capture.
func (s *KlarnaService) RefundOrder(ctx context.Context, orderID string, refundedAmount int64) error {
	endpoint := fmt.Sprintf("/ordermanagement/v1/orders/%s/refunds", orderID)
	return s.makeRequest(ctx, http.MethodPost, endpoint, models.RefundRequest{RefundedAmount: refundedAmount}, nil)
}

// CancelOrder cancels an uncaptured order.
func (s *KlarnaService) CancelOrder(ctx context.Context, orderID string) error {
	endpoint := fmt.Sprintf("/ordermanagement/v1/orders/%s/cancel", orderID)
	return s.makeRequest(ctx, http.MethodPost, endpoint, struct{}{}, nil)
}
