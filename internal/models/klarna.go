package models

// Wire shapes for the Klarna payments and ordermanagement APIs. Field names
// follow the provider's JSON contract; amounts are minor currency units.

type OrderLine struct {
	Reference   string `json:"reference,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"` // e.g. "physical", "sales_tax"
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	TotalAmount int64  `json:"total_amount"`
	ImageURL    string `json:"image_url,omitempty"`
	ProductURL  string `json:"product_url,omitempty"`
}

// SessionRequest is the body for POST /payments/v1/sessions.
type SessionRequest struct {
	Locale             string      `json:"locale"`
	PurchaseCountry    string      `json:"purchase_country"`
	PurchaseCurrency   string      `json:"purchase_currency"`
	MerchantReference1 string      `json:"merchant_reference1,omitempty"`
	OrderAmount        int64       `json:"order_amount"`
	OrderTaxAmount     int64       `json:"order_tax_amount"`
	OrderLines         []OrderLine `json:"order_lines"`
}

// SessionDetail is the session object the provider returns, both from session
// creation and from the detail endpoint. authorization_token is only present
// once the shopper has authorized.
type SessionDetail struct {
	SessionID          string      `json:"session_id"`
	ClientToken        string      `json:"client_token"`
	Status             string      `json:"status"`
	AuthorizationToken string      `json:"authorization_token,omitempty"`
	Locale             string      `json:"locale"`
	PurchaseCountry    string      `json:"purchase_country"`
	PurchaseCurrency   string      `json:"purchase_currency"`
	MerchantReference1 string      `json:"merchant_reference1,omitempty"`
	OrderAmount        int64       `json:"order_amount"`
	OrderTaxAmount     int64       `json:"order_tax_amount"`
	OrderLines         []OrderLine `json:"order_lines"`
}

// OrderRequest is the body for POST /payments/v1/authorizations/{token}/order.
// It carries the same purchase fields as the session it was built from.
type OrderRequest struct {
	Locale             string      `json:"locale"`
	PurchaseCountry    string      `json:"purchase_country"`
	PurchaseCurrency   string      `json:"purchase_currency"`
	MerchantReference1 string      `json:"merchant_reference1,omitempty"`
	OrderAmount        int64       `json:"order_amount"`
	OrderTaxAmount     int64       `json:"order_tax_amount"`
	OrderLines         []OrderLine `json:"order_lines"`
}

// OrderResponse acknowledges order creation.
type OrderResponse struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
	FraudStatus string `json:"fraud_status,omitempty"`
}

// OrderDetail is the full order from GET /ordermanagement/v1/orders/{id}.
type OrderDetail struct {
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	PurchaseCurrency string `json:"purchase_currency,omitempty"`
	OrderAmount      int64  `json:"order_amount"`
	CapturedAmount   int64  `json:"captured_amount"`
	RefundedAmount   int64  `json:"refunded_amount"`
}

type CaptureRequest struct {
	CapturedAmount int64 `json:"captured_amount"`
}

type RefundRequest struct {
	RefundedAmount int64 `json:"refunded_amount"`
}
