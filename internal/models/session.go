package models

import (
	"time"
)

const (
	SessionStatusIncomplete = "incomplete"
	SessionStatusComplete   = "complete"
)

// SessionRecord is the local mirror of a provider-side checkout session.
// RecordID is store-assigned; SessionID is the provider's business key.
type SessionRecord struct {
	RecordID           string      `gorm:"primaryKey;type:varchar(36)" json:"record_id"`
	SessionID          string      `gorm:"uniqueIndex;type:varchar(100)" json:"session_id"`
	ClientToken        string      `gorm:"type:text" json:"client_token"`
	Status             string      `gorm:"type:varchar(20)" json:"status"`
	Payment            bool        `json:"payment"` // true while status != complete
	AuthorizationToken string      `gorm:"type:varchar(100)" json:"authorization_token,omitempty"`
	Locale             string      `gorm:"type:varchar(10)" json:"locale"`
	PurchaseCountry    string      `gorm:"type:varchar(2)" json:"purchase_country"`
	PurchaseCurrency   string      `gorm:"type:varchar(3)" json:"purchase_currency"`
	MerchantReference1 string      `gorm:"type:varchar(100)" json:"merchant_reference1,omitempty"`
	OrderAmount        int64       `json:"order_amount"`
	OrderTaxAmount     int64       `json:"order_tax_amount"`
	OrderLines         []OrderLine `gorm:"serializer:json" json:"order_lines"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// SessionUpdate carries the fields refreshed from an authoritative re-fetch.
// Applying a Status also derives Payment, keeping the negation invariant in
// one place.
type SessionUpdate struct {
	Status             string
	AuthorizationToken string
}

// Apply writes the update onto a snapshot of the record.
func (u SessionUpdate) Apply(rec *SessionRecord) {
	if u.Status != "" {
		rec.Status = u.Status
		rec.Payment = u.Status != SessionStatusComplete
	}
	if u.AuthorizationToken != "" {
		rec.AuthorizationToken = u.AuthorizationToken
	}
}

// NewSessionRecord mirrors a freshly created provider session. The creation
// request fields are stored verbatim; the local-only fields are stamped here,
// payment staying true until the session completes.
func NewSessionRecord(req SessionRequest, detail *SessionDetail) *SessionRecord {
	return &SessionRecord{
		SessionID:          detail.SessionID,
		ClientToken:        detail.ClientToken,
		Status:             SessionStatusIncomplete,
		Payment:            true,
		Locale:             req.Locale,
		PurchaseCountry:    req.PurchaseCountry,
		PurchaseCurrency:   req.PurchaseCurrency,
		MerchantReference1: req.MerchantReference1,
		OrderAmount:        req.OrderAmount,
		OrderTaxAmount:     req.OrderTaxAmount,
		OrderLines:         req.OrderLines,
	}
}
