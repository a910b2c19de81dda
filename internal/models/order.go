package models

import (
	"time"
)

// Order statuses as the provider reports them.
const (
	OrderStatusAuthorized   = "AUTHORIZED"
	OrderStatusPartCaptured = "PART_CAPTURED"
	OrderStatusCaptured     = "CAPTURED"
	OrderStatusCancelled    = "CANCELLED"
)

// OrderRecord is the local mirror of a provider-side order. Amounts reflect
// the last fetched provider state and may lag the provider.
type OrderRecord struct {
	RecordID       string    `gorm:"primaryKey;type:varchar(36)" json:"record_id"`
	OrderID        string    `gorm:"uniqueIndex;type:varchar(100)" json:"order_id"`
	Status         string    `gorm:"type:varchar(30)" json:"status"`
	OrderAmount    int64     `json:"order_amount"`
	CapturedAmount int64     `json:"captured_amount"`
	RefundedAmount int64     `json:"refunded_amount"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OrderUpdate overwrites the mutable mirror fields from an authoritative
// re-fetch. The set flags allow writing zero amounts, which the refresh path
// after a cancel legitimately produces.
type OrderUpdate struct {
	Status            string
	OrderAmount       int64
	CapturedAmount    int64
	RefundedAmount    int64
	SetOrderAmount    bool
	SetCapturedAmount bool
	SetRefundedAmount bool
}

// OrderUpdateFromDetail copies every mutable field from provider detail.
func OrderUpdateFromDetail(detail *OrderDetail) OrderUpdate {
	return OrderUpdate{
		Status:            detail.Status,
		OrderAmount:       detail.OrderAmount,
		CapturedAmount:    detail.CapturedAmount,
		RefundedAmount:    detail.RefundedAmount,
		SetOrderAmount:    true,
		SetCapturedAmount: true,
		SetRefundedAmount: true,
	}
}

// Apply writes the update onto a snapshot of the record.
func (u OrderUpdate) Apply(rec *OrderRecord) {
	if u.Status != "" {
		rec.Status = u.Status
	}
	if u.SetOrderAmount {
		rec.OrderAmount = u.OrderAmount
	}
	if u.SetCapturedAmount {
		rec.CapturedAmount = u.CapturedAmount
	}
	if u.SetRefundedAmount {
		rec.RefundedAmount = u.RefundedAmount
	}
}
