package models

import "time"

type Order struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"requestId"`
	UserID      string     `json:"userId"`
	Status      string     `json:"status"`
	TotalCents  int64      `json:"totalCents"`
	Currency    string     `json:"currency"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	PaymentKind string     `json:"paymentKind,omitempty"` // wallet | gateway
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Shipment struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"orderId"`
	TrackNumber string     `json:"trackNumber"`
	CarrierCode string     `json:"carrierCode,omitempty"`
	Status      string     `json:"status"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

type WalletBalance struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

type WalletTransaction struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId,omitempty"`
	Kind      string    `json:"kind"` // topup | payment | refund
	Cents     int64     `json:"cents"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}
