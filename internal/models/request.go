package models

import "time"

// PurchaseRequest — заявка "купи за меня": со ссылкой на товар или без неё.
type PurchaseRequest struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Type        string     `json:"type"` // online | offline | with_link | manual
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProductLink string     `json:"productLink,omitempty"`
	Quantity    int        `json:"quantity"`
	BudgetCents int64      `json:"budgetCents,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	QuotationID *string    `json:"quotationId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

type RequestCreateInput struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ProductLink string `json:"productLink,omitempty"`
	Quantity    int    `json:"quantity"`
	BudgetCents int64  `json:"budgetCents,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

type RequestUpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ProductLink *string `json:"productLink,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	BudgetCents *int64  `json:"budgetCents,omitempty"`
}

// Quotation — смета от байера: цена товара + сервисный сбор + доставка.
type Quotation struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"requestId"`
	ItemCents     int64     `json:"itemCents"`
	ServiceCents  int64     `json:"serviceCents"`
	ShippingCents int64     `json:"shippingCents"`
	TotalCents    int64     `json:"totalCents"`
	Currency      string    `json:"currency"`
	Note          string    `json:"note,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
}
