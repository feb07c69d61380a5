package order

import (
	"time"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// fulfillment moves strictly forward; cancellation is only reachable
// from PENDING. DELIVERED and CANCELLED are terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"order_number"`
	UserID      uint        `json:"user_id"`
	Status      OrderStatus `json:"status"`

	// Pricing copied verbatim from the checkout session, all in IDR.
	Subtotal    int    `json:"subtotal"`
	Tax         int    `json:"tax"`
	ShippingFee int    `json:"shipping_fee"`
	Discount    int    `json:"discount"`
	Total       int    `json:"total"`
	Currency    string `json:"currency"`

	ShippingAddressID *string `json:"shipping_address_id,omitempty"`
	PaymentMethod     *string `json:"payment_method,omitempty"`
	Notes             *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem records one purchased line. Price is the unit price at the
// moment of purchase; later catalog changes never touch it.
type OrderItem struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`

	ProductID *string `json:"product_id,omitempty"`
	VariantID *string `json:"variant_id,omitempty"`

	Name     string  `json:"name"`
	ImageURL *string `json:"imageurl,omitempty"`

	Quantity int `json:"quantity"`
	Price    int `json:"price"`
	Subtotal int `json:"subtotal"`
}

type OrderFilter struct {
	Search   *string
	Status   *string
	DateFrom *time.Time
	DateTo   *time.Time
}

type OrderSort struct {
	Field     string
	Direction string
}
