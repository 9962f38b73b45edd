package domain

import "time"

// OrderStatus is the lifecycle label stored on an order document.
type OrderStatus string

const (
	OrderPending            OrderStatus = "pending"
	OrderAcceptedByMerchant OrderStatus = "accepted_by_merchant"
)

type OrderItem struct {
	Name     string  `json:"name" bson:"name"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"`
}

// Order is a customer laundry order routed to a merchant.
type Order struct {
	ID           string      `json:"orderId" bson:"_id,omitempty"`
	MerchantID   string      `json:"merchantId" bson:"merchantId"`
	CustomerName string      `json:"customerName,omitempty" bson:"customerName,omitempty"`
	Service      string      `json:"service,omitempty" bson:"service,omitempty"`
	Items        []OrderItem `json:"items,omitempty" bson:"items,omitempty"`
	Total        float64     `json:"total" bson:"total"`
	Status       OrderStatus `json:"status" bson:"status"`
	Address      string      `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
}

// AcceptResult is the backend acknowledgement for an accepted order.
type AcceptResult struct {
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}
