package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(normalizeEnum(s)) {
	case OrderPending:
		return OrderPending, true
	case OrderConfirmed:
		return OrderConfirmed, true
	case OrderShipped:
		return OrderShipped, true
	case OrderDelivered:
		return OrderDelivered, true
	case OrderCancelled:
		return OrderCancelled, true
	}
	return "", false
}

// OrderPaymentStatus tracks settlement separately from fulfilment.
type OrderPaymentStatus string

const (
	OrderPaymentPending  OrderPaymentStatus = "PENDING"
	OrderPaymentPaid     OrderPaymentStatus = "PAID"
	OrderPaymentFailed   OrderPaymentStatus = "FAILED"
	OrderPaymentRefunded OrderPaymentStatus = "REFUNDED"
)

func ParseOrderPaymentStatus(s string) (OrderPaymentStatus, bool) {
	switch OrderPaymentStatus(normalizeEnum(s)) {
	case OrderPaymentPending:
		return OrderPaymentPending, true
	case OrderPaymentPaid:
		return OrderPaymentPaid, true
	case OrderPaymentFailed:
		return OrderPaymentFailed, true
	case OrderPaymentRefunded:
		return OrderPaymentRefunded, true
	}
	return "", false
}

// OrderItem is one line of an order. Product details are copied at order time
// so the line survives later catalog changes.
type OrderItem struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	Barcode     string             `bson:"barcode" json:"barcode"`
	Quantity    int                `bson:"quantity" json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64            `bson:"unitPrice" json:"unitPrice"`
	TotalPrice  float64            `bson:"totalPrice" json:"totalPrice"`
}

// Order is a customer purchase. Order numbers are unique. The invariant
// total = round2(subtotal + tax) with tax = round2(subtotal * 0.10) is
// maintained by the order service.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`

	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	CustomerName  string             `bson:"customerName" json:"customerName"`
	CustomerEmail string             `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone string             `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`

	Items    []OrderItem `bson:"items" json:"items" validate:"required"`
	Subtotal float64     `bson:"subtotal" json:"subtotal"`
	Tax      float64     `bson:"tax" json:"tax"`
	Total    float64     `bson:"total" json:"total"`

	Status        OrderStatus        `bson:"status" json:"status"`
	PaymentStatus OrderPaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	InvoiceID     primitive.ObjectID `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`

	OrderDate time.Time `bson:"orderDate" json:"orderDate"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
