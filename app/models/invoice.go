package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceStatus is the billing lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	switch InvoiceStatus(normalizeEnum(s)) {
	case InvoiceDraft:
		return InvoiceDraft, true
	case InvoiceSent:
		return InvoiceSent, true
	case InvoicePaid:
		return InvoicePaid, true
	case InvoiceOverdue:
		return InvoiceOverdue, true
	case InvoiceCancelled:
		return InvoiceCancelled, true
	}
	return "", false
}

// InvoiceItem mirrors an order line on the billing document.
type InvoiceItem struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	Barcode     string             `bson:"barcode" json:"barcode"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	UnitPrice   float64            `bson:"unitPrice" json:"unitPrice"`
	TotalPrice  float64            `bson:"totalPrice" json:"totalPrice"`
}

// Invoice is the billing document derived from an order. Invoice numbers are
// unique; by convention there is one invoice per order. The signature fields
// record an opaque payload supplied by an admin; no cryptographic
// verification is performed.
type Invoice struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InvoiceNumber string             `bson:"invoiceNumber" json:"invoiceNumber"`

	OrderID     primitive.ObjectID `bson:"orderId" json:"orderId"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`

	CustomerID      primitive.ObjectID `bson:"customerId" json:"customerId"`
	CustomerName    string             `bson:"customerName" json:"customerName"`
	CustomerEmail   string             `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone   string             `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	CustomerAddress string             `bson:"customerAddress,omitempty" json:"customerAddress,omitempty"`

	Items    []InvoiceItem `bson:"items" json:"items"`
	Subtotal float64       `bson:"subtotal" json:"subtotal"`
	Tax      float64       `bson:"tax" json:"tax"`
	Total    float64       `bson:"total" json:"total"`

	Status   InvoiceStatus `bson:"status" json:"status"`
	DueDate  time.Time     `bson:"dueDate" json:"dueDate"`
	PaidDate time.Time     `bson:"paidDate,omitempty" json:"paidDate,omitempty"`

	SignedBy         primitive.ObjectID `bson:"signedBy,omitempty" json:"signedBy,omitempty"`
	SignedAt         time.Time          `bson:"signedAt,omitempty" json:"signedAt,omitempty"`
	DigitalSignature string             `bson:"digitalSignature,omitempty" json:"digitalSignature,omitempty"`

	DocumentPath string    `bson:"documentPath,omitempty" json:"documentPath,omitempty"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
