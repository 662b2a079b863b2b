package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod is the tender type used to settle an order.
type PaymentMethod string

const (
	MethodCreditCard    PaymentMethod = "CREDIT_CARD"
	MethodDebitCard     PaymentMethod = "DEBIT_CARD"
	MethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	MethodCash          PaymentMethod = "CASH"
	MethodDigitalWallet PaymentMethod = "DIGITAL_WALLET"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(normalizeEnum(s)) {
	case MethodCreditCard:
		return MethodCreditCard, true
	case MethodDebitCard:
		return MethodDebitCard, true
	case MethodBankTransfer:
		return MethodBankTransfer, true
	case MethodCash:
		return MethodCash, true
	case MethodDigitalWallet:
		return MethodDigitalWallet, true
	}
	return "", false
}

// PaymentStatus is the settlement state of a payment record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(normalizeEnum(s)) {
	case PaymentPending:
		return PaymentPending, true
	case PaymentCompleted:
		return PaymentCompleted, true
	case PaymentFailed:
		return PaymentFailed, true
	case PaymentRefunded:
		return PaymentRefunded, true
	case PaymentCancelled:
		return PaymentCancelled, true
	}
	return "", false
}

// Payment is one settlement attempt against an order. Transaction ids are
// unique. A refund is a second record with a negated amount sharing the
// order id; the original record is never erased.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`

	OrderID     primitive.ObjectID `bson:"orderId" json:"orderId"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`

	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	CustomerName  string             `bson:"customerName" json:"customerName"`
	CustomerEmail string             `bson:"customerEmail" json:"customerEmail"`

	Amount float64       `bson:"amount" json:"amount"`
	Method PaymentMethod `bson:"method" json:"method"`
	Status PaymentStatus `bson:"status" json:"status"`

	GatewayTransactionID string `bson:"gatewayTransactionId,omitempty" json:"gatewayTransactionId,omitempty"`
	GatewayResponse      string `bson:"gatewayResponse,omitempty" json:"gatewayResponse,omitempty"`
	FailureReason        string `bson:"failureReason,omitempty" json:"failureReason,omitempty"`

	RefundReason string    `bson:"refundReason,omitempty" json:"refundReason,omitempty"`
	RefundDate   time.Time `bson:"refundDate,omitempty" json:"refundDate,omitempty"`

	PaymentDate time.Time `bson:"paymentDate" json:"paymentDate"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
