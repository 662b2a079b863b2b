package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
)

func newPaymentFixture(t *testing.T, approve bool) (*PaymentService, *memPayments, *memOrders, *memInvoices, *stubGateway) {
	t.Helper()
	payments := newMemPayments()
	orders := newMemOrders()
	invoices := newMemInvoices()
	invoiceSvc := NewInvoiceService(invoices, newMemUsers(), newMemDocs(), NopNotifier{})
	gateway := &stubGateway{approve: approve}
	svc := NewPaymentService(payments, orders, invoiceSvc, gateway, NopNotifier{})
	return svc, payments, orders, invoices, gateway
}

func seedOrder(orders *memOrders, total float64) models.Order {
	order := models.Order{
		OrderNumber:   "ORD-12345678ABCD",
		CustomerID:    primitive.NewObjectID(),
		CustomerName:  "Casey Customer",
		CustomerEmail: "casey@example.com",
		Total:         total,
		Status:        models.OrderPending,
		PaymentStatus: models.OrderPaymentPending,
		OrderDate:     time.Now().UTC(),
	}
	_ = orders.Create(context.Background(), &order)
	return order
}

func TestProcessPaymentApproved(t *testing.T) {
	svc, payments, orders, invoices, gateway := newPaymentFixture(t, true)
	order := seedOrder(orders, 21.98)

	// A draft invoice exists for the order, as after placement.
	inv := models.Invoice{
		InvoiceNumber: "INV-12345678ABCD",
		OrderID:       order.ID,
		Status:        models.InvoiceDraft,
		Total:         order.Total,
	}
	require.NoError(t, invoices.Create(context.Background(), &inv))

	payment, err := svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(),
		Method:  "credit_card",
		Amount:  21.98,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, 1, gateway.calls)
	assert.Regexp(t, `^[0-9A-F]{16}$`, payment.TransactionID)
	assert.Regexp(t, `^GTW-[0-9A-F]{12}$`, payment.GatewayTransactionID)

	settled, _ := orders.FindByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderPaymentPaid, settled.PaymentStatus)

	billed, _ := invoices.FindByID(context.Background(), inv.ID)
	assert.Equal(t, models.InvoicePaid, billed.Status)
	assert.False(t, billed.PaidDate.IsZero())

	stored, err := payments.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, stored.Status)
}

func TestProcessPaymentDeclined(t *testing.T) {
	svc, _, orders, _, _ := newPaymentFixture(t, false)
	order := seedOrder(orders, 21.98)

	payment, err := svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(),
		Method:  "CASH",
		Amount:  21.98,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentFailed, payment.Status)
	assert.Equal(t, "Payment gateway processing failed", payment.FailureReason)

	// The order stays unpaid.
	unsettled, _ := orders.FindByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderPaymentPending, unsettled.PaymentStatus)
}

func TestProcessPaymentValidation(t *testing.T) {
	svc, _, orders, _, _ := newPaymentFixture(t, true)
	order := seedOrder(orders, 10.00)

	var ce *ClientError

	_, err := svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(), Method: "BARTER", Amount: 10,
	})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)

	_, err = svc.Process(context.Background(), ProcessInput{
		OrderID: primitive.NewObjectID().Hex(), Method: "CASH", Amount: 10,
	})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 404, ce.Status)
}

func TestRefundAppendsNegatedRecord(t *testing.T) {
	svc, payments, orders, _, _ := newPaymentFixture(t, true)
	order := seedOrder(orders, 50.00)

	payment, err := svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(), Method: "CREDIT_CARD", Amount: 50.00,
	})
	require.NoError(t, err)

	refund, err := svc.Refund(context.Background(), payment.ID, 20.00, "damaged item")
	require.NoError(t, err)

	assert.Equal(t, -20.00, refund.Amount)
	assert.Equal(t, models.PaymentCompleted, refund.Status)
	assert.Equal(t, "damaged item", refund.RefundReason)
	assert.NotEqual(t, payment.TransactionID, refund.TransactionID)

	original, _ := payments.FindByID(context.Background(), payment.ID)
	assert.Equal(t, models.PaymentRefunded, original.Status)
	assert.Equal(t, 50.00, original.Amount)

	history, _ := payments.ByOrder(context.Background(), order.ID)
	assert.Len(t, history, 2)
}

func TestRefundCeiling(t *testing.T) {
	svc, _, orders, _, _ := newPaymentFixture(t, true)
	order := seedOrder(orders, 30.00)

	payment, err := svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(), Method: "CASH", Amount: 30.00,
	})
	require.NoError(t, err)

	var ce *ClientError
	_, err = svc.Refund(context.Background(), payment.ID, 30.01, "")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)
	assert.Equal(t, "refund amount cannot exceed original payment amount", ce.Message)
}

func TestRefundRequiresCompleted(t *testing.T) {
	svc, _, orders, _, _ := newPaymentFixture(t, false)
	order := seedOrder(orders, 15.00)

	payment, err := svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(), Method: "CASH", Amount: 15.00,
	})
	require.NoError(t, err)
	require.Equal(t, models.PaymentFailed, payment.Status)

	var ce *ClientError
	_, err = svc.Refund(context.Background(), payment.ID, 15.00, "")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)
}

func TestPaymentTotals(t *testing.T) {
	svc, _, orders, _, _ := newPaymentFixture(t, true)
	order := seedOrder(orders, 100.00)

	first, err := svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(), Method: "CASH", Amount: 60.00,
	})
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), ProcessInput{
		OrderID: order.ID.Hex(), Method: "CREDIT_CARD", Amount: 40.00,
	})
	require.NoError(t, err)

	_, err = svc.Refund(context.Background(), first.ID, 10.00, "")
	require.NoError(t, err)

	total, err := svc.TotalPayments(context.Background())
	require.NoError(t, err)
	refunds, err := svc.TotalRefunds(context.Background())
	require.NoError(t, err)

	// The refunded original drops out of the completed set.
	assert.Equal(t, 40.00, total)
	assert.Equal(t, 10.00, refunds)

	summary, err := svc.MethodsSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40.00, summary["CREDIT_CARD"])
}
