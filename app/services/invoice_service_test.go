package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/pkg/crypt"
)

func newInvoiceFixture(t *testing.T) (*InvoiceService, *memUsers, *memInvoices, *memDocs) {
	t.Helper()
	users := newMemUsers()
	invoices := newMemInvoices()
	docs := newMemDocs()
	return NewInvoiceService(invoices, users, docs, NopNotifier{}), users, invoices, docs
}

func sampleOrder() models.Order {
	return models.Order{
		ID:            primitive.NewObjectID(),
		OrderNumber:   "ORD-12345678ABCD",
		CustomerID:    primitive.NewObjectID(),
		CustomerName:  "Casey Customer",
		CustomerEmail: "casey@example.com",
		Items: []models.OrderItem{{
			ProductID:   primitive.NewObjectID(),
			ProductName: "Coffee Beans 500g",
			Barcode:     "COF10000001001",
			Quantity:    2,
			UnitPrice:   9.99,
			TotalPrice:  19.98,
		}},
		Subtotal: 19.98,
		Tax:      2.00,
		Total:    21.98,
	}
}

func TestGenerateForOrderCopiesTotals(t *testing.T) {
	svc, _, _, _ := newInvoiceFixture(t)
	order := sampleOrder()

	invoice, err := svc.GenerateForOrder(context.Background(), order)
	require.NoError(t, err)

	assert.Regexp(t, `^INV-\d+[0-9A-F]{4}$`, invoice.InvoiceNumber)
	assert.Equal(t, models.InvoiceDraft, invoice.Status)
	assert.Equal(t, order.ID, invoice.OrderID)
	assert.Equal(t, 19.98, invoice.Subtotal)
	assert.Equal(t, 2.00, invoice.Tax)
	assert.Equal(t, 21.98, invoice.Total)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "Coffee Beans 500g", invoice.Items[0].ProductName)

	wantDue := time.Now().UTC().AddDate(0, 0, 30)
	assert.WithinDuration(t, wantDue, invoice.DueDate, time.Minute)
}

func TestSignSealsSignature(t *testing.T) {
	svc, users, _, _ := newInvoiceFixture(t)
	admin := seedAdmin(users)

	invoice, err := svc.GenerateForOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	signed, err := svc.Sign(context.Background(), invoice.ID, admin.ID, "")
	require.NoError(t, err)
	require.NotEmpty(t, signed.DigitalSignature)
	assert.Equal(t, admin.ID, signed.SignedBy)
	assert.False(t, signed.SignedAt.IsZero())

	// The generated signature decrypts back to the signing facts.
	var payload map[string]interface{}
	require.NoError(t, crypt.DecryptJSON(signed.DigitalSignature, &payload))
	assert.Equal(t, invoice.InvoiceNumber, payload["invoiceNumber"])
	assert.Equal(t, admin.Username, payload["signedBy"])
}

func TestSignAcceptsCallerSignature(t *testing.T) {
	svc, users, _, _ := newInvoiceFixture(t)
	admin := seedAdmin(users)

	invoice, err := svc.GenerateForOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	signed, err := svc.Sign(context.Background(), invoice.ID, admin.ID, "wet-ink-scan-42")
	require.NoError(t, err)
	assert.Equal(t, "wet-ink-scan-42", signed.DigitalSignature)
}

func TestSignRequiresAdmin(t *testing.T) {
	svc, users, _, _ := newInvoiceFixture(t)
	supplier := seedSupplier(users)

	invoice, err := svc.GenerateForOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	var ce *ClientError
	_, err = svc.Sign(context.Background(), invoice.ID, supplier.ID, "")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 403, ce.Status)
}

func TestSendStoresDocumentAndMovesToSent(t *testing.T) {
	svc, _, _, docs := newInvoiceFixture(t)

	invoice, err := svc.GenerateForOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	sent, err := svc.Send(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceSent, sent.Status)
	assert.Equal(t, "invoices/"+invoice.InvoiceNumber+".html", sent.DocumentPath)

	doc, ok := docs.files[sent.DocumentPath]
	require.True(t, ok)
	html := string(doc)
	assert.Contains(t, html, invoice.InvoiceNumber)
	assert.Contains(t, html, "Coffee Beans 500g")
	assert.Contains(t, html, "21.98")

	// Only drafts may be sent.
	var ce *ClientError
	_, err = svc.Send(context.Background(), invoice.ID)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)

	got, err := svc.Document(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "<!DOCTYPE html>"))
}

func TestSetStatusPaidStampsPaidDate(t *testing.T) {
	svc, _, _, _ := newInvoiceFixture(t)

	invoice, err := svc.GenerateForOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	var ce *ClientError
	_, err = svc.SetStatus(context.Background(), invoice.ID, "SHREDDED")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)

	paid, err := svc.SetStatus(context.Background(), invoice.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	assert.False(t, paid.PaidDate.IsZero())
}

func TestSweepOverdue(t *testing.T) {
	svc, _, invoices, _ := newInvoiceFixture(t)
	now := time.Now().UTC()

	stale := models.Invoice{
		InvoiceNumber: "INV-00000001AAAA",
		Status:        models.InvoiceSent,
		DueDate:       now.AddDate(0, 0, -1),
	}
	require.NoError(t, invoices.Create(context.Background(), &stale))
	fresh := models.Invoice{
		InvoiceNumber: "INV-00000002BBBB",
		Status:        models.InvoiceSent,
		DueDate:       now.AddDate(0, 0, 10),
	}
	require.NoError(t, invoices.Create(context.Background(), &fresh))

	n, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	swept, _ := invoices.FindByID(context.Background(), stale.ID)
	assert.Equal(t, models.InvoiceOverdue, swept.Status)
	kept, _ := invoices.FindByID(context.Background(), fresh.ID)
	assert.Equal(t, models.InvoiceSent, kept.Status)
}

func TestInvoiceSummary(t *testing.T) {
	svc, _, invoices, _ := newInvoiceFixture(t)

	add := func(status models.InvoiceStatus, total float64) {
		inv := models.Invoice{Status: status, Total: total}
		require.NoError(t, invoices.Create(context.Background(), &inv))
	}
	add(models.InvoiceDraft, 10.00)
	add(models.InvoiceSent, 20.00)
	add(models.InvoicePaid, 30.00)
	add(models.InvoiceCancelled, 5.00)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 65.00, summary.Total)
	assert.Equal(t, 30.00, summary.Paid)
	assert.Equal(t, 30.00, summary.Pending)
}
