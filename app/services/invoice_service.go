package services

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/repositories"
	"github.com/shashiranjanraj/emart/pkg/collection"
	"github.com/shashiranjanraj/emart/pkg/crypt"
	"github.com/shashiranjanraj/emart/pkg/logger"
)

// invoiceDueDays is how long a customer has to settle an invoice.
const invoiceDueDays = 30

type invoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Invoice, error)
	FindByNumber(ctx context.Context, number string) (models.Invoice, error)
	FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (models.Invoice, error)
	Update(ctx context.Context, inv *models.Invoice) error
	All(ctx context.Context) ([]models.Invoice, error)
	ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Invoice, error)
	ByStatus(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error)
	Overdue(ctx context.Context, now time.Time) ([]models.Invoice, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type documentStore interface {
	Put(path string, content []byte) error
	Get(path string) ([]byte, error)
}

// InvoiceService creates and manages invoices. Every order gets a DRAFT
// invoice at placement; admins sign it, send it to the customer and track it
// until it is PAID or OVERDUE.
type InvoiceService struct {
	invoices invoiceStore
	users    userFinder
	docs     documentStore
	notifier Notifier
}

func NewInvoiceService(invoices invoiceStore, users userFinder, docs documentStore, notifier Notifier) *InvoiceService {
	return &InvoiceService{invoices: invoices, users: users, docs: docs, notifier: notifier}
}

// GenerateForOrder creates the draft invoice for a freshly placed order,
// copying the order's customer details, lines and totals.
func (s *InvoiceService) GenerateForOrder(ctx context.Context, order models.Order) (models.Invoice, error) {
	items := collection.Map(order.Items, func(i models.OrderItem) models.InvoiceItem {
		return models.InvoiceItem{
			ProductID:   i.ProductID,
			ProductName: i.ProductName,
			Barcode:     i.Barcode,
			Quantity:    i.Quantity,
			UnitPrice:   i.UnitPrice,
			TotalPrice:  i.TotalPrice,
		}
	})

	now := time.Now().UTC()
	invoice := models.Invoice{
		InvoiceNumber: newInvoiceNumber(),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Items:         items,
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		Total:         order.Total,
		Status:        models.InvoiceDraft,
		DueDate:       now.AddDate(0, 0, invoiceDueDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.invoices.Create(ctx, &invoice); err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

// Sign attaches an admin's digital signature. When no signature payload is
// supplied, one is derived from the invoice number, signer and timestamp and
// sealed so it cannot be forged without the application key.
func (s *InvoiceService) Sign(ctx context.Context, invoiceID, adminID primitive.ObjectID, signatureData string) (models.Invoice, error) {
	invoice, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return models.Invoice{}, err
	}

	admin, err := s.users.FindByID(ctx, adminID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Invoice{}, errNotFound("admin not found")
	}
	if err != nil {
		return models.Invoice{}, err
	}
	if admin.Role != models.RoleAdmin {
		return models.Invoice{}, errForbidden("user is not an admin")
	}

	now := time.Now().UTC()
	if signatureData == "" {
		signatureData, err = crypt.EncryptJSON(map[string]interface{}{
			"invoiceNumber": invoice.InvoiceNumber,
			"signedBy":      admin.Username,
			"signedAt":      now.Format(time.RFC3339),
		})
		if err != nil {
			return models.Invoice{}, err
		}
	}

	invoice.DigitalSignature = signatureData
	invoice.SignedBy = adminID
	invoice.SignedAt = now
	invoice.UpdatedAt = now

	if err := s.invoices.Update(ctx, &invoice); err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

// Send renders the invoice document, stores it and emails it to the customer.
// The invoice moves to SENT.
func (s *InvoiceService) Send(ctx context.Context, invoiceID primitive.ObjectID) (models.Invoice, error) {
	invoice, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return models.Invoice{}, err
	}
	if invoice.Status != models.InvoiceDraft {
		return models.Invoice{}, errConflict("only draft invoices can be sent")
	}

	doc, err := s.Render(invoice)
	if err != nil {
		return models.Invoice{}, err
	}

	path := "invoices/" + invoice.InvoiceNumber + ".html"
	if err := s.docs.Put(path, doc); err != nil {
		return models.Invoice{}, err
	}

	invoice.DocumentPath = path
	invoice.Status = models.InvoiceSent
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.invoices.Update(ctx, &invoice); err != nil {
		return models.Invoice{}, err
	}

	s.notifier.InvoiceSent(invoice, doc)
	return invoice, nil
}

// Document returns the stored rendering of a sent invoice.
func (s *InvoiceService) Document(ctx context.Context, invoiceID primitive.ObjectID) ([]byte, error) {
	invoice, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.DocumentPath == "" {
		return nil, errNotFound("invoice has no stored document")
	}
	return s.docs.Get(invoice.DocumentPath)
}

// SetStatus moves an invoice to an explicit status (admin only, enforced at
// the route layer).
func (s *InvoiceService) SetStatus(ctx context.Context, invoiceID primitive.ObjectID, status string) (models.Invoice, error) {
	st, ok := models.ParseInvoiceStatus(status)
	if !ok {
		return models.Invoice{}, errBadRequest("invalid invoice status: %s", status)
	}

	invoice, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return models.Invoice{}, err
	}

	invoice.Status = st
	if st == models.InvoicePaid {
		invoice.PaidDate = time.Now().UTC()
	}
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.invoices.Update(ctx, &invoice); err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

// MarkPaidForOrder settles the invoice linked to an order, if one exists.
func (s *InvoiceService) MarkPaidForOrder(ctx context.Context, orderID primitive.ObjectID) {
	invoice, err := s.invoices.FindByOrderID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		logger.Warn("invoice: no invoice found for order", "orderId", orderID.Hex())
		return
	}
	if err != nil {
		logger.Error("invoice: lookup by order failed", "orderId", orderID.Hex(), "error", err)
		return
	}

	now := time.Now().UTC()
	invoice.Status = models.InvoicePaid
	invoice.PaidDate = now
	invoice.UpdatedAt = now
	if err := s.invoices.Update(ctx, &invoice); err != nil {
		logger.Error("invoice: marking paid failed", "invoiceNumber", invoice.InvoiceNumber, "error", err)
	}
}

// SweepOverdue flips every SENT invoice past its due date to OVERDUE. Runs on
// a schedule.
func (s *InvoiceService) SweepOverdue(ctx context.Context) (int64, error) {
	return s.invoices.MarkOverdue(ctx, time.Now().UTC())
}

func (s *InvoiceService) GetByID(ctx context.Context, id primitive.ObjectID) (models.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Invoice{}, errNotFound("invoice not found")
	}
	return invoice, err
}

func (s *InvoiceService) GetByNumber(ctx context.Context, number string) (models.Invoice, error) {
	invoice, err := s.invoices.FindByNumber(ctx, number)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Invoice{}, errNotFound("invoice not found")
	}
	return invoice, err
}

func (s *InvoiceService) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (models.Invoice, error) {
	invoice, err := s.invoices.FindByOrderID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Invoice{}, errNotFound("invoice not found")
	}
	return invoice, err
}

func (s *InvoiceService) All(ctx context.Context) ([]models.Invoice, error) {
	return s.invoices.All(ctx)
}

func (s *InvoiceService) ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Invoice, error) {
	return s.invoices.ByCustomer(ctx, customerID)
}

func (s *InvoiceService) ByStatus(ctx context.Context, status string) ([]models.Invoice, error) {
	st, ok := models.ParseInvoiceStatus(status)
	if !ok {
		return nil, errBadRequest("invalid invoice status: %s", status)
	}
	return s.invoices.ByStatus(ctx, st)
}

func (s *InvoiceService) Overdue(ctx context.Context) ([]models.Invoice, error) {
	return s.invoices.Overdue(ctx, time.Now().UTC())
}

// Summary reports the invoiced, paid and outstanding totals.
type InvoiceSummary struct {
	Total   float64 `json:"total"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
}

func (s *InvoiceService) Summary(ctx context.Context) (InvoiceSummary, error) {
	all, err := s.invoices.All(ctx)
	if err != nil {
		return InvoiceSummary{}, err
	}

	sum := func(invs []models.Invoice) float64 {
		return round2(collection.Sum(invs, func(i models.Invoice) float64 { return i.Total }))
	}
	return InvoiceSummary{
		Total: sum(all),
		Paid: sum(collection.Filter(all, func(i models.Invoice) bool {
			return i.Status == models.InvoicePaid
		})),
		Pending: sum(collection.Filter(all, func(i models.Invoice) bool {
			return i.Status == models.InvoiceDraft || i.Status == models.InvoiceSent
		})),
	}, nil
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.InvoiceNumber}}</title></head>
<body>
  <h1>Invoice {{.InvoiceNumber}}</h1>
  <p>Order: {{.OrderNumber}}</p>
  <p>Billed to: {{.CustomerName}} ({{.CustomerEmail}})</p>
  <table border="1" cellpadding="4" cellspacing="0">
    <tr><th>Product</th><th>Barcode</th><th>Qty</th><th>Unit price</th><th>Total</th></tr>
    {{range .Items}}
    <tr>
      <td>{{.ProductName}}</td>
      <td>{{.Barcode}}</td>
      <td>{{.Quantity}}</td>
      <td>{{printf "%.2f" .UnitPrice}}</td>
      <td>{{printf "%.2f" .TotalPrice}}</td>
    </tr>
    {{end}}
  </table>
  <p>Subtotal: {{printf "%.2f" .Subtotal}}</p>
  <p>Tax: {{printf "%.2f" .Tax}}</p>
  <p><strong>Total: {{printf "%.2f" .Total}}</strong></p>
  <p>Due date: {{.DueDate.Format "2006-01-02"}}</p>
  {{if .DigitalSignature}}<p>Digitally signed at {{.SignedAt.Format "2006-01-02 15:04"}}</p>{{end}}
</body>
</html>
`))

// Render produces the HTML document for an invoice.
func (s *InvoiceService) Render(invoice models.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoice); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
