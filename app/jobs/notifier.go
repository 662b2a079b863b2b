// Package jobs defines the background jobs dispatched onto the queue and the
// notifier that feeds them from domain events.
package jobs

import (
	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/config"
	"github.com/shashiranjanraj/emart/pkg/logger"
	"github.com/shashiranjanraj/emart/pkg/queue"
)

// Register makes every job type known to the queue so workers can deserialize
// payloads. Call once at boot.
func Register() {
	queue.Register("jobs.WelcomeEmailJob", func() queue.Job { return &WelcomeEmailJob{} })
	queue.Register("jobs.ProductApprovedJob", func() queue.Job { return &ProductApprovedJob{} })
	queue.Register("jobs.ProductRejectedJob", func() queue.Job { return &ProductRejectedJob{} })
	queue.Register("jobs.OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
	queue.Register("jobs.OrderCancelledJob", func() queue.Job { return &OrderCancelledJob{} })
	queue.Register("jobs.PaymentConfirmationJob", func() queue.Job { return &PaymentConfirmationJob{} })
	queue.Register("jobs.InvoiceEmailJob", func() queue.Job { return &InvoiceEmailJob{} })
	queue.Register("jobs.LowStockAlertJob", func() queue.Job { return &LowStockAlertJob{} })
	queue.Register("jobs.ExpiryAlertJob", func() queue.Job { return &ExpiryAlertJob{} })
}

// QueueNotifier turns domain events into queued jobs so request handling never
// waits on SMTP.
type QueueNotifier struct{}

func NewQueueNotifier() *QueueNotifier {
	return &QueueNotifier{}
}

func dispatch(job queue.Job) {
	if err := queue.Dispatch(job); err != nil {
		logger.Error("jobs: dispatch failed", "error", err)
	}
}

func (QueueNotifier) UserRegistered(u models.User) {
	dispatch(WelcomeEmailJob{Email: u.Email, Name: u.FullName(), Role: string(u.Role)})
}

func (QueueNotifier) ProductApproved(p models.Product) {
	dispatch(ProductApprovedJob{
		SupplierEmail: p.SupplierEmail,
		SupplierName:  p.SupplierName,
		ProductName:   p.Name,
	})
}

func (QueueNotifier) ProductRejected(p models.Product, reason string) {
	dispatch(ProductRejectedJob{
		SupplierEmail: p.SupplierEmail,
		SupplierName:  p.SupplierName,
		ProductName:   p.Name,
		Reason:        reason,
	})
}

func (QueueNotifier) OrderPlaced(o models.Order) {
	dispatch(OrderConfirmationJob{
		Email:       o.CustomerEmail,
		Name:        o.CustomerName,
		OrderNumber: o.OrderNumber,
		Total:       o.Total,
	})
}

func (QueueNotifier) OrderCancelled(o models.Order) {
	dispatch(OrderCancelledJob{
		Email:       o.CustomerEmail,
		Name:        o.CustomerName,
		OrderNumber: o.OrderNumber,
	})
}

func (QueueNotifier) PaymentCompleted(p models.Payment, o models.Order) {
	dispatch(PaymentConfirmationJob{
		Email:       p.CustomerEmail,
		Name:        p.CustomerName,
		OrderNumber: o.OrderNumber,
		Amount:      p.Amount,
	})
}

func (QueueNotifier) InvoiceSent(inv models.Invoice, document []byte) {
	dispatch(InvoiceEmailJob{
		Email:         inv.CustomerEmail,
		Name:          inv.CustomerName,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Total,
		Document:      document,
	})
}

func (QueueNotifier) LowStock(products []models.Product) {
	if len(products) == 0 {
		return
	}
	items := make([]StockAlertItem, 0, len(products))
	for _, p := range products {
		items = append(items, StockAlertItem{Name: p.Name, Quantity: p.Quantity})
	}
	dispatch(LowStockAlertJob{AdminEmail: adminEmail(), Products: items})
}

func (QueueNotifier) ExpiringProducts(products []models.Product) {
	if len(products) == 0 {
		return
	}
	items := make([]StockAlertItem, 0, len(products))
	for _, p := range products {
		items = append(items, StockAlertItem{Name: p.Name, Expiry: p.BestBefore.Format("2006-01-02")})
	}
	dispatch(ExpiryAlertJob{AdminEmail: adminEmail(), Products: items})
}

func adminEmail() string {
	return config.Get("ADMIN_EMAIL", "admin@emart.local")
}
