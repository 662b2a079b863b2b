package services

import "github.com/shashiranjanraj/emart/app/models"

// Notifier receives domain events that fan out to email and other channels.
// The production implementation dispatches queue jobs; tests plug in a no-op.
type Notifier interface {
	UserRegistered(u models.User)
	ProductApproved(p models.Product)
	ProductRejected(p models.Product, reason string)
	OrderPlaced(o models.Order)
	OrderCancelled(o models.Order)
	PaymentCompleted(p models.Payment, o models.Order)
	InvoiceSent(inv models.Invoice, document []byte)
	LowStock(products []models.Product)
	ExpiringProducts(products []models.Product)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) UserRegistered(models.User)                       {}
func (NopNotifier) ProductApproved(models.Product)                   {}
func (NopNotifier) ProductRejected(models.Product, string)           {}
func (NopNotifier) OrderPlaced(models.Order)                         {}
func (NopNotifier) OrderCancelled(models.Order)                      {}
func (NopNotifier) PaymentCompleted(models.Payment, models.Order)    {}
func (NopNotifier) InvoiceSent(models.Invoice, []byte)               {}
func (NopNotifier) LowStock([]models.Product)                        {}
func (NopNotifier) ExpiringProducts([]models.Product)                {}
