package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/repositories"
	"github.com/shashiranjanraj/emart/pkg/collection"
	"github.com/shashiranjanraj/emart/pkg/logger"
)

// taxRate is applied to the order subtotal.
const taxRate = 0.10

type orderStore interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByNumber(ctx context.Context, number string) (models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error)
	ByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	ByPaymentStatus(ctx context.Context, status models.OrderPaymentStatus) ([]models.Order, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]models.Order, error)
	ByCustomerAndDateRange(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) ([]models.Order, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status models.OrderPaymentStatus) error
	SetInvoiceID(ctx context.Context, id, invoiceID primitive.ObjectID) error
}

type stockStore interface {
	ReserveStock(ctx context.Context, id primitive.ObjectID, n int) (models.Product, error)
	RestoreStock(ctx context.Context, id primitive.ObjectID, n int) (models.Product, error)
}

type invoiceGenerator interface {
	GenerateForOrder(ctx context.Context, o models.Order) (models.Invoice, error)
}

// OrderService places and manages orders. Stock is reserved line by line with
// atomic conditional decrements, so concurrent orders can never drive a
// product's quantity below zero.
type OrderService struct {
	orders   orderStore
	stock    stockStore
	users    userFinder
	invoices invoiceGenerator
	notifier Notifier
}

func NewOrderService(orders orderStore, stock stockStore, users userFinder, invoices invoiceGenerator, notifier Notifier) *OrderService {
	return &OrderService{orders: orders, stock: stock, users: users, invoices: invoices, notifier: notifier}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput is the payload accepted when placing an order.
type CreateOrderInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// Create places an order for a customer. Each line reserves stock atomically;
// if any line fails, every earlier reservation is rolled back and the order is
// rejected. A successful order is saved PENDING/PENDING and immediately gets a
// draft invoice.
func (s *OrderService) Create(ctx context.Context, customerID primitive.ObjectID, in CreateOrderInput) (models.Order, error) {
	customer, err := s.users.FindByID(ctx, customerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, errNotFound("customer not found")
	}
	if err != nil {
		return models.Order{}, err
	}
	if customer.Role != models.RoleCustomer {
		return models.Order{}, errForbidden("user is not a customer")
	}

	if len(in.Items) == 0 {
		return models.Order{}, errBadRequest("order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return models.Order{}, errBadRequest("item quantity must be positive")
		}
	}

	items, err := s.reserveItems(ctx, in.Items)
	if err != nil {
		return models.Order{}, err
	}

	subtotal := round2(collection.Sum(items, func(i models.OrderItem) float64 { return i.TotalPrice }))
	tax := round2(subtotal * taxRate)

	now := time.Now().UTC()
	order := models.Order{
		OrderNumber:   newOrderNumber(),
		CustomerID:    customer.ID,
		CustomerName:  customer.FullName(),
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         round2(subtotal + tax),
		Status:        models.OrderPending,
		PaymentStatus: models.OrderPaymentPending,
		OrderDate:     now,
		UpdatedAt:     now,
	}

	if err := s.orders.Create(ctx, &order); err != nil {
		s.releaseItems(ctx, items)
		return models.Order{}, err
	}

	// Invoice generation is eager but non-fatal: the order stands even if the
	// draft cannot be written right now.
	if inv, err := s.invoices.GenerateForOrder(ctx, order); err != nil {
		logger.Warn("order: draft invoice generation failed",
			"orderNumber", order.OrderNumber, "error", err)
	} else {
		order.InvoiceID = inv.ID
		if err := s.orders.SetInvoiceID(ctx, order.ID, inv.ID); err != nil {
			logger.Warn("order: linking invoice failed",
				"orderNumber", order.OrderNumber, "error", err)
		}
	}

	s.notifier.OrderPlaced(order)
	return order, nil
}

// reserveItems decrements stock for every requested line, copying product
// details into the order at reservation time. On any failure the lines
// reserved so far are restored.
func (s *OrderService) reserveItems(ctx context.Context, in []OrderItemInput) ([]models.OrderItem, error) {
	reserved := make([]models.OrderItem, 0, len(in))

	for _, line := range in {
		productID, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			s.releaseItems(ctx, reserved)
			return nil, errBadRequest("invalid product id: %s", line.ProductID)
		}

		product, err := s.stock.ReserveStock(ctx, productID, line.Quantity)
		if errors.Is(err, repositories.ErrInsufficientStock) {
			s.releaseItems(ctx, reserved)
			return nil, errConflict("insufficient stock for product %s", line.ProductID)
		}
		if err != nil {
			s.releaseItems(ctx, reserved)
			return nil, err
		}

		reserved = append(reserved, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Barcode:     product.Barcode,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			TotalPrice:  round2(product.Price * float64(line.Quantity)),
		})
	}
	return reserved, nil
}

func (s *OrderService) releaseItems(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if _, err := s.stock.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("order: stock rollback failed",
				"productId", item.ProductID.Hex(), "quantity", item.Quantity, "error", err)
		}
	}
}

// Cancel aborts a customer's own PENDING order and returns its stock.
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID primitive.ObjectID) (models.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.CustomerID != customerID {
		return models.Order{}, errForbidden("order does not belong to this customer")
	}
	if order.Status != models.OrderPending {
		return models.Order{}, errConflict("cannot cancel an order that is not pending")
	}

	if err := s.orders.SetStatus(ctx, order.ID, models.OrderCancelled); err != nil {
		return models.Order{}, err
	}
	order.Status = models.OrderCancelled
	s.releaseItems(ctx, order.Items)

	s.notifier.OrderCancelled(order)
	return order, nil
}

// SetStatus moves an order through the fulfilment lifecycle (admin only,
// enforced at the route layer).
func (s *OrderService) SetStatus(ctx context.Context, orderID primitive.ObjectID, status string) (models.Order, error) {
	st, ok := models.ParseOrderStatus(status)
	if !ok {
		return models.Order{}, errBadRequest("invalid order status: %s", status)
	}

	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.orders.SetStatus(ctx, order.ID, st); err != nil {
		return models.Order{}, err
	}
	order.Status = st
	return order, nil
}

// SetPaymentStatus updates an order's settlement state.
func (s *OrderService) SetPaymentStatus(ctx context.Context, orderID primitive.ObjectID, status string) (models.Order, error) {
	st, ok := models.ParseOrderPaymentStatus(status)
	if !ok {
		return models.Order{}, errBadRequest("invalid payment status: %s", status)
	}

	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.orders.SetPaymentStatus(ctx, order.ID, st); err != nil {
		return models.Order{}, err
	}
	order.PaymentStatus = st
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, errNotFound("order not found")
	}
	return order, err
}

func (s *OrderService) GetByNumber(ctx context.Context, number string) (models.Order, error) {
	order, err := s.orders.FindByNumber(ctx, number)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, errNotFound("order not found")
	}
	return order, err
}

func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

func (s *OrderService) ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ByCustomer(ctx, customerID)
}

func (s *OrderService) ByStatus(ctx context.Context, status string) ([]models.Order, error) {
	st, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, errBadRequest("invalid order status: %s", status)
	}
	return s.orders.ByStatus(ctx, st)
}

func (s *OrderService) Pending(ctx context.Context) ([]models.Order, error) {
	return s.orders.ByStatus(ctx, models.OrderPending)
}

func (s *OrderService) PendingPayments(ctx context.Context) ([]models.Order, error) {
	return s.orders.ByPaymentStatus(ctx, models.OrderPaymentPending)
}

func (s *OrderService) ByDateRange(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	return s.orders.ByDateRange(ctx, start, end)
}

func (s *OrderService) ByCustomerAndDateRange(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) ([]models.Order, error) {
	return s.orders.ByCustomerAndDateRange(ctx, customerID, start, end)
}

// TotalRevenue sums the totals of all PAID orders.
func (s *OrderService) TotalRevenue(ctx context.Context) (float64, error) {
	orders, err := s.orders.ByPaymentStatus(ctx, models.OrderPaymentPaid)
	if err != nil {
		return 0, err
	}
	return round2(collection.Sum(orders, func(o models.Order) float64 { return o.Total })), nil
}

// RevenueByDateRange sums PAID order totals inside the window.
func (s *OrderService) RevenueByDateRange(ctx context.Context, start, end time.Time) (float64, error) {
	orders, err := s.orders.ByDateRange(ctx, start, end)
	if err != nil {
		return 0, err
	}
	paid := collection.Filter(orders, func(o models.Order) bool {
		return o.PaymentStatus == models.OrderPaymentPaid
	})
	return round2(collection.Sum(paid, func(o models.Order) float64 { return o.Total })), nil
}
