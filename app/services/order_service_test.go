package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
)

func newOrderFixture(t *testing.T) (*OrderService, *memUsers, *memProducts, *memOrders, *memInvoices) {
	t.Helper()
	users := newMemUsers()
	products := newMemProducts()
	orders := newMemOrders()
	invoices := newMemInvoices()
	invoiceSvc := NewInvoiceService(invoices, users, newMemDocs(), NopNotifier{})
	svc := NewOrderService(orders, products, users, invoiceSvc, NopNotifier{})
	return svc, users, products, orders, invoices
}

func seedCustomer(users *memUsers) models.User {
	return users.add(models.User{
		Username:  "casey",
		Email:     "casey@example.com",
		FirstName: "Casey",
		LastName:  "Customer",
		Role:      models.RoleCustomer,
		Enabled:   true,
	})
}

func seedApproved(products *memProducts, name string, price float64, qty int) models.Product {
	return products.add(models.Product{
		Name:     name,
		Barcode:  "BAR" + name,
		Price:    price,
		Quantity: qty,
		Status:   models.ProductApproved,
	})
}

func TestCreateOrderTotals(t *testing.T) {
	svc, users, products, _, _ := newOrderFixture(t)
	customer := seedCustomer(users)
	product := seedApproved(products, "Coffee", 9.99, 10)

	order, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, 19.98, order.Subtotal)
	assert.Equal(t, 2.00, order.Tax)
	assert.Equal(t, 21.98, order.Total)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.OrderPaymentPending, order.PaymentStatus)
	assert.Regexp(t, `^ORD-\d+[0-9A-F]{4}$`, order.OrderNumber)

	left, err := products.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, left.Quantity)
}

func TestCreateOrderGeneratesDraftInvoice(t *testing.T) {
	svc, users, products, orders, invoices := newOrderFixture(t)
	customer := seedCustomer(users)
	product := seedApproved(products, "Milk", 2.49, 5)

	order, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	require.False(t, order.InvoiceID.IsZero())

	inv, err := invoices.FindByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceDraft, inv.Status)
	assert.Equal(t, order.Total, inv.Total)
	assert.Regexp(t, `^INV-\d+[0-9A-F]{4}$`, inv.InvoiceNumber)

	stored, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, stored.InvoiceID)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	svc, users, products, orders, _ := newOrderFixture(t)
	customer := seedCustomer(users)
	plenty := seedApproved(products, "Bread", 1.99, 50)
	scarce := seedApproved(products, "Caviar", 49.99, 1)

	_, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: plenty.ID.Hex(), Quantity: 10},
			{ProductID: scarce.ID.Hex(), Quantity: 2},
		},
	})
	require.Error(t, err)
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)

	// The first line's reservation must have been returned.
	p, err := products.FindByID(context.Background(), plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Quantity)

	all, err := orders.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateOrderRejectsNonCustomer(t *testing.T) {
	svc, users, products, _, _ := newOrderFixture(t)
	admin := users.add(models.User{Username: "root", Role: models.RoleAdmin, Enabled: true})
	product := seedApproved(products, "Tea", 3.50, 10)

	_, err := svc.Create(context.Background(), admin.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 403, ce.Status)
}

func TestCancelOrderReleasesStock(t *testing.T) {
	svc, users, products, _, _ := newOrderFixture(t)
	customer := seedCustomer(users)
	product := seedApproved(products, "Sugar", 1.20, 3)

	order, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 3}},
	})
	require.NoError(t, err)

	// Fully reserved: the product flipped to OUT_OF_STOCK.
	p, _ := products.FindByID(context.Background(), product.ID)
	assert.Equal(t, models.ProductOutOfStock, p.Status)

	cancelled, err := svc.Cancel(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	p, _ = products.FindByID(context.Background(), product.ID)
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, models.ProductApproved, p.Status)
}

func TestCancelOrderRules(t *testing.T) {
	svc, users, products, orders, _ := newOrderFixture(t)
	customer := seedCustomer(users)
	stranger := seedCustomer(users)
	product := seedApproved(products, "Rice", 4.00, 10)

	order, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, stranger.ID)
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 403, ce.Status)

	require.NoError(t, orders.SetStatus(context.Background(), order.ID, models.OrderShipped))
	_, err = svc.Cancel(context.Background(), order.ID, customer.ID)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)
}

func TestOrderRevenueCountsOnlyPaid(t *testing.T) {
	svc, users, products, orders, _ := newOrderFixture(t)
	customer := seedCustomer(users)
	product := seedApproved(products, "Beans", 10.00, 100)

	paid, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, orders.SetPaymentStatus(context.Background(), paid.ID, models.OrderPaymentPaid))

	revenue, err := svc.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11.00, revenue)
}

func TestSetStatusValidatesEnum(t *testing.T) {
	svc, users, products, _, _ := newOrderFixture(t)
	customer := seedCustomer(users)
	product := seedApproved(products, "Salt", 0.99, 10)

	order, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), order.ID, "TELEPORTED")
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Status)

	updated, err := svc.SetStatus(context.Background(), order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc, users, _, _, _ := newOrderFixture(t)
	customer := seedCustomer(users)

	_, err := svc.Create(context.Background(), customer.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}},
	})
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 409, ce.Status)
}
