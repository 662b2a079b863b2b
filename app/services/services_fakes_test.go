package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/repositories"
)

// In-memory stores standing in for the MongoDB repositories. They mirror the
// repository contracts closely enough for the business rules under test,
// including the conditional stock decrement.

type memUsers struct {
	byID map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]models.User{}}
}

func (m *memUsers) add(u models.User) models.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.byID[u.ID] = u
	return u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	*u = m.add(*u)
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) All(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) ByRole(_ context.Context, role models.Role) ([]models.User, error) {
	var out []models.User
	for _, u := range m.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) Enabled(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.byID {
		if u.Enabled {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) Search(_ context.Context, query string) ([]models.User, error) {
	q := strings.ToLower(query)
	var out []models.User
	for _, u := range m.byID {
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	users, _ := m.ByRole(ctx, role)
	return int64(len(users)), nil
}

func (m *memUsers) Count(_ context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

type memProducts struct {
	byID map[primitive.ObjectID]models.Product
}

func newMemProducts() *memProducts {
	return &memProducts{byID: map[primitive.ObjectID]models.Product{}}
}

func (m *memProducts) add(p models.Product) models.Product {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.byID[p.ID] = p
	return p
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	*p = m.add(*p)
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) FindByBarcode(_ context.Context, barcode string) (models.Product, error) {
	for _, p := range m.byID {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return models.Product{}, repositories.ErrNotFound
}

func (m *memProducts) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	_, err := m.FindByBarcode(ctx, barcode)
	return err == nil, nil
}

func (m *memProducts) Update(_ context.Context, p *models.Product) error {
	if _, ok := m.byID[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.byID[p.ID] = *p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memProducts) All(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProducts) ByStatus(_ context.Context, status models.ProductStatus) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) BySupplier(_ context.Context, supplierID primitive.ObjectID) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Available(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if p.Status == models.ProductApproved && p.Quantity > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Search(_ context.Context, query string) ([]models.Product, error) {
	q := strings.ToLower(query)
	var out []models.Product
	for _, p := range m.byID {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) ByPriceRange(_ context.Context, min, max float64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if p.Price >= min && p.Price <= max {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) ExpiringBetween(_ context.Context, start, end time.Time) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if !p.BestBefore.IsZero() && p.BestBefore.After(start) && p.BestBefore.Before(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Expired(_ context.Context, now time.Time) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if !p.BestBefore.IsZero() && p.BestBefore.Before(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) LowStock(_ context.Context, threshold int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if p.Status == models.ProductApproved && p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) ReserveStock(_ context.Context, id primitive.ObjectID, n int) (models.Product, error) {
	p, ok := m.byID[id]
	if !ok || p.Status != models.ProductApproved || p.Quantity < n {
		return models.Product{}, repositories.ErrInsufficientStock
	}
	p.Quantity -= n
	if p.Quantity == 0 {
		p.Status = models.ProductOutOfStock
	}
	m.byID[id] = p
	return p, nil
}

func (m *memProducts) RestoreStock(_ context.Context, id primitive.ObjectID, n int) (models.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	p.Quantity += n
	if p.Status == models.ProductOutOfStock && p.Quantity > 0 {
		p.Status = models.ProductApproved
	}
	m.byID[id] = p
	return p, nil
}

type memOrders struct {
	byID map[primitive.ObjectID]models.Order
}

func newMemOrders() *memOrders {
	return &memOrders{byID: map[primitive.ObjectID]models.Order{}}
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	m.byID[o.ID] = *o
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return models.Order{}, repositories.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) FindByNumber(_ context.Context, number string) (models.Order, error) {
	for _, o := range m.byID {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return models.Order{}, repositories.ErrNotFound
}

func (m *memOrders) All(_ context.Context) ([]models.Order, error) {
	out := make([]models.Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrders) ByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.byID {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.byID {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ByPaymentStatus(_ context.Context, status models.OrderPaymentStatus) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.byID {
		if o.PaymentStatus == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ByDateRange(_ context.Context, start, end time.Time) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.byID {
		if !o.OrderDate.Before(start) && !o.OrderDate.After(end) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ByCustomerAndDateRange(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) ([]models.Order, error) {
	inRange, _ := m.ByDateRange(ctx, start, end)
	var out []models.Order
	for _, o := range inRange {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) SetStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	o, ok := m.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status = status
	m.byID[id] = o
	return nil
}

func (m *memOrders) SetPaymentStatus(_ context.Context, id primitive.ObjectID, status models.OrderPaymentStatus) error {
	o, ok := m.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.PaymentStatus = status
	m.byID[id] = o
	return nil
}

func (m *memOrders) SetInvoiceID(_ context.Context, id, invoiceID primitive.ObjectID) error {
	o, ok := m.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.InvoiceID = invoiceID
	m.byID[id] = o
	return nil
}

type memPayments struct {
	byID map[primitive.ObjectID]models.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{byID: map[primitive.ObjectID]models.Payment{}}
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.byID[p.ID] = *p
	return nil
}

func (m *memPayments) FindByID(_ context.Context, id primitive.ObjectID) (models.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return models.Payment{}, repositories.ErrNotFound
	}
	return p, nil
}

func (m *memPayments) FindByTransactionID(_ context.Context, txID string) (models.Payment, error) {
	for _, p := range m.byID {
		if p.TransactionID == txID {
			return p, nil
		}
	}
	return models.Payment{}, repositories.ErrNotFound
}

func (m *memPayments) Update(_ context.Context, p *models.Payment) error {
	if _, ok := m.byID[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.byID[p.ID] = *p
	return nil
}

func (m *memPayments) All(_ context.Context) ([]models.Payment, error) {
	out := make([]models.Payment, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPayments) ByOrder(_ context.Context, orderID primitive.ObjectID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) ByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) ByStatus(_ context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) ByMethod(_ context.Context, method models.PaymentMethod) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.Method == method {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) ByDateRange(_ context.Context, start, end time.Time) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if !p.PaymentDate.Before(start) && !p.PaymentDate.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) Completed(_ context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.Status == models.PaymentCompleted && p.Amount > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) Refunds(_ context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.Amount < 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

type memInvoices struct {
	byID map[primitive.ObjectID]models.Invoice
}

func newMemInvoices() *memInvoices {
	return &memInvoices{byID: map[primitive.ObjectID]models.Invoice{}}
}

func (m *memInvoices) Create(_ context.Context, inv *models.Invoice) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	m.byID[inv.ID] = *inv
	return nil
}

func (m *memInvoices) FindByID(_ context.Context, id primitive.ObjectID) (models.Invoice, error) {
	inv, ok := m.byID[id]
	if !ok {
		return models.Invoice{}, repositories.ErrNotFound
	}
	return inv, nil
}

func (m *memInvoices) FindByNumber(_ context.Context, number string) (models.Invoice, error) {
	for _, inv := range m.byID {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return models.Invoice{}, repositories.ErrNotFound
}

func (m *memInvoices) FindByOrderID(_ context.Context, orderID primitive.ObjectID) (models.Invoice, error) {
	for _, inv := range m.byID {
		if inv.OrderID == orderID {
			return inv, nil
		}
	}
	return models.Invoice{}, repositories.ErrNotFound
}

func (m *memInvoices) Update(_ context.Context, inv *models.Invoice) error {
	if _, ok := m.byID[inv.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.byID[inv.ID] = *inv
	return nil
}

func (m *memInvoices) All(_ context.Context) ([]models.Invoice, error) {
	out := make([]models.Invoice, 0, len(m.byID))
	for _, inv := range m.byID {
		out = append(out, inv)
	}
	return out, nil
}

func (m *memInvoices) ByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range m.byID {
		if inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) ByStatus(_ context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range m.byID {
		if inv.Status == status {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) Overdue(_ context.Context, now time.Time) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range m.byID {
		if inv.Status == models.InvoiceSent && inv.DueDate.Before(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	due, _ := m.Overdue(ctx, now)
	for _, inv := range due {
		inv.Status = models.InvoiceOverdue
		m.byID[inv.ID] = inv
	}
	return int64(len(due)), nil
}

// memDocs is an in-memory document store for invoice renderings.
type memDocs struct {
	files map[string][]byte
}

func newMemDocs() *memDocs { return &memDocs{files: map[string][]byte{}} }

func (m *memDocs) Put(path string, content []byte) error {
	m.files[path] = content
	return nil
}

func (m *memDocs) Get(path string) ([]byte, error) {
	doc, ok := m.files[path]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return doc, nil
}

// stubGateway approves or declines every charge.
type stubGateway struct {
	approve bool
	calls   int
}

func (g *stubGateway) Charge(_ context.Context, _ models.Payment) (GatewayResult, error) {
	g.calls++
	if g.approve {
		return GatewayResult{Approved: true, Response: "Payment processed successfully"}, nil
	}
	return GatewayResult{Approved: false, Response: "Payment declined"}, nil
}
