package services

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/app/repositories"
	"github.com/shashiranjanraj/emart/pkg/collection"
	"github.com/shashiranjanraj/emart/pkg/logger"
)

type paymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Payment, error)
	FindByTransactionID(ctx context.Context, txID string) (models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	All(ctx context.Context) ([]models.Payment, error)
	ByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Payment, error)
	ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Payment, error)
	ByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	ByMethod(ctx context.Context, method models.PaymentMethod) ([]models.Payment, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]models.Payment, error)
	Completed(ctx context.Context) ([]models.Payment, error)
	Refunds(ctx context.Context) ([]models.Payment, error)
}

type orderFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status models.OrderPaymentStatus) error
}

type invoiceSettler interface {
	MarkPaidForOrder(ctx context.Context, orderID primitive.ObjectID)
}

// PaymentService settles orders through a payment gateway. Every attempt is a
// persisted record; refunds are new records with negated amounts so the
// payment history is append-only.
type PaymentService struct {
	payments paymentStore
	orders   orderFinder
	invoices invoiceSettler
	gateway  Gateway
	notifier Notifier
}

func NewPaymentService(payments paymentStore, orders orderFinder, invoices invoiceSettler, gateway Gateway, notifier Notifier) *PaymentService {
	return &PaymentService{payments: payments, orders: orders, invoices: invoices, gateway: gateway, notifier: notifier}
}

// ProcessInput is the payload accepted when charging an order.
type ProcessInput struct {
	OrderID string  `json:"orderId" validate:"required"`
	Method  string  `json:"method" validate:"required"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

// Process charges an order. The payment is recorded PENDING, run through the
// gateway, and finalised as COMPLETED or FAILED. A completed charge marks the
// order PAID and settles its invoice.
func (s *PaymentService) Process(ctx context.Context, in ProcessInput) (models.Payment, error) {
	method, ok := models.ParsePaymentMethod(in.Method)
	if !ok {
		return models.Payment{}, errBadRequest("invalid payment method: %s", in.Method)
	}
	if in.Amount <= 0 {
		return models.Payment{}, errBadRequest("amount must be positive")
	}

	orderID, err := primitive.ObjectIDFromHex(in.OrderID)
	if err != nil {
		return models.Payment{}, errBadRequest("invalid order id: %s", in.OrderID)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Payment{}, errNotFound("order not found")
	}
	if err != nil {
		return models.Payment{}, err
	}

	now := time.Now().UTC()
	payment := models.Payment{
		TransactionID:        newTransactionID(),
		OrderID:              order.ID,
		OrderNumber:          order.OrderNumber,
		CustomerID:           order.CustomerID,
		CustomerName:         order.CustomerName,
		CustomerEmail:        order.CustomerEmail,
		Amount:               round2(in.Amount),
		Method:               method,
		Status:               models.PaymentPending,
		GatewayTransactionID: newGatewayTransactionID(),
		PaymentDate:          now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.payments.Create(ctx, &payment); err != nil {
		return models.Payment{}, err
	}

	result, err := s.gateway.Charge(ctx, payment)
	if err != nil {
		result = GatewayResult{Approved: false, Response: err.Error()}
	}

	payment.GatewayResponse = result.Response
	payment.UpdatedAt = time.Now().UTC()

	if result.Approved {
		payment.Status = models.PaymentCompleted
		if err := s.payments.Update(ctx, &payment); err != nil {
			return models.Payment{}, err
		}

		if err := s.orders.SetPaymentStatus(ctx, order.ID, models.OrderPaymentPaid); err != nil {
			logger.Error("payment: marking order paid failed",
				"orderNumber", order.OrderNumber, "error", err)
		}
		s.invoices.MarkPaidForOrder(ctx, order.ID)

		logger.Info("payment: processed", "transactionId", payment.TransactionID,
			"orderNumber", order.OrderNumber, "amount", payment.Amount)
		s.notifier.PaymentCompleted(payment, order)
	} else {
		payment.Status = models.PaymentFailed
		payment.FailureReason = "Payment gateway processing failed"
		if err := s.payments.Update(ctx, &payment); err != nil {
			return models.Payment{}, err
		}
		logger.Warn("payment: declined", "transactionId", payment.TransactionID,
			"orderNumber", order.OrderNumber, "response", result.Response)
	}

	return payment, nil
}

// Refund reverses up to the full amount of a completed payment. The original
// record moves to REFUNDED and a new COMPLETED record with the negated amount
// is appended.
func (s *PaymentService) Refund(ctx context.Context, paymentID primitive.ObjectID, amount float64, reason string) (models.Payment, error) {
	original, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return models.Payment{}, err
	}
	if original.Status != models.PaymentCompleted {
		return models.Payment{}, errConflict("cannot refund a payment that is not completed")
	}
	if amount <= 0 {
		return models.Payment{}, errBadRequest("refund amount must be positive")
	}
	if amount > original.Amount {
		return models.Payment{}, errBadRequest("refund amount cannot exceed original payment amount")
	}

	now := time.Now().UTC()
	refund := models.Payment{
		TransactionID:        newTransactionID(),
		OrderID:              original.OrderID,
		OrderNumber:          original.OrderNumber,
		CustomerID:           original.CustomerID,
		CustomerName:         original.CustomerName,
		CustomerEmail:        original.CustomerEmail,
		Amount:               -round2(amount),
		Method:               original.Method,
		Status:               models.PaymentCompleted,
		GatewayTransactionID: newGatewayTransactionID(),
		GatewayResponse:      "Refund processed",
		RefundReason:         reason,
		RefundDate:           now,
		PaymentDate:          now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	original.Status = models.PaymentRefunded
	original.RefundReason = reason
	original.RefundDate = now
	original.UpdatedAt = now
	if err := s.payments.Update(ctx, &original); err != nil {
		return models.Payment{}, err
	}

	if err := s.payments.Create(ctx, &refund); err != nil {
		return models.Payment{}, err
	}

	logger.Info("payment: refunded", "originalTransactionId", original.TransactionID,
		"refundTransactionId", refund.TransactionID, "amount", amount)
	return refund, nil
}

// SetStatus force-updates a payment record (admin only, enforced at the route
// layer).
func (s *PaymentService) SetStatus(ctx context.Context, paymentID primitive.ObjectID, status string) (models.Payment, error) {
	st, ok := models.ParsePaymentStatus(status)
	if !ok {
		return models.Payment{}, errBadRequest("invalid payment status: %s", status)
	}

	payment, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return models.Payment{}, err
	}
	payment.Status = st
	payment.UpdatedAt = time.Now().UTC()
	if err := s.payments.Update(ctx, &payment); err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id primitive.ObjectID) (models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Payment{}, errNotFound("payment not found")
	}
	return payment, err
}

func (s *PaymentService) GetByTransactionID(ctx context.Context, txID string) (models.Payment, error) {
	payment, err := s.payments.FindByTransactionID(ctx, txID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Payment{}, errNotFound("payment not found")
	}
	return payment, err
}

func (s *PaymentService) All(ctx context.Context) ([]models.Payment, error) {
	return s.payments.All(ctx)
}

func (s *PaymentService) ByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Payment, error) {
	return s.payments.ByOrder(ctx, orderID)
}

func (s *PaymentService) ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Payment, error) {
	return s.payments.ByCustomer(ctx, customerID)
}

func (s *PaymentService) ByStatus(ctx context.Context, status string) ([]models.Payment, error) {
	st, ok := models.ParsePaymentStatus(status)
	if !ok {
		return nil, errBadRequest("invalid payment status: %s", status)
	}
	return s.payments.ByStatus(ctx, st)
}

func (s *PaymentService) ByMethod(ctx context.Context, method string) ([]models.Payment, error) {
	m, ok := models.ParsePaymentMethod(method)
	if !ok {
		return nil, errBadRequest("invalid payment method: %s", method)
	}
	return s.payments.ByMethod(ctx, m)
}

func (s *PaymentService) ByDateRange(ctx context.Context, start, end time.Time) ([]models.Payment, error) {
	return s.payments.ByDateRange(ctx, start, end)
}

// TotalPayments sums completed positive charges.
func (s *PaymentService) TotalPayments(ctx context.Context) (float64, error) {
	completed, err := s.payments.Completed(ctx)
	if err != nil {
		return 0, err
	}
	return round2(collection.Sum(completed, func(p models.Payment) float64 { return p.Amount })), nil
}

// TotalRefunds sums refund records, reported as a positive figure.
func (s *PaymentService) TotalRefunds(ctx context.Context) (float64, error) {
	refunds, err := s.payments.Refunds(ctx)
	if err != nil {
		return 0, err
	}
	return round2(math.Abs(collection.Sum(refunds, func(p models.Payment) float64 { return p.Amount }))), nil
}

// TotalByDateRange sums completed charge amounts inside the window.
func (s *PaymentService) TotalByDateRange(ctx context.Context, start, end time.Time) (float64, error) {
	payments, err := s.payments.ByDateRange(ctx, start, end)
	if err != nil {
		return 0, err
	}
	completed := collection.Filter(payments, func(p models.Payment) bool {
		return p.Status == models.PaymentCompleted
	})
	return round2(collection.Sum(completed, func(p models.Payment) float64 { return p.Amount })), nil
}

// MethodsSummary breaks completed charge volume down by payment method.
func (s *PaymentService) MethodsSummary(ctx context.Context) (map[string]float64, error) {
	completed, err := s.payments.Completed(ctx)
	if err != nil {
		return nil, err
	}

	out := map[string]float64{}
	for method, group := range collection.GroupBy(completed, func(p models.Payment) string {
		return string(p.Method)
	}) {
		out[method] = round2(collection.Sum(group, func(p models.Payment) float64 { return p.Amount }))
	}
	return out, nil
}
