package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/pkg/database"
)

// PaymentRepository handles the payments collection.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{col: database.Collection("payments")}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Payment, error) {
	return findOne[models.Payment](ctx, r.col, bson.M{"_id": id})
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, txID string) (models.Payment, error) {
	return findOne[models.Payment](ctx, r.col, bson.M{"transactionId": txID})
}

func (r *PaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	return err
}

func (r *PaymentRepository) All(ctx context.Context) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{}, newestFirst("paymentDate"))
}

func (r *PaymentRepository) ByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{"orderId": orderID}, newestFirst("paymentDate"))
}

func (r *PaymentRepository) ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{"customerId": customerID}, newestFirst("paymentDate"))
}

func (r *PaymentRepository) ByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{"status": status}, newestFirst("paymentDate"))
}

func (r *PaymentRepository) ByMethod(ctx context.Context, method models.PaymentMethod) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{"method": method}, newestFirst("paymentDate"))
}

func (r *PaymentRepository) ByDateRange(ctx context.Context, start, end time.Time) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{
		"paymentDate": bson.M{"$gte": start, "$lte": end},
	}, newestFirst("paymentDate"))
}

// Completed lists settled charges. Refunds are COMPLETED records too, but
// carry negative amounts, so they are excluded here.
func (r *PaymentRepository) Completed(ctx context.Context) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{
		"status": models.PaymentCompleted,
		"amount": bson.M{"$gt": 0},
	})
}

// Refunds lists refund records (negative amounts).
func (r *PaymentRepository) Refunds(ctx context.Context) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r.col, bson.M{"amount": bson.M{"$lt": 0}})
}
