package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/pkg/database"
)

// OrderRepository handles the orders collection.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{col: database.Collection("orders")}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = id
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return findOne[models.Order](ctx, r.col, bson.M{"_id": id})
}

func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (models.Order, error) {
	return findOne[models.Order](ctx, r.col, bson.M{"orderNumber": number})
}

func (r *OrderRepository) Update(ctx context.Context, o *models.Order) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	return err
}

func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.col, bson.M{}, newestFirst("orderDate"))
}

func (r *OrderRepository) ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.col, bson.M{"customerId": customerID}, newestFirst("orderDate"))
}

func (r *OrderRepository) ByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.col, bson.M{"status": status}, newestFirst("orderDate"))
}

func (r *OrderRepository) ByPaymentStatus(ctx context.Context, status models.OrderPaymentStatus) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.col, bson.M{"paymentStatus": status}, newestFirst("orderDate"))
}

func (r *OrderRepository) ByDateRange(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.col, bson.M{
		"orderDate": bson.M{"$gte": start, "$lte": end},
	}, newestFirst("orderDate"))
}

func (r *OrderRepository) ByCustomerAndDateRange(ctx context.Context, customerID primitive.ObjectID, start, end time.Time) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.col, bson.M{
		"customerId": customerID,
		"orderDate":  bson.M{"$gte": start, "$lte": end},
	}, newestFirst("orderDate"))
}

// SetStatus updates only the fulfilment status field.
func (r *OrderRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	return r.setField(ctx, id, "status", status)
}

// SetPaymentStatus updates only the payment status field.
func (r *OrderRepository) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status models.OrderPaymentStatus) error {
	return r.setField(ctx, id, "paymentStatus", status)
}

// SetInvoiceID links the eagerly-generated invoice back to the order.
func (r *OrderRepository) SetInvoiceID(ctx context.Context, id, invoiceID primitive.ObjectID) error {
	return r.setField(ctx, id, "invoiceId", invoiceID)
}

func (r *OrderRepository) setField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{field: value, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func newestFirst(key string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: key, Value: -1}})
}
