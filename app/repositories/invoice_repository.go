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

// InvoiceRepository handles the invoices collection.
type InvoiceRepository struct {
	col *mongo.Collection
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{col: database.Collection("invoices")}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	res, err := r.col.InsertOne(ctx, inv)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		inv.ID = id
	}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Invoice, error) {
	return findOne[models.Invoice](ctx, r.col, bson.M{"_id": id})
}

func (r *InvoiceRepository) FindByNumber(ctx context.Context, number string) (models.Invoice, error) {
	return findOne[models.Invoice](ctx, r.col, bson.M{"invoiceNumber": number})
}

func (r *InvoiceRepository) FindByOrderID(ctx context.Context, orderID primitive.ObjectID) (models.Invoice, error) {
	return findOne[models.Invoice](ctx, r.col, bson.M{"orderId": orderID})
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *models.Invoice) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": inv.ID}, inv)
	return err
}

func (r *InvoiceRepository) All(ctx context.Context) ([]models.Invoice, error) {
	return findAll[models.Invoice](ctx, r.col, bson.M{}, newestFirst("createdAt"))
}

func (r *InvoiceRepository) ByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Invoice, error) {
	return findAll[models.Invoice](ctx, r.col, bson.M{"customerId": customerID}, newestFirst("createdAt"))
}

func (r *InvoiceRepository) ByStatus(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	return findAll[models.Invoice](ctx, r.col, bson.M{"status": status}, newestFirst("createdAt"))
}

// Overdue lists SENT invoices whose due date has passed.
func (r *InvoiceRepository) Overdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	return findAll[models.Invoice](ctx, r.col, bson.M{
		"status":  models.InvoiceSent,
		"dueDate": bson.M{"$lt": now},
	})
}

// MarkOverdue flips every SENT invoice past its due date to OVERDUE and
// returns how many were updated. Used by the scheduled sweep.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"status": models.InvoiceSent, "dueDate": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.InvoiceOverdue, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
