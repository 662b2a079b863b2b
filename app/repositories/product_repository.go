package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/pkg/database"
)

// ErrInsufficientStock is returned by ReserveStock when the conditional
// decrement matched no document: the product is missing, not approved, or
// holds less stock than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository handles the products collection.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{col: database.Collection("products")}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return findOne[models.Product](ctx, r.col, bson.M{"_id": id})
}

func (r *ProductRepository) FindByBarcode(ctx context.Context, barcode string) (models.Product, error) {
	return findOne[models.Product](ctx, r.col, bson.M{"barcode": barcode})
}

func (r *ProductRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	return exists(ctx, r.col, bson.M{"barcode": barcode})
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{})
}

func (r *ProductRepository) ByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{"status": status})
}

func (r *ProductRepository) BySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{"supplierId": supplierID})
}

// Available lists approved products that still have stock.
func (r *ProductRepository) Available(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{
		"status":   models.ProductApproved,
		"quantity": bson.M{"$gt": 0},
	})
}

func (r *ProductRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	re := primitive.Regex{Pattern: regexQuote(query), Options: "i"}
	return findAll[models.Product](ctx, r.col, bson.M{"name": re})
}

func (r *ProductRepository) ByPriceRange(ctx context.Context, min, max float64) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{
		"status": models.ProductApproved,
		"price":  bson.M{"$gte": min, "$lte": max},
	})
}

func (r *ProductRepository) ExpiringBetween(ctx context.Context, start, end time.Time) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{
		"bestBefore": bson.M{"$gte": start, "$lte": end},
	})
}

func (r *ProductRepository) Expired(ctx context.Context, now time.Time) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{
		"bestBefore": bson.M{"$gt": time.Time{}, "$lt": now},
	})
}

func (r *ProductRepository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.col, bson.M{
		"status":   models.ProductApproved,
		"quantity": bson.M{"$lte": threshold},
	}, options.Find().SetSort(bson.D{{Key: "quantity", Value: 1}}))
}

// ReserveStock atomically decrements quantity by n. The filter guards the
// decrement so concurrent orders cannot race stock below zero: the product
// must be APPROVED and hold at least n units. A product that reaches zero is
// flipped to OUT_OF_STOCK.
func (r *ProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, n int) (models.Product, error) {
	after := options.After
	var p models.Product
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{
			"_id":      id,
			"status":   models.ProductApproved,
			"quantity": bson.M{"$gte": n},
		},
		bson.M{
			"$inc": bson.M{"quantity": -n},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, ErrInsufficientStock
	}
	if err != nil {
		return p, err
	}

	if p.Quantity == 0 && p.Status == models.ProductApproved {
		p.Status = models.ProductOutOfStock
		_, err = r.col.UpdateOne(ctx,
			bson.M{"_id": id, "quantity": 0, "status": models.ProductApproved},
			bson.M{"$set": bson.M{"status": models.ProductOutOfStock}},
		)
	}
	return p, err
}

// RestoreStock atomically returns n units reserved by an order. A product
// that was flipped to OUT_OF_STOCK becomes sellable again once stock is back.
func (r *ProductRepository) RestoreStock(ctx context.Context, id primitive.ObjectID, n int) (models.Product, error) {
	after := options.After
	var p models.Product
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{
			"_id":    id,
			"status": bson.M{"$in": []models.ProductStatus{models.ProductApproved, models.ProductOutOfStock}},
		},
		bson.M{
			"$inc": bson.M{"quantity": n},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}

	if p.Status == models.ProductOutOfStock && p.Quantity > 0 {
		p.Status = models.ProductApproved
		_, err = r.col.UpdateOne(ctx,
			bson.M{"_id": id, "status": models.ProductOutOfStock, "quantity": bson.M{"$gt": 0}},
			bson.M{"$set": bson.M{"status": models.ProductApproved}},
		)
	}
	return p, err
}
