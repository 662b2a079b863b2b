package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/emart/app/models"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts inserts a small approved catalog owned by the demo supplier.
// Requires SeedUsers to have run first.
func SeedProducts(ctx context.Context, db *mongo.Database) error {
	var supplier models.User
	err := db.Collection("users").
		FindOne(ctx, bson.M{"username": "supplier1"}).
		Decode(&supplier)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	samples := []models.Product{
		{
			Barcode:     "MIL10000001001",
			Name:        "Whole Milk 1L",
			Description: "Fresh whole milk",
			Price:       2.49,
			Quantity:    120,
			BestBefore:  now.AddDate(0, 0, 14),
		},
		{
			Barcode:     "BRE10000001002",
			Name:        "Bread Loaf",
			Description: "Sliced white bread",
			Price:       1.99,
			Quantity:    60,
			BestBefore:  now.AddDate(0, 0, 5),
		},
		{
			Barcode:     "COF10000001003",
			Name:        "Coffee Beans 500g",
			Description: "Medium roast arabica",
			Price:       9.99,
			Quantity:    40,
			BestBefore:  now.AddDate(1, 0, 0),
		},
	}

	coll := db.Collection("products")
	for _, p := range samples {
		n, err := coll.CountDocuments(ctx, bson.M{"barcode": p.Barcode})
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}

		p.SupplierID = supplier.ID
		p.SupplierName = supplier.FirstName + " " + supplier.LastName
		p.SupplierEmail = supplier.Email
		p.Status = models.ProductApproved
		p.ApprovedAt = now
		p.CreatedAt = now
		p.UpdatedAt = now

		if _, err := coll.InsertOne(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
