package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/config"
	"github.com/shashiranjanraj/emart/pkg/auth"
)

func init() {
	Register("users", SeedUsers)
}

// SeedUsers inserts the bootstrap admin plus one demo supplier and customer.
// Existing usernames are left untouched, so reseeding is safe.
func SeedUsers(ctx context.Context, db *mongo.Database) error {
	users := []models.User{
		{
			Username:  "admin",
			Email:     config.Get("ADMIN_EMAIL", "admin@emart.local"),
			FirstName: "System",
			LastName:  "Administrator",
			Role:      models.RoleAdmin,
		},
		{
			Username:  "supplier1",
			Email:     "supplier1@emart.local",
			FirstName: "Sam",
			LastName:  "Supplier",
			Role:      models.RoleSupplier,
		},
		{
			Username:  "customer1",
			Email:     "customer1@emart.local",
			FirstName: "Casey",
			LastName:  "Customer",
			Role:      models.RoleCustomer,
		},
	}

	coll := db.Collection("users")
	for _, u := range users {
		n, err := coll.CountDocuments(ctx, bson.M{"username": u.Username})
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}

		hash, err := auth.HashPassword(config.Get("SEED_PASSWORD", "changeme123"))
		if err != nil {
			return err
		}
		u.Password = hash
		u.Enabled = true
		now := time.Now().UTC()
		u.CreatedAt = now
		u.UpdatedAt = now

		if _, err := coll.InsertOne(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
