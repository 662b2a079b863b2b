// Package indexes declares the secondary indexes each collection relies on.
// Uniqueness of usernames, emails, barcodes, order numbers, invoice numbers
// and transaction ids is enforced here, at the storage layer.
package indexes

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type spec struct {
	collection string
	models     []mongo.IndexModel
}

func unique(key string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: key, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
}

func plain(key string) mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{{Key: key, Value: 1}}}
}

var specs = []spec{
	{"users", []mongo.IndexModel{unique("username"), unique("email"), plain("role")}},
	{"products", []mongo.IndexModel{unique("barcode"), plain("status"), plain("supplierId")}},
	{"orders", []mongo.IndexModel{unique("orderNumber"), plain("customerId"), plain("status"), plain("paymentStatus"), plain("orderDate")}},
	{"invoices", []mongo.IndexModel{unique("invoiceNumber"), plain("orderId"), plain("customerId"), plain("status"), plain("dueDate")}},
	{"payments", []mongo.IndexModel{unique("transactionId"), plain("orderId"), plain("customerId"), plain("status"), plain("paymentDate")}},
}

// Ensure creates every declared index. CreateMany is idempotent, so Ensure is
// safe to run on every boot and from the `emart indexes` command.
func Ensure(ctx context.Context, db *mongo.Database) error {
	for _, s := range specs {
		if _, err := db.Collection(s.collection).Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("indexes: %s: %w", s.collection, err)
		}
	}
	return nil
}
