// Package repositories contains the MongoDB data access layer. One repository
// per collection; services depend on these through narrow interfaces so tests
// can substitute in-memory fakes.
package repositories

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// findOne decodes a single document, translating mongo.ErrNoDocuments into
// ErrNotFound so services never import the driver for error checks.
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M) (T, error) {
	var out T
	err := col.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	return out, err
}

// findAll decodes every document matching filter.
func findAll[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func exists(ctx context.Context, col *mongo.Collection, filter bson.M) (bool, error) {
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

// regexQuote escapes user input before it is embedded in a $regex filter.
func regexQuote(s string) string {
	return regexp.QuoteMeta(s)
}
