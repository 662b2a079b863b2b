package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/pkg/database"
)

// UserRepository handles the users collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{col: database.Collection("users")}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"email": email})
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.col, bson.M{"username": username})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.col, bson.M{"email": email})
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	return err
}

func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.col, bson.M{})
}

func (r *UserRepository) ByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return findAll[models.User](ctx, r.col, bson.M{"role": role})
}

func (r *UserRepository) Enabled(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.col, bson.M{"enabled": true})
}

// Search matches the query case-insensitively against username, email and
// both name fields.
func (r *UserRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	re := primitive.Regex{Pattern: regexQuote(query), Options: "i"}
	return findAll[models.User](ctx, r.col, bson.M{"$or": []bson.M{
		{"username": re},
		{"email": re},
		{"firstName": re},
		{"lastName": re},
	}})
}

func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"role": role})
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
