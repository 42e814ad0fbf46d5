package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a user insert hits the unique
	// email index.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store wraps the mongo database and exposes one accessor per collection.
type Store struct {
	users     *mongo.Collection
	products  *mongo.Collection
	carts     *mongo.Collection
	orders    *mongo.Collection
	wishlists *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		users:     db.Collection("users"),
		products:  db.Collection("products"),
		carts:     db.Collection("carts"),
		orders:    db.Collection("orders"),
		wishlists: db.Collection("wishlists"),
	}
}

// EnsureIndexes creates the indexes the store relies on. The unique email
// index is what enforces one account per email.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
