package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freshcart-backend/models"
)

func (s *Store) FindCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart upserts the cart document keyed by its owner. This is the
// lookup-or-create half of the cart lifecycle: the first save creates the
// document, every later save replaces its items.
func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	_, err := s.carts.UpdateOne(ctx,
		bson.M{"userId": cart.UserID},
		bson.M{"$set": bson.M{"items": cart.Items}},
		options.Update().SetUpsert(true))
	return err
}

// ClearCart empties the cart's items. The document itself is kept.
func (s *Store) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.carts.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}}})
	return err
}
