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

func (s *Store) FindWishlistByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := s.wishlists.FindOne(ctx, bson.M{"userId": userID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Wishlist{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) SaveWishlist(ctx context.Context, w *models.Wishlist) error {
	_, err := s.wishlists.UpdateOne(ctx,
		bson.M{"userId": w.UserID},
		bson.M{"$set": bson.M{"productIds": w.ProductIDs}},
		options.Update().SetUpsert(true))
	return err
}
