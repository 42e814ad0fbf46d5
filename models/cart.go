package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartItem holds a product reference, never a price. Prices are resolved
// against the catalog when the cart is read or checked out.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart is the single mutable cart document of one user. It is only ever
// emptied, never deleted.
type Cart struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Items  []CartItem         `bson:"items" json:"items"`
}

// FindItem returns the index of the line item for productID, or -1.
func (c *Cart) FindItem(productID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
