// Package cart implements the cart aggregate and the cart-to-order
// checkout transition. All mutations for one user are serialized behind a
// per-user lock, so concurrent adds and a concurrent checkout cannot race
// the cart's read-modify-write cycle.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"freshcart-backend/models"
	"freshcart-backend/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrCartEmpty       = errors.New("cart is empty")
)

// ProductFinder resolves product references against the catalog.
type ProductFinder interface {
	FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// CartStore persists the per-user cart document.
type CartStore interface {
	FindCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

// OrderStore persists order snapshots.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
}

// LineView is a cart line resolved against the current catalog.
type LineView struct {
	ProductID primitive.ObjectID `json:"productId"`
	Name      string             `json:"name"`
	Price     float64            `json:"price"`
	Quantity  int                `json:"quantity"`
	Image     string             `json:"image"`
}

type Service struct {
	products ProductFinder
	carts    CartStore
	orders   OrderStore

	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func NewService(products ProductFinder, carts CartStore, orders OrderStore) *Service {
	return &Service{
		products: products,
		carts:    carts,
		orders:   orders,
		locks:    make(map[primitive.ObjectID]*sync.Mutex),
	}
}

// userLock returns the mutex serializing cart mutations for one user.
func (s *Service) userLock(userID primitive.ObjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// ensureCart loads the user's cart, or hands back a fresh in-memory one.
// Nothing is persisted here: the first SaveCart creates the document.
func (s *Service) ensureCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindCartByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the cart's lines resolved to product name, price and
// image. It is read-only: a user without a cart gets an empty view and no
// cart document is created. Lines whose product has since been removed
// from the catalog are omitted from the view; checkout is where a missing
// product becomes an error.
func (s *Service) GetCart(ctx context.Context, userID primitive.ObjectID) ([]LineView, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := make([]LineView, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.products.FindProductByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view = append(view, LineView{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Image:     product.Image,
		})
	}
	return view, nil
}

// AddItem merges quantity into the user's cart. An existing line for the
// product is incremented, otherwise a new line is appended, so a cart
// never holds two lines for one product. The product must exist; quantity
// must be positive. The cart document is written once, after the merge, so
// a persistence failure leaves no partial effect.
func (s *Service) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.FindItem(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *Service) UpdateItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.FindItem(productID)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	if quantity > 0 {
		cart.Items[i].Quantity = quantity
	} else {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	}
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops the line for productID if present.
func (s *Service) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.FindItem(productID); i >= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		if err := s.carts.SaveCart(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID primitive.ObjectID) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.carts.ClearCart(ctx, userID)
}

// PlaceOrder turns the user's cart into an order snapshot. Every line's
// price is resolved against the catalog at this moment; a product missing
// from the catalog fails the whole checkout rather than being skipped.
// The order is persisted before the cart is cleared, so a crash between
// the two writes leaves the cart intact instead of losing the order.
// Stock is neither checked nor decremented here.
func (s *Service) PlaceOrder(ctx context.Context, userID primitive.ObjectID, address, paymentMethod string) (*models.Order, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	total := 0.0
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.products.FindProductByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
		total += product.Price * float64(item.Quantity)
		items = append(items, models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		TotalPrice:    total,
		Address:       address,
		PaymentMethod: paymentMethod,
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := s.orders.InsertOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return nil, err
	}
	return order, nil
}
