package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/coffeemania/pkg/events"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/models"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/transport"
)

var (
	ErrValidation      = errors.New("validation")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
	// ErrUnknownUser means the token names a user that no longer exists.
	ErrUnknownUser = errors.New("unknown user")
)

type Repository interface {
	GetCart(ctx context.Context, userID uint) ([]models.CartLine, int, error)
	GetItem(ctx context.Context, userID, productID uint) (*models.CartLine, error)
	AddToCart(ctx context.Context, userID, productID uint, qty int) (*models.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, productID uint, qty int) (*models.CartLine, bool, error)
	RemoveFromCart(ctx context.Context, userID, productID uint) (bool, error)
	ClearCart(ctx context.Context, userID uint) (bool, error)
}

type CartService struct {
	Repo   Repository
	Events events.Publisher
}

func New(r Repository, pub events.Publisher) *CartService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &CartService{Repo: r, Events: pub}
}

func (s *CartService) GetCart(ctx context.Context, userID uint) (*transport.CartResponse, error) {
	lines, dangling, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if dangling > 0 {
		logging.FromContext(ctx).Warn("cart_dangling_lines", "user_id", userID, "count", dangling)
	}

	resp := &transport.CartResponse{
		Items:       make([]transport.CartItemResponse, 0, len(lines)),
		TotalAmount: decimal.Zero,
	}
	for _, l := range lines {
		item := toItemResponse(l)
		resp.Items = append(resp.Items, item)
		resp.TotalAmount = resp.TotalAmount.Add(item.TotalPrice)
		resp.TotalItems += item.Quantity
	}
	return resp, nil
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, qty int) (*transport.CartItemResponse, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be greater than zero: %w", ErrValidation)
	}

	var line *models.CartLine
	err := withRetry(ctx, func() error {
		var err error
		line, err = s.Repo.AddToCart(ctx, userID, productID, qty)
		return err
	})
	if errors.Is(err, repo.ErrProductNotFound) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUnknownUser)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewCartEvent(events.CartItemAdded, userID, productID, qty))
	resp := toItemResponse(*line)
	return &resp, nil
}

// UpdateCartItem sets the quantity of an existing line. A quantity <= 0 removes
// the line and reports removed with a nil item.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, productID uint, qty int) (*transport.CartItemResponse, bool, error) {
	if productID == 0 {
		return nil, false, fmt.Errorf("product id is required: %w", ErrValidation)
	}

	var (
		line    *models.CartLine
		removed bool
	)
	err := withRetry(ctx, func() error {
		var err error
		line, removed, err = s.Repo.UpdateQuantity(ctx, userID, productID, qty)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, fmt.Errorf("product %d: %w", productID, ErrItemNotFound)
	}
	if err != nil {
		return nil, false, err
	}

	if removed {
		s.publish(ctx, events.NewCartEvent(events.CartItemRemoved, userID, productID, 0))
		return nil, true, nil
	}
	s.publish(ctx, events.NewCartEvent(events.CartItemUpdated, userID, productID, qty))
	resp := toItemResponse(*line)
	return &resp, false, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) (bool, error) {
	var ok bool
	err := withRetry(ctx, func() error {
		var err error
		ok, err = s.Repo.RemoveFromCart(ctx, userID, productID)
		return err
	})
	if err != nil {
		return false, err
	}
	if ok {
		s.publish(ctx, events.NewCartEvent(events.CartItemRemoved, userID, productID, 0))
	}
	return ok, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uint) (bool, error) {
	var ok bool
	err := withRetry(ctx, func() error {
		var err error
		ok, err = s.Repo.ClearCart(ctx, userID)
		return err
	})
	if err != nil {
		return false, err
	}
	if ok {
		s.publish(ctx, events.NewCartEvent(events.CartCleared, userID, 0, 0))
	}
	return ok, nil
}

// GetCartItem returns nil without an error when the line does not exist.
func (s *CartService) GetCartItem(ctx context.Context, userID, productID uint) (*transport.CartItemResponse, error) {
	line, err := s.Repo.GetItem(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(*line)
	return &resp, nil
}

func (s *CartService) publish(ctx context.Context, ev events.CartEvent) {
	if err := s.Events.Publish(ctx, events.TopicCart, ev.Key(), ev); err != nil {
		logging.FromContext(ctx).Warn("cart_event_publish_failed",
			"type", ev.Type, "user_id", ev.UserID, "product_id", ev.ProductID, "error", err)
	}
}

func toItemResponse(l models.CartLine) transport.CartItemResponse {
	return transport.CartItemResponse{
		ID:              l.ID,
		ProductID:       l.ProductID,
		ProductName:     l.ProductName,
		ProductPrice:    l.ProductPrice,
		ProductImageURL: l.ProductImageURL,
		Quantity:        l.Quantity,
		TotalPrice:      l.Total(),
		CreatedAt:       l.CreatedAt,
	}
}
