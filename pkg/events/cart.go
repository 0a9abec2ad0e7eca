package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	CartItemAdded   = "cart_item_added"
	CartItemUpdated = "cart_item_updated"
	CartItemRemoved = "cart_item_removed"
	CartCleared     = "cart_cleared"

	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"

	UserRegistered = "user_registered"
)

type CartEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"userID"`
	ProductID  uint      `json:"productID,omitempty"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewCartEvent(typ string, userID, productID uint, qty int) CartEvent {
	return CartEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		ProductID:  productID,
		Quantity:   qty,
		OccurredAt: time.Now().UTC(),
	}
}

// Key partitions cart events by user.
func (e CartEvent) Key() string { return strconv.FormatUint(uint64(e.UserID), 10) }

type ProductEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProductID  uint      `json:"productID"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewProductEvent(typ string, productID uint) ProductEvent {
	return ProductEvent{ID: uuid.NewString(), Type: typ, ProductID: productID, OccurredAt: time.Now().UTC()}
}

type UserEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"userID"`
	Login      string    `json:"login"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewUserEvent(typ string, userID uint, login string) UserEvent {
	return UserEvent{ID: uuid.NewString(), Type: typ, UserID: userID, Login: login, OccurredAt: time.Now().UTC()}
}

func (e UserEvent) Key() string { return strconv.FormatUint(uint64(e.UserID), 10) }
