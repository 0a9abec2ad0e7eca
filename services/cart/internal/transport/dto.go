package transport

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItemResponse struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductPrice    decimal.Decimal `json:"productPrice"`
	ProductImageURL string          `json:"productImageUrl"`
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	TotalItems  int                `json:"totalItems"`
}

// AddToCartRequest.Quantity is optional and defaults to 1.
type AddToCartRequest struct {
	ProductID uint `json:"productId"`
	Quantity  *int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
