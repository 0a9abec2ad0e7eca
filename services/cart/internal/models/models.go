package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one (user, product) line. A line never holds a non-positive quantity.
type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                     json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_product,priority:1" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_user_product,priority:2" json:"productId"`
	Quantity  int       `gorm:"not null;check:chk_cart_items_quantity,quantity > 0" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"    json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Product is the read side of the catalog row the cart joins against.
type Product struct {
	ID       uint            `gorm:"primaryKey"`
	Name     string          `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	ImageURL string          `gorm:"column:image_url"`
}

func (Product) TableName() string {
	return "products"
}

// User is the slice of the auth-owned users row the cart checks ownership against.
type User struct {
	ID uint `gorm:"primaryKey"`
}

func (User) TableName() string {
	return "users"
}

// CartLine is a cart item joined with the current product row.
type CartLine struct {
	ID              uint
	UserID          uint
	ProductID       uint
	Quantity        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProductName     string
	ProductPrice    decimal.Decimal
	ProductImageURL string
}

// Total is price times quantity at the current price.
func (l CartLine) Total() decimal.Decimal {
	return l.ProductPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
