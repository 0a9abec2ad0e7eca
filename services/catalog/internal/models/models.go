package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name                string          `gorm:"not null"                              json:"name"`
	Price               decimal.Decimal `gorm:"type:numeric(18,2);not null"           json:"price"`
	ImageURL            string          `gorm:"column:image_url"                      json:"imageUrl"`
	ImageURL2           string          `gorm:"column:image_url2"                     json:"imageUrl2"`
	ShortDescription    string          `json:"shortDescription"`
	DetailedDescription string          `json:"detailedDescription"`
	Category            string          `gorm:"index:idx_products_category"           json:"category"`
	Weight              string          `json:"weight"`
	Calories            decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"calories"`
	Proteins            decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"proteins"`
	Fats                decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"fats"`
	Carbohydrates       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"carbohydrates"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}
