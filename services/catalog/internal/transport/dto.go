package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/coffeemania/services/catalog/internal/models"
)

type CreateProductRequest struct {
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	ImageURL            string          `json:"imageUrl"`
	ImageURL2           string          `json:"imageUrl2"`
	ShortDescription    string          `json:"shortDescription"`
	DetailedDescription string          `json:"detailedDescription"`
	Category            string          `json:"category"`
	Weight              string          `json:"weight"`
	Calories            decimal.Decimal `json:"calories"`
	Proteins            decimal.Decimal `json:"proteins"`
	Fats                decimal.Decimal `json:"fats"`
	Carbohydrates       decimal.Decimal `json:"carbohydrates"`
}

// PatchProductRequest changes only the fields that are present.
type PatchProductRequest struct {
	Name                *string          `json:"name"`
	Price               *decimal.Decimal `json:"price"`
	ImageURL            *string          `json:"imageUrl"`
	ImageURL2           *string          `json:"imageUrl2"`
	ShortDescription    *string          `json:"shortDescription"`
	DetailedDescription *string          `json:"detailedDescription"`
	Category            *string          `json:"category"`
	Weight              *string          `json:"weight"`
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductPage struct {
	Data []models.Product `json:"data"`
	Meta Meta             `json:"meta"`
}

func NewMeta(page, offset, limit int, total int64) Meta {
	if page < 1 {
		page = 1
	}
	return Meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SeedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
