package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/transport"
)

// starterMenu is the assortment a fresh installation starts with.
var starterMenu = []transport.CreateProductRequest{
	{
		Name:             "Кофе в зернах Эспрессо",
		Price:            decimal.NewFromInt(2300),
		ImageURL:         "img/arabica.jpg",
		ShortDescription: "Премиальный кофе в зернах",
		Category:         "coffee",
		Weight:           "1000",
		Calories:         decimal.NewFromInt(1),
		Proteins:         decimal.RequireFromString("0.2"),
		Fats:             decimal.RequireFromString("0.1"),
		Carbohydrates:    decimal.RequireFromString("0.3"),
	},
	{
		Name:             "Кофе в зёрнах Декаф Колумбия",
		Price:            decimal.NewFromInt(2300),
		ImageURL:         "img/espresso.jpg",
		ShortDescription: "Безкофеиновый кофе",
		Category:         "coffee",
		Weight:           "1000",
		Calories:         decimal.NewFromInt(1),
		Proteins:         decimal.RequireFromString("0.2"),
		Fats:             decimal.RequireFromString("0.1"),
		Carbohydrates:    decimal.RequireFromString("0.3"),
	},
}

// SeedProducts creates the starter menu through CreateProduct, so every
// seeded product is indexed and announced like any other. Repeated calls
// add the menu again.
func (s *CatalogService) SeedProducts(ctx context.Context) (int, error) {
	count := 0
	for _, req := range starterMenu {
		if _, err := s.CreateProduct(ctx, req); err != nil {
			return count, fmt.Errorf("seed %q: %w", req.Name, err)
		}
		count++
	}
	logging.FromContext(ctx).Info("products_seeded", "count", count)
	return count, nil
}
