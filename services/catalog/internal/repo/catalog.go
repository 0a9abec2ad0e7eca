package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/coffeemania/services/catalog/internal/models"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/transport"
)

var ErrNotFound = errors.New("product not found")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs keeps the order of ids and skips ids that no longer exist.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return page(r.DB.WithContext(ctx).Model(&models.Product{}), offset, limit)
}

func (r *GormRepo) GetByCategory(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("LOWER(category) = ?", strings.ToLower(category))
	return page(q, offset, limit)
}

// SearchProducts is the SQL fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	scope := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(short_description) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern, pattern)
	return page(scope, offset, limit)
}

func page(scope *gorm.DB, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := scope.Session(&gorm.Session{}).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prod, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if req.Name != nil {
			prod.Name = *req.Name
		}
		if req.Price != nil {
			prod.Price = *req.Price
		}
		if req.ImageURL != nil {
			prod.ImageURL = *req.ImageURL
		}
		if req.ImageURL2 != nil {
			prod.ImageURL2 = *req.ImageURL2
		}
		if req.ShortDescription != nil {
			prod.ShortDescription = *req.ShortDescription
		}
		if req.DetailedDescription != nil {
			prod.DetailedDescription = *req.DetailedDescription
		}
		if req.Category != nil {
			prod.Category = *req.Category
		}
		if req.Weight != nil {
			prod.Weight = *req.Weight
		}

		return tx.Save(&prod).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// DeleteProduct removes the product and every cart line that references it
// in one transaction.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (cartLines int64, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := tx.Exec("DELETE FROM cart_items WHERE product_id = ?", id)
		if lines.Error != nil {
			return lines.Error
		}
		cartLines = lines.RowsAffected

		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return cartLines, err
}
