package repo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/coffeemania/services/cart/internal/models"
)

const lineColumns = `ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
	p.id AS product_ref, p.name AS product_name, p.price AS product_price, p.image_url AS product_image_url`

type lineRow struct {
	ID              uint
	UserID          uint
	ProductID       uint
	Quantity        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProductRef      *uint
	ProductName     *string
	ProductPrice    decimal.NullDecimal
	ProductImageURL *string
}

func (r lineRow) line() models.CartLine {
	l := models.CartLine{
		ID:           r.ID,
		UserID:       r.UserID,
		ProductID:    r.ProductID,
		Quantity:     r.Quantity,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ProductPrice: r.ProductPrice.Decimal,
	}
	if r.ProductName != nil {
		l.ProductName = *r.ProductName
	}
	if r.ProductImageURL != nil {
		l.ProductImageURL = *r.ProductImageURL
	}
	return l
}

func linesQuery(tx *gorm.DB) *gorm.DB {
	return tx.Table("cart_items AS ci").
		Select(lineColumns).
		Joins("LEFT JOIN products p ON p.id = ci.product_id")
}

// GetCart returns the user's lines priced from the current product rows.
// Lines whose product row is gone are left out and counted in dangling.
func (r *GormRepo) GetCart(ctx context.Context, userID uint) (lines []models.CartLine, dangling int, err error) {
	var rows []lineRow
	err = linesQuery(r.DB.WithContext(ctx)).
		Where("ci.user_id = ?", userID).
		Order("ci.created_at, ci.id").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, classify("get cart", err)
	}

	lines = make([]models.CartLine, 0, len(rows))
	for _, row := range rows {
		if row.ProductRef == nil {
			dangling++
			continue
		}
		lines = append(lines, row.line())
	}
	return lines, dangling, nil
}

func (r *GormRepo) GetItem(ctx context.Context, userID, productID uint) (*models.CartLine, error) {
	l, err := getLine(r.DB.WithContext(ctx), userID, productID)
	if err != nil {
		return nil, classify("get item", err)
	}
	return l, nil
}

func getLine(tx *gorm.DB, userID, productID uint) (*models.CartLine, error) {
	var rows []lineRow
	err := linesQuery(tx).
		Where("ci.user_id = ? AND ci.product_id = ?", userID, productID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].ProductRef == nil {
		return nil, ErrNotFound
	}
	l := rows[0].line()
	return &l, nil
}

func (r *GormRepo) ProductExists(ctx context.Context, productID uint) (bool, error) {
	return productExists(r.DB.WithContext(ctx), productID)
}

func productExists(tx *gorm.DB, productID uint) (bool, error) {
	var n int64
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return false, classify("product exists", err)
	}
	return n > 0, nil
}

func userExists(tx *gorm.DB, userID uint) (bool, error) {
	var n int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return false, classify("user exists", err)
	}
	return n > 0, nil
}

// AddToCart increments the (user, product) line by qty, creating it if absent.
// The upsert is a single statement so concurrent adds never duplicate a line
// or lose an increment.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uint, qty int) (*models.CartLine, error) {
	var out *models.CartLine
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := userExists(tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
		ok, err = productExists(tx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProductNotFound
		}

		item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Omit(clause.Associations).Create(&item).Error
		if err != nil {
			return err
		}

		out, err = getLine(tx, userID, productID)
		return err
	})
	if err != nil {
		return nil, classify("add to cart", err)
	}
	return out, nil
}

// UpdateQuantity overwrites the line's quantity. qty <= 0 deletes the line and reports removed.
func (r *GormRepo) UpdateQuantity(ctx context.Context, userID, productID uint, qty int) (*models.CartLine, bool, error) {
	var (
		out     *models.CartLine
		removed bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := tx.Where("user_id = ? AND product_id = ?", userID, productID)

		if qty <= 0 {
			res := scope.Delete(&models.CartItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
			removed = true
			return nil
		}

		res := scope.Model(&models.CartItem{}).Updates(map[string]any{
			"quantity":   qty,
			"updated_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		var err error
		out, err = getLine(tx, userID, productID)
		return err
	})
	if err != nil {
		return nil, false, classify("update quantity", err)
	}
	return out, removed, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, classify("remove from cart", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (bool, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return false, classify("clear cart", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IsNotFound reports whether err means the line or product does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrProductNotFound)
}
