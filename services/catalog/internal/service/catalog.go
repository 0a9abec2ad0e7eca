package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/coffeemania/pkg/events"
	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/models"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/search"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/transport"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

type Repository interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error)
	GetByCategory(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error)
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) (int64, error)
}

type CatalogService struct {
	Repo Repository
	// Index is optional; without it search runs against the database.
	Index  search.Index
	Events events.Publisher
}

func New(r Repository, idx search.Index, pub events.Publisher) *CatalogService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &CatalogService{Repo: r, Index: idx, Events: pub}
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, offset, limit)
}

func (s *CatalogService) GetByCategory(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, nil, fmt.Errorf("category is required: %w", ErrValidation)
	}
	return s.Repo.GetByCategory(ctx, category, offset, limit)
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []models.Product{}, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_unavailable", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}

	prod := &models.Product{
		Name:                strings.TrimSpace(req.Name),
		Price:               req.Price,
		ImageURL:            req.ImageURL,
		ImageURL2:           req.ImageURL2,
		ShortDescription:    req.ShortDescription,
		DetailedDescription: req.DetailedDescription,
		Category:            req.Category,
		Weight:              req.Weight,
		Calories:            req.Calories,
		Proteins:            req.Proteins,
		Fats:                req.Fats,
		Carbohydrates:       req.Carbohydrates,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	s.publish(ctx, events.NewProductEvent(events.ProductCreated, prod.ID))
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("name cannot be empty: %w", ErrValidation)
	}

	prod, err := s.Repo.PatchProduct(ctx, id, req)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	s.publish(ctx, events.NewProductEvent(events.ProductUpdated, prod.ID))
	return prod, nil
}

// DeleteProduct removes the product together with the cart lines that reference it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	lines, err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}

	l := logging.FromContext(ctx)
	if lines > 0 {
		l.Info("product_delete_cascaded", "product_id", id, "cart_lines", lines)
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, events.NewProductEvent(events.ProductDeleted, id))
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_put_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, ev events.ProductEvent) {
	key := fmt.Sprint(ev.ProductID)
	if err := s.Events.Publish(ctx, events.TopicProducts, key, ev); err != nil {
		logging.FromContext(ctx).Warn("product_event_publish_failed", "type", ev.Type, "product_id", ev.ProductID, "error", err)
	}
}
