package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/xelth-com/poslabel/internal/models"
)

// ErrInvalidProduct is returned for products that cannot be stored.
var ErrInvalidProduct = errors.New("invalid product")

func validateProduct(p *models.Product) error {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity must not be negative", ErrInvalidProduct)
	}
	return nil
}

func matchesProduct(p models.Product, search string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), s) ||
		strings.Contains(strings.ToLower(p.SKU), s) ||
		strings.Contains(p.Barcode, search)
}

// MemoryProducts keeps products in process memory.
type MemoryProducts struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemoryProducts(seed ...models.Product) *MemoryProducts {
	s := &MemoryProducts{products: make(map[string]models.Product)}
	for _, p := range seed {
		_ = s.Create(context.Background(), &p)
	}
	return s
}

func (s *MemoryProducts) List(_ context.Context, search string, limit int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := lo.Filter(lo.Values(s.products), func(p models.Product, _ int) bool {
		return matchesProduct(p, search)
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if n := normalizeLimit(limit); len(list) > n {
		list = list[:n]
	}
	return list, nil
}

func (s *MemoryProducts) Get(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryProducts) Create(_ context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProducts) Update(_ context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProducts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

// GormProducts stores products in the products table.
type GormProducts struct {
	db *gorm.DB
}

func NewGormProducts(db *gorm.DB) *GormProducts {
	return &GormProducts{db: db}
}

func (s *GormProducts) List(ctx context.Context, search string, limit int) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Order("name ASC").Limit(normalizeLimit(limit))
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR barcode LIKE ?", like, like, "%"+search+"%")
	}
	var list []models.Product
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}

func (s *GormProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	return &p, nil
}

func (s *GormProducts) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *GormProducts) Update(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	cur, err := s.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = cur.CreatedAt
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	return nil
}

func (s *GormProducts) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("delete product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}
