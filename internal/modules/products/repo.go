package products

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) List(ctx context.Context, category string) ([]Product, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Preload("Variants", "is_active = ?", true).
		Order("updated_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var items []Product
	err := q.Find(&items).Error
	return items, err
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (Product, error) {
	var p Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&p, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// PricesByProductIDs resuelve el precio vigente de cada producto desde sus
// variantes: se prefiere una variante activa; si no hay ninguna, la primera.
// Productos sin precio resoluble simplemente no aparecen en el mapa.
func (r *Repo) PricesByProductIDs(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	var variants []Variant
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Order("product_id ASC, created_at ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(ids))
	activePick := make(map[string]bool, len(ids))
	for _, v := range variants {
		if v.PriceNow <= 0 {
			continue
		}
		if _, seen := prices[v.ProductID]; !seen {
			prices[v.ProductID] = v.PriceNow
			activePick[v.ProductID] = v.IsActive
			continue
		}
		// ya hay precio: solo lo reemplaza una variante activa si la
		// elegida antes no lo era
		if v.IsActive && !activePick[v.ProductID] {
			prices[v.ProductID] = v.PriceNow
			activePick[v.ProductID] = true
		}
	}
	return prices, nil
}
