package coupons

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("coupon not found")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// GetByCode busca por código normalizado (mayúsculas).
func (r *Repo) GetByCode(ctx context.Context, code string) (Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var c Coupon
	err := r.db.WithContext(ctx).First(&c, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Coupon{}, ErrNotFound
	}
	return c, err
}

// IncrementUsage suma 1 a used_count. El guard contra doble incremento
// vive en el pedido (coupon_redeemed_at), no aquí.
func (r *Repo) IncrementUsage(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	res := r.db.WithContext(ctx).Model(&Coupon{}).
		Where("code = ?", code).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
