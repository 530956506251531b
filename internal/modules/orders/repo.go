package orders

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo implementa Store sobre MySQL.
type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateWithItems(ctx context.Context, o *Order, items []OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *Repo) GetByExternalReference(ctx context.Context, ref string) (Order, []OrderItem, error) {
	var o Order
	err := r.db.WithContext(ctx).First(&o, "external_reference = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, nil, ErrNotFound
	}
	if err != nil {
		return Order{}, nil, err
	}

	var items []OrderItem
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&items, "order_id = ?", o.ID).Error; err != nil {
		return Order{}, nil, err
	}
	return o, items, nil
}

func (r *Repo) SetPreferenceID(ctx context.Context, ref, preferenceID string) error {
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("external_reference = ?", ref).
		Updates(map[string]any{"mp_preference_id": preferenceID, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reconcile: SELECT ... FOR UPDATE + apply + save, con retry ante
// deadlock (1213) y lock wait timeout (1205).
func (r *Repo) Reconcile(ctx context.Context, ref string, fn func(o *Order) error) (Order, error) {
	var out Order
	err := withTxRetry(ctx, r.db, 3, func(tx *gorm.DB) error {
		var o Order
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "external_reference = ?", ref).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := fn(&o); err != nil {
			return err
		}

		o.UpdatedAt = time.Now()
		if err := tx.WithContext(ctx).Save(&o).Error; err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

func (r *Repo) ClaimEmailSlot(ctx context.Context, ref string, slot EmailSlot) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("external_reference = ? AND "+string(slot)+" IS NULL", ref).
		Updates(map[string]any{string(slot): &now, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --- mysql helpers ---

func IsDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func withTxRetry(ctx context.Context, db *gorm.DB, attempts int, fn func(tx *gorm.DB) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(tx)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if isRetryableMySQLError(err) && i < attempts-1 {
			time.Sleep(time.Duration(50*(i+1)) * time.Millisecond)
			continue
		}
		return err
	}
	return lastErr
}

func isRetryableMySQLError(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		// 1213: Deadlock found; 1205: Lock wait timeout
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
