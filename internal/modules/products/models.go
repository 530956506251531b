package products

import "time"

type Product struct {
	ID          string `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex:ux_products_slug" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Category    string `gorm:"type:varchar(128);index" json:"category,omitempty"`
	Status      string `gorm:"type:varchar(32);not null;default:active" json:"status"`
	ImageURL    string `gorm:"type:varchar(512)" json:"image,omitempty"`

	Variants []Variant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"-"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null" json:"-"`
}

func (Product) TableName() string { return "products" }

// Variant es la fuente autoritativa de precios: el carrito del cliente
// nunca decide cuánto cuesta algo.
type Variant struct {
	ID        string `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID string `gorm:"type:char(36);not null;index:ix_variants_product_id" json:"product_id"`
	SKU       string `gorm:"type:varchar(64)" json:"sku,omitempty"`

	ColorName string `gorm:"type:varchar(64)" json:"color_name,omitempty"`
	ColorSlug string `gorm:"type:varchar(64)" json:"color_slug,omitempty"`
	SizeLabel string `gorm:"type:varchar(32)" json:"size_label,omitempty"`

	PriceBefore *float64 `gorm:"type:decimal(10,2)" json:"price_before,omitempty"`
	PriceNow    float64  `gorm:"type:decimal(10,2);not null" json:"price_now"`
	IsActive    bool     `gorm:"not null;default:true" json:"is_active"`

	ImageURL string `gorm:"type:varchar(512)" json:"image,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"-"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null" json:"-"`
}

func (Variant) TableName() string { return "product_variants" }
