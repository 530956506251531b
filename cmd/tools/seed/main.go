package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/coupons"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/products"
)

// Carga un catálogo mínimo para desarrollo local: productos con variantes
// y un par de cupones. Idempotente: re-ejecutar no duplica filas.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&products.Product{}, &products.Variant{}, &coupons.Coupon{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := seedProducts(db); err != nil {
		log.Fatalf("failed to seed products: %v", err)
	}
	if err := seedCoupons(db); err != nil {
		log.Fatalf("failed to seed coupons: %v", err)
	}

	fmt.Println("Seed OK.")
}

type variantSeed struct {
	SKU       string
	ColorName string
	ColorSlug string
	SizeLabel string
	PriceNow  float64
}

type productSeed struct {
	Title    string
	Slug     string
	Category string
	Variants []variantSeed
}

var catalog = []productSeed{
	{
		Title: "Mochila Hi There", Slug: "mochila-hi-there", Category: "mochilas",
		Variants: []variantSeed{
			{SKU: "MOC-HT-AZUL", ColorName: "Azul", ColorSlug: "azul", PriceNow: 189.90},
			{SKU: "MOC-HT-ROSA", ColorName: "Rosa", ColorSlug: "rosa", PriceNow: 189.90},
		},
	},
	{
		Title: "Lonchera Round About", Slug: "lonchera-round-about", Category: "loncheras",
		Variants: []variantSeed{
			{SKU: "LON-RA-VERDE", ColorName: "Verde", ColorSlug: "verde", PriceNow: 99.90},
		},
	},
	{
		Title: "Cartuchera Pop Colour", Slug: "cartuchera-pop-colour", Category: "cartucheras",
		Variants: []variantSeed{
			{SKU: "CAR-PC-LILA", ColorName: "Lila", ColorSlug: "lila", PriceNow: 59.90},
			{SKU: "CAR-PC-CELESTE", ColorName: "Celeste", ColorSlug: "celeste", PriceNow: 59.90},
		},
	},
	{
		Title: "Botella Insulated", Slug: "botella-insulated", Category: "botellas",
		Variants: []variantSeed{
			{SKU: "BOT-IN-500", SizeLabel: "500ml", PriceNow: 79.90},
		},
	},
}

func seedProducts(db *gorm.DB) error {
	for _, ps := range catalog {
		var p products.Product
		err := db.First(&p, "slug = ?", ps.Slug).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = products.Product{
				ID:       uuid.NewString(),
				Title:    ps.Title,
				Slug:     ps.Slug,
				Category: ps.Category,
				Status:   "active",
			}
			if err := db.Create(&p).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		for _, vs := range ps.Variants {
			var v products.Variant
			err := db.First(&v, "product_id = ? AND sku = ?", p.ID, vs.SKU).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				v = products.Variant{
					ID:        uuid.NewString(),
					ProductID: p.ID,
					SKU:       vs.SKU,
					ColorName: vs.ColorName,
					ColorSlug: vs.ColorSlug,
					SizeLabel: vs.SizeLabel,
					PriceNow:  vs.PriceNow,
					IsActive:  true,
				}
				if err := db.Create(&v).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			}
		}
		fmt.Printf("product: %s (%d variants)\n", ps.Slug, len(ps.Variants))
	}
	return nil
}

func seedCoupons(db *gorm.DB) error {
	ends := time.Now().AddDate(1, 0, 0)
	maxDisc := 50.0
	limit := 100

	seeds := []coupons.Coupon{
		{
			ID: uuid.NewString(), Code: "BIENVENIDO10",
			DiscountType: coupons.DiscountPercent, DiscountValue: 10,
			MinSubtotal: 100, MaxDiscount: &maxDisc,
			EndsAt: &ends, IsActive: true, UsageLimit: &limit,
		},
		{
			ID: uuid.NewString(), Code: "ENVIOGRATIS",
			DiscountType: coupons.DiscountFixed, DiscountValue: 15,
			MinSubtotal: 150, EndsAt: &ends, IsActive: true,
		},
	}

	for _, c := range seeds {
		if err := db.Where("code = ?", c.Code).FirstOrCreate(&c).Error; err != nil {
			return err
		}
		fmt.Printf("coupon: %s\n", c.Code)
	}
	return nil
}
