package cart

import (
	"strings"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/pricing"
)

// Item es una línea del carrito. La clave combina producto + color +
// talla para que variantes distintas no se mezclen.
type Item struct {
	Key       string  `json:"key"`
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug,omitempty"`
	Image     string  `json:"image,omitempty"`
	UnitPrice float64 `json:"price_now"`
	Qty       int     `json:"qty"`

	ColorSlug string `json:"color_slug,omitempty"`
	ColorName string `json:"color_name,omitempty"`
	SizeLabel string `json:"size_label,omitempty"`
	SKU       string `json:"sku,omitempty"`
}

type Cart struct {
	Items []Item `json:"items"`
}

func MakeKey(productID, colorSlug, sizeLabel string) string {
	if colorSlug == "" {
		colorSlug = "default"
	}
	if sizeLabel == "" {
		sizeLabel = "one"
	}
	return strings.Join([]string{productID, colorSlug, sizeLabel}, "::")
}

// El reducer es puro: cada operación devuelve un carrito nuevo sin
// tocar el recibido. La persistencia (cookie, sesión) vive aparte.

func Add(c Cart, it Item) Cart {
	qty := it.Qty
	if qty < 1 {
		qty = 1
	}
	it.Qty = qty
	it.Key = MakeKey(it.ProductID, it.ColorSlug, it.SizeLabel)

	out := clone(c)
	for i := range out.Items {
		if out.Items[i].Key == it.Key {
			out.Items[i].Qty += qty
			return out
		}
	}
	out.Items = append(out.Items, it)
	return out
}

func Increment(c Cart, key string) Cart {
	out := clone(c)
	for i := range out.Items {
		if out.Items[i].Key == key {
			out.Items[i].Qty++
		}
	}
	return out
}

// Decrement resta uno; en cero la línea desaparece.
func Decrement(c Cart, key string) Cart {
	out := Cart{Items: make([]Item, 0, len(c.Items))}
	for _, it := range c.Items {
		if it.Key == key {
			it.Qty--
		}
		if it.Qty > 0 {
			out.Items = append(out.Items, it)
		}
	}
	return out
}

func Remove(c Cart, key string) Cart {
	out := Cart{Items: make([]Item, 0, len(c.Items))}
	for _, it := range c.Items {
		if it.Key != key {
			out.Items = append(out.Items, it)
		}
	}
	return out
}

func Clear(Cart) Cart { return Cart{} }

func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Qty
	}
	return n
}

func clone(c Cart) Cart {
	out := Cart{Items: make([]Item, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}

func (c Cart) Subtotal() float64 {
	sum := 0.0
	for _, it := range c.Items {
		sum += it.UnitPrice * float64(it.Qty)
	}
	return pricing.Round2(sum)
}
