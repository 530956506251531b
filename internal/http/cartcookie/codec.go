package cartcookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/cart"
)

var ErrInvalid = errors.New("invalid cart cookie")

// Codec guarda el carrito entero en una cookie firmada. El contenido no
// es secreto (el cliente ya lo conoce), la firma solo evita que se
// altere fuera del sitio. Los precios igual se revalidan server-side.
type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
}

func New(secret []byte, name string, secure bool) *Codec {
	return &Codec{Secret: secret, CookieName: name, Secure: secure}
}

// value format: base64(json(cart)).base64(hmac(payload))
func (c *Codec) Encode(ct cart.Cart) (string, error) {
	raw, err := json.Marshal(ct)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + sign(c.Secret, payload), nil
}

func (c *Codec) Decode(v string) (cart.Cart, error) {
	parts := strings.Split(v, ".")
	if len(parts) != 2 || parts[0] == "" {
		return cart.Cart{}, ErrInvalid
	}
	if !verify(c.Secret, parts[0], parts[1]) {
		return cart.Cart{}, ErrInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return cart.Cart{}, ErrInvalid
	}
	var ct cart.Cart
	if err := json.Unmarshal(raw, &ct); err != nil {
		return cart.Cart{}, ErrInvalid
	}
	return ct, nil
}

// Load implementa cart.Store: una cookie rota se descarta y se parte
// de un carrito vacío.
func (c *Codec) Load(ctx *gin.Context) cart.Cart {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return cart.Cart{}
	}
	ct, err := c.Decode(v)
	if err != nil {
		c.Drop(ctx)
		return cart.Cart{}
	}
	return ct
}

func (c *Codec) Save(ctx *gin.Context, ct cart.Cart) {
	val, err := c.Encode(ct)
	if err != nil {
		return
	}
	maxAge := int((30 * 24 * time.Hour).Seconds())
	ctx.SetSameSite(2) // Lax
	ctx.SetCookie(c.CookieName, val, maxAge, "/", "", c.Secure, true)
}

func (c *Codec) Drop(ctx *gin.Context) {
	ctx.SetSameSite(2) // Lax
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.Secure, true)
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(sig))
}
