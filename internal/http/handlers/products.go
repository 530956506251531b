package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/http/middleware"
	"github.com/smiggle-peru/smiggle-peru/internal/modules/products"
	"github.com/smiggle-peru/smiggle-peru/internal/shared/apperr"
)

type ProductHandler struct {
	Logger *slog.Logger
	Repo   *products.Repo
}

func NewProductHandler(logger *slog.Logger, repo *products.Repo) *ProductHandler {
	return &ProductHandler{Logger: logger, Repo: repo}
}

// GET /api/products?category=mochilas
func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "products": items})
}

// GET /api/products/:slug
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, products.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Producto no encontrado."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "product": p})
}
