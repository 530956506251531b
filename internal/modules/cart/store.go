package cart

import "github.com/gin-gonic/gin"

// Store es el puerto de persistencia del carrito. La implementación de
// producción lo guarda en una cookie firmada; los tests usan memoria.
type Store interface {
	Load(c *gin.Context) Cart
	Save(c *gin.Context, cart Cart)
	Drop(c *gin.Context)
}
