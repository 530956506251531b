package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smiggle-peru/smiggle-peru/internal/modules/ubigeo"
)

type UbigeoHandler struct{}

func NewUbigeoHandler() *UbigeoHandler { return &UbigeoHandler{} }

// GET /api/ubigeo/departamentos
func (h *UbigeoHandler) Departamentos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "departamentos": ubigeo.Departments()})
}

// GET /api/ubigeo/provincias?dep_id=15
func (h *UbigeoHandler) Provincias(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "provincias": ubigeo.ProvincesByDepartment(c.Query("dep_id"))})
}

// GET /api/ubigeo/distritos?prov_id=1501
func (h *UbigeoHandler) Distritos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "distritos": ubigeo.DistrictsByProvince(c.Query("prov_id"))})
}
