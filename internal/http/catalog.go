package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogController serves the materialized catalog tree.
type CatalogController struct {
	catalog CatalogReader
}

func NewCatalogController(catalog CatalogReader) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// Tree handles GET /api/catalog
func (cc *CatalogController) Tree(c *gin.Context) {
	tree, err := cc.catalog.Materialize(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "materialize catalog")
		return
	}
	c.JSON(http.StatusOK, tree)
}
