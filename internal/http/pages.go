package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/catalog"
)

type PagesController struct {
	catalog CatalogService
}

func NewPagesController(catalog CatalogService) *PagesController {
	return &PagesController{catalog: catalog}
}

// Get handles GET /api/pages/:id
func (pc *PagesController) Get(c *gin.Context) {
	page, err := pc.catalog.GetPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get page")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Update handles PATCH /api/pages/:id
func (pc *PagesController) Update(c *gin.Context) {
	var req catalog.PageUpdate
	if !bindJSON(c, &req) {
		return
	}
	page, err := pc.catalog.UpdatePage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondCatalogError(c, err, "update page")
		return
	}
	c.JSON(http.StatusOK, page)
}
