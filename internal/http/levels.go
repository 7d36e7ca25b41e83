package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/catalog"
)

type LevelsController struct {
	catalog CatalogService
}

func NewLevelsController(catalog CatalogService) *LevelsController {
	return &LevelsController{catalog: catalog}
}

type levelRequest struct {
	Name string `json:"name" binding:"required"`
}

type attachRequest struct {
	ID       string `json:"id" binding:"required"`
	Position string `json:"position"`
}

type reorderRequest struct {
	Order []string `json:"order" binding:"required"`
}

// List handles GET /api/levels
func (lc *LevelsController) List(c *gin.Context) {
	levels, err := lc.catalog.ListLevels(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "list levels")
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels, "count": len(levels)})
}

// Get handles GET /api/levels/:id and returns the materialized level.
func (lc *LevelsController) Get(c *gin.Context) {
	node, err := lc.catalog.MaterializeLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get level")
		return
	}
	c.JSON(http.StatusOK, node)
}

// Create handles POST /api/levels
func (lc *LevelsController) Create(c *gin.Context) {
	var req levelRequest
	if !bindJSON(c, &req) {
		return
	}
	level, err := lc.catalog.CreateLevel(c.Request.Context(), req.Name)
	if err != nil {
		respondCatalogError(c, err, "create level")
		return
	}
	respondCreated(c, level)
}

// Update handles PATCH /api/levels/:id
func (lc *LevelsController) Update(c *gin.Context) {
	var req levelRequest
	if !bindJSON(c, &req) {
		return
	}
	level, err := lc.catalog.UpdateLevel(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondCatalogError(c, err, "update level")
		return
	}
	c.JSON(http.StatusOK, level)
}

// Delete handles DELETE /api/levels/:id. Books of the level are kept.
func (lc *LevelsController) Delete(c *gin.Context) {
	if err := lc.catalog.DeleteLevel(c.Request.Context(), c.Param("id")); err != nil {
		respondCatalogError(c, err, "delete level")
		return
	}
	respondSuccess(c, "level deleted")
}

// AttachBook handles POST /api/levels/:id/books
func (lc *LevelsController) AttachBook(c *gin.Context) {
	var req attachRequest
	if !bindJSON(c, &req) {
		return
	}
	pos, ok := parsePosition(c, req.Position)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	levelID := c.Param("id")
	if err := lc.catalog.AttachChild(ctx, catalog.ParentLevel, levelID, req.ID, pos); err != nil {
		respondCatalogError(c, err, "attach book")
		return
	}
	lc.respondLevel(c, levelID)
}

// ReorderBooks handles PUT /api/levels/:id/books/order
func (lc *LevelsController) ReorderBooks(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	levelID := c.Param("id")
	if err := lc.catalog.Reorder(c.Request.Context(), catalog.ParentLevel, levelID, req.Order); err != nil {
		respondCatalogError(c, err, "reorder books")
		return
	}
	lc.respondLevel(c, levelID)
}

// DetachBook handles DELETE /api/levels/:id/books/:childId. The book
// document is deleted as well.
func (lc *LevelsController) DetachBook(c *gin.Context) {
	levelID := c.Param("id")
	if err := lc.catalog.DetachAndDelete(c.Request.Context(), catalog.ParentLevel, levelID, c.Param("childId")); err != nil {
		respondCatalogError(c, err, "detach book")
		return
	}
	lc.respondLevel(c, levelID)
}

// respondLevel re-materializes the level after a mutation.
func (lc *LevelsController) respondLevel(c *gin.Context, id string) {
	node, err := lc.catalog.MaterializeLevel(c.Request.Context(), id)
	if err != nil {
		respondCatalogError(c, err, "get level")
		return
	}
	c.JSON(http.StatusOK, node)
}
