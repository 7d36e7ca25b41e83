package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type LanguagesController struct {
	catalog CatalogService
}

func NewLanguagesController(catalog CatalogService) *LanguagesController {
	return &LanguagesController{catalog: catalog}
}

type createLanguageRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

// List handles GET /api/languages
func (lc *LanguagesController) List(c *gin.Context) {
	langs, err := lc.catalog.ListLanguages(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "list languages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": langs, "count": len(langs)})
}

// Create handles POST /api/languages
func (lc *LanguagesController) Create(c *gin.Context) {
	var req createLanguageRequest
	if !bindJSON(c, &req) {
		return
	}
	lang, err := lc.catalog.CreateLanguage(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		respondCatalogError(c, err, "create language")
		return
	}
	respondCreated(c, lang)
}

// Delete handles DELETE /api/languages/:id
func (lc *LanguagesController) Delete(c *gin.Context) {
	if err := lc.catalog.DeleteLanguage(c.Request.Context(), c.Param("id")); err != nil {
		respondCatalogError(c, err, "delete language")
		return
	}
	respondSuccess(c, "language deleted")
}
