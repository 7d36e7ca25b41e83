package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/importers"
)

// maxFixtureSize bounds uploaded catalog fixtures.
const maxFixtureSize = 4 << 20

// ImportController loads YAML catalog fixtures.
type ImportController struct {
	importer CatalogImporter
}

func NewImportController(importer CatalogImporter) *ImportController {
	return &ImportController{importer: importer}
}

// Import handles POST /api/admin/import. The body is the raw YAML document.
func (ic *ImportController) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFixtureSize+1))
	if err != nil {
		respondBadRequest(c, "failed to read request body")
		return
	}
	if len(data) > maxFixtureSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "fixture too large", Code: CodeInvalid})
		return
	}

	fixture, err := importers.ParseCatalog(data)
	if err != nil {
		respondCatalogError(c, err, "parse fixture")
		return
	}

	result, err := ic.importer.Import(c.Request.Context(), fixture)
	if err != nil {
		respondCatalogError(c, err, "import fixture")
		return
	}
	c.JSON(http.StatusOK, result)
}
