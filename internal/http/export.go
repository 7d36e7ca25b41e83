package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExportController serves the catalog as an import fixture.
type ExportController struct {
	exporter CatalogExporter
}

func NewExportController(exporter CatalogExporter) *ExportController {
	return &ExportController{exporter: exporter}
}

// Export handles GET /api/admin/export. Entries that failed to load are
// counted in the X-Export-Skipped header.
func (ec *ExportController) Export(c *gin.Context) {
	var buf bytes.Buffer
	result, err := ec.exporter.Export(c.Request.Context(), &buf)
	if err != nil {
		respondCatalogError(c, err, "export catalog")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="catalog.yaml"`)
	c.Header("X-Export-Skipped", strconv.Itoa(result.Skipped))
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", buf.Bytes())
}
