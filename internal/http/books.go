package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/catalog"
)

type BooksController struct {
	catalog CatalogService
}

func NewBooksController(catalog CatalogService) *BooksController {
	return &BooksController{catalog: catalog}
}

type createBookRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// List handles GET /api/books
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.catalog.ListBooks(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// Get handles GET /api/books/:id and returns the book with its pages.
func (bc *BooksController) Get(c *gin.Context) {
	node, err := bc.catalog.MaterializeBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, node)
}

// Create handles POST /api/books. The book is not attached to any level.
func (bc *BooksController) Create(c *gin.Context) {
	var req createBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := bc.catalog.CreateBook(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondCatalogError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// Update handles PATCH /api/books/:id
func (bc *BooksController) Update(c *gin.Context) {
	var req catalog.BookUpdate
	if !bindJSON(c, &req) {
		return
	}
	book, err := bc.catalog.UpdateBook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondCatalogError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/books/:id and detaches the book from every level.
func (bc *BooksController) Delete(c *gin.Context) {
	if err := bc.catalog.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		respondCatalogError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// CreatePage handles POST /api/books/:id/pages
func (bc *BooksController) CreatePage(c *gin.Context) {
	var req catalog.PageFields
	if !bindJSON(c, &req) {
		return
	}
	page, err := bc.catalog.CreateAndAttachPage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondCatalogError(c, err, "create page")
		return
	}
	respondCreated(c, page)
}

// ReorderPages handles PUT /api/books/:id/pages/order
func (bc *BooksController) ReorderPages(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	bookID := c.Param("id")
	if err := bc.catalog.Reorder(c.Request.Context(), catalog.ParentBook, bookID, req.Order); err != nil {
		respondCatalogError(c, err, "reorder pages")
		return
	}
	bc.respondBook(c, bookID)
}

// DeletePage handles DELETE /api/books/:id/pages/:childId
func (bc *BooksController) DeletePage(c *gin.Context) {
	bookID := c.Param("id")
	if err := bc.catalog.DetachAndDelete(c.Request.Context(), catalog.ParentBook, bookID, c.Param("childId")); err != nil {
		respondCatalogError(c, err, "delete page")
		return
	}
	bc.respondBook(c, bookID)
}

func (bc *BooksController) respondBook(c *gin.Context, id string) {
	node, err := bc.catalog.MaterializeBook(c.Request.Context(), id)
	if err != nil {
		respondCatalogError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, node)
}
