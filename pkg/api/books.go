package api

import (
	"net/http"

	"bookshelf/pkg/library"
	"bookshelf/pkg/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listBooks(c *gin.Context) {
	userID, ok := queryID(c, "user")
	if !ok {
		return
	}
	page := pageFromQuery(c)
	books, total, err := h.svc.ListBooks(c.Request.Context(), library.BookFilter{UserID: userID}, page)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]gin.H, len(books))
	for i := range books {
		item, err := h.presentBook(c.Request.Context(), &books[i])
		if err != nil {
			writeError(c, err)
			return
		}
		items[i] = item
	}
	listResponse(c, page, total, items)
}

func (h *Handler) getBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	book, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeBook(c, http.StatusOK, &book)
}

func (h *Handler) createBook(c *gin.Context) {
	var in library.BookInput
	if !bindJSON(c, &in) {
		return
	}
	book, err := h.svc.CreateBook(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeBook(c, http.StatusCreated, &book)
}

func (h *Handler) updateBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in library.BookInput
	if !bindJSON(c, &in) {
		return
	}
	h.saveBook(c, id, in)
}

func (h *Handler) patchBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	current, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	in := bookInputFrom(current)
	if !bindJSON(c, &in) {
		return
	}
	h.saveBook(c, id, in)
}

func (h *Handler) saveBook(c *gin.Context, id uint, in library.BookInput) {
	book, err := h.svc.UpdateBook(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeBook(c, http.StatusOK, &book)
}

func (h *Handler) writeBook(c *gin.Context, status int, book *models.Book) {
	body, err := h.presentBook(c.Request.Context(), book)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, body)
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
