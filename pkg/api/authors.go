package api

import (
	"net/http"

	"bookshelf/pkg/library"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listAuthors(c *gin.Context) {
	page := pageFromQuery(c)
	authors, total, err := h.svc.ListAuthors(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]gin.H, len(authors))
	for i, a := range authors {
		items[i] = presentAuthor(a)
	}
	listResponse(c, page, total, items)
}

func (h *Handler) getAuthor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	author, err := h.svc.GetAuthor(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentAuthor(author))
}

func (h *Handler) createAuthor(c *gin.Context) {
	var in library.AuthorInput
	if !bindJSON(c, &in) {
		return
	}
	author, err := h.svc.CreateAuthor(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, presentAuthor(author))
}

func (h *Handler) updateAuthor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in library.AuthorInput
	if !bindJSON(c, &in) {
		return
	}
	h.saveAuthor(c, id, in)
}

func (h *Handler) patchAuthor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	current, err := h.svc.GetAuthor(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	in := library.AuthorInput{FullName: current.FullName}
	if !bindJSON(c, &in) {
		return
	}
	h.saveAuthor(c, id, in)
}

func (h *Handler) saveAuthor(c *gin.Context, id uint, in library.AuthorInput) {
	author, err := h.svc.UpdateAuthor(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentAuthor(author))
}

func (h *Handler) deleteAuthor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAuthor(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
