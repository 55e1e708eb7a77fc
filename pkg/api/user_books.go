package api

import (
	"net/http"

	"bookshelf/pkg/library"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listUserBooks(c *gin.Context) {
	userID, ok := queryID(c, "user")
	if !ok {
		return
	}
	bookID, ok := queryID(c, "book")
	if !ok {
		return
	}
	page := pageFromQuery(c)
	filter := library.UserBookFilter{UserID: userID, BookID: bookID}
	userBooks, total, err := h.svc.ListUserBooks(c.Request.Context(), filter, page)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]gin.H, len(userBooks))
	for i, ub := range userBooks {
		items[i] = presentUserBook(ub)
	}
	listResponse(c, page, total, items)
}

func (h *Handler) getUserBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ub, err := h.svc.GetUserBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentUserBook(ub))
}

func (h *Handler) createUserBook(c *gin.Context) {
	var in library.UserBookInput
	if !bindJSON(c, &in) {
		return
	}
	ub, err := h.svc.CreateUserBook(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, presentUserBook(ub))
}

func (h *Handler) updateUserBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in library.UserBookInput
	if !bindJSON(c, &in) {
		return
	}
	h.saveUserBook(c, id, in)
}

func (h *Handler) patchUserBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	current, err := h.svc.GetUserBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	in := userBookInputFrom(current)
	if !bindJSON(c, &in) {
		return
	}
	h.saveUserBook(c, id, in)
}

func (h *Handler) saveUserBook(c *gin.Context, id uint, in library.UserBookInput) {
	ub, err := h.svc.UpdateUserBook(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentUserBook(ub))
}

func (h *Handler) deleteUserBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUserBook(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
