package api

import (
	"net/http"

	"bookshelf/pkg/library"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listReviews(c *gin.Context) {
	userID, ok := queryID(c, "user")
	if !ok {
		return
	}
	bookID, ok := queryID(c, "book")
	if !ok {
		return
	}
	page := pageFromQuery(c)
	filter := library.ReviewFilter{UserID: userID, BookID: bookID}
	reviews, total, err := h.svc.ListReviews(c.Request.Context(), filter, page)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]gin.H, len(reviews))
	for i, r := range reviews {
		items[i] = presentReview(r)
	}
	listResponse(c, page, total, items)
}

func (h *Handler) getReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	review, err := h.svc.GetReview(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentReview(review))
}

func (h *Handler) createReview(c *gin.Context) {
	var in library.ReviewInput
	if !bindJSON(c, &in) {
		return
	}
	review, err := h.svc.CreateReview(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, presentReview(review))
}

func (h *Handler) updateReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in library.ReviewInput
	if !bindJSON(c, &in) {
		return
	}
	h.saveReview(c, id, in)
}

func (h *Handler) patchReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	current, err := h.svc.GetReview(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	in := reviewInputFrom(current)
	if !bindJSON(c, &in) {
		return
	}
	h.saveReview(c, id, in)
}

func (h *Handler) saveReview(c *gin.Context, id uint, in library.ReviewInput) {
	review, err := h.svc.UpdateReview(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentReview(review))
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteReview(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
