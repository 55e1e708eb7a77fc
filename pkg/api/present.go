package api

import (
	"context"

	"bookshelf/pkg/library"
	"bookshelf/pkg/models"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func presentAuthor(a models.Author) gin.H {
	return gin.H{
		"id":        a.ID,
		"full_name": a.FullName,
	}
}

func (h *Handler) presentBook(ctx context.Context, b *models.Book) (gin.H, error) {
	stats, err := h.svc.Stats(ctx, b)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"id":             b.ID,
		"user":           b.UserID,
		"title":          b.Title,
		"authors":        b.AuthorIDs(),
		"description":    b.Description,
		"file":           b.File,
		"total_pages":    b.TotalPages,
		"rating":         stats.AverageRating,
		"amount_reviews": stats.ReviewCount,
	}, nil
}

func presentUserBook(ub models.UserBook) gin.H {
	return gin.H{
		"id":               ub.ID,
		"user":             ub.UserID,
		"book":             ub.BookID,
		"importance":       int(ub.Importance),
		"importance_label": ub.Importance.Label(),
		"pages_read":       ub.PagesRead,
		"reading_progress": ub.ReadingProgress(),
	}
}

func presentReview(r models.Review) gin.H {
	return gin.H{
		"id":          r.ID,
		"user":        r.UserID,
		"book":        r.BookID,
		"comment":     r.Comment,
		"rating":      r.Rating,
		"creating_at": r.CreatedAt.Format(dateLayout),
	}
}

// bookInputFrom prefills an input with the stored book for PATCH.
func bookInputFrom(b models.Book) library.BookInput {
	return library.BookInput{
		User:        b.UserID,
		Title:       b.Title,
		Authors:     b.AuthorIDs(),
		Description: b.Description,
		File:        b.File,
		TotalPages:  b.TotalPages,
	}
}

func userBookInputFrom(ub models.UserBook) library.UserBookInput {
	return library.UserBookInput{
		User:       ub.UserID,
		Book:       ub.BookID,
		Importance: int(ub.Importance),
		PagesRead:  ub.PagesRead,
	}
}

func reviewInputFrom(r models.Review) library.ReviewInput {
	return library.ReviewInput{
		User:    r.UserID,
		Book:    r.BookID,
		Comment: r.Comment,
		Rating:  r.Rating,
	}
}
