package library

import (
	"fmt"
	"time"

	"bookshelf/pkg/models"

	"gorm.io/gorm"
)

// ClampPagesRead caps pages read at the book length.
func ClampPagesRead(pagesRead, totalPages int) int {
	if pagesRead > totalPages {
		pagesRead = totalPages
	}
	if pagesRead < 0 {
		return 0
	}
	return pagesRead
}

// RecomputeBook refreshes a book after one of its user-books or reviews
// changed. It reapplies the book save rule with a column update, so no
// hooks or further cascades run, and returns the fresh stats.
func RecomputeBook(tx *gorm.DB, bookID uint) (BookStats, error) {
	res := tx.Model(&models.Book{}).
		Where("id = ?", bookID).
		UpdateColumns(map[string]interface{}{
			"number":     models.SingletonNumber,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return BookStats{}, fmt.Errorf("recompute book %d: %w", bookID, res.Error)
	}
	if res.RowsAffected == 0 {
		return BookStats{}, missingReference("book", MsgBookNotFound)
	}
	return bookStats(tx, bookID)
}
