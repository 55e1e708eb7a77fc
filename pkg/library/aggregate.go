package library

import (
	"context"
	"database/sql"
	"fmt"

	"bookshelf/pkg/models"

	"gorm.io/gorm"
)

// BookStats holds the figures derived from a book's reviews. Both are nil
// while the book has no reviews.
type BookStats struct {
	AverageRating *float64
	ReviewCount   *int64
}

// AverageRating is the mean review rating of the book. A value pinned with
// SetAverageRating wins over the query.
func (s *Service) AverageRating(ctx context.Context, book *models.Book) (*float64, error) {
	if v, ok := book.AverageRatingOverride(); ok {
		return v, nil
	}
	return averageRating(s.db.WithContext(ctx), book.ID)
}

// ReviewCount sums the number column of the book's reviews.
func (s *Service) ReviewCount(ctx context.Context, book *models.Book) (*int64, error) {
	if v, ok := book.ReviewCountOverride(); ok {
		return v, nil
	}
	return reviewCount(s.db.WithContext(ctx), book.ID)
}

func (s *Service) Stats(ctx context.Context, book *models.Book) (BookStats, error) {
	avg, err := s.AverageRating(ctx, book)
	if err != nil {
		return BookStats{}, err
	}
	count, err := s.ReviewCount(ctx, book)
	if err != nil {
		return BookStats{}, err
	}
	return BookStats{AverageRating: avg, ReviewCount: count}, nil
}

func averageRating(db *gorm.DB, bookID uint) (*float64, error) {
	var avg sql.NullFloat64
	err := db.Model(&models.Review{}).
		Select("AVG(rating)").
		Where("book_id = ?", bookID).
		Row().Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	v := avg.Float64
	return &v, nil
}

func reviewCount(db *gorm.DB, bookID uint) (*int64, error) {
	var sum sql.NullInt64
	err := db.Model(&models.Review{}).
		Select("CAST(SUM(number) AS BIGINT)").
		Where("book_id = ?", bookID).
		Row().Scan(&sum)
	if err != nil {
		return nil, fmt.Errorf("review count: %w", err)
	}
	if !sum.Valid {
		return nil, nil
	}
	v := sum.Int64
	return &v, nil
}

func bookStats(db *gorm.DB, bookID uint) (BookStats, error) {
	avg, err := averageRating(db, bookID)
	if err != nil {
		return BookStats{}, err
	}
	count, err := reviewCount(db, bookID)
	if err != nil {
		return BookStats{}, err
	}
	return BookStats{AverageRating: avg, ReviewCount: count}, nil
}

type bookAggregate struct {
	BookID        uint
	AverageRating sql.NullFloat64
	ReviewCount   sql.NullInt64
}

// annotateStats computes the stats of many books in one grouped query and
// pins them on each book.
func annotateStats(db *gorm.DB, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	var rows []bookAggregate
	err := db.Model(&models.Review{}).
		Select("book_id, AVG(rating) AS average_rating, CAST(SUM(number) AS BIGINT) AS review_count").
		Where("book_id IN ?", ids).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("aggregate reviews: %w", err)
	}
	byBook := make(map[uint]bookAggregate, len(rows))
	for _, row := range rows {
		byBook[row.BookID] = row
	}
	for i := range books {
		row, ok := byBook[books[i].ID]
		if !ok {
			books[i].SetAverageRating(nil)
			books[i].SetReviewCount(nil)
			continue
		}
		books[i].SetAverageRating(nullFloat(row.AverageRating))
		books[i].SetReviewCount(nullInt(row.ReviewCount))
	}
	return nil
}

func pinStats(book *models.Book, stats BookStats) {
	book.SetAverageRating(stats.AverageRating)
	book.SetReviewCount(stats.ReviewCount)
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
