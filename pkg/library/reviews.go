package library

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewFilter struct {
	UserID uint
	BookID uint
}

func (f ReviewFilter) scope(q *gorm.DB) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.BookID != 0 {
		q = q.Where("book_id = ?", f.BookID)
	}
	return q
}

func (s *Service) ListReviews(ctx context.Context, filter ReviewFilter, page Page) ([]models.Review, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Review{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	var reviews []models.Review
	if err := page.apply(db.Scopes(filter.scope).Order("id")).Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *Service) GetReview(ctx context.Context, id uint) (models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return review, notFound("review")
		}
		return review, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

func (s *Service) CreateReview(ctx context.Context, in ReviewInput) (models.Review, error) {
	var review models.Review
	if err := s.check(in); err != nil {
		return review, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, in.User); err != nil {
			return err
		}
		book, err := requireBook(tx, in.Book)
		if err != nil {
			return err
		}
		review = models.Review{
			UserID:  in.User,
			BookID:  book.ID,
			Comment: in.Comment,
			Rating:  in.Rating,
		}
		if err := tx.Omit(clause.Associations).Create(&review).Error; err != nil {
			return err
		}
		_, err = RecomputeBook(tx, book.ID)
		return err
	})
	return review, wrapOp(err, "create review")
}

// UpdateReview rewrites a review. Its creation date never changes.
func (s *Service) UpdateReview(ctx context.Context, id uint, in ReviewInput) (models.Review, error) {
	var review models.Review
	if err := s.check(in); err != nil {
		return review, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("review")
			}
			return err
		}
		if err := requireUser(tx, in.User); err != nil {
			return err
		}
		book, err := requireBook(tx, in.Book)
		if err != nil {
			return err
		}
		previousBook := review.BookID

		review.UserID = in.User
		review.BookID = book.ID
		review.Comment = in.Comment
		review.Rating = in.Rating
		if err := tx.Omit(clause.Associations).Save(&review).Error; err != nil {
			return err
		}
		if previousBook != book.ID {
			if _, err := RecomputeBook(tx, previousBook); err != nil {
				return err
			}
		}
		_, err = RecomputeBook(tx, book.ID)
		return err
	})
	return review, wrapOp(err, "update review")
}

func (s *Service) DeleteReview(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("review")
			}
			return err
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		_, err := RecomputeBook(tx, review.BookID)
		return err
	})
	return wrapOp(err, "delete review")
}
