package library

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserBookFilter struct {
	UserID uint
	BookID uint
}

func (f UserBookFilter) scope(q *gorm.DB) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.BookID != 0 {
		q = q.Where("book_id = ?", f.BookID)
	}
	return q
}

// ListUserBooks returns a page of user-books with their book loaded, so
// ReadingProgress can be read off each entry.
func (s *Service) ListUserBooks(ctx context.Context, filter UserBookFilter, page Page) ([]models.UserBook, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.UserBook{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count user books: %w", err)
	}
	var userBooks []models.UserBook
	q := db.Scopes(filter.scope).Preload("Book").Order("id")
	if err := page.apply(q).Find(&userBooks).Error; err != nil {
		return nil, 0, fmt.Errorf("list user books: %w", err)
	}
	return userBooks, total, nil
}

func (s *Service) GetUserBook(ctx context.Context, id uint) (models.UserBook, error) {
	var ub models.UserBook
	if err := s.db.WithContext(ctx).Preload("Book").First(&ub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ub, notFound("user book")
		}
		return ub, fmt.Errorf("get user book: %w", err)
	}
	return ub, nil
}

// CreateUserBook starts tracking a book for a user. Pages read may not go
// past the book length here; later updates are clamped instead.
func (s *Service) CreateUserBook(ctx context.Context, in UserBookInput) (models.UserBook, error) {
	var ub models.UserBook
	if err := s.check(in); err != nil {
		return ub, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, in.User); err != nil {
			return err
		}
		book, err := requireBook(tx, in.Book)
		if err != nil {
			return err
		}
		if in.PagesRead > book.TotalPages {
			return invalid("pages_read", MsgPagesExceedTotal)
		}
		ub = models.UserBook{
			UserID:     in.User,
			BookID:     book.ID,
			Importance: models.Importance(in.Importance),
			PagesRead:  ClampPagesRead(in.PagesRead, book.TotalPages),
		}
		if err := tx.Omit(clause.Associations).Create(&ub).Error; err != nil {
			return err
		}
		stats, err := RecomputeBook(tx, book.ID)
		if err != nil {
			return err
		}
		ub.Book = book
		pinStats(&ub.Book, stats)
		return nil
	})
	return ub, wrapOp(err, "create user book")
}

func (s *Service) UpdateUserBook(ctx context.Context, id uint, in UserBookInput) (models.UserBook, error) {
	var ub models.UserBook
	if err := s.check(in); err != nil {
		return ub, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ub, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user book")
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
		previousBook := ub.BookID

		ub.UserID = in.User
		ub.BookID = book.ID
		ub.Importance = models.Importance(in.Importance)
		ub.PagesRead = ClampPagesRead(in.PagesRead, book.TotalPages)
		if err := tx.Omit(clause.Associations).Save(&ub).Error; err != nil {
			return err
		}
		if previousBook != book.ID {
			if _, err := RecomputeBook(tx, previousBook); err != nil {
				return err
			}
		}
		stats, err := RecomputeBook(tx, book.ID)
		if err != nil {
			return err
		}
		ub.Book = book
		pinStats(&ub.Book, stats)
		return nil
	})
	return ub, wrapOp(err, "update user book")
}

func (s *Service) DeleteUserBook(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ub models.UserBook
		if err := tx.First(&ub, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user book")
			}
			return err
		}
		if err := tx.Delete(&ub).Error; err != nil {
			return err
		}
		_, err := RecomputeBook(tx, ub.BookID)
		return err
	})
	return wrapOp(err, "delete user book")
}
