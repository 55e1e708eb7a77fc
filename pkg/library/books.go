package library

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookFilter struct {
	UserID uint
}

func (f BookFilter) scope(q *gorm.DB) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	return q
}

// ListBooks returns a page of books with their authors and pinned stats.
func (s *Service) ListBooks(ctx context.Context, filter BookFilter, page Page) ([]models.Book, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Book{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	var books []models.Book
	q := db.Scopes(filter.scope).Preload("Authors", orderByID).Order("id")
	if err := page.apply(q).Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	if err := annotateStats(db, books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (s *Service) GetBook(ctx context.Context, id uint) (models.Book, error) {
	db := s.db.WithContext(ctx)
	var book models.Book
	if err := db.Preload("Authors", orderByID).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book, notFound("book")
		}
		return book, fmt.Errorf("get book: %w", err)
	}
	stats, err := bookStats(db, book.ID)
	if err != nil {
		return book, err
	}
	pinStats(&book, stats)
	return book, nil
}

func (s *Service) CreateBook(ctx context.Context, in BookInput) (models.Book, error) {
	var book models.Book
	if err := s.check(in); err != nil {
		return book, err
	}
	if in.File != "" {
		ok, err := s.fileExists(ctx, in.File)
		if err != nil {
			return book, err
		}
		if !ok {
			return book, missingReference("file", MsgFileNotFound)
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, in.User); err != nil {
			return err
		}
		authors, err := loadAuthors(tx, in.Authors)
		if err != nil {
			return err
		}
		if err := ensureUniqueTitle(tx, in.Title, 0); err != nil {
			return err
		}
		book = models.Book{
			UserID:      in.User,
			Title:       in.Title,
			Authors:     authors,
			Description: in.Description,
			File:        in.File,
			TotalPages:  in.TotalPages,
		}
		return tx.Omit("User").Create(&book).Error
	})
	if err != nil {
		return book, translateWrite(err, "create book", "title", MsgTitleNotUnique)
	}
	pinStats(&book, BookStats{})
	return book, nil
}

// UpdateBook replaces every field of a book. An empty file keeps the
// current document, which must still be present in storage.
func (s *Service) UpdateBook(ctx context.Context, id uint, in BookInput) (models.Book, error) {
	var book models.Book
	if err := s.check(in); err != nil {
		return book, err
	}
	var replacedFile string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("book")
			}
			return err
		}
		if err := requireUser(tx, in.User); err != nil {
			return err
		}
		authors, err := loadAuthors(tx, in.Authors)
		if err != nil {
			return err
		}
		if err := ensureUniqueTitle(tx, in.Title, id); err != nil {
			return err
		}
		file, err := s.resolveFile(ctx, book.File, in.File)
		if err != nil {
			return err
		}
		if book.File != "" && file != book.File {
			replacedFile = book.File
		}

		book.UserID = in.User
		book.Title = in.Title
		book.Description = in.Description
		book.File = file
		book.TotalPages = in.TotalPages
		if err := tx.Omit(clause.Associations).Save(&book).Error; err != nil {
			return err
		}
		if err := tx.Model(&book).Association("Authors").Replace(authors); err != nil {
			return err
		}
		book.Authors = authors
		return nil
	})
	if err != nil {
		return book, translateWrite(err, "update book", "title", MsgTitleNotUnique)
	}
	s.dropFile(ctx, replacedFile)

	stats, err := bookStats(s.db.WithContext(ctx), book.ID)
	if err != nil {
		return book, err
	}
	pinStats(&book, stats)
	return book, nil
}

// resolveFile picks the document a book keeps after an update.
func (s *Service) resolveFile(ctx context.Context, current, requested string) (string, error) {
	if requested == "" || requested == current {
		if current == "" {
			return "", nil
		}
		ok, err := s.fileExists(ctx, current)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", newError(KindStorage, "file", MsgFileMissing)
		}
		return current, nil
	}
	ok, err := s.fileExists(ctx, requested)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", missingReference("file", MsgFileNotFound)
	}
	return requested, nil
}

// DeleteBook removes a book together with its user-books, reviews and
// author links, then drops the stored document.
func (s *Service) DeleteBook(ctx context.Context, id uint) error {
	var book models.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("book")
			}
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.UserBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM book_authors WHERE book_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
	if err != nil {
		return wrapOp(err, "delete book")
	}
	s.dropFile(ctx, book.File)
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
