package library

import (
	"context"
	"errors"
	"fmt"

	"bookshelf/pkg/models"

	"gorm.io/gorm"
)

func (s *Service) ListAuthors(ctx context.Context, page Page) ([]models.Author, int64, error) {
	var total int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Author{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}
	var authors []models.Author
	if err := page.apply(db.Order("id")).Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	return authors, total, nil
}

func (s *Service) GetAuthor(ctx context.Context, id uint) (models.Author, error) {
	var author models.Author
	if err := s.db.WithContext(ctx).First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return author, notFound("author")
		}
		return author, fmt.Errorf("get author: %w", err)
	}
	return author, nil
}

// CreateAuthor stores a new author under its lowercased name.
func (s *Service) CreateAuthor(ctx context.Context, in AuthorInput) (models.Author, error) {
	var author models.Author
	if err := s.check(in); err != nil {
		return author, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueAuthor(tx, in.FullName, 0); err != nil {
			return err
		}
		author = models.Author{FullName: in.FullName}
		return tx.Create(&author).Error
	})
	return author, translateWrite(err, "create author", "full_name", MsgFullNameNotUnique)
}

func (s *Service) UpdateAuthor(ctx context.Context, id uint, in AuthorInput) (models.Author, error) {
	var author models.Author
	if err := s.check(in); err != nil {
		return author, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("author")
			}
			return err
		}
		if err := ensureUniqueAuthor(tx, in.FullName, id); err != nil {
			return err
		}
		author.FullName = in.FullName
		return tx.Save(&author).Error
	})
	return author, translateWrite(err, "update author", "full_name", MsgFullNameNotUnique)
}

// DeleteAuthor removes the author and its links to books. The books
// themselves stay.
func (s *Service) DeleteAuthor(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.Author
		if err := tx.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("author")
			}
			return err
		}
		if err := tx.Exec("DELETE FROM book_authors WHERE author_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&author).Error
	})
	return wrapOp(err, "delete author")
}
