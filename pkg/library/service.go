// Package library holds the rules behind the bookshelf API: field and
// cross-record validation, review aggregates, and the normalization applied
// when authors, books, user-books and reviews are written.
//
// Every write runs its checks and its insert or update in one transaction.
// The unique indexes on author names and book titles back up the
// pre-checks, and a violation raised by the database surfaces as the same
// KindConflict error the pre-check would have returned.
package library

import (
	"context"
	"fmt"
	"log/slog"

	"bookshelf/pkg/queue"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Files is the part of the document store the rules need.
type Files interface {
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	db       *gorm.DB
	files    Files
	logger   *slog.Logger
	validate *validator.Validate
	retries  *queue.Queue
}

// NewService wires the rules to a database and a document store. A nil
// files value turns storage checks off.
func NewService(db *gorm.DB, files Files, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		files:    files,
		logger:   logger,
		validate: newValidator(),
	}
}

// Page selects a slice of a list. Out of range values fall back to the
// first page of ten.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return Page{Number: number, Size: size}
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	p = NewPage(p.Number, p.Size)
	return q.Offset((p.Number - 1) * p.Size).Limit(p.Size)
}

func (s *Service) fileExists(ctx context.Context, key string) (bool, error) {
	if s.files == nil {
		return true, nil
	}
	ok, err := s.files.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("stat file %s: %w", key, err)
	}
	return ok, nil
}

// dropFile removes a stored document after the row pointing at it is gone.
// A failed delete is queued for retry when a queue is set, otherwise the
// object is left orphaned.
func (s *Service) dropFile(ctx context.Context, key string) {
	if s.files == nil || key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		queued := s.scheduleDelete(key, 1)
		s.logger.WarnContext(ctx, "delete stored file failed", "key", key, "queued", queued, "err", err)
	}
}
