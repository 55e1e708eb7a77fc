package library

import (
	"context"
	"time"

	"bookshelf/pkg/queue"
)

const (
	deleteMaxAttempts = 5
	deleteBackoff     = 30 * time.Second
)

// UseRetryQueue makes failed document deletions wait in q for
// RetryDeletes instead of being dropped.
func (s *Service) UseRetryQueue(q *queue.Queue) {
	s.retries = q
}

func (s *Service) scheduleDelete(key string, attempts int) bool {
	if s.retries == nil {
		return false
	}
	s.retries.Enqueue(&queue.RetryTask{
		Key:         key,
		RetryAt:     time.Now().Add(time.Duration(attempts) * deleteBackoff),
		Attempts:    attempts,
		MaxAttempts: deleteMaxAttempts,
	})
	return true
}

// RetryDeletes runs every due deletion once and returns how many
// succeeded.
func (s *Service) RetryDeletes(ctx context.Context) int {
	if s.retries == nil || s.files == nil {
		return 0
	}
	done := 0
	for {
		task := s.retries.Dequeue()
		if task == nil {
			return done
		}
		if err := s.files.Delete(ctx, task.Key); err != nil {
			task.Attempts++
			if task.Exhausted() {
				s.logger.ErrorContext(ctx, "giving up on stored file deletion", "key", task.Key, "attempts", task.Attempts, "err", err)
				continue
			}
			s.scheduleDelete(task.Key, task.Attempts)
			continue
		}
		done++
	}
}

// RunRetries calls RetryDeletes every interval until ctx ends.
func (s *Service) RunRetries(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.RetryDeletes(ctx); n > 0 {
				s.logger.InfoContext(ctx, "retried stored file deletions", "deleted", n)
			}
		}
	}
}
