package queue

import (
	"sync"
	"time"
)

// RetryTask is a stored document whose deletion failed and waits for
// another attempt.
type RetryTask struct {
	Key         string
	RetryAt     time.Time
	Attempts    int
	MaxAttempts int
}

// Exhausted reports whether the task used up its attempts.
func (t *RetryTask) Exhausted() bool {
	return t.MaxAttempts > 0 && t.Attempts >= t.MaxAttempts
}

type Queue struct {
	items []*RetryTask
	mu    sync.Mutex
	now   func() time.Time
}

func NewQueue() *Queue {
	return &Queue{
		items: make([]*RetryTask, 0),
		now:   time.Now,
	}
}

func (q *Queue) Enqueue(task *RetryTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, task)
}

// Dequeue removes and returns the first task that is due, or nil.
func (q *Queue) Dequeue() *RetryTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	for i, task := range q.items {
		if !task.RetryAt.After(now) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return task
		}
	}
	return nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) GetAll() []*RetryTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := make([]*RetryTask, len(q.items))
	copy(result, q.items)
	return result
}
