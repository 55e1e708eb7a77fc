package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDequeueReturnsOnlyDueTasks(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue()
	q.now = func() time.Time { return now }

	q.Enqueue(&RetryTask{Key: "later", RetryAt: now.Add(time.Minute)})
	q.Enqueue(&RetryTask{Key: "due", RetryAt: now})
	assert.Equal(t, 2, q.Size())

	task := q.Dequeue()
	if assert.NotNil(t, task) {
		assert.Equal(t, "due", task.Key)
	}
	assert.Nil(t, q.Dequeue())
	assert.Equal(t, 1, q.Size())

	now = now.Add(2 * time.Minute)
	task = q.Dequeue()
	if assert.NotNil(t, task) {
		assert.Equal(t, "later", task.Key)
	}
	assert.Empty(t, q.GetAll())
}

func TestExhausted(t *testing.T) {
	assert.False(t, (&RetryTask{Attempts: 2, MaxAttempts: 3}).Exhausted())
	assert.True(t, (&RetryTask{Attempts: 3, MaxAttempts: 3}).Exhausted())
	assert.False(t, (&RetryTask{Attempts: 10}).Exhausted())
}
