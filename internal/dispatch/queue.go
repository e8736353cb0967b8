package dispatch

import (
	"context"
	"sync"
)

// Task is one independently-failable unit of work.
type Task func(ctx context.Context) error

// Supply yields pending units. Next returns false once no work remains and
// must keep returning false afterwards.
type Supply interface {
	Next() (Task, bool)
}

// SupplyFunc adapts a function to Supply. Run serializes claims, so the
// function need not synchronize itself.
type SupplyFunc func() (Task, bool)

// Queue is an ordered task buffer drained through an index cursor.
// Claimed tasks stay in the buffer; only the cursor moves.
type Queue struct {
	mu    sync.Mutex
	tasks []Task
	next  int
}

// NewQueue creates a queue holding tasks in order.
func NewQueue(tasks ...Task) *Queue {
	return &Queue{tasks: append([]Task(nil), tasks...)}
}

// Push appends tasks to the end of the queue.
func (q *Queue) Push(tasks ...Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, tasks...)
}

// Next claims the next unclaimed task.
func (q *Queue) Next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next >= len(q.tasks) {
		return nil, false
	}
	t := q.tasks[q.next]
	q.next++
	return t, true
}

// Len returns the total number of tasks ever pushed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Remaining returns the number of tasks not yet claimed.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks) - q.next
}

// Next implements Supply.
func (f SupplyFunc) Next() (Task, bool) {
	return f()
}
