// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// task 延迟任务. Keyed so that a pending task can be replaced or cancelled
// before it fires.
type task struct {
	key      string
	execute  time.Time
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].execute.Before(q[j].execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	t := x.(*task)
	t.index = n
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[0 : n-1]
	return t
}

// Scheduler runs deferred callbacks identified by key. Scheduling an
// existing key replaces the pending task; Cancel drops it before it fires.
type Scheduler struct {
	queue    taskQueue
	byKey    map[string]*task
	mutex    sync.Mutex
	stopChan chan struct{}
	tick     time.Duration
}

// NewScheduler creates and starts a scheduler. tick bounds how late a task
// may fire past its deadline.
func NewScheduler(tick time.Duration) *Scheduler {
	s := &Scheduler{
		queue:    make(taskQueue, 0),
		byKey:    make(map[string]*task),
		stopChan: make(chan struct{}),
		tick:     tick,
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// Schedule queues callback to run after delay, replacing any pending task
// with the same key.
func (s *Scheduler) Schedule(key string, delay time.Duration, callback func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, exists := s.byKey[key]; exists && old.index >= 0 {
		heap.Remove(&s.queue, old.index)
	}

	t := &task{
		key:      key,
		execute:  time.Now().Add(delay),
		callback: callback,
	}
	s.byKey[key] = t
	heap.Push(&s.queue, t)
}

// Cancel drops the pending task for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if t, exists := s.byKey[key]; exists {
		if t.index >= 0 {
			heap.Remove(&s.queue, t.index)
		}
		delete(s.byKey, key)
	}
}

// Stop shuts down the processing loop. Pending tasks never fire.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// 先收集到期任务, 解锁后再派发. Dispatching under the lock
			// would let a burst of due tasks wedge the loop.
			s.mutex.Lock()
			now := time.Now()
			var due []*task
			for s.queue.Len() > 0 {
				t := s.queue[0]
				if t.execute.After(now) {
					break
				}
				heap.Pop(&s.queue)
				delete(s.byKey, t.key)
				due = append(due, t)
			}
			s.mutex.Unlock()

			for _, t := range due {
				go t.callback()
			}

		case <-s.stopChan:
			return
		}
	}
}
