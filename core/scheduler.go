package core

import "sync/atomic"

// sleeper is a thread blocked until its wake tick
type sleeper struct {
	wake   int64
	signal wakeSignal
	next   *sleeper
}

// SleepQueue is a WakeupRegistry that keeps sleepers sorted by wake tick
type SleepQueue struct {
	intr     InterruptController
	lock     queueLock
	head     *sleeper
	count    int
	released atomic.Uint32
}

// NewSleepQueue creates an empty sleep queue
func NewSleepQueue(intr InterruptController) *SleepQueue {
	return &SleepQueue{intr: intr}
}

// RegisterWakeup adds the caller to the queue and blocks until ReleaseDue
// passes wake. There is no way to cancel a registered sleep.
func (q *SleepQueue) RegisterWakeup(wake int64) {
	s := &sleeper{wake: wake, signal: newWakeSignal()}

	state := q.intr.Disable()
	q.lock.lock()
	q.insert(s)
	q.lock.unlock()
	q.intr.Restore(state)

	s.signal.wait()
}

// insert adds s in sorted order by wake tick, after sleepers with the same tick
func (q *SleepQueue) insert(s *sleeper) {
	q.count++
	if q.head == nil || s.wake < q.head.wake {
		s.next = q.head
		q.head = s
		return
	}

	current := q.head
	for current.next != nil && current.next.wake <= s.wake {
		current = current.next
	}

	s.next = current.next
	current.next = s
}

// ReleaseDue wakes every sleeper with wake tick <= now.
// Runs in interrupt context: no allocation, no blocking.
func (q *SleepQueue) ReleaseDue(now int64) {
	q.lock.lock()
	for q.head != nil && q.head.wake <= now {
		s := q.head
		q.head = s.next
		s.next = nil // Clear Next pointer to avoid retaining the list
		q.count--
		q.released.Add(1)
		s.signal.fire()
	}
	q.lock.unlock()
}

// Len returns the number of sleeping threads
func (q *SleepQueue) Len() int {
	state := q.intr.Disable()
	q.lock.lock()
	n := q.count
	q.lock.unlock()
	q.intr.Restore(state)
	return n
}

// NextWake returns the earliest wake tick, if any thread sleeps
func (q *SleepQueue) NextWake() (int64, bool) {
	state := q.intr.Disable()
	q.lock.lock()
	defer func() {
		q.lock.unlock()
		q.intr.Restore(state)
	}()
	if q.head == nil {
		return 0, false
	}
	return q.head.wake, true
}

// Released returns the total number of sleepers woken
func (q *SleepQueue) Released() uint32 {
	return q.released.Load()
}
