package comms

import (
	"container/heap"
	"sync"
	"time"
)

// entry pairs a queued message with its insertion sequence number so that
// equal-priority messages dequeue in arrival order.
type entry struct {
	msg Message
	seq uint64
}

// entryHeap orders entries by priority descending, then sequence ascending.
// It implements heap.Interface.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].msg.Priority != h[j].msg.Priority {
		return h[i].msg.Priority > h[j].msg.Priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// inbox is one recipient's priority queue. It is safe for concurrent push
// and pop; ordering holds under concurrent senders because sequence numbers
// are assigned under the inbox lock.
type inbox struct {
	mu      sync.Mutex
	entries entryHeap
	nextSeq uint64
	waiters []chan struct{}
}

func newInbox() *inbox {
	return &inbox{}
}

// push enqueues a message and wakes one waiting receiver, if any.
func (in *inbox) push(msg Message) {
	in.mu.Lock()
	heap.Push(&in.entries, entry{msg: msg, seq: in.nextSeq})
	in.nextSeq++

	var waiter chan struct{}
	if len(in.waiters) > 0 {
		waiter = in.waiters[0]
		in.waiters = in.waiters[1:]
	}
	in.mu.Unlock()

	if waiter != nil {
		close(waiter)
	}
}

// pop dequeues the highest-priority message, blocking up to timeout.
// A zero or negative timeout blocks indefinitely. Messages found expired at
// dequeue time are discarded and the read retried against the remaining
// deadline. Returns (zero, false) on timeout.
func (in *inbox) pop(timeout time.Duration) (Message, bool) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		in.mu.Lock()
		if in.entries.Len() > 0 {
			e := heap.Pop(&in.entries).(entry)
			in.mu.Unlock()
			if e.msg.IsExpired(time.Now()) {
				continue
			}
			return e.msg, true
		}

		waiter := make(chan struct{})
		in.waiters = append(in.waiters, waiter)
		in.mu.Unlock()

		if !in.await(waiter, deadline) {
			return Message{}, false
		}
	}
}

// await blocks until the waiter is signaled or the deadline passes.
// Returns false on deadline expiry, removing the waiter from the queue.
func (in *inbox) await(waiter chan struct{}, deadline time.Time) bool {
	if deadline.IsZero() {
		<-waiter
		return true
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		in.removeWaiter(waiter)
		return false
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-waiter:
		return true
	case <-timer.C:
		in.removeWaiter(waiter)
		return false
	}
}

// removeWaiter drops a timed-out waiter. If the waiter was already signaled
// (its slot is gone), the signal is passed on to the next waiter so a
// concurrent push is not lost.
func (in *inbox) removeWaiter(waiter chan struct{}) {
	in.mu.Lock()
	for i, w := range in.waiters {
		if w == waiter {
			in.waiters = append(in.waiters[:i], in.waiters[i+1:]...)
			in.mu.Unlock()
			return
		}
	}

	// Already signaled: hand the wakeup to the next waiter, if any.
	var next chan struct{}
	if len(in.waiters) > 0 {
		next = in.waiters[0]
		in.waiters = in.waiters[1:]
	}
	in.mu.Unlock()

	if next != nil {
		close(next)
	}
}

// size returns the number of queued messages, including any that have
// expired but not yet been discarded by a pop.
func (in *inbox) size() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.entries.Len()
}
