package backend

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrChannelClosed is returned by Receiver.Recv once every sender has been
	// closed and the queue is drained, and by Sender.Send on a closed handle.
	ErrChannelClosed = errors.New("channel closed")
	// ErrPeerClosed is returned by Sender.Send after the receiving end has been
	// closed. It signals a lifecycle fault rather than a runtime condition.
	ErrPeerClosed = errors.New("receiver closed")
)

// queue is the shared buffer behind a Sender/Receiver pair. ready holds at
// most one wake-up token; receivers re-check the buffer after every wake-up.
type queue[T any] struct {
	mu         sync.Mutex
	items      []T
	senders    int
	recvClosed bool
	ready      chan struct{}
}

// NewChannel returns the two ends of an unbounded FIFO queue. Sending never
// blocks. The channel closes when every Sender handle (the original and its
// clones) has been closed.
func NewChannel[T any]() (*Sender[T], *Receiver[T]) {
	q := &queue[T]{senders: 1, ready: make(chan struct{}, 1)}
	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

func (q *queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Sender is the producing end of a channel. A handle may be shared between
// goroutines; use Clone when an independent producer needs its own lifetime.
type Sender[T any] struct {
	q      *queue[T]
	mu     sync.Mutex
	closed bool
}

// Send enqueues v without blocking.
func (s *Sender[T]) Send(v T) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}

	q := s.q
	q.mu.Lock()
	if q.recvClosed {
		q.mu.Unlock()
		return ErrPeerClosed
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.signal()
	return nil
}

// Clone returns a new handle that keeps the channel open until it is closed
// too. Cloning a closed handle yields another closed handle.
func (s *Sender[T]) Clone() *Sender[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &Sender[T]{q: s.q, closed: true}
	}
	s.q.mu.Lock()
	s.q.senders++
	s.q.mu.Unlock()
	return &Sender[T]{q: s.q}
}

// Close releases this handle. Closing an already closed handle is a no-op.
func (s *Sender[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	q := s.q
	q.mu.Lock()
	q.senders--
	q.mu.Unlock()
	q.signal()
}

// Receiver is the consuming end of a channel.
type Receiver[T any] struct {
	q *queue[T]
}

// Recv suspends until a value is available, the channel is closed and
// drained (ErrChannelClosed), or ctx is done.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	q := r.q
	for {
		q.mu.Lock()
		if v, ok := q.popLocked(); ok {
			q.mu.Unlock()
			return v, nil
		}
		if q.senders <= 0 {
			q.mu.Unlock()
			// Pass the token on so any other waiter observes the close too.
			q.signal()
			return zero, ErrChannelClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.ready:
		}
	}
}

// TryRecv returns the oldest queued value without waiting. ok is false when
// nothing is queued.
func (r *Receiver[T]) TryRecv() (v T, ok bool) {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Len reports how many values are queued.
func (r *Receiver[T]) Len() int {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Closed reports whether every sender has closed. Values may still be queued.
func (r *Receiver[T]) Closed() bool {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.senders <= 0
}

// Close drops the receiving end. Queued values are discarded and further
// sends fail with ErrPeerClosed.
func (r *Receiver[T]) Close() {
	q := r.q
	q.mu.Lock()
	q.recvClosed = true
	q.items = nil
	q.mu.Unlock()
}

// popLocked must be called with q.mu held.
func (q *queue[T]) popLocked() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	} else {
		q.signal()
	}
	return v, true
}
