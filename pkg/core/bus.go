package core

import (
	"sync"

	"github.com/google/uuid"
)

// ChangeBus is a broadcast emitter. Every subscriber receives each value
// published after it subscribed, in publish order, on its own channel.
// A new subscriber first receives the latest published value.
//
// Publish never blocks: each subscription buffers values in an unbounded
// queue that a dedicated goroutine drains into the subscriber's channel.
type ChangeBus[T any] struct {
	mu     sync.Mutex
	subs   map[string]*Subscription[T]
	order  []string
	latest T
	closed bool
}

// NewChangeBus creates a bus whose first replayed value is initial.
func NewChangeBus[T any](initial T) *ChangeBus[T] {
	return &ChangeBus[T]{
		subs:   make(map[string]*Subscription[T]),
		latest: initial,
	}
}

// Subscribe registers a new subscriber. On a closed bus the returned
// subscription's channel is already closed.
func (b *ChangeBus[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return closedSubscription[T]()
	}

	sub := newSubscription(b)
	b.subs[sub.ID] = sub
	b.order = append(b.order, sub.ID)
	sub.push(b.latest)
	go sub.pump()
	return sub
}

// Publish records v as the latest value and queues it for every subscriber.
// It is a no-op once the bus is closed.
func (b *ChangeBus[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.latest = v
	for _, id := range b.order {
		b.subs[id].push(v)
	}
}

// Len returns the number of active subscribers.
func (b *ChangeBus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Closed reports whether Close has been called.
func (b *ChangeBus[T]) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close shuts the bus down. Values already queued are still delivered,
// after which every subscriber channel is closed. Idempotent.
func (b *ChangeBus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, id := range b.order {
		b.subs[id].finish()
	}
	b.subs = nil
	b.order = nil
}

func (b *ChangeBus[T]) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[id]; !ok {
		return
	}
	delete(b.subs, id)
	for i, other := range b.order {
		if other == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Subscription is one subscriber's view of a ChangeBus.
// Call Cancel when done reading so the delivery goroutine can exit.
type Subscription[T any] struct {
	// ID identifies the subscription on its bus.
	ID string
	// C delivers values in publish order. It is closed after Cancel, or
	// once the bus is closed and every queued value has been delivered.
	C <-chan T

	bus   *ChangeBus[T]
	out   chan T
	stop  chan struct{}
	mu    sync.Mutex
	cond  *sync.Cond
	queue []T
	done  bool
	once  sync.Once
}

func newSubscription[T any](b *ChangeBus[T]) *Subscription[T] {
	out := make(chan T)
	s := &Subscription[T]{
		ID:   uuid.NewString(),
		C:    out,
		bus:  b,
		out:  out,
		stop: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func closedSubscription[T any]() *Subscription[T] {
	out := make(chan T)
	close(out)
	s := &Subscription[T]{
		ID:   uuid.NewString(),
		C:    out,
		out:  out,
		stop: make(chan struct{}),
		done: true,
	}
	s.cond = sync.NewCond(&s.mu)
	s.once.Do(func() { close(s.stop) })
	return s
}

// Cancel stops delivery, drops queued values and closes C. Idempotent.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		s.done = true
		s.queue = nil
		close(s.stop)
		s.cond.Broadcast()
		s.mu.Unlock()
		if s.bus != nil {
			s.bus.remove(s.ID)
		}
	})
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.queue = append(s.queue, v)
	s.cond.Signal()
}

// finish lets the pump drain what is queued and then close C.
func (s *Subscription[T]) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.cond.Broadcast()
}

func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.done {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.stop:
			return
		}
	}
}
