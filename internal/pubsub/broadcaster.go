// Package pubsub provides a typed multicast channel used for the navigation
// change feed and the current-user feed.
package pubsub

import (
	"errors"
	"sync"
)

// ErrClosed is returned when subscribing to a closed broadcaster.
var ErrClosed = errors.New("broadcaster is closed")

// Options configure a Broadcaster.
type Options struct {
	// Replay makes new subscribers receive the last published value first.
	Replay bool
}

// Broadcaster fans published values out to every open subscription.
// Each subscription receives values in publish order; nothing is dropped
// while it is open.
type Broadcaster[T any] struct {
	replay bool

	mu      sync.Mutex
	subs    map[*Subscription[T]]struct{}
	last    T
	hasLast bool
	closed  bool
}

// New constructs a Broadcaster.
func New[T any](opts Options) *Broadcaster[T] {
	return &Broadcaster[T]{
		replay: opts.Replay,
		subs:   make(map[*Subscription[T]]struct{}),
	}
}

// Subscribe registers a new subscription. Callers must Close it when done.
func (b *Broadcaster[T]) Subscribe() (*Subscription[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &Subscription[T]{
		owner:  b,
		out:    make(chan T),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	if b.replay && b.hasLast {
		sub.enqueue(b.last)
	}
	b.subs[sub] = struct{}{}
	go sub.pump()

	return sub, nil
}

// Publish delivers v to every open subscription.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.last = v
	b.hasLast = true
	for sub := range b.subs {
		sub.enqueue(v)
	}
}

// Last returns the most recently published value.
func (b *Broadcaster[T]) Last() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasLast
}

// Len returns the number of open subscriptions.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscription and rejects future ones.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	subs := make([]*Subscription[T], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[*Subscription[T]]struct{})
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (b *Broadcaster[T]) remove(sub *Subscription[T]) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

// Subscription is one consumer of a Broadcaster.
type Subscription[T any] struct {
	owner *Broadcaster[T]

	mu     sync.Mutex
	queue  []T
	out    chan T
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// C returns the delivery channel. It is closed after Close.
func (s *Subscription[T]) C() <-chan T { return s.out }

// Close unsubscribes. Pending values are discarded.
func (s *Subscription[T]) Close() {
	s.owner.remove(s)
	s.stop()
}

func (s *Subscription[T]) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription[T]) enqueue(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) next() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if len(s.queue) == 0 {
		return zero, false
	}
	v := s.queue[0]
	s.queue[0] = zero
	s.queue = s.queue[1:]
	return v, true
}

func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}

		for {
			v, ok := s.next()
			if !ok {
				break
			}
			select {
			case s.out <- v:
			case <-s.done:
				return
			}
		}
	}
}
