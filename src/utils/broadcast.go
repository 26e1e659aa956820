package utils

import "sync"

// LatestBroadcaster fans values out to subscribers through capacity-1
// channels. A slow reader only ever sees the newest unread value.
type LatestBroadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	closed bool
}

func NewLatestBroadcaster[T any]() *LatestBroadcaster[T] {
	return &LatestBroadcaster[T]{subs: make(map[int]chan T)}
}

// -----------------------------------------------------------------------------

// Subscribe registers a channel primed with initial. The returned func
// unsubscribes and closes the channel; it is safe to call more than once.
func (b *LatestBroadcaster[T]) Subscribe(initial T) (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	ch <- initial
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
}

// -----------------------------------------------------------------------------

// Publish replaces any unread value of every subscriber with v.
func (b *LatestBroadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel holding only their initial value.
func (b *LatestBroadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Len returns the number of live subscribers.
func (b *LatestBroadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
