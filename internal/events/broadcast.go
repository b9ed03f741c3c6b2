package events

import "sync"

// Broadcaster hands events to any number of subscribers, for example server
// sent event streams. Slow subscribers lose events instead of blocking the
// others.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	size   int
}

func NewBroadcaster(size int) *Broadcaster {
	if size <= 0 {
		size = 64
	}
	return &Broadcaster{subs: map[int]chan Event{}, size: size}
}

// Subscribe returns a channel of events and a function that unsubscribes
// and closes it.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.size)
	b.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Broadcaster) Send(e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
