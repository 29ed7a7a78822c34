package pubsub

import (
	"sync"
)

// TopicAll receives every message published on any topic.
const TopicAll = "all"

type subscription[T any] struct {
	id int
	ch chan T
}

// PubSub fans messages out to topic subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the message.
type PubSub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscription[T]
}

func NewPubSub[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]subscription[T]),
	}
}

// Subscribe returns a channel for topic and a function that removes the
// subscription and closes the channel.
func (ps *PubSub[T]) Subscribe(topic string, buffer int) (<-chan T, func()) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.nextID++
	sub := subscription[T]{id: ps.nextID, ch: make(chan T, buffer)}
	ps.subs[topic] = append(ps.subs[topic], sub)

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { ps.unsubscribe(topic, sub.id) })
	}
}

func (ps *PubSub[T]) unsubscribe(topic string, id int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	subs := ps.subs[topic]
	for i, s := range subs {
		if s.id == id {
			close(s.ch)
			ps.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(ps.subs[topic]) == 0 {
		delete(ps.subs, topic)
	}
}

// Publish delivers data to the subscribers of topic and of TopicAll. It
// returns how many subscribers missed the message.
func (ps *PubSub[T]) Publish(topic string, data T) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	dropped := 0
	deliver := func(subs []subscription[T]) {
		for _, s := range subs {
			select {
			case s.ch <- data:
			default:
				dropped++
			}
		}
	}
	deliver(ps.subs[topic])
	if topic != TopicAll {
		deliver(ps.subs[TopicAll])
	}
	return dropped
}
