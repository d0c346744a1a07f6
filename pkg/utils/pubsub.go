package utils

import (
	"github.com/sasha-s/go-deadlock"
)

const DEFAULT_TOPIC_BUFFER = 64

// Topic fans values out to every subscriber. Publish never blocks: a
// subscriber whose buffer is full misses the value and its drop counter is
// incremented instead.
type Topic[T any] struct {
	subscribers map[*Subscriber[T]]struct{}
	mutex       deadlock.Mutex
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subscribers: make(map[*Subscriber[T]]struct{}),
	}
}

func (t *Topic[T]) Publish(value T) {
	t.mutex.Lock()
	for subscriber := range t.subscribers {
		select {
		case subscriber.channel <- value:
		default:
			subscriber.dropped++
		}
	}
	t.mutex.Unlock()
}

func (t *Topic[T]) NumSubscribers() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.subscribers)
}

type Subscriber[T any] struct {
	channel chan T
	topic   *Topic[T]
	dropped int
}

func (t *Topic[T]) Subscribe() *Subscriber[T] {
	return t.SubscribeBuffered(DEFAULT_TOPIC_BUFFER)
}

func (t *Topic[T]) SubscribeBuffered(size int) *Subscriber[T] {
	subscriber := &Subscriber[T]{
		channel: make(chan T, size),
		topic:   t,
	}
	t.mutex.Lock()
	t.subscribers[subscriber] = struct{}{}
	t.mutex.Unlock()

	return subscriber
}

func (s *Subscriber[T]) Recv() <-chan T {
	return s.channel
}

// Dropped reports how many values this subscriber missed because its
// buffer was full.
func (s *Subscriber[T]) Dropped() int {
	s.topic.mutex.Lock()
	defer s.topic.mutex.Unlock()
	return s.dropped
}

func (s *Subscriber[T]) Done() {
	topic := s.topic
	topic.mutex.Lock()
	delete(topic.subscribers, s)
	topic.mutex.Unlock()
}
