package session

import (
	"context"
	"sync"
)

// broadcaster fans StoreEvents out to Watch subscribers. Delivery is
// synchronous and best effort, mirroring storage events in the browser
// origin this replaces.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(StoreEvent)
}

func (b *broadcaster) subscribe(fn func(StoreEvent)) (stop func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]func(StoreEvent))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster) publish(event StoreEvent) {
	b.mu.Lock()
	fns := make([]func(StoreEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// MemoryStore is a TokenStore backed by process memory. It is the store of
// choice for tests and for embedding the session service next to an
// in-process UI where durability across restarts is not needed.
type MemoryStore struct {
	mu         sync.RWMutex
	credential string
	present    bool

	events broadcaster
}

var _ TokenStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.present, nil
}

func (s *MemoryStore) Save(_ context.Context, credential string) error {
	s.mu.Lock()
	s.credential = credential
	s.present = true
	s.mu.Unlock()

	s.events.publish(StoreEvent{Credential: credential, Present: true})
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	wasPresent := s.present
	s.credential = ""
	s.present = false
	s.mu.Unlock()

	if wasPresent {
		s.events.publish(StoreEvent{})
	}
	return nil
}

func (s *MemoryStore) Watch(_ context.Context, fn func(StoreEvent)) (func(), error) {
	return s.events.subscribe(fn), nil
}
