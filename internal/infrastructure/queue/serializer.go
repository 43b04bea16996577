package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
)

// ErrStopped is returned by Do once the serializer's context is cancelled.
var ErrStopped = errors.New("serializer stopped")

// keyLock is a one-slot semaphore shared by every caller of one key.
// refs counts callers holding or waiting for it and is guarded by Serializer.mu.
type keyLock struct {
	sem  chan struct{}
	refs int
}

// Serializer runs calls for the same key one at a time, in arrival order.
// Calls for different keys never wait on each other. Locks exist only while
// a key has callers, so the map stays the size of the in-flight key set.
type Serializer struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	stop  chan struct{}
	log   zerolog.Logger
}

// NewSerializer creates an empty Serializer.
func NewSerializer(log zerolog.Logger) *Serializer {
	return &Serializer{
		locks: make(map[string]*keyLock),
		stop:  make(chan struct{}),
		log:   log,
	}
}

// Start ties the serializer to ctx. Once ctx is cancelled, waiting and new
// Do calls fail with ErrStopped; calls already running finish normally.
func (s *Serializer) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		close(s.stop)
	}()
}

// Do runs fn once no other call for key is running and waits for its result.
// If ctx ends while waiting, Do returns ctx.Err() and fn is never run.
func (s *Serializer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	select {
	case <-s.stop:
		return ErrStopped
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l := s.acquire(key)
	defer s.release(key, l)

	metrics.SerializerWaiting.Inc()
	select {
	case l.sem <- struct{}{}:
		metrics.SerializerWaiting.Dec()
	case <-ctx.Done():
		metrics.SerializerWaiting.Dec()
		return ctx.Err()
	case <-s.stop:
		metrics.SerializerWaiting.Dec()
		return ErrStopped
	}
	defer func() { <-l.sem }()

	err := fn(ctx)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("serialized job failed")
	}
	return err
}

func (s *Serializer) acquire(key string) *keyLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		s.locks[key] = l
		metrics.SerializerActiveKeys.Inc()
	}
	l.refs++
	return l
}

func (s *Serializer) release(key string, l *keyLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
		metrics.SerializerActiveKeys.Dec()
	}
}

// activeKeys reports how many keys currently have callers.
func (s *Serializer) activeKeys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
