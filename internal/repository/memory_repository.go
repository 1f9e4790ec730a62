package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
)

const (
	// EventRetention is how long processed outbox events are kept
	EventRetention = time.Hour

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = time.Minute
)

// MemoryRepository implements SessionRepository with in-memory storage
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	events   []*OutboxEvent

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

// NewMemoryRepository creates a new in-memory session repository
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{
		sessions:    make(map[string]*domain.Session),
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// cleanupLoop periodically drops processed outbox events past retention
func (r *MemoryRepository) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.dropStaleEvents()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *MemoryRepository) dropStaleEvents() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-EventRetention)
	kept := r.events[:0]
	for _, e := range r.events {
		if !e.Processed || e.CreatedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	r.events = kept
}

func (r *MemoryRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return ErrSessionExists
	}
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; !exists {
		return ErrSessionNotFound
	}
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *MemoryRepository) Complete(_ context.Context, session *domain.Session, event *OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; !exists {
		return ErrSessionNotFound
	}
	r.sessions[session.ID] = session.Clone()

	ec := *event
	r.events = append(r.events, &ec)
	return nil
}

func (r *MemoryRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*OutboxEvent, 0, limit)
	for _, e := range r.events {
		if e.Processed {
			continue
		}
		ec := *e
		result = append(result, &ec)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *MemoryRepository) MarkEventAsProcessed(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.ID == eventID {
			e.Processed = true
			return nil
		}
	}
	return ErrEventNotFound
}

// Close stops the background cleanup and waits for it to finish
func (r *MemoryRepository) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}
