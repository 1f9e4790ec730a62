package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
)

// Common errors returned by the repository
var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionExists   = errors.New("checkout session already exists")
	ErrEventNotFound   = errors.New("outbox event not found")
)

// OutboxEvent is a pending integration event written in the same unit of
// work as the session change that produced it.
type OutboxEvent struct {
	ID          string
	AggregateID string // session id, used as the message key for ordering
	EventType   string
	Payload     []byte
	Processed   bool
	CreatedAt   time.Time
}

// SessionRepository stores checkout sessions. Every operation is atomic
// against a single session: a concurrent fetch observes either the pre- or
// post-update state, never a mixture.
type SessionRepository interface {
	// Create stores a new session; ErrSessionExists on id collision.
	Create(ctx context.Context, session *domain.Session) error

	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Update replaces the stored session wholesale.
	Update(ctx context.Context, session *domain.Session) error

	// Complete replaces the session and appends the completion event in one
	// unit of work, so a completed session always has its outbox entry.
	Complete(ctx context.Context, session *domain.Session, event *OutboxEvent) error

	// GetUnprocessedEvents returns up to limit pending outbox events.
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)

	// MarkEventAsProcessed flags a published event.
	MarkEventAsProcessed(ctx context.Context, eventID string) error

	// Close shuts down the repository and any background processes
	Close() error
}
