package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/Universal-Commerce-Protocol/conformance/internal/idempotency"
	"github.com/google/uuid"
)

// CreateSession builds a session from the request, resolves every item
// against the catalog and runs both validators. Business-rule violations
// leave the session incomplete but never fail the request; only an
// unresolvable item reference does.
func (s *CheckoutServiceImpl) CreateSession(ctx context.Context, input *SessionInput, idempotencyKey string) (*domain.Session, bool, error) {
	if existing, ok := s.replayedSession(ctx, idempotencyKey); ok {
		return existing, false, nil
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New().String(),
		Currency:  input.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if session.Currency == "" {
		session.Currency = "USD"
	}

	lineItems, err := s.buildLineItems(input.LineItems)
	if err != nil {
		return nil, false, err
	}
	session.LineItems = lineItems

	if input.Fulfillment != nil {
		session.Fulfillment = normalizeFulfillment(*input.Fulfillment)
	}
	session.Payment = s.buildPayment(input.Payment)
	session.Recalculate()

	applyOutcome(session, s.revalidate(session))

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, false, fmt.Errorf("failed to store session: %w", err)
	}

	if replayed, ok := s.recordIdempotencyKey(ctx, idempotencyKey, session.ID); ok {
		return replayed, false, nil
	}

	return session, true, nil
}

// replayedSession returns the previously created session for the key, if any.
func (s *CheckoutServiceImpl) replayedSession(ctx context.Context, key string) (*domain.Session, bool) {
	if s.keys == nil || key == "" {
		return nil, false
	}

	sessionID, err := s.keys.Get(key)
	if errors.Is(err, idempotency.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		log.Printf("idempotency lookup error: %v", err)
		return nil, false
	}

	// This checkout already exists, return the cached result
	log.Printf("duplicate create detected idempotency_key = %v with checkout_id = %v", key, sessionID)
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		log.Printf("failed to load session %v for idempotency key: %v", sessionID, err)
		return nil, false
	}
	return session, true
}

// recordIdempotencyKey stores the key → session mapping. A concurrent create
// with the same key may have won the race; in that case the winner's session
// is returned instead.
func (s *CheckoutServiceImpl) recordIdempotencyKey(ctx context.Context, key, sessionID string) (*domain.Session, bool) {
	if s.keys == nil || key == "" {
		return nil, false
	}

	stored, err := s.keys.Put(key, sessionID)
	if err != nil {
		log.Printf("idempotency store error: %v", err)
		return nil, false
	}
	if stored == sessionID {
		return nil, false
	}

	winner, err := s.GetSession(ctx, stored)
	if err != nil {
		log.Printf("failed to load winning session %v: %v", stored, err)
		return nil, false
	}
	return winner, true
}

func (s *CheckoutServiceImpl) buildLineItems(inputs []LineItemInput) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, len(inputs))
	for i, in := range inputs {
		id := in.ID
		if id == "" {
			id = uuid.New().String()
		}
		items[i] = domain.LineItem{
			ID:       id,
			Item:     domain.Item{ID: in.Item.ID, Title: in.Item.Title},
			Quantity: in.Quantity,
		}
	}
	return s.lineItems.Resolve(items)
}

func (s *CheckoutServiceImpl) buildPayment(input *domain.Payment) domain.Payment {
	var p domain.Payment
	if input != nil {
		p = *input
	}
	if len(p.Instruments) == 0 {
		p.Instruments = append([]domain.Instrument(nil), s.defaultInstruments...)
	}
	return p
}

// normalizeFulfillment assigns server-side ids to methods and destinations
// that arrive without one, so errors can be scoped to them by id.
func normalizeFulfillment(f domain.Fulfillment) domain.Fulfillment {
	for i := range f.Methods {
		if f.Methods[i].ID == "" {
			f.Methods[i].ID = uuid.New().String()
		}
		for j := range f.Methods[i].Destinations {
			if f.Methods[i].Destinations[j].ID == "" {
				f.Methods[i].Destinations[j].ID = uuid.New().String()
			}
		}
	}
	return f
}
