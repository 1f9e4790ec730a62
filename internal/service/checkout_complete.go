package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/Universal-Commerce-Protocol/conformance/internal/payment"
	"github.com/Universal-Commerce-Protocol/conformance/internal/repository"
	"github.com/google/uuid"
)

// EventTypeCheckoutCompleted is the outbox event emitted on completion.
const EventTypeCheckoutCompleted = "checkout.completed"

// CompleteSession invokes the payment processor with the selected
// instrument and finalizes the session. A processor decline surfaces as
// ErrPaymentDeclined and leaves the session untouched; the client must
// submit a new completion request to retry. The processor call happens on a
// session snapshot, never under a lock on the store.
func (s *CheckoutServiceImpl) CompleteSession(ctx context.Context, id string, instrumentID string) (*domain.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status == domain.StatusIncomplete {
		return nil, ErrSessionNotReady
	}
	if !domain.CanTransitionTo(session.Status, domain.StatusCompleted) {
		return nil, IllegalTransitionError
	}

	if instrumentID == "" {
		instrumentID = session.Payment.SelectedInstrumentID
	}
	instrument, ok := s.resolveInstrument(session, instrumentID)
	if !ok {
		// A selected instrument must belong to the session's instruments.
		return nil, fmt.Errorf("%w: unknown payment instrument %q", ErrPaymentDeclined, instrumentID)
	}

	result, err := s.processor.Authorize(ctx, payment.AuthorizeRequest{
		SessionID:  session.ID,
		Instrument: instrument,
		Amount:     session.Totals.Total,
		Currency:   session.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("payment processor: %w", err)
	}
	if result.Declined {
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.Reason)
	}

	session.Status = domain.StatusCompleted
	session.Payment.SelectedInstrumentID = instrumentID
	session.Messages = nil
	session.UpdatedAt = time.Now()

	event, err := completionEvent(session, result.TransactionID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Complete(ctx, session, event); err != nil {
		return nil, fmt.Errorf("failed to store completed session: %w", err)
	}
	s.invalidateCache(session.ID)

	return session, nil
}

// resolveInstrument returns the instrument with the given id from the
// session's instruments, falling back to the seeded defaults.
func (s *CheckoutServiceImpl) resolveInstrument(session *domain.Session, instrumentID string) (domain.Instrument, bool) {
	for _, in := range session.Payment.Instruments {
		if in.ID == instrumentID {
			return in, true
		}
	}
	for _, in := range s.defaultInstruments {
		if in.ID == instrumentID {
			return in, true
		}
	}
	return domain.Instrument{}, false
}

func completionEvent(session *domain.Session, transactionID string) (*repository.OutboxEvent, error) {
	payload := map[string]interface{}{
		"checkout_id":    session.ID,
		"transaction_id": transactionID,
		"currency":       session.Currency,
		"line_items":     session.LineItems,
		"total_amount":   session.Totals.Total,
		"completed_at":   session.UpdatedAt,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout payload: %w", err)
	}

	return &repository.OutboxEvent{
		ID:          uuid.New().String(),
		AggregateID: session.ID,
		EventType:   EventTypeCheckoutCompleted,
		Payload:     payloadJSON,
		CreatedAt:   time.Now(),
	}, nil
}
