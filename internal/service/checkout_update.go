package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
)

// UpdateSession replaces the supplied sub-resources and revalidates the
// whole session. The status is recomputed from scratch every time, so
// re-running the same payload yields the same status and the same set of
// error paths.
func (s *CheckoutServiceImpl) UpdateSession(ctx context.Context, input *SessionInput) (*domain.Session, error) {
	session, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		return nil, IllegalTransitionError
	}

	if input.Currency != "" {
		session.Currency = input.Currency
	}

	if input.LineItems != nil {
		lineItems, err := s.buildLineItems(input.LineItems)
		if err != nil {
			return nil, err
		}
		session.LineItems = lineItems
	} else {
		// Quantities must be re-checked against inventory even when the
		// request leaves the line items untouched.
		lineItems, err := s.lineItems.Resolve(session.LineItems)
		if err != nil {
			return nil, err
		}
		session.LineItems = lineItems
	}

	if input.Fulfillment != nil {
		session.Fulfillment = normalizeFulfillment(*input.Fulfillment)
	}
	if input.Payment != nil {
		session.Payment = s.buildPayment(input.Payment)
	}

	session.Recalculate()
	applyOutcome(session, s.revalidate(session))
	session.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	s.invalidateCache(session.ID)

	return session, nil
}
