package service

import (
	"context"
	"log"
	"sync"

	"github.com/Universal-Commerce-Protocol/conformance/internal/cache"
	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/Universal-Commerce-Protocol/conformance/internal/idempotency"
	"github.com/Universal-Commerce-Protocol/conformance/internal/payment"
	"github.com/Universal-Commerce-Protocol/conformance/internal/repository"
	"github.com/Universal-Commerce-Protocol/conformance/internal/validator"
	"golang.org/x/sync/singleflight"
)

// ItemInput is the client view of a catalog item: the id is authoritative,
// title and price are resolved from the catalog.
type ItemInput struct {
	ID    string
	Title string
}

type LineItemInput struct {
	ID       string
	Item     ItemInput
	Quantity int
}

// SessionInput is a create or update request in domain terms. Nil
// sub-resources on update mean "keep the stored value"; present ones are a
// full replace.
type SessionInput struct {
	ID          string
	Currency    string
	LineItems   []LineItemInput
	Fulfillment *domain.Fulfillment
	Payment     *domain.Payment
}

// CheckoutService owns the session lifecycle and aggregates validator
// outcomes into one overall status.
type CheckoutService interface {
	CreateSession(ctx context.Context, input *SessionInput, idempotencyKey string) (session *domain.Session, created bool, err error)
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	UpdateSession(ctx context.Context, input *SessionInput) (*domain.Session, error)
	CompleteSession(ctx context.Context, id string, instrumentID string) (*domain.Session, error)
}

type CheckoutServiceImpl struct {
	repo        repository.SessionRepository
	cache       cache.SessionCache // optional
	keys        *idempotency.Store // optional
	lineItems   *validator.LineItemValidator
	fulfillment *validator.FulfillmentValidator
	processor   payment.Processor

	// instruments offered on sessions that do not bring their own
	defaultInstruments []domain.Instrument

	sfg singleflight.Group // Prevents cache stampede on fetch
}

func NewCheckoutService(
	repo repository.SessionRepository,
	sessionCache cache.SessionCache,
	keys *idempotency.Store,
	lineItems *validator.LineItemValidator,
	fulfillment *validator.FulfillmentValidator,
	processor payment.Processor,
	defaultInstruments []domain.Instrument,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		repo:               repo,
		cache:              sessionCache,
		keys:               keys,
		lineItems:          lineItems,
		fulfillment:        fulfillment,
		processor:          processor,
		defaultInstruments: defaultInstruments,
	}
}

// revalidate runs both validators against the same session snapshot. They
// write to disjoint sub-resources, so they run concurrently and the merge
// is order-independent.
func (s *CheckoutServiceImpl) revalidate(session *domain.Session) domain.Outcome {
	var liOut, ffOut domain.Outcome

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		liOut = s.lineItems.Validate(session.LineItems)
	}()
	go func() {
		defer wg.Done()
		ffOut = s.fulfillment.Validate(session.Fulfillment)
	}()
	wg.Wait()

	return domain.MergeOutcomes(liOut, ffOut)
}

// applyOutcome recomputes the session status from scratch and replaces the
// message set. Status is "most severe observed", never last-writer-wins.
func applyOutcome(session *domain.Session, out domain.Outcome) {
	session.Messages = out.Messages
	if out.Kind == domain.OutcomeSoftFail {
		session.Status = domain.StatusIncomplete
	} else {
		session.Status = domain.StatusReadyForPayment
	}
}

func (s *CheckoutServiceImpl) invalidateCache(sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.Background(), sessionID); err != nil {
		log.Printf("cache delete error: %v", err)
	}
}
