package payment

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerProcessor wraps a Processor with a circuit breaker. The processor
// is the one external, side-effecting dependency of the service; declines
// are results and never trip the breaker, only transport errors do.
type BreakerProcessor struct {
	next Processor
	cb   *gobreaker.CircuitBreaker[*Result]
}

func NewBreakerProcessor(next Processor) *BreakerProcessor {
	cb := gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        "payment-processor",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &BreakerProcessor{next: next, cb: cb}
}

func (b *BreakerProcessor) Authorize(ctx context.Context, req AuthorizeRequest) (*Result, error) {
	return b.cb.Execute(func() (*Result, error) {
		return b.next.Authorize(ctx, req)
	})
}
