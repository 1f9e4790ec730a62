package payment

import (
	"context"
	"fmt"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/google/uuid"
)

// Sentinel instrument used by conformance runs to force the decline path
// deterministically.
const (
	FailingInstrumentID = "instr_fail"
	FailingToken        = "fail_token"
)

// AuthorizeRequest carries everything the processor needs for one charge.
type AuthorizeRequest struct {
	SessionID  string
	Instrument domain.Instrument
	Amount     int64
	Currency   string
}

// Result is the processor outcome. A decline is a business result, not a Go
// error; errors are reserved for the processor itself being unreachable.
type Result struct {
	TransactionID string
	Declined      bool
	Reason        string
}

// Processor charges a selected payment instrument.
type Processor interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*Result, error)
}

// Decider lets tests force a specific charge outcome.
type Decider interface {
	Decide(instrument domain.Instrument) (declined bool, reason string)
}

// SentinelDecider declines the designated failing instrument and approves
// everything else.
type SentinelDecider struct{}

func (SentinelDecider) Decide(instrument domain.Instrument) (bool, string) {
	if instrument.ID == FailingInstrumentID || instrument.Token == FailingToken {
		return true, "instrument declined by issuer"
	}
	return false, ""
}

// StubProcessor is the in-process payment boundary.
type StubProcessor struct {
	decider Decider
}

func NewStubProcessor(d Decider) *StubProcessor {
	return &StubProcessor{decider: d}
}

func (p *StubProcessor) Authorize(ctx context.Context, req AuthorizeRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	declined, reason := p.decider.Decide(req.Instrument)
	if declined {
		return &Result{Declined: true, Reason: reason}, nil
	}

	return &Result{
		TransactionID: fmt.Sprintf("TXN-%s", uuid.New().String()),
	}, nil
}
