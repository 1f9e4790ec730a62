package domain

// OutcomeKind tags a validator result. Validators never abort a request;
// they report one of a closed set of outcomes and the state machine decides
// whether the accumulated annotations escalate to a transport failure.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeSoftFail
	OutcomeHardFail
)

// Outcome is the tagged result of a single validation pass.
// SoftFail carries path-scoped messages that stay embedded in a 2xx body;
// HardFail carries the error that must surface as a non-2xx response.
type Outcome struct {
	Kind     OutcomeKind
	Messages []Message
	Err      error
}

func OK() Outcome {
	return Outcome{Kind: OutcomeOK}
}

func SoftFail(msgs ...Message) Outcome {
	return Outcome{Kind: OutcomeSoftFail, Messages: msgs}
}

func HardFail(err error) Outcome {
	return Outcome{Kind: OutcomeHardFail, Err: err}
}

// MergeOutcomes combines independent validator outcomes. The merge is
// commutative: the most severe kind wins, soft messages are unioned and
// sorted by path, and the first hard error encountered is kept.
func MergeOutcomes(outcomes ...Outcome) Outcome {
	merged := OK()
	for _, o := range outcomes {
		if o.Kind > merged.Kind {
			merged.Kind = o.Kind
		}
		merged.Messages = append(merged.Messages, o.Messages...)
		if merged.Err == nil {
			merged.Err = o.Err
		}
	}
	SortMessages(merged.Messages)
	return merged
}
