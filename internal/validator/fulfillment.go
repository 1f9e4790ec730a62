package validator

import (
	"fmt"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
)

// FulfillmentValidator checks that a shippable selection has been made.
type FulfillmentValidator struct{}

func NewFulfillmentValidator() *FulfillmentValidator {
	return &FulfillmentValidator{}
}

// Validate reports a soft failure when fulfillment is absent or any method
// lacks destinations. Errors are scoped to the offending method, not the
// whole session: the request stays structurally valid and the caller gets
// guidance embedded in the 2xx body.
func (v *FulfillmentValidator) Validate(f domain.Fulfillment) domain.Outcome {
	if len(f.Methods) == 0 {
		return domain.SoftFail(domain.Message{
			Type: domain.MessageTypeError,
			Code: domain.CodeMissingFulfillment,
			Path: domain.MethodsPath(),
			Text: "no fulfillment method selected",
		})
	}

	var msgs []domain.Message
	for _, m := range f.Methods {
		if len(m.Destinations) == 0 {
			msgs = append(msgs, domain.Message{
				Type: domain.MessageTypeError,
				Code: domain.CodeMissingDestination,
				Path: domain.MethodDestinationsPath(m.ID),
				Text: fmt.Sprintf("fulfillment method %q has no destination", m.Type),
			})
		}
	}

	if len(msgs) > 0 {
		return domain.SoftFail(msgs...)
	}
	return domain.OK()
}
