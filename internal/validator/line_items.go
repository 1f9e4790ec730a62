package validator

import (
	"fmt"

	"github.com/Universal-Commerce-Protocol/conformance/internal/catalog"
	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
)

// LineItemValidator checks requested quantities against catalog inventory.
type LineItemValidator struct {
	catalog catalog.Catalog
}

func NewLineItemValidator(cat catalog.Catalog) *LineItemValidator {
	return &LineItemValidator{catalog: cat}
}

// Validate checks every line item of the session. An unresolvable item id is
// a hard failure (the request cannot form a valid line item at all); a
// quantity above available inventory is a soft failure scoped to that line
// item. Runs on create and on every update, so prior annotations are always
// recomputed rather than patched.
func (v *LineItemValidator) Validate(items []domain.LineItem) domain.Outcome {
	var msgs []domain.Message

	for i, li := range items {
		product, err := v.catalog.Lookup(li.Item.ID)
		if err != nil {
			return domain.HardFail(fmt.Errorf("item %q: %w", li.Item.ID, err))
		}

		if li.Quantity > product.Available {
			msgs = append(msgs, domain.Message{
				Type: domain.MessageTypeError,
				Code: domain.CodeInsufficientStock,
				Path: domain.LineItemPath(i),
				Text: fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
					product.Title, li.Quantity, product.Available),
			})
		}
	}

	if len(msgs) > 0 {
		return domain.SoftFail(msgs...)
	}
	return domain.OK()
}

// Resolve enriches line items with catalog title and price and recomputes
// subtotals. Quantities are left untouched; Validate decides sufficiency.
func (v *LineItemValidator) Resolve(items []domain.LineItem) ([]domain.LineItem, error) {
	resolved := make([]domain.LineItem, len(items))
	for i, li := range items {
		product, err := v.catalog.Lookup(li.Item.ID)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", li.Item.ID, err)
		}
		li.Item.Title = product.Title
		li.Item.Price = product.Price
		li.Totals.Subtotal = product.Price * int64(li.Quantity)
		resolved[i] = li
	}
	return resolved, nil
}
