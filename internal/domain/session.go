package domain

import "time"

// Item is the catalog product referenced by a line item.
// Price is in minor units of the session currency.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

type LineItemTotals struct {
	Subtotal int64 `json:"subtotal"`
}

// LineItem references an Item with a requested quantity.
type LineItem struct {
	ID       string         `json:"id"`
	Item     Item           `json:"item"`
	Quantity int            `json:"quantity"`
	Totals   LineItemTotals `json:"totals"`
}

type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Destination struct {
	ID      string  `json:"id"`
	Address Address `json:"address"`
}

// FulfillmentMethod is one way of delivering the order, e.g. "shipping".
// A method without destinations is an incomplete selection.
type FulfillmentMethod struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	Selected     bool          `json:"selected,omitempty"`
	Destinations []Destination `json:"destinations,omitempty"`
}

type Fulfillment struct {
	Methods []FulfillmentMethod `json:"methods"`
}

// Instrument is a tokenized payment instrument available on the session.
type Instrument struct {
	ID    string `json:"id"`
	Type  string `json:"type,omitempty"`
	Brand string `json:"brand,omitempty"`
	Last4 string `json:"last4,omitempty"`
	Token string `json:"token,omitempty"`
}

// Handler describes a payment processor adapter. Handlers are opaque to the
// session contract and round-trip unmodified.
type Handler map[string]any

type Payment struct {
	SelectedInstrumentID string       `json:"selected_instrument_id,omitempty"`
	Instruments          []Instrument `json:"instruments,omitempty"`
	Handlers             []Handler    `json:"handlers,omitempty"`
}

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Total    int64 `json:"total"`
}

// Session is the aggregate checkout resource. Messages carry every
// unresolved validation error, each scoped by path to the sub-resource
// that raised it.
type Session struct {
	ID          string        `json:"id"`
	Status      SessionStatus `json:"status"`
	Currency    string        `json:"currency"`
	LineItems   []LineItem    `json:"line_items"`
	Fulfillment Fulfillment   `json:"fulfillment"`
	Payment     Payment       `json:"payment"`
	Messages    []Message     `json:"messages,omitempty"`
	Totals      Totals        `json:"totals"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// HasInstrument reports whether the given instrument id belongs to the
// session's available instruments.
func (p Payment) HasInstrument(id string) bool {
	for _, in := range p.Instruments {
		if in.ID == id {
			return true
		}
	}
	return false
}

// SelectedMethod returns the selected fulfillment method, or the only
// method when just one is present and nothing is explicitly selected.
func (f Fulfillment) SelectedMethod() *FulfillmentMethod {
	for i := range f.Methods {
		if f.Methods[i].Selected {
			return &f.Methods[i]
		}
	}
	if len(f.Methods) == 1 {
		return &f.Methods[0]
	}
	return nil
}

// Recalculate refreshes line item subtotals and the session totals.
func (s *Session) Recalculate() {
	var subtotal int64
	for i := range s.LineItems {
		li := &s.LineItems[i]
		li.Totals.Subtotal = li.Item.Price * int64(li.Quantity)
		subtotal += li.Totals.Subtotal
	}
	s.Totals.Subtotal = subtotal
	s.Totals.Total = subtotal
}

// Clone returns a deep copy so a stored session is never aliased by callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s

	cp.LineItems = make([]LineItem, len(s.LineItems))
	copy(cp.LineItems, s.LineItems)

	cp.Fulfillment.Methods = make([]FulfillmentMethod, len(s.Fulfillment.Methods))
	for i, m := range s.Fulfillment.Methods {
		mc := m
		mc.Destinations = make([]Destination, len(m.Destinations))
		copy(mc.Destinations, m.Destinations)
		cp.Fulfillment.Methods[i] = mc
	}

	cp.Payment.Instruments = make([]Instrument, len(s.Payment.Instruments))
	copy(cp.Payment.Instruments, s.Payment.Instruments)
	cp.Payment.Handlers = make([]Handler, len(s.Payment.Handlers))
	for i, h := range s.Payment.Handlers {
		hc := make(Handler, len(h))
		for k, v := range h {
			hc[k] = v
		}
		cp.Payment.Handlers[i] = hc
	}

	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	return &cp
}
