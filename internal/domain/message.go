package domain

import (
	"fmt"
	"sort"
)

// MessageType classifies a message attached to a session
type MessageType string

const (
	MessageTypeError   MessageType = "error"
	MessageTypeWarning MessageType = "warning"
)

// Message codes attached by the validators and the state machine.
const (
	CodeInsufficientStock  = "insufficient_stock"
	CodeMissingDestination = "missing_fulfillment_destination"
	CodeMissingFulfillment = "missing_fulfillment_method"
	CodeRequiresEscalation = "requires_escalation"
)

// Message is a structured error or warning scoped to a sub-resource of the
// session. Path is a JSONPath-like pointer into the session body, e.g.
// "$.line_items[0]" or "$.fulfillment.methods[?(@.id=='m1')].destinations".
type Message struct {
	Type MessageType `json:"type"`
	Code string      `json:"code"`
	Path string      `json:"path,omitempty"`
	Text string      `json:"text"`
}

// LineItemPath points at the line item with the given position.
func LineItemPath(index int) string {
	return fmt.Sprintf("$.line_items[%d]", index)
}

// MethodDestinationsPath points at the destinations of a fulfillment method.
func MethodDestinationsPath(methodID string) string {
	return fmt.Sprintf("$.fulfillment.methods[?(@.id=='%s')].destinations", methodID)
}

// MethodsPath points at the fulfillment method collection.
func MethodsPath() string {
	return "$.fulfillment.methods"
}

// SortMessages orders messages by path then code so that merged validator
// output is deterministic regardless of merge order.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Path != msgs[j].Path {
			return msgs[i].Path < msgs[j].Path
		}
		return msgs[i].Code < msgs[j].Code
	})
}
