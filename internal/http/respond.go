package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Universal-Commerce-Protocol/conformance/internal/catalog"
	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/Universal-Commerce-Protocol/conformance/internal/repository"
	"github.com/Universal-Commerce-Protocol/conformance/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// escalationResponse is the structured body of a session-not-found
// response: a 404 still carries a session-shaped status and messages.
type escalationResponse struct {
	Status   domain.SessionStatus `json:"status"`
	Messages []domain.Message     `json:"messages"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the error taxonomy onto wire responses:
// reference errors and payment declines are transport-level failures,
// everything soft stays inside 2xx bodies and never reaches this point.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusBadRequest, "product_not_found", err.Error())
	case errors.Is(err, repository.ErrSessionNotFound):
		respondJSON(w, http.StatusNotFound, escalationResponse{
			Status: domain.StatusRequiresEscalation,
			Messages: []domain.Message{{
				Type: domain.MessageTypeError,
				Code: domain.CodeRequiresEscalation,
				Text: "checkout session not found",
			}},
		})
	case errors.Is(err, service.ErrPaymentDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", err.Error())
	case errors.Is(err, service.ErrSessionNotReady):
		respondError(w, http.StatusConflict, "session_not_ready", err.Error())
	case errors.Is(err, service.IllegalTransitionError):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
