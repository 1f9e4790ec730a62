package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/Universal-Commerce-Protocol/conformance/internal/service"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	service     service.CheckoutService
	maxBodySize int64
}

func NewCheckoutHandler(svc service.CheckoutService, maxBodySize int64) *CheckoutHandler {
	return &CheckoutHandler{
		service:     svc,
		maxBodySize: maxBodySize,
	}
}

type itemDTO struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type lineItemDTO struct {
	ID       string  `json:"id,omitempty"`
	Item     itemDTO `json:"item"`
	Quantity *int    `json:"quantity,omitempty"`
}

type sessionRequestDTO struct {
	ID          string              `json:"id,omitempty"`
	Currency    string              `json:"currency,omitempty"`
	LineItems   []lineItemDTO       `json:"line_items,omitempty"`
	Fulfillment *domain.Fulfillment `json:"fulfillment,omitempty"`
	Payment     *domain.Payment     `json:"payment,omitempty"`
}

type completeRequestDTO struct {
	Payment *struct {
		SelectedInstrumentID string `json:"selected_instrument_id,omitempty"`
	} `json:"payment,omitempty"`
	SelectedInstrumentID string `json:"selected_instrument_id,omitempty"`
}

func (d *sessionRequestDTO) toInput() *service.SessionInput {
	input := &service.SessionInput{
		ID:          d.ID,
		Currency:    d.Currency,
		Fulfillment: d.Fulfillment,
		Payment:     d.Payment,
	}
	if d.LineItems != nil {
		input.LineItems = make([]service.LineItemInput, len(d.LineItems))
		for i, li := range d.LineItems {
			quantity := 1
			if li.Quantity != nil {
				quantity = *li.Quantity
			}
			input.LineItems[i] = service.LineItemInput{
				ID:       li.ID,
				Item:     service.ItemInput{ID: li.Item.ID, Title: li.Item.Title},
				Quantity: quantity,
			}
		}
	}
	return input
}

func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}
	if err := validateBody(createSchema, body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var dto sessionRequestDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, created, err := h.service.CreateSession(r.Context(), dto.toInput(), r.Header.Get("Idempotency-Key"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if !created {
		// idempotency key replay
		status = http.StatusOK
	}
	respondJSON(w, status, session)
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}
	if err := validateBody(updateSchema, body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var dto sessionRequestDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	if dto.ID != "" && dto.ID != id {
		respondError(w, http.StatusBadRequest, "id_mismatch", "session id in body does not match URL")
		return
	}

	input := dto.toInput()
	input.ID = id

	session, err := h.service.UpdateSession(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	var instrumentID string
	if len(body) > 0 {
		if err := validateBody(completeSchema, body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		var dto completeRequestDTO
		if err := json.Unmarshal(body, &dto); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
		instrumentID = dto.SelectedInstrumentID
		if dto.Payment != nil && dto.Payment.SelectedInstrumentID != "" {
			instrumentID = dto.Payment.SelectedInstrumentID
		}
	}

	session, err := h.service.CompleteSession(r.Context(), chi.URLParam(r, "id"), instrumentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}
