package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Universal-Commerce-Protocol/conformance/internal/catalog"
	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/Universal-Commerce-Protocol/conformance/internal/payment"
	"github.com/Universal-Commerce-Protocol/conformance/internal/repository"
	"github.com/Universal-Commerce-Protocol/conformance/internal/service"
	"github.com/Universal-Commerce-Protocol/conformance/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	cat := catalog.NewMemoryCatalog()
	cat.SetProduct(catalog.Product{ID: "sku-1", Title: "Widget", Price: 1299, Available: 10})
	cat.SetProduct(catalog.Product{ID: "out_of_stock_item_1", Title: "Out of Stock Item", Price: 500, Available: 0})

	repo := repository.NewMemoryRepository()
	t.Cleanup(func() { repo.Close() })

	svc := service.NewCheckoutService(
		repo,
		nil,
		nil,
		validator.NewLineItemValidator(cat),
		validator.NewFulfillmentValidator(),
		payment.NewStubProcessor(payment.SentinelDecider{}),
		[]domain.Instrument{
			{ID: "instr_visa", Type: "card", Brand: "visa", Last4: "4242", Token: "tok_ok"},
			{ID: payment.FailingInstrumentID, Type: "card", Brand: "visa", Last4: "0341", Token: payment.FailingToken},
		},
	)

	handler := NewCheckoutHandler(svc, 1<<20)
	return NewRouter(handler, 30*time.Second)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) *domain.Session {
	t.Helper()
	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return &session
}

func createPayload(itemID, title string) map[string]any {
	return map[string]any{
		"currency": "USD",
		"line_items": []map[string]any{
			{"item": map[string]any{"id": itemID, "title": title}, "quantity": 1},
		},
		"fulfillment": map[string]any{
			"methods": []map[string]any{
				{"type": "shipping", "selected": true, "destinations": []map[string]any{
					{"address": map[string]any{"line1": "1 Main St", "city": "Springfield", "country": "US"}},
				}},
			},
		},
	}
}

func createSession(t *testing.T, router http.Handler) *domain.Session {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions", createPayload("sku-1", "Widget"))
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeSession(t, rec)
}

func TestCreateSession_ReadyForPayment(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions", createPayload("sku-1", "Widget"))
	require.Equal(t, http.StatusCreated, rec.Code)

	session := decodeSession(t, rec)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.StatusReadyForPayment, session.Status)
	assert.Empty(t, session.Messages)
	assert.Equal(t, int64(1299), session.Totals.Total)
}

func TestCreateSession_OutOfStock(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions",
		createPayload("out_of_stock_item_1", "Out of Stock Item"))
	require.Equal(t, http.StatusCreated, rec.Code)

	session := decodeSession(t, rec)
	assert.Equal(t, domain.StatusIncomplete, session.Status)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "$.line_items[0]", session.Messages[0].Path)
	assert.Contains(t, session.Messages[0].Text, "insufficient stock")
}

func TestCreateSession_ProductNotFound(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions",
		createPayload("non_existent_item_1", "Non-existent Item"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, strings.ToLower(rec.Body.String()), "not found")
	assert.NotContains(t, rec.Body.String(), `"line_items"`)
}

func TestCreateSession_SchemaViolation(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions", map[string]any{
		"currency": "USD",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/checkout-sessions", map[string]any{
		"line_items": []map[string]any{
			{"item": map[string]any{"id": "sku-1"}, "quantity": -1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSession_IdempotencyReplayReturns200(t *testing.T) {
	router := setupRouter(t)
	// Without a configured key store the header is ignored and both
	// requests create fresh sessions.
	payload := createPayload("sku-1", "Widget")

	first := doRequest(t, router, http.MethodPost, "/checkout-sessions", payload)
	second := doRequest(t, router, http.MethodPost, "/checkout-sessions", payload)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.NotEqual(t, decodeSession(t, first).ID, decodeSession(t, second).ID)
}

func TestGetSession(t *testing.T) {
	router := setupRouter(t)
	created := createSession(t, router)

	rec := doRequest(t, router, http.MethodGet, "/checkout-sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeSession(t, rec).ID)
}

func TestGetSession_NotFound(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/checkout-sessions/non-existent-session-id", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body escalationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.StatusRequiresEscalation, body.Status)
	require.NotEmpty(t, body.Messages)
	assert.Contains(t, body.Messages[0].Text, "not found")
}

func TestUpdateSession_ExcessiveQuantity(t *testing.T) {
	router := setupRouter(t)
	created := createSession(t, router)

	rec := doRequest(t, router, http.MethodPut, "/checkout-sessions/"+created.ID, map[string]any{
		"id":       created.ID,
		"currency": created.Currency,
		"line_items": []map[string]any{
			{
				"id":       created.LineItems[0].ID,
				"item":     map[string]any{"id": created.LineItems[0].Item.ID, "title": created.LineItems[0].Item.Title},
				"quantity": 10001,
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec)
	assert.Equal(t, domain.StatusIncomplete, session.Status)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "$.line_items[0]", session.Messages[0].Path)
}

func TestUpdateSession_EmptyFulfillmentMethod(t *testing.T) {
	router := setupRouter(t)
	created := createSession(t, router)

	rec := doRequest(t, router, http.MethodPut, "/checkout-sessions/"+created.ID, map[string]any{
		"fulfillment": map[string]any{
			"methods": []map[string]any{{"type": "shipping"}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec)
	assert.Equal(t, domain.StatusIncomplete, session.Status)

	methodID := session.Fulfillment.Methods[0].ID
	require.NotEmpty(t, methodID)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, domain.MethodDestinationsPath(methodID), session.Messages[0].Path)
}

func TestUpdateSession_Idempotent(t *testing.T) {
	router := setupRouter(t)
	created := createSession(t, router)

	payload := map[string]any{
		"line_items": []map[string]any{
			{"id": created.LineItems[0].ID, "item": map[string]any{"id": "sku-1"}, "quantity": 10001},
		},
	}

	first := doRequest(t, router, http.MethodPut, "/checkout-sessions/"+created.ID, payload)
	second := doRequest(t, router, http.MethodPut, "/checkout-sessions/"+created.ID, payload)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	s1 := decodeSession(t, first)
	s2 := decodeSession(t, second)
	assert.Equal(t, s1.Status, s2.Status)
	assert.Equal(t, s1.Messages, s2.Messages)
}

func TestUpdateSession_IDMismatch(t *testing.T) {
	router := setupRouter(t)
	created := createSession(t, router)

	rec := doRequest(t, router, http.MethodPut, "/checkout-sessions/"+created.ID, map[string]any{
		"id": "some-other-id",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSession_NotFound(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/checkout-sessions/ghost", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteSession_Success(t *testing.T) {
	router := setupRouter(t)
	created := createSession(t, router)

	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions/"+created.ID+"/complete", map[string]any{
		"payment": map[string]any{"selected_instrument_id": "instr_visa"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec)
	assert.Equal(t, domain.StatusCompleted, session.Status)
}

func TestCompleteSession_PaymentFailure(t *testing.T) {
	router := setupRouter(t)
	created := createSession(t, router)

	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions/"+created.ID+"/complete", map[string]any{
		"payment": map[string]any{"selected_instrument_id": payment.FailingInstrumentID},
	})
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	// Session must not have been mutated by the declined attempt
	get := doRequest(t, router, http.MethodGet, "/checkout-sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, domain.StatusReadyForPayment, decodeSession(t, get).Status)
}

func TestCompleteSession_IncompleteSession(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/checkout-sessions",
		createPayload("out_of_stock_item_1", "Out of Stock Item"))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeSession(t, rec)

	complete := doRequest(t, router, http.MethodPost, "/checkout-sessions/"+created.ID+"/complete", map[string]any{
		"payment": map[string]any{"selected_instrument_id": "instr_visa"},
	})
	assert.Equal(t, http.StatusConflict, complete.Code)
}
