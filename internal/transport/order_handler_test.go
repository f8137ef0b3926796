package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelworks/internal/catalog"
	"reelworks/internal/selection"
	"reelworks/internal/service"
	"reelworks/internal/workflow"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, relayStatus int) chi.Router {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(relayStatus)
	}))
	t.Cleanup(relay.Close)

	logger, _ := zap.NewDevelopment()
	cat := catalog.Default()
	store := selection.NewRedisStore(client, time.Hour)
	submitter := workflow.NewSubmitter(workflow.Config{
		RelayURL:       relay.URL,
		PaymentURL:     "https://pay.example.com/link",
		RedirectDelay:  2 * time.Second,
		RequestTimeout: 5 * time.Second,
	}, nil, logger)

	handler := NewOrderHandler(cat, service.NewOrderService(cat, store, submitter, logger), logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func setContact(t *testing.T, router chi.Router, base string) {
	t.Helper()

	w := doJSON(t, router, http.MethodPut, base+"/contact", ContactRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Website:  "https://example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) OrderResponse {
	t.Helper()

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetCatalog(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	w := doJSON(t, router, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.VideoTypes, 3)
	assert.Len(t, resp.AddOns, 2)
	assert.Equal(t, "explainer", resp.VideoTypes[0].ID)
}

func TestCreateOrder(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	w := doJSON(t, router, http.MethodPost, "/api/orders", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeOrder(t, w)
	assert.Equal(t, "explainer", resp.Selection.VideoTypeID)
	assert.Equal(t, 1, resp.Selection.Quantity)
	assert.Equal(t, 99, resp.Quote.Total)
}

func TestOrderFlow_LiveQuoteTracksEveryMutation(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	created := decodeOrder(t, doJSON(t, router, http.MethodPost, "/api/orders", nil))
	base := "/api/orders/" + created.Selection.SessionID.String()

	w := doJSON(t, router, http.MethodPut, base+"/category", SetCategoryRequest{CategoryID: "software"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 129, decodeOrder(t, w).Quote.Total)

	w = doJSON(t, router, http.MethodPut, base+"/quantity", SetQuantityRequest{Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 258, decodeOrder(t, w).Quote.Total)

	w = doJSON(t, router, http.MethodPost, base+"/add-ons/screenshots/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeOrder(t, w)
	assert.Equal(t, 278, resp.Quote.Total)
	assert.Equal(t, []string{"screenshots"}, resp.Selection.AddOnIDs)

	// Switching the video type clears the category
	w = doJSON(t, router, http.MethodPut, base+"/video-type", SetVideoTypeRequest{VideoTypeID: "youtube"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeOrder(t, w)
	assert.Empty(t, resp.Selection.CategoryID)
	assert.Equal(t, 199*2+20, resp.Quote.Total)

	// GET reflects the same state and quote
	w = doJSON(t, router, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 199*2+20, decodeOrder(t, w).Quote.Total)
}

func TestSetContact_Validation(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	created := decodeOrder(t, doJSON(t, router, http.MethodPost, "/api/orders", nil))
	base := "/api/orders/" + created.Selection.SessionID.String()

	tests := []struct {
		name string
		req  ContactRequest
	}{
		{name: "missing full name", req: ContactRequest{Email: "a@b.com", Website: "https://b.com"}},
		{name: "invalid email", req: ContactRequest{FullName: "Ada", Email: "not-an-email", Website: "https://b.com"}},
		{name: "invalid website", req: ContactRequest{FullName: "Ada", Email: "a@b.com", Website: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPut, base+"/contact", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := doJSON(t, router, http.MethodPut, base+"/contact", ContactRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Website:  "https://example.com",
		Brief:    "A short explainer",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada Lovelace", decodeOrder(t, w).Selection.Contact.FullName)
}

func TestSessionErrors(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	w := doJSON(t, router, http.MethodGet, "/api/orders/not-a-uuid/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/orders/6f1e12d4-9f3a-4a77-bb64-2f9f6dd3d001/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmit_Success(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	created := decodeOrder(t, doJSON(t, router, http.MethodPost, "/api/orders", nil))
	base := "/api/orders/" + created.Selection.SessionID.String()

	setContact(t, router, base)

	w := doJSON(t, router, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 99, resp.Total)
	assert.Contains(t, resp.RedirectURL, "amount=99")
	assert.Equal(t, int64(2000), resp.RedirectDelayMS)

	// The session is gone after a successful submission
	w = doJSON(t, router, http.MethodGet, base+"/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmit_RelayFailure(t *testing.T) {
	router := newTestRouter(t, http.StatusInternalServerError)

	created := decodeOrder(t, doJSON(t, router, http.MethodPost, "/api/orders", nil))
	base := "/api/orders/" + created.Selection.SessionID.String()
	setContact(t, router, base)

	w := doJSON(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// Selection survives for a retry
	w = doJSON(t, router, http.MethodGet, base+"/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmit_MissingContact(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	created := decodeOrder(t, doJSON(t, router, http.MethodPost, "/api/orders", nil))
	base := "/api/orders/" + created.Selection.SessionID.String()

	// A fresh session has no contact details yet; the relay would
	// accept the order, so the submit endpoint must reject it here.
	w := doJSON(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Selection survives; providing the contact unblocks submission
	w = doJSON(t, router, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	setContact(t, router, base)
	w = doJSON(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmit_OutOfRangeQuantity(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	created := decodeOrder(t, doJSON(t, router, http.MethodPost, "/api/orders", nil))
	base := "/api/orders/" + created.Selection.SessionID.String()
	setContact(t, router, base)

	w := doJSON(t, router, http.MethodPut, base+"/quantity", SetQuantityRequest{Quantity: 15})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 99*15, decodeOrder(t, w).Quote.Total)

	w = doJSON(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
