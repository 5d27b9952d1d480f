package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azhao/scanpay/internal/auth"
	"github.com/azhao/scanpay/internal/parser"
	"github.com/azhao/scanpay/internal/service"
	"github.com/azhao/scanpay/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tempDir, err := os.MkdirTemp("", "scanpay-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := service.NewReceiptService(parser.New(), store, service.NewSessionManager(), nil)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return New(svc, tokens, nil)
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// createSession creates a session over the API and returns its id and token.
func createSession(t *testing.T, r *gin.Engine) (string, string) {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/v1/sessions", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	decode(t, w, &resp)
	if resp.SessionID == "" || resp.Token == "" {
		t.Fatalf("create session response incomplete: %s", w.Body.String())
	}
	return resp.SessionID, resp.Token
}

var scanBody = gin.H{"lines": []string{
	"Cafe X",
	"1 Soup $5.00",
	"1 Bread $2.00",
	"Subtotal $7.00",
	"Tax $0.50",
	"Total $7.50",
}}

func TestHealth(t *testing.T) {
	r := newTestServer(t)

	w := doRequest(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	r := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodGet, "/api/v1/split", tt.token, nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestScanAndSplitFlow(t *testing.T) {
	r := newTestServer(t)
	_, token := createSession(t, r)

	// Scan the receipt in.
	w := doRequest(t, r, http.MethodPost, "/api/v1/receipts/scan", token, scanBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("scan: status %d, body %s", w.Code, w.Body.String())
	}

	var scanned struct {
		ID    string `json:"id"`
		Items []struct {
			ID    string  `json:"id"`
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"items"`
		GrandTotal float64 `json:"grand_total"`
	}
	decode(t, w, &scanned)
	if len(scanned.Items) != 2 {
		t.Fatalf("scan returned %d items, want 2", len(scanned.Items))
	}

	// The receipt is retrievable without a session token.
	w = doRequest(t, r, http.MethodGet, "/api/v1/receipts/"+scanned.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get receipt: status %d", w.Code)
	}

	// Split state shows the seeded person and the receipt.
	w = doRequest(t, r, http.MethodGet, "/api/v1/split", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("split state: status %d", w.Code)
	}
	var state struct {
		People []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"people"`
		Receipt *struct {
			ID string `json:"id"`
		} `json:"receipt"`
	}
	decode(t, w, &state)
	if len(state.People) != 1 {
		t.Fatalf("people = %d, want 1", len(state.People))
	}
	if state.Receipt == nil || state.Receipt.ID != scanned.ID {
		t.Fatal("split state missing the scanned receipt")
	}

	// Claim the soup.
	w = doRequest(t, r, http.MethodPost, "/api/v1/split/toggle", token, gin.H{
		"item_id":   scanned.Items[0].ID,
		"person_id": state.People[0].ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: status %d, body %s", w.Code, w.Body.String())
	}
	var toggled struct {
		Assigned   bool     `json:"assigned"`
		AssignedTo []string `json:"assigned_to"`
	}
	decode(t, w, &toggled)
	if !toggled.Assigned || len(toggled.AssignedTo) != 1 {
		t.Fatalf("toggle response = %+v, want assigned to one person", toggled)
	}

	// Summary prices the claim with proportional tax.
	w = doRequest(t, r, http.MethodGet, "/api/v1/split/summary", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: status %d", w.Code)
	}
	var summary struct {
		Shares []struct {
			Subtotal float64 `json:"subtotal"`
			Total    float64 `json:"total"`
		} `json:"shares"`
		GrandTotal float64 `json:"grand_total"`
	}
	decode(t, w, &summary)
	if len(summary.Shares) != 1 {
		t.Fatalf("shares = %d, want 1", len(summary.Shares))
	}
	if summary.Shares[0].Total != 5.36 {
		t.Errorf("share total = %v, want 5.36", summary.Shares[0].Total)
	}
	if summary.GrandTotal != 7.50 {
		t.Errorf("grand total = %v, want 7.50", summary.GrandTotal)
	}
}

func TestPeopleEndpoints(t *testing.T) {
	r := newTestServer(t)
	_, token := createSession(t, r)

	// Add a second person.
	w := doRequest(t, r, http.MethodPost, "/api/v1/split/people", token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("add person: status %d", w.Code)
	}
	var person struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decode(t, w, &person)
	if person.Name != "Person 2" {
		t.Errorf("name = %q, want Person 2", person.Name)
	}

	// Rename them.
	w = doRequest(t, r, http.MethodPut, "/api/v1/split/people/"+person.ID, token, gin.H{"name": "Alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename: status %d, body %s", w.Code, w.Body.String())
	}

	// Rename with no name is rejected.
	w = doRequest(t, r, http.MethodPut, "/api/v1/split/people/"+person.ID, token, gin.H{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("rename empty: status %d, want 400", w.Code)
	}

	// Remove them.
	w = doRequest(t, r, http.MethodDelete, "/api/v1/split/people/"+person.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove: status %d", w.Code)
	}

	// Removing the sole remaining person is refused.
	var state struct {
		People []struct {
			ID string `json:"id"`
		} `json:"people"`
	}
	w = doRequest(t, r, http.MethodGet, "/api/v1/split", token, nil)
	decode(t, w, &state)
	if len(state.People) != 1 {
		t.Fatalf("people after remove = %d, want 1", len(state.People))
	}
	w = doRequest(t, r, http.MethodDelete, "/api/v1/split/people/"+state.People[0].ID, token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("remove last: status %d, want 409", w.Code)
	}
}

func TestGetReceiptMissing(t *testing.T) {
	r := newTestServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/receipts/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestScanImageWithoutRecognizer(t *testing.T) {
	r := newTestServer(t)
	_, token := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/recognize", bytes.NewReader([]byte("fake-image")))
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
}

func TestStaleTokenSession(t *testing.T) {
	r := newTestServer(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	// A validly signed token for a session this server never created.
	token, err := tokens.Generate("00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	w := doRequest(t, r, http.MethodGet, "/api/v1/split", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
