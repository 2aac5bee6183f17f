package tokens

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, "http://localhost/play", nil)
	r := gin.New()
	r.GET("/api/token/generate", h.Generate)
	r.GET("/api/token/validate", h.Validate)
	r.GET("/api/token/qr", h.QR)
	return r
}

func TestGenerateEndpoint(t *testing.T) {
	store := NewStore(5 * time.Minute)
	r := newTestRouter(store)

	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"with signageId", "/api/token/generate?signageId=DEMO", http.StatusOK},
		{"missing signageId", "/api/token/generate", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.url, nil)
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body struct {
				Token     string `json:"token"`
				ExpiresAt int64  `json:"expires_at"`
				PlayURL   string `json:"play_url"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Token == "" {
				t.Error("expected non-empty token")
			}
			if !store.Validate(body.Token, "DEMO") {
				t.Error("issued token should validate for its instance")
			}
			if store.Validate(body.Token, "OTHER") {
				t.Error("issued token must not validate for another instance")
			}
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	store := NewStore(5 * time.Minute)
	r := newTestRouter(store)
	token, _, _ := store.Issue("DEMO")

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"valid", "/api/token/validate?token=" + token + "&signageId=DEMO", true},
		{"wrong instance", "/api/token/validate?token=" + token + "&signageId=X", false},
		{"unknown token", "/api/token/validate?token=nope&signageId=DEMO", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.url, nil)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body struct {
				Valid bool `json:"valid"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Valid != tt.want {
				t.Errorf("valid = %v, want %v", body.Valid, tt.want)
			}
		})
	}
}

func TestQREndpoint(t *testing.T) {
	store := NewStore(5 * time.Minute)
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/token/qr?signageId=DEMO", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected non-empty PNG body")
	}
}
