package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterWithAnswers(t *testing.T) {
	router, stubs := newTestRouter(t)

	body := `{
		"name": "Asha Rao",
		"email": "asha@example.com",
		"city": "Pune",
		"country": "India",
		"consent": true,
		"answers": [0,0,0,0,0,0,0,0,0,0,0,0,0]
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		RegistrationID int64  `json:"registration_id"`
		SessionToken   string `json:"session_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RegistrationID != 1 || resp.SessionToken == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(stubs.regs.saved) != 1 || !stubs.regs.saved[0].QuestionnaireCompleted {
		t.Fatalf("expected scored registration persisted, got %+v", stubs.regs.saved)
	}
}

func TestRegisterQuickProfile(t *testing.T) {
	router, stubs := newTestRouter(t)

	body := `{"email":"asha@example.com","country":"India","consent":true,"risk_category":"High"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(stubs.regs.saved) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(stubs.regs.saved))
	}
	saved := stubs.regs.saved[0]
	if saved.QuestionnaireCompleted || saved.RiskCategory != "High Risk" {
		t.Fatalf("unexpected registration: %+v", saved)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	router, stubs := newTestRouter(t)

	cases := map[string]string{
		"bad email":        `{"email":"nope","country":"India","consent":true,"risk_category":"High"}`,
		"no consent":       `{"email":"a@b.co","country":"India","consent":false,"risk_category":"High"}`,
		"unknown category": `{"email":"a@b.co","country":"India","consent":true,"risk_category":"Extreme"}`,
	}
	for name, body := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", name, w.Code, w.Body.String())
		}
	}
	if len(stubs.regs.saved) != 0 {
		t.Fatalf("invalid registrations must not be persisted, saved %d", len(stubs.regs.saved))
	}
}

func TestMarkRecommendationsViewed(t *testing.T) {
	router, stubs := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/viewed", strings.NewReader(`{"registration_id":7}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if stubs.regs.viewedID != 7 {
		t.Fatalf("expected viewed id 7, got %d", stubs.regs.viewedID)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/viewed", strings.NewReader(`{"registration_id":0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero id, got %d", w.Code)
	}
}
