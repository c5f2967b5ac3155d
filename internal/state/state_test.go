package state

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestManager(t *testing.T, secret string) *Manager {
	t.Helper()

	m, err := NewManager(Config{Secret: []byte(secret)})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestNewManager_MissingSecret(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("NewManager() error = %v, want %v", err, ErrMissingSecret)
	}
}

func TestManager_Issue(t *testing.T) {
	m := newTestManager(t, "secret")

	w := httptest.NewRecorder()
	state, err := m.Issue(w)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != DefaultCookieName || c.Value != state {
		t.Errorf("cookie = %s=%s, want %s=%s", c.Name, c.Value, DefaultCookieName, state)
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.MaxAge != int(DefaultTTL.Seconds()) {
		t.Errorf("unexpected cookie attributes: %+v", c)
	}

	other, err := m.Issue(httptest.NewRecorder())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if other == state {
		t.Error("Issue() returned the same state twice")
	}
}

func TestManager_Verify(t *testing.T) {
	m := newTestManager(t, "secret")
	forger := newTestManager(t, "other-secret")

	issued, err := m.Issue(httptest.NewRecorder())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	forged, err := forger.Issue(httptest.NewRecorder())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name    string
		cookie  string
		state   string
		wantErr error
	}{
		{name: "matching state", cookie: issued, state: issued},
		{name: "no cookie", state: issued, wantErr: ErrInvalidState},
		{name: "no state", cookie: issued, wantErr: ErrInvalidState},
		{name: "mismatch", cookie: issued, state: forged, wantErr: ErrInvalidState},
		{name: "signed with another secret", cookie: forged, state: forged, wantErr: ErrInvalidState},
		{name: "unsigned", cookie: "plain", state: "plain", wantErr: ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			if err := m.Verify(w, req, tt.state); !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}

			cookies := w.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Name != DefaultCookieName || cookies[0].MaxAge >= 0 {
				t.Errorf("Verify() should expire the state cookie, got %+v", cookies)
			}
		})
	}
}
