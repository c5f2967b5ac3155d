package staticpaths

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "defaults",
			wantStatus: http.StatusOK,
			wantBody:   `{"paths":["/"],"fallback":"blocking"}`,
		},
		{
			name:       "fallback false",
			query:      "fallback=false",
			wantStatus: http.StatusOK,
			wantBody:   `{"paths":["/"],"fallback":false}`,
		},
		{
			name:       "paths override",
			query:      "path=/&path=/about",
			wantStatus: http.StatusOK,
			wantBody:   `{"paths":["/","/about"],"fallback":"blocking"}`,
		},
		{
			name:       "invalid fallback",
			query:      "fallback=maybe",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid_request","error_description":"invalid fallback \"maybe\": must be blocking, true or false"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/static-paths?"+tt.query, nil)
			w := httptest.NewRecorder()

			New().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}
