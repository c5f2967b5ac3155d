package staticpaths

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fallbackPtr(f Fallback) *Fallback {
	return &f
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name     string
		override *Override
		want     Result
	}{
		{
			name: "defaults",
			want: Result{Paths: []string{"/"}, Fallback: FallbackBlocking},
		},
		{
			name:     "empty override keeps defaults",
			override: &Override{},
			want:     Result{Paths: []string{"/"}, Fallback: FallbackBlocking},
		},
		{
			name:     "fallback override only",
			override: &Override{Fallback: fallbackPtr(FallbackFalse)},
			want:     Result{Paths: []string{"/"}, Fallback: FallbackFalse},
		},
		{
			name:     "paths override only",
			override: &Override{Paths: []string{"/", "/about"}},
			want:     Result{Paths: []string{"/", "/about"}, Fallback: FallbackBlocking},
		},
		{
			name: "both keys",
			override: &Override{
				Paths:    []string{},
				Fallback: fallbackPtr(FallbackTrue),
			},
			want: Result{Paths: []string{}, Fallback: FallbackTrue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Initialize(tt.override)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Initialize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResultJSON(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "blocking",
			result: Initialize(nil),
			want:   `{"paths":["/"],"fallback":"blocking"}`,
		},
		{
			name:   "false",
			result: Initialize(&Override{Fallback: fallbackPtr(FallbackFalse)}),
			want:   `{"paths":["/"],"fallback":false}`,
		},
		{
			name:   "true",
			result: Initialize(&Override{Fallback: fallbackPtr(FallbackTrue)}),
			want:   `{"paths":["/"],"fallback":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if got := string(data); got != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}

			var decoded Result
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.result, decoded); diff != "" {
				t.Errorf("decoded result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFallback(t *testing.T) {
	for _, s := range []string{"blocking", "true", "false"} {
		if _, err := ParseFallback(s); err != nil {
			t.Errorf("ParseFallback(%q) error = %v", s, err)
		}
	}

	if _, err := ParseFallback("sometimes"); err == nil {
		t.Error("ParseFallback(\"sometimes\") expected error")
	}
}

func TestFallbackMarshalInvalid(t *testing.T) {
	if _, err := json.Marshal(Result{Fallback: Fallback("bogus")}); err == nil {
		t.Error("Marshal() expected error for invalid fallback")
	}
}
