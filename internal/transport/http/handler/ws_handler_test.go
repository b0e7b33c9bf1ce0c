package handler

import (
	"net/http/httptest"
	"testing"
)

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://portal.example.org/"})
	cases := []struct {
		origin, host string
		want         bool
	}{
		{"", "api.example.org", true},
		{"https://portal.example.org", "api.example.org", true},
		{"https://PORTAL.example.org", "api.example.org", true},
		{"https://api.example.org", "api.example.org", true},
		{"https://evil.example.com", "api.example.org", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Host = tc.host
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := check(r); got != tc.want {
			t.Errorf("origin %q host %q: got %v", tc.origin, tc.host, got)
		}
	}
	if !originChecker(nil)(httptest.NewRequest("GET", "/ws", nil)) {
		t.Error("empty allow list should accept")
	}
}
