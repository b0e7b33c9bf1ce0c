package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resident-portal/internal/core/apperr"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRegisterBindsAndWrites(t *testing.T) {
	r := gin.New()
	Register(r, Action[echoIn, echoIn]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(_ *gin.Context, in *echoIn) (echoIn, error) {
			if in.Name == "boom" {
				return echoIn{}, apperr.Conflict("taken")
			}
			return *in, nil
		},
	})

	cases := []struct {
		body     string
		status   int
		wantCode string
	}{
		{`{"name":"a","count":2}`, http.StatusCreated, ""},
		{``, http.StatusCreated, ""},
		{`{"count":"two"}`, http.StatusBadRequest, apperr.CodeValidation},
		{`{"name":`, http.StatusBadRequest, apperr.CodeBadRequest},
		{`{"name":"boom"}`, http.StatusConflict, apperr.CodeConflict},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Errorf("%q: status %d, want %d (%s)", tc.body, w.Code, tc.status, w.Body)
			continue
		}
		if tc.wantCode != "" {
			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["code"] != tc.wantCode {
				t.Errorf("%q: code %v, want %s", tc.body, body["code"], tc.wantCode)
			}
		}
	}
}

func TestPageWritesArrayAndTotal(t *testing.T) {
	r := gin.New()
	Register(r, Action[struct{}, Page[string]]{
		Method: http.MethodGet,
		Path:   "/items",
		Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (Page[string], error) {
			return Page[string]{Items: []string{"a"}, Total: 7}, nil
		},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	if w.Body.String() != `["a"]` || w.Header().Get("X-Total-Count") != "7" {
		t.Fatalf("got %s total=%s", w.Body, w.Header().Get("X-Total-Count"))
	}
}

func TestBindErrorNamesField(t *testing.T) {
	var in echoIn
	err := json.Unmarshal([]byte(`{"count":true}`), &in)
	var ae *apperr.Error
	if !errors.As(BindError(err), &ae) || len(ae.Details) != 1 || ae.Details[0].Path != "count" {
		t.Fatalf("got %#v", BindError(err))
	}
	if !strings.Contains(ae.Details[0].Message, "number") {
		t.Fatalf("message %q", ae.Details[0].Message)
	}
}
