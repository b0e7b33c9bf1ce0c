package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"resident-portal/internal/core/config"
	"resident-portal/internal/realtime"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T, tweak func(*config.Config)) *App {
	t.Helper()
	cfg, err := config.Read(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = ":memory:"
	cfg.DB.LogLevel = "silent"
	cfg.Redis.Addr = ""
	cfg.RateLimit.Store = "memory"
	cfg.Upload.Dir = t.TempDir()
	cfg.CORS.AllowedOrigins = []string{"*"}
	if tweak != nil {
		tweak(cfg)
	}
	a, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)
	return a
}

type result struct {
	Code   int
	Body   map[string]any
	List   []map[string]any
	Header http.Header
}

func do(t *testing.T, a *App, method, path, token string, body any) result {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)

	res := result{Code: w.Code, Header: w.Header()}
	raw := w.Body.Bytes()
	if len(raw) > 0 && raw[0] == '[' {
		_ = json.Unmarshal(raw, &res.List)
	} else {
		_ = json.Unmarshal(raw, &res.Body)
	}
	return res
}

func signup(t *testing.T, a *App, email string) (token, id string) {
	t.Helper()
	r := do(t, a, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": email, "password": "secret1", "firstName": "A", "lastName": "B",
	})
	if r.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %v", email, r.Code, r.Body)
	}
	user := r.Body["user"].(map[string]any)
	return r.Body["token"].(string), user["id"].(string)
}

// admin signs up and is promoted directly through the service.
func admin(t *testing.T, a *App, email string) (token, id string) {
	t.Helper()
	token, id = signup(t, a, email)
	if _, err := a.Profiles.Approve(context.Background(), id, true); err != nil {
		t.Fatal(err)
	}
	return token, id
}

func TestScenarioA_SignupAndDuplicate(t *testing.T) {
	a := newTestApp(t, nil)
	body := map[string]any{"email": "a@b.com", "password": "secret1", "firstName": "A", "lastName": "B"}

	r := do(t, a, http.MethodPost, "/api/auth/signup", "", body)
	if r.Code != http.StatusCreated {
		t.Fatalf("status %d %v", r.Code, r.Body)
	}
	if r.Body["token"] == "" || r.Body["user"].(map[string]any)["role"] != "resident" {
		t.Fatalf("unexpected body %v", r.Body)
	}

	r = do(t, a, http.MethodPost, "/api/auth/signup", "", body)
	if r.Code != http.StatusBadRequest || r.Body["code"] != "USER_EXISTS" {
		t.Fatalf("duplicate: %d %v", r.Code, r.Body)
	}
}

func TestSignupValidationDetails(t *testing.T) {
	a := newTestApp(t, nil)
	r := do(t, a, http.MethodPost, "/api/auth/signup", "", map[string]any{"email": "bad"})
	if r.Code != http.StatusBadRequest || r.Body["code"] != "VALIDATION_ERROR" {
		t.Fatalf("got %d %v", r.Code, r.Body)
	}
	if d, _ := r.Body["details"].([]any); len(d) < 4 {
		t.Fatalf("want a detail per field, got %v", r.Body["details"])
	}

	r = do(t, a, http.MethodPost, "/api/auth/signup", "", map[string]any{"email": "a@b.com", "password": "secret1", "firstName": "A", "lastName": "B", "year": "two"})
	if r.Code != http.StatusBadRequest || r.Body["code"] != "VALIDATION_ERROR" {
		t.Fatalf("type error: %d %v", r.Code, r.Body)
	}
}

func TestScenarioB_AdminApprovesViaProfileUpdate(t *testing.T) {
	a := newTestApp(t, nil)
	_, id := signup(t, a, "a@b.com")
	adminTok, _ := admin(t, a, "root@b.com")

	r := do(t, a, http.MethodPut, "/api/profiles/"+id, adminTok, map[string]any{"status": "approved"})
	if r.Code != http.StatusOK || r.Body["status"] != "approved" {
		t.Fatalf("update: %d %v", r.Code, r.Body)
	}
	r = do(t, a, http.MethodGet, "/api/profiles/"+id, adminTok, nil)
	if r.Code != http.StatusOK || r.Body["status"] != "approved" {
		t.Fatalf("get: %d %v", r.Code, r.Body)
	}
}

func TestScenarioC_ResidentCannotDeleteMessage(t *testing.T) {
	a := newTestApp(t, nil)
	adminTok, _ := admin(t, a, "root@b.com")
	userTok, _ := signup(t, a, "a@b.com")

	r := do(t, a, http.MethodPost, "/api/messages", adminTok, map[string]any{"subject": "Hi", "content": "Hello", "priority": "urgent"})
	if r.Code != http.StatusCreated {
		t.Fatalf("create: %d %v", r.Code, r.Body)
	}
	msgID := r.Body["id"].(string)

	r = do(t, a, http.MethodDelete, "/api/messages/"+msgID, userTok, nil)
	if r.Code != http.StatusForbidden || r.Body["code"] != "FORBIDDEN" {
		t.Fatalf("delete as resident: %d %v", r.Code, r.Body)
	}
	r = do(t, a, http.MethodGet, "/api/messages", userTok, nil)
	if r.Code != http.StatusOK || len(r.List) != 1 || r.List[0]["id"] != msgID {
		t.Fatalf("list: %d %v", r.Code, r.List)
	}
	if r.Header.Get("X-Total-Count") != "1" {
		t.Fatalf("total header = %q", r.Header.Get("X-Total-Count"))
	}
}

func TestScenarioD_AuthRateLimit(t *testing.T) {
	a := newTestApp(t, nil)
	body := map[string]any{"email": "nobody@b.com", "password": "wrong-password"}
	for i := 1; i <= 5; i++ {
		if r := do(t, a, http.MethodPost, "/api/auth/login", "", body); r.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: %d %v", i, r.Code, r.Body)
		}
	}
	r := do(t, a, http.MethodPost, "/api/auth/login", "", body)
	if r.Code != http.StatusTooManyRequests {
		t.Fatalf("6th attempt: %d %v", r.Code, r.Body)
	}
	if ra, _ := r.Body["retryAfter"].(float64); ra <= 0 {
		t.Fatalf("retryAfter = %v", r.Body["retryAfter"])
	}
	if r.Header.Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	// the general limiter keeps its own counter
	if r := do(t, a, http.MethodGet, "/health", "", nil); r.Code != http.StatusOK {
		t.Fatalf("health after auth limit: %d", r.Code)
	}
}

func TestAdminOnlyRoutesRejectResidentsWithoutChanges(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.RateLimit.Auth.Max = 100 })
	userTok, userID := signup(t, a, "a@b.com")
	_, otherID := signup(t, a, "b@b.com")

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/api/profiles/" + otherID, map[string]any{"role": "admin"}},
		{http.MethodDelete, "/api/profiles/" + otherID, nil},
		{http.MethodPost, "/api/messages", map[string]any{"subject": "x", "content": "y"}},
		{http.MethodPost, "/api/sites", map[string]any{"name": "CHU"}},
		{http.MethodGet, "/api/admin/approvals/pending", nil},
		{http.MethodPost, "/api/admin/approvals/" + userID + "/approve", map[string]any{"grantAdmin": true}},
		{http.MethodPost, "/api/admin/approvals/bulk-delete", map[string]any{"ids": []string{otherID}}},
		{http.MethodGet, "/api/admin/stats", nil},
	}
	for _, tc := range cases {
		if r := do(t, a, tc.method, tc.path, userTok, tc.body); r.Code != http.StatusForbidden {
			t.Errorf("%s %s: %d %v", tc.method, tc.path, r.Code, r.Body)
		}
	}

	r := do(t, a, http.MethodGet, "/api/auth/me", userTok, nil)
	if r.Body["role"] != "resident" || r.Body["status"] != "pending" {
		t.Fatalf("caller changed: %v", r.Body)
	}
	if r := do(t, a, http.MethodGet, "/api/profiles/"+otherID, userTok, nil); r.Code != http.StatusOK || r.Body["role"] != "resident" {
		t.Fatalf("other changed: %d %v", r.Code, r.Body)
	}
	if r := do(t, a, http.MethodGet, "/api/sites", userTok, nil); len(r.List) != 0 {
		t.Fatalf("site created: %v", r.List)
	}
}

func TestAuthGate(t *testing.T) {
	a := newTestApp(t, nil)
	if r := do(t, a, http.MethodGet, "/api/profiles", "", nil); r.Code != http.StatusUnauthorized || r.Body["code"] != "NO_TOKEN" {
		t.Fatalf("no token: %d %v", r.Code, r.Body)
	}
	if r := do(t, a, http.MethodGet, "/api/profiles", "garbage", nil); r.Code != http.StatusUnauthorized || r.Body["code"] != "INVALID_TOKEN" {
		t.Fatalf("bad token: %d %v", r.Code, r.Body)
	}
}

func TestRejectedAccountLosesTokenAccess(t *testing.T) {
	a := newTestApp(t, nil)
	adminTok, _ := admin(t, a, "root@b.com")
	userTok, userID := signup(t, a, "a@b.com")

	if r := do(t, a, http.MethodGet, "/api/messages", userTok, nil); r.Code != http.StatusOK {
		t.Fatalf("pending member read: %d %v", r.Code, r.Body)
	}
	if r := do(t, a, http.MethodPost, "/api/admin/approvals/"+userID+"/reject", adminTok, nil); r.Code != http.StatusOK {
		t.Fatalf("reject: %d %v", r.Code, r.Body)
	}

	r := do(t, a, http.MethodPost, "/api/auth/refresh", "", map[string]any{"token": userTok})
	if r.Code != http.StatusForbidden || r.Body["code"] != "ACCOUNT_REJECTED" {
		t.Fatalf("refresh after reject: %d %v", r.Code, r.Body)
	}
	for _, path := range []string{"/api/messages", "/api/auth/me"} {
		if r := do(t, a, http.MethodGet, path, userTok, nil); r.Code != http.StatusForbidden || r.Body["code"] != "ACCOUNT_REJECTED" {
			t.Fatalf("GET %s after reject: %d %v", path, r.Code, r.Body)
		}
	}

	srv := httptest.NewServer(a.Engine)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + a.Config.Realtime.Path + "?token=" + userTok
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("realtime after reject should get 403, got %v %v", resp, err)
	}

	// approving again restores the same token
	if _, err := a.Profiles.Approve(context.Background(), userID, false); err != nil {
		t.Fatal(err)
	}
	if r := do(t, a, http.MethodGet, "/api/messages", userTok, nil); r.Code != http.StatusOK {
		t.Fatalf("read after re-approval: %d %v", r.Code, r.Body)
	}
}

func TestApprovalConsoleAndBulk(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.RateLimit.Auth.Max = 100 })
	adminTok, _ := admin(t, a, "root@b.com")
	_, id1 := signup(t, a, "a@b.com")
	_, id2 := signup(t, a, "b@b.com")

	r := do(t, a, http.MethodGet, "/api/admin/approvals/pending", adminTok, nil)
	if r.Code != http.StatusOK || len(r.List) != 2 || r.List[0]["id"] != id2 {
		t.Fatalf("pending (newest first): %d %v", r.Code, r.List)
	}

	r = do(t, a, http.MethodPost, "/api/admin/approvals/bulk-approve", adminTok, map[string]any{"ids": []string{id1, "missing", id2}})
	if r.Code != http.StatusOK {
		t.Fatalf("bulk: %d %v", r.Code, r.Body)
	}
	if s, _ := r.Body["succeeded"].([]any); len(s) != 2 {
		t.Fatalf("succeeded: %v", r.Body)
	}
	if f, _ := r.Body["failed"].([]any); len(f) != 1 {
		t.Fatalf("failed: %v", r.Body)
	}

	r = do(t, a, http.MethodPost, "/api/admin/approvals/"+id1+"/approve", adminTok, nil)
	if r.Code != http.StatusOK || r.Body["status"] != "approved" {
		t.Fatalf("re-approve: %d %v", r.Code, r.Body)
	}

	r = do(t, a, http.MethodGet, "/api/admin/stats", adminTok, nil)
	if r.Code != http.StatusOK {
		t.Fatalf("stats: %d %v", r.Code, r.Body)
	}
	if p := r.Body["profiles"].(map[string]any); p["approved"].(float64) != 3 {
		t.Fatalf("stats profiles: %v", p)
	}
}

func TestCrudFlow(t *testing.T) {
	a := newTestApp(t, nil)
	adminTok, _ := admin(t, a, "root@b.com")

	r := do(t, a, http.MethodPost, "/api/contributions", adminTok, map[string]any{
		"profileId": "p1", "amount": 12.5, "date": time.Now().Format(time.RFC3339), "status": "paid",
	})
	if r.Code != http.StatusCreated || r.Body["amount"] != 12.5 {
		t.Fatalf("create: %d %v", r.Code, r.Body)
	}
	id := r.Body["id"].(string)

	r = do(t, a, http.MethodPost, "/api/contributions", adminTok, map[string]any{
		"profileId": "p1", "amount": 0.001, "date": time.Now().Format(time.RFC3339), "status": "paid",
	})
	if r.Code != http.StatusBadRequest || r.Body["code"] != "VALIDATION_ERROR" {
		t.Fatalf("sub-cent amount: %d %v", r.Code, r.Body)
	}

	r = do(t, a, http.MethodPut, "/api/contributions/"+id, adminTok, map[string]any{"status": "bogus"})
	if r.Code != http.StatusBadRequest || r.Body["code"] != "VALIDATION_ERROR" {
		t.Fatalf("invalid update: %d %v", r.Code, r.Body)
	}
	r = do(t, a, http.MethodGet, "/api/contributions?status=paid&profileId=p1", adminTok, nil)
	if len(r.List) != 1 {
		t.Fatalf("filtered list: %v", r.List)
	}
	r = do(t, a, http.MethodDelete, "/api/contributions/"+id, adminTok, nil)
	if r.Code != http.StatusOK || r.Body["deleted"] != true {
		t.Fatalf("delete: %d %v", r.Code, r.Body)
	}
	if r := do(t, a, http.MethodGet, "/api/contributions/"+id, adminTok, nil); r.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", r.Code)
	}
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, nil)
	r := do(t, a, http.MethodGet, "/health", "", nil)
	if r.Code != http.StatusOK || r.Body["database"] != "connected" {
		t.Fatalf("health: %d %v", r.Code, r.Body)
	}
}

func TestRealtimeReceivesRESTBroadcastOnce(t *testing.T) {
	a := newTestApp(t, nil)
	adminTok, _ := admin(t, a, "root@b.com")
	userTok, _ := signup(t, a, "a@b.com")
	srv := httptest.NewServer(a.Engine)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + a.Config.Realtime.Path

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous connect should get 401, got %v %v", resp, err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+userTok, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if ev := readEvent(t, conn); ev.Event != realtime.EventConnected {
		t.Fatalf("welcome = %q", ev.Event)
	}

	if r := do(t, a, http.MethodPost, "/api/messages", adminTok, map[string]any{"subject": "Ward", "content": "Meeting at 8"}); r.Code != http.StatusCreated {
		t.Fatalf("create: %d %v", r.Code, r.Body)
	}
	ev := readEvent(t, conn)
	if ev.Event != "message:new" || !strings.Contains(string(ev.Data), "Meeting at 8") {
		t.Fatalf("got %q %s", ev.Event, ev.Data)
	}
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, b, err := conn.ReadMessage(); err == nil {
		t.Fatalf("unexpected second frame %s", b)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) realtime.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev realtime.Envelope
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	return ev
}
