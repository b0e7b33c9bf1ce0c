package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadDefaultsWithoutFile(t *testing.T) {
	c, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.RateLimit.General.Max != 1000 || c.RateLimit.General.WindowSec != 60 {
		t.Fatalf("unexpected general window %+v", c.RateLimit.General)
	}
	if c.RateLimit.Auth.Max != 5 || c.RateLimit.Auth.WindowSec != 900 {
		t.Fatalf("unexpected auth window %+v", c.RateLimit.Auth)
	}
	if c.DB.Driver != "sqlite" || !c.DB.InMemory() {
		t.Fatalf("expected in-memory sqlite, got %q %q", c.DB.Driver, c.DB.DSN)
	}
	if c.JWT.Secret == "" {
		t.Fatalf("development secret not filled in")
	}
}

func TestReadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
app:
  env: production
  http:
    port: 8080
jwt:
  secret: from-file
cors:
  allowedOrigins: ["https://portal.example.org"]
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_JWT_SECRET", "from-env")

	c, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.App.HTTP.Port != 8080 {
		t.Fatalf("port = %d", c.App.HTTP.Port)
	}
	if c.JWT.Secret != "from-env" {
		t.Fatalf("secret = %q", c.JWT.Secret)
	}
	if len(c.CORS.AllowedOrigins) != 1 || c.CORS.AllowedOrigins[0] != "https://portal.example.org" {
		t.Fatalf("origins = %v", c.CORS.AllowedOrigins)
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	c := &Config{App: App{Env: "production"}, DB: DB{Driver: "sqlite"},
		RateLimit: RateLimit{Store: "memory", General: Window{Max: 1}, Auth: Window{Max: 1}}}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for empty secret in production")
	}
}

func TestInMemory(t *testing.T) {
	cases := []struct {
		db   DB
		want bool
	}{
		{DB{Driver: "sqlite"}, true},
		{DB{Driver: "sqlite", DSN: ":memory:"}, true},
		{DB{Driver: "sqlite", DSN: "file:portal?mode=memory&cache=shared"}, true},
		{DB{Driver: "sqlite", DSN: "data/portal.db"}, false},
		{DB{Driver: "postgres", DSN: ""}, false},
	}
	for _, tc := range cases {
		if got := tc.db.InMemory(); got != tc.want {
			t.Errorf("%+v: got %v", tc.db, got)
		}
	}
}
