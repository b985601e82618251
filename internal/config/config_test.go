package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, "service:\n  jwt_secret: test-secret\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Name != "readlist" {
		t.Errorf("got service name %q, want readlist", cfg.Service.Name)
	}
	if cfg.Service.Port != 8095 {
		t.Errorf("got port %d, want 8095", cfg.Service.Port)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("got database %s:%d, want localhost:5432", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("got fetch timeout %v, want 5s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxBodyBytes != 10*1024*1024 {
		t.Errorf("got max body bytes %d, want 10MiB", cfg.Fetch.MaxBodyBytes)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("got cache TTL %v, want 24h", cfg.Cache.TTL)
	}
	if cfg.RateLimit.MaxSavesPerMinute != 30 {
		t.Errorf("got rate limit %d, want 30", cfg.RateLimit.MaxSavesPerMinute)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("got logging %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	path := writeConfigFile(t, `
service:
  port: 9000
  jwt_secret: test-secret
database:
  host: db.internal
fetch:
  timeout: 2s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != 9000 {
		t.Errorf("got port %d, want 9000", cfg.Service.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("got database host %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Fetch.Timeout != 2*time.Second {
		t.Errorf("got fetch timeout %v, want 2s", cfg.Fetch.Timeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("READLIST_PORT", "9100")
	t.Setenv("POSTGRES_READLIST_PASSWORD", "env-secret")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("READLIST_CACHE_ENABLED", "1")

	path := writeConfigFile(t, `
service:
  port: 9000
  jwt_secret: test-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != 9100 {
		t.Errorf("got port %d, want env override 9100", cfg.Service.Port)
	}
	if cfg.Database.Password != "env-secret" {
		t.Errorf("got password %q, want env-secret", cfg.Database.Password)
	}
	if !cfg.Service.Debug {
		t.Error("APP_DEBUG=true not applied")
	}
	if !cfg.Cache.Enabled {
		t.Error("READLIST_CACHE_ENABLED=1 not applied")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "service: [not a mapping")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.Service.JWTSecret = "test-secret"
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(cfg *Config) {}, wantErr: false},
		{
			name:    "missing jwt secret",
			mutate:  func(cfg *Config) { cfg.Service.JWTSecret = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Service.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "cache enabled without addr",
			mutate:  func(cfg *Config) { cfg.Cache.Enabled = true },
			wantErr: true,
		},
		{
			name: "cache enabled with addr",
			mutate: func(cfg *Config) {
				cfg.Cache.Enabled = true
				cfg.Cache.Addr = "localhost:6379"
			},
			wantErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "postgres", Password: "pw",
		Database: "readlist", SSLMode: "disable",
	}

	want := "host=localhost port=5432 user=postgres password=pw dbname=readlist sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPath(t *testing.T) {
	if got := Path("config.yml"); got != "config.yml" {
		t.Errorf("got %q, want default config.yml", got)
	}

	t.Setenv("CONFIG_PATH", "/etc/readlist/config.yml")
	if got := Path("config.yml"); got != "/etc/readlist/config.yml" {
		t.Errorf("got %q, want CONFIG_PATH value", got)
	}
}
