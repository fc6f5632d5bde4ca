package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`database:
  host: localhost
  port: 15432
  user: user
  password: pass
  name: app
  ssl_mode: disable
  max_open_conns: 10
  max_idle_conns: 5
  conn_max_lifetime: "15m"
  conn_max_idle_time: "5m"

logging:
  level: debug
  format: json

email:
  enabled: true
  host: smtp.example.com
  port: 587
  sender: noreply@example.com
  password: secret

reconcile:
  default_position: "Trainee"
  departments:
    - Sales
    - Support
`)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Database.ConnMaxLifetime != 15*time.Minute {
		t.Errorf("expected ConnMaxLifetime 15m, got %v", cfg.Database.ConnMaxLifetime)
	}

	if cfg.Database.ConnMaxIdleTime != 5*time.Minute {
		t.Errorf("expected ConnMaxIdleTime 5m, got %v", cfg.Database.ConnMaxIdleTime)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}

	if cfg.Reconcile.DefaultPosition != "Trainee" {
		t.Errorf("expected configured default position, got %s", cfg.Reconcile.DefaultPosition)
	}

	if cfg.Reconcile.DefaultDepartment != "General" {
		t.Errorf("expected fallback default department, got %s", cfg.Reconcile.DefaultDepartment)
	}

	if len(cfg.Reconcile.Departments) != 2 {
		t.Errorf("expected configured departments, got %v", cfg.Reconcile.Departments)
	}

	if len(cfg.Reconcile.EducationLevels) == 0 {
		t.Errorf("expected fallback education levels, got none")
	}
}

func TestLoad_MissingDatabaseField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for empty config")
	}
}

func TestLoad_EmailEnabledRequiresHost(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`database:
  host: localhost
  port: 5432
  user: user
  password: pass
  name: app

email:
  enabled: true
  port: 587
  sender: noreply@example.com
`)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error when email enabled without host")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`database:
  host: localhost
  port: 5432
  user: user
  password: pass
  name: app
  conn_max_lifetime: "not-a-duration"
`)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
