package uploader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blogpress.yaml")
	yaml := `
workbook: /data/blog.xlsx
ledger_db: /data/runs.db
manual_login_wait: 5m
editor:
  headless: true
  locators:
    compose_url: https://example.test/write
  pacing:
    after_image: 4s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workbook != "/data/blog.xlsx" || cfg.LedgerDB != "/data/runs.db" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.ManualLoginWait != 5*time.Minute {
		t.Errorf("manual_login_wait = %v", cfg.ManualLoginWait)
	}
	if !cfg.Editor.Headless {
		t.Error("editor.headless not read")
	}
	if cfg.Editor.Locators.ComposeURL != "https://example.test/write" {
		t.Errorf("locator override = %q", cfg.Editor.Locators.ComposeURL)
	}
	if cfg.Editor.Pacing.AfterImage != 4*time.Second {
		t.Errorf("pacing override = %v", cfg.Editor.Pacing.AfterImage)
	}

	// Defaults fill the rest.
	if cfg.WorkDir != "." || cfg.OutputDir != "output" || cfg.ImagesDir != "images" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.CredentialsEnv.ID != "NAVER_ID" || cfg.CredentialsEnv.Password != "NAVER_PW" {
		t.Errorf("credential env defaults = %+v", cfg.CredentialsEnv)
	}
}

func TestCredentialsFromEnvironment(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.CredentialsEnv.ID = "BLOGPRESS_TEST_ID"
	cfg.CredentialsEnv.Password = "BLOGPRESS_TEST_PW"

	if _, err := cfg.credentials(); err == nil {
		t.Fatal("expected error when environment is unset")
	}

	t.Setenv("BLOGPRESS_TEST_ID", "tester")
	t.Setenv("BLOGPRESS_TEST_PW", "secret")
	creds, err := cfg.credentials()
	if err != nil {
		t.Fatal(err)
	}
	if creds.ID != "tester" || creds.Password != "secret" {
		t.Errorf("creds = %+v", creds)
	}
}
