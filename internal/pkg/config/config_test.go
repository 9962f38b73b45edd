package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Chdir(t.TempDir())

	cfg := Load("")

	if cfg.Port != "8080" || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: port=%q ttl=%s", cfg.Port, cfg.TokenTTL)
	}
	if cfg.Geocode.RegionSuffix != "Metro Manila, Philippines" {
		t.Fatalf("unexpected region suffix %q", cfg.Geocode.RegionSuffix)
	}
	if len(cfg.DefaultCategories) != 2 || cfg.DefaultCategories[1] != "Fabric Conditioner" {
		t.Fatalf("unexpected default categories %q", cfg.DefaultCategories)
	}
	if cfg.PSGC.RegionCode != "130000000" {
		t.Fatalf("unexpected region code %q", cfg.PSGC.RegionCode)
	}
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "API_BASE_URL=https://from-file.example.com\nPORT=9000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PORT", "7000")
	// Registered so the value loaded from the file is cleaned up afterwards.
	t.Setenv("API_BASE_URL", "")
	os.Unsetenv("API_BASE_URL")

	cfg := Load(path)

	if cfg.Port != "7000" {
		t.Fatalf("environment must win, got port %q", cfg.Port)
	}
	if cfg.Backend.BaseURL != "https://from-file.example.com" {
		t.Fatalf("expected base url from file, got %q", cfg.Backend.BaseURL)
	}
}

func TestLoad_PanicsWithoutBackendURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", "")
	os.Unsetenv("API_BASE_URL")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing API_BASE_URL")
		}
	}()
	Load("")
}
