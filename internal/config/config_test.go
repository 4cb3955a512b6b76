package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidepool.yaml")
	cfg := Default()
	cfg.Instance.BaseURL = "https://example.social"
	cfg.Timeline.PageLimit = 25
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Instance.BaseURL != "https://example.social" {
		t.Fatalf("baseURL = %q", got.Instance.BaseURL)
	}
	if got.Timeline.PageLimit != 25 {
		t.Fatalf("pageLimit = %d", got.Timeline.PageLimit)
	}
	if got.App.ClientName != "tidepool" {
		t.Fatalf("clientName = %q", got.App.ClientName)
	}
}

func TestLoadDefaultsPageLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidepool.yaml")
	cfg := Default()
	cfg.Timeline.PageLimit = 0
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Timeline.PageLimit != Default().Timeline.PageLimit {
		t.Fatalf("pageLimit = %d", got.Timeline.PageLimit)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}
