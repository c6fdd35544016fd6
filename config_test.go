package spacetraveling

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "Space")
	t.Setenv("CONTENT_SOURCE", "prismic")
	t.Setenv("PRISMIC_ENDPOINT", "https://repo.cdn.prismic.io/api/v2")
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("REVALIDATE_POST", "10m")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Space" || cfg.Source != SourcePrismic || cfg.PageSize != 5 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PostRevalidate != 10*time.Minute || cfg.HomeRevalidate != 24*time.Hour {
		t.Errorf("revalidate = %v / %v", cfg.HomeRevalidate, cfg.PostRevalidate)
	}
	if cfg.URL != "http://localhost:3000" || cfg.DocumentType != "posts" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigFromDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SESSION_SECRET=from-dotenv\nAPP_ENV=production\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set
	t.Setenv("SESSION_SECRET", "")
	os.Unsetenv("SESSION_SECRET")
	t.Setenv("APP_ENV", "")
	os.Unsetenv("APP_ENV")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SessionSecret != "from-dotenv" || cfg.Development() {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigMissingDotenv(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestViewSiteFallsBackToUTC(t *testing.T) {
	cfg := SiteConfig{TimeZone: "Nowhere/Invalid"}
	if loc := cfg.ViewSite().Location; loc != time.UTC {
		t.Errorf("Location = %v, want UTC", loc)
	}
}
