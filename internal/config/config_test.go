package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPathReadsAllSections(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, ".draftdeck.yaml")
	content := `http:
  port: 8080
ai:
  provider: openai
  openai:
    model: gpt-4o
    vision_model: gpt-4o
mjml:
  base_url: "http://localhost:9000/v1"
assets:
  uploads_dir: "/tmp/up"
  info_dir: "/tmp/info"
render:
  base_origin: "http://localhost:8080/"
  viewport_width: 640
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("unexpected port: %d", cfg.HTTP.Port)
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Fatalf("unexpected provider: %q", cfg.AI.Provider)
	}
	if cfg.AI.OpenAI.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %q", cfg.AI.OpenAI.Model)
	}
	if cfg.MJML.BaseURL != "http://localhost:9000/v1" {
		t.Fatalf("unexpected mjml base url: %q", cfg.MJML.BaseURL)
	}
	if cfg.Render.ViewportWidth != 640 {
		t.Fatalf("unexpected viewport width: %d", cfg.Render.ViewportWidth)
	}
	// Height was omitted, so the default applies.
	if cfg.Render.ViewportHeight != 2000 {
		t.Fatalf("unexpected viewport height: %d", cfg.Render.ViewportHeight)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Port != 3000 {
		t.Fatalf("unexpected default port: %d", cfg.HTTP.Port)
	}
	if cfg.AI.Provider != ProviderAnthropic {
		t.Fatalf("unexpected default provider: %q", cfg.AI.Provider)
	}
	if cfg.Render.ViewportWidth != 600 || cfg.Render.ViewportHeight != 2000 {
		t.Fatalf("unexpected default viewport: %dx%d", cfg.Render.ViewportWidth, cfg.Render.ViewportHeight)
	}
}

func TestValidateRejectsBadProvider(t *testing.T) {
	cfg := Default()
	cfg.AI.Provider = "bard"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}
