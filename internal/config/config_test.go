package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Platform != PlatformNode {
		t.Fatalf("expected default platform node, got %s", cfg.Platform)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadHandler(t *testing.T) {
	t.Setenv("LAMBDA_HANDLER", "index.handler")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Handler != "index.handler" {
		t.Fatalf("expected handler from LAMBDA_HANDLER, got %q", cfg.Handler)
	}
}

func TestLoadHandlerPrefersUnderscoreHandler(t *testing.T) {
	t.Setenv("_HANDLER", "index.primary")
	t.Setenv("LAMBDA_HANDLER", "index.secondary")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Handler != "index.primary" {
		t.Fatalf("expected _HANDLER to win, got %q", cfg.Handler)
	}
}

func TestLoadNetAllowValid(t *testing.T) {
	t.Setenv("LLRT_NET_ALLOW", "example.com:443 https://api.example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.NetAllow) != 2 {
		t.Fatalf("expected 2 allow entries, got %d", len(cfg.NetAllow))
	}
}

func TestLoadNetAllowInvalid(t *testing.T) {
	t.Setenv("LLRT_NET_ALLOW", "::::not-a-uri")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid net allow entry")
	}
}

func TestLoadPlatformBrowser(t *testing.T) {
	t.Setenv("LLRT_PLATFORM", "browser")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Platform != PlatformBrowser {
		t.Fatalf("expected browser platform, got %s", cfg.Platform)
	}
}
