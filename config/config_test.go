package config

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Target.URL != "https://24h.pchome.com.tw/" {
		t.Errorf("Target.URL = %q", cfg.Target.URL)
	}
	if cfg.Target.ContainerSelector != "#bestSellers" {
		t.Errorf("ContainerSelector = %q", cfg.Target.ContainerSelector)
	}
	if cfg.Target.ListSelector != "ul.c-listInfoGrid__list" {
		t.Errorf("ListSelector = %q", cfg.Target.ListSelector)
	}
	if cfg.Target.ContainerTimeout != 10*time.Second {
		t.Errorf("ContainerTimeout = %v, want 10s", cfg.Target.ContainerTimeout)
	}
	if cfg.Target.NavigationTimeout != 60*time.Second {
		t.Errorf("NavigationTimeout = %v, want 60s", cfg.Target.NavigationTimeout)
	}
	if cfg.Engine.FetchMode != "browser" {
		t.Errorf("FetchMode = %q, want browser", cfg.Engine.FetchMode)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BESTSELLER_CONTAINER_SELECTOR", ".hot-prods-title")
	t.Setenv("BESTSELLER_CONTAINER_TIMEOUT", "2500ms")
	t.Setenv("BESTSELLER_MAX_PAGES", "7")
	t.Setenv("BESTSELLER_HEADLESS", "false")
	t.Setenv("BESTSELLER_API_KEYS", " a, b ,,c ")
	t.Setenv("BESTSELLER_ESCALATION_DELAYS", "0s, 1s")

	cfg := Load()

	if cfg.Target.ContainerSelector != ".hot-prods-title" {
		t.Errorf("ContainerSelector = %q", cfg.Target.ContainerSelector)
	}
	if cfg.Target.ContainerTimeout != 2500*time.Millisecond {
		t.Errorf("ContainerTimeout = %v", cfg.Target.ContainerTimeout)
	}
	if cfg.Browser.MaxPages != 7 {
		t.Errorf("MaxPages = %d", cfg.Browser.MaxPages)
	}
	if cfg.Browser.Headless {
		t.Error("Headless should be false")
	}
	if got := strings.Join(cfg.Auth.APIKeys, "|"); got != "a|b|c" {
		t.Errorf("APIKeys = %q", got)
	}
	if len(cfg.Engine.EscalationDelays) != 2 || cfg.Engine.EscalationDelays[1] != time.Second {
		t.Errorf("EscalationDelays = %v", cfg.Engine.EscalationDelays)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BESTSELLER_PORT", "not-a-number")
	t.Setenv("BESTSELLER_NAV_TIMEOUT", "soon")
	t.Setenv("BESTSELLER_ESCALATION_DELAYS", "x,y")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want fallback 8080", cfg.Server.Port)
	}
	if cfg.Target.NavigationTimeout != 60*time.Second {
		t.Errorf("NavigationTimeout = %v, want fallback", cfg.Target.NavigationTimeout)
	}
	if len(cfg.Engine.EscalationDelays) != 2 {
		t.Errorf("EscalationDelays = %v, want fallback", cfg.Engine.EscalationDelays)
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name   string
		cfg    LogConfig
		want   string
		hidden bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, `"msg":"hello"`, false},
		{"text info", LogConfig{Level: "info", Format: "text"}, "msg=hello", false},
		{"warn hides info", LogConfig{Level: "warn", Format: "text"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.NewLogger(&buf).Info("hello")
			if tt.hidden {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}
