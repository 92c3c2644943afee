package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DRAWBACK_ADDR", "DRAWBACK_ORIGINS", "DRAWBACK_ENGINE_PATH", "DRAWBACK_ANALYSIS_MS", "DRAWBACK_CLOCK_SECONDS", "DRAWBACK_DEV"} {
		t.Setenv(key, "")
	}
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.AnalysisTime != 500*time.Millisecond {
		t.Fatalf("analysis time = %v", cfg.AnalysisTime)
	}
	if cfg.ClockTime != 0 || cfg.Dev || cfg.EnginePath != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvFallbackAndFlagOverride(t *testing.T) {
	t.Setenv("DRAWBACK_ADDR", ":9000")
	t.Setenv("DRAWBACK_CLOCK_SECONDS", "300")
	t.Setenv("DRAWBACK_DEV", "yes")
	t.Setenv("DRAWBACK_ANALYSIS_MS", "")

	cfg, err := Load([]string{"-addr", ":9100", "-engine", " /usr/bin/stockfish "})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("flag should win over env, addr = %q", cfg.Addr)
	}
	if cfg.ClockTime != 5*time.Minute {
		t.Fatalf("clock = %v", cfg.ClockTime)
	}
	if !cfg.Dev {
		t.Fatalf("expected dev from env")
	}
	if cfg.EnginePath != "/usr/bin/stockfish" {
		t.Fatalf("engine path = %q", cfg.EnginePath)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero analysis", []string{"-analysis-ms", "0"}},
		{"negative clock", []string{"-clock-seconds", "-1"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestOriginList(t *testing.T) {
	cfg := Config{Origins: "http://a.test, ,http://b.test"}
	want := []string{"http://a.test", "http://b.test"}
	if got := cfg.OriginList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("origins = %v, want %v", got, want)
	}
}
