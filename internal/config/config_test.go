package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_TYPE", "WALL_MAX_ATTEMPTS", "REVEAL_DELAY", "ADVANCE_DELAY"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "5175" {
		t.Errorf("Port = %q, want 5175", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.RevealDelay != time.Second {
		t.Errorf("RevealDelay = %v, want 1s", cfg.RevealDelay)
	}
	if cfg.AdvanceDelay != 1500*time.Millisecond {
		t.Errorf("AdvanceDelay = %v, want 1.5s", cfg.AdvanceDelay)
	}
	if cfg.Heartbeat != time.Second {
		t.Errorf("Heartbeat = %v, want 1s", cfg.Heartbeat)
	}
}

func TestLoadOverrides(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(*Config) bool
	}{
		{"port", "PORT", "9000", func(c *Config) bool { return c.Port == "9000" }},
		{"attempts", "WALL_MAX_ATTEMPTS", "5", func(c *Config) bool { return c.MaxAttempts == 5 }},
		{"bad attempts falls back", "WALL_MAX_ATTEMPTS", "lots", func(c *Config) bool { return c.MaxAttempts == 3 }},
		{"reveal delay", "REVEAL_DELAY", "250ms", func(c *Config) bool { return c.RevealDelay == 250*time.Millisecond }},
		{"bad duration falls back", "ADVANCE_DELAY", "soon", func(c *Config) bool { return c.AdvanceDelay == 1500*time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if !tt.check(Load()) {
				t.Errorf("%s=%q not applied as expected", tt.key, tt.value)
			}
		})
	}
}

func TestTeacherEmailDomains(t *testing.T) {
	t.Setenv("TEACHER_EMAIL_DOMAINS", "")
	if got := Load().TeacherEmailDomains; len(got) != 0 {
		t.Errorf("unset domains = %v, want none", got)
	}
	t.Setenv("TEACHER_EMAIL_DOMAINS", " school.example, ,academy.example ")
	got := Load().TeacherEmailDomains
	if len(got) != 2 || got[0] != "school.example" || got[1] != "academy.example" {
		t.Errorf("domains = %q", got)
	}
}
