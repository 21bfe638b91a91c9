package stillness

import (
	"math"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MovementEpsilon != 10 {
		t.Errorf("Expected MovementEpsilon=10, got %v", cfg.MovementEpsilon)
	}
	if cfg.StillThreshold != 15 {
		t.Errorf("Expected StillThreshold=15, got %v", cfg.StillThreshold)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("Expected TickInterval=1s, got %v", cfg.TickInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"zero threshold allowed", func(c *Config) { c.StillThreshold = 0 }, false},
		{"zero epsilon", func(c *Config) { c.MovementEpsilon = 0 }, true},
		{"NaN epsilon", func(c *Config) { c.MovementEpsilon = math.NaN() }, true},
		{"negative threshold", func(c *Config) { c.StillThreshold = -1 }, true},
		{"zero interval", func(c *Config) { c.TickInterval = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfig_Alert(t *testing.T) {
	cfg := DefaultConfig() // threshold 15, half is 7.5

	tests := []struct {
		count int
		want  Alert
	}{
		{0, Calm},
		{7, Calm},
		{8, Warning},
		{15, Warning},
		{16, Critical},
	}

	for _, tc := range tests {
		if got := cfg.Alert(tc.count); got != tc.want {
			t.Errorf("Alert(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}
