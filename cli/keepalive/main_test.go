package main

import (
	"testing"
	"time"

	"github.com/Soypete/streambuddy/keepalive"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadSettings(t *testing.T) {
	defaults := keepalive.DefaultConfig()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, s settings)
	}{
		{
			name: "defaults with only a token",
			env:  map[string]string{"DISCORD_SECRET": "tok"},
			check: func(t *testing.T, s settings) {
				if s.baseURL != "http://localhost:6060" {
					t.Errorf("baseURL = %s", s.baseURL)
				}
				if !s.watchTwitch {
					t.Error("watchTwitch should default to true")
				}
				if s.alertChannel != "streambuddy-alerts" {
					t.Errorf("alertChannel = %s", s.alertChannel)
				}
				if s.monitor.CheckInterval != defaults.CheckInterval {
					t.Errorf("CheckInterval = %s", s.monitor.CheckInterval)
				}
			},
		},
		{
			name: "intervals as seconds and durations",
			env: map[string]string{
				"DISCORD_SECRET": "tok",
				"CHECK_INTERVAL": "30",
				"ALERT_INTERVAL": "2h",
			},
			check: func(t *testing.T, s settings) {
				if s.monitor.CheckInterval != 30*time.Second {
					t.Errorf("CheckInterval = %s", s.monitor.CheckInterval)
				}
				if s.monitor.AlertInterval != 2*time.Hour {
					t.Errorf("AlertInterval = %s", s.monitor.AlertInterval)
				}
			},
		},
		{
			name: "twitch auth watch disabled",
			env:  map[string]string{"DISCORD_SECRET": "tok", "WATCH_TWITCH_AUTH": "false"},
			check: func(t *testing.T, s settings) {
				if s.watchTwitch {
					t.Error("watchTwitch should be false")
				}
			},
		},
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:    "bad interval",
			env:     map[string]string{"DISCORD_SECRET": "tok", "CHECK_INTERVAL": "soon"},
			wantErr: true,
		},
		{
			name:    "negative interval",
			env:     map[string]string{"DISCORD_SECRET": "tok", "ALERT_INTERVAL": "-5"},
			wantErr: true,
		},
		{
			name:    "bad bool",
			env:     map[string]string{"DISCORD_SECRET": "tok", "WATCH_TWITCH_AUTH": "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := loadSettings(envMap(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestTargets(t *testing.T) {
	got := targets("http://localhost:6060/", true)
	if len(got) != 1 {
		t.Fatalf("expected 1 target, got %d", len(got))
	}
	if got[0].HealthURL != "http://localhost:6060/healthz" {
		t.Errorf("HealthURL = %s", got[0].HealthURL)
	}
	if got[0].AuthHealthURL != "http://localhost:6060/healthz/auth" {
		t.Errorf("AuthHealthURL = %s", got[0].AuthHealthURL)
	}

	if got := targets("http://bot:6060", false); got[0].AuthHealthURL != "" {
		t.Errorf("AuthHealthURL should be empty without twitch, got %s", got[0].AuthHealthURL)
	}
}
