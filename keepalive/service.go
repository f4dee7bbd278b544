// Package keepalive watches the co-host's health endpoints and alerts a human
// when a transport goes down or the Twitch token is about to expire.
package keepalive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Soypete/streambuddy/logging"
	twitchirc "github.com/Soypete/streambuddy/twitch"
	"golang.org/x/sync/errgroup"
)

// Target is one co-host process to watch.
type Target struct {
	Name      string `yaml:"name"`
	HealthURL string `yaml:"health_url"`
	// AuthHealthURL is optional, usually the process's /healthz/auth.
	AuthHealthURL string `yaml:"auth_health_url"`
}

// Config controls check cadence and alert thresholds.
type Config struct {
	CheckInterval time.Duration `yaml:"check_interval"`
	AlertInterval time.Duration `yaml:"alert_interval"`
	// FailuresBeforeAlert is the number of failed checks in a row that make a target down.
	FailuresBeforeAlert int `yaml:"failures_before_alert"`
	// ExpiryWarning is how early to warn about a token that is about to expire.
	ExpiryWarning time.Duration `yaml:"expiry_warning"`
	Attempts      int           `yaml:"attempts"`
	Backoff       time.Duration `yaml:"backoff"`
}

func DefaultConfig() Config {
	return Config{
		CheckInterval:       time.Minute,
		AlertInterval:       time.Hour,
		FailuresBeforeAlert: 3,
		ExpiryWarning:       2 * time.Hour,
		Attempts:            3,
		Backoff:             time.Second,
	}
}

// Alerter defines the interface for sending alerts
type Alerter interface {
	SendAlert(ctx context.Context, target string, message string) error
}

type targetState struct {
	Target
	lastCheck     time.Time
	lastAlert     time.Time
	lastAuthAlert time.Time
	failures      int
	healthy       bool
	auth          *twitchirc.AuthHealthResponse
}

// Status is a copy of a target's state.
type Status struct {
	Name                string
	LastCheckTime       time.Time
	ConsecutiveFailures int
	IsHealthy           bool
	Auth                *twitchirc.AuthHealthResponse
}

// Monitor checks every target on an interval.
type Monitor struct {
	cfg        Config
	targets    []*targetState
	httpClient *http.Client
	alerter    Alerter
	now        func() time.Time
	sleep      func(context.Context, time.Duration)
	logger     *logging.Logger

	mu sync.Mutex
}

// NewMonitor creates a Monitor for targets.
func NewMonitor(targets []Target, cfg Config, alerter Alerter, logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.FailuresBeforeAlert <= 0 {
		cfg.FailuresBeforeAlert = 1
	}
	m := &Monitor{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		alerter:    alerter,
		now:        time.Now,
		sleep:      sleepCtx,
		logger:     logger,
	}
	for _, t := range targets {
		m.targets = append(m.targets, &targetState{Target: t, healthy: true})
	}
	return m
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run checks immediately and then every CheckInterval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	m.CheckAll(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("keepalive monitor shutting down")
			return ctx.Err()
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll checks every target in parallel.
func (m *Monitor) CheckAll(ctx context.Context) {
	var eg errgroup.Group
	for _, t := range m.targets {
		eg.Go(func() error {
			m.check(ctx, t)
			return nil
		})
	}
	_ = eg.Wait()
}

func (m *Monitor) check(ctx context.Context, t *targetState) {
	healthy := m.probe(ctx, t.HealthURL)

	var auth *twitchirc.AuthHealthResponse
	if t.AuthHealthURL != "" {
		auth = m.fetchAuth(ctx, t.AuthHealthURL)
	}

	m.mu.Lock()
	now := m.now()
	t.lastCheck = now
	if auth != nil {
		t.auth = auth
	}
	alerts := m.healthAlerts(t, healthy, now)
	if auth != nil {
		alerts = append(alerts, m.authAlerts(t, auth, now)...)
	}
	m.mu.Unlock()

	for _, msg := range alerts {
		if err := m.alerter.SendAlert(ctx, t.Name, msg); err != nil {
			m.logger.Error("failed to send alert", "target", t.Name, "error", err.Error())
		}
	}
}

// healthAlerts updates t for one check and returns the alerts to send.
func (m *Monitor) healthAlerts(t *targetState, healthy bool, now time.Time) []string {
	if healthy {
		var alerts []string
		if !t.healthy {
			m.logger.Info("target recovered", "target", t.Name, "afterFailures", t.failures)
			alerts = append(alerts, fmt.Sprintf("%s has recovered after %d failed checks", t.Name, t.failures))
		}
		t.healthy = true
		t.failures = 0
		return alerts
	}

	t.failures++
	m.logger.Warn("health check failed", "target", t.Name, "consecutiveFailures", t.failures)
	switch {
	case t.failures == m.cfg.FailuresBeforeAlert:
		t.healthy = false
		t.lastAlert = now
		return []string{fmt.Sprintf("%s is offline after %d failed health checks", t.Name, t.failures)}
	case t.failures > m.cfg.FailuresBeforeAlert && now.Sub(t.lastAlert) >= m.cfg.AlertInterval:
		t.lastAlert = now
		return []string{fmt.Sprintf("%s is still offline (consecutive failures: %d)", t.Name, t.failures)}
	}
	return nil
}

func (m *Monitor) authAlerts(t *targetState, auth *twitchirc.AuthHealthResponse, now time.Time) []string {
	if !t.lastAuthAlert.IsZero() && now.Sub(t.lastAuthAlert) < m.cfg.AlertInterval {
		return nil
	}
	var msg string
	switch {
	case !auth.HasToken:
		msg = fmt.Sprintf("%s has no Twitch token", t.Name)
	case auth.IsExpired:
		msg = fmt.Sprintf("Twitch token for %s has EXPIRED! Last refreshed: %s", t.Name, auth.LastRefreshTime.Format(time.RFC3339))
	case auth.ExpirationTime.Sub(now) <= m.cfg.ExpiryWarning:
		msg = fmt.Sprintf("Twitch token for %s will expire in %.1f hours (at %s). Please refresh the token.",
			t.Name, auth.ExpirationTime.Sub(now).Hours(), auth.ExpirationTime.Format(time.RFC3339))
	default:
		return nil
	}
	t.lastAuthAlert = now
	return []string{msg}
}

// probe reports whether url answers 200, retrying with exponential backoff.
func (m *Monitor) probe(ctx context.Context, url string) bool {
	backoff := m.cfg.Backoff
	for attempt := 1; attempt <= m.cfg.Attempts; attempt++ {
		if attempt > 1 {
			m.sleep(ctx, backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			m.logger.Error("failed to create health check request", "error", err.Error(), "url", url)
			return false
		}
		resp, err := m.httpClient.Do(req)
		if err != nil {
			m.logger.Debug("health check request failed", "error", err.Error(), "url", url, "attempt", attempt)
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true
		}
		m.logger.Debug("health check returned non-OK status", "status", resp.StatusCode, "url", url, "attempt", attempt)
	}
	return false
}

// fetchAuth reads the auth health report. The endpoint answers 503 with a body
// when the token is bad, so any decodable body counts.
func (m *Monitor) fetchAuth(ctx context.Context, url string) *twitchirc.AuthHealthResponse {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		m.logger.Error("failed to create auth health request", "error", err.Error(), "url", url)
		return nil
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Debug("auth health request failed", "error", err.Error(), "url", url)
		return nil
	}
	defer resp.Body.Close()

	var auth twitchirc.AuthHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		m.logger.Error("failed to decode auth health response", "error", err.Error(), "url", url, "status", resp.StatusCode)
		return nil
	}
	return &auth
}

// Statuses returns the current state of every target by name.
func (m *Monitor) Statuses() map[string]Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Status, len(m.targets))
	for _, t := range m.targets {
		out[t.Name] = Status{
			Name:                t.Name,
			LastCheckTime:       t.lastCheck,
			ConsecutiveFailures: t.failures,
			IsHealthy:           t.healthy,
			Auth:                t.auth,
		}
	}
	return out
}
