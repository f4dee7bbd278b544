package twitchirc

import (
	"encoding/json"
	"net/http"
	"time"
)

// AuthHealthResponse represents the JSON response for the auth health check endpoint
type AuthHealthResponse struct {
	HasToken         bool      `json:"has_token"`
	LastRefreshTime  time.Time `json:"last_refresh_time"`
	ExpirationTime   time.Time `json:"expiration_time"`
	IsExpired        bool      `json:"is_expired"`
	HoursUntilExpiry float64   `json:"hours_until_expiry"`
}

const tokenExpiryDuration = 12 * time.Hour

// GetAuthHealth returns the current auth token health status. Tokens with
// their own expiry use it instead of the assumed lifetime.
func (irc *IRC) GetAuthHealth() AuthHealthResponse {
	irc.mu.RLock()
	tok, refreshed := irc.tok, irc.tokenRefreshTime
	irc.mu.RUnlock()

	now := irc.now()
	hasToken := tok != nil && tok.AccessToken != ""
	expirationTime := refreshed.Add(tokenExpiryDuration)
	if tok != nil && !tok.Expiry.IsZero() {
		expirationTime = tok.Expiry
	}

	return AuthHealthResponse{
		HasToken:         hasToken,
		LastRefreshTime:  refreshed,
		ExpirationTime:   expirationTime,
		IsExpired:        !now.Before(expirationTime),
		HoursUntilExpiry: expirationTime.Sub(now).Hours(),
	}
}

// AuthHealthHandler reports token health as JSON. It answers 503 when the
// token is missing or expired so uptime checks can alert on it.
func (irc *IRC) AuthHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		health := irc.GetAuthHealth()
		status := http.StatusOK
		if !health.HasToken || health.IsExpired {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(health); err != nil {
			irc.logger.Error("failed to encode auth health response", "error", err.Error())
		}
	}
}
