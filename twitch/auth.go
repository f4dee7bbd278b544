package twitchirc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/twitch"
)

func (irc *IRC) parseAuthCode(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		irc.logger.Error("could not parse auth redirect", "error", err.Error())
		http.Error(w, "could not parse query", http.StatusBadRequest)
		return
	}
	code := req.FormValue("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	select {
	case irc.authCode <- code:
	default:
	}
	fmt.Fprintln(w, "StreamBuddy is authorized, you can close this tab.")
}

func (irc *IRC) setToken(tok *oauth2.Token) {
	irc.mu.Lock()
	defer irc.mu.Unlock()
	irc.tok = tok
	irc.tokenRefreshTime = irc.now()
}

// AuthTwitch retrieves the chat token. A token from the environment is used as
// is; otherwise the oauth2 auth code flow runs and waits for the redirect.
func (irc *IRC) AuthTwitch(ctx context.Context) error {
	if irc.cfg.OAuthToken != "" {
		irc.setToken(&oauth2.Token{AccessToken: irc.cfg.OAuthToken})
		return nil
	}
	if irc.cfg.ClientID == "" || irc.cfg.ClientSecret == "" {
		return errors.New("TWITCH_OAUTH_TOKEN or TWITCH_ID and TWITCH_SECRET must be set")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/redirect", irc.parseAuthCode)
	srv := &http.Server{Addr: irc.cfg.AuthListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			irc.logger.Error("auth redirect server failed", "error", err.Error())
		}
	}()
	defer func() {
		_ = srv.Close()
	}()

	conf := &oauth2.Config{
		ClientID:     irc.cfg.ClientID,
		ClientSecret: irc.cfg.ClientSecret,
		Scopes:       []string{"chat:read", "chat:edit"},
		RedirectURL:  "http://" + irc.cfg.AuthListenAddr + "/oauth/redirect",
		Endpoint:     twitch.Endpoint,
	}
	url := conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
	irc.logger.Info("visit the URL for the auth dialog", "url", url)

	var code string
	select {
	case <-ctx.Done():
		return ctx.Err()
	case code = <-irc.authCode:
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to get token with auth code: %w", err)
	}
	irc.setToken(tok)
	irc.logger.Info("twitch token received")
	return nil
}
