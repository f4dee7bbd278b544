package twitchirc

import "time"

// Config configures the Twitch transport. Credentials are read from the
// environment and never from the config file.
type Config struct {
	Enabled        bool          `yaml:"enabled"`
	Channel        string        `yaml:"channel"`
	BotName        string        `yaml:"bot_name"`
	IgnoreUsers    []string      `yaml:"ignore_users"`
	Greeting       string        `yaml:"greeting"`
	LiveStateTTL   time.Duration `yaml:"live_state_ttl"`
	AuthListenAddr string        `yaml:"auth_listen_addr"`

	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
	OAuthToken   string `yaml:"-"`
}

// DefaultConfig returns the transport defaults. Channel must still be set.
func DefaultConfig() Config {
	return Config{
		BotName:        "streambuddy",
		IgnoreUsers:    []string{"Nightbot", "StreamElements", "Moobot"},
		Greeting:       "Halo chat! StreamBuddy siap nemenin, mention aku kalau ada pertanyaan ya.",
		LiveStateTTL:   time.Minute,
		AuthListenAddr: "localhost:3000",
	}
}
