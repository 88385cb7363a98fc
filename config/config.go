/* config.go
 * Contains the typed process configuration read from the environment. main.go loads `.env` first, so every value
 * can come from either
 * Authors: Gamers Bot contributors
 */

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

type Config struct {
	DiscordProdToken string `env:"DISCORD_PROD_TOKEN"`
	DiscordBetaToken string `env:"DISCORD_BETA_TOKEN"`

	// APIURL is the contest platform's REST api, WebURL its front-end used for login and profile links
	APIURL string `env:"GAMERS_API_URL" envDefault:"http://localhost:8000/api"`
	WebURL string `env:"GAMERS_WEB_URL" envDefault:"http://localhost:3000"`

	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"gamers_bot"`

	// RedisAddr selects the shared redis query cache. Empty uses an in process cache
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisNamespace string        `env:"REDIS_NAMESPACE" envDefault:"gamers"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	// APIRateLimit is requests per second to the platform, 0 disables throttling
	APIRateLimit float64       `env:"API_RATE_LIMIT" envDefault:"10"`
	APITimeout   time.Duration `env:"API_TIMEOUT" envDefault:"10s"`

	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	SessionSecret string `env:"SESSION_SECRET"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config and checks the values main needs
// Preconditions: The environment (and `.env`, if any) is loaded
// Postconditions: Returns the config, or an error naming the first invalid value
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL < 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must not be negative")
	}
	if cfg.APIRateLimit < 0 {
		return Config{}, fmt.Errorf("API_RATE_LIMIT must not be negative")
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DiscordToken returns the beta token when test is set, otherwise the production token
func (c Config) DiscordToken(test bool) string {
	if test {
		return c.DiscordBetaToken
	}
	return c.DiscordProdToken
}

// Level parses LogLevel. Empty means info
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
