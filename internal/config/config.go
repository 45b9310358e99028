// Package config loads and validates the application configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Placeholder values shipped in the example config. Startup refuses to
// proceed while either credential still holds one of these.
const (
	placeholderClientID     = "your-client-id"
	placeholderClientSecret = "your-client-secret"
)

var (
	// ErrMissingCredentials is returned when client_id or client_secret is empty.
	ErrMissingCredentials = errors.New("missing spotify client_id or client_secret")

	// ErrPlaceholderCredentials is returned when a credential still holds
	// the example-config placeholder value.
	ErrPlaceholderCredentials = errors.New("spotify credentials still set to placeholder values")
)

// Config is the application configuration loaded from a TOML file.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
}

// SpotifyConfig contains the Spotify application credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DataConfig contains on-disk storage settings.
type DataConfig struct {
	Dir string `toml:"dir"`
}

// Addr returns the host:port address the server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := defaults()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that required fields are present and not placeholders.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.Spotify.ClientID == placeholderClientID || c.Spotify.ClientSecret == placeholderClientSecret {
		return ErrPlaceholderCredentials
	}
	return nil
}

// defaults returns a Config pre-filled with the embedded example values
// for everything except credentials.
func defaults() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("parsing embedded example config: %v", err))
	}
	config.Spotify.ClientID = ""
	config.Spotify.ClientSecret = ""
	return &config
}

// WriteExample creates a config file at path from the embedded example.
// Returns an error if a file already exists there.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
