// Package config handles configuration loading and validation.
// Values are merged as: defaults < TOML config file < WFMU_* environment
// variables < command-line flags (applied by cmd).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
)

const appName = "wfmu"

// RTMP handling modes.
const (
	RTMPRemux   = "remux"   // pipe the RTMP stream through the remuxer into a temp file
	RTMPArchive = "archive" // play the storage-host rewrite of the RTMP URL
)

// Config holds all application configuration.
type Config struct {
	BaseURL         string        `toml:"base_url" env:"BASE_URL"`
	Show            string        `toml:"show" env:"SHOW"`
	StorageURL      string        `toml:"storage_url" env:"STORAGE_URL"`
	Snapshot        string        `toml:"snapshot" env:"SNAPSHOT"`
	Player          string        `toml:"player" env:"PLAYER"`
	Remuxer         string        `toml:"remuxer" env:"REMUXER"`
	RTMPMode        string        `toml:"rtmp_mode" env:"RTMP_MODE"`
	MaxEntries      int           `toml:"max_entries" env:"MAX_ENTRIES"`
	CutoffYear      int           `toml:"cutoff_year" env:"CUTOFF_YEAR"`
	Resolve         bool          `toml:"resolve" env:"RESOLVE"`
	Timeout         time.Duration `toml:"timeout" env:"TIMEOUT"`
	RequestInterval time.Duration `toml:"request_interval" env:"REQUEST_INTERVAL"`
	RemuxWarmup     time.Duration `toml:"remux_warmup" env:"REMUX_WARMUP"`
	UserAgent       string        `toml:"user_agent" env:"USER_AGENT"`
	DownloadDir     string        `toml:"download_dir" env:"DOWNLOAD_DIR"`
	Debug           bool          `toml:"debug" env:"DEBUG"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseURL:         "https://www.wfmu.org",
		Show:            "LM",
		StorageURL:      "https://s3.amazonaws.com/arch.wfmu.org",
		Snapshot:        "",
		Player:          "mpv",
		Remuxer:         "ffmpeg",
		RTMPMode:        RTMPRemux,
		MaxEntries:      0,
		CutoffYear:      0,
		Resolve:         false,
		Timeout:         10 * time.Second,
		RequestInterval: 250 * time.Millisecond,
		RemuxWarmup:     2 * time.Second,
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		DownloadDir:     "~/Music/wfmu",
		Debug:           false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and the environment and merges them over the
// defaults. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := env.Parse(cfg, env.Options{Prefix: "WFMU_"}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds. The player
// name is lowercased in place.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "ffplay": true,
	}
	c.Player = strings.ToLower(strings.TrimSpace(c.Player))
	if !validPlayers[c.Player] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, ffplay)", c.Player)
	}

	switch c.RTMPMode {
	case RTMPRemux, RTMPArchive:
	default:
		return fmt.Errorf("unsupported rtmp_mode %q (valid: remux, archive)", c.RTMPMode)
	}

	if err := validateHTTPURL("base_url", c.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("storage_url", c.StorageURL); err != nil {
		return err
	}

	if c.Show == "" || strings.ContainsAny(c.Show, "/?#& ") {
		return fmt.Errorf("invalid show code %q", c.Show)
	}
	if c.Remuxer == "" {
		return fmt.Errorf("remuxer cannot be empty")
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries cannot be negative")
	}
	if c.CutoffYear < 0 {
		return fmt.Errorf("cutoff_year cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RequestInterval < 0 || c.RemuxWarmup < 0 {
		return fmt.Errorf("durations cannot be negative")
	}

	return nil
}

func validateHTTPURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}

// SnapshotPath resolves the snapshot location, defaulting to the XDG data dir.
func (c *Config) SnapshotPath() (string, error) {
	if c.Snapshot != "" {
		return expandHome(c.Snapshot)
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, strings.ToLower(c.Show)+"_playlists.json"), nil
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	return expandHome(c.DownloadDir)
}

func expandHome(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Abs(p)
}
