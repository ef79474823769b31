// Package config loads application configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// MaxUnlockTTLMinutes caps SPEEDDIAL_UNLOCK_TTL_MINUTES at one year.
const MaxUnlockTTLMinutes = 60 * 24 * 365

// secretKeyBytes is the decoded length of SPEEDDIAL_SECRET_KEY.
const secretKeyBytes = 32

// Linkwarden is the upstream configuration used in fixed mode.
type Linkwarden struct {
	BaseURL  string
	Token    string
	Username string
	Password string
}

// HasCredentials reports whether a token or a username is configured.
func (l Linkwarden) HasCredentials() bool {
	return l.Token != "" || l.Username != ""
}

// Missing lists the environment variables fixed mode still needs.
func (l Linkwarden) Missing() []string {
	var missing []string
	if l.BaseURL == "" {
		missing = append(missing, "LINKWARDEN_URL")
	}
	switch {
	case l.Token != "":
	case l.Username == "":
		missing = append(missing, "LINKWARDEN_TOKEN")
	case l.Password == "":
		missing = append(missing, "LINKWARDEN_PASSWORD")
	}
	return missing
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Linkwarden Linkwarden
	AuthMode   model.AuthMode
	Settings   model.Settings // page defaults; seed for new sessions

	Password  string        // page password; empty disables the gate
	UnlockTTL time.Duration // zero: unlock lasts for the browser session

	ListenAddr    string
	DBPath        string
	SecretKey     []byte
	EphemeralKey  bool // SecretKey was generated because none was configured
	CacheTTL      time.Duration
	SessionMaxAge time.Duration
	SecureCookies bool
	Hostname      string
}

// Load reads configuration from environment variables, after merging an
// optional .env file from the working directory, and returns a validated
// Config. Out-of-range grid and TTL values are clamped; unparsable integers
// fall back to their default. Invalid durations, keys and auth modes fail.
func Load() (*Config, error) {
	// A missing .env is the normal case; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		Linkwarden: Linkwarden{
			BaseURL:  envStr("LINKWARDEN_URL", ""),
			Token:    envStr("LINKWARDEN_TOKEN", ""),
			Username: envStr("LINKWARDEN_USERNAME", ""),
			Password: envStr("LINKWARDEN_PASSWORD", ""),
		},
		Password:      envStr("SPEEDDIAL_PASSWORD", ""),
		ListenAddr:    envStr("SPEEDDIAL_LISTEN_ADDR", "127.0.0.1:9018"),
		DBPath:        envStr("SPEEDDIAL_DB_PATH", "speeddial.db"),
		SecureCookies: envBool("SPEEDDIAL_SECURE_COOKIES", false),
		Hostname:      envStr("HOSTNAME", "speeddial"),
	}

	cfg.Settings = model.Settings{
		CollectionID:    envStr("LINKWARDEN_COLLECTION", ""),
		CollectionName:  envStr("LINKWARDEN_COLLECTION_NAME", model.DefaultCollectionName),
		GridColumns:     envInt("LINKWARDEN_COLLECTION_COLUMNS", model.DefaultGridColumns),
		GridSpacing:     envInt("LINKWARDEN_COLLECTION_SPACING", model.DefaultGridSpacing),
		SortMode:        model.SortMode(envStr("LINKWARDEN_COLLECTION_SORT", string(model.SortDateDesc))),
		Theme:           model.Theme(envStr("SPEEDDIAL_THEME", string(model.ThemeAuto))),
		BackgroundMode:  model.BackgroundMode(envStr("SPEEDDIAL_BACKGROUND", string(model.BackgroundWallpaper))),
		WallpaperURL:    envStr("SPEEDDIAL_WALLPAPER_URL", ""),
		BackgroundColor: envStr("SPEEDDIAL_BACKGROUND_COLOR", model.DefaultBackgroundColor),
		TextColor:       envStr("SPEEDDIAL_TEXT_COLOR", ""),
		OpenInNewTab:    envBool("SPEEDDIAL_OPEN_IN_NEW_TAB", false),
		ShowSidebar:     envBool("SPEEDDIAL_BOOKMARKS", false),
	}.Normalize(model.EnvBounds)

	minutes := model.Clamp(envInt("SPEEDDIAL_UNLOCK_TTL_MINUTES", 0), 0, MaxUnlockTTLMinutes)
	cfg.UnlockTTL = time.Duration(minutes) * time.Minute

	mode, err := parseAuthMode(envStr("SPEEDDIAL_AUTH_MODE", ""), cfg.Linkwarden)
	if err != nil {
		return nil, err
	}
	cfg.AuthMode = mode

	if cfg.CacheTTL, err = envDuration("SPEEDDIAL_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionMaxAge, err = envDuration("SPEEDDIAL_SESSION_MAX_AGE", 720*time.Hour); err != nil {
		return nil, err
	}

	if cfg.SecretKey, cfg.EphemeralKey, err = secretKey(envStr("SPEEDDIAL_SECRET_KEY", "")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseAuthMode defaults to fixed mode when any Linkwarden credential is
// configured and to session mode otherwise.
func parseAuthMode(v string, lw Linkwarden) (model.AuthMode, error) {
	switch strings.ToLower(v) {
	case "":
		if lw.HasCredentials() {
			return model.AuthModeFixed, nil
		}
		return model.AuthModeSession, nil
	case string(model.AuthModeFixed):
		return model.AuthModeFixed, nil
	case string(model.AuthModeSession):
		return model.AuthModeSession, nil
	default:
		return "", fmt.Errorf("SPEEDDIAL_AUTH_MODE must be %q or %q, got %q", model.AuthModeFixed, model.AuthModeSession, v)
	}
}

// secretKey decodes a 64-hex-character key, or generates a random one.
func secretKey(v string) ([]byte, bool, error) {
	if v == "" {
		key := make([]byte, secretKeyBytes)
		if _, err := rand.Read(key); err != nil {
			return nil, false, fmt.Errorf("generate secret key: %w", err)
		}
		return key, true, nil
	}

	key, err := hex.DecodeString(v)
	if err != nil {
		return nil, false, fmt.Errorf("SPEEDDIAL_SECRET_KEY is not valid hex: %w", err)
	}
	if len(key) != secretKeyBytes {
		return nil, false, fmt.Errorf("SPEEDDIAL_SECRET_KEY must be %d hex characters, got %d", secretKeyBytes*2, len(v))
	}
	return key, false, nil
}

func envStr(name, def string) string {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func envBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "y":
		return true
	default:
		return false
	}
}

func envInt(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", name, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return d, nil
}
