// Package config reads process configuration from the environment, with
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration of hostline.
type Config struct {
	Port      int
	LogLevel  string
	MaxTokens int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// SessionDir keeps conversations on disk when Redis is not configured.
	SessionDir string
	// EncryptionKey seals stored conversations when set (32 bytes, hex or base64).
	EncryptionKey string
	FallbackKeys  []string
	MaskPII       bool
	MaskSlots     []string
	MaxInputBytes int

	SheetID             string
	CredentialsFile     string
	ServiceAccountEmail string
	PrivateKey          string

	RetellAPIKey  string
	RetellBaseURL string

	TemplateDir string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:          8000,
		LogLevel:      "info",
		MaxTokens:     800,
		SessionTTL:    2 * time.Hour,
		MaxInputBytes: 4096,
	}
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing files are ignored; variables already in the
// environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Defaults()
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var err error
	if c.Port, err = intVar(get, "PORT", c.Port); err != nil {
		return Config{}, err
	}
	if c.MaxTokens, err = intVar(get, "MAX_TOKENS", c.MaxTokens); err != nil {
		return Config{}, err
	}
	if c.RedisDB, err = intVar(get, "REDIS_DB", c.RedisDB); err != nil {
		return Config{}, err
	}
	if v := get("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if c.MaxInputBytes, err = intVar(get, "MAX_INPUT_BYTES", c.MaxInputBytes); err != nil {
		return Config{}, err
	}
	if v := get("SESSION_MASK_PII"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SESSION_MASK_PII: %w", err)
		}
		c.MaskPII = b
	}
	if v := get("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	c.RedisAddr = get("REDIS_ADDR")
	c.RedisPassword = get("REDIS_PASSWORD")
	c.SessionDir = get("SESSION_DIR")
	c.EncryptionKey = get("SESSION_ENCRYPTION_KEY")
	c.FallbackKeys = list(get("SESSION_ENCRYPTION_FALLBACK_KEYS"))
	c.MaskSlots = list(get("SESSION_MASK_SLOTS"))
	c.SheetID = get("GOOGLE_SHEET_ID")
	c.CredentialsFile = get("GOOGLE_CREDENTIALS_FILE")
	c.ServiceAccountEmail = get("GOOGLE_SERVICE_ACCOUNT_EMAIL")
	// Keys pasted into .env files carry literal \n sequences.
	c.PrivateKey = strings.ReplaceAll(get("GOOGLE_PRIVATE_KEY"), `\n`, "\n")
	c.RetellAPIKey = get("RETELL_API_KEY")
	c.RetellBaseURL = get("RETELL_BASE_URL")
	c.TemplateDir = get("TEMPLATE_DIR")
	return c, nil
}

func intVar(get func(string) string, key string, def int) (int, error) {
	v := get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SheetsEnabled reports whether enough is set to write the call log to a
// spreadsheet.
func (c Config) SheetsEnabled() bool {
	if c.SheetID == "" {
		return false
	}
	return c.CredentialsFile != "" || (c.ServiceAccountEmail != "" && c.PrivateKey != "")
}
