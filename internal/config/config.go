package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// appName names the config and data directories.
const appName = "go-flashgen"

// Config keys.
const (
	KeyModel      = "model"
	KeyCardLimit  = "card-limit"
	KeyMaxTokens  = "max-tokens"
	KeySessionDir = "session-dir"
	KeyBaseURL    = "base-url"
	KeyDeck       = "deck"
	KeyExportDir  = "export-dir"
)

// Environment variable fallbacks.
const (
	EnvModel      = "FLASHGEN_MODEL"
	EnvCardLimit  = "FLASHGEN_CARD_LIMIT"
	EnvMaxTokens  = "FLASHGEN_MAX_TOKENS"
	EnvSessionDir = "FLASHGEN_SESSION_DIR"
	EnvBaseURL    = "FLASHGEN_BASE_URL"
	EnvDeck       = "FLASHGEN_DECK"
	EnvExportDir  = "FLASHGEN_EXPORT_DIR"
)

// envFallbacks maps each key to its environment variable.
var envFallbacks = map[string]string{
	KeyModel:      EnvModel,
	KeyCardLimit:  EnvCardLimit,
	KeyMaxTokens:  EnvMaxTokens,
	KeySessionDir: EnvSessionDir,
	KeyBaseURL:    EnvBaseURL,
	KeyDeck:       EnvDeck,
	KeyExportDir:  EnvExportDir,
}

// Sentinel errors.
var (
	ErrUnknownKey    = errors.New("unknown config key")
	ErrInvalidSyntax = errors.New("invalid config syntax")
	ErrInvalidValue  = errors.New("invalid config value")
	ErrNotDirectory  = errors.New("path is not a directory")
	ErrNotWritable   = errors.New("directory is not writable")
)

// Config holds user configuration loaded from ~/.config/go-flashgen/config.
// Zero values mean "not set"; callers apply their own defaults.
type Config struct {
	Model      string
	CardLimit  int
	MaxTokens  int
	SessionDir string
	BaseURL    string
	Deck       string
	ExportDir  string
}

// Keys returns the supported config keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(envFallbacks))
	for k := range envFallbacks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// EnvVar returns the environment variable backing key, or "" for unknown keys.
func EnvVar(key string) string {
	return envFallbacks[key]
}

// Validate checks value for key without writing it.
func Validate(key, value string) error {
	if _, ok := envFallbacks[key]; !ok {
		return fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s cannot contain newlines", ErrInvalidValue, key)
	}
	switch key {
	case KeyCardLimit, KeyMaxTokens:
		if _, err := positiveInt(key, value); err != nil {
			return err
		}
	case KeySessionDir, KeyExportDir, KeyModel:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
		}
	case KeyBaseURL:
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("%w: %s must start with http:// or https://", ErrInvalidValue, key)
		}
	}
	return nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidValue, key, value)
	}
	return n, nil
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-flashgen.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// DefaultSessionDir returns where sessions are stored when session-dir is unset.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share/go-flashgen.
func DefaultSessionDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
// Numeric values that don't parse are reported with ErrInvalidValue.
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		data = make(map[string]string)
	}

	// Environment variable fallback (only if not set in config).
	for key, env := range envFallbacks {
		if data[key] == "" {
			data[key] = os.Getenv(env)
		}
	}

	cfg.Model = data[KeyModel]
	cfg.SessionDir = ExpandPath(data[KeySessionDir])
	cfg.BaseURL = data[KeyBaseURL]
	cfg.Deck = data[KeyDeck]
	cfg.ExportDir = ExpandPath(data[KeyExportDir])

	if v := data[KeyCardLimit]; v != "" {
		if cfg.CardLimit, err = positiveInt(KeyCardLimit, v); err != nil {
			return Config{}, err
		}
	}
	if v := data[KeyMaxTokens]; v != "" {
		if cfg.MaxTokens, err = positiveInt(KeyMaxTokens, v); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w at line %d: %q", ErrInvalidSyntax, lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save validates and writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
//
// All paths are cleaned using filepath.Clean.
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureDir checks that d is a usable writable directory, creating it if missing.
func EnsureDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: directory cannot be empty", ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user session dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, d)
	}

	// Probe writability with a temp file.
	f, err := os.CreateTemp(d, ".go-flashgen-write-test-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
