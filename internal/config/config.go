// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Storage StorageConfig
	XP      XPConfig
	Discord DiscordConfig
	Auth    AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed dashboard origins (default: *)
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// BasePath is the directory holding the Badger database and the
	// progression journal (default: ~/LevelUp/data).
	BasePath string
}

// XPConfig holds progression tuning.
type XPConfig struct {
	PerMessage   int64 // XP per qualifying message (default: 150)
	PerLevelUnit int64 // Base XP per level slot (default: 3000)

	// Cooldown limits how often a single user in a single server can earn
	// message XP. Zero CooldownRPS disables the limiter.
	CooldownRPS   float64
	CooldownBurst int
}

// DiscordConfig holds settings for the optional profile enrichment lookup.
type DiscordConfig struct {
	BotToken      string
	APIBaseURL    string        // default: https://discord.com/api
	LookupTimeout time.Duration // per-user enrichment timeout (default: 2s)
}

// AuthConfig holds API authentication configuration.
type AuthConfig struct {
	// AdminKeyHash is the bcrypt hash of the admin API key required by
	// privileged endpoints. Empty disables admin endpoints.
	AdminKeyHash string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed origins (default: *)")
	xpPerMessage := flag.String("xp-per-message", "", "XP granted per qualifying message (default: 150)")
	xpPerLevel := flag.String("xp-per-level", "", "Base XP per level slot (default: 3000)")
	cooldownRPS := flag.String("xp-cooldown-rps", "", "Max XP awards per second per user (0 disables)")
	cooldownBurst := flag.String("xp-cooldown-burst", "", "XP cooldown burst size (default: 3)")
	botToken := flag.String("bot-token", "", "Discord bot token for profile enrichment")
	lookupTimeout := flag.String("lookup-timeout", "", "Profile lookup timeout (default: 2s)")
	adminKeyHash := flag.String("admin-key-hash", "", "bcrypt hash of the admin API key")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitOrigins(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Storage: StorageConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		XP: XPConfig{
			PerMessage:    getInt64ConfigValue(*xpPerMessage, "XP_PER_MESSAGE", 150),
			PerLevelUnit:  getInt64ConfigValue(*xpPerLevel, "XP_PER_LEVEL", 3000),
			CooldownRPS:   getFloatConfigValue(*cooldownRPS, "XP_COOLDOWN_RPS", 0.5),
			CooldownBurst: int(getInt64ConfigValue(*cooldownBurst, "XP_COOLDOWN_BURST", 3)),
		},
		Discord: DiscordConfig{
			BotToken:   getConfigValue(*botToken, "BOT_TOKEN", ""),
			APIBaseURL: getConfigValue("", "DISCORD_API_URL", "https://discord.com/api"),
		},
		Auth: AuthConfig{
			AdminKeyHash: getConfigValue(*adminKeyHash, "ADMIN_KEY_HASH", ""),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Discord.LookupTimeout, err = parseDurationValue(*lookupTimeout, "LOOKUP_TIMEOUT", "2s"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.XP.PerMessage < 0 {
		return errors.New("XP_PER_MESSAGE cannot be negative")
	}
	if c.XP.PerLevelUnit <= 0 {
		return errors.New("XP_PER_LEVEL must be positive")
	}
	if c.XP.CooldownRPS < 0 {
		return errors.New("XP_COOLDOWN_RPS cannot be negative")
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/LevelUp/data if not specified.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "LevelUp", "data")

	path := c.Storage.BasePath
	if path == "" {
		c.Storage.BasePath = defaultPath
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Storage.BasePath = filepath.Clean(path)
	return nil
}

// splitOrigins parses a comma-separated origin list.
func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseInt(strValue, 10, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue parses a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
