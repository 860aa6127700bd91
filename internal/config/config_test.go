package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Server:  ServerConfig{Port: "8080", ReadTimeout: 15 * time.Second},
		Storage: StorageConfig{BasePath: "/tmp/levelup-test"},
		XP:      XPConfig{PerMessage: 150, PerLevelUnit: 3000, CooldownRPS: 0.5, CooldownBurst: 3},
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Environment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "sandbox"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestConfig_Validate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestConfig_Validate_XP(t *testing.T) {
	cfg := validConfig()
	cfg.XP.PerLevelUnit = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.XP.PerMessage = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.XP.CooldownRPS = -0.1
	assert.Error(t, cfg.Validate())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("LEVELUP_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "LEVELUP_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "LEVELUP_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "LEVELUP_TEST_MISSING", "default"))
}

func TestGetInt64ConfigValue(t *testing.T) {
	t.Setenv("LEVELUP_TEST_INT", "250")
	assert.Equal(t, int64(250), getInt64ConfigValue("", "LEVELUP_TEST_INT", 150))

	t.Setenv("LEVELUP_TEST_INT", "not-a-number")
	assert.Equal(t, int64(150), getInt64ConfigValue("", "LEVELUP_TEST_INT", 150))
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins("*"))
	assert.Equal(t,
		[]string{"https://dash.example.com", "http://localhost:3000"},
		splitOrigins("https://dash.example.com, http://localhost:3000"))
	assert.Equal(t, []string{"*"}, splitOrigins(" , "))
}

func TestExpandDataPath_Default(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.expandDataPath())
	assert.NotEmpty(t, cfg.Storage.BasePath)
	assert.Contains(t, cfg.Storage.BasePath, "LevelUp")
}
