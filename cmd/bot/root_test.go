package main

import (
	"os"
	"path/filepath"
	"testing"

	"gohanBot/internal/bot"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every bound variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "secret-token")

	cfg, err := loadConfig(viper.New(), writeEnvFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Token:          "secret-token",
		Database:       DefaultDatabase,
		Port:           DefaultPort,
		Autoresponders: DefaultAutoresponders,
		Prefix:         DefaultPrefix,
		LogLevel:       DefaultLogLevel,
		SecretTrigger:  bot.DefaultSecretTrigger,
	}, cfg)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "secret-token")
	t.Setenv("DB_FILE", "/data/gohan.db")
	t.Setenv("PORT", "9000")
	t.Setenv("AUTORESPONDERS_FILE", "/data/rules.json")
	t.Setenv("COMMAND_PREFIX", "g.")
	t.Setenv("GUILD_ID", "1234")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SECRET_TRIGGER", "open sesame")

	cfg, err := loadConfig(viper.New(), writeEnvFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "/data/gohan.db", cfg.Database)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/data/rules.json", cfg.Autoresponders)
	assert.Equal(t, "g.", cfg.Prefix)
	assert.Equal(t, "1234", cfg.GuildID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "open sesame", cfg.SecretTrigger)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	clearEnv(t)

	path := writeEnvFile(t, "BOT_TOKEN=file-token\nPORT=7000\n")
	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoadConfigEnvironmentBeatsEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "env-token")

	cfg, err := loadConfig(viper.New(), writeEnvFile(t, "BOT_TOKEN=file-token\n"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoadConfigFlagsBeatEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("PORT", "9000")

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--port", "7070", "--prefix", "?"}))

	v := viper.New()
	require.NoError(t, v.BindPFlags(cmd.Flags()))

	cfg, err := loadConfig(v, writeEnvFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoadConfigMissingToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "   ")

	_, err := loadConfig(viper.New(), writeEnvFile(t, ""))
	assert.ErrorIs(t, err, errMissingToken)
}

func TestLoadConfigInvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "secret-token")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := loadConfig(viper.New(), writeEnvFile(t, ""))
	assert.Error(t, err)
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "secret-token")

	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
