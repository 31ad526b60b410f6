package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"gohanBot/internal/bot"
	"gohanBot/internal/health"
	"gohanBot/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDatabase       = "gohan.db"
	DefaultPort           = "8080"
	DefaultAutoresponders = "autoresponders.json"
	DefaultPrefix         = "!"
	DefaultLogLevel       = "INFO"
)

// Config is the process configuration, bound from flags, environment and .env
type Config struct {
	Token          string `mapstructure:"token"`
	Database       string `mapstructure:"database"`
	Port           string `mapstructure:"port"`
	Autoresponders string `mapstructure:"autoresponders"`
	Prefix         string `mapstructure:"prefix"`
	GuildID        string `mapstructure:"guild_id"`
	LogLevel       string `mapstructure:"log_level"`
	SecretTrigger  string `mapstructure:"secret_trigger"`
}

var errMissingToken = errors.New("BOT_TOKEN environment variable is not set")

// envBindings maps config keys to the environment variables they read
var envBindings = map[string]string{
	"token":          "BOT_TOKEN",
	"database":       "DB_FILE",
	"port":           "PORT",
	"autoresponders": "AUTORESPONDERS_FILE",
	"prefix":         "COMMAND_PREFIX",
	"guild_id":       "GUILD_ID",
	"log_level":      "LOG_LEVEL",
	"secret_trigger": "SECRET_TRIGGER",
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var envFile string

	cmd := &cobra.Command{
		Use:           "gohan [flags]",
		Short:         "Runs the Gohan Discord bot and its liveness endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, envFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	flags.String("token", "", "Discord bot token")
	flags.String("db", DefaultDatabase, "SQLite database path")
	flags.String("port", DefaultPort, "liveness endpoint port")
	flags.String("autoresponders", DefaultAutoresponders, "autoresponder rules file")
	flags.String("prefix", DefaultPrefix, "text command prefix")
	flags.String("guild", "", "register slash commands in this guild only")
	flags.String("log-level", DefaultLogLevel, "DEBUG, INFO, WARN or ERROR")

	_ = v.BindPFlag("token", flags.Lookup("token"))
	_ = v.BindPFlag("database", flags.Lookup("db"))
	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("autoresponders", flags.Lookup("autoresponders"))
	_ = v.BindPFlag("prefix", flags.Lookup("prefix"))
	_ = v.BindPFlag("guild_id", flags.Lookup("guild"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	return cmd
}

// loadConfig reads the dotenv file, then resolves each key from flag,
// environment and default in viper's usual precedence
func loadConfig(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("autoresponders", DefaultAutoresponders)
	v.SetDefault("prefix", DefaultPrefix)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("secret_trigger", bot.DefaultSecretTrigger)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, errMissingToken
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// run starts the bot and the liveness endpoint and waits for either to stop
func run(ctx context.Context, cfg *Config) error {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	handler := logging.NewHandler(os.Stderr, level)
	logger := slog.New(handler)
	slog.SetDefault(logger)
	logging.InstallDiscordgo(ctx, handler)

	b, err := bot.New(bot.Config{
		Token:              cfg.Token,
		DatabasePath:       cfg.Database,
		AutorespondersPath: cfg.Autoresponders,
		Prefix:             cfg.Prefix,
		GuildID:            cfg.GuildID,
		SecretTrigger:      cfg.SecretTrigger,
		Logger:             logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	defer b.Close()

	srv := health.NewServer(net.JoinHostPort("", cfg.Port), logging.Named(logger, "health"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return b.Start(gctx) })

	return g.Wait()
}
