// Package logging builds the process's slog loggers and bridges discordgo's
// package-level logger into them.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// NameKey is the attribute used to tag sub-loggers
const NameKey = "logger"

var discordgoLevels = map[int]slog.Level{
	discordgo.LogDebug:         slog.LevelDebug,
	discordgo.LogInformational: slog.LevelInfo,
	discordgo.LogWarning:       slog.LevelWarn,
	discordgo.LogError:         slog.LevelError,
}

// ParseLevel converts DEBUG/INFO/WARN/ERROR (any case) to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// NewHandler returns a tint handler writing to w at the given level
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	})
}

// Named returns a child logger tagged with name
func Named(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(NameKey, name)
}

// DiscordgoLogger adapts handler to discordgo's Logger function signature
func DiscordgoLogger(ctx context.Context, handler slog.Handler) func(msgL, caller int, format string, args ...any) {
	log := slog.New(handler).With(NameKey, "discordgo")
	return func(msgL, _ int, format string, args ...any) {
		level, ok := discordgoLevels[msgL]
		if !ok {
			level = slog.LevelInfo
		}
		log.LogAttrs(ctx, level, strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", ""))
	}
}

// InstallDiscordgo routes discordgo's package logger through handler
func InstallDiscordgo(ctx context.Context, handler slog.Handler) {
	discordgo.Logger = DiscordgoLogger(ctx, handler)
}
