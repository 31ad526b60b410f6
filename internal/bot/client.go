package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gohanBot/internal/autoresponder"
	"gohanBot/internal/database"
	"gohanBot/internal/logging"
	"gohanBot/internal/rules"
	"gohanBot/internal/sticky"
	"gohanBot/internal/translate"

	"github.com/bwmarrin/discordgo"
)

// DefaultSecretTrigger is the literal that makes the bot ping @everyone
const DefaultSecretTrigger = "882914001772559"

// Translator translates text into a destination language
type Translator interface {
	Translate(ctx context.Context, text, dest string) (*translate.Result, error)
}

type Bot struct {
	session       Session
	db            *database.DB
	autoresponses *autoresponder.Store
	stickies      *sticky.Table
	engine        *rules.Engine
	translator    Translator
	prefix        string
	guildID       string
	status        string
	logger        *slog.Logger

	ctx context.Context

	mu     sync.RWMutex
	selfID string
}

type Config struct {
	Token              string
	DatabasePath       string
	AutorespondersPath string
	Prefix             string
	GuildID            string
	SecretTrigger      string
	Status             string
	Logger             *slog.Logger
}

// New creates a new Discord bot instance
func New(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := autoresponder.NewStore(cfg.AutorespondersPath)
	if err := store.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize autoresponders: %w", err)
	}

	return newBot(session, db, store, translate.NewClient("", nil), cfg), nil
}

func newBot(session Session, db *database.DB, store *autoresponder.Store, translator Translator, cfg Config) *Bot {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "!"
	}
	status := cfg.Status
	if status == "" {
		status = prefix + "help | /help"
	}

	stickies := sticky.NewTable()

	b := &Bot{
		session:       session,
		db:            db,
		autoresponses: store,
		stickies:      stickies,
		engine:        rules.NewEngine(cfg.SecretTrigger, store, stickies, logging.Named(logger, "rules")),
		translator:    translator,
		prefix:        prefix,
		guildID:       strings.TrimSpace(cfg.GuildID),
		status:        status,
		logger:        logging.Named(logger, "bot"),
		ctx:           context.Background(),
	}

	// Register handlers
	session.AddHandler(b.ready)
	session.AddHandler(b.messageCreate)
	session.AddHandler(b.interactionCreate)

	return b
}

// Start opens the Discord connection and blocks until ctx is cancelled.
// Slash commands are registered from the ready handler.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	b.logger.Info("bot is now running")

	<-ctx.Done()
	return nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	b.logger.Info("shutting down bot")

	if err := b.session.Close(); err != nil {
		b.logger.Error("error closing Discord session", "error", err)
	}

	if err := b.db.Close(); err != nil {
		b.logger.Error("error closing database", "error", err)
	}

	return nil
}

// ready handler
func (b *Bot) ready(_ *discordgo.Session, event *discordgo.Ready) {
	b.onReady(event)
}

func (b *Bot) onReady(event *discordgo.Ready) {
	if event.User == nil {
		return
	}

	b.mu.Lock()
	b.selfID = event.User.ID
	b.mu.Unlock()

	b.logger.Info("logged in", "user", event.User.Username, "id", event.User.ID)

	// Set bot status
	if err := b.session.UpdateGameStatus(0, b.status); err != nil {
		b.logger.Warn("failed to set status", "error", err)
	}

	if err := b.registerCommands(event.User.ID); err != nil {
		b.logger.Error("failed to register commands", "error", err)
	}
}

func (b *Bot) botUserID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selfID
}
