package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"gohanBot/internal/autoresponder"
	"gohanBot/internal/database"
	"gohanBot/internal/translate"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

var errFakeForbidden = errors.New("HTTP 403 Forbidden")

type sentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
}

type reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// fakeSession records every call the bot makes against Discord
type fakeSession struct {
	mu sync.Mutex

	opened   bool
	closed   bool
	handlers int
	status   string

	sent      []sentMessage
	deleted   []string
	reactions []reaction
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams

	registeredApp   string
	registeredGuild string
	registered      []*discordgo.ApplicationCommand

	failDeletes   bool
	failReactions bool
	messageSeq    int
}

var _ Session = (*fakeSession)(nil)

func (f *fakeSession) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = true
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) AddHandler(handler interface{}) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers++
	return func() {}
}

func (f *fakeSession) UpdateGameStatus(_ int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = name
	return nil
}

func (f *fakeSession) record(channelID, content string, embed *discordgo.MessageEmbed) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageSeq++
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content, Embed: embed})
	return &discordgo.Message{ID: fmt.Sprintf("sent-%d", f.messageSeq), ChannelID: channelID, Content: content}
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(channelID, content, nil), nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	var embed *discordgo.MessageEmbed
	if len(data.Embeds) > 0 {
		embed = data.Embeds[0]
	}
	return f.record(channelID, data.Content, embed), nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(channelID, "", embed), nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeletes {
		return errFakeForbidden
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReactions {
		return errFakeForbidden
	}
	f.reactions = append(f.reactions, reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID})
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{ID: "followup"}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registeredApp = appID
	f.registeredGuild = guildID
	f.registered = cmds
	return cmds, nil
}

func (f *fakeSession) sentContents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Content)
	}
	return out
}

func (f *fakeSession) lastSent(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no messages sent")
	return f.sent[len(f.sent)-1]
}

// fakeTranslator returns a canned result, or err when set
type fakeTranslator struct {
	err      error
	lastText string
	lastDest string
}

func (f *fakeTranslator) Translate(_ context.Context, text, dest string) (*translate.Result, error) {
	f.lastText = text
	f.lastDest = dest
	if f.err != nil {
		return nil, f.err
	}
	return &translate.Result{Text: "hola mundo", Source: "en", Dest: dest}, nil
}

type testBot struct {
	*Bot
	session    *fakeSession
	translator *fakeTranslator
	rulesPath  string
}

func setupTestBot(t *testing.T) *testBot {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rulesPath := filepath.Join(dir, "autoresponders.json")
	store := autoresponder.NewStore(rulesPath)
	require.NoError(t, store.Init())

	session := &fakeSession{}
	translator := &fakeTranslator{}
	b := newBot(session, db, store, translator, Config{
		SecretTrigger: DefaultSecretTrigger,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &testBot{Bot: b, session: session, translator: translator, rulesPath: rulesPath}
}

func userMessage(channelID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "msg-1",
		ChannelID: channelID,
		GuildID:   "guild-1",
		Content:   content,
		Author:    &discordgo.User{ID: "user-1", Username: "gohan"},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func slashCommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:        "interaction-1",
			Type:      discordgo.InteractionApplicationCommand,
			ChannelID: "chan-1",
			GuildID:   "guild-1",
			Member:    &discordgo.Member{User: &discordgo.User{ID: "user-1", Username: "gohan"}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}
