package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type commandHandler func(ctx context.Context, req *request)

// interactionCreate handles all slash command interactions
func (b *Bot) interactionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(i)
}

func (b *Bot) handleInteraction(i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatch(b.newInteractionRequest(i))
	default:
		b.logger.Debug("ignoring interaction", "type", i.Type.String())
	}
}

func (b *Bot) handlers() map[string]commandHandler {
	return map[string]commandHandler{
		// Message commands
		"say":        b.handleSay,
		"sayembed":   b.handleSayEmbed,
		"suggestion": b.handleSuggestion,

		// Autoresponders
		"setautoresponder":    b.handleSetAutoresponder,
		"removeautoresponder": b.handleRemoveAutoresponder,
		"listautoresponders":  b.handleListAutoresponders,

		// Records
		"dragonball": b.handleDragonball,
		"quote":      b.handleQuote,

		// Fun
		"fun":       b.handleFun,
		"translate": b.handleTranslate,

		// Sticky messages
		"setsticky":    b.handleSetSticky,
		"removesticky": b.handleRemoveSticky,

		// Info
		"stats": b.handleStats,
		"help":  b.handleHelp,
	}
}

// dispatch routes a command to its handler. A panicking handler is logged
// and swallowed so it cannot take the gateway connection down.
func (b *Bot) dispatch(req *request) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command handler panicked", "command", req.name, "panic", r)
		}
	}()

	handler, ok := b.handlers()[req.name]
	if !ok {
		req.respondError("Unknown command")
		return
	}

	b.logger.Debug("dispatching command", "command", req.name, "user_id", invokerID(req), "channel_id", req.channelID)

	handler(b.ctx, req)
}

// formatList joins lines, truncating with "... and N more" past maxLength
func formatList(lines []string, maxLength int) string {
	result := ""
	for idx, line := range lines {
		line += "\n"
		if len(result)+len(line) > maxLength {
			result += fmt.Sprintf("... and %d more", len(lines)-idx)
			break
		}
		result += line
	}
	if result == "" {
		result = "None"
	}
	return strings.TrimSpace(result)
}

func invokerID(req *request) string {
	if req.user == nil {
		return ""
	}
	return req.user.ID
}
