package bot

import (
	"context"
	"errors"
	"fmt"

	"gohanBot/internal/autoresponder"

	"github.com/bwmarrin/discordgo"
)

// embed descriptions are capped at 4096 characters by Discord
const maxDescriptionLength = 4000

func (b *Bot) handleSetAutoresponder(ctx context.Context, req *request) {
	trigger := req.arg("trigger")
	response := req.arg("response")
	form := req.arg("form")
	if trigger == "" || response == "" || form == "" {
		req.usage(b.prefix + "setautoresponder <trigger> <response> <text|reaction>")
		return
	}

	kind, err := autoresponder.ParseKind(form)
	if err != nil {
		req.respondError("Form must be `text` or `reaction`")
		return
	}

	if err := b.autoresponses.Set(trigger, response, kind); err != nil {
		b.logger.Error("failed to save autoresponder", "trigger", trigger, "error", err)
		req.respondError("Failed to save autoresponder")
		return
	}

	req.respond(fmt.Sprintf("Autoresponder set for trigger: %s", trigger))
}

func (b *Bot) handleRemoveAutoresponder(ctx context.Context, req *request) {
	trigger := req.arg("trigger")
	if trigger == "" {
		req.usage(b.prefix + "removeautoresponder <trigger>")
		return
	}

	removed, err := b.autoresponses.Remove(trigger)
	if err != nil {
		b.logger.Error("failed to remove autoresponder", "trigger", trigger, "error", err)
		req.respondError("Failed to remove autoresponder")
		return
	}

	if !removed {
		req.respond(fmt.Sprintf("No autoresponder found for trigger: %s", trigger))
		return
	}
	req.respond(fmt.Sprintf("Removed autoresponder for trigger: %s", trigger))
}

func (b *Bot) handleListAutoresponders(ctx context.Context, req *request) {
	rules, err := b.autoresponses.Load()
	if err != nil && !errors.Is(err, autoresponder.ErrCorrupt) {
		b.logger.Error("failed to load autoresponders", "error", err)
		req.respondError("Failed to load autoresponders")
		return
	}
	if err != nil {
		b.logger.Warn("autoresponder rules unreadable, treating as empty", "error", err)
	}

	if rules.Len() == 0 {
		req.respond("No autoresponders set.")
		return
	}

	lines := make([]string, 0, rules.Len())
	for _, rule := range rules.Entries() {
		lines = append(lines, fmt.Sprintf("**%s** -> %s (%s)", rule.Trigger, rule.Response, rule.Type))
	}

	req.respondEmbed(&discordgo.MessageEmbed{
		Title:       "Autoresponders",
		Description: formatList(lines, maxDescriptionLength),
		Color:       0x00ff00,
	})
}
