package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gohanBot/internal/database"
)

// discord rejects message content over 2000 characters
const maxContentLength = 1900

func (b *Bot) handleDragonball(ctx context.Context, req *request) {
	action := strings.ToLower(req.arg("action"))
	name := req.arg("name")
	usage := b.prefix + "dragonball <add|get|list> [name] [description]"

	switch action {
	case "add":
		if name == "" {
			req.usage(usage)
			return
		}
		err := b.db.AddCharacter(ctx, name, req.arg("description"), invokerID(req))
		if errors.Is(err, database.ErrDuplicateName) {
			req.respond(fmt.Sprintf("%s already exists.", name))
			return
		}
		if err != nil {
			b.logger.Error("failed to add character", "name", name, "error", err)
			req.respondError("Failed to add character")
			return
		}
		req.respond(fmt.Sprintf("Added %s to DB.", name))

	case "get":
		if name == "" {
			req.usage(usage)
			return
		}
		c, err := b.db.GetCharacter(ctx, name)
		if errors.Is(err, database.ErrNotFound) {
			req.respond(fmt.Sprintf("No character named %s.", name))
			return
		}
		if err != nil {
			b.logger.Error("failed to get character", "name", name, "error", err)
			req.respondError("Failed to look up character")
			return
		}
		req.respond(fmt.Sprintf("**%s**: %s", c.Name, c.Description))

	case "list":
		names, err := b.db.ListCharacterNames(ctx)
		if err != nil {
			b.logger.Error("failed to list characters", "error", err)
			req.respondError("Failed to list characters")
			return
		}
		if len(names) == 0 {
			req.respond("No characters in DB.")
			return
		}
		req.respond(truncate("Characters: "+strings.Join(names, ", "), maxContentLength))

	default:
		req.usage(usage)
	}
}

func (b *Bot) handleQuote(ctx context.Context, req *request) {
	action := strings.ToLower(req.arg("action"))
	character := req.arg("character")
	usage := b.prefix + "quote <add|get|random> [character] [text]"

	switch action {
	case "add":
		text := req.arg("text")
		if character == "" || text == "" {
			req.usage(usage)
			return
		}
		if err := b.db.AddQuote(ctx, character, text, invokerID(req)); err != nil {
			b.logger.Error("failed to add quote", "character", character, "error", err)
			req.respondError("Failed to add quote")
			return
		}
		req.respond(fmt.Sprintf("Quote added for %s.", character))

	case "get":
		if character == "" {
			req.usage(usage)
			return
		}
		quotes, err := b.db.GetQuotes(ctx, character)
		if err != nil {
			b.logger.Error("failed to get quotes", "character", character, "error", err)
			req.respondError("Failed to look up quotes")
			return
		}
		if len(quotes) == 0 {
			req.respond(fmt.Sprintf("No quotes found for %s.", character))
			return
		}
		req.respond(truncate(fmt.Sprintf("Quotes for %s:\n%s", character, strings.Join(quotes, "\n")), maxContentLength))

	case "random":
		q, err := b.db.RandomQuote(ctx)
		if errors.Is(err, database.ErrNoQuotes) {
			req.respond("No quotes in DB.")
			return
		}
		if err != nil {
			b.logger.Error("failed to pick random quote", "error", err)
			req.respondError("Failed to pick a quote")
			return
		}
		req.respond(fmt.Sprintf("**%s** says: %s", q.Character, q.Text))

	default:
		req.usage(usage)
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
