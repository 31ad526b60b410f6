package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"gohanBot/internal/autoresponder"
	"gohanBot/internal/database"
	"gohanBot/internal/translate"

	"github.com/bwmarrin/discordgo"
	"github.com/tidwall/gjson"
)

const (
	minPowerLevel = 1000
	maxPowerLevel = 99999

	recentActivityLimit = 5
	// embed field values are capped at 1024 characters
	maxFieldLength = 1000
)

var compliments = []string{
	"You’re as mighty as a Super Saiyan!",
	"Your energy is unstoppable!",
	"You could take on Frieza himself!",
}

func rollPowerLevel() int {
	return minPowerLevel + rand.IntN(maxPowerLevel-minPowerLevel+1)
}

func (b *Bot) handleFun(ctx context.Context, req *request) {
	switch strings.ToLower(req.arg("action")) {
	case "roll":
		req.respond(fmt.Sprintf("💥 Saiyan Power Level Roll: %d 🔥", rollPowerLevel()))

	case "compliment":
		user := req.userArg("user")
		if user == nil {
			req.respond("Mention a user to compliment!")
			return
		}
		req.respond(fmt.Sprintf("%s, %s", user.Mention(), compliments[rand.IntN(len(compliments))]))

	default:
		req.usage(b.prefix + "fun <roll|compliment> [@user]")
	}
}

// handleTranslate acknowledges immediately, then follows up with the result
// or the translation service's error
func (b *Bot) handleTranslate(ctx context.Context, req *request) {
	text := req.arg("text")
	language := req.arg("language")
	if text == "" || language == "" {
		req.usage(b.prefix + "translate <language> <text>")
		return
	}

	req.respond("I got this 🔥")

	result, err := b.translator.Translate(ctx, text, language)
	if err != nil {
		b.logger.Info("translation failed", "language", language, "error", err)
		req.send(reply{Content: fmt.Sprintf("❌ Error: `%v`\nInvalid language code?", err)})
		return
	}

	req.respondEmbed(&discordgo.MessageEmbed{
		Title:       "🌐 Translation Complete",
		Description: truncate(fmt.Sprintf("**Translated to `%s`:**\n\n%s", language, result.Text), maxDescriptionLength),
		Color:       0x00FFAE,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Saiyan-grade translation ⚡ (%s → %s)", translate.LanguageName(result.Source), translate.LanguageName(result.Dest)),
		},
	})
}

func (b *Bot) handleStats(ctx context.Context, req *request) {
	stats, err := b.db.GetStats(ctx)
	if err != nil {
		b.logger.Error("failed to get stats", "error", err)
		req.respondError("Failed to fetch statistics")
		return
	}

	rules, err := b.autoresponses.Load()
	if err != nil && !errors.Is(err, autoresponder.ErrCorrupt) {
		b.logger.Error("failed to load autoresponders", "error", err)
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 Gohan Bot Statistics",
		Color: 0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Characters", Value: strconv.Itoa(stats.Characters), Inline: true},
			{Name: "Quotes", Value: strconv.Itoa(stats.Quotes), Inline: true},
			{Name: "Autoresponders", Value: strconv.Itoa(rules.Len()), Inline: true},
			{Name: "Sticky Channels", Value: strconv.Itoa(b.stickies.Len()), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	entries, err := b.db.GetAuditLog(ctx, recentActivityLimit)
	if err != nil {
		b.logger.Warn("failed to get audit log", "error", err)
	} else if len(entries) > 0 {
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, formatActivity(e))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent Activity",
			Value: formatList(lines, maxFieldLength),
		})
	}

	req.respondEmbed(embed)
}

// formatActivity renders one audit entry, e.g. "Quote for Goku added by <@1>"
func formatActivity(e database.AuditLog) string {
	var what string
	switch e.Action {
	case "add_character":
		what = gjson.Get(e.Details, "name").String() + " added"
	case "add_quote":
		what = "Quote for " + gjson.Get(e.Details, "character").String() + " added"
	default:
		what = e.Action
	}

	who := e.UserID
	if _, err := strconv.ParseUint(who, 10, 64); err == nil {
		who = fmt.Sprintf("<@%s>", who)
	}

	return fmt.Sprintf("%s by %s <t:%d:R>", what, who, e.Timestamp.Unix())
}

func (b *Bot) handleHelp(ctx context.Context, req *request) {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, fmt.Sprintf("`/%s` - %s\n  `%s`", cmd.Name, cmd.Description, textUsage(b.prefix, cmd)))
	}

	req.send(reply{
		Embed: &discordgo.MessageEmbed{
			Title:       "Gohan Bot Commands",
			Description: formatList(lines, maxDescriptionLength),
			Color:       0xff9900,
			Footer: &discordgo.MessageEmbedFooter{
				Text: "The second line of each entry is the text form; quote multi-word arguments except the last",
			},
		},
		Ephemeral: true,
	})
}
