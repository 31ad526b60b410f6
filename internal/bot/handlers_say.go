package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// blankEmbedText keeps an image-only embed from being rejected as empty
const blankEmbedText = "‎"

const imageMarker = " /image "

var suggestionReactions = []string{"👍🏼", "😑", "👎🏼"}

func randomColor() int {
	return rand.IntN(0xFFFFFF + 1)
}

// handleSay repeats the text. The text form deletes the invoking message first.
func (b *Bot) handleSay(ctx context.Context, req *request) {
	text := req.arg("text")
	if text == "" {
		req.respond("⚠️ You need to provide a message!")
		return
	}

	if err := req.responder.deleteInvocation(); err != nil {
		b.logger.Debug("failed to delete say invocation", "channel_id", req.channelID, "error", err)
	}

	req.respond(text)
}

// splitImage separates "text /image url" into its parts
func splitImage(args string) (text, imageURL string) {
	padded := " " + args + " "
	if idx := strings.Index(padded, imageMarker); idx >= 0 {
		text = strings.TrimSpace(padded[:idx])
		imageURL = strings.TrimSpace(padded[idx+len(imageMarker):])
		imageURL = strings.ReplaceAll(imageURL, "\n", "")
		return text, imageURL
	}
	return strings.TrimSpace(args), ""
}

func (b *Bot) handleSayEmbed(ctx context.Context, req *request) {
	args := req.arg("text")
	image := req.arg("image")
	if args == "" && image == "" {
		req.usage(b.prefix + "sayembed <text> /image <optional image URL>")
		return
	}

	text, imageURL := splitImage(args)
	if image != "" {
		imageURL = image
	}
	if text == "" && imageURL == "" {
		req.respond("⚠️ You must provide text or an image URL!")
		return
	}

	embed := &discordgo.MessageEmbed{
		Description: text,
		Color:       randomColor(),
	}
	if embed.Description == "" {
		embed.Description = blankEmbedText
	}
	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	req.respondEmbed(embed)
}

func (b *Bot) handleSuggestion(ctx context.Context, req *request) {
	kind := strings.ToLower(req.arg("type"))
	content := req.arg("content")
	imageURL := req.arg("image_url")
	if imageURL == "" {
		// the text form carries the URL inline as "/image <url>"
		content, imageURL = splitImage(content)
	}

	usage := b.prefix + "suggestion <text|image|both> <content> /image <url>"
	switch kind {
	case "text":
		if content == "" {
			req.usage(usage)
			return
		}
	case "image", "both":
		if imageURL == "" {
			req.respondError("An image URL is required for image suggestions")
			return
		}
	default:
		req.usage(usage)
		return
	}

	author := "Someone"
	if req.user != nil {
		author = req.user.Username
	}

	embed := &discordgo.MessageEmbed{
		Color:  randomColor(),
		Author: &discordgo.MessageEmbedAuthor{Name: fmt.Sprintf("%s has suggested this:", author)},
	}
	if kind == "text" || kind == "both" {
		embed.Description = content
		if embed.Description == "" {
			embed.Description = blankEmbedText
		}
	}
	if kind == "image" || kind == "both" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	msg, err := b.session.ChannelMessageSendEmbed(req.channelID, embed)
	if err != nil {
		b.logger.Warn("failed to post suggestion", "channel_id", req.channelID, "error", err)
		req.respondError("Failed to post your suggestion")
		return
	}

	for _, emoji := range suggestionReactions {
		if err := b.session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			b.logger.Debug("failed to add suggestion reaction", "emoji", emoji, "error", err)
		}
	}

	req.respondEphemeral("Your suggestion has been submitted!")
}
