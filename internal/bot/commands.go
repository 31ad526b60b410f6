package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	minStickyInterval = 1.0
)

func choices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return out
}

var commands = []*discordgo.ApplicationCommand{
	// Message commands
	{
		Name:        "say",
		Description: "Bot repeats your message",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "What to say",
				Required:    true,
			},
		},
	},
	{
		Name:        "sayembed",
		Description: "Send your message as an embed (append /image <url> to attach an image)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Embed text, optionally followed by /image <url>",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "image",
				Description: "Image URL (optional)",
				Required:    false,
			},
		},
	},
	{
		Name:        "suggestion",
		Description: "Make a suggestion",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Type of suggestion",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Text", Value: "text"},
					{Name: "Image", Value: "image"},
					{Name: "Both", Value: "both"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "content",
				Description: "Your suggestion content",
				Required:    false,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "image_url",
				Description: "Image URL if type is image/both",
				Required:    false,
			},
		},
	},

	// Autoresponders
	{
		Name:        "setautoresponder",
		Description: "Add an autoresponder",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "trigger",
				Description: "Trigger word",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "response",
				Description: "Response or reaction",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "form",
				Description: "text or reaction",
				Required:    true,
				Choices:     choices("text", "reaction"),
			},
		},
	},
	{
		Name:        "removeautoresponder",
		Description: "Remove an autoresponder",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "trigger",
				Description: "Trigger to remove",
				Required:    true,
			},
		},
	},
	{
		Name:        "listautoresponders",
		Description: "List all autoresponders",
	},

	// Dragon Ball records
	{
		Name:        "dragonball",
		Description: "Manage Dragon Ball characters",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "action",
				Description: "add/get/list",
				Required:    true,
				Choices:     choices("add", "get", "list"),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Character name",
				Required:    false,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "description",
				Description: "Character description (for add)",
				Required:    false,
			},
		},
	},
	{
		Name:        "quote",
		Description: "Manage Dragon Ball quotes",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "action",
				Description: "add/get/random",
				Required:    true,
				Choices:     choices("add", "get", "random"),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "character",
				Description: "Character name",
				Required:    false,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Quote text (for add)",
				Required:    false,
			},
		},
	},

	// Fun
	{
		Name:        "fun",
		Description: "Fun commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "action",
				Description: "roll/compliment",
				Required:    true,
				Choices:     choices("roll", "compliment"),
			},
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to compliment",
				Required:    false,
			},
		},
	},
	{
		Name:        "translate",
		Description: "Translate text to another language",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Text you want translated",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "language",
				Description: "Language code (en, hi, ja, es, fr...)",
				Required:    true,
			},
		},
	},

	// Sticky messages
	{
		Name:        "setsticky",
		Description: "Repost a message in a channel after every N messages",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Channel to keep the message in",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "interval",
				Description: "Number of messages between reposts",
				Required:    true,
				MinValue:    &minStickyInterval,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Message to repost",
				Required:    true,
			},
		},
	},
	{
		Name:        "removesticky",
		Description: "Stop reposting the sticky message in a channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Channel with the sticky message",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			},
		},
	},

	// Info
	{
		Name:        "stats",
		Description: "Show bot statistics",
	},
	{
		Name:        "help",
		Description: "List available commands",
	},
}

// textArgOrder overrides the order options are bound in the text form of a
// command. The last name consumes the rest of the line.
var textArgOrder = map[string][]string{
	"sayembed":   {"text"},
	"suggestion": {"type", "content"},
	"translate":  {"language", "text"},
}

// textArgs returns the option names for the text form of cmd
func textArgs(cmd *discordgo.ApplicationCommand) []string {
	if order, ok := textArgOrder[cmd.Name]; ok {
		return order
	}
	names := make([]string, 0, len(cmd.Options))
	for _, opt := range cmd.Options {
		names = append(names, opt.Name)
	}
	return names
}

// textUsage renders the text form of cmd, e.g. "!translate <language> <text>".
// Optional arguments are bracketed.
func textUsage(prefix string, cmd *discordgo.ApplicationCommand) string {
	required := make(map[string]bool, len(cmd.Options))
	for _, opt := range cmd.Options {
		required[opt.Name] = opt.Required
	}

	var sb strings.Builder
	sb.WriteString(prefix + cmd.Name)
	for _, name := range textArgs(cmd) {
		if required[name] {
			fmt.Fprintf(&sb, " <%s>", name)
		} else {
			fmt.Fprintf(&sb, " [%s]", name)
		}
	}
	return sb.String()
}

func findCommand(name string) *discordgo.ApplicationCommand {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

// registerCommands replaces the application's slash commands with the
// current set, globally or in the configured guild
func (b *Bot) registerCommands(appID string) error {
	b.logger.Info("registering slash commands", "count", len(commands), "guild_id", b.guildID)

	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, commands)
	if err != nil {
		return err
	}

	for _, cmd := range registered {
		b.logger.Debug("registered command", "name", cmd.Name, "id", cmd.ID)
	}

	return nil
}
