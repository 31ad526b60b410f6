package bot

import (
	"gohanBot/internal/rules"

	"github.com/bwmarrin/discordgo"
)

// messageCreate runs the rule engine on every incoming message and then
// parses it as a text command
func (b *Bot) messageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(m.Message)
}

func (b *Bot) handleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil {
		return
	}

	// Ignore the bot's own messages and other bots
	if m.Author.Bot || m.Author.ID == b.botUserID() {
		return
	}

	actions, intercepted := b.engine.Evaluate(rules.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	})
	b.execute(actions)
	if intercepted {
		return
	}

	if req := b.newMessageRequest(m); req != nil {
		b.dispatch(req)
	}
}

// execute performs each action independently. Failures (usually missing
// permissions) are logged and dropped.
func (b *Bot) execute(actions []rules.Action) {
	for _, a := range actions {
		var err error
		switch a.Kind {
		case rules.ActionSend:
			_, err = b.session.ChannelMessageSend(a.ChannelID, a.Content)
		case rules.ActionReact:
			err = b.session.MessageReactionAdd(a.ChannelID, a.MessageID, a.Content)
		case rules.ActionDelete:
			err = b.session.ChannelMessageDelete(a.ChannelID, a.MessageID)
		}
		if err != nil {
			b.logger.Debug("rule action failed", "action", a.Kind.String(), "channel_id", a.ChannelID, "error", err)
		}
	}
}
