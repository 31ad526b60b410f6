package bot

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// reply is one outbound message for a command
type reply struct {
	Content   string
	Embed     *discordgo.MessageEmbed
	Ephemeral bool
}

// responder delivers replies for one command invocation. The first send is
// the response; later sends are follow-ups.
type responder interface {
	send(r reply) error
	deleteInvocation() error
}

// request is a parsed command invocation, from either a slash interaction or
// a prefixed text message
type request struct {
	name      string
	args      map[string]string
	user      *discordgo.User
	users     map[string]*discordgo.User
	channelID string
	guildID   string
	responder responder
	logger    *slog.Logger
}

func (r *request) arg(name string) string {
	return strings.TrimSpace(r.args[name])
}

// userArg resolves a user option given as an ID or mention
func (r *request) userArg(name string) *discordgo.User {
	id := mentionID(r.arg(name), userMention)
	if id == "" {
		return nil
	}
	if u, ok := r.users[id]; ok {
		return u
	}
	return &discordgo.User{ID: id}
}

// channelArg resolves a channel option given as an ID or mention
func (r *request) channelArg(name string) string {
	return mentionID(r.arg(name), channelMention)
}

func (r *request) respond(content string) {
	r.send(reply{Content: content})
}

func (r *request) respondEmbed(embed *discordgo.MessageEmbed) {
	r.send(reply{Embed: embed})
}

func (r *request) respondEphemeral(content string) {
	r.send(reply{Content: content, Ephemeral: true})
}

func (r *request) respondError(message string) {
	r.send(reply{Content: fmt.Sprintf("❌ %s", message), Ephemeral: true})
}

func (r *request) usage(usage string) {
	r.send(reply{Content: fmt.Sprintf("⚠️ Usage: `%s`", usage), Ephemeral: true})
}

func (r *request) send(rep reply) {
	if err := r.responder.send(rep); err != nil {
		r.logger.Warn("failed to send reply", "command", r.name, "error", err)
	}
}

// interactionResponder replies through the interaction webhook
type interactionResponder struct {
	session     Session
	interaction *discordgo.Interaction
	responded   bool
}

func (ir *interactionResponder) send(r reply) error {
	var flags discordgo.MessageFlags
	if r.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	var embeds []*discordgo.MessageEmbed
	if r.Embed != nil {
		embeds = []*discordgo.MessageEmbed{r.Embed}
	}

	if !ir.responded {
		ir.responded = true
		return ir.session.InteractionRespond(ir.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: r.Content,
				Embeds:  embeds,
				Flags:   flags,
			},
		})
	}

	_, err := ir.session.FollowupMessageCreate(ir.interaction, true, &discordgo.WebhookParams{
		Content: r.Content,
		Embeds:  embeds,
		Flags:   flags,
	})
	return err
}

func (ir *interactionResponder) deleteInvocation() error {
	return nil
}

// messageResponder replies by posting in the invoking message's channel
type messageResponder struct {
	session   Session
	channelID string
	messageID string
}

func (mr *messageResponder) send(r reply) error {
	data := &discordgo.MessageSend{Content: r.Content}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}
	_, err := mr.session.ChannelMessageSendComplex(mr.channelID, data)
	return err
}

func (mr *messageResponder) deleteInvocation() error {
	return mr.session.ChannelMessageDelete(mr.channelID, mr.messageID)
}

// newInteractionRequest builds a request from a slash command interaction
func (b *Bot) newInteractionRequest(i *discordgo.InteractionCreate) *request {
	data := i.ApplicationCommandData()

	req := &request{
		name:      data.Name,
		args:      make(map[string]string, len(data.Options)),
		user:      interactionUser(i),
		users:     map[string]*discordgo.User{},
		channelID: i.ChannelID,
		guildID:   i.GuildID,
		responder: &interactionResponder{session: b.session, interaction: i.Interaction},
		logger:    b.logger,
	}

	for name, opt := range parseOptions(data.Options) {
		req.args[name] = optionString(opt)
	}
	if data.Resolved != nil {
		for id, u := range data.Resolved.Users {
			req.users[id] = u
		}
	}

	return req
}

// newMessageRequest parses a prefixed text command. It returns nil when the
// message is not a known command.
func (b *Bot) newMessageRequest(m *discordgo.Message) *request {
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, b.prefix) {
		return nil
	}
	content = strings.TrimPrefix(content, b.prefix)

	name, rest := cutToken(content)
	cmd := findCommand(strings.ToLower(name))
	if cmd == nil {
		return nil
	}

	req := &request{
		name:      cmd.Name,
		args:      map[string]string{},
		user:      m.Author,
		users:     map[string]*discordgo.User{},
		channelID: m.ChannelID,
		guildID:   m.GuildID,
		responder: &messageResponder{session: b.session, channelID: m.ChannelID, messageID: m.ID},
		logger:    b.logger,
	}

	names := textArgs(cmd)
	for idx, value := range splitArgs(rest, len(names)) {
		req.args[names[idx]] = value
	}
	for _, u := range m.Mentions {
		req.users[u.ID] = u
	}

	return req
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func parseOptions(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return optionMap
}

func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return strconv.FormatInt(opt.IntValue(), 10)
	case discordgo.ApplicationCommandOptionBoolean:
		return strconv.FormatBool(opt.BoolValue())
	default:
		return fmt.Sprint(opt.Value)
	}
}

// cutToken splits off the first whitespace-delimited token
func cutToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

// splitArgs splits s into at most n arguments. All but the last are single
// tokens (double quotes group words); the last takes the rest of the line.
func splitArgs(s string, n int) []string {
	var args []string
	for len(args) < n {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			break
		}

		if len(args) == n-1 {
			args = append(args, unquote(strings.TrimSpace(s)))
			break
		}

		if s[0] == '"' {
			if end := strings.IndexByte(s[1:], '"'); end >= 0 {
				args = append(args, s[1:end+1])
				s = s[end+2:]
				continue
			}
		}

		var token string
		token, s = cutToken(s)
		args = append(args, token)
	}
	return args
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

var (
	userMention    = regexp.MustCompile(`^<@!?(\d+)>$`)
	channelMention = regexp.MustCompile(`^<#(\d+)>$`)
)

// mentionID extracts the ID from a mention, or returns s unchanged
func mentionID(s string, pattern *regexp.Regexp) string {
	if m := pattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
