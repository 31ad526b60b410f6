// Package rules evaluates the message-triggered rules that run on every
// incoming chat message: the secret trigger, autoresponders and sticky
// reposts. Evaluation is pure; the caller executes the returned actions.
package rules

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"gohanBot/internal/autoresponder"
)

// EveryoneMention is sent when the secret trigger fires
const EveryoneMention = "@everyone"

// ActionKind identifies what the bot should do with an Action
type ActionKind int

const (
	ActionSend ActionKind = iota
	ActionReact
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionSend:
		return "send"
	case ActionReact:
		return "react"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Action is one outbound effect produced by Evaluate.
// Content is the text for ActionSend and the emoji for ActionReact.
type Action struct {
	Kind      ActionKind
	ChannelID string
	MessageID string
	Content   string
}

// Message is the part of an incoming chat message the engine looks at
type Message struct {
	ID        string
	ChannelID string
	Content   string
}

// RuleSource supplies the current autoresponder rules
type RuleSource interface {
	Load() (autoresponder.Rules, error)
}

// StickyCounter counts messages per channel and reports when to repost
type StickyCounter interface {
	Observe(channelID string) (message string, repost bool)
}

// Engine evaluates a message against the secret trigger, the autoresponder
// rules and the sticky table, in that order.
type Engine struct {
	secret   string
	rules    RuleSource
	sticky   StickyCounter
	logger   *slog.Logger

	mu       sync.Mutex
	matchers map[string]*WordMatcher // trigger -> matcher, current rule set only
}

// NewEngine creates an engine. An empty secret disables the secret trigger.
func NewEngine(secret string, rules RuleSource, sticky StickyCounter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		secret: secret,
		rules:  rules,
		sticky: sticky,
		logger: logger,
	}
}

// Evaluate returns the actions for msg. intercepted is true when the secret
// trigger fired, in which case no other processing (including commands)
// should happen for this message.
func (e *Engine) Evaluate(msg Message) (actions []Action, intercepted bool) {
	if e.secret != "" && strings.TrimSpace(msg.Content) == e.secret {
		return []Action{
			{Kind: ActionDelete, ChannelID: msg.ChannelID, MessageID: msg.ID},
			{Kind: ActionSend, ChannelID: msg.ChannelID, Content: EveryoneMention},
		}, true
	}

	actions = append(actions, e.autoresponses(msg)...)

	if e.sticky != nil {
		if text, repost := e.sticky.Observe(msg.ChannelID); repost {
			actions = append(actions, Action{Kind: ActionSend, ChannelID: msg.ChannelID, Content: text})
		}
	}

	return actions, false
}

func (e *Engine) autoresponses(msg Message) []Action {
	if e.rules == nil {
		return nil
	}

	rules, err := e.rules.Load()
	if err != nil {
		if errors.Is(err, autoresponder.ErrCorrupt) {
			e.logger.Warn("autoresponder rules unreadable, treating as empty", "error", err)
		} else {
			e.logger.Error("failed to load autoresponder rules", "error", err)
		}
		return nil
	}

	matchers := e.matchersFor(rules)

	var actions []Action
	for idx, rule := range rules.Entries() {
		if !matchers[idx].MatchString(msg.Content) {
			continue
		}

		switch rule.Type {
		case autoresponder.KindText:
			actions = append(actions, Action{Kind: ActionSend, ChannelID: msg.ChannelID, Content: rule.Response})
		case autoresponder.KindReaction:
			actions = append(actions, Action{Kind: ActionReact, ChannelID: msg.ChannelID, MessageID: msg.ID, Content: rule.Response})
		default:
			e.logger.Debug("skipping autoresponder with unknown type", "trigger", rule.Trigger, "type", rule.Type)
		}
	}

	return actions
}

// matchersFor returns one matcher per rule, in rule order. Matchers for
// triggers no longer in the rule set are dropped from the cache.
func (e *Engine) matchersFor(rules autoresponder.Rules) []*WordMatcher {
	e.mu.Lock()
	defer e.mu.Unlock()

	triggers := rules.Triggers()
	cache := make(map[string]*WordMatcher, len(triggers))
	out := make([]*WordMatcher, 0, len(triggers))
	for _, trigger := range triggers {
		m, ok := e.matchers[trigger]
		if !ok {
			m = NewWordMatcher(trigger)
		}
		cache[trigger] = m
		out = append(out, m)
	}
	e.matchers = cache

	return out
}
