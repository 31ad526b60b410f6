package rules

import (
	"errors"
	"fmt"
	"testing"

	"gohanBot/internal/autoresponder"
	"gohanBot/internal/sticky"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "882914001772559"

type staticRules struct {
	rules autoresponder.Rules
	err   error
}

func (s staticRules) Load() (autoresponder.Rules, error) {
	return s.rules, s.err
}

type mutableRules struct {
	rules autoresponder.Rules
}

func (m *mutableRules) Load() (autoresponder.Rules, error) {
	return m.rules, nil
}

func newTestEngine(t *testing.T, rules autoresponder.Rules) (*Engine, *sticky.Table) {
	t.Helper()
	table := sticky.NewTable()
	return NewEngine(testSecret, staticRules{rules: rules}, table, nil), table
}

func msg(channel, content string) Message {
	return Message{ID: "m1", ChannelID: channel, Content: content}
}

func TestAutoresponderReaction(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "gg", Response: "🎉", Type: autoresponder.KindReaction},
	))

	actions, intercepted := e.Evaluate(msg("1", "gg everyone"))
	assert.False(t, intercepted)
	assert.Equal(t, []Action{{Kind: ActionReact, ChannelID: "1", MessageID: "m1", Content: "🎉"}}, actions)

	actions, _ = e.Evaluate(msg("1", "eggnog"))
	assert.Empty(t, actions)
}

func TestAutoresponderWholeWordCaseInsensitive(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "hi", Response: "Hello!", Type: autoresponder.KindText},
	))

	cases := []struct {
		content string
		match   bool
	}{
		{"hi", true},
		{"HI there", true},
		{"oh, Hi!", true},
		{"say hi.", true},
		{"this", false},
		{"hiking", false},
		{"chi", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.content, func(t *testing.T) {
			actions, _ := e.Evaluate(msg("1", tc.content))
			if tc.match {
				require.Len(t, actions, 1)
				assert.Equal(t, Action{Kind: ActionSend, ChannelID: "1", Content: "Hello!"}, actions[0])
			} else {
				assert.Empty(t, actions)
			}
		})
	}
}

func TestAutoresponderMultiWordTrigger(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "good morning", Response: "☀️", Type: autoresponder.KindReaction},
	))

	actions, _ := e.Evaluate(msg("1", "Good Morning, Z fighters"))
	require.Len(t, actions, 1)
	assert.Equal(t, "☀️", actions[0].Content)

	actions, _ = e.Evaluate(msg("1", "good mornings"))
	assert.Empty(t, actions)
}

func TestAutoresponderMetacharactersAreLiteral(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "a.b", Response: "dot", Type: autoresponder.KindText},
		autoresponder.Entry{Trigger: "(x|y)", Response: "group", Type: autoresponder.KindText},
	))

	actions, _ := e.Evaluate(msg("1", "axb"))
	assert.Empty(t, actions)

	actions, _ = e.Evaluate(msg("1", "x"))
	assert.Empty(t, actions)

	actions, _ = e.Evaluate(msg("1", "look: a.b works"))
	require.Len(t, actions, 1)
	assert.Equal(t, "dot", actions[0].Content)
}

func TestAutoresponderAllMatchesEmittedInRuleOrder(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "kamehameha", Response: "🌊", Type: autoresponder.KindReaction},
		autoresponder.Entry{Trigger: "goku", Response: "Kakarot!", Type: autoresponder.KindText},
		autoresponder.Entry{Trigger: "vegeta", Response: "never shown", Type: autoresponder.KindText},
	))

	actions, _ := e.Evaluate(msg("1", "Goku fires a KAMEHAMEHA"))
	assert.Equal(t, []Action{
		{Kind: ActionReact, ChannelID: "1", MessageID: "m1", Content: "🌊"},
		{Kind: ActionSend, ChannelID: "1", Content: "Kakarot!"},
	}, actions)
}

func TestAutoresponderUnicodeWords(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "café", Response: "☕", Type: autoresponder.KindReaction},
		autoresponder.Entry{Trigger: "привет", Response: "Здравствуй!", Type: autoresponder.KindText},
		autoresponder.Entry{Trigger: "ñandu", Response: "🐦", Type: autoresponder.KindReaction},
		autoresponder.Entry{Trigger: "ber", Response: "berserk", Type: autoresponder.KindText},
	))

	cases := []struct {
		content string
		want    []string
	}{
		{"un café", []string{"☕"}},
		{"CAFÉ time", []string{"☕"}},
		{"cafés", nil},
		{"Привет всем", []string{"Здравствуй!"}},
		{"приветствую", nil},
		{"ñandu!", []string{"🐦"}},
		{"über alles", nil},
		{"überall ber", []string{"berserk"}},
		{"ber_", nil},
		{"ber2", nil},
		{"(ber)", []string{"berserk"}},
	}

	for _, tc := range cases {
		t.Run(tc.content, func(t *testing.T) {
			actions, _ := e.Evaluate(msg("1", tc.content))
			var got []string
			for _, a := range actions {
				got = append(got, a.Content)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatcherCacheFollowsRuleSet(t *testing.T) {
	source := &mutableRules{rules: autoresponder.NewRules(
		autoresponder.Entry{Trigger: "gg", Response: "wp", Type: autoresponder.KindText},
		autoresponder.Entry{Trigger: "hi", Response: "yo", Type: autoresponder.KindText},
	)}
	e := NewEngine(testSecret, source, nil, nil)

	e.Evaluate(msg("1", "gg"))
	gg := e.matchers["gg"]
	require.NotNil(t, gg)
	assert.Len(t, e.matchers, 2)

	source.rules.Remove("hi")
	e.Evaluate(msg("1", "gg"))
	assert.Len(t, e.matchers, 1)
	assert.Same(t, gg, e.matchers["gg"])
}

func TestWordMatcher(t *testing.T) {
	cases := []struct {
		phrase string
		text   string
		match  bool
	}{
		{"gg", "gg", true},
		{"gg", "egg gg", true},
		{"gg", "eggs", false},
		{"aa", "aaa aa", true},
		{"aa", "aaa", false},
		{"go go", "go go go", true},
		{"c++", "I like c++", false},
		{"c++", "c++x", true},
		{"naïve", "so NAÏVE", true},
		{"na", "naïve", false},
		{"x", "", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.match, NewWordMatcher(tc.phrase).MatchString(tc.text), "%q in %q", tc.phrase, tc.text)
	}
}

func TestAutoresponderUnknownTypeSkipped(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "hey", Response: "?", Type: "embed"},
	))

	actions, _ := e.Evaluate(msg("1", "hey"))
	assert.Empty(t, actions)
}

func TestRuleLoadErrorYieldsNoAutoresponses(t *testing.T) {
	for _, loadErr := range []error{
		fmt.Errorf("%w: bad json", autoresponder.ErrCorrupt),
		errors.New("permission denied"),
	} {
		table := sticky.NewTable()
		require.NoError(t, table.Set("1", "Join us!", 1))
		e := NewEngine(testSecret, staticRules{err: loadErr}, table, nil)

		actions, intercepted := e.Evaluate(msg("1", "anything"))
		assert.False(t, intercepted)
		assert.Equal(t, []Action{{Kind: ActionSend, ChannelID: "1", Content: "Join us!"}}, actions)
	}
}

func TestSecretTriggerIntercepts(t *testing.T) {
	e, table := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "882914001772559", Response: "nope", Type: autoresponder.KindText},
	))
	require.NoError(t, table.Set("7", "sticky", 1))

	actions, intercepted := e.Evaluate(Message{ID: "m9", ChannelID: "7", Content: "  882914001772559\n"})
	assert.True(t, intercepted)
	assert.Equal(t, []Action{
		{Kind: ActionDelete, ChannelID: "7", MessageID: "m9"},
		{Kind: ActionSend, ChannelID: "7", Content: EveryoneMention},
	}, actions)

	rule, ok := table.Get("7")
	require.True(t, ok)
	assert.Equal(t, 0, rule.Count, "secret trigger must not count toward sticky")
}

func TestSecretTriggerRequiresExactMatch(t *testing.T) {
	e, _ := newTestEngine(t, autoresponder.Rules{})

	_, intercepted := e.Evaluate(msg("1", "code 882914001772559"))
	assert.False(t, intercepted)
}

func TestEmptySecretDisabled(t *testing.T) {
	e := NewEngine("", staticRules{}, nil, nil)

	actions, intercepted := e.Evaluate(msg("1", ""))
	assert.False(t, intercepted)
	assert.Empty(t, actions)
}

func TestStickyRepost(t *testing.T) {
	e, table := newTestEngine(t, autoresponder.Rules{})
	require.NoError(t, table.Set("5", "Join us!", 3))

	for i := 0; i < 2; i++ {
		actions, _ := e.Evaluate(msg("5", "chatter"))
		assert.Empty(t, actions)
	}

	actions, _ := e.Evaluate(msg("5", "chatter"))
	assert.Equal(t, []Action{{Kind: ActionSend, ChannelID: "5", Content: "Join us!"}}, actions)

	rule, _ := table.Get("5")
	assert.Equal(t, 0, rule.Count)

	actions, _ = e.Evaluate(msg("6", "other channel"))
	assert.Empty(t, actions)
}

func TestStickyAfterAutoresponses(t *testing.T) {
	e, table := newTestEngine(t, autoresponder.NewRules(
		autoresponder.Entry{Trigger: "gg", Response: "🎉", Type: autoresponder.KindReaction},
	))
	require.NoError(t, table.Set("1", "Read the rules", 1))

	actions, _ := e.Evaluate(msg("1", "gg"))
	require.Len(t, actions, 2)
	assert.Equal(t, ActionReact, actions[0].Kind)
	assert.Equal(t, ActionSend, actions[1].Kind)
	assert.Equal(t, "Read the rules", actions[1].Content)
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "send", ActionSend.String())
	assert.Equal(t, "react", ActionReact.String())
	assert.Equal(t, "delete", ActionDelete.String())
	assert.Equal(t, "unknown", ActionKind(42).String())
}
