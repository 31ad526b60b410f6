package autoresponder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Rule is the persisted response for one trigger phrase
type Rule struct {
	Response string `json:"response"`
	Type     Kind   `json:"type"`
}

// Entry is a rule together with its trigger phrase
type Entry struct {
	Trigger  string
	Response string
	Type     Kind
}

// Rules is the trigger to rule mapping in insertion order. Triggers are
// unique ignoring case. The zero value is an empty mapping.
type Rules struct {
	entries []Entry
}

// NewRules builds a mapping from entries, applying them in order with Set
func NewRules(entries ...Entry) Rules {
	var r Rules
	for _, e := range entries {
		r.Set(e.Trigger, Rule{Response: e.Response, Type: e.Type})
	}
	return r
}

func (r Rules) Len() int {
	return len(r.entries)
}

func (r Rules) index(trigger string) int {
	for idx, e := range r.entries {
		if strings.EqualFold(e.Trigger, trigger) {
			return idx
		}
	}
	return -1
}

// Get returns the rule for trigger, ignoring case
func (r Rules) Get(trigger string) (Rule, bool) {
	idx := r.index(trigger)
	if idx < 0 {
		return Rule{}, false
	}
	e := r.entries[idx]
	return Rule{Response: e.Response, Type: e.Type}, true
}

// Set stores rule under trigger. A trigger already present under any casing
// keeps its position and takes the new spelling and rule.
func (r *Rules) Set(trigger string, rule Rule) {
	e := Entry{Trigger: trigger, Response: rule.Response, Type: rule.Type}
	if idx := r.index(trigger); idx >= 0 {
		r.entries[idx] = e
		return
	}
	r.entries = append(r.entries, e)
}

// Remove deletes trigger, ignoring case, and reports whether it was present
func (r *Rules) Remove(trigger string) bool {
	idx := r.index(trigger)
	if idx < 0 {
		return false
	}
	r.entries = append(r.entries[:idx:idx], r.entries[idx+1:]...)
	return true
}

// Triggers returns the trigger phrases in insertion order
func (r Rules) Triggers() []string {
	triggers := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		triggers = append(triggers, e.Trigger)
	}
	return triggers
}

// Entries returns a copy of the rules in insertion order
func (r Rules) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// decodeRules reads a JSON object of rules, keeping the key order of the
// document. Later duplicates overwrite earlier ones in place.
func decodeRules(data []byte) (Rules, error) {
	var rules Rules
	if !json.Valid(data) {
		return rules, fmt.Errorf("invalid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return rules, err
	}
	if tok == nil {
		// a JSON null
		return rules, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return rules, fmt.Errorf("expected an object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rules, err
		}
		trigger, ok := tok.(string)
		if !ok {
			return rules, fmt.Errorf("expected a trigger, got %v", tok)
		}

		var rule Rule
		if err := dec.Decode(&rule); err != nil {
			return rules, fmt.Errorf("trigger %q: %w", trigger, err)
		}
		rules.Set(trigger, rule)
	}

	if _, err := dec.Token(); err != nil {
		return rules, err
	}
	return rules, nil
}

// encodeRules writes rules as a 4-space indented object with every non-ASCII
// character escaped and no trailing newline, the layout the bot has always
// kept its rule file in.
func encodeRules(rules Rules) ([]byte, error) {
	if rules.Len() == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, e := range rules.entries {
		if idx > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")

		key, err := encodeValue(e.Trigger, "")
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")

		value, err := encodeValue(Rule{Response: e.Response, Type: e.Type}, "    ")
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteString("\n}")

	return escapeNonASCII(buf.Bytes()), nil
}

func encodeValue(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if prefix != "" {
		enc.SetIndent(prefix, "    ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// escapeNonASCII rewrites DEL and every non-ASCII rune as \uXXXX, using
// surrogate pairs above the BMP. Such runes only occur inside strings in
// encoder output, so the document stays valid.
func escapeNonASCII(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data))
	for _, r := range string(data) {
		switch {
		case r < utf8.RuneSelf && r != 0x7f:
			buf.WriteByte(byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&buf, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&buf, `\u%04x`, r)
		}
	}
	return buf.Bytes()
}
