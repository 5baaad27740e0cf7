// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package wire_test

import (
	"testing"

	"github.com/creachadair/tmi/wire"
	"github.com/google/go-cmp/cmp"
)

// flat is a comparable rendering of a parsed message for test diffs.
type flat struct {
	Command  string
	CmdText  string
	Prefix   string
	Channel  string
	Params   []string
	Trailing string
	HasTrail bool
	Tags     map[string]string
}

func flatten(m *wire.Message) flat {
	f := flat{
		Command: m.Command().String(),
		CmdText: string(m.CommandText()),
		Tags:    make(map[string]string),
	}
	if p, ok := m.Prefix(); ok {
		f.Prefix = string(p)
	}
	if ch, ok := m.Channel(); ok {
		f.Channel = string(ch)
	}
	for i := 0; ; i++ {
		p, ok := m.Param(i)
		if !ok {
			break
		}
		f.Params = append(f.Params, string(p))
	}
	if tr, ok := m.Trailing(); ok {
		f.Trailing = string(tr)
		f.HasTrail = true
	}
	for name, value := range m.Tags() {
		f.Tags[string(name)] = string(value)
	}
	return f
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  flat
	}{
		{"PING :tmi.twitch.tv", flat{
			Command:  "PING",
			CmdText:  "PING",
			Trailing: "tmi.twitch.tv",
			HasTrail: true,
			Tags:     map[string]string{},
		}},

		{"@emote-only=1;followers-only=10;room-id=40286300 :tmi.twitch.tv ROOMSTATE #randers\r\n", flat{
			Command: "ROOMSTATE",
			CmdText: "ROOMSTATE",
			Prefix:  "tmi.twitch.tv",
			Channel: "randers",
			Params:  []string{"#randers"},
			Tags: map[string]string{
				"emote-only":     "1",
				"followers-only": "10",
				"room-id":        "40286300",
			},
		}},

		{"@ban-duration=600;room-id=12345 :tmi.twitch.tv CLEARCHAT #dallas :ronni", flat{
			Command:  "CLEARCHAT",
			CmdText:  "CLEARCHAT",
			Prefix:   "tmi.twitch.tv",
			Channel:  "dallas",
			Params:   []string{"#dallas"},
			Trailing: "ronni",
			HasTrail: true,
			Tags: map[string]string{
				"ban-duration": "600",
				"room-id":      "12345",
			},
		}},

		// An unknown command keeps its text available.
		{"FROBNICATE #x y z", flat{
			Command: "COMMAND:0",
			CmdText: "FROBNICATE",
			Channel: "x",
			Params:  []string{"#x", "y", "z"},
			Tags:    map[string]string{},
		}},

		// Tags without values, and empty tag entries, are tolerated.
		{"@r9k;;subs-only=1 ROOMSTATE #c", flat{
			Command: "ROOMSTATE",
			CmdText: "ROOMSTATE",
			Channel: "c",
			Params:  []string{"#c"},
			Tags: map[string]string{
				"r9k":       "",
				"subs-only": "1",
			},
		}},

		// An empty trailing parameter is present but empty.
		{"PRIVMSG #chan :", flat{
			Command:  "PRIVMSG",
			CmdText:  "PRIVMSG",
			Channel:  "chan",
			Params:   []string{"#chan"},
			HasTrail: true,
			Tags:     map[string]string{},
		}},

		// Repeated spaces between tokens are skipped.
		{"JOIN  #somewhere", flat{
			Command: "JOIN",
			CmdText: "JOIN",
			Channel: "somewhere",
			Params:  []string{"#somewhere"},
			Tags:    map[string]string{},
		}},
	}
	for _, tc := range tests {
		m, err := wire.Parse(tc.input)
		if err != nil {
			t.Errorf("Parse %q: unexpected error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff(tc.want, flatten(m)); diff != "" {
			t.Errorf("Parse %q (-want, +got):\n%s", tc.input, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"\r\n",
		"@only=tags",
		"@only=tags ",
		":prefix.only",
	}
	for _, input := range tests {
		m, err := wire.Parse(input)
		if err == nil {
			t.Errorf("Parse %q: got %+v, want error", input, m)
		}
	}
}

func TestTagLookup(t *testing.T) {
	m, err := wire.Parse("@slow=5;r9k= ROOMSTATE #c")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}

	if v, ok := m.Tag(wire.Slow); !ok {
		t.Error(`Tag("slow"): not found`)
	} else if got := string(v); got != "5" {
		t.Errorf(`Tag("slow"): got %q, want "5"`, got)
	}
	if v, ok := m.Tag(wire.R9K); !ok {
		t.Error(`Tag("r9k"): not found`)
	} else if len(v) != 0 {
		t.Errorf(`Tag("r9k"): got %q, want empty`, v)
	}
	if v, ok := m.Tag(wire.RoomID); ok {
		t.Errorf(`Tag("room-id"): got %q, want absent`, v)
	}
}

func TestUnescapeTag(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{`hello\sworld`, "hello world"},
		{`a\:b`, "a;b"},
		{`c:d`, "c:d"}, // a bare colon is literal
		{`back\\slash`, `back\slash`},
		{`line\r\nbreak`, "line\r\nbreak"},
		{`odd\xescape`, "oddxescape"}, // unknown escapes are literal
		{`dangling\`, "dangling"},     // a trailing escape is dropped
	}
	for _, tc := range tests {
		got := wire.UnescapeTag([]byte(tc.input))
		if string(got) != tc.want {
			t.Errorf("UnescapeTag(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}

	// A value without escapes must be returned without copying.
	in := []byte("no escapes here")
	if got := wire.UnescapeTag(in); &got[0] != &in[0] {
		t.Error("UnescapeTag copied an escape-free value")
	}
}
