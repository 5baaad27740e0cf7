// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package wire parses raw chat protocol lines into a generic message view.
//
// A line has the general shape
//
//	@name=value;name=value :prefix COMMAND param param :trailing
//
// where the tag block, the prefix, and the trailing parameter are each
// optional. The accessors of a [Message] return slices that alias the
// parsed input, so a message view costs no allocation beyond its index
// structure, but it must not outlive the buffer it was parsed from.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
)

// A Command identifies the kind of a chat protocol message. Command words
// not known to this package map to Unknown; the original text remains
// available from the CommandText method of the message.
type Command byte

const (
	Unknown Command = iota

	ClearChat
	ClearMsg
	GlobalUserState
	Join
	Notice
	Part
	Ping
	Pong
	Privmsg
	Reconnect
	RoomState
	UserNotice
	UserState
	Whisper
)

func (c Command) String() string {
	switch c {
	case ClearChat:
		return "CLEARCHAT"
	case ClearMsg:
		return "CLEARMSG"
	case GlobalUserState:
		return "GLOBALUSERSTATE"
	case Join:
		return "JOIN"
	case Notice:
		return "NOTICE"
	case Part:
		return "PART"
	case Ping:
		return "PING"
	case Pong:
		return "PONG"
	case Privmsg:
		return "PRIVMSG"
	case Reconnect:
		return "RECONNECT"
	case RoomState:
		return "ROOMSTATE"
	case UserNotice:
		return "USERNOTICE"
	case UserState:
		return "USERSTATE"
	case Whisper:
		return "WHISPER"
	default:
		return fmt.Sprintf("COMMAND:%d", byte(c))
	}
}

// parseCommand maps a command word to its Command value.
// The string conversion does not copy, it only compares.
func parseCommand(word []byte) Command {
	switch string(word) {
	case "CLEARCHAT":
		return ClearChat
	case "CLEARMSG":
		return ClearMsg
	case "GLOBALUSERSTATE":
		return GlobalUserState
	case "JOIN":
		return Join
	case "NOTICE":
		return Notice
	case "PART":
		return Part
	case "PING":
		return Ping
	case "PONG":
		return Pong
	case "PRIVMSG":
		return Privmsg
	case "RECONNECT":
		return Reconnect
	case "ROOMSTATE":
		return RoomState
	case "USERNOTICE":
		return UserNotice
	case "USERSTATE":
		return UserState
	case "WHISPER":
		return Whisper
	}
	return Unknown
}

// A Tag is the name of a message attribute tag. The tag namespace is fixed
// by the protocol; the constants below cover the tags consumed by the
// typed message layer.
type Tag string

const (
	BanDuration   Tag = "ban-duration"   // timeout length in seconds
	EmoteOnly     Tag = "emote-only"     // Boolean flag
	FollowersOnly Tag = "followers-only" // signed integer, minutes
	R9K           Tag = "r9k"            // Boolean flag (unique messages)
	RoomID        Tag = "room-id"        // numeric channel ID
	Slow          Tag = "slow"           // non-negative integer, seconds
	SubsOnly      Tag = "subs-only"      // Boolean flag
	TargetUserID  Tag = "target-user-id" // numeric user ID
	TmiSentTS     Tag = "tmi-sent-ts"    // server timestamp, milliseconds
)

// A Message is a structural view over a single raw protocol line.
// The accessors of a Message return slices that alias the parsed input,
// and the caller must not modify their contents.
type Message struct {
	raw     []byte
	command Command
	rawCmd  []byte
	prefix  []byte
	params  [][]byte
	trail   []byte
	hasTrl  bool
	tags    []tagPair
}

type tagPair struct {
	name, value []byte
}

var sp = []byte(" ")

// Parse parses a single raw protocol line into a message view. A trailing
// CRLF is ignored. The message retains slices into line (or, for string
// input, into a copy of it), so the caller must not modify line while the
// message is in use.
//
// Parse is tolerant of malformed tag entries: a tag without "=" is treated
// as having an empty value. Only a line with no command word is an error.
func Parse[Str ~string | ~[]byte](line Str) (*Message, error) {
	raw := bytes.TrimRight([]byte(line), "\r\n")
	m := &Message{raw: raw}

	rest := raw
	if len(rest) != 0 && rest[0] == '@' {
		head, tail, ok := bytes.Cut(rest[1:], sp)
		if !ok {
			return nil, errors.New("missing command")
		}
		m.tags = parseTags(head)
		rest = tail
	}
	rest = bytes.TrimLeft(rest, " ")
	if len(rest) != 0 && rest[0] == ':' {
		head, tail, ok := bytes.Cut(rest[1:], sp)
		if !ok {
			return nil, errors.New("missing command")
		}
		m.prefix = head
		rest = tail
	}

	var cmd []byte
	cmd, rest, _ = bytes.Cut(bytes.TrimLeft(rest, " "), sp)
	if len(cmd) == 0 {
		return nil, errors.New("missing command")
	}
	m.rawCmd = cmd
	m.command = parseCommand(cmd)

	for len(rest) != 0 {
		if rest[0] == ':' {
			m.trail = rest[1:]
			m.hasTrl = true
			break
		}
		var word []byte
		word, rest, _ = bytes.Cut(rest, sp)
		if len(word) != 0 {
			m.params = append(m.params, word)
		}
	}
	return m, nil
}

// parseTags splits a tag block into name/value pairs. Entries are
// separated by ";"; an entry without "=" gets an empty value.
func parseTags(data []byte) []tagPair {
	var tags []tagPair
	for len(data) != 0 {
		var entry []byte
		entry, data, _ = bytes.Cut(data, []byte(";"))
		if len(entry) == 0 {
			continue
		}
		name, value, _ := bytes.Cut(entry, []byte("="))
		tags = append(tags, tagPair{name: name, value: value})
	}
	return tags
}

// Command reports the command kind of the message.
func (m *Message) Command() Command { return m.command }

// CommandText returns the command word as written on the line. This is the
// only way to observe the command of a message whose kind is Unknown.
func (m *Message) CommandText() []byte { return m.rawCmd }

// Prefix returns the server or user prefix of the message, if present.
func (m *Message) Prefix() ([]byte, bool) { return m.prefix, m.prefix != nil }

// Channel returns the channel parameter of the message without its leading
// "#" marker. It reports false if the message does not carry a channel.
func (m *Message) Channel() ([]byte, bool) {
	for _, p := range m.params {
		if len(p) > 1 && p[0] == '#' {
			return p[1:], true
		}
	}
	return nil, false
}

// Param returns the i-th (0-based) middle parameter of the message.
func (m *Message) Param(i int) ([]byte, bool) {
	if i < 0 || i >= len(m.params) {
		return nil, false
	}
	return m.params[i], true
}

// Trailing returns the trailing parameter of the message, if present.
func (m *Message) Trailing() ([]byte, bool) { return m.trail, m.hasTrl }

// Tag returns the raw value of the specified tag. It reports false only if
// the tag was not sent; a tag sent without a value reports an empty slice
// and true. Tag values are not unescaped, see [UnescapeTag].
func (m *Message) Tag(name Tag) ([]byte, bool) {
	for _, t := range m.tags {
		if string(t.name) == string(name) {
			return t.value, true
		}
	}
	return nil, false
}

// Tags ranges over the tags of the message in their order on the line.
func (m *Message) Tags() iter.Seq2[Tag, []byte] {
	return func(yield func(Tag, []byte) bool) {
		for _, t := range m.tags {
			if !yield(Tag(t.name), t.value) {
				return
			}
		}
	}
}

// String returns the raw text of the message.
func (m *Message) String() string { return string(m.raw) }

// UnescapeTag decodes the escape sequences permitted in a raw tag value:
//
//	\:  ;     \s  space     \\  \     \r  CR     \n  LF
//
// An unrecognized escape denotes its second character literally, and a
// dangling "\" at the end of the value is dropped. If v contains no
// escapes it is returned unmodified; otherwise the result is a fresh slice
// that does not alias v.
func UnescapeTag(v []byte) []byte {
	if bytes.IndexByte(v, '\\') < 0 {
		return v
	}
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		if v[i] != '\\' {
			out = append(out, v[i])
			continue
		}
		i++
		if i == len(v) {
			break
		}
		switch v[i] {
		case ':':
			out = append(out, ';')
		case 's':
			out = append(out, ' ')
		case 'r':
			out = append(out, '\r')
		case 'n':
			out = append(out, '\n')
		default:
			out = append(out, v[i])
		}
	}
	return out
}
