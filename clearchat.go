// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package tmi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/creachadair/mds/value"
	"github.com/creachadair/tmi/wire"
)

// A ClearChat records a moderation action that removed messages from a
// channel: a permanent ban, a timeout, or a clearing of the full chat
// history. As with [RoomState], the channel identifiers are always present
// and the remaining fields are optional.
//
// A ClearChat is immutable after construction by [ParseClearChat].
type ClearChat struct {
	channel   []byte
	channelID []byte
	user      []byte // login of the targeted user; empty for a full clear
	userID    []byte // numeric ID of the targeted user, if sent

	banTime value.Maybe[time.Duration]
	sentAt  value.Maybe[time.Time]

	owned bool
}

// A ChatAction describes what a moderation message did.
type ChatAction byte

const (
	ChatCleared  ChatAction = iota // the chat history was cleared
	UserBanned                     // a user was banned permanently
	UserTimedOut                   // a user was timed out
)

func (a ChatAction) String() string {
	switch a {
	case ChatCleared:
		return "CLEARED"
	case UserBanned:
		return "BANNED"
	case UserTimedOut:
		return "TIMED_OUT"
	default:
		return fmt.Sprintf("ACTION:%d", byte(a))
	}
}

// ParseClearChat decodes m as a moderation action. It reports
// [ErrWrongKind] if m is not a CLEARCHAT message carrying a channel
// parameter and a room-id tag. The targeted user, if any, is the trailing
// parameter of the message; the remaining tags are decoded best-effort.
//
// The text fields of the result alias the buffer underlying m until the
// value is passed through [ClearChat.Owned].
func ParseClearChat(m *wire.Message) (*ClearChat, error) {
	if m.Command() != wire.ClearChat {
		return nil, ErrWrongKind
	}
	channel, ok := m.Channel()
	if !ok {
		return nil, ErrWrongKind
	}
	channelID, ok := m.Tag(wire.RoomID)
	if !ok {
		return nil, ErrWrongKind
	}
	cc := &ClearChat{
		channel:   channel,
		channelID: channelID,

		banTime: tagField(m, wire.BanDuration, parseSeconds),
		sentAt:  tagField(m, wire.TmiSentTS, parseUnixMillis),
	}
	if user, ok := m.Trailing(); ok {
		cc.user = user
	}
	if id, ok := m.Tag(wire.TargetUserID); ok {
		cc.userID = id
	}
	return cc, nil
}

// Kind reports KindClearChat.
func (c *ClearChat) Kind() Kind { return KindClearChat }

// Action reports what the message did. A message without a targeted user
// cleared the chat history; a targeted user with a ban duration was timed
// out, and one without was banned permanently.
func (c *ClearChat) Action() ChatAction {
	switch {
	case len(c.user) == 0:
		return ChatCleared
	case c.banTime.Present():
		return UserTimedOut
	default:
		return UserBanned
	}
}

// Channel returns the login of the channel the action applied to.
// The returned slice aliases the message buffer unless c is owned, and the
// caller must not modify its contents.
func (c *ClearChat) Channel() []byte { return c.channel }

// ChannelID returns the stable numeric ID of the channel, under the same
// aliasing rule as Channel.
func (c *ClearChat) ChannelID() []byte { return c.channelID }

// User returns the login of the user the action targeted. It reports false
// for a full chat clear, which targets no user.
func (c *ClearChat) User() ([]byte, bool) { return c.user, len(c.user) != 0 }

// UserID returns the numeric ID of the targeted user, if it was sent.
func (c *ClearChat) UserID() ([]byte, bool) { return c.userID, len(c.userID) != 0 }

// BanDuration reports whether the action was a timeout, and if so returns
// its duration.
func (c *ClearChat) BanDuration() (time.Duration, bool) { return c.banTime.GetOK() }

// SentAt returns the server timestamp of the action, if it was sent.
func (c *ClearChat) SentAt() (time.Time, bool) { return c.sentAt.GetOK() }

// Owned returns a copy of c whose text fields do not alias the buffer c
// was parsed from, copying only the fields that still alias it. If c is
// already owned, Owned returns c itself without copying.
func (c *ClearChat) Owned() *ClearChat {
	if c.owned {
		return c
	}
	cp := *c
	cp.channel = bytes.Clone(c.channel)
	cp.channelID = bytes.Clone(c.channelID)
	cp.user = bytes.Clone(c.user)
	cp.userID = bytes.Clone(c.userID)
	cp.owned = true
	return &cp
}

// Equal reports whether c and o describe the same action. Ownership is not
// part of equality: a value and its owned copy are equal.
func (c *ClearChat) Equal(o *ClearChat) bool {
	if c == nil || o == nil {
		return c == o
	}
	return bytes.Equal(c.channel, o.channel) &&
		bytes.Equal(c.channelID, o.channelID) &&
		bytes.Equal(c.user, o.user) &&
		bytes.Equal(c.userID, o.userID) &&
		c.banTime == o.banTime &&
		c.sentAt == o.sentAt
}

// String returns a human-friendly rendering of the action.
func (c *ClearChat) String() string {
	if u, ok := c.User(); ok {
		return fmt.Sprintf("ClearChat(#%s, %v %s)", c.channel, c.Action(), u)
	}
	return fmt.Sprintf("ClearChat(#%s, %v)", c.channel, c.Action())
}
