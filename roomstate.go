// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package tmi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/creachadair/mds/value"
	"github.com/creachadair/tmi/wire"
)

// A RoomState is a partial update to the settings of a channel, scoped to
// that channel at one point in time. The channel identifiers are always
// present; every settings field is independently optional. An absent field
// means the message did not report a change to that setting, never that
// the setting is disabled; a present field is the authoritative new state
// of that setting.
//
// A RoomState is immutable after construction by [ParseRoomState].
type RoomState struct {
	channel   []byte
	channelID []byte

	emoteOnly     value.Maybe[bool]
	followersOnly value.Maybe[FollowersOnly]
	uniqueOnly    value.Maybe[bool]
	slow          value.Maybe[time.Duration]
	subsOnly      value.Maybe[bool]

	owned bool
}

// ParseRoomState decodes m as a partial update to channel settings. It
// reports [ErrWrongKind] if m is not a ROOMSTATE message carrying a
// channel parameter and a room-id tag. Optional settings tags are decoded
// best-effort: an absent or malformed tag leaves its field absent.
//
// The text fields of the result alias the buffer underlying m until the
// value is passed through [RoomState.Owned].
func ParseRoomState(m *wire.Message) (*RoomState, error) {
	if m.Command() != wire.RoomState {
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
	return &RoomState{
		channel:   channel,
		channelID: channelID,

		emoteOnly:     boolTag(m, wire.EmoteOnly),
		followersOnly: tagField(m, wire.FollowersOnly, parseFollowersOnly),
		uniqueOnly:    boolTag(m, wire.R9K),
		slow:          tagField(m, wire.Slow, parseSeconds),
		subsOnly:      boolTag(m, wire.SubsOnly),
	}, nil
}

// Kind reports KindRoomState.
func (r *RoomState) Kind() Kind { return KindRoomState }

// Channel returns the login of the channel this update applies to.
// The returned slice aliases the message buffer unless r is owned, and the
// caller must not modify its contents.
func (r *RoomState) Channel() []byte { return r.channel }

// ChannelID returns the stable numeric ID of the channel, under the same
// aliasing rule as Channel.
func (r *RoomState) ChannelID() []byte { return r.channelID }

// EmoteOnly reports whether the message changed emote-only mode, and if so
// returns the new value. While emote-only mode is enabled, chat messages
// may contain only emotes.
func (r *RoomState) EmoteOnly() (bool, bool) { return r.emoteOnly.GetOK() }

// FollowersOnly reports whether the message changed follow gating, and if
// so returns the new value. Note that a reported change may itself be
// "gating disabled"; see [FollowersOnly].
func (r *RoomState) FollowersOnly() (FollowersOnly, bool) { return r.followersOnly.GetOK() }

// UniqueOnly reports whether the message changed unique-messages mode (the
// r9k tag), and if so returns the new value. While the mode is enabled,
// only messages distinct from recent chat history may be sent.
func (r *RoomState) UniqueOnly() (bool, bool) { return r.uniqueOnly.GetOK() }

// Slow reports whether the message changed slow mode, and if so returns
// the new minimum delay between messages from one user. A delay of zero
// means slow mode is disabled.
func (r *RoomState) Slow() (time.Duration, bool) { return r.slow.GetOK() }

// SubsOnly reports whether the message changed subscribers-only mode, and
// if so returns the new value.
func (r *RoomState) SubsOnly() (bool, bool) { return r.subsOnly.GetOK() }

// Owned returns a copy of r whose text fields do not alias the buffer r
// was parsed from, copying only the fields that still alias it. If r is
// already owned, Owned returns r itself without copying.
func (r *RoomState) Owned() *RoomState {
	if r.owned {
		return r
	}
	cp := *r
	cp.channel = bytes.Clone(r.channel)
	cp.channelID = bytes.Clone(r.channelID)
	cp.owned = true
	return &cp
}

// Equal reports whether r and o describe the same update. Ownership is not
// part of equality: a value and its owned copy are equal.
func (r *RoomState) Equal(o *RoomState) bool {
	if r == nil || o == nil {
		return r == o
	}
	return bytes.Equal(r.channel, o.channel) &&
		bytes.Equal(r.channelID, o.channelID) &&
		r.emoteOnly == o.emoteOnly &&
		r.followersOnly == o.followersOnly &&
		r.uniqueOnly == o.uniqueOnly &&
		r.slow == o.slow &&
		r.subsOnly == o.subsOnly
}

// String returns a human-friendly rendering of the update.
func (r *RoomState) String() string {
	return fmt.Sprintf("RoomState(#%s, id=%s)", r.channel, r.channelID)
}

// A FollowersOnly value describes the follow gating applied to a channel:
// gating may be disabled, enabled for any follower, or enabled for
// followers of some minimum follow age. The zero value means gating is
// disabled.
type FollowersOnly struct {
	enabled bool
	minAge  value.Maybe[time.Duration]
}

// FollowersDisabled returns a FollowersOnly value with gating disabled.
func FollowersDisabled() FollowersOnly { return FollowersOnly{} }

// FollowersEnabled returns a FollowersOnly value with gating enabled and
// no minimum follow age.
func FollowersEnabled() FollowersOnly { return FollowersOnly{enabled: true} }

// FollowersMinAge returns a FollowersOnly value with gating enabled and
// the specified minimum follow age.
func FollowersMinAge(d time.Duration) FollowersOnly {
	return FollowersOnly{enabled: true, minAge: value.Just(d)}
}

// Enabled reports whether follow gating is enabled.
func (f FollowersOnly) Enabled() bool { return f.enabled }

// MinAge reports whether gating requires a minimum follow age, and if so
// returns that age. Gating without a minimum admits any follower.
func (f FollowersOnly) MinAge() (time.Duration, bool) { return f.minAge.GetOK() }

// Equal reports whether f and o describe the same gating state.
func (f FollowersOnly) Equal(o FollowersOnly) bool { return f == o }

func (f FollowersOnly) String() string {
	if !f.enabled {
		return "disabled"
	} else if d, ok := f.minAge.GetOK(); ok {
		return fmt.Sprintf("enabled(min %v)", d)
	}
	return "enabled"
}
