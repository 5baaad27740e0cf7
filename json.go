// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package tmi

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/creachadair/mds/value"
)

// The JSON encoding of a typed message omits absent fields entirely, so
// that "not mentioned" survives a round trip distinct from any present
// value, including explicitly disabled ones. Durations are encoded as
// integer seconds and timestamps as integer milliseconds, matching the
// units of the wire protocol.

// jsonRoomState is the JSON shape of a RoomState. Pointer fields
// distinguish an absent setting from a present zero value.
type jsonRoomState struct {
	Channel       string         `json:"channel"`
	ChannelID     string         `json:"channel_id"`
	EmoteOnly     *bool          `json:"emote_only,omitempty"`
	FollowersOnly *jsonFollowers `json:"followers_only,omitempty"`
	UniqueOnly    *bool          `json:"unique_only,omitempty"`
	Slow          *int64         `json:"slow,omitempty"` // seconds
	SubsOnly      *bool          `json:"subs_only,omitempty"`
}

// jsonFollowers is the JSON shape of a FollowersOnly value.
type jsonFollowers struct {
	Enabled bool   `json:"enabled"`
	MinAge  *int64 `json:"min_age,omitempty"` // seconds
}

// jsonBool converts a Maybe field for the JSON shape.
func jsonBool(m value.Maybe[bool]) *bool {
	if v, ok := m.GetOK(); ok {
		return &v
	}
	return nil
}

// jsonSeconds converts a Maybe duration to integer seconds.
func jsonSeconds(m value.Maybe[time.Duration]) *int64 {
	if d, ok := m.GetOK(); ok {
		sec := int64(d / time.Second)
		return &sec
	}
	return nil
}

// MarshalJSON implements [json.Marshaler]. Absent fields are omitted from
// the encoding.
func (r *RoomState) MarshalJSON() ([]byte, error) {
	j := jsonRoomState{
		Channel:    string(r.channel),
		ChannelID:  string(r.channelID),
		EmoteOnly:  jsonBool(r.emoteOnly),
		UniqueOnly: jsonBool(r.uniqueOnly),
		Slow:       jsonSeconds(r.slow),
		SubsOnly:   jsonBool(r.subsOnly),
	}
	if f, ok := r.followersOnly.GetOK(); ok {
		j.FollowersOnly = &jsonFollowers{
			Enabled: f.enabled,
			MinAge:  jsonSeconds(f.minAge),
		}
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements [json.Unmarshaler]. It reports an error if the
// encoding lacks the channel or channel_id identifiers. The decoded value
// is owned: it does not alias data.
func (r *RoomState) UnmarshalJSON(data []byte) error {
	var j jsonRoomState
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Channel == "" {
		return errors.New("missing channel")
	} else if j.ChannelID == "" {
		return errors.New("missing channel_id")
	}
	*r = RoomState{
		channel:   []byte(j.Channel),
		channelID: []byte(j.ChannelID),
		owned:     true,
	}
	if j.EmoteOnly != nil {
		r.emoteOnly = value.Just(*j.EmoteOnly)
	}
	if j.FollowersOnly != nil {
		f := FollowersOnly{enabled: j.FollowersOnly.Enabled}
		if f.enabled && j.FollowersOnly.MinAge != nil {
			f.minAge = value.Just(time.Duration(*j.FollowersOnly.MinAge) * time.Second)
		}
		r.followersOnly = value.Just(f)
	}
	if j.UniqueOnly != nil {
		r.uniqueOnly = value.Just(*j.UniqueOnly)
	}
	if j.Slow != nil {
		r.slow = value.Just(time.Duration(*j.Slow) * time.Second)
	}
	if j.SubsOnly != nil {
		r.subsOnly = value.Just(*j.SubsOnly)
	}
	return nil
}

// jsonClearChat is the JSON shape of a ClearChat.
type jsonClearChat struct {
	Channel     string `json:"channel"`
	ChannelID   string `json:"channel_id"`
	User        string `json:"user,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	BanDuration *int64 `json:"ban_duration,omitempty"` // seconds
	SentAt      *int64 `json:"sent_at,omitempty"`      // milliseconds since epoch
}

// MarshalJSON implements [json.Marshaler]. Absent fields are omitted from
// the encoding.
func (c *ClearChat) MarshalJSON() ([]byte, error) {
	j := jsonClearChat{
		Channel:     string(c.channel),
		ChannelID:   string(c.channelID),
		User:        string(c.user),
		UserID:      string(c.userID),
		BanDuration: jsonSeconds(c.banTime),
	}
	if t, ok := c.sentAt.GetOK(); ok {
		ms := t.UnixMilli()
		j.SentAt = &ms
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements [json.Unmarshaler]. It reports an error if the
// encoding lacks the channel or channel_id identifiers. The decoded value
// is owned: it does not alias data.
func (c *ClearChat) UnmarshalJSON(data []byte) error {
	var j jsonClearChat
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Channel == "" {
		return errors.New("missing channel")
	} else if j.ChannelID == "" {
		return errors.New("missing channel_id")
	}
	*c = ClearChat{
		channel:   []byte(j.Channel),
		channelID: []byte(j.ChannelID),
		owned:     true,
	}
	if j.User != "" {
		c.user = []byte(j.User)
	}
	if j.UserID != "" {
		c.userID = []byte(j.UserID)
	}
	if j.BanDuration != nil {
		c.banTime = value.Just(time.Duration(*j.BanDuration) * time.Second)
	}
	if j.SentAt != nil {
		c.sentAt = value.Just(time.UnixMilli(*j.SentAt))
	}
	return nil
}
