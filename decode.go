// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package tmi

import (
	"math"
	"strconv"
	"time"

	"github.com/creachadair/mds/value"
	"github.com/creachadair/tmi/wire"
)

// parseBool decodes a Boolean settings tag: the value "1" means true, any
// other value present means false. Producers only ever send "0" or "1",
// but an unexpected value must not fail the message, so no value is
// treated as malformed.
func parseBool(v []byte) bool { return string(v) == "1" }

// parseSeconds decodes a non-negative integer count of seconds.
func parseSeconds(v []byte) (time.Duration, bool) {
	n, err := strconv.ParseUint(string(v), 10, 32)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

// parseFollowersOnly decodes the sign-split follow gating tag: a positive
// value is a minimum follow age in minutes, zero enables gating with no
// minimum, and a negative value disables gating. The minutes-to-seconds
// conversion is a fixed contract of the protocol; most other duration tags
// are already denominated in seconds. A minimum too large to represent as
// a [time.Duration] is treated as malformed.
func parseFollowersOnly(v []byte) (FollowersOnly, bool) {
	n, err := strconv.ParseInt(string(v), 10, 32)
	if err != nil || n > math.MaxInt64/int64(time.Minute) {
		return FollowersOnly{}, false
	}
	switch {
	case n > 0:
		return FollowersMinAge(time.Duration(n) * time.Minute), true
	case n == 0:
		return FollowersEnabled(), true
	default:
		return FollowersDisabled(), true
	}
}

// parseUnixMillis decodes a timestamp in milliseconds since the Unix epoch.
func parseUnixMillis(v []byte) (time.Time, bool) {
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(n), true
}

// boolTag decodes an optional Boolean tag of m. An absent tag leaves the
// field absent; a present tag always yields a value (see parseBool).
func boolTag(m *wire.Message, name wire.Tag) value.Maybe[bool] {
	if v, ok := m.Tag(name); ok {
		return value.Just(parseBool(v))
	}
	return value.Absent[bool]()
}

// tagField decodes an optional tag of m through decode. The field is left
// absent if the tag is missing or its value is malformed; a malformed
// optional tag never fails the message.
func tagField[T any](m *wire.Message, name wire.Tag, decode func([]byte) (T, bool)) value.Maybe[T] {
	if v, ok := m.Tag(name); ok {
		if t, ok := decode(v); ok {
			return value.Just(t)
		}
	}
	return value.Absent[T]()
}
