// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package tmi

import (
	"errors"
	"fmt"

	"github.com/creachadair/tmi/wire"
)

// A Kind identifies the type of a decoded message.
type Kind byte

const (
	KindRoomState Kind = 1 + iota // a partial update to channel settings
	KindClearChat                 // a moderation action removing messages
)

func (k Kind) String() string {
	switch k {
	case KindRoomState:
		return "ROOMSTATE"
	case KindClearChat:
		return "CLEARCHAT"
	default:
		return fmt.Sprintf("KIND:%d", byte(k))
	}
}

// ErrWrongKind is reported when a message cannot be decoded as the
// requested kind, either because its command differs or because a required
// identifier is missing. It carries no further diagnostics: the caller is
// expected to try another kind or to discard the message.
var ErrWrongKind = errors.New("message does not match the requested kind")

// A Message is a typed chat protocol message. The concrete types behind
// this interface are pointers to the message types of this package, such
// as [*RoomState].
type Message interface {
	// Kind reports the kind of the message.
	Kind() Kind
}

// Decode converts a raw message view into its typed form, trying each
// message kind known to this package. It reports [ErrWrongKind] if no kind
// matches m.
//
// Decode does not retain m, but the text fields of the returned message
// alias the buffer underlying m; see the Owned method of the concrete
// message types.
func Decode(m *wire.Message) (Message, error) {
	switch m.Command() {
	case wire.RoomState:
		return ParseRoomState(m)
	case wire.ClearChat:
		return ParseClearChat(m)
	}
	return nil, ErrWrongKind
}
