// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package tmi decodes Twitch-style IRC chat protocol messages into typed
// values.
//
// The [wire] package tokenizes a single raw protocol line into a generic
// view comprising a command, parameters, and attribute tags. This package
// converts such a view into a typed message: a value whose fields carry
// well-defined presence semantics, so that a settings tag the server did
// not send is observably distinct from one it set to a disabled state.
//
// # Messages
//
// Use [Decode] to convert a wire message into its typed form:
//
//	raw, err := wire.Parse(line)
//	...
//	msg, err := tmi.Decode(raw)
//	if err == tmi.ErrWrongKind {
//	   // the line is valid but carries no message kind known here
//	}
//
// Each message kind also has its own parser (for example [ParseRoomState])
// that reports [ErrWrongKind] if the message is not of that kind, so the
// parsers can be tried in sequence against an unidentified message.
//
// Decoding is best-effort below the kind level: once the command and the
// required identifiers match, a malformed optional tag leaves its field
// absent rather than failing the message.
//
// # Ownership
//
// The text fields of a freshly parsed message alias the buffer the wire
// message was parsed from, so parsing does not copy the input. A value
// that must outlive that buffer (for example one queued for another
// goroutine) must first be converted with its Owned method, which copies
// only the fields that still alias the input. Owned is idempotent:
// converting an already-owned value returns it unchanged.
//
// # Pumps
//
// A [Pump] drives decoding over a stream of lines: it reads raw lines from
// a [Source], decodes each into its typed form, and dispatches the result
// to the handler registered for its kind:
//
//	p := tmi.NewPump().Handle(tmi.KindRoomState, handler)
//	p.Start(tmi.LineSource(conn))
//	if err := p.Wait(); err != nil {
//	   log.Fatalf("Pump failed: %v", err)
//	}
//
// Handlers run synchronously with the read loop, and the messages they
// receive alias the pump's read buffer; a handler that retains a message
// must take an owned copy before returning.
//
// # Metrics
//
// Pumps maintain a collection of metrics while running. Use the
// [Pump.Metrics] method to obtain an [expvar.Map] containing the metrics,
// which are shared globally among all pumps.
//
// The metrics currently exported include:
//
//   - lines_received: counter of raw lines received
//   - lines_dropped: counter of lines that did not parse
//   - messages_typed: counter of messages dispatched to a handler
//   - messages_dropped: counter of messages discarded for want of a handler
//   - handler_errors: counter of handler invocations reporting an error
//   - handlers_active: gauge of handlers currently executing
package tmi
