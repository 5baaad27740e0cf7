// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package tmi

import "expvar"

// pumpCounters record pump activity counters.
type pumpCounters struct {
	lineRecv      expvar.Int
	lineDropped   expvar.Int // lines that did not parse
	msgTyped      expvar.Int // messages dispatched to a handler
	msgDropped    expvar.Int // messages with no matching kind or handler
	handlerErr    expvar.Int // handler invocations reporting an error
	handlerActive expvar.Int // gauge

	emap *expvar.Map
}

var pumpMetrics = newPumpCounters()

func newPumpCounters() *pumpCounters {
	pm := &pumpCounters{emap: new(expvar.Map)}
	pm.emap.Set("lines_received", &pm.lineRecv)
	pm.emap.Set("lines_dropped", &pm.lineDropped)
	pm.emap.Set("messages_typed", &pm.msgTyped)
	pm.emap.Set("messages_dropped", &pm.msgDropped)
	pm.emap.Set("handler_errors", &pm.handlerErr)
	pm.emap.Set("handlers_active", &pm.handlerActive)
	return pm
}
