// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package tmi

import (
	"bufio"
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"io/fs"
	"net"
	"sync"

	"github.com/creachadair/taskgroup"
	"github.com/creachadair/tmi/wire"
)

// A Source is a reliable ordered stream of raw protocol lines.
//
// The line reported by ReadLine may alias a buffer that is reused by
// subsequent calls, so values decoded from it must be copied (see the
// Owned methods of the message types) before the next read if they are
// retained. Close terminates the source, causing pending and future reads
// to report an error.
type Source interface {
	// ReadLine returns the next available line, without its terminator.
	ReadLine() ([]byte, error)

	// Close closes the source. After a source is closed, all further
	// operations on it must report an error.
	Close() error
}

// LineSource returns a Source that reads newline-terminated lines from rc.
// Lines returned by the source alias an internal buffer that is reused
// between reads.
func LineSource(rc io.ReadCloser) Source {
	return &lineSource{buf: bufio.NewScanner(rc), c: rc}
}

type lineSource struct {
	buf *bufio.Scanner
	c   io.Closer
}

// ReadLine implements a method of the [Source] interface.
func (s *lineSource) ReadLine() ([]byte, error) {
	if s.buf.Scan() {
		return s.buf.Bytes(), nil
	}
	if err := s.buf.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close implements a method of the [Source] interface.
func (s *lineSource) Close() error { return s.c.Close() }

// A Handler processes one typed message delivered by a Pump. The message
// passed to the handler aliases the pump's read buffer; a handler that
// retains the message beyond its own return must take an owned copy first.
// An error reported by a handler is fatal to the pump.
type Handler func(context.Context, Message) error

// HandlerFor adapts a function on a concrete message type to a [Handler].
// The resulting handler reports an error if it receives a message of any
// other type.
func HandlerFor[M Message](f func(context.Context, M) error) Handler {
	return func(ctx context.Context, msg Message) error {
		m, ok := msg.(M)
		if !ok {
			return fmt.Errorf("unexpected message type %T", msg)
		}
		return f(ctx, m)
	}
}

// A Pump reads raw protocol lines from a Source, decodes each into its
// typed form, and dispatches the result to the handler registered for its
// kind. A zero-valued Pump is ready for use, but must not be copied after
// any method has been called.
//
// Call Start with a source to start the service routine for the pump. Once
// started, a pump runs until Stop is called, the source is exhausted or
// closed, or a handler fails. Use Wait to wait for the pump to exit and
// report its status.
//
// Lines that do not parse, and messages for which no handler is
// registered, are counted and discarded; they do not stop the pump.
// Handlers run synchronously with the read loop, so a handler has
// exclusive use of the read buffer its message aliases until it returns.
type Pump struct {
	in    Source
	tasks *taskgroup.Group

	μ sync.Mutex

	err    error                  // pump fatal error
	mux    map[Kind]Handler       // message kind → handler
	base   func() context.Context // return a new base context
	onExit func(error)
}

// NewPump constructs a new unstarted pump.
func NewPump() *Pump { return new(Pump) }

// Start starts the pump reading from src. The pump runs until the source
// is exhausted, Stop is called, or a handler fails. Start does not block;
// call Wait to wait for the pump to exit and report its status.
func (p *Pump) Start(src Source) *Pump {
	if p.in != nil {
		panic("pump is already started")
	}

	g := taskgroup.New(nil)
	p.in = src
	p.tasks = g
	p.err = nil
	if p.base == nil {
		p.base = context.Background
	}

	g.Go(func() error {
		for {
			line, err := p.in.ReadLine()
			if err != nil {
				p.fail(err)
				return nil
			}
			pumpMetrics.lineRecv.Add(1)
			if err := p.dispatchLine(line); err != nil {
				p.fail(err)
				return nil
			}
		}
	})

	return p
}

// Metrics returns a metrics map for the pump. It is safe for the caller to
// add additional metrics to the map while the pump is active.
func (p *Pump) Metrics() *expvar.Map { return pumpMetrics.emap }

// Stop closes the source and terminates the pump. It blocks until the pump
// has exited and returns its status. After Stop completes it is safe to
// restart the pump with a new source.
func (p *Pump) Stop() error { p.closeIn(); return p.Wait() }

func treatErrorAsSuccess(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, fs.ErrClosed)
}

// waitTasks blocks until the service routine has finished, and reports
// whether the pump was running.
func (p *Pump) waitTasks() bool {
	p.μ.Lock()
	t := p.tasks
	p.μ.Unlock()
	if t == nil {
		return false
	}
	t.Wait()
	return true
}

// Wait blocks until p terminates and reports the error that caused it to
// stop. After Wait completes it is safe to restart the pump with a new
// source.
//
// If p is not running, or has stopped because its source was exhausted or
// closed, Wait returns nil; otherwise it returns the error that stopped
// the pump.
func (p *Pump) Wait() error {
	if !p.waitTasks() {
		return nil // the pump is not running
	}

	// Clean up pump state so it can be garbage collected.
	p.μ.Lock()
	defer p.μ.Unlock()
	p.in = nil
	p.tasks = nil

	if treatErrorAsSuccess(p.err) {
		return nil
	}
	return p.err
}

// Handle registers a handler for the specified message kind. It is safe to
// call this while the pump is running. Passing a nil Handler removes any
// handler for the specified kind. Handle returns p to permit chaining.
func (p *Pump) Handle(kind Kind, handler Handler) *Pump {
	p.μ.Lock()
	defer p.μ.Unlock()
	if p.mux == nil {
		p.mux = make(map[Kind]Handler)
	}
	if handler == nil {
		delete(p.mux, kind)
	} else {
		p.mux[kind] = handler
	}
	return p
}

// OnExit registers a callback to be invoked when the pump terminates. The
// callback is executed synchronously during shutdown, with the same error
// value that would be reported by the Wait method.
//
// Only one exit callback can be registered at a time; if f == nil the
// callback is removed.
func (p *Pump) OnExit(f func(error)) *Pump {
	p.μ.Lock()
	defer p.μ.Unlock()
	p.onExit = f
	return p
}

// NewContext registers a function that will be called to create a new base
// context for message handlers. This allows host resources to be plumbed
// into a handler. If it is not set a background context is used.
func (p *Pump) NewContext(base func() context.Context) *Pump {
	p.μ.Lock()
	defer p.μ.Unlock()
	if base == nil {
		p.base = context.Background
	} else {
		p.base = base
	}
	return p
}

// fail records the failure status and signals the exit callback.
func (p *Pump) fail(err error) {
	p.μ.Lock()
	defer p.μ.Unlock()
	p.err = err
	if p.onExit != nil {
		if treatErrorAsSuccess(err) {
			err = nil
		}
		p.onExit(err)
	}
}

// dispatchLine decodes one raw line and routes the typed message to its
// handler. Any error it reports is fatal to the pump.
func (p *Pump) dispatchLine(line []byte) error {
	raw, err := wire.Parse(line)
	if err != nil {
		pumpMetrics.lineDropped.Add(1)
		return nil // skip lines that do not parse
	}
	msg, err := Decode(raw)
	if err != nil {
		pumpMetrics.msgDropped.Add(1)
		return nil // skip message kinds not known here
	}

	p.μ.Lock()
	handler, ok := p.mux[msg.Kind()]
	base := p.base
	p.μ.Unlock()
	if !ok {
		pumpMetrics.msgDropped.Add(1)
		return nil // skip messages nobody asked for
	}

	pumpMetrics.msgTyped.Add(1)
	pumpMetrics.handlerActive.Add(1)
	defer pumpMetrics.handlerActive.Add(-1)

	err = func() (err error) {
		// Ensure a panic out of the handler is turned into a pump failure.
		defer func() {
			if x := recover(); x != nil && err == nil {
				err = fmt.Errorf("handler panicked (recovered): %v", x)
			}
		}()
		return handler(base(), msg)
	}()
	if err != nil {
		pumpMetrics.handlerErr.Add(1)
		return fmt.Errorf("handler for %v: %w", msg.Kind(), err)
	}
	return nil
}

func (p *Pump) closeIn() {
	p.μ.Lock()
	in := p.in
	p.μ.Unlock()
	if in != nil {
		in.Close()
	}
}
