// Package server is the debug monitor: an HTTP endpoint serving entity
// snapshots and a websocket stream of lifecycle notices.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zeusync/zeuscore/internal/core/events/bus"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

type Options struct {
	Addr string
	// Token, when set, is required on every request
	Token string
	// History is how many notices are replayed to new feed clients
	History int
}

func DefaultOptions() Options {
	return Options{
		Addr:    "127.0.0.1:7070",
		History: 128,
	}
}

// Monitor serves a Source over HTTP and streams the notices bus
type Monitor struct {
	opts    Options
	src     Source
	notices bus.EventBus
	sub     bus.Subscription
	history *History
	feed    *Feed
	auth    TokenAuth
	log     log.Log

	server   *http.Server
	listener net.Listener

	running atomic.Bool
	closed  atomic.Bool
}

// New builds a monitor and subscribes it to every notice on the bus. A nil
// bus leaves the feed silent apart from the hello frame.
func New(opts Options, src Source, notices bus.EventBus, logger log.Log) (*Monitor, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "monitor"))
	history := NewHistory(opts.History)

	m := &Monitor{
		opts:    opts,
		src:     src,
		notices: notices,
		history: history,
		feed:    NewFeed(history, logger),
		auth:    TokenAuth{Token: opts.Token},
		log:     logger,
	}
	if notices != nil {
		sub, err := notices.Subscribe(bus.Wildcard, m.feed.Handle)
		if err != nil {
			return nil, err
		}
		m.sub = sub
	}
	return m, nil
}

// Start listens on Options.Addr and serves in the background
func (m *Monitor) Start(_ context.Context) error {
	if m.closed.Load() {
		return ErrServerClosed
	}
	if !m.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", m.opts.Addr)
	if err != nil {
		m.running.Store(false)
		m.log.Error("failed to listen", log.String("addr", m.opts.Addr), log.Error(err))
		return err
	}
	m.listener = ln
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("monitor stopped serving", log.Error(err))
		}
	}()

	m.log.Info("monitor listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address once started
func (m *Monitor) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Stop shuts the HTTP server down and disconnects feed clients
func (m *Monitor) Stop(ctx context.Context) error {
	if !m.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	m.log.Info("stopping monitor")

	// hijacked websocket connections are not tracked by Shutdown
	m.feed.Close()
	return m.server.Shutdown(ctx)
}

// Close stops the monitor if needed and drops its bus subscription
func (m *Monitor) Close(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if m.running.Load() {
		if err := m.Stop(ctx); err != nil && !errors.Is(err, ErrServerNotRunning) {
			errs = append(errs, err)
		}
	}
	m.feed.Close()
	if m.notices != nil && m.sub != nil {
		if err := m.notices.Unsubscribe(m.sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
