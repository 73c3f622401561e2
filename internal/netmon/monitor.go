// Package netmon maintains a best-effort, continuously updated view of
// connectivity to the remote store.
package netmon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is a point-in-time connectivity snapshot. WasOffline is sticky:
// once connectivity is lost it stays true for the life of the process.
type Status struct {
	IsOnline      bool       `json:"is_online"`
	WasOffline    bool       `json:"was_offline"`
	ReconnectedAt *time.Time `json:"reconnected_at,omitempty"`
}

// ProbeFunc checks reachability of the store. A nil return transitions the
// monitor back online; any error leaves it offline.
type ProbeFunc func(ctx context.Context) error

// Monitor tracks online/offline transitions driven by reported failures and
// a periodic reachability probe. Consumers poll Status or subscribe to
// transition notifications.
type Monitor struct {
	mu    sync.Mutex
	st    Status
	subs  map[chan Status]struct{}
	probe ProbeFunc
	every time.Duration
	log   zerolog.Logger
}

// New creates a Monitor that starts online.
func New(probe ProbeFunc, every time.Duration, log zerolog.Logger) *Monitor {
	if every <= 0 {
		every = 30 * time.Second
	}
	return &Monitor{
		st:    Status{IsOnline: true},
		subs:  make(map[chan Status]struct{}),
		probe: probe,
		every: every,
		log:   log.With().Str("component", "netmon").Logger(),
	}
}

// Status returns the current connectivity snapshot.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

// SetOnline records a reconnect. ReconnectedAt is set to now and WasOffline
// keeps its sticky value.
func (m *Monitor) SetOnline() {
	m.mu.Lock()
	if m.st.IsOnline {
		m.mu.Unlock()
		return
	}
	now := time.Now()
	m.st.IsOnline = true
	m.st.ReconnectedAt = &now
	st := m.st
	m.mu.Unlock()

	m.log.Info().Msg("Store reachable again")
	m.notify(st)
}

// SetOffline records lost connectivity.
func (m *Monitor) SetOffline() {
	m.mu.Lock()
	if !m.st.IsOnline {
		m.mu.Unlock()
		return
	}
	m.st.IsOnline = false
	m.st.WasOffline = true
	m.st.ReconnectedAt = nil
	st := m.st
	m.mu.Unlock()

	m.log.Warn().Msg("Store unreachable, entering offline mode")
	m.notify(st)
}

// Subscribe returns a channel receiving every transition. The channel is
// buffered; a slow consumer drops notifications rather than blocking the
// monitor.
func (m *Monitor) Subscribe() chan Status {
	ch := make(chan Status, 8)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (m *Monitor) Unsubscribe(ch chan Status) {
	m.mu.Lock()
	if _, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(ch)
	}
	m.mu.Unlock()
}

func (m *Monitor) notify(st Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- st:
		default:
		}
	}
}

// Run drives the background probe loop. While offline, the probe fires on
// every tick; probe failures are swallowed and leave the status unchanged.
// Call in a goroutine.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().Dur("interval", m.every).Msg("Monitor started")

	ticker := time.NewTicker(m.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Monitor stopped")
			return
		case <-ticker.C:
			if m.Status().IsOnline || m.probe == nil {
				continue
			}
			if err := m.probe(ctx); err != nil {
				m.log.Debug().Err(err).Msg("Probe failed, still offline")
				continue
			}
			m.SetOnline()
		}
	}
}

// HTTPProbe returns a ProbeFunc issuing a cache-busted HEAD request against
// rawURL. Any non-2xx status or transport error counts as unreachable.
func HTTPProbe(rawURL string) ProbeFunc {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(ctx context.Context) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return err
		}
		q := u.Query()
		q.Set("t", strconv.FormatInt(time.Now().UnixNano(), 10))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("probe status %d", resp.StatusCode)
		}
		return nil
	}
}

// Pinger is satisfied by pgxpool.Pool and redis-style clients alike.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingProbe returns a ProbeFunc backed by a database ping.
func PingProbe(p Pinger) ProbeFunc {
	return func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return p.Ping(probeCtx)
	}
}
