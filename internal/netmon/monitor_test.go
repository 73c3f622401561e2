package netmon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMonitorStartsOnline(t *testing.T) {
	m := New(nil, time.Minute, zerolog.Nop())

	st := m.Status()
	if !st.IsOnline {
		t.Error("new monitor should be online")
	}
	if st.WasOffline {
		t.Error("WasOffline should start false")
	}
	if st.ReconnectedAt != nil {
		t.Error("ReconnectedAt should start nil")
	}
}

func TestMonitorTransitions(t *testing.T) {
	m := New(nil, time.Minute, zerolog.Nop())

	m.SetOffline()
	st := m.Status()
	if st.IsOnline {
		t.Error("still online after SetOffline")
	}
	if !st.WasOffline {
		t.Error("WasOffline not set")
	}

	m.SetOnline()
	st = m.Status()
	if !st.IsOnline {
		t.Error("still offline after SetOnline")
	}
	if !st.WasOffline {
		t.Error("WasOffline must stay sticky after reconnect")
	}
	if st.ReconnectedAt == nil {
		t.Error("ReconnectedAt not stamped")
	}

	// Going offline again clears the reconnect stamp.
	m.SetOffline()
	if m.Status().ReconnectedAt != nil {
		t.Error("ReconnectedAt not cleared on disconnect")
	}
}

func TestMonitorDuplicateTransitionsAreNoops(t *testing.T) {
	m := New(nil, time.Minute, zerolog.Nop())
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	m.SetOnline() // already online
	select {
	case st := <-ch:
		t.Fatalf("unexpected notification: %+v", st)
	default:
	}

	m.SetOffline()
	m.SetOffline() // duplicate
	if n := len(ch); n != 1 {
		t.Errorf("notifications = %d, want 1", n)
	}
}

func TestMonitorNotifiesSubscribers(t *testing.T) {
	m := New(nil, time.Minute, zerolog.Nop())
	ch := m.Subscribe()

	m.SetOffline()
	select {
	case st := <-ch:
		if st.IsOnline {
			t.Error("notification should carry the offline state")
		}
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}

	m.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}
}

func TestRunProbesOnlyWhileOffline(t *testing.T) {
	probes := make(chan struct{}, 16)
	probe := func(context.Context) error {
		probes <- struct{}{}
		return nil
	}

	m := New(probe, 5*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	// Online: the probe must stay silent.
	time.Sleep(30 * time.Millisecond)
	select {
	case <-probes:
		t.Fatal("probe fired while online")
	default:
	}

	// Offline: the first successful probe flips the monitor back.
	m.SetOffline()
	select {
	case <-probes:
	case <-time.After(time.Second):
		t.Fatal("probe never fired while offline")
	}

	deadline := time.After(time.Second)
	for !m.Status().IsOnline {
		select {
		case <-deadline:
			t.Fatal("monitor never came back online")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestHTTPProbe(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	probe := HTTPProbe(srv.URL)
	if err := probe(context.Background()); err != nil {
		t.Fatalf("probe() = %v", err)
	}
	if gotQuery == "" {
		t.Error("probe request not cache-busted")
	}
}

func TestHTTPProbeKeepsExistingQuery(t *testing.T) {
	var got map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	probe := HTTPProbe(srv.URL + "/ping?source=monitor")
	if err := probe(context.Background()); err != nil {
		t.Fatalf("probe() = %v", err)
	}
	if len(got["source"]) != 1 || got["source"][0] != "monitor" {
		t.Errorf("source param = %v, want [monitor]", got["source"])
	}
	if len(got["t"]) != 1 || got["t"][0] == "" {
		t.Errorf("cache-bust param = %v, want a single value", got["t"])
	}
}

func TestHTTPProbeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := HTTPProbe(srv.URL)(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestHTTPProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // probe against a dead listener

	if err := HTTPProbe(srv.URL)(context.Background()); err == nil {
		t.Fatal("expected error for unreachable target")
	}
}
