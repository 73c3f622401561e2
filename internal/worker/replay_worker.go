package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/netmon"
	"github.com/evaluia/examcore-backend/internal/service"
)

// ReplayWorker pushes queued submissions back to the store. A pass runs
// whenever connectivity returns and on a periodic safety tick, so records
// queued by an earlier process are not stranded.
type ReplayWorker struct {
	monitor     *netmon.Monitor
	submissions *service.SubmissionService
	interval    time.Duration
	log         zerolog.Logger
}

// NewReplayWorker creates a new ReplayWorker.
func NewReplayWorker(monitor *netmon.Monitor, submissions *service.SubmissionService, interval time.Duration, log zerolog.Logger) *ReplayWorker {
	return &ReplayWorker{
		monitor:     monitor,
		submissions: submissions,
		interval:    interval,
		log:         log.With().Str("component", "replay_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *ReplayWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	sub := w.monitor.Subscribe()
	defer w.monitor.Unsubscribe(sub)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Initial pass picks up anything left over from a previous run.
	w.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case st := <-sub:
			if st.IsOnline && st.WasOffline {
				w.log.Info().Msg("Connectivity restored, replaying queue")
				w.runPass(ctx)
			}
		case <-ticker.C:
			w.runPass(ctx)
		}
	}
}

func (w *ReplayWorker) runPass(ctx context.Context) {
	if !w.monitor.Status().IsOnline {
		return
	}

	if _, err := w.submissions.Replay(ctx); err != nil {
		// A network failure already flipped the monitor offline; the next
		// reconnect triggers another pass.
		w.log.Warn().Err(err).Msg("Replay pass stopped early")
	}
}
