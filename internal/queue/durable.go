// Package queue provides crash-resistant local storage for submissions
// awaiting network recovery.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/model"
)

// ErrNotQueued is returned when an id does not exist in the queue.
var ErrNotQueued = errors.New("queue: submission not found")

// DurableQueue holds PendingSubmission records in a single JSON file. The
// whole list is rewritten on every mutation; single-writer, guarded by a
// mutex. Enqueue order is preserved (FIFO, no priority).
type DurableQueue struct {
	mu    sync.Mutex
	path  string
	items []model.PendingSubmission
	log   zerolog.Logger
}

// Open loads the queue from path. Corrupt or unreadable storage is
// discarded rather than failing: an empty queue beats a dead process.
func Open(path string, log zerolog.Logger) (*DurableQueue, error) {
	q := &DurableQueue{
		path: path,
		log:  log.With().Str("component", "durable_queue").Logger(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			q.log.Warn().Err(err).Msg("Queue file unreadable, starting empty")
		}
		return q, nil
	}

	if err := json.Unmarshal(raw, &q.items); err != nil {
		q.log.Warn().Err(err).Msg("Queue file corrupt, discarding")
		q.items = nil
	}

	if len(q.items) > 0 {
		q.log.Info().Int("count", len(q.items)).Msg("Loaded pending submissions")
	}
	return q, nil
}

// Enqueue appends a submission with a fresh retry budget and persists.
func (q *DurableQueue) Enqueue(sub model.PendingSubmission) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub.RetryCount = 0
	if sub.MaxRetries <= 0 {
		sub.MaxRetries = model.DefaultQueueMaxRetries
	}
	q.items = append(q.items, sub)
	return q.persist()
}

// DequeueOnSuccess removes the record with the given id and persists.
func (q *DurableQueue) DequeueOnSuccess(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return q.persist()
		}
	}
	return ErrNotQueued
}

// Update replaces the stored record for id and persists, keeping the
// stored retry count. Used to save progress a partially successful replay
// made (an assigned attempt id) so the next pass resumes at the incomplete
// step instead of redoing completed ones.
func (q *DurableQueue) Update(id string, sub model.PendingSubmission) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.items {
		if q.items[i].ID == id {
			retries := q.items[i].RetryCount
			q.items[i] = sub
			q.items[i].ID = id
			q.items[i].RetryCount = retries
			return q.persist()
		}
	}
	return ErrNotQueued
}

// IncrementRetry bumps the retry count for id and persists. Records at or
// over their retry budget become inert: excluded from Retryable but kept
// for diagnostics.
func (q *DurableQueue) IncrementRetry(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].RetryCount++
			if q.items[i].Exhausted() {
				q.log.Warn().
					Str("submission_id", id).
					Int("retries", q.items[i].RetryCount).
					Msg("Submission exhausted its retries, keeping for manual recovery")
			}
			return q.persist()
		}
	}
	return ErrNotQueued
}

// Retryable returns the records still eligible for replay, in enqueue order.
func (q *DurableQueue) Retryable() []model.PendingSubmission {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.PendingSubmission, 0, len(q.items))
	for _, it := range q.items {
		if !it.Exhausted() {
			out = append(out, it)
		}
	}
	return out
}

// Items returns a snapshot of every queued record, inert ones included.
func (q *DurableQueue) Items() []model.PendingSubmission {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.PendingSubmission, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of queued records.
func (q *DurableQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// PurgeExhausted removes inert records. Returns how many were dropped.
func (q *DurableQueue) PurgeExhausted() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	dropped := 0
	for _, it := range q.items {
		if it.Exhausted() {
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	if dropped == 0 {
		return 0, nil
	}
	return dropped, q.persist()
}

// PurgeAll empties the queue. Returns how many records were dropped.
func (q *DurableQueue) PurgeAll() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := len(q.items)
	q.items = nil
	return dropped, q.persist()
}

// persist rewrites the whole file. Written to a temp file first and renamed
// so a crash mid-write cannot corrupt the stored queue. Callers hold q.mu.
func (q *DurableQueue) persist() error {
	data, err := json.Marshal(q.items)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}

	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write queue: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("replace queue: %w", err)
	}
	return nil
}
