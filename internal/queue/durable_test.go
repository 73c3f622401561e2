package queue

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/model"
)

func testSubmission(id string) model.PendingSubmission {
	return model.PendingSubmission{
		ID:        id,
		ExamID:    uuid.New(),
		UserID:    uuid.New(),
		Questions: json.RawMessage(`[{"q":1}]`),
		Answers:   json.RawMessage(`[{"a":"yes"}]`),
		CreatedAt: time.Now().UTC(),
	}
}

func openQueue(t *testing.T, path string) *DurableQueue {
	t.Helper()
	q, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	return q
}

func TestQueueSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")

	q := openQueue(t, path)
	want := testSubmission("a")
	if err := q.Enqueue(want); err != nil {
		t.Fatalf("Enqueue() = %v", err)
	}

	reopened := openQueue(t, path)
	items := reopened.Items()
	if len(items) != 1 {
		t.Fatalf("items after reopen = %d, want 1", len(items))
	}
	if items[0].ID != want.ID {
		t.Errorf("ID = %q, want %q", items[0].ID, want.ID)
	}
	if string(items[0].Answers) != string(want.Answers) {
		t.Errorf("Answers = %s, want %s", items[0].Answers, want.Answers)
	}
}

func TestOpenDiscardsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	q := openQueue(t, path)
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after corrupt load", q.Len())
	}

	// The queue must still be writable afterwards.
	if err := q.Enqueue(testSubmission("a")); err != nil {
		t.Fatalf("Enqueue() after corrupt load = %v", err)
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	q := openQueue(t, filepath.Join(t.TempDir(), "nested", "dir", "queue.json"))
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestEnqueueResetsRetryBudget(t *testing.T) {
	q := openQueue(t, filepath.Join(t.TempDir(), "queue.json"))

	sub := testSubmission("a")
	sub.RetryCount = 4
	if err := q.Enqueue(sub); err != nil {
		t.Fatalf("Enqueue() = %v", err)
	}

	items := q.Items()
	if items[0].RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", items[0].RetryCount)
	}
	if items[0].MaxRetries != model.DefaultQueueMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", items[0].MaxRetries, model.DefaultQueueMaxRetries)
	}
}

func TestRetryableKeepsOrderAndSkipsExhausted(t *testing.T) {
	q := openQueue(t, filepath.Join(t.TempDir(), "queue.json"))

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(testSubmission(id)); err != nil {
			t.Fatalf("Enqueue(%s) = %v", id, err)
		}
	}
	for i := 0; i < model.DefaultQueueMaxRetries; i++ {
		if err := q.IncrementRetry("b"); err != nil {
			t.Fatalf("IncrementRetry() = %v", err)
		}
	}

	retryable := q.Retryable()
	if len(retryable) != 2 {
		t.Fatalf("Retryable() = %d items, want 2", len(retryable))
	}
	if retryable[0].ID != "a" || retryable[1].ID != "c" {
		t.Errorf("order = [%s %s], want [a c]", retryable[0].ID, retryable[1].ID)
	}

	// Items still reports the inert record.
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
}

func TestDequeueOnSuccess(t *testing.T) {
	q := openQueue(t, filepath.Join(t.TempDir(), "queue.json"))

	if err := q.Enqueue(testSubmission("a")); err != nil {
		t.Fatalf("Enqueue() = %v", err)
	}
	if err := q.DequeueOnSuccess("a"); err != nil {
		t.Fatalf("DequeueOnSuccess() = %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}

	if err := q.DequeueOnSuccess("a"); !errors.Is(err, ErrNotQueued) {
		t.Errorf("second DequeueOnSuccess() = %v, want ErrNotQueued", err)
	}
}

func TestUpdatePersistsProgressAndKeepsRetryCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	q := openQueue(t, path)

	sub := testSubmission("a")
	if err := q.Enqueue(sub); err != nil {
		t.Fatalf("Enqueue() = %v", err)
	}
	if err := q.IncrementRetry("a"); err != nil {
		t.Fatalf("IncrementRetry() = %v", err)
	}

	attemptID := uuid.New()
	sub.AttemptID = &attemptID
	sub.RetryCount = 99 // must not leak into the stored record
	if err := q.Update("a", sub); err != nil {
		t.Fatalf("Update() = %v", err)
	}

	reopened := openQueue(t, path)
	items := reopened.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].AttemptID == nil || *items[0].AttemptID != attemptID {
		t.Errorf("AttemptID = %v, want %s", items[0].AttemptID, attemptID)
	}
	if items[0].RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1 (stored count must survive Update)", items[0].RetryCount)
	}

	if err := q.Update("missing", sub); !errors.Is(err, ErrNotQueued) {
		t.Errorf("Update(missing) = %v, want ErrNotQueued", err)
	}
}

func TestIncrementRetryUnknownID(t *testing.T) {
	q := openQueue(t, filepath.Join(t.TempDir(), "queue.json"))
	if err := q.IncrementRetry("missing"); !errors.Is(err, ErrNotQueued) {
		t.Errorf("IncrementRetry() = %v, want ErrNotQueued", err)
	}
}

func TestPurgeExhausted(t *testing.T) {
	q := openQueue(t, filepath.Join(t.TempDir(), "queue.json"))

	if err := q.Enqueue(testSubmission("keep")); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(testSubmission("drop")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < model.DefaultQueueMaxRetries; i++ {
		if err := q.IncrementRetry("drop"); err != nil {
			t.Fatal(err)
		}
	}

	dropped, err := q.PurgeExhausted()
	if err != nil {
		t.Fatalf("PurgeExhausted() = %v", err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	items := q.Items()
	if len(items) != 1 || items[0].ID != "keep" {
		t.Errorf("items = %v, want only keep", items)
	}

	// No inert records left, nothing to do.
	dropped, err = q.PurgeExhausted()
	if err != nil || dropped != 0 {
		t.Errorf("second PurgeExhausted() = %d, %v, want 0, nil", dropped, err)
	}
}

func TestPurgeAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	q := openQueue(t, path)

	for _, id := range []string{"a", "b"} {
		if err := q.Enqueue(testSubmission(id)); err != nil {
			t.Fatal(err)
		}
	}

	dropped, err := q.PurgeAll()
	if err != nil {
		t.Fatalf("PurgeAll() = %v", err)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}

	// The empty state must be what persists.
	if reopened := openQueue(t, path); reopened.Len() != 0 {
		t.Errorf("Len() after reopen = %d, want 0", reopened.Len())
	}
}
