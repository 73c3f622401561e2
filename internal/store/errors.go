// Package store classifies persistence failures into the error taxonomy the
// rest of the system acts on. Classification happens here, at the adapter,
// so callers never pattern-match error message text.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrOffline marks operations refused because connectivity is known lost.
var ErrOffline = errors.New("store: offline")

// NetworkError wraps a failure caused by lost connectivity to the store.
// Writes failing this way are retried or handed to the durable queue.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("store: %s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteRejection wraps a logical error reported by the store itself
// (constraint violation, policy denial). Never retried; surfaced as-is.
type RemoteRejection struct {
	Op  string
	Err error
}

func (e *RemoteRejection) Error() string {
	return fmt.Sprintf("store: %s: rejected: %v", e.Op, e.Err)
}

func (e *RemoteRejection) Unwrap() error { return e.Err }

// ValidationError marks a submission missing required identifiers or data.
// Fatal for that submission: not retried, not queued.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// Classify maps a raw persistence error into the taxonomy. Rows-not-found
// becomes ErrNotFound, server-reported errors become RemoteRejection and
// everything that looks like lost connectivity becomes NetworkError.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &RemoteRejection{Op: op, Err: err}
	}

	// Everything below is connectivity: dial failures, resets, timeouts,
	// broken pools, or an explicit offline refusal.
	if isNetworkFailure(err) {
		return &NetworkError{Op: op, Err: err}
	}

	// Unrecognized infrastructure errors are treated as network failures:
	// an unreachable store manifests in many dial/IO error shapes.
	return &NetworkError{Op: op, Err: err}
}

func isNetworkFailure(err error) bool {
	if errors.Is(err, ErrOffline) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

// IsNetwork reports whether err is classified as a connectivity failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsRejection reports whether err is a logical rejection by the store.
func IsRejection(err error) bool {
	var re *RemoteRejection
	return errors.As(err, &re)
}

// IsValidation reports whether err is a fatal submission validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
