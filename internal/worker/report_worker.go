package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/config"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/repository"
	"github.com/evaluia/examcore-backend/internal/service"
)

// ReportWorker consumes the report queue and generates narrative reports
// for completed sessions.
type ReportWorker struct {
	rdb           *redis.Client
	sessions      *repository.SessionRepository
	attempts      *repository.AttemptRepository
	reports       *repository.ReportRepository
	reportService *service.ReportService
	log           zerolog.Logger
}

// NewReportWorker creates a new ReportWorker.
func NewReportWorker(
	rdb *redis.Client,
	sessions *repository.SessionRepository,
	attempts *repository.AttemptRepository,
	reports *repository.ReportRepository,
	reportService *service.ReportService,
	log zerolog.Logger,
) *ReportWorker {
	return &ReportWorker{
		rdb:           rdb,
		sessions:      sessions,
		attempts:      attempts,
		reports:       reports,
		reportService: reportService,
		log:           log.With().Str("component", "report_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ReportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ReportWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.GenerateReportsQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var job service.ReportJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.generate(ctx, job.SessionID); err != nil {
		w.log.Error().Err(err).
			Str("session_id", job.SessionID.String()).
			Msg("Report generation failed, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.GenerateReportsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *ReportWorker) generate(ctx context.Context, sessionID uuid.UUID) error {
	session, err := w.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	attempts, err := w.attempts.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	var latest *model.ExamAttempt
	for i := range attempts {
		if attempts[i].Completed {
			latest = &attempts[i]
		}
	}
	if latest == nil {
		w.log.Warn().Str("session_id", sessionID.String()).Msg("No completed attempt, skipping report")
		return nil
	}

	report := &model.Report{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserID:    session.UserID,
		Kind:      session.Kind,
		Status:    model.ReportStatusPending,
	}
	if err := w.reports.Upsert(ctx, report); err != nil {
		return err
	}

	narrative, err := w.reportService.GenerateNarrative(ctx, session.Kind, latest.Questions, latest.Answers)
	if err != nil {
		if errors.Is(err, service.ErrReportsDisabled) {
			report.Status = model.ReportStatusFailed
			report.Body = "Report generation is not configured."
			return w.reports.Upsert(ctx, report)
		}
		report.Status = model.ReportStatusFailed
		if uerr := w.reports.Upsert(ctx, report); uerr != nil {
			w.log.Error().Err(uerr).Msg("Failed to mark report failed")
		}
		return err
	}

	report.Status = model.ReportStatusReady
	report.Body = narrative
	if err := w.reports.Upsert(ctx, report); err != nil {
		return err
	}

	w.log.Info().
		Str("session_id", sessionID.String()).
		Str("kind", string(session.Kind)).
		Msg("Report generated")
	return nil
}

// drain processes all remaining jobs in the queue before shutdown.
func (w *ReportWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.GenerateReportsQueue).Result()
		if err != nil {
			break
		}

		var job service.ReportJob
		if err := json.Unmarshal([]byte(result), &job); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.generate(ctx, job.SessionID); err != nil {
			w.log.Error().Err(err).Msg("Drain generate error")
			w.rdb.RPush(ctx, config.WorkerKey.GenerateReportsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining jobs")
	}
}
