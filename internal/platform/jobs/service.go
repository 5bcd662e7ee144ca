package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrapp/internal/domain/survey"
	"hrapp/internal/platform/config"
	"hrapp/internal/platform/metrics"
)

const JobSurveyExpiry = "survey_expiry"

// retentionWindow is how long stored idempotency keys stay replayable.
const retentionWindow = 24 * time.Hour

// RetentionPurger removes expired bookkeeping rows during the expiry sweep.
type RetentionPurger interface {
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

type Service struct {
	DB        *pgxpool.Pool
	Cfg       config.Config
	Surveys   *survey.Service
	Metrics   *metrics.Collector
	Retention RetentionPurger
	queue     chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, surveys *survey.Service, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Surveys: surveys,
		Metrics: collector,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.SurveyExpiryInterval > 0 {
		go s.scheduleSurveyExpiry(ctx, s.Cfg.SurveyExpiryInterval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	var tenantArg any
	if j.TenantID != "" {
		tenantArg = j.TenantID
	}
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantArg, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleSurveyExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The sweep crosses tenants in one pass; record the run against
			// the default tenant slot.
			s.Enqueue(JobSurveyExpiry, "", func(ctx context.Context) (any, error) {
				expired, err := s.Surveys.ExpireOverdue(ctx, time.Now().UTC())
				if s.Metrics != nil {
					s.Metrics.RecordSurveysExpired(expired)
				}
				details := map[string]any{"expired": expired}
				if s.Retention != nil {
					if purged, purgeErr := s.Retention.PurgeOlderThan(ctx, retentionWindow); purgeErr != nil {
						slog.Warn("idempotency purge failed", "err", purgeErr)
					} else {
						details["purgedKeys"] = purged
					}
				}
				return details, err
			})
		}
	}
}
