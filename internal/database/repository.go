package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobAgent/internal/crawler"
	"jobAgent/internal/llm"
)

// JournalRepository пишет журнал краулера и запросов к LLM.
type JournalRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	_ crawler.Journal   = (*JournalRepository)(nil)
	_ llm.RequestLogger = (*JournalRepository)(nil)
)

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db, now: time.Now}
}

func (r *JournalRepository) StartRun(ctx context.Context, runID string, dryRun bool) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	run := &CrawlRun{
		ID:        id,
		Status:    RunStatusRunning,
		DryRun:    dryRun,
		StartedAt: r.now(),
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *JournalRepository) RecordApplication(ctx context.Context, runID string, outcome crawler.Outcome) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	return r.db.WithContext(ctx).Create(&Application{
		RunID:      id,
		JobID:      outcome.JobID,
		Status:     string(outcome.Status),
		Motivation: outcome.Motivation,
	}).Error
}

func (r *JournalRepository) FinishRun(ctx context.Context, result crawler.Result, runErr error) error {
	id, err := uuid.Parse(result.RunID)
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	return r.db.WithContext(ctx).Model(&CrawlRun{}).
		Where("id = ?", id).
		Updates(runUpdates(result, runErr)).Error
}

func runUpdates(result crawler.Result, runErr error) map[string]any {
	status, errText := RunStatusFinished, ""
	if runErr != nil {
		status, errText = RunStatusFailed, runErr.Error()
	}

	return map[string]any{
		"status":      status,
		"pages":       result.Pages,
		"seen":        result.Seen,
		"skipped":     result.Skipped,
		"handled":     result.Handled,
		"failed":      result.Failed,
		"error":       errText,
		"finished_at": result.Finished,
	}
}

func (r *JournalRepository) LogLLMRequest(ctx context.Context, entry llm.RequestLog) error {
	return r.db.WithContext(ctx).Create(&LlmLog{
		Role:         entry.Role,
		PromptText:   entry.Prompt,
		ResponseText: entry.Response,
		Model:        entry.Model,
		TokensUsed:   entry.TokensUsed,
	}).Error
}

// ListRuns возвращает последние запуски, новые первыми.
func (r *JournalRepository) ListRuns(ctx context.Context, limit int) ([]CrawlRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var runs []CrawlRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *JournalRepository) ListApplications(ctx context.Context, runID uuid.UUID) ([]Application, error) {
	var apps []Application
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}
