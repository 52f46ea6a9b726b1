// Package crawler обходит доску вакансий, пропускает уже обработанные
// вакансии и откликается на новые.
package crawler

import (
	"context"
	"time"
)

// JobPosting - данные открытой вакансии, живут только во время ее обработки.
type JobPosting struct {
	ID             string
	Description    string
	HasApplyAction bool
}

// Board - операции над сайтом вакансий, которые нужны краулеру.
// Реализация держит одну страницу браузера и переиспользует ее.
type Board interface {
	Login(ctx context.Context) error
	// OpenBoard открывает страницу доски и возвращает id вакансий в порядке DOM.
	// Пустой срез без ошибки означает, что страниц больше нет.
	OpenBoard(ctx context.Context, page int) ([]string, error)
	OpenJob(ctx context.Context, id string) (JobPosting, error)
	OpenApplyForm(ctx context.Context) error
	MotivationVisible(ctx context.Context) (bool, error)
	FillMotivation(ctx context.Context, text string) error
	SubmitVisible(ctx context.Context) (bool, error)
	Submit(ctx context.Context) error
	// Restore возвращает страницу к доске после просмотра вакансии.
	Restore(ctx context.Context, page int) error
}

// Drafter пишет мотивационное письмо по описанию вакансии.
type Drafter interface {
	Draft(ctx context.Context, description string) (string, error)
}

type Status string

const (
	StatusNoApply   Status = "no_apply"
	StatusSubmitted Status = "submitted"
	StatusDryRun    Status = "dry_run"
	// StatusNoSubmit - форма отклика открыта, но кнопки отправки нет.
	StatusNoSubmit Status = "no_submit"
)

// Outcome - результат обработки одной вакансии.
type Outcome struct {
	JobID      string
	Status     Status
	Motivation string
}

// Result - итог одного запуска краулера.
type Result struct {
	RunID    string
	Pages    int
	Seen     int
	Skipped  int
	Handled  int
	Failed   int
	Started  time.Time
	Finished time.Time
}

// Journal сохраняет историю запусков. Ошибки журнала не прерывают обход.
type Journal interface {
	StartRun(ctx context.Context, runID string, dryRun bool) error
	RecordApplication(ctx context.Context, runID string, outcome Outcome) error
	FinishRun(ctx context.Context, result Result, runErr error) error
}

type nopJournal struct{}

func (nopJournal) StartRun(context.Context, string, bool) error { return nil }
func (nopJournal) RecordApplication(context.Context, string, Outcome) error { return nil }
func (nopJournal) FinishRun(context.Context, Result, error) error { return nil }
