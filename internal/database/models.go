// Package database хранит журнал работы в PostgreSQL: запуски краулера,
// обработанные вакансии и запросы к LLM. Использует GORM с prepared statements.
package database

import (
	"time"

	"github.com/google/uuid"
)

// Статусы запуска краулера.
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)

// CrawlRun - один запуск краулера.
type CrawlRun struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status     string     `gorm:"type:varchar(16);not null;default:'running'"` // running, finished, failed
	DryRun     bool       `gorm:"not null;default:false"`
	Pages      int        `gorm:"not null;default:0"`
	Seen       int        `gorm:"not null;default:0"`
	Skipped    int        `gorm:"not null;default:0"`
	Handled    int        `gorm:"not null;default:0"`
	Failed     int        `gorm:"not null;default:0"`
	Error      string     `gorm:"type:text"`
	StartedAt  time.Time  `gorm:"not null"`
	FinishedAt *time.Time
}

// Application - вакансия, обработанная в рамках запуска.
type Application struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      uuid.UUID `gorm:"type:uuid;index;not null"`
	JobID      string    `gorm:"type:varchar(64);index;not null"`
	Status     string    `gorm:"type:varchar(16);not null"` // no_apply, submitted, dry_run, no_submit
	Motivation string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// LlmLog - запрос к LLM. Промпт и ответ сохраняются уже очищенными.
type LlmLog struct {
	ID           uint      `gorm:"primaryKey"`
	Role         string    `gorm:"type:varchar(32);not null"` // chat, chat_error, chat_parse_error
	PromptText   string    `gorm:"type:text;not null"`
	ResponseText string    `gorm:"type:text"`
	Model        string    `gorm:"type:varchar(64)"`
	TokensUsed   int
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
