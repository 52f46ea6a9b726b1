package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobAgent/internal/cli/ui"
	"jobAgent/internal/database"
)

type RunJournal interface {
	ListRuns(ctx context.Context, limit int) ([]database.CrawlRun, error)
	ListApplications(ctx context.Context, runID uuid.UUID) ([]database.Application, error)
}

// RunsHandler показывает журнал запусков краулера
type RunsHandler struct {
	journal RunJournal
	out     io.Writer
	log     *zap.Logger
}

// NewRunsHandler создает обработчик. journal может быть nil, если БД не настроена.
func NewRunsHandler(journal RunJournal, out io.Writer, log *zap.Logger) *RunsHandler {
	return &RunsHandler{journal: journal, out: out, log: log}
}

func (h *RunsHandler) enabled() bool {
	if h.journal == nil {
		fmt.Fprintln(h.out, ui.ColorYellow+ui.IconCross+" Журнал запусков выключен (не задан DB_HOST)"+ui.ColorReset)
		return false
	}
	return true
}

// List выводит последние запуски
func (h *RunsHandler) List(ctx context.Context) {
	if !h.enabled() {
		return
	}

	runs, err := h.journal.ListRuns(ctx, 20)
	if err != nil {
		h.log.Error("Ошибка чтения запусков", zap.Error(err))
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Ошибка чтения запусков"+ui.ColorReset)
		return
	}

	fmt.Fprintln(h.out, "\n"+ui.ColorBold+ui.IconList+" Запуски:"+ui.ColorReset)
	fmt.Fprintln(h.out)
	for _, r := range runs {
		icon, color, text := ui.FormatStatus(r.Status)
		fmt.Fprintf(h.out, "  "+ui.ColorBold+"%s"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"\n", r.ID, color, icon, text)
		fmt.Fprintf(h.out, "  "+ui.ColorGray+"└─"+ui.ColorReset+" %s, страниц %d, новых %d, пропущено %d, ошибок %d\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Pages, r.Handled, r.Skipped, r.Failed)
		if r.Error != "" {
			fmt.Fprintf(h.out, "  "+ui.ColorRed+"└─"+ui.ColorReset+" %s\n", r.Error)
		}
		fmt.Fprintln(h.out)
	}
}

// Show выводит отклики одного запуска
func (h *RunsHandler) Show(ctx context.Context, idStr string) {
	if !h.enabled() {
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Неверный ID запуска"+ui.ColorReset)
		return
	}

	apps, err := h.journal.ListApplications(ctx, id)
	if err != nil {
		h.log.Error("Ошибка чтения откликов", zap.Error(err))
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Ошибка чтения откликов"+ui.ColorReset)
		return
	}
	if len(apps) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"Откликов нет"+ui.ColorReset)
		return
	}

	for _, a := range apps {
		icon, color, text := ui.FormatStatus(a.Status)
		fmt.Fprintf(h.out, "  "+ui.ColorBold+"#%s"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"\n", a.JobID, color, icon, text)
		if a.Motivation != "" {
			fmt.Fprintf(h.out, "  "+ui.ColorGray+"└─"+ui.ColorReset+" %s\n", a.Motivation)
		}
	}
	fmt.Fprintln(h.out)
}
