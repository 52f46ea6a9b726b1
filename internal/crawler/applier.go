package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobAgent/internal/sanitizer"
)

type Applier struct {
	board   Board
	drafter Drafter
	dryRun  bool
	log     *zap.Logger
	clean   *sanitizer.DataSanitizer
}

func NewApplier(board Board, drafter Drafter, dryRun bool, log *zap.Logger) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applier{
		board:   board,
		drafter: drafter,
		dryRun:  dryRun,
		log:     log,
		clean:   sanitizer.New(),
	}
}

// Apply открывает вакансию и, если отклик доступен, заполняет и отправляет форму.
// Отсутствие поля письма или кнопки отправки - пропущенный шаг, а не ошибка.
func (a *Applier) Apply(ctx context.Context, id string) (Outcome, error) {
	log := a.log.With(zap.String("job_id", id))
	outcome := Outcome{JobID: id}

	posting, err := a.board.OpenJob(ctx, id)
	if err != nil {
		return outcome, fmt.Errorf("open job %s: %w", id, err)
	}
	log.Debug("Описание вакансии", zap.String("preview", a.clean.Preview(posting.Description, 50)))

	if !posting.HasApplyAction {
		log.Info("Отклик недоступен, пропускаем")
		outcome.Status = StatusNoApply
		return outcome, nil
	}

	if err := a.board.OpenApplyForm(ctx); err != nil {
		return outcome, fmt.Errorf("open apply form: %w", err)
	}

	visible, err := a.board.MotivationVisible(ctx)
	if err != nil {
		return outcome, fmt.Errorf("check motivation field: %w", err)
	}
	if visible {
		text, err := a.drafter.Draft(ctx, posting.Description)
		if err != nil {
			return outcome, fmt.Errorf("draft motivation: %w", err)
		}
		if err := a.board.FillMotivation(ctx, text); err != nil {
			return outcome, fmt.Errorf("fill motivation: %w", err)
		}
		outcome.Motivation = text
	} else {
		log.Info("Поле мотивационного письма не найдено")
	}

	canSubmit, err := a.board.SubmitVisible(ctx)
	if err != nil {
		return outcome, fmt.Errorf("check submit button: %w", err)
	}
	switch {
	case !canSubmit:
		log.Info("Кнопка отправки не найдена")
		outcome.Status = StatusNoSubmit
	case a.dryRun:
		log.Info("Пробный запуск, отклик не отправляется")
		outcome.Status = StatusDryRun
	default:
		if err := a.board.Submit(ctx); err != nil {
			return outcome, fmt.Errorf("submit: %w", err)
		}
		log.Info("Отклик отправлен")
		outcome.Status = StatusSubmitted
	}

	return outcome, nil
}
