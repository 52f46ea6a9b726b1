package ui

import (
	"fmt"
	"io"
)

// FormatStatus возвращает иконку, цвет и текст для статуса запуска или отклика
func FormatStatus(status string) (icon, color, text string) {
	switch status {
	case "finished":
		return IconCheckmark, ColorGreen, "завершен"
	case "failed":
		return IconCross, ColorRed, "ошибка"
	case "running":
		return IconPlay, ColorCyan, "выполняется"
	case "submitted":
		return IconCheckmark, ColorGreen, "отклик отправлен"
	case "dry_run":
		return IconDocument, ColorYellow, "пробный запуск"
	case "no_apply":
		return IconClock, ColorGray, "отклик недоступен"
	case "no_submit":
		return IconClock, ColorYellow, "нет кнопки отправки"
	default:
		return IconClock, ColorYellow, status
	}
}

// ClearScreen очищает терминал
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}
