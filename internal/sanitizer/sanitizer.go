// Package sanitizer вычищает учетные данные и персональные данные из текста
// перед тем, как он попадет в журнал запросов к LLM или в логи.
package sanitizer

import (
	"sort"
	"strings"
)

type DataSanitizer struct {
	rules   []Rule
	secrets *strings.Replacer
}

// New создает санитайзер с правилами по умолчанию. secrets - точные значения
// (пароль, ключи API), которые заменяются независимо от окружающего текста.
// Пустые и слишком короткие значения пропускаются.
func New(secrets ...string) *DataSanitizer {
	return NewWithRules(DefaultRules, secrets...)
}

func NewWithRules(rules []Rule, secrets ...string) *DataSanitizer {
	s := &DataSanitizer{rules: rules}

	var known []string
	for _, secret := range secrets {
		secret = strings.TrimSpace(secret)
		if len(secret) >= 4 {
			known = append(known, secret)
		}
	}
	if len(known) > 0 {
		// длинные значения первыми, чтобы префикс не съел секрет частично
		sort.Slice(known, func(i, j int) bool { return len(known[i]) > len(known[j]) })
		pairs := make([]string, 0, len(known)*2)
		for _, secret := range known {
			pairs = append(pairs, secret, filtered)
		}
		s.secrets = strings.NewReplacer(pairs...)
	}

	return s
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	if s.secrets != nil {
		text = s.secrets.Replace(text)
	}
	for _, r := range s.rules {
		text = r.Apply(text)
	}

	return text
}

// Preview обрезает текст до limit рун после очистки. Используется для логов.
func (s *DataSanitizer) Preview(text string, limit int) string {
	text = strings.Join(strings.Fields(s.Sanitize(text)), " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
