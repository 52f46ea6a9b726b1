package sanitizer

import "regexp"

const filtered = "[FILTERED]"

// Rule заменяет все совпадения Pattern на Replace.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

func (r Rule) Apply(text string) string {
	return r.Pattern.ReplaceAllString(text, r.Replace)
}

func rule(name, expr, replace string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(expr), Replace: replace}
}

// DefaultRules - правила, которые применяются к каждому тексту перед записью в журнал.
var DefaultRules = []Rule{
	// пароли в виде "password: ..." и в html-полях
	rule("password", `(?i)(password|passwd|pwd|пароль)\s*[:=]\s*["']?[^"'\s]{3,}["']?`, `${1}: `+filtered),
	rule("password_input", `(?i)(<input[^>]*type=["']password["'][^>]*value=["'])[^"']+`, `${1}`+filtered),

	rule("bearer", `(?i)\b(bearer\s+)[a-zA-Z0-9._~+/-]{20,}=*`, `${1}`+filtered),
	rule("token", `(?i)\b((?:access[_-]?|refresh[_-]?|secret[_-]?)?token|токен)\s*[:=]\s*["']?[a-zA-Z0-9._-]{20,}["']?`, `${1}: `+filtered),
	rule("api_key", `(?i)\b(api[_-]?key|api[_-]?secret|secret[_-]?key|access[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9_-]{16,}["']?`, `${1}: `+filtered),
	rule("openai_key", `\b(?:sk|pk)[-_][a-zA-Z0-9_-]{24,}`, filtered),

	rule("cookie", `(?i)\b(set-cookie|cookie|sessionid|session[_-]?token)\s*[:=]\s*["']?[^"'\n]{10,}["']?`, `${1}: `+filtered),
	rule("card", `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, filtered),

	rule("email", `\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`, "[FILTERED_EMAIL]"),
}
