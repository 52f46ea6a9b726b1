package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSecret возвращается, когда обязательный секрет не задан.
var ErrMissingSecret = errors.New("missing required secret")

type Cfg struct {
	Database   Database
	Redis      Redis
	Logger     Logger
	LLM        LLM
	Search     Search
	Agent      Agent
	Site       Site
	Browser    Browser
	Crawler    Crawler
	Server     Server
	Migrations Migrations
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Enabled сообщает, настроен ли журнал в PostgreSQL.
func (d Database) Enabled() bool {
	return d.Host != ""
}

func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

func (d Database) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type LLM struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	RequestsPerMinute int
	TokensPerHour     int
}

type Search struct {
	APIKey       string
	URL          string
	MaxResults   int
	Timeout      time.Duration
	Retries      int
	RetryDelay   time.Duration
	MaxFailures  int
	ResetTimeout time.Duration
}

type Agent struct {
	MaxTurns int
}

// Credentials хранит логин на сайте вакансий. Пароль никогда не выводится.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) String() string {
	return fmt.Sprintf("{Email:%s Password:[FILTERED]}", c.Email)
}

func (c Credentials) GoString() string {
	return c.String()
}

type Site struct {
	BaseURL     string
	Credentials Credentials
}

type Browser struct {
	Display         string
	Headless        bool
	BrowsersPath    string
	Locale          string
	Timeout         time.Duration
	NavigateTimeout time.Duration
	LoginTimeout    time.Duration
}

type Crawler struct {
	ProcessedFile string
	DedupBackend  string
	MaxPages      int
	DetailTimeout time.Duration
	SettleDelay   time.Duration
	SubmitDelay   time.Duration
	DryRun        bool
}

type Server struct {
	Host string
	Port string
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Redis: Redis{
			Addr:     env("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
			Key:      env("REDIS_PROCESSED_KEY", "jobagent:processed"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		LLM: LLM{
			APIKey:            os.Getenv("LLM_API_KEY"),
			BaseURL:           env("LLM_BASE_URL", "http://localhost:11434/v1"),
			Model:             os.Getenv("LLM_MODEL"),
			MaxTokens:         envInt("LLM_MAX_TOKENS", 0),
			RequestsPerMinute: envInt("LLM_REQUESTS_PER_MINUTE", 60),
			TokensPerHour:     envInt("LLM_TOKENS_PER_HOUR", 90000),
		},
		Search: Search{
			APIKey:       os.Getenv("OLLAMA_WEBSEARCH_API_KEY"),
			URL:          env("SEARCH_URL", "https://ollama.com/api/web_search"),
			MaxResults:   envInt("SEARCH_MAX_RESULTS", 3),
			Timeout:      envDuration("SEARCH_TIMEOUT", 20*time.Second),
			Retries:      envInt("SEARCH_RETRIES", 2),
			RetryDelay:   envDuration("SEARCH_RETRY_DELAY", 500*time.Millisecond),
			MaxFailures:  envInt("SEARCH_MAX_FAILURES", 5),
			ResetTimeout: envDuration("SEARCH_RESET_TIMEOUT", 30*time.Second),
		},
		Agent: Agent{
			MaxTurns: envInt("AGENT_MAX_TURNS", 10),
		},
		Site: Site{
			BaseURL: env("DJINNI_BASE_URL", "https://djinni.co"),
			Credentials: Credentials{
				Email:    os.Getenv("DJINNI_EMAIL"),
				Password: os.Getenv("DJINNI_PASSWORD"),
			},
		},
		Browser: Browser{
			Display:         os.Getenv("DISPLAY"),
			Headless:        envBool("PW_HEADLESS"),
			BrowsersPath:    env("PLAYWRIGHT_BROWSERS_PATH", ""),
			Locale:          env("PW_LOCALE", "en-US"),
			Timeout:         envDuration("PW_TIMEOUT", 30*time.Second),
			NavigateTimeout: envDuration("PW_NAVIGATE_TIMEOUT", 60*time.Second),
			LoginTimeout:    envDuration("PW_LOGIN_TIMEOUT", 60*time.Second),
		},
		Crawler: Crawler{
			ProcessedFile: env("CRAWLER_PROCESSED_FILE", "processed_jobs.json"),
			DedupBackend:  env("DEDUP_BACKEND", "file"),
			MaxPages:      envInt("CRAWLER_MAX_PAGES", 1),
			DetailTimeout: envDuration("CRAWLER_DETAIL_TIMEOUT", 60*time.Second),
			SettleDelay:   envDuration("CRAWLER_SETTLE_DELAY", 5*time.Second),
			SubmitDelay:   envDuration("CRAWLER_SUBMIT_DELAY", 5*time.Second),
			DryRun:        envBool("CRAWLER_DRY_RUN"),
		},
		Server: Server{
			Host: env("APP_HOST", "0.0.0.0"),
			Port: env("APP_PORT", "8080"),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	return cfg, nil
}

// RequireAgent проверяет секреты, без которых нельзя отвечать на сообщения.
func (c *Cfg) RequireAgent() error {
	return requireAll(map[string]string{
		"LLM_MODEL":                c.LLM.Model,
		"OLLAMA_WEBSEARCH_API_KEY": c.Search.APIKey,
	})
}

// RequireCrawler проверяет секреты краулера. Краулер пишет мотивационные
// письма через агента, поэтому его секреты тоже обязательны.
func (c *Cfg) RequireCrawler() error {
	if err := c.RequireAgent(); err != nil {
		return err
	}
	return requireAll(map[string]string{
		"DJINNI_EMAIL":    c.Site.Credentials.Email,
		"DJINNI_PASSWORD": c.Site.Credentials.Password,
	})
}

func requireAll(values map[string]string) error {
	var missing []string
	for key, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
