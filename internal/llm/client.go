package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"jobAgent/internal/sanitizer"
)

var ErrEmptyResponse = errors.New("empty response from llm")

type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	RequestsPerMinute int
	TokensPerHour     int
	// Secrets маскируются в журнале запросов дословно
	Secrets []string
}

type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	log         *zap.Logger
	journal     RequestLogger
	sanitizer   *sanitizer.DataSanitizer
	rateLimiter *RateLimiter
}

var _ ChatModel = (*Client)(nil)

// NewClient создает клиента. journal может быть nil, тогда запросы не сохраняются.
func NewClient(cfg Config, log *zap.Logger, journal RequestLogger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		log:         log,
		journal:     journal,
		sanitizer:   sanitizer.New(cfg.Secrets...),
		rateLimiter: NewRateLimiter(cfg.RequestsPerMinute, cfg.TokensPerHour),
	}
}

func (c *Client) Model() string {
	return c.model
}

// Chat отправляет историю и схемы инструментов и возвращает сообщение ассистента.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error) {
	omsgs, err := toOpenAIMessages(messages)
	if err != nil {
		return Message{}, err
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: omsgs,
		Tools:    toOpenAITools(tools),
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.createChatCompletionWithRateLimit(ctx, req)
	if err != nil {
		c.logRequest(ctx, "chat_error", messages, err.Error(), 0)
		return Message{}, fmt.Errorf("ошибка запроса к LLM: %w", err)
	}

	if len(resp.Choices) == 0 {
		c.logRequest(ctx, "chat_error", messages, ErrEmptyResponse.Error(), resp.Usage.TotalTokens)
		return Message{}, ErrEmptyResponse
	}

	msg, err := fromOpenAIMessage(resp.Choices[0].Message)
	if err != nil {
		c.logRequest(ctx, "chat_parse_error", messages, resp.Choices[0].Message.Content, resp.Usage.TotalTokens)
		return Message{}, err
	}

	c.logRequest(ctx, "chat", messages, renderPrompt([]Message{msg}), resp.Usage.TotalTokens)
	c.log.Debug("Ответ LLM",
		zap.Int("tool_calls", len(msg.ToolCalls)),
		zap.Int("tokens", resp.Usage.TotalTokens))

	return msg, nil
}

// createChatCompletionWithRateLimit выполняет запрос с проверкой rate limit
func (c *Client) createChatCompletionWithRateLimit(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := c.rateLimiter.AllowRequest(ctx); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	// Грубая оценка: ~4 символа на токен
	estimatedTokens := 0
	for _, msg := range req.Messages {
		estimatedTokens += len(msg.Content) / 4
	}
	estimatedTokens += req.MaxTokens

	if err := c.rateLimiter.AllowTokens(ctx, estimatedTokens); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, err
	}

	// Корректируем использованные токены (теперь знаем точное значение)
	if resp.Usage.TotalTokens > estimatedTokens {
		c.rateLimiter.ConsumeTokens(resp.Usage.TotalTokens - estimatedTokens)
	}

	return resp, nil
}

func (c *Client) logRequest(ctx context.Context, role string, messages []Message, response string, tokens int) {
	if c.journal == nil {
		return
	}

	entry := RequestLog{
		Role:       role,
		Prompt:     c.sanitizer.Sanitize(renderPrompt(messages)),
		Response:   c.sanitizer.Sanitize(response),
		Model:      c.model,
		TokensUsed: tokens,
	}
	if err := c.journal.LogLLMRequest(ctx, entry); err != nil {
		c.log.Warn("Не удалось сохранить запрос к LLM", zap.Error(err))
	}
}
