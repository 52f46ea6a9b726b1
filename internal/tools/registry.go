// Package tools хранит инструменты, которые агент может вызывать по имени.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"jobAgent/internal/llm"
)

// Handler выполняет инструмент. Результат передается модели в строковом виде.
type Handler func(ctx context.Context, args map[string]any) (any, error)

type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Definition
	Handler     Handler
}

type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
	log   *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		tools: make(map[string]Tool),
		log:   log,
	}
}

func (r *Registry) Register(t Tool) error {
	if t.Name == "" || t.Handler == nil {
		return fmt.Errorf("tool %q: name and handler are required", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Definitions возвращает схемы в порядке регистрации.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return defs
}

func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		r.log.Warn("Модель запросила неизвестный инструмент", zap.String("tool", name))
		return nil, &Error{Kind: KindUnknownTool, Tool: name, Err: ErrUnknownTool}
	}

	r.log.Info("Вызов инструмента", zap.String("tool", name), zap.Any("args", args))

	result, err := t.Handler(ctx, args)
	if err != nil {
		r.log.Error("Ошибка инструмента", zap.String("tool", name), zap.Error(err))
		return nil, &Error{Kind: KindFailure, Tool: name, Err: err}
	}
	return result, nil
}

// decodeArgs раскладывает аргументы модели в типизированную структуру.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
