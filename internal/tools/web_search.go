package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"jobAgent/internal/search"
)

const WebSearchName = "web_search"

type WebSearcher interface {
	Search(ctx context.Context, query string) (search.Results, error)
}

type WebSearchArgs struct {
	Query string `json:"query" jsonschema_description:"Search query text"`
}

// WebSearch создает инструмент web_search поверх клиента поиска.
func WebSearch(searcher WebSearcher) (Tool, error) {
	schema, err := jsonschema.GenerateSchemaForType(WebSearchArgs{})
	if err != nil {
		return Tool{}, fmt.Errorf("web_search schema: %w", err)
	}

	return Tool{
		Name:        WebSearchName,
		Description: "Search the web and return the top results with title, url and a content snippet.",
		Parameters:  schema,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			var in WebSearchArgs
			if err := decodeArgs(args, &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			if strings.TrimSpace(in.Query) == "" {
				return nil, errors.New("query is required")
			}
			return searcher.Search(ctx, in.Query)
		},
	}, nil
}
