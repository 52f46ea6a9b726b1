package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobAgent/internal/llm"
	"jobAgent/internal/search"
	"jobAgent/internal/tools"
)

// scriptedModel отдает заранее заданные ответы и запоминает, что получил.
type scriptedModel struct {
	replies []llm.Message
	err     error
	calls   [][]llm.Message
	defs    [][]llm.ToolDefinition
}

func (m *scriptedModel) Chat(_ context.Context, messages []llm.Message, defs []llm.ToolDefinition) (llm.Message, error) {
	m.calls = append(m.calls, append([]llm.Message(nil), messages...))
	m.defs = append(m.defs, defs)
	if m.err != nil {
		return llm.Message{}, m.err
	}
	if len(m.calls) > len(m.replies) {
		return llm.Message{}, errors.New("unexpected call")
	}
	return m.replies[len(m.calls)-1], nil
}

func searchCall(id, query string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: tools.WebSearchName, Arguments: map[string]any{"query": query}}
}

type stubSearcher struct {
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) (search.Results, error) {
	s.queries = append(s.queries, query)
	return search.Results{{Title: "R", URL: "https://r.example", Content: "about " + query}}, nil
}

func newRegistry(t *testing.T, s tools.WebSearcher) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry(nil)
	tool, err := tools.WebSearch(s)
	require.NoError(t, err)
	require.NoError(t, reg.Register(tool))
	return reg
}

func TestRespondWithoutToolCalls(t *testing.T) {
	model := &scriptedModel{replies: []llm.Message{{Role: llm.RoleAssistant, Content: "Hello!"}}}
	loop := New(model, newRegistry(t, &stubSearcher{}), nil, Config{MaxTurns: 10})

	answer, err := loop.Respond(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", answer)

	require.Len(t, model.calls, 1)
	assert.Equal(t, []llm.Message{llm.UserMessage("hi")}, model.calls[0])
	require.Len(t, model.defs[0], 1)
	assert.Equal(t, tools.WebSearchName, model.defs[0][0].Name)
}

func TestRunSingleToolDispatch(t *testing.T) {
	call := searchCall("call_1", "golang")
	model := &scriptedModel{replies: []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{call}},
		{Role: llm.RoleAssistant, Content: "Here is what I found."},
	}}
	searcher := &stubSearcher{}
	loop := New(model, newRegistry(t, searcher), nil, Config{})

	conversation, err := loop.Run(context.Background(), "find golang")
	require.NoError(t, err)

	require.Len(t, conversation, 4)
	assert.Equal(t, llm.UserMessage("find golang"), conversation[0])
	assert.Equal(t, llm.RoleAssistant, conversation[1].Role)
	assert.Equal(t, []llm.ToolCall{call}, conversation[1].ToolCalls)
	assert.Equal(t, llm.RoleTool, conversation[2].Role)
	assert.Equal(t, tools.WebSearchName, conversation[2].ToolName)
	assert.Equal(t, "call_1", conversation[2].ToolCallID)
	assert.Equal(t, "1. R\nhttps://r.example\nabout golang", conversation[2].Content)
	assert.Equal(t, "Here is what I found.", conversation[3].Content)

	assert.Equal(t, []string{"golang"}, searcher.queries)
	require.Len(t, model.calls, 2)
	assert.Equal(t, conversation[:3], model.calls[1])
}

func TestRunExecutesCallsInOrder(t *testing.T) {
	model := &scriptedModel{replies: []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{searchCall("1", "first"), searchCall("2", "second")}},
		{Role: llm.RoleAssistant, Content: "done"},
	}}
	searcher := &stubSearcher{}
	loop := New(model, newRegistry(t, searcher), nil, Config{})

	conversation, err := loop.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, searcher.queries)
	require.Len(t, conversation, 5)
	assert.Equal(t, "1", conversation[2].ToolCallID)
	assert.Equal(t, "2", conversation[3].ToolCallID)
}

func TestRespondUnknownTool(t *testing.T) {
	model := &scriptedModel{replies: []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "x", Name: "launch_rockets"}}},
	}}
	loop := New(model, newRegistry(t, &stubSearcher{}), nil, Config{})

	_, err := loop.Respond(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrUnknownTool)
	assert.Len(t, model.calls, 1)
}

func TestRespondToolFailure(t *testing.T) {
	boom := errors.New("search down")
	reg := tools.NewRegistry(nil)
	require.NoError(t, reg.Register(tools.Tool{
		Name:    "web_search",
		Handler: func(context.Context, map[string]any) (any, error) { return nil, boom },
	}))
	model := &scriptedModel{replies: []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{searchCall("1", "q")}},
	}}

	_, err := New(model, reg, nil, Config{}).Respond(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
	assert.True(t, tools.IsFailure(err))
}

func TestRespondTurnLimit(t *testing.T) {
	looping := llm.Message{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{searchCall("1", "again")}}
	model := &scriptedModel{replies: []llm.Message{looping, looping, looping}}
	searcher := &stubSearcher{}

	_, err := New(model, newRegistry(t, searcher), nil, Config{MaxTurns: 2}).Respond(context.Background(), "q")
	assert.ErrorIs(t, err, ErrTurnLimit)
	assert.Len(t, model.calls, 2)
	assert.Len(t, searcher.queries, 1)
}

func TestReplyHidesErrors(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}
	loop := New(model, nil, nil, Config{})

	assert.Equal(t, GenericErrorReply, loop.Reply(context.Background(), "hi"))
}

func TestReplyReturnsAnswer(t *testing.T) {
	model := &scriptedModel{replies: []llm.Message{{Content: "ok"}}}
	assert.Equal(t, "ok", New(model, nil, nil, Config{}).Reply(context.Background(), "hi"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "text", stringify("text"))
	assert.Equal(t, "no results", stringify(search.Results{}))
	assert.Equal(t, "boom", stringify(errors.New("boom")))
	assert.Equal(t, `{"a":1}`, stringify(map[string]int{"a": 1}))
	assert.Equal(t, "42", stringify(42))
}
