package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToolCallingModel struct {
	tools    []*schema.ToolInfo
	input    []*schema.Message
	response *schema.Message
	err      error
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	f.tools = tools
	return f, nil
}

func TestEinoModelComplete(t *testing.T) {
	fake := &fakeToolCallingModel{
		response: &schema.Message{
			Role:    schema.Assistant,
			Content: " On it. ",
			ToolCalls: []schema.ToolCall{
				{ID: "call_1", Function: schema.FunctionCall{Name: "complete_task", Arguments: `{"taskId": 3}`}},
				{ID: "call_2", Function: schema.FunctionCall{Name: "add_task", Arguments: ""}},
			},
		},
	}
	m := NewEinoModelWith(fake)

	resp, err := m.Complete(context.Background(), &Request{
		System: "sys",
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "done with 3"},
		},
		Tools: []ToolSpec{{Name: "complete_task", Params: []Param{{Name: "taskId", Type: "number", Required: true}}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "On it.", resp.Text)
	require.Len(t, resp.ToolUses, 2)
	assert.Equal(t, "complete_task", resp.ToolUses[0].Name)
	assert.JSONEq(t, `{"taskId": 3}`, string(resp.ToolUses[0].Input))
	assert.Nil(t, resp.ToolUses[1].Input)

	require.Len(t, fake.input, 4)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, schema.Assistant, fake.input[2].Role)
	require.Len(t, fake.tools, 1)
	assert.Equal(t, "complete_task", fake.tools[0].Name)
}

func TestEinoModelCompleteError(t *testing.T) {
	fake := &fakeToolCallingModel{err: errors.New("error, status code: 429, status: 429 Too Many Requests, message: slow")}
	m := NewEinoModelWith(fake)

	_, err := m.Complete(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "hi"}}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.StatusCode)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, 0, statusFromError(errors.New("connection refused")))
	assert.Equal(t, 401, statusFromError(errors.New("error, status code: 401, message: bad key")))
}

func TestEinoModelCompleteWrappedArguments(t *testing.T) {
	fake := &fakeToolCallingModel{
		response: &schema.Message{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{ID: "call_1", Function: schema.FunctionCall{Name: "add_task", Arguments: "```json\n{\"title\":\"Gym\",\"dueLabel\":\"DUE TODAY\"}\n```"}},
			},
		},
	}
	m := NewEinoModelWith(fake)

	resp, err := m.Complete(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "gym today"}}})
	require.NoError(t, err)
	require.Len(t, resp.ToolUses, 1)
	assert.JSONEq(t, `{"title":"Gym","dueLabel":"DUE TODAY"}`, string(resp.ToolUses[0].Input))
}
