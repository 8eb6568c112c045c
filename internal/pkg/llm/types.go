package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingAPIKey 未配置 API Key
var ErrMissingAPIKey = errors.New("llm api key is not set")

// ChatModel 推理服务抽象：一次请求，一次同步响应
type ChatModel interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// ToolSpec 与具体服务商无关的工具声明
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// Param 工具参数，Type 取 JSON Schema 基本类型
type Param struct {
	Name        string
	Type        string // string, number, integer, boolean
	Description string
	Required    bool
}

// RequiredNames 返回必填参数名
func (t ToolSpec) RequiredNames() []string {
	var names []string
	for _, p := range t.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Message 发送给模型的消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 一次推理请求
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// ToolUse 模型返回的工具调用
type ToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Response 一次推理响应
type Response struct {
	Text       string
	ToolUses   []ToolUse
	StopReason string
	Usage      Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// APIError 上游返回的错误，StatusCode 为 0 表示未拿到 HTTP 响应
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API error: %s", e.Message)
	}
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsAuthError 凭据被上游拒绝
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403 || e.Type == "authentication_error" || e.Type == "permission_error"
}
