package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Junheng-Zheng/Junbot/config"
	"k8s.io/klog/v2"
)

const anthropicVersion = "2023-06-01"

// Client Anthropic Messages API 客户端
type Client struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
}

// NewClient 创建新的 LLM 客户端
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.LLM.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		BaseURL:   strings.TrimRight(cfg.LLM.APIURL, "/"),
		APIKey:    strings.TrimSpace(cfg.LLM.APIKey),
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// messagesRequest /v1/messages 请求体
type messagesRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []Message       `json:"messages"`
	Tools     []anthropicTool `json:"tools,omitempty"`
}

type anthropicTool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema inputSchema `json:"input_schema"`
}

type inputSchema struct {
	Type       string              `json:"type"` // 固定为 "object"
	Properties map[string]property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type contentBlock struct {
	Type  string          `json:"type"` // text, tool_use
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// messagesResponse /v1/messages 响应体
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// toAnthropicTools 将通用工具声明转换为 input_schema 形式
func toAnthropicTools(specs []ToolSpec) []anthropicTool {
	tools := make([]anthropicTool, 0, len(specs))
	for _, spec := range specs {
		props := make(map[string]property, len(spec.Params))
		for _, p := range spec.Params {
			props[p.Name] = property{Type: p.Type, Description: p.Description}
		}
		tools = append(tools, anthropicTool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: inputSchema{
				Type:       "object",
				Properties: props,
				Required:   spec.RequiredNames(),
			},
		})
	}
	return tools
}

// Complete 发送带 Tools 的对话请求，不执行工具，只返回模型的原始输出
func (c *Client) Complete(ctx context.Context, req *Request) (*Response, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	klog.V(6).Infof("Complete 请求: model=%s, messages=%d, tools=%d", c.Model, len(req.Messages), len(req.Tools))

	resp, err := c.sendRequest(ctx, messagesRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		System:    req.System,
		Messages:  req.Messages,
		Tools:     toAnthropicTools(req.Tools),
	})
	if err != nil {
		return nil, err
	}

	out := &Response{StopReason: resp.StopReason}
	out.Usage.InputTokens = resp.Usage.InputTokens
	out.Usage.OutputTokens = resp.Usage.OutputTokens

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if len(block.Input) == 0 {
				continue
			}
			out.ToolUses = append(out.ToolUses, ToolUse{ID: block.ID, Name: block.Name, Input: block.Input})
		}
	}
	out.Text = strings.TrimSpace(text.String())

	klog.V(6).Infof("Complete 完成: stop_reason=%s, textLength=%d, toolUses=%d", out.StopReason, len(out.Text), len(out.ToolUses))
	return out, nil
}

// sendRequest 发送 HTTP 请求到 LLM API
func (c *Client) sendRequest(ctx context.Context, reqBody messagesRequest) (*messagesResponse, error) {
	url := c.BaseURL + "/v1/messages"
	klog.V(6).Infof("发送 LLM 请求: url=%s, model=%s", url, reqBody.Model)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	var msgResp messagesResponse
	decodeErr := json.Unmarshal(body, &msgResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil && msgResp.Error != nil {
			apiErr.Type = msgResp.Error.Type
			apiErr.Message = msgResp.Error.Message
		}
		klog.Warningf("LLM 请求失败: status=%d, type=%s, message=%s", apiErr.StatusCode, apiErr.Type, apiErr.Message)
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("failed to unmarshal response: %v", decodeErr)}
	}
	if msgResp.Error != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Type: msgResp.Error.Type, Message: msgResp.Error.Message}
	}

	return &msgResp, nil
}
