package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Junheng-Zheng/Junbot/config"
	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/pkg/llm"
	"k8s.io/klog/v2"
)

// Reply 一次推理的原始结果
type Reply struct {
	Text        string
	Invocations []domain.ToolInvocation
	Snapshot    Snapshot
}

// Gateway 负责与推理服务的一次请求/响应
type Gateway struct {
	model     llm.ChatModel
	configErr string
	persona   string
	now       func() time.Time
	tools     []llm.ToolSpec
}

type Option func(*Gateway)

// WithClock 替换时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithPersona 设置静态人设提示词
func WithPersona(persona string) Option {
	return func(g *Gateway) {
		g.persona = strings.TrimSpace(persona)
	}
}

// NewGateway 创建网关，model 为 nil 时每次调用都返回 ConfigurationError
func NewGateway(model llm.ChatModel, opts ...Option) *Gateway {
	g := &Gateway{
		model:     model,
		configErr: "assistant model is not configured",
		now:       time.Now,
		tools:     TaskTools(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGatewayFromConfig 根据配置创建网关
// 凭据缺失不阻止启动，而是在请求时作为配置错误返回
func NewGatewayFromConfig(cfg *config.Config) *Gateway {
	model, err := llm.New(cfg)
	g := NewGateway(model, WithPersona(LoadPersona(cfg.Prompt.SystemFile)))
	if err != nil {
		g.model = nil
		g.configErr = describeConfigError(cfg, err)
		klog.Warningf("[Gateway] 推理服务不可用: %s", g.configErr)
	}
	return g
}

// LoadPersona 读取人设提示词文件，读取失败时返回空串
func LoadPersona(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		klog.V(6).Infof("[Gateway] 未加载人设提示词: path=%s, error=%v", path, err)
		return ""
	}
	return strings.TrimSpace(string(data))
}

func describeConfigError(cfg *config.Config, err error) string {
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		return err.Error()
	}
	if cfg.LLM.Provider == config.ProviderOpenAI {
		return "OPENAI_API_KEY is not set in .env.local (project root)"
	}
	return "ANTHROPIC_API_KEY is not set in .env.local (project root)"
}

// Converse 发送对话记录与任务上下文，返回模型的文本和工具调用
func (g *Gateway) Converse(ctx context.Context, transcript []domain.Message, tasks []domain.Task) (*Reply, error) {
	if g.model == nil {
		return nil, &domain.ConfigurationError{Message: g.configErr}
	}
	if len(transcript) == 0 {
		return nil, &domain.ValidationError{Message: "Messages array is required"}
	}

	snapshot := NewSnapshot(tasks, g.now())
	req := &llm.Request{
		System:   g.systemPrompt(snapshot),
		Messages: buildMessages(transcript, snapshot),
		Tools:    g.tools,
	}

	klog.V(6).Infof("[Gateway] Converse 开始: messages=%d, tasks=%d, snapshotVersion=%d", len(req.Messages), len(tasks), snapshot.Version)
	resp, err := g.model.Complete(ctx, req)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	reply := &Reply{Text: resp.Text, Snapshot: snapshot}
	for _, use := range resp.ToolUses {
		reply.Invocations = append(reply.Invocations, domain.ToolInvocation{ID: use.ID, Name: use.Name, Input: use.Input})
	}
	klog.V(6).Infof("[Gateway] Converse 完成: textLength=%d, invocations=%d", len(reply.Text), len(reply.Invocations))
	return reply, nil
}

func (g *Gateway) systemPrompt(snapshot Snapshot) string {
	if g.persona == "" {
		return snapshot.SystemBlock()
	}
	return g.persona + "\n\n" + snapshot.SystemBlock()
}

// buildMessages 映射角色，并在最新一条用户消息前再次注入任务列表
func buildMessages(transcript []domain.Message, snapshot Snapshot) []llm.Message {
	messages := make([]llm.Message, 0, len(transcript))
	for _, m := range transcript {
		messages = append(messages, llm.Message{Role: domain.NormalizeRole(m.Role), Content: m.Text})
	}
	last := len(messages) - 1
	if last >= 0 && messages[last].Role == domain.RoleUser {
		messages[last].Content = fmt.Sprintf("%s\n\nUser: %s", snapshot.TurnPrefix(), messages[last].Content)
	}
	return messages
}

func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return &domain.ConfigurationError{Message: err.Error()}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.UpstreamError{StatusCode: http.StatusGatewayTimeout, Message: "assistant request timed out"}
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsAuthError() {
			klog.Errorf("[Gateway] 凭据被拒绝: %v", apiErr)
			return &domain.ConfigurationError{Message: apiErr.Message}
		}
		klog.Errorf("[Gateway] 上游错误: %v", apiErr)
		return &domain.UpstreamError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}

	klog.Errorf("[Gateway] 请求失败: %v", err)
	return &domain.UpstreamError{Message: err.Error()}
}
