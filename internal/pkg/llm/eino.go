package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/Junheng-Zheng/Junbot/config"
	"github.com/Junheng-Zheng/Junbot/internal/utils"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

// go-openai 的错误文本形如 "error, status code: 429, status: ..."
var statusCodePattern = regexp.MustCompile(`status code: (\d{3})`)

// EinoModel 通过 Eino 的 OpenAI ChatModel 访问 OpenAI 兼容服务
type EinoModel struct {
	chatModel model.ToolCallingChatModel
}

// NewEinoModel 创建 OpenAI 兼容的 ChatModel
func NewEinoModel(cfg *config.Config) (*EinoModel, error) {
	apiKey := strings.TrimSpace(cfg.LLM.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	klog.V(6).Infof("[EinoModel] 创建 OpenAI ChatModel: model=%s, baseURL=%s", cfg.LLM.Model, cfg.LLM.APIURL)

	modelConfig := &openai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}
	if cfg.LLM.APIURL != "" {
		modelConfig.BaseURL = cfg.LLM.APIURL
	}
	if cfg.LLM.MaxTokens > 0 {
		maxTokens := cfg.LLM.MaxTokens
		modelConfig.MaxTokens = &maxTokens
	}

	chatModel, err := openai.NewChatModel(context.Background(), modelConfig)
	if err != nil {
		klog.Errorf("[EinoModel] 创建 ChatModel 失败: %v", err)
		return nil, err
	}
	return &EinoModel{chatModel: chatModel}, nil
}

// NewEinoModelWith 使用已有的 ToolCallingChatModel，主要用于测试
func NewEinoModelWith(chatModel model.ToolCallingChatModel) *EinoModel {
	return &EinoModel{chatModel: chatModel}
}

// Complete 实现 ChatModel 接口
func (m *EinoModel) Complete(ctx context.Context, req *Request) (*Response, error) {
	klog.V(6).Infof("[EinoModel] Complete 开始: messageCount=%d, tools=%d", len(req.Messages), len(req.Tools))

	input := make([]*schema.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		input = append(input, schema.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		if msg.Role == "assistant" {
			input = append(input, schema.AssistantMessage(msg.Content, nil))
		} else {
			input = append(input, schema.UserMessage(msg.Content))
		}
	}

	chatModel := m.chatModel
	if len(req.Tools) > 0 {
		withTools, err := m.chatModel.WithTools(ToToolInfos(req.Tools))
		if err != nil {
			klog.Errorf("[EinoModel] 设置工具失败: %v", err)
			return nil, err
		}
		chatModel = withTools
	}

	resp, err := chatModel.Generate(ctx, input)
	if err != nil {
		klog.Errorf("[EinoModel] Generate 失败: %v", err)
		return nil, &APIError{StatusCode: statusFromError(err), Message: err.Error()}
	}

	out := &Response{Text: strings.TrimSpace(resp.Content)}
	if resp.ResponseMeta != nil {
		out.StopReason = resp.ResponseMeta.FinishReason
		if resp.ResponseMeta.Usage != nil {
			out.Usage.InputTokens = resp.ResponseMeta.Usage.PromptTokens
			out.Usage.OutputTokens = resp.ResponseMeta.Usage.CompletionTokens
		}
	}
	for _, call := range resp.ToolCalls {
		var input json.RawMessage
		if args := strings.TrimSpace(call.Function.Arguments); args != "" {
			// 部分兼容服务会在参数外包一层说明文字或代码块
			if !json.Valid([]byte(args)) {
				args = utils.ExtractJSON(args)
			}
			input = json.RawMessage(args)
		}
		out.ToolUses = append(out.ToolUses, ToolUse{ID: call.ID, Name: call.Function.Name, Input: input})
	}

	klog.V(6).Infof("[EinoModel] Complete 完成: textLength=%d, toolUses=%d", len(out.Text), len(out.ToolUses))
	return out, nil
}

// ToToolInfos 将通用工具声明转换为 Eino 的 ToolInfo
func ToToolInfos(specs []ToolSpec) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(specs))
	for _, spec := range specs {
		params := make(map[string]*schema.ParameterInfo, len(spec.Params))
		for _, p := range spec.Params {
			params[p.Name] = &schema.ParameterInfo{
				Type:     schema.DataType(p.Type),
				Desc:     p.Description,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func statusFromError(err error) int {
	m := statusCodePattern.FindStringSubmatch(err.Error())
	if len(m) != 2 {
		return 0
	}
	code, _ := strconv.Atoi(m[1])
	return code
}
