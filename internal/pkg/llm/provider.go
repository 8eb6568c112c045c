package llm

import (
	"fmt"

	"github.com/Junheng-Zheng/Junbot/config"
)

// New 根据配置创建推理服务
// 凭据缺失时返回 ErrMissingAPIKey，由调用方决定如何上报
func New(cfg *config.Config) (ChatModel, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return NewEinoModel(cfg)
	case config.ProviderAnthropic, "":
		client := NewClient(cfg)
		if client.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
