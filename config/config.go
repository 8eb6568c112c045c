package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

const (
	defaultAnthropicURL   = "https://api.anthropic.com"
	defaultAnthropicModel = "claude-haiku-4-5"
	defaultOpenAIModel    = "gpt-4o-mini"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Prompt   PromptConfig   `yaml:"prompt"`
	Data     DataConfig     `yaml:"data"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider"` // anthropic, openai
	APIURL    string        `yaml:"api_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

type PromptConfig struct {
	// SystemFile 人设提示词文件，不存在时视为空
	SystemFile string `yaml:"system_file"`
}

type DataConfig struct {
	Dir string `yaml:"dir"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/junbot.db",
		},
		LLM: LLMConfig{
			Provider:  ProviderAnthropic,
			APIURL:    defaultAnthropicURL,
			Model:     defaultAnthropicModel,
			MaxTokens: 1024,
			Timeout:   60 * time.Second,
		},
		Prompt: PromptConfig{
			SystemFile: "prompts/system-prompt.txt",
		},
		Data: DataConfig{
			Dir: "./data",
		},
	}
}

func loadConfig() *Config {
	// .env.local 优先于 .env，godotenv 不会覆盖已存在的变量
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err == nil {
			klog.V(6).Infof("已加载环境文件: %s", f)
		}
	}

	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			klog.Warningf("解析配置文件失败: path=%s, error=%v", configPath, err)
		}
	}

	applyEnv(config)
	return config
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}

	switch config.LLM.Provider {
	case ProviderOpenAI:
		// 未显式配置时不沿用 Anthropic 的默认地址与模型
		if config.LLM.APIURL == defaultAnthropicURL {
			config.LLM.APIURL = ""
		}
		if config.LLM.Model == defaultAnthropicModel {
			config.LLM.Model = defaultOpenAIModel
		}
		if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
			config.LLM.APIKey = apiKey
		}
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
			config.LLM.APIURL = baseURL
		}
		if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
			config.LLM.Model = model
		}
	default:
		if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
			config.LLM.APIKey = apiKey
		}
		if baseURL := os.Getenv("ANTHROPIC_BASE_URL"); baseURL != "" {
			config.LLM.APIURL = baseURL
		}
		if model := os.Getenv("ANTHROPIC_MODEL"); model != "" {
			config.LLM.Model = model
		}
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		config.Data.Dir = dataDir
		if os.Getenv("DB_DSN") == "" && config.Database.Type == "sqlite" {
			config.Database.DSN = filepath.Join(dataDir, "junbot.db")
		}
	}
	if promptFile := os.Getenv("SYSTEM_PROMPT_FILE"); promptFile != "" {
		config.Prompt.SystemFile = promptFile
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
