package app

import (
	"fmt"

	"github.com/Junheng-Zheng/Junbot/config"
	"github.com/Junheng-Zheng/Junbot/internal/eventbus"
	"github.com/Junheng-Zheng/Junbot/internal/pkg/database"
	"github.com/Junheng-Zheng/Junbot/internal/repository"
	"github.com/Junheng-Zheng/Junbot/internal/service"
	"github.com/Junheng-Zheng/Junbot/internal/service/assistant"
	"github.com/Junheng-Zheng/Junbot/internal/service/reconcile"
	"github.com/Junheng-Zheng/Junbot/internal/service/state"
	"github.com/Junheng-Zheng/Junbot/internal/service/tasks"
	"github.com/Junheng-Zheng/Junbot/internal/subscriber"
	"k8s.io/klog/v2"
)

// App 服务端与命令行共用的组件
type App struct {
	Config   *config.Config
	Store    *state.Store
	Chat     *service.ChatService
	Settings *service.SettingsService
	Activity *subscriber.ActivityLog
}

// New 按配置初始化数据库、存储、网关与事件订阅
func New(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := state.NewStore(repository.NewKVRepository(db))

	taskBus := eventbus.NewTaskEventBus()
	turnBus := eventbus.NewTurnEventBus()
	activity := subscriber.NewActivityLog(0)
	activity.Register(taskBus)
	activity.RegisterTurns(turnBus)

	gateway := assistant.NewGatewayFromConfig(cfg)
	chat := service.NewChatService(
		gateway,
		reconcile.New(),
		tasks.NewMutator(taskBus),
		store,
		turnBus,
		cfg.LLM.Timeout,
	)

	klog.V(6).Infof("组件初始化完成: provider=%s, model=%s, db=%s", cfg.LLM.Provider, cfg.LLM.Model, cfg.Database.Type)
	return &App{
		Config:   cfg,
		Store:    store,
		Chat:     chat,
		Settings: service.NewSettingsService(store),
		Activity: activity,
	}, nil
}
