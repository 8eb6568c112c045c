package main

import (
	"flag"
	"log"
	"os"

	"k8s.io/klog/v2"

	"github.com/Junheng-Zheng/Junbot/config"
	"github.com/Junheng-Zheng/Junbot/internal/app"
	"github.com/Junheng-Zheng/Junbot/internal/handler"
	"github.com/Junheng-Zheng/Junbot/internal/router"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		klog.Warningf("未配置 %s 的 API Key，对话接口将返回配置错误", cfg.LLM.Provider)
	}

	// 初始化 Handler
	chatHandler := handler.NewChatHandler(a.Chat)
	taskHandler := handler.NewTaskHandler(a.Chat)
	settingsHandler := handler.NewSettingsHandler(a.Settings)
	activityHandler := handler.NewActivityHandler(a.Activity)

	// 设置路由
	r := router.Setup(cfg, chatHandler, taskHandler, settingsHandler, activityHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
