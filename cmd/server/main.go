package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Uwaniumnya/crystal-social/internal/config"
	"github.com/Uwaniumnya/crystal-social/internal/logger"
	"github.com/Uwaniumnya/crystal-social/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
		if err := cfg.Validate(); err != nil {
			log.Fatalf("配置无效: %v", err)
		}
	}

	if err := logger.Init(cfg.Log.File); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("🎰 赌桌服务器启动中...")
		errCh <- srv.Start()
	}()

	// 优雅关闭：等待进行中的局结束
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("收到信号 %v，正在关闭服务器...", sig)
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
	case err := <-errCh:
		if err != nil {
			log.Printf("服务器启动失败: %v", err)
			srv.Shutdown()
			logger.Close()
			os.Exit(1)
		}
	}
}
