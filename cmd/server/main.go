package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelbill/internal/config"
	"travelbill/internal/handler"
	"travelbill/internal/infrastructure/cache"
	"travelbill/internal/infrastructure/database"
	"travelbill/internal/infrastructure/mq"
	"travelbill/internal/job"
	"travelbill/pkg/idgen"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig("config/config.yaml")

	// 初始化 ID 生成器（台账流水号）
	idgen.Init(1)

	// 初始化 MySQL
	db := database.InitMySQL(&cfg.MySQL)

	// 初始化 Redis（未配置时退化为仅数据库事务保护）
	redisClient := cache.InitRedis(&cfg.Redis)

	// 初始化 Kafka（未配置时台账事件只落 outbox 不投递）
	producer := mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	// 单位工作执行器；transactions_enabled=false 会在这里打出降级警告
	runner := database.NewTxRunner(db, cfg.Business.TransactionsEnabled)

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	if producer != nil {
		outboxSender := job.NewOutboxSender(db, cfg)
		go outboxSender.Start(ctx)
	}

	reconcileJob := job.NewBalanceReconcileJob(db, cfg)
	go reconcileJob.Start(ctx)

	// 设置路由
	router := handler.SetupRouter(db, redisClient, runner, cfg)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	log.Println("服务已关闭")
}
