// @title LearnHub 后端 API
// @version 1.0
// @description 单用户学习平台：课程、进度、笔记、经验值与成就。
// @BasePath /api

package main

import (
	"flag"
	"learnhub_backend/internal/app"
	"learnhub_backend/internal/config"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	storageType := flag.String("storage", "", "覆盖配置中的存储类型")
	flag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *storageType != "" {
		cfg.Storage.Type = *storageType
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid storage type: %v", err)
		}
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
