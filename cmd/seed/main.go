package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sccsite/internal/config"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/localstore"
	"github.com/sccsite/internal/service"
)

// 示例内容生成器
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[seed] load .env: %v", err)
	}
	cfg := config.Load()

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	localDB, err := db.OpenLocal(cfg.LocalStorePath)
	if err != nil {
		log.Printf("[seed] local store unavailable, event extras will be skipped: %v", err)
	}

	services := service.New(service.Options{DB: gdb, Local: localstore.New(localDB)})

	fmt.Println("开始生成示例内容...")
	created, err := seedContent(context.Background(), services)
	if err != nil {
		log.Fatal("示例内容生成失败:", err)
	}
	for name, n := range created {
		fmt.Printf("%s: %d\n", name, n)
	}
	fmt.Println("示例内容生成完成！")
}
