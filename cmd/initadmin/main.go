package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sccsite/internal/config"
	"github.com/sccsite/internal/db"
)

// 创建后台管理员账号，-reset 时重置已有账号的密码
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[initadmin] load .env: %v", err)
	}
	cfg := config.Load()

	email := flag.String("email", cfg.AdminEmail, "管理员邮箱")
	password := flag.String("password", cfg.AdminPassword, "管理员密码")
	reset := flag.Bool("reset", false, "账号已存在时重置密码")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "用法: initadmin -email admin@example.com -password <密码>")
		os.Exit(2)
	}

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	ensure := db.EnsureUser
	if *reset {
		ensure = db.SetPassword
	}
	if err := ensure(gdb, *email, *password); err != nil {
		log.Fatal("创建用户失败:", err)
	}
	fmt.Printf("管理员账号已就绪: %s\n", *email)
}
