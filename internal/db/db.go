package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ContentModels 列出需要自动迁移的内容表，测试中也复用该列表。
func ContentModels() []interface{} {
	return []interface{}{
		&User{},
		&TeamMember{},
		&Event{},
		&Project{},
		&GalleryImage{},
		&Announcement{},
		&AboutItem{},
		&Message{},
	}
}

// Open 按驱动打开内容数据库并执行自动迁移。
// driver 为 postgres 时 dsn 为连接串，否则视为 sqlite 文件路径，为空时回退到 scc.db。
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres":
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		dialector = postgres.Open(dsn)
	default:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "scc.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(path)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}

	// 自动迁移模式，为内容模型创建表
	if err := gdb.AutoMigrate(ContentModels()...); err != nil {
		return nil, err
	}
	return gdb, nil
}

// OpenLocal 打开本地键值库（sqlite），用于远端不可用时的兜底存储。
func OpenLocal(path string) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "local.db"
	}
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&LocalEntry{}); err != nil {
		return nil, err
	}
	return gdb, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
