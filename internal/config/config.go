package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	GinMode        string
	DatabaseDriver string
	DatabaseDSN    string
	LocalStorePath string
	SessionSecret  string
	SessionTTL     time.Duration
	TokenIssuer    string
	AdminEmail     string
	AdminPassword  string

	StorageDriver  string
	UploadDir      string
	UploadURLPath  string
	MaxUploadBytes int64
	S3Bucket       string
	S3Endpoint     string
	S3Region       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3PublicURL    string

	RedisAddr            string
	SyncInterval         time.Duration
	ContactRatePerMinute int
}

const (
	// StorageLocal 将上传文件写入本地目录。
	StorageLocal = "local"
	// StorageS3 将上传文件写入 S3 兼容的对象存储。
	StorageS3 = "s3"
	// StorageInline 不落盘，直接以 data URL 形式保存。
	StorageInline = "inline"
)

// DevSessionSecret 是旧版本的开发默认密钥，release 模式下拒绝使用。
const DevSessionSecret = "scc-dev-secret"

// ErrInsecureSessionSecret 表示 release 模式下 SESSION_SECRET 未设置或仍为默认值。
var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set to a private value in release mode")

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := getEnv("PORT", "8080")

	listenAddr := getEnv("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite"))
	if driver != "postgres" {
		driver = "sqlite"
	}

	storageDriver := strings.ToLower(getEnv("STORAGE_DRIVER", StorageLocal))
	switch storageDriver {
	case StorageLocal, StorageS3, StorageInline:
	default:
		log.Printf("[config] unknown STORAGE_DRIVER %q, using %s", storageDriver, StorageLocal)
		storageDriver = StorageLocal
	}

	ginMode := getEnv("GIN_MODE", "release")

	// 非 release 模式未配置密钥时，生成仅本进程有效的随机密钥
	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" && ginMode != "release" {
		sessionSecret = randomSecret()
		log.Printf("[config] SESSION_SECRET not set, using a random per-process key")
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		GinMode:        ginMode,
		DatabaseDriver: driver,
		DatabaseDSN:    getEnv("DATABASE_DSN", "data/scc.db"),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", "data/local.db"),
		SessionSecret:  sessionSecret,
		SessionTTL:     durationEnv("SESSION_TTL", 24*time.Hour),
		TokenIssuer:    getEnv("TOKEN_ISSUER", "scc-admin"),
		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),

		StorageDriver:  storageDriver,
		UploadDir:      getEnv("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:  getEnv("UPLOAD_URL_PATH", "/uploads"),
		MaxUploadBytes: int64(intEnv("MAX_UPLOAD_BYTES", 10<<20)),
		S3Bucket:       getEnv("S3_BUCKET", "images"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3Region:       getEnv("S3_REGION", "auto"),
		S3AccessKeyID:  getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		SyncInterval:         durationEnv("SYNC_INTERVAL", time.Minute),
		ContactRatePerMinute: intEnv("CONTACT_RATE_PER_MIN", 5),
	}
}

// Validate 检查启动前必须满足的配置。
func (c AppConfig) Validate() error {
	if c.GinMode == "release" && (strings.TrimSpace(c.SessionSecret) == "" || c.SessionSecret == DevSessionSecret) {
		return ErrInsecureSessionSecret
	}
	return nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("config: read random secret: %v", err))
	}
	return hex.EncodeToString(buf)
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid duration for %s: %q, using fallback %s", key, val, fallback)
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		log.Printf("[config] invalid int for %s: %q, using fallback %d", key, val, fallback)
		return fallback
	}
	return parsed
}
