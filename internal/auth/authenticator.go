package auth

import (
	"context"
	"errors"

	"github.com/sccsite/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 表示邮箱或密码错误，不区分具体原因
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator 校验管理员凭据
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

// UserAuthenticator 使用数据库中 bcrypt 哈希的用户校验凭据
type UserAuthenticator struct {
	db *gorm.DB
}

// NewUserAuthenticator 创建 UserAuthenticator
func NewUserAuthenticator(gdb *gorm.DB) *UserAuthenticator {
	return &UserAuthenticator{db: gdb}
}

// Authenticate 查找用户并比对密码哈希
func (a *UserAuthenticator) Authenticate(ctx context.Context, email, password string) error {
	email = db.NormalizeEmail(email)
	if email == "" || password == "" || a.db == nil {
		return ErrInvalidCredentials
	}

	var user db.User
	if err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
