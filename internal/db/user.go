package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrBlankCredentials 表示邮箱或密码为空
var ErrBlankCredentials = errors.New("email and password are required")

// User 是后台管理员账号，密码以 bcrypt 哈希保存
type User struct {
	gorm.Model
	Email    string `gorm:"size:255;unique;not null"`
	Password string `gorm:"not null"`
}

// NormalizeEmail 去除空白并转为小写，登录与建号共用
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureUser 在账号不存在时创建管理员，已有账号保持不变。
// 邮箱或密码为空时直接跳过，便于未配置管理员的环境启动。
func EnsureUser(gdb *gorm.DB, email, password string) error {
	email, password = NormalizeEmail(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil
	}
	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	err := gdb.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	return gdb.Create(&User{Email: email, Password: hashed}).Error
}

// SetPassword 创建管理员或重置已有账号的密码
func SetPassword(gdb *gorm.DB, email, password string) error {
	email, password = NormalizeEmail(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return ErrBlankCredentials
	}
	if gdb == nil {
		return errors.New("database not initialized")
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	var user User
	err = gdb.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gdb.Create(&User{Email: email, Password: hashed}).Error
	}
	if err != nil {
		return err
	}
	return gdb.Model(&user).Update("password", hashed).Error
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
