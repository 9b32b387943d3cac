package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/crud"
	"github.com/sccsite/internal/db"
)

var validate = validator.New()

// ContactInput 是前台联系表单的提交内容
type ContactInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// MessageService 处理联系表单留言。写入经由 WriteThrough，远端不可用时暂存本地。
type MessageService struct {
	repo content.Repository[db.Message]
}

// NewMessageService 创建 MessageService
func NewMessageService(repo content.Repository[db.Message]) *MessageService {
	return &MessageService{repo: repo}
}

// Submit 校验并保存一条未读留言
func (s *MessageService) Submit(ctx context.Context, input ContactInput) (*db.Message, error) {
	msg := db.Message{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
		IsRead:  false,
	}

	if err := crud.Require(
		crud.Field{Name: "name", Value: msg.Name},
		crud.Field{Name: "email", Value: msg.Email},
		crud.Field{Name: "subject", Value: msg.Subject},
		crud.Field{Name: "message", Value: msg.Message},
	); err != nil {
		return nil, err
	}
	if err := validate.Var(msg.Email, "email"); err != nil {
		return nil, &crud.ValidationError{Fields: []string{"email"}, Message: "invalid email address"}
	}

	if err := s.repo.Create(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// List 返回全部留言，最新的在前
func (s *MessageService) List(ctx context.Context) ([]db.Message, error) {
	return s.repo.List(ctx)
}

// MarkRead 将留言标记为已读
func (s *MessageService) MarkRead(ctx context.Context, id string) (*db.Message, error) {
	return s.repo.Update(ctx, id, func(m *db.Message) {
		m.IsRead = true
	})
}

// Delete 删除留言
func (s *MessageService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// UnreadCount 返回未读留言数量
func (s *MessageService) UnreadCount(ctx context.Context) (int, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, item := range items {
		if !item.IsRead {
			unread++
		}
	}
	return unread, nil
}
