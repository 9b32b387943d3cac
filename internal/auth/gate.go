// Package auth 实现后台会话闸门：凭据校验、签名令牌与会话状态机。
//
// 令牌保存在 cookie 会话中，路由中间件与会话探测接口都通过 Session.Restore
// 判断登录状态，两者不会出现不一致。
package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sccsite/internal/metrics"
)

// State 是会话状态
type State string

const (
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// DefaultTTL 是令牌默认有效期
const DefaultTTL = 24 * time.Hour

// Gate 持有签发与校验令牌所需的配置
type Gate struct {
	auth   Authenticator
	key    string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewGate 创建 Gate。ttl 非正数时使用 DefaultTTL。
func NewGate(authenticator Authenticator, key, issuer string, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{auth: authenticator, key: key, issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL 返回令牌有效期
func (g *Gate) TTL() time.Duration { return g.ttl }

// NewSession 返回处于 checking 状态的新会话
func (g *Gate) NewSession() *Session {
	return &Session{gate: g, state: StateChecking}
}

// Session 是一次请求内的会话状态
type Session struct {
	gate *Gate

	mu      sync.Mutex
	state   State
	token   string
	claims  Claims
	expires time.Time
}

// State 返回当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated 报告会话是否已登录
func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// Token 返回当前令牌，未登录时为空
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Claims 返回当前令牌的声明
func (s *Session) Claims() Claims {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims
}

// ExpiresAt 返回令牌过期时间
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expires
}

// Restore 校验已保存的令牌并完成 checking 状态的转换
func (s *Session) Restore(token string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	token = strings.TrimSpace(token)
	if token == "" {
		s.reset()
		return s.state
	}

	claims, err := ParseToken(token, s.gate.issuer, s.gate.key)
	if err != nil {
		s.reset()
		return s.state
	}

	s.state = StateAuthenticated
	s.token = token
	s.claims = claims
	if claims.ExpiresAt != nil {
		s.expires = claims.ExpiresAt.Time
	}
	return s.state
}

// Login 校验凭据并签发新令牌。任何失败都返回 ErrInvalidCredentials。
func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	err := s.gate.auth.Authenticate(ctx, email, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Printf("[auth] authenticate %s: %v", email, err)
		}
		s.fail()
		return ErrInvalidCredentials
	}

	token, exp, err := IssueToken(email, s.gate.issuer, s.gate.key, s.gate.ttl, s.gate.now())
	if err != nil {
		log.Printf("[auth] issue token: %v", err)
		s.fail()
		return ErrInvalidCredentials
	}
	claims, err := ParseToken(token, s.gate.issuer, s.gate.key)
	if err != nil {
		log.Printf("[auth] parse issued token: %v", err)
		s.fail()
		return ErrInvalidCredentials
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.token = token
	s.claims = claims
	s.expires = exp
	s.mu.Unlock()

	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return nil
}

// Logout 清除令牌
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) fail() {
	metrics.LoginAttempts.WithLabelValues("error").Inc()
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}

// reset 需持有 mu
func (s *Session) reset() {
	s.state = StateUnauthenticated
	s.token = ""
	s.claims = Claims{}
	s.expires = time.Time{}
}
