package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cydxin/chat-hub/session"
)

const defaultLoginTokenTTL = 7 * 24 * time.Hour

type LoginReq struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// SessionService 登录/注销，驱动 session 状态机
type SessionService struct {
	*Service
	users    *UserService
	auth     *AuthService
	sessions *session.Manager
	tokenTTL time.Duration
}

func NewSessionService(s *Service, users *UserService, auth *AuthService, sessions *session.Manager) *SessionService {
	log.Println("NewSessionService")
	return &SessionService{
		Service:  s,
		users:    users,
		auth:     auth,
		sessions: sessions,
		tokenTTL: defaultLoginTokenTTL,
	}
}

// SetTokenTTL ttl<=0 时使用默认 7 天
func (s *SessionService) SetTokenTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultLoginTokenTTL
	}
	s.tokenTTL = ttl
}

// Login 账号密码登录。
// 首次登录走 Connecting -> Authenticated（chat.login）；失败 -> Failed（chat.login_failed）。
// 已登录或另一端正在登录时（多端）只签发新 token，状态由先到的那次登录推进。
func (s *SessionService) Login(ctx context.Context, account, password string) (*LoginResp, error) {
	account = strings.TrimSpace(account)
	if account == "" || password == "" {
		return nil, fmt.Errorf("%w: 账号或密码为空", ErrBadRequest)
	}

	u, err := s.users.VerifyPassword(account, password)
	if err != nil {
		// 用户不存在时没有 userID，不进入状态机
		if u != nil && errors.Is(err, ErrPasswordMismatch) {
			s.failLogin(u.ID)
		}
		return nil, err
	}

	owner := s.sessions.BeginOrJoin(u.ID)

	token, err := s.auth.IssueToken(ctx, u.ID, s.tokenTTL)
	if err != nil {
		if owner {
			_ = s.sessions.Fail(u.ID, session.ErrConnectionRefused)
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.users.touchLogin(u.ID)

	if owner {
		if err := s.sessions.Authenticated(u.ID); err != nil {
			return nil, err
		}
	}
	return &LoginResp{Token: token, User: *toUserDTO(u)}, nil
}

// failLogin 密码错误：把用户推进 Failed 并发布 chat.login_failed。已登录的其他端不受影响。
func (s *SessionService) failLogin(userID uint64) {
	if s.sessions.Get(userID) == session.Authenticated {
		return
	}
	if err := s.sessions.Begin(userID); err != nil {
		return
	}
	_ = s.sessions.Fail(userID, session.ErrAuthFailed)
}

// Logout 注销当前 token；all=true 注销该用户全部 token。
// 用户没有剩余的有效 token 时会话结束，回到 Disconnected。
func (s *SessionService) Logout(ctx context.Context, userID uint64, token string, all bool) error {
	if all {
		if err := s.auth.RevokeAllTokensByUser(ctx, userID); err != nil {
			return err
		}
		s.sessions.Close(userID)
		return nil
	}

	owner, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if owner != userID {
		return fmt.Errorf("%w: token 不属于当前用户", ErrBadRequest)
	}
	_, remaining, err := s.auth.RevokeToken(ctx, token)
	if err != nil {
		return err
	}
	if remaining == 0 {
		s.sessions.Close(userID)
	}
	return nil
}

// State 当前会话状态
func (s *SessionService) State(userID uint64) session.State {
	return s.sessions.Get(userID)
}
