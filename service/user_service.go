package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cydxin/chat-hub/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists       = errors.New("用户名已存在")
	ErrUserNotFound     = errors.New("用户不存在")
	ErrPasswordMismatch = errors.New("密码错误")
)

type UserService struct {
	*Service
	userDao *models.UserDAO
}

func NewUserService(s *Service) *UserService {
	log.Println("NewUserService")
	return &UserService{
		Service: s,
		userDao: models.NewUserDAO(s.DB),
	}
}

// --- types ---

type UserDTO struct {
	ID           uint64     `json:"id"`
	UID          string     `json:"uid"`
	Username     string     `json:"username"`
	Nickname     string     `json:"nickname"`
	Avatar       string     `json:"avatar"`
	OnlineStatus uint8      `json:"online_status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastActiveAt *time.Time `json:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type RegisterReq struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

func toUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		UID:          u.UID,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Avatar:       u.Avatar,
		OnlineStatus: u.OnlineStatus,
		LastLoginAt:  u.LastLoginAt,
		LastActiveAt: u.LastActiveAt,
		CreatedAt:    u.CreatedAt,
	}
}

// Register 注册
func (s *UserService) Register(req RegisterReq) (*UserDTO, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: 输入账号", ErrBadRequest)
	}
	password := strings.TrimSpace(req.Password)
	if password == "" {
		return nil, fmt.Errorf("%w: 输入密码", ErrBadRequest)
	}

	exists, err := s.userDao.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = username
	}
	now := time.Now()
	user := &models.User{
		UID:       uuid.New().String(),
		Username:  username,
		Nickname:  nickname,
		Password:  string(hash),
		Avatar:    strings.TrimSpace(req.Avatar),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userDao.Create(user); err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// VerifyPassword 校验账号密码。密码错误时同时返回用户和 ErrPasswordMismatch。
func (s *UserService) VerifyPassword(account, password string) (*models.User, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	u, err := s.userDao.FindByUsername(account)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return u, ErrPasswordMismatch
	}
	return u, nil
}

// GetUser 按 ID 取用户
func (s *UserService) GetUser(userID uint64) (*UserDTO, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	u, err := s.userDao.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserDTO(u), nil
}

// Exists 用户是否存在
func (s *UserService) Exists(userID uint64) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	return s.userDao.ExistsByID(userID)
}

// SetOnline 写入在线状态
func (s *UserService) SetOnline(userID uint64, online bool) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.userDao.SetOnline(userID, online, time.Now())
}

func (s *UserService) touchLogin(userID uint64) {
	if err := s.userDao.TouchLogin(userID, time.Now()); err != nil {
		log.Printf("touch login user=%d: %v", userID, err)
	}
}
