package service

import (
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/yxlimo/paperhub/models"
	"github.com/yxlimo/paperhub/repository"
	"github.com/yxlimo/paperhub/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CodeExpiry 邮箱验证码有效期
const CodeExpiry = 5 * time.Minute

var (
	emailRegex   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	accountRegex = regexp.MustCompile(`^[a-zA-Z0-9]{6,}$`)
)

type RegisterInput struct {
	Account    string
	Username   string
	Password   string
	Email      string
	Code       string
	AvatarName string
	Avatar     []byte
}

type AuthService interface {
	SendCode(email string) error
	SendResetCode(email string) error
	ResetPassword(email, code, newPassword string) error
	Register(in RegisterInput) (*models.User, error)
	// Login 返回 JWT 与用户信息
	Login(account, password string) (string, *models.User, error)
}

type AuthServiceImpl struct {
	store         repository.Store
	mailer        Mailer
	files         FileStore
	expireMinutes int
	logger        *logrus.Logger
}

func NewAuthService(store repository.Store, mailer Mailer, files FileStore, expireMinutes int, logger *logrus.Logger) AuthService {
	if expireMinutes <= 0 {
		expireMinutes = 1440
	}
	return &AuthServiceImpl{store: store, mailer: mailer, files: files, expireMinutes: expireMinutes, logger: logger}
}

func (s *AuthServiceImpl) SendCode(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: 邮箱格式不正确", ErrInvalidArgument)
	}

	repos := s.store.Repos()
	if _, err := repos.Users.GetByEmail(email); err == nil {
		return fmt.Errorf("%w: 该邮箱已被注册", ErrAlreadyExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	code := generateCode()
	if err := repos.Verifications.Upsert(email, code, time.Now().Add(CodeExpiry)); err != nil {
		return err
	}
	return s.mailer.SendVerificationCode(email, code)
}

func (s *AuthServiceImpl) SendResetCode(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: 邮箱格式不正确", ErrInvalidArgument)
	}

	repos := s.store.Repos()
	if _, err := repos.Users.GetByEmail(email); errors.Is(err, gorm.ErrRecordNotFound) {
		// 不暴露邮箱是否存在
		return nil
	} else if err != nil {
		return err
	}

	code := generateCode()
	if err := repos.Verifications.Upsert(email, code, time.Now().Add(CodeExpiry)); err != nil {
		return err
	}
	return s.mailer.SendPasswordResetCode(email, code)
}

func (s *AuthServiceImpl) ResetPassword(email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return fmt.Errorf("%w: 请填写完整信息", ErrInvalidArgument)
	}
	if !validPassword(newPassword) {
		return fmt.Errorf("%w: 密码需至少6位，且包含字母和数字", ErrInvalidArgument)
	}

	repos := s.store.Repos()
	if err := s.verifyCode(repos, email, code); err != nil {
		return err
	}
	if _, err := repos.Users.GetByEmail(email); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: 验证码错误或已过期", ErrInvalidArgument)
	} else if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := repos.Users.UpdatePasswordByEmail(email, string(hash)); err != nil {
		return err
	}
	return repos.Verifications.DeleteByEmail(email)
}

func (s *AuthServiceImpl) Register(in RegisterInput) (*models.User, error) {
	if in.Account == "" || in.Username == "" || in.Password == "" || in.Email == "" || in.Code == "" {
		return nil, fmt.Errorf("%w: 请填写完整信息", ErrInvalidArgument)
	}
	if !accountRegex.MatchString(in.Account) {
		return nil, fmt.Errorf("%w: 账号需至少6位，且仅包含字母和数字", ErrInvalidArgument)
	}

	repos := s.store.Repos()
	if err := s.verifyCode(repos, in.Email, in.Code); err != nil {
		return nil, err
	}

	if _, err := repos.Users.GetByAccount(in.Account); err == nil {
		return nil, fmt.Errorf("%w: 账号已存在", ErrAlreadyExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := repos.Users.GetByEmail(in.Email); err == nil {
		return nil, fmt.Errorf("%w: 邮箱已被注册", ErrAlreadyExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	avatarURL := ""
	if len(in.Avatar) > 0 {
		contentType := ContentTypeFor(in.AvatarName)
		if !strings.HasPrefix(contentType, "image/") {
			return nil, fmt.Errorf("%w: 只允许上传图片文件", ErrInvalidArgument)
		}
		ext := strings.ToLower(filepath.Ext(in.AvatarName))
		avatarURL = fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)
		if err := s.files.Save(avatarURL, in.Avatar, contentType); err != nil {
			s.logger.WithError(err).Warn("store register avatar failed")
			avatarURL = ""
		}
	}

	user := &models.User{
		Account:   in.Account,
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		Role:      models.RoleUser,
		AvatarURL: avatarURL,
	}
	if err := repos.Users.Create(user); err != nil {
		return nil, err
	}

	if err := repos.Verifications.DeleteByEmail(in.Email); err != nil {
		s.logger.WithError(err).Warn("cleanup verification code failed")
	}
	return user, nil
}

func (s *AuthServiceImpl) Login(account, password string) (string, *models.User, error) {
	user, err := s.store.Repos().Users.GetByAccount(account)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("%w: 账号或密码错误", ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: 账号或密码错误", ErrInvalidCredentials)
	}

	token, err := utils.GenerateToken(user.ID.String(), user.Username, user.Role, s.expireMinutes)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthServiceImpl) verifyCode(repos repository.Repos, email, code string) error {
	v, err := repos.Verifications.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: 验证码错误或已过期", ErrInvalidArgument)
	}
	if err != nil {
		return err
	}
	if v.Code != code || time.Now().After(v.ExpiresAt) {
		return fmt.Errorf("%w: 验证码错误或已过期", ErrInvalidArgument)
	}
	return nil
}

func generateCode() string {
	return fmt.Sprintf("%06d", rand.Intn(900000)+100000)
}

// validPassword 至少6位且同时包含字母和数字（Go 正则不支持前瞻，手工判）
func validPassword(p string) bool {
	if len(p) < 6 {
		return false
	}
	hasLetter, hasDigit := false, false
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}
