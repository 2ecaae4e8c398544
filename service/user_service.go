package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yxlimo/paperhub/metrics"
	"github.com/yxlimo/paperhub/models"
	"github.com/yxlimo/paperhub/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// CheckInReward 每日签到发的券数
	CheckInReward = 5
	// MaxAvatarSize 头像大小上限
	MaxAvatarSize = 5 << 20
)

// UserSnapshot /me 的返回内容，带按当天计算的签到标记
type UserSnapshot struct {
	User        *models.User
	IsCheckedIn bool
}

type UserService interface {
	Me(userID uuid.UUID) (*UserSnapshot, error)
	// CheckIn 每日签到，返回本次发的券数
	CheckIn(userID uuid.UUID) (int, error)
	Downloads(userID uuid.UUID) ([]*models.Download, error)
	UpdateUsername(userID uuid.UUID, username string) error
	UpdateAvatar(userID uuid.UUID, filename string, data []byte) (string, error)
}

type UserServiceImpl struct {
	store  repository.Store
	files  FileStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewUserService(store repository.Store, files FileStore, logger *logrus.Logger) UserService {
	return &UserServiceImpl{store: store, files: files, logger: logger, now: time.Now}
}

func (s *UserServiceImpl) Me(userID uuid.UUID) (*UserSnapshot, error) {
	user, err := s.store.Repos().Users.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &UserSnapshot{User: user, IsCheckedIn: user.CheckedInOn(s.now())}, nil
}

func (s *UserServiceImpl) CheckIn(userID uuid.UUID) (int, error) {
	users := s.store.Repos().Users
	if _, err := users.GetByID(userID); errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: 用户不存在", ErrNotFound)
	} else if err != nil {
		return 0, err
	}

	// 条件更新：同一天第二次签到改不动任何行
	ok, err := users.CheckIn(userID, s.now(), CheckInReward)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: 今日已签到", ErrAlreadyCheckedIn)
	}

	metrics.TicketsGranted.WithLabelValues("checkin").Add(CheckInReward)
	return CheckInReward, nil
}

func (s *UserServiceImpl) Downloads(userID uuid.UUID) ([]*models.Download, error) {
	return s.store.Repos().Downloads.ListByUser(userID)
}

func (s *UserServiceImpl) UpdateUsername(userID uuid.UUID, username string) error {
	trimmed := strings.TrimSpace(username)
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 7 {
		return fmt.Errorf("%w: 昵称长度需在2-7个字符之间", ErrInvalidArgument)
	}
	err := s.store.Repos().Users.UpdateUsername(userID, trimmed)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}
	return err
}

func (s *UserServiceImpl) UpdateAvatar(userID uuid.UUID, filename string, data []byte) (string, error) {
	contentType := ContentTypeFor(filename)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: 只允许上传图片文件", ErrInvalidArgument)
	}
	if len(data) == 0 || len(data) > MaxAvatarSize {
		return "", fmt.Errorf("%w: 图片大小超出限制", ErrInvalidArgument)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectName := fmt.Sprintf("avatars/%s/%s%s", userID.String(), uuid.New().String(), ext)
	if err := s.files.Save(objectName, data, contentType); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.store.Repos().Users.UpdateAvatar(userID, objectName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: 用户不存在", ErrNotFound)
		}
		return "", err
	}
	return objectName, nil
}
