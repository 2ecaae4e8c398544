package repository

import (
	"time"

	"github.com/yxlimo/paperhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户数据访问。下载券余额只能通过 SpendTicket / GrantTickets /
// CheckIn 的条件更新变动，保证余额不为负、签到一天一次。
type UserRepository interface {
	BaseRepository[models.User]
	GetByAccount(account string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetForUpdate(id uuid.UUID) (*models.User, error)
	UpdateUsername(id uuid.UUID, username string) error
	UpdateAvatar(id uuid.UUID, avatarURL string) error
	UpdatePasswordByEmail(email, hashedPassword string) error
	// SpendTicket 扣 1 张券，余额不足时返回 false 且不做任何修改
	SpendTicket(id uuid.UUID) (bool, error)
	GrantTickets(id uuid.UUID, n int) error
	// CheckIn 当天未签到时记签到并加 reward 张券，已签到返回 false
	CheckIn(id uuid.UUID, day time.Time, reward int) (bool, error)
}

type UserRepositoryImpl struct {
	*BaseRepositoryImpl[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{BaseRepositoryImpl: NewBaseRepository[models.User](db), db: db}
}

func (r *UserRepositoryImpl) GetByAccount(account string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("account = ?", account).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetForUpdate(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) UpdateUsername(id uuid.UUID, username string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", id).Update("username", username)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateAvatar(id uuid.UUID, avatarURL string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", id).Update("avatar_url", avatarURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdatePasswordByEmail(email, hashedPassword string) error {
	result := r.db.Model(&models.User{}).Where("email = ?", email).Update("password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SpendTicket(id uuid.UUID) (bool, error) {
	// 条件更新保证并发扣券不会把余额扣成负数
	result := r.db.Model(&models.User{}).
		Where("id = ? AND download_tickets >= 1", id).
		Update("download_tickets", gorm.Expr("download_tickets - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *UserRepositoryImpl) GrantTickets(id uuid.UUID, n int) error {
	result := r.db.Model(&models.User{}).Where("id = ?", id).
		Update("download_tickets", gorm.Expr("download_tickets + ?", n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) CheckIn(id uuid.UUID, day time.Time, reward int) (bool, error) {
	date := day.Format("2006-01-02")
	result := r.db.Model(&models.User{}).
		Where("id = ? AND (last_check_in IS NULL OR last_check_in <> ?)", id, date).
		Updates(map[string]interface{}{
			"last_check_in":    date,
			"download_tickets": gorm.Expr("download_tickets + ?", reward),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
