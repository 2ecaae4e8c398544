package repository

import (
	"time"

	"github.com/yxlimo/paperhub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationRepository interface {
	// Upsert 同一邮箱重复发码时覆盖旧码和过期时间
	Upsert(email, code string, expiresAt time.Time) error
	GetByEmail(email string) (*models.EmailVerification, error)
	DeleteByEmail(email string) error
}

type VerificationRepositoryImpl struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &VerificationRepositoryImpl{db: db}
}

func (r *VerificationRepositoryImpl) Upsert(email, code string, expiresAt time.Time) error {
	v := &models.EmailVerification{Email: email, Code: code, ExpiresAt: expiresAt}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "updated_at"}),
	}).Create(v).Error
}

func (r *VerificationRepositoryImpl) GetByEmail(email string) (*models.EmailVerification, error) {
	var v models.EmailVerification
	if err := r.db.Where("email = ?", email).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepositoryImpl) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.EmailVerification{}).Error
}
