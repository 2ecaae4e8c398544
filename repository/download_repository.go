package repository

import (
	"github.com/yxlimo/paperhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DownloadRepository interface {
	BaseRepository[models.Download]
	Exists(userID, paperID uuid.UUID) (bool, error)
	Record(userID, paperID uuid.UUID) error
	// RecordIfAbsent 免扣券路径也落一条记录，后续按"已购买"走
	RecordIfAbsent(userID, paperID uuid.UUID) error
	ListByUser(userID uuid.UUID) ([]*models.Download, error)
}

type DownloadRepositoryImpl struct {
	*BaseRepositoryImpl[models.Download]
	db *gorm.DB
}

func NewDownloadRepository(db *gorm.DB) DownloadRepository {
	return &DownloadRepositoryImpl{BaseRepositoryImpl: NewBaseRepository[models.Download](db), db: db}
}

func (r *DownloadRepositoryImpl) Exists(userID, paperID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Download{}).
		Where("user_id = ? AND paper_id = ?", userID, paperID).
		Count(&count).Error
	return count > 0, err
}

func (r *DownloadRepositoryImpl) Record(userID, paperID uuid.UUID) error {
	return r.db.Create(&models.Download{UserID: userID, PaperID: paperID}).Error
}

func (r *DownloadRepositoryImpl) RecordIfAbsent(userID, paperID uuid.UUID) error {
	exists, err := r.Exists(userID, paperID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.Record(userID, paperID)
}

func (r *DownloadRepositoryImpl) ListByUser(userID uuid.UUID) ([]*models.Download, error) {
	var downloads []*models.Download
	err := r.db.Where("user_id = ?", userID).
		Preload("Paper").
		Order("created_at DESC").
		Find(&downloads).Error
	return downloads, err
}
