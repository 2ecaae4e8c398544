package repository

import (
	"github.com/yxlimo/paperhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaperListOptions 真题列表的筛选与分页参数
type PaperListOptions struct {
	Page    int
	Limit   int
	Subject string
	Teacher string
	Search  string
	Sort    string // newest(默认) | oldest | popular
}

type PaperRepository interface {
	BaseRepository[models.Paper]
	// GetForUpdate 行锁读取，审核/下架/扣券流程在事务内使用
	GetForUpdate(id uuid.UUID) (*models.Paper, error)
	UpdateStatus(id uuid.UUID, status string) error
	IncrementDownloads(id uuid.UUID) error
	ListApproved(opts PaperListOptions) ([]*models.Paper, int64, error)
	DistinctSubjects() ([]string, error)
	DistinctTeachers() ([]string, error)
	ListByUploader(uploaderID uuid.UUID) ([]*models.Paper, error)
	ListPending() ([]*models.Paper, error)
	CountPending() (int64, error)
}

type PaperRepositoryImpl struct {
	*BaseRepositoryImpl[models.Paper]
	db *gorm.DB
}

func NewPaperRepository(db *gorm.DB) PaperRepository {
	return &PaperRepositoryImpl{BaseRepositoryImpl: NewBaseRepository[models.Paper](db), db: db}
}

func (r *PaperRepositoryImpl) GetForUpdate(id uuid.UUID) (*models.Paper, error) {
	var paper models.Paper
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&paper, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (r *PaperRepositoryImpl) UpdateStatus(id uuid.UUID, status string) error {
	result := r.db.Model(&models.Paper{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PaperRepositoryImpl) IncrementDownloads(id uuid.UUID) error {
	result := r.db.Model(&models.Paper{}).Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PaperRepositoryImpl) approvedQuery(opts PaperListOptions) *gorm.DB {
	q := r.db.Model(&models.Paper{}).Where("status = ?", models.PaperStatusApproved)
	if opts.Subject != "" {
		q = q.Where("subject = ?", opts.Subject)
	}
	if opts.Teacher != "" {
		q = q.Where("teacher = ?", opts.Teacher)
	}
	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		q = q.Where("title ILIKE ? OR subject ILIKE ? OR teacher ILIKE ?", like, like, like)
	}
	return q
}

func (r *PaperRepositoryImpl) ListApproved(opts PaperListOptions) ([]*models.Paper, int64, error) {
	var total int64
	if err := r.approvedQuery(opts).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch opts.Sort {
	case "oldest":
		order = "created_at ASC"
	case "popular":
		order = "download_count DESC"
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}

	var papers []*models.Paper
	err := r.approvedQuery(opts).
		Preload("Uploader").
		Order(order).
		Limit(opts.Limit).
		Offset((opts.Page - 1) * opts.Limit).
		Find(&papers).Error
	return papers, total, err
}

func (r *PaperRepositoryImpl) DistinctSubjects() ([]string, error) {
	var subjects []string
	err := r.db.Model(&models.Paper{}).
		Where("status = ? AND subject <> ''", models.PaperStatusApproved).
		Distinct("subject").
		Order("subject").
		Pluck("subject", &subjects).Error
	return subjects, err
}

func (r *PaperRepositoryImpl) DistinctTeachers() ([]string, error) {
	var teachers []string
	err := r.db.Model(&models.Paper{}).
		Where("status = ? AND teacher <> ''", models.PaperStatusApproved).
		Distinct("teacher").
		Order("teacher").
		Pluck("teacher", &teachers).Error
	return teachers, err
}

func (r *PaperRepositoryImpl) ListByUploader(uploaderID uuid.UUID) ([]*models.Paper, error) {
	var papers []*models.Paper
	err := r.db.Where("uploader_id = ?", uploaderID).Order("created_at DESC").Find(&papers).Error
	return papers, err
}

func (r *PaperRepositoryImpl) ListPending() ([]*models.Paper, error) {
	var papers []*models.Paper
	err := r.db.Where("status = ?", models.PaperStatusPending).
		Preload("Uploader").
		Order("created_at ASC").
		Find(&papers).Error
	return papers, err
}

func (r *PaperRepositoryImpl) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&models.Paper{}).Where("status = ?", models.PaperStatusPending).Count(&count).Error
	return count, err
}
