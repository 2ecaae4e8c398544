package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yxlimo/paperhub/metrics"
	"github.com/yxlimo/paperhub/models"
	"github.com/yxlimo/paperhub/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// MaxPaperSize 上传文件大小上限
	MaxPaperSize = 50 << 20
	// PresignExpiry 下载/预览签名 URL 有效期
	PresignExpiry = 15 * time.Minute
)

var allowedPaperExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true,
	".jpg": true, ".jpeg": true, ".png": true,
	".zip": true, ".rar": true,
}

type UploadPaperInput struct {
	Title         string
	Subject       string
	Year          int
	Teacher       string
	FileName      string
	Data          []byte
	ThumbnailName string
	Thumbnail     []byte
}

// DownloadResult 一次下载请求的结果。Charged 表示本次是否扣了券。
type DownloadResult struct {
	Paper   *models.Paper
	URL     string
	Charged bool
}

type PaperService interface {
	Upload(uploaderID uuid.UUID, in UploadPaperInput) (*models.Paper, error)
	List(opts repository.PaperListOptions) ([]*models.Paper, int64, error)
	FilterOptions() (subjects, teachers []string, err error)
	GetByID(id uuid.UUID) (*models.Paper, error)
	Download(userID, paperID uuid.UUID) (*DownloadResult, error)
	PreviewURL(paperID uuid.UUID) (string, error)
	Takedown(actorID uuid.UUID, actorRole string, paperID uuid.UUID) (*models.Paper, error)
	ListByUploader(uploaderID uuid.UUID) ([]*models.Paper, error)
}

type PaperServiceImpl struct {
	store    repository.Store
	files    FileStore
	notifier Notifier
	bucket   string
	logger   *logrus.Logger
}

func NewPaperService(store repository.Store, files FileStore, notifier Notifier, bucket string, logger *logrus.Logger) PaperService {
	return &PaperServiceImpl{store: store, files: files, notifier: notifier, bucket: bucket, logger: logger}
}

func (s *PaperServiceImpl) Upload(uploaderID uuid.UUID, in UploadPaperInput) (*models.Paper, error) {
	if in.Title == "" || in.Subject == "" || in.Year == 0 {
		return nil, fmt.Errorf("%w: 请填写完整的试卷信息", ErrInvalidArgument)
	}
	ext := strings.ToLower(filepath.Ext(in.FileName))
	if !allowedPaperExts[ext] {
		return nil, fmt.Errorf("%w: 不支持的文件格式", ErrInvalidArgument)
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: 请选择要上传的文件", ErrInvalidArgument)
	}
	if len(in.Data) > MaxPaperSize {
		return nil, fmt.Errorf("%w: 文件超过 50MB 限制", ErrInvalidArgument)
	}

	objectName := fmt.Sprintf("papers/%s/%s%s", uploaderID.String(), uuid.New().String(), ext)
	if err := s.files.Save(objectName, in.Data, ContentTypeFor(in.FileName)); err != nil {
		return nil, fmt.Errorf("failed to store paper file: %w", err)
	}

	thumbnailPath := ""
	if len(in.Thumbnail) > 0 {
		thumbExt := strings.ToLower(filepath.Ext(in.ThumbnailName))
		thumbnailPath = fmt.Sprintf("thumbnails/%s/%s%s", uploaderID.String(), uuid.New().String(), thumbExt)
		if err := s.files.Save(thumbnailPath, in.Thumbnail, ContentTypeFor(in.ThumbnailName)); err != nil {
			// 缩略图失败不阻塞上传
			s.logger.WithError(err).Warn("store thumbnail failed")
			thumbnailPath = ""
		}
	}

	paper := &models.Paper{
		Title:         in.Title,
		Subject:       in.Subject,
		Year:          in.Year,
		Teacher:       in.Teacher,
		MinioBucket:   s.bucket,
		ObjectName:    objectName,
		FileName:      in.FileName,
		SizeBytes:     int64(len(in.Data)),
		UploaderID:    uploaderID,
		Status:        models.PaperStatusPending,
		ThumbnailPath: thumbnailPath,
	}
	if err := s.store.Repos().Papers.Create(paper); err != nil {
		return nil, fmt.Errorf("failed to save paper record: %w", err)
	}

	metrics.PapersUploaded.Inc()
	// 提示管理员刷新待审核列表
	s.notifier.Broadcast(EventNewPaperPending, nil)

	return paper, nil
}

func (s *PaperServiceImpl) List(opts repository.PaperListOptions) ([]*models.Paper, int64, error) {
	return s.store.Repos().Papers.ListApproved(opts)
}

func (s *PaperServiceImpl) FilterOptions() ([]string, []string, error) {
	papers := s.store.Repos().Papers
	subjects, err := papers.DistinctSubjects()
	if err != nil {
		return nil, nil, err
	}
	teachers, err := papers.DistinctTeachers()
	if err != nil {
		return nil, nil, err
	}
	return subjects, teachers, nil
}

func (s *PaperServiceImpl) GetByID(id uuid.UUID) (*models.Paper, error) {
	paper, err := s.store.Repos().Papers.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 真题不存在", ErrNotFound)
	}
	return paper, err
}

// Download 下载券账本的核心判定，整个序列跑在一个事务里：
// 上传者免费 -> 赞助者免费 -> 已购买免费 -> 扣券（余额不足则失败）。
// 不扣券的分支也会补一条下载记录，下载计数每次请求都 +1。
func (s *PaperServiceImpl) Download(userID, paperID uuid.UUID) (*DownloadResult, error) {
	res := &DownloadResult{}

	err := s.store.Transaction(func(r repository.Repos) error {
		paper, err := r.Papers.GetForUpdate(paperID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 真题不存在", ErrNotFound)
		}
		if err != nil {
			return err
		}

		user, err := r.Users.GetForUpdate(userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 用户不存在", ErrNotFound)
		}
		if err != nil {
			return err
		}

		charged := false
		switch {
		case paper.UploaderID == user.ID:
			// 上传者本人免费
		case user.IsSponsor:
			// 赞助者免费
		default:
			exists, err := r.Downloads.Exists(user.ID, paper.ID)
			if err != nil {
				return err
			}
			if !exists {
				ok, err := r.Users.SpendTicket(user.ID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: 下载券不足，请上传真题或签到获取", ErrInsufficientTickets)
				}
				charged = true
			}
		}

		if charged {
			if err := r.Downloads.Record(user.ID, paper.ID); err != nil {
				return err
			}
		} else {
			if err := r.Downloads.RecordIfAbsent(user.ID, paper.ID); err != nil {
				return err
			}
		}

		if err := r.Papers.IncrementDownloads(paper.ID); err != nil {
			return err
		}

		res.Paper = paper
		res.Charged = charged
		return nil
	})
	if err != nil {
		return nil, err
	}

	filename := res.Paper.Title + strings.ToLower(filepath.Ext(res.Paper.FileName))
	url, err := s.files.PresignedDownload(res.Paper.ObjectName, filename, PresignExpiry)
	if err != nil {
		// 账本已提交，签名失败只影响本次响应
		return nil, fmt.Errorf("failed to presign download url: %w", err)
	}
	res.URL = url

	metrics.PaperDownloads.WithLabelValues(chargedLabel(res.Charged)).Inc()
	return res, nil
}

func (s *PaperServiceImpl) PreviewURL(paperID uuid.UUID) (string, error) {
	paper, err := s.GetByID(paperID)
	if err != nil {
		return "", err
	}
	return s.files.PresignedPreview(paper.ObjectName, ContentTypeFor(paper.FileName), PresignExpiry)
}

func (s *PaperServiceImpl) Takedown(actorID uuid.UUID, actorRole string, paperID uuid.UUID) (*models.Paper, error) {
	var paper *models.Paper
	alreadyDown := false

	err := s.store.Transaction(func(r repository.Repos) error {
		p, err := r.Papers.GetForUpdate(paperID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 真题不存在", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if p.UploaderID != actorID && actorRole != models.RoleAdmin {
			return fmt.Errorf("%w: 无权操作", ErrForbidden)
		}

		if p.Status == models.PaperStatusTakenDown {
			alreadyDown = true
			paper = p
			return nil
		}

		if err := r.Papers.UpdateStatus(p.ID, models.PaperStatusTakenDown); err != nil {
			return err
		}
		p.Status = models.PaperStatusTakenDown
		paper = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyDown {
		s.notifier.Broadcast(EventPaperTakenDown, map[string]interface{}{"id": paper.ID.String()})
	}
	return paper, nil
}

func (s *PaperServiceImpl) ListByUploader(uploaderID uuid.UUID) ([]*models.Paper, error) {
	return s.store.Repos().Papers.ListByUploader(uploaderID)
}

func chargedLabel(charged bool) string {
	if charged {
		return "charged"
	}
	return "free"
}

// ContentTypeFor 按扩展名给出 MIME 类型
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
