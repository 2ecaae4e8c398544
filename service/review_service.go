package service

import (
	"errors"
	"fmt"

	"github.com/yxlimo/paperhub/metrics"
	"github.com/yxlimo/paperhub/models"
	"github.com/yxlimo/paperhub/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApprovalReward 首次审核通过时给上传者发的券数
const ApprovalReward = 1

type ReviewService interface {
	PendingCount() (int64, error)
	PendingList() ([]*models.Paper, error)
	// Audit 审核真题，target 只接受 approved / rejected
	Audit(paperID uuid.UUID, target string) (*models.Paper, error)
}

type ReviewServiceImpl struct {
	store    repository.Store
	notifier Notifier
	logger   *logrus.Logger
}

func NewReviewService(store repository.Store, notifier Notifier, logger *logrus.Logger) ReviewService {
	return &ReviewServiceImpl{store: store, notifier: notifier, logger: logger}
}

func (s *ReviewServiceImpl) PendingCount() (int64, error) {
	return s.store.Repos().Papers.CountPending()
}

func (s *ReviewServiceImpl) PendingList() ([]*models.Paper, error) {
	return s.store.Repos().Papers.ListPending()
}

func (s *ReviewServiceImpl) Audit(paperID uuid.UUID, target string) (*models.Paper, error) {
	// 目标状态在任何写入之前校验
	if target != models.PaperStatusApproved && target != models.PaperStatusRejected {
		return nil, fmt.Errorf("%w: 无效的状态", ErrInvalidArgument)
	}

	var (
		paper   *models.Paper
		granted bool
	)

	// 读旧状态和写新状态在同一个事务里，行锁挡住并发重复审核，
	// 保证 +1 券只发一次
	err := s.store.Transaction(func(r repository.Repos) error {
		p, err := r.Papers.GetForUpdate(paperID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 真题不存在", ErrNotFound)
		}
		if err != nil {
			return err
		}

		if p.Status == models.PaperStatusTakenDown {
			return fmt.Errorf("%w: 真题已下架，无法审核", ErrConflict)
		}

		prev := p.Status
		if err := r.Papers.UpdateStatus(p.ID, target); err != nil {
			return err
		}
		p.Status = target

		if target == models.PaperStatusApproved && prev != models.PaperStatusApproved {
			if err := r.Users.GrantTickets(p.UploaderID, ApprovalReward); err != nil {
				return err
			}
			granted = true
		}

		paper = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if granted {
		metrics.TicketsGranted.WithLabelValues("approval").Add(ApprovalReward)
		s.notifier.ToUser(paper.UploaderID, EventTicketUpdate, map[string]interface{}{
			"user_id": paper.UploaderID.String(),
		})
		s.notifier.Broadcast(EventPaperApproved, map[string]interface{}{
			"title":   paper.Title,
			"subject": paper.Subject,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"paper_id": paperID,
		"status":   target,
		"granted":  granted,
	}).Info("paper audited")

	return paper, nil
}
