package handler

import (
	"net/http"

	"github.com/yxlimo/paperhub/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	review service.ReviewService
	logger *logrus.Logger
}

func NewAdminHandler(review service.ReviewService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{review: review, logger: logger}
}

// PendingCount 待审核数量
// GET /api/admin/papers/pending/count
func (h *AdminHandler) PendingCount(c *gin.Context) {
	count, err := h.review.PendingCount()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// PendingList 待审核列表，最早提交的排前面
// GET /api/admin/papers/pending
func (h *AdminHandler) PendingList(c *gin.Context) {
	papers, err := h.review.PendingList()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, papers)
}

// Audit 审核真题（通过/拒绝）
// PUT /api/admin/papers/:id/audit
func (h *AdminHandler) Audit(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的真题ID"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的状态"})
		return
	}

	paper, err := h.review.Audit(paperID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "审核完成", "paper": paper})
}
