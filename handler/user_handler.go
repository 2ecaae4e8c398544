package handler

import (
	"net/http"

	"github.com/yxlimo/paperhub/middleware"
	"github.com/yxlimo/paperhub/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	users  service.UserService
	papers service.PaperService
	logger *logrus.Logger
}

func NewUserHandler(users service.UserService, papers service.PaperService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, papers: papers, logger: logger}
}

// Me 当前用户信息，带当天签到标记
// GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	snapshot, err := h.users.Me(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	u := snapshot.User
	c.JSON(http.StatusOK, gin.H{
		"id":               u.ID,
		"username":         u.Username,
		"role":             u.Role,
		"download_tickets": u.DownloadTickets,
		"last_check_in":    u.LastCheckIn,
		"is_sponsor":       u.IsSponsor,
		"avatar_url":       u.AvatarURL,
		"is_checked_in":    snapshot.IsCheckedIn,
	})
}

// CheckIn 每日签到
// POST /api/user/checkin
func (h *UserHandler) CheckIn(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	added, err := h.users.CheckIn(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "签到成功", "addedTickets": added})
}

// Uploads 上传记录
// GET /api/user/uploads
func (h *UserHandler) Uploads(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	papers, err := h.papers.ListByUploader(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, papers)
}

// Downloads 下载记录
// GET /api/user/downloads
func (h *UserHandler) Downloads(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	downloads, err := h.users.Downloads(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, downloads)
}

// UpdateProfile 更新昵称
// PATCH /api/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请输入昵称"})
		return
	}

	if err := h.users.UpdateUsername(userID, req.Username); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "昵称已更新"})
}

// Avatar 上传头像
// POST /api/user/avatar
func (h *UserHandler) Avatar(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择要上传的图片"})
		return
	}
	defer file.Close()

	data, err := readFileData(file)
	if err != nil {
		h.logger.WithError(err).Error("read avatar file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}

	avatarURL, err := h.users.UpdateAvatar(userID, header.Filename, data)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "头像上传成功", "avatarUrl": avatarURL})
}
