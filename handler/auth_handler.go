package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/yxlimo/paperhub/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	auth   service.AuthService
	logger *logrus.Logger
}

func NewAuthHandler(auth service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// SendCode 发送注册验证码
// POST /api/auth/send-code
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请输入邮箱"})
		return
	}
	if err := h.auth.SendCode(req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "验证码已发送"})
}

// SendResetCode 发送重置密码验证码
// POST /api/auth/send-reset-code
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请输入邮箱"})
		return
	}
	if err := h.auth.SendResetCode(req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "验证码已发送"})
}

// ResetPassword 凭验证码重置密码
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请填写完整信息"})
		return
	}
	if err := h.auth.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "密码已重置"})
}

// Register 注册，multipart 表单，头像可选
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	in := service.RegisterInput{
		Account:  c.PostForm("account"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
		Email:    c.PostForm("email"),
		Code:     c.PostForm("code"),
	}

	if file, header, err := c.Request.FormFile("avatar"); err == nil {
		defer file.Close()
		data, err := readFileData(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "读取头像失败"})
			return
		}
		in.Avatar = data
		in.AvatarName = header.Filename
	}

	user, err := h.auth.Register(in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "注册成功", "user": user})
}

// Login 登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Account == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请输入账号和密码"})
		return
	}

	token, user, err := h.auth.Login(req.Account, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"token":   token,
		"user": gin.H{
			"id":               user.ID,
			"username":         user.Username,
			"role":             user.Role,
			"download_tickets": user.DownloadTickets,
			"avatar_url":       user.AvatarURL,
		},
	})
}

func readFileData(file multipart.File) ([]byte, error) {
	return io.ReadAll(file)
}
