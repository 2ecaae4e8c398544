package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/yxlimo/paperhub/middleware"
	"github.com/yxlimo/paperhub/repository"
	"github.com/yxlimo/paperhub/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PaperHandler struct {
	papers service.PaperService
	logger *logrus.Logger
}

func NewPaperHandler(papers service.PaperService, logger *logrus.Logger) *PaperHandler {
	return &PaperHandler{papers: papers, logger: logger}
}

// List 真题列表，支持分页、筛选和搜索
// GET /api/papers
func (h *PaperHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	opts := repository.PaperListOptions{
		Page:    page,
		Limit:   limit,
		Subject: filterValue(c.Query("subject")),
		Teacher: filterValue(c.Query("teacher")),
		Search:  c.Query("search"),
		Sort:    c.Query("sort"),
	}

	papers, total, err := h.papers.List(opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"papers":     papers,
		"total":      total,
		"page":       opts.Page,
		"totalPages": int(math.Ceil(float64(total) / float64(opts.Limit))),
	})
}

// Filters 课程和老师的筛选选项
// GET /api/papers/filters
func (h *PaperHandler) Filters(c *gin.Context) {
	subjects, teachers, err := h.papers.FilterOptions()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects, "teachers": teachers})
}

// Upload 上传真题，进入待审核状态
// POST /api/papers/upload
func (h *PaperHandler) Upload(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择要上传的文件"})
		return
	}
	defer file.Close()

	data, err := readFileData(file)
	if err != nil {
		h.logger.WithError(err).Error("read upload file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}

	year, _ := strconv.Atoi(c.PostForm("year"))
	in := service.UploadPaperInput{
		Title:    c.PostForm("title"),
		Subject:  c.PostForm("subject"),
		Year:     year,
		Teacher:  c.PostForm("teacher"),
		FileName: header.Filename,
		Data:     data,
	}

	if tf, th, err := c.Request.FormFile("thumbnail"); err == nil {
		defer tf.Close()
		if tdata, err := readFileData(tf); err == nil {
			in.Thumbnail = tdata
			in.ThumbnailName = th.Filename
		}
	}

	paper, err := h.papers.Upload(userID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "上传成功，请等待管理员审核", "paper": paper})
}

// Download 下载真题，按账本规则决定是否扣券，返回签名 URL
// GET /api/papers/:id/download
func (h *PaperHandler) Download(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的真题ID"})
		return
	}

	result, err := h.papers.Download(userID, paperID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":     result.URL,
		"charged": result.Charged,
		"paper":   result.Paper,
	})
}

// Preview 在线预览，不扣券
// GET /api/papers/:id/preview
func (h *PaperHandler) Preview(c *gin.Context) {
	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的真题ID"})
		return
	}

	url, err := h.papers.PreviewURL(paperID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Takedown 下架真题，上传者本人或管理员
// POST /api/papers/:id/takedown
func (h *PaperHandler) Takedown(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	paperID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的真题ID"})
		return
	}

	paper, err := h.papers.Takedown(userID, c.GetString("role"), paperID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已下架", "paper": paper})
}

// filterValue "全部" 等价于不筛选
func filterValue(v string) string {
	if v == "全部" {
		return ""
	}
	return v
}
