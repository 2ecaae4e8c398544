package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/yxlimo/paperhub/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var errorStatus = []struct {
	sentinel error
	status   int
}{
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrInsufficientTickets, http.StatusForbidden},
	{service.ErrInvalidArgument, http.StatusBadRequest},
	{service.ErrAlreadyExists, http.StatusBadRequest},
	{service.ErrAlreadyCheckedIn, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusBadRequest},
	{service.ErrConflict, http.StatusConflict},
}

// respondError 把领域错误映射成 HTTP 状态码，未识别的一律 500
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.sentinel) {
			c.JSON(m.status, gin.H{"error": userMessage(err, m.sentinel)})
			return
		}
	}
	logger.WithError(err).WithField("path", c.FullPath()).Error("internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器错误"})
}

// userMessage 取掉哨兵前缀，只留给用户看的消息
func userMessage(err error, sentinel error) string {
	msg := err.Error()
	if after, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return after
	}
	return msg
}
