package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yxlimo/paperhub/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cases := []struct {
		err    error
		status int
		body   string
	}{
		{fmt.Errorf("%w: 试卷不存在", service.ErrNotFound), http.StatusNotFound, `{"error":"试卷不存在"}`},
		{fmt.Errorf("%w: 下载券不足", service.ErrInsufficientTickets), http.StatusForbidden, `{"error":"下载券不足"}`},
		{fmt.Errorf("%w: 无权执行该操作", service.ErrForbidden), http.StatusForbidden, `{"error":"无权执行该操作"}`},
		{fmt.Errorf("%w: 今日已签到", service.ErrAlreadyCheckedIn), http.StatusBadRequest, `{"error":"今日已签到"}`},
		{fmt.Errorf("%w: 试卷已被下架", service.ErrConflict), http.StatusConflict, `{"error":"试卷已被下架"}`},
		{errors.New("database is down"), http.StatusInternalServerError, `{"error":"服务器错误"}`},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

		respondError(c, logger, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.JSONEq(t, tc.body, w.Body.String(), tc.err.Error())
	}
}

func TestUserMessageStripsSentinelPrefix(t *testing.T) {
	err := fmt.Errorf("%w: 验证码错误或已过期", service.ErrInvalidArgument)
	assert.Equal(t, "验证码错误或已过期", userMessage(err, service.ErrInvalidArgument))

	// 没有前缀时原样返回
	assert.Equal(t, service.ErrNotFound.Error(), userMessage(service.ErrNotFound, service.ErrNotFound))
}
