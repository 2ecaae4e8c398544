package service

import "time"

// FileStore 对象存储协作方，MinIO 实现见 storage 包
type FileStore interface {
	Save(objectName string, data []byte, contentType string) error
	// PresignedDownload 返回带附件下载头的短期签名 URL
	PresignedDownload(objectName, filename string, expiry time.Duration) (string, error)
	// PresignedPreview 返回浏览器内联打开的短期签名 URL
	PresignedPreview(objectName, contentType string, expiry time.Duration) (string, error)
}

// Mailer 邮件协作方，SMTP 实现见 mailer 包
type Mailer interface {
	SendVerificationCode(email, code string) error
	SendPasswordResetCode(email, code string) error
}
