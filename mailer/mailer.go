package mailer

import (
	"fmt"

	"github.com/yxlimo/paperhub/config"

	"gopkg.in/gomail.v2"
)

// SMTPMailer 发验证码邮件
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) SendVerificationCode(email, code string) error {
	body := fmt.Sprintf("您正在注册真题分享平台，验证码为：<b>%s</b>，5分钟内有效。", code)
	return m.send(email, "注册验证码", body)
}

func (m *SMTPMailer) SendPasswordResetCode(email, code string) error {
	body := fmt.Sprintf("您正在重置密码，验证码为：<b>%s</b>，5分钟内有效。若非本人操作请忽略。", code)
	return m.send(email, "重置密码验证码", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
