package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"linknest/internal/config"

	"go.uber.org/zap"
)

// MailService 负责对外发信。SMTP 配置不全时降级为禁用，
// 只记日志不报错，发信永远不该拖垮主流程。
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	siteURL  string
	enabled  bool
	log      *zap.SugaredLogger
}

func NewMailService(cfg *config.Config, log *zap.SugaredLogger) *MailService {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" && cfg.SMTPPass != "" && cfg.SMTPFrom != ""
	if !enabled {
		log.Warn("MailService disabled: missing SMTP configuration")
	}

	return &MailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.SMTPFrom,
		siteURL:  cfg.SiteURL,
		enabled:  enabled,
		log:      log,
	}
}

// send 同步发送一封 HTML 邮件。调用方需要确认发出成功后
// 才计限流额度，所以这里不做异步。
func (s *MailService) send(to []string, subject, body string) error {
	if !s.enabled {
		s.log.Infow("mail skipped (disabled)", "to", to, "subject", subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: LinkNest <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.from, subject, mime, body))

	if err := smtp.SendMail(addr, auth, s.from, to, msg); err != nil {
		s.log.Errorw("send mail failed", "to", to, "err", err)
		return err
	}
	return nil
}

// SendLoginLink 发送魔法链接登录邮件
func (s *MailService) SendLoginLink(email, code string) error {
	link := fmt.Sprintf("%s/auth/magiclink/verify?email=%s&code=%s", s.siteURL, email, code)
	body := fmt.Sprintf(`<p>点击下面的链接登录 LinkNest：</p>
<p><a href="%s">%s</a></p>
<p>如果不是您本人操作，忽略这封邮件即可。</p>`, link, link)
	return s.send([]string{email}, "LinkNest 登录链接", body)
}

// SendWelcomeEmail 注册成功后发送欢迎邮件（尽力而为，失败只记日志）
func (s *MailService) SendWelcomeEmail(email string) {
	body := fmt.Sprintf(`<p>欢迎加入 LinkNest！</p>
<p>现在就去 <a href="%s">%s</a> 提交你发现的第一个链接吧。</p>`, s.siteURL, s.siteURL)
	if err := s.send([]string{email}, "欢迎加入 LinkNest", body); err != nil {
		s.log.Warnw("welcome mail failed", "email", email, "err", err)
	}
}
