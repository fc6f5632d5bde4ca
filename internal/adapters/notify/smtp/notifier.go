// Package smtp は登録完了メールの SMTP 送信実装です。
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ogurasousui/codex-employee-reconcile/internal/platform/config"
)

// Notifier は SMTP 経由で通知メールを送信します。
// 設定で無効化されている場合、送信は何もせず成功扱いになります。
type Notifier struct {
	cfg config.EmailConfig
}

// NewNotifier は Notifier を生成します。
func NewNotifier(cfg config.EmailConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Welcome は登録完了メールを送信します。
func (n *Notifier) Welcome(_ context.Context, email, names string) error {
	if !n.cfg.Enabled {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	msg := buildWelcomeMessage(n.cfg.Sender, email, names)

	var auth smtp.Auth
	if n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.Sender, []string{email}, msg); err != nil {
		return fmt.Errorf("smtp: send welcome to %s: %w", email, err)
	}
	return nil
}

func buildWelcomeMessage(sender, recipient, names string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	b.WriteString("Subject: Welcome\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\nYour account has been created and linked to your employee record.\r\n", names)
	return []byte(b.String())
}
