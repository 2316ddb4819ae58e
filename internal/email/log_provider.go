package email

import (
	"context"

	"greenjobs_backend/internal/logger"
)

// LogProvider пишет письма в лог вместо отправки (SMTP не настроен)
type LogProvider struct{}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) Name() string {
	return "log"
}

func (p *LogProvider) Send(ctx context.Context, email *Email) error {
	logger.CtxInfo(ctx, "email (log transport)",
		"to", email.To,
		"subject", email.Subject,
		"html_bytes", len(email.HTMLBody),
	)
	logger.CtxDebug(ctx, "email body", "body", email.Body)
	return nil
}
