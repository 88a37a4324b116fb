package notify

import (
	"context"
	"document-archive/internal/worker"

	"go.uber.org/zap"
)

// LogMailer only logs. It stands in when no relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("Mail relay not configured, message not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// Notifier sends mail in the background. Failures are logged and never reach
// the caller.
type Notifier struct {
	mailer Mailer
	pool   *worker.WorkerPool
	from   string
	logger *zap.Logger
}

func NewNotifier(mailer Mailer, pool *worker.WorkerPool, from string, logger *zap.Logger) *Notifier {
	return &Notifier{mailer: mailer, pool: pool, from: from, logger: logger}
}

func (n *Notifier) Notify(msg Message) {
	if msg.From == "" {
		msg.From = n.from
	}
	accepted := n.pool.Submit(func(ctx context.Context) error {
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.logger.Error("Failed to send email",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
			return err
		}
		return nil
	})
	if !accepted {
		n.logger.Warn("Email dropped", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}
}
