package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/shandysiswandi/mailpress/internal/pkg/idempotency"
	"github.com/shandysiswandi/mailpress/internal/pkg/mail"
)

const (
	deliverKeyPrefix     = "mailpress:deliver:"
	defaultMaxAttempts   = 3
	defaultBaseDelay     = 500 * time.Millisecond
	defaultDeliverLock   = 2 * time.Minute
	defaultDeliverMarker = 24 * time.Hour
)

// DeliverMail sends a scheduled job once. Redelivered jobs that already
// completed, or are being sent by another worker, are skipped.
func (s *Usecase) DeliverMail(ctx context.Context, job entity.MailJob) error {
	ctx, span := s.startSpan(ctx, "DeliverMail")
	defer span.End()

	if job.ID == "" {
		return goerror.NewInvalidInput(nil, "id", "is required")
	}

	err := s.idemp.Exec(ctx, deliverKeyPrefix+job.ID,
		func(ctx context.Context) error { return s.sendWithRetry(ctx, job) },
		idempotency.WithLockDuration(s.deliverLock()),
		idempotency.WithStateTTL(s.deliverMarker()),
		idempotency.WithReleaseOnFailure(),
	)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "mail delivered", "job_id", job.ID, "template_id", job.TemplateID)
		return nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "mail already delivered", "job_id", job.ID)
		return nil
	case errors.Is(err, idempotency.ErrAlreadyInProgress), errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.WarnContext(ctx, "mail delivery skipped", "job_id", job.ID, "error", err)
		return nil
	default:
		slog.ErrorContext(ctx, "failed to deliver mail", "job_id", job.ID, "error", err)
		return err
	}
}

func (s *Usecase) sendWithRetry(ctx context.Context, job entity.MailJob) error {
	msg := mailFromJob(job)

	attempts := s.maxAttempts()
	b := retry.NewExponential(s.baseDelay())
	b = retry.WithMaxRetries(uint64(attempts-1), b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := s.repoMail.Send(ctx, msg); err != nil {
			slog.WarnContext(ctx, "mail send attempt failed", "job_id", job.ID, "attempt", attempt, "max_attempts", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func mailFromJob(job entity.MailJob) mail.Message {
	headers := map[string]string{entity.HeaderJobID: job.ID}
	if job.OriginUserID != "" {
		headers[entity.HeaderOriginUser] = job.OriginUserID
	}

	return mail.Message{
		From:     job.Envelope.From,
		ReplyTo:  job.Envelope.ReplyTo,
		To:       job.Envelope.To,
		Cc:       job.Envelope.Cc,
		Bcc:      job.Envelope.Bcc,
		Subject:  job.Envelope.Subject,
		TextBody: job.TextBody,
		HTMLBody: job.HTMLBody,
		Headers:  headers,
	}
}

func (s *Usecase) maxAttempts() int {
	if s.cfg == nil {
		return defaultMaxAttempts
	}
	if n := s.cfg.GetInt("modules.mailpress.delivery.max_attempts"); n > 0 {
		return n
	}
	return defaultMaxAttempts
}

func (s *Usecase) baseDelay() time.Duration {
	if s.cfg == nil {
		return defaultBaseDelay
	}
	if ms := s.cfg.GetInt64("modules.mailpress.delivery.base_delay_ms"); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultBaseDelay
}

func (s *Usecase) deliverLock() time.Duration {
	if s.cfg == nil {
		return defaultDeliverLock
	}
	if d := s.cfg.GetSecond("modules.mailpress.delivery.lock_seconds"); d > 0 {
		return d
	}
	return defaultDeliverLock
}

func (s *Usecase) deliverMarker() time.Duration {
	if s.cfg == nil {
		return defaultDeliverMarker
	}
	if d := s.cfg.GetMinute("modules.mailpress.delivery.dedupe_ttl_minutes"); d > 0 {
		return d
	}
	return defaultDeliverMarker
}
