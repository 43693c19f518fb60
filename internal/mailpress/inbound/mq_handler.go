package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/instrument"
	"github.com/shandysiswandi/mailpress/internal/pkg/messaging"
	"github.com/shandysiswandi/mailpress/internal/pkg/uid"
)

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(entity.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) MailScheduledDelivery(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("mailpress.inbound.mq").Start(ctx, "MailScheduledDelivery")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: mail scheduled delivery", "job_id", msg.Header(entity.HeaderJobID))

	var job entity.MailJob
	if err := json.Unmarshal(body, &job); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of mail scheduled", "msg_bytes", len(body), "error", err)
		return nil
	}

	if err := h.uc.DeliverMail(ctx, job); err != nil {
		slog.ErrorContext(ctx, "failed to deliver scheduled mail", "job_id", job.ID, "error", err)
		return err
	}

	return nil
}
