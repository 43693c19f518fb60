package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/config"
	"github.com/shandysiswandi/mailpress/internal/pkg/goroutine"
	"github.com/shandysiswandi/mailpress/internal/pkg/instrument"
	"github.com/shandysiswandi/mailpress/internal/pkg/messaging"
	"github.com/shandysiswandi/mailpress/internal/pkg/uid"
)

const defaultConsumerConcurrency = 4

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.mailpress.consumer_names")

	destination := cfg.GetString("modules.mailpress.destination")
	if destination == "" {
		destination = entity.MailScheduledDestination
	}

	concurrency := cfg.GetInt("modules.mailpress.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = defaultConsumerConcurrency
	}

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // queue group or kafka consumer group
		handler messaging.Handler
	}{
		{
			name:    entity.MailScheduledConsumerDelivery,
			topic:   destination,
			group:   entity.MailScheduledConsumerDelivery,
			handler: mqHandler.MailScheduledDelivery,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithGroup(consumer.group),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(concurrency),
				)
			})
		}
	}
}
