package inbound

import (
	"context"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/mailpress/usecase"
)

type ucConsumer interface {
	DeliverMail(ctx context.Context, job entity.MailJob) error
}

type uc interface {
	ucConsumer

	MailSchedule(ctx context.Context, in usecase.MailScheduleInput) (*entity.SendResult, error)
	TemplateGet(ctx context.Context, in usecase.TemplateGetInput) (*entity.Template, error)
	TemplateList(ctx context.Context) ([]entity.Template, error)
	TemplateCreate(ctx context.Context, in usecase.TemplateCreateInput) (*entity.Template, error)
}
