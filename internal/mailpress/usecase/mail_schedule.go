package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/shandysiswandi/mailpress/internal/pkg/jwt"
	"github.com/shandysiswandi/mailpress/internal/pkg/valueobject"
)

// TemplateRef selects a template and the values it is rendered with.
type TemplateRef struct {
	ID     string
	Values valueobject.JSONMap
}

type MailScheduleInput struct {
	Envelope entity.Envelope
	Body     *string
	BodyHTML *string
	Template *TemplateRef
}

// MailSchedule resolves the template and the originating identity, then
// hands the instruction to a fresh engine. The engine result is returned as is.
func (s *Usecase) MailSchedule(ctx context.Context, in MailScheduleInput) (*entity.SendResult, error) {
	ctx, span := s.startSpan(ctx, "MailSchedule")
	defer span.End()

	var originUserID string
	if multi := jwt.GetMultiAuth(ctx); len(multi) > 0 {
		originUserID = multi[0].UserID
	}

	var (
		tpl    *entity.Template
		values valueobject.JSONMap
	)
	if in.Template != nil {
		values = in.Template.Values

		if in.Template.ID != "" {
			found, err := s.registry.GetTemplate(ctx, in.Template.ID)
			if errors.Is(err, goerror.ErrNotFound) {
				return nil, goerror.NewBusiness("template not found", goerror.CodeNotFound)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if err != nil {
				slog.ErrorContext(ctx, "failed to registry get template", "template_id", in.Template.ID, "error", err)
				return nil, goerror.NewServer(err)
			}
			tpl = found
		}
	}

	var user *entity.AuthorizationUser
	if originUserID != "" {
		user = &entity.AuthorizationUser{
			ID:            originUserID,
			Authorization: jwt.GetAuthorization(ctx),
		}
	}

	engine := s.engines.NewEngine(entity.EngineOptions{
		Template:          tpl,
		AuthorizationUser: user,
	})

	return engine.ScheduleMail(ctx, entity.SendInstruction{
		Envelope: in.Envelope,
		Body:     in.Body,
		BodyHTML: in.BodyHTML,
		Values:   values,
	})
}
