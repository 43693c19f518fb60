package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	texttemplate "text/template"

	"github.com/samber/lo"
	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
)

type TemplateVariableInput struct {
	Name     string `validate:"required,slug"`
	Required bool
	Default  string `validate:"max=1000"`
}

type TemplateEnvelopeInput struct {
	From    string `validate:"omitempty,email"`
	ReplyTo string `validate:"omitempty,email"`
	Subject string `validate:"max=998"`
}

type TemplateCreateInput struct {
	ID          string                  `validate:"required,slug"`
	Description string                  `validate:"max=500"`
	Format      string                  `validate:"required,oneof=html markdown text"`
	Subject     string                  `validate:"max=998"`
	Content     string                  `validate:"required"`
	Variables   []TemplateVariableInput `validate:"omitempty,unique=Name,dive"`
	Envelope    TemplateEnvelopeInput
}

func (s *Usecase) TemplateCreate(ctx context.Context, in TemplateCreateInput) (*entity.Template, error) {
	ctx, span := s.startSpan(ctx, "TemplateCreate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, authzObject, authzWrite)
	if err != nil {
		return nil, err
	}

	in.ID = strings.TrimSpace(in.ID)
	in.Format = strings.ToLower(strings.TrimSpace(in.Format))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := texttemplate.New("subject").Parse(in.Subject); err != nil {
		return nil, goerror.NewInvalidInput(nil, "subject", "must be a valid template")
	}
	if _, err := texttemplate.New("content").Parse(in.Content); err != nil {
		return nil, goerror.NewInvalidInput(nil, "content", "must be a valid template")
	}

	tpl, err := s.registry.CreateTemplate(ctx, entity.CreateTemplate{
		ID:          in.ID,
		Description: in.Description,
		Format:      entity.Format(in.Format),
		Subject:     in.Subject,
		Content:     in.Content,
		Variables: lo.Map(in.Variables, func(v TemplateVariableInput, _ int) entity.Variable {
			return entity.Variable{Name: v.Name, Required: v.Required, Default: v.Default}
		}),
		Envelope: entity.TemplateEnvelope{
			From:    in.Envelope.From,
			ReplyTo: in.Envelope.ReplyTo,
			Subject: in.Envelope.Subject,
		},
		CreatedBy: clm.UserID,
	})
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Template already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to registry create template", "template_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "template created", "template_id", tpl.ID, "created_by", clm.UserID)

	return tpl, nil
}
