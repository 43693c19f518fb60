package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
)

type TemplateGetInput struct {
	ID string `validate:"required,slug"`
}

func (s *Usecase) TemplateGet(ctx context.Context, in TemplateGetInput) (*entity.Template, error) {
	ctx, span := s.startSpan(ctx, "TemplateGet")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authzObject, authzRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tpl, err := s.registry.GetTemplate(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("template not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to registry get template", "template_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return tpl, nil
}
