package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
)

func (s *Usecase) TemplateList(ctx context.Context) ([]entity.Template, error) {
	ctx, span := s.startSpan(ctx, "TemplateList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, authzObject, authzRead); err != nil {
		return nil, err
	}

	items, err := s.registry.GetTemplates(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to registry get templates", "error", err)
		return nil, goerror.NewServer(err)
	}

	return items, nil
}
