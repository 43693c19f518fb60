package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/shandysiswandi/mailpress/internal/pkg/jwt"
)

const (
	authzObject = "mailpress"
	authzRead   = "read"
	authzWrite  = "write"
)

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.UserID, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
