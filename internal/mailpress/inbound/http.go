package inbound

import (
	"github.com/shandysiswandi/mailpress/internal/pkg/authn"
	"github.com/shandysiswandi/mailpress/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc, verifier authn.Verifier) {
	end := &HTTPEndpoint{uc: uc}

	requireAuth := router.Guard(authn.RequireAnyAuth(verifier))
	optionalAuth := router.Guard(authn.OptionalAnyAuth(authn.RequireAnyAuth(verifier)))

	r.GET("/api/v1/mailpress/templates", end.TemplateList, requireAuth)
	r.GET("/api/v1/mailpress/templates/:id", end.TemplateGet, requireAuth)
	r.POST("/api/v1/mailpress/templates", end.TemplateCreate, requireAuth)

	r.POST("/api/v1/mailpress/mail/schedule", end.MailSchedule, optionalAuth)
}
