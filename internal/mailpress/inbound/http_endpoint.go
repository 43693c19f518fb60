package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/mailpress/usecase"
	"github.com/shandysiswandi/mailpress/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// MailSchedule schedules an email, optionally on behalf of the authenticated caller.
// @Summary Schedule mail
// @Description Renders the optional template and queues the email for delivery.
// @Tags Mailpress
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body MailScheduleRequest true "Mail schedule payload"
// @Success 202 {object} router.successResponse{data=MailScheduleResponse}
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 404 {object} router.errorResponse "Template not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/mailpress/mail/schedule [post]
func (h *HTTPEndpoint) MailSchedule(r *router.Request) (any, error) {
	var req MailScheduleRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in := usecase.MailScheduleInput{
		Envelope: entity.Envelope{
			To:      req.Envelope.To,
			Cc:      req.Envelope.Cc,
			Bcc:     req.Envelope.Bcc,
			From:    req.Envelope.From,
			ReplyTo: req.Envelope.ReplyTo,
			Subject: req.Envelope.Subject,
		},
		Body:     req.Body,
		BodyHTML: req.BodyHTML,
	}
	if req.Template != nil {
		in.Template = &usecase.TemplateRef{ID: req.Template.ID, Values: req.Template.Values}
	}

	res, err := h.uc.MailSchedule(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return MailScheduleResponse{
		ID:           res.ID,
		Status:       res.Status.String(),
		ScheduledAt:  res.ScheduledAt,
		TemplateID:   res.TemplateID,
		OriginUserID: res.OriginUserID,
	}, nil
}

// TemplateGet returns a single template by id.
// @Summary Get template
// @Tags Mailpress
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} router.successResponse{data=TemplateResponse}
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Template not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/mailpress/templates/{id} [get]
func (h *HTTPEndpoint) TemplateGet(r *router.Request) (any, error) {
	tpl, err := h.uc.TemplateGet(r.Context(), usecase.TemplateGetInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return toTemplateResponse(*tpl), nil
}

// TemplateList returns every registered template.
// @Summary List templates
// @Tags Mailpress
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=TemplatesResponse}
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/mailpress/templates [get]
func (h *HTTPEndpoint) TemplateList(r *router.Request) (any, error) {
	items, err := h.uc.TemplateList(r.Context())
	if err != nil {
		return nil, err
	}

	return TemplatesResponse{Templates: lo.Map(items, func(tpl entity.Template, _ int) TemplateResponse {
		return toTemplateResponse(tpl)
	})}, nil
}

// TemplateCreate registers a new template.
// @Summary Create template
// @Description Validates the template source and stores it in the registry.
// @Tags Mailpress
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TemplateCreateRequest true "Template payload"
// @Success 201 {object} router.successResponse{data=TemplateCreateResponse}
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 409 {object} router.errorResponse "Template already exists"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/mailpress/templates [post]
func (h *HTTPEndpoint) TemplateCreate(r *router.Request) (any, error) {
	var req TemplateCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	tpl, err := h.uc.TemplateCreate(r.Context(), usecase.TemplateCreateInput{
		ID:          req.ID,
		Description: req.Description,
		Format:      req.Format,
		Subject:     req.Subject,
		Content:     req.Content,
		Variables: lo.Map(req.Variables, func(v TemplateVariableRequest, _ int) usecase.TemplateVariableInput {
			return usecase.TemplateVariableInput{Name: v.Name, Required: v.Required, Default: v.Default}
		}),
		Envelope: usecase.TemplateEnvelopeInput{
			From:    req.Envelope.From,
			ReplyTo: req.Envelope.ReplyTo,
			Subject: req.Envelope.Subject,
		},
	})
	if err != nil {
		return nil, err
	}

	return TemplateCreateResponse{TemplateResponse: toTemplateResponse(*tpl)}, nil
}
