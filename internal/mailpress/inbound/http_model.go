package inbound

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/valueobject"
)

// Recipients accepts either a single address or a list of addresses.
type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		if one == "" {
			*r = nil
			return nil
		}
		*r = Recipients{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

type EnvelopeRequest struct {
	To      Recipients `json:"to"`
	Cc      Recipients `json:"cc"`
	Bcc     Recipients `json:"bcc"`
	From    string     `json:"from"`
	ReplyTo string     `json:"reply_to"`
	Subject string     `json:"subject"`
}

type TemplateRefRequest struct {
	ID     string              `json:"id"`
	Values valueobject.JSONMap `json:"values"`
}

type MailScheduleRequest struct {
	Envelope EnvelopeRequest     `json:"envelope"`
	Body     *string             `json:"body"`
	BodyHTML *string             `json:"body_html"`
	Template *TemplateRefRequest `json:"template"`
}

type MailScheduleResponse struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	TemplateID   string    `json:"template_id,omitempty"`
	OriginUserID string    `json:"origin_user_id,omitempty"`
}

func (MailScheduleResponse) StatusCode() int { return http.StatusAccepted }
func (MailScheduleResponse) Message() string { return "mail has been scheduled" }

type TemplateVariableRequest struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Default  string `json:"default"`
}

type TemplateEnvelopeRequest struct {
	From    string `json:"from"`
	ReplyTo string `json:"reply_to"`
	Subject string `json:"subject"`
}

type TemplateCreateRequest struct {
	ID          string                    `json:"id"`
	Description string                    `json:"description"`
	Format      string                    `json:"format"`
	Subject     string                    `json:"subject"`
	Content     string                    `json:"content"`
	Variables   []TemplateVariableRequest `json:"variables"`
	Envelope    TemplateEnvelopeRequest   `json:"envelope"`
}

type TemplateVariableResponse struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

type TemplateEnvelopeResponse struct {
	From    string `json:"from,omitempty"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject,omitempty"`
}

type TemplateResponse struct {
	ID          string                     `json:"id"`
	Description string                     `json:"description"`
	Format      string                     `json:"format"`
	Subject     string                     `json:"subject"`
	Content     string                     `json:"content"`
	Variables   []TemplateVariableResponse `json:"variables"`
	Envelope    TemplateEnvelopeResponse   `json:"envelope"`
	Builtin     bool                       `json:"builtin"`
	CreatedAt   *time.Time                 `json:"created_at,omitempty"`
}

type TemplateCreateResponse struct {
	TemplateResponse
}

func (TemplateCreateResponse) StatusCode() int { return http.StatusCreated }
func (TemplateCreateResponse) Message() string { return "template has been created" }

type TemplatesResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

func toTemplateResponse(tpl entity.Template) TemplateResponse {
	resp := TemplateResponse{
		ID:          tpl.ID,
		Description: tpl.Description,
		Format:      tpl.Format.String(),
		Subject:     tpl.Subject,
		Content:     tpl.Content,
		Variables: lo.Map(tpl.Variables, func(v entity.Variable, _ int) TemplateVariableResponse {
			return TemplateVariableResponse{Name: v.Name, Required: v.Required, Default: v.Default}
		}),
		Envelope: TemplateEnvelopeResponse{
			From:    tpl.Envelope.From,
			ReplyTo: tpl.Envelope.ReplyTo,
			Subject: tpl.Envelope.Subject,
		},
		Builtin: tpl.Builtin,
	}
	if !tpl.CreatedAt.IsZero() {
		createdAt := tpl.CreatedAt
		resp.CreatedAt = &createdAt
	}

	return resp
}
