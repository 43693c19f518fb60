package entity

import (
	"time"

	"github.com/shandysiswandi/mailpress/internal/pkg/valueobject"
)

// Envelope is the addressing part of an email.
type Envelope struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	From    string   `json:"from,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject,omitempty"`
}

// AuthorizationUser is the originating caller of a scheduled mail. ID and
// Authorization always travel together.
type AuthorizationUser struct {
	ID            string
	Authorization string
}

// EngineOptions scopes one engine instance.
type EngineOptions struct {
	Template          *Template
	AuthorizationUser *AuthorizationUser
}

// SendInstruction is what the engine receives for one mail.
type SendInstruction struct {
	Envelope Envelope
	Body     *string
	BodyHTML *string
	Values   valueobject.JSONMap
}

type SendStatus string

const (
	SendStatusScheduled SendStatus = "scheduled"
	SendStatusSent      SendStatus = "sent"
	SendStatusFailed    SendStatus = "failed"
)

func (s SendStatus) String() string {
	return string(s)
}

type SendResult struct {
	ID           string
	Status       SendStatus
	ScheduledAt  time.Time
	OriginUserID string
	TemplateID   string
}

// MailJob is the message published for delivery.
type MailJob struct {
	ID           string    `json:"id"`
	Envelope     Envelope  `json:"envelope"`
	TextBody     string    `json:"text_body,omitempty"`
	HTMLBody     string    `json:"html_body,omitempty"`
	TemplateID   string    `json:"template_id,omitempty"`
	OriginUserID string    `json:"origin_user_id,omitempty"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}
