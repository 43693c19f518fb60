package entity

import (
	"strings"
	"time"
)

// Format tells the engine how to render a template's content.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

func (f Format) String() string {
	return string(f)
}

// Ensure normalizes f, falling back to FormatText for unknown values.
func (f Format) Ensure() Format {
	switch Format(strings.ToLower(strings.TrimSpace(string(f)))) {
	case FormatHTML:
		return FormatHTML
	case FormatMarkdown:
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Variable declares a value the template expects.
type Variable struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

// TemplateEnvelope holds envelope defaults applied when a request leaves them empty.
type TemplateEnvelope struct {
	From    string `json:"from,omitempty"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject,omitempty"`
}

type Template struct {
	ID          string
	Description string
	Format      Format
	Subject     string
	Content     string
	Variables   []Variable
	Envelope    TemplateEnvelope
	Builtin     bool
	CreatedBy   string
	CreatedAt   time.Time
}

type CreateTemplate struct {
	ID          string
	Description string
	Format      Format
	Subject     string
	Content     string
	Variables   []Variable
	Envelope    TemplateEnvelope
	CreatedBy   string
}
