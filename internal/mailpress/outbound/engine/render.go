package engine

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type rendered struct {
	subject string
	text    string
	html    string
}

type renderer struct {
	markdown goldmark.Markdown
}

func newRenderer() *renderer {
	return &renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// render expands the template content and, when withSubject is set, the
// template's own subject. A caller-supplied subject never passes through
// here; it is used as given.
func (e *Engine) render(values map[string]any, withSubject bool) (rendered, error) {
	var out rendered
	if e.template == nil {
		return out, nil
	}

	r := e.factory.renderer

	if withSubject {
		subject, err := r.text("subject", firstNonEmpty(e.template.Envelope.Subject, e.template.Subject), values)
		if err != nil {
			return rendered{}, goerror.NewInvalidInput(nil, "subject", err.Error())
		}
		out.subject = strings.TrimSpace(subject)
	}

	var err error

	switch e.template.Format.Ensure() {
	case entity.FormatHTML:
		out.html, err = r.html(e.template.ID, e.template.Content, values)
	case entity.FormatMarkdown:
		out.text, out.html, err = r.markdownBody(e.template.ID, e.template.Content, values)
	default:
		out.text, err = r.text(e.template.ID, e.template.Content, values)
	}
	if err != nil {
		return rendered{}, goerror.NewInvalidInput(nil, "template", err.Error())
	}

	return out, nil
}

func (r *renderer) text(name, src string, values map[string]any) (string, error) {
	t, err := texttemplate.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *renderer) html(name, src string, values map[string]any) (string, error) {
	t, err := htmltemplate.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// markdownBody returns the expanded markdown source as the text part and
// its HTML rendering.
func (r *renderer) markdownBody(name, src string, values map[string]any) (string, string, error) {
	source, err := r.text(name, src, values)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return "", "", err
	}

	return source, buf.String(), nil
}
