package registry

import "github.com/shandysiswandi/mailpress/internal/mailpress/entity"

// Builtins returns the templates shipped with the service.
func Builtins() []entity.Template {
	return []entity.Template{
		{
			ID:          "welcome",
			Description: "Greets a newly registered user.",
			Format:      entity.FormatHTML,
			Subject:     "Welcome, {{.name}}",
			Content: `<h1>Welcome, {{.name}}!</h1>
<p>Your account at {{.product}} is ready.</p>
{{if .action_url}}<p><a href="{{.action_url}}">Get started</a></p>{{end}}`,
			Variables: []entity.Variable{
				{Name: "name", Required: true},
				{Name: "product", Default: "Mailpress"},
				{Name: "action_url"},
			},
			Builtin: true,
		},
		{
			ID:          "password-reset",
			Description: "Sends a password reset link.",
			Format:      entity.FormatMarkdown,
			Subject:     "Reset your password",
			Content: `Hi {{.name}},

Someone asked to reset the password of your account.
[Choose a new password]({{.reset_url}})

The link expires in {{.expires_in}}. If this was not you, ignore this message.`,
			Variables: []entity.Variable{
				{Name: "name", Default: "there"},
				{Name: "reset_url", Required: true},
				{Name: "expires_in", Default: "30 minutes"},
			},
			Builtin: true,
		},
		{
			ID:          "notification",
			Description: "Generic plain-text notification.",
			Format:      entity.FormatText,
			Subject:     "{{.title}}",
			Content:     "{{.message}}\n",
			Variables: []entity.Variable{
				{Name: "title", Default: "Notification"},
				{Name: "message", Required: true},
			},
			Builtin: true,
		},
	}
}
