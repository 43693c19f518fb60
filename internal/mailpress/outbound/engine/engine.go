package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/clock"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/shandysiswandi/mailpress/internal/pkg/instrument"
	"github.com/shandysiswandi/mailpress/internal/pkg/messaging"
	"github.com/shandysiswandi/mailpress/internal/pkg/uid"
	"github.com/shandysiswandi/mailpress/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

type Dependency struct {
	Publisher  messaging.Publisher
	Validator  validator.Validator
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	// DefaultFrom is used when neither the request nor the template sets a sender.
	DefaultFrom string
	// Destination overrides entity.MailScheduledDestination.
	Destination string
}

// Factory builds engines that share publishing and rendering dependencies.
type Factory struct {
	publisher   messaging.Publisher
	validator   validator.Validator
	uuid        uid.StringID
	clock       clock.Clocker
	ins         instrument.Instrumentation
	defaultFrom string
	destination string
	renderer    *renderer
	scheduled   metric.Int64Counter
}

func NewFactory(dep Dependency) *Factory {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	destination := dep.Destination
	if destination == "" {
		destination = entity.MailScheduledDestination
	}

	var scheduled metric.Int64Counter = metricnoop.Int64Counter{}
	counter, err := ins.Meter("mailpress.outbound.engine").Int64Counter("mailpress.mail.scheduled",
		metric.WithDescription("Number of mails scheduled for delivery"))
	if err != nil {
		slog.Error("failed to create mail scheduled counter", "error", err)
	} else {
		scheduled = counter
	}

	return &Factory{
		publisher:   dep.Publisher,
		validator:   dep.Validator,
		uuid:        dep.UUID,
		clock:       dep.Clock,
		ins:         ins,
		defaultFrom: dep.DefaultFrom,
		destination: destination,
		renderer:    newRenderer(),
		scheduled:   scheduled,
	}
}

// NewEngine returns an engine scoped to one template and originating user.
func (f *Factory) NewEngine(opts entity.EngineOptions) *Engine {
	return &Engine{factory: f, template: opts.Template, user: opts.AuthorizationUser}
}

type Engine struct {
	factory  *Factory
	template *entity.Template
	user     *entity.AuthorizationUser
}

// envelopeRules is validated after defaults are merged in.
type envelopeRules struct {
	To      []string `json:"to" validate:"required,min=1,dive,required,email"`
	Cc      []string `json:"cc" validate:"omitempty,dive,required,email"`
	Bcc     []string `json:"bcc" validate:"omitempty,dive,required,email"`
	From    string   `json:"from" validate:"required,email"`
	ReplyTo string   `json:"reply_to" validate:"omitempty,email"`
}

// ScheduleMail renders the instruction and publishes it as a MailJob.
func (e *Engine) ScheduleMail(ctx context.Context, in entity.SendInstruction) (_ *entity.SendResult, err error) {
	ctx, span := e.factory.ins.Tracer("mailpress.outbound.engine").Start(ctx, "ScheduleMail")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if e.user != nil && strings.TrimSpace(e.user.Authorization) == "" {
		return nil, goerror.NewBusiness("Authorization credential is required", goerror.CodeUnauthorized)
	}

	env := e.mergeEnvelope(in.Envelope)

	values, err := e.resolveValues(in)
	if err != nil {
		return nil, err
	}

	content, err := e.render(values, env.Subject == "")
	if err != nil {
		return nil, err
	}
	if env.Subject == "" {
		env.Subject = content.subject
	}

	if in.Body != nil && *in.Body != "" {
		content.text = *in.Body
	}
	if in.BodyHTML != nil && *in.BodyHTML != "" {
		content.html = *in.BodyHTML
	}

	if err := e.factory.validator.Validate(envelopeRules{
		To:      env.To,
		Cc:      env.Cc,
		Bcc:     env.Bcc,
		From:    env.From,
		ReplyTo: env.ReplyTo,
	}); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if strings.TrimSpace(content.text) == "" && strings.TrimSpace(content.html) == "" {
		return nil, goerror.NewInvalidInput(nil, "body", "mail content is required")
	}

	job := entity.MailJob{
		ID:          e.factory.uuid.Generate(),
		Envelope:    env,
		TextBody:    content.text,
		HTMLBody:    content.html,
		ScheduledAt: e.factory.clock.Now(),
	}
	if e.template != nil {
		job.TemplateID = e.template.ID
	}
	if e.user != nil {
		job.OriginUserID = e.user.ID
	}

	span.SetAttributes(
		attribute.String("mail.job_id", job.ID),
		attribute.String("mail.template_id", job.TemplateID),
		attribute.Int("mail.recipients", len(env.To)+len(env.Cc)+len(env.Bcc)),
	)

	if err := e.publish(ctx, job); err != nil {
		slog.ErrorContext(ctx, "failed to publish mail job", "job_id", job.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	e.factory.scheduled.Add(ctx, 1, metric.WithAttributes(attribute.Bool("mail.templated", job.TemplateID != "")))
	slog.InfoContext(ctx, "mail scheduled", "job_id", job.ID, "template_id", job.TemplateID, "origin_user_id", job.OriginUserID)

	return &entity.SendResult{
		ID:           job.ID,
		Status:       entity.SendStatusScheduled,
		ScheduledAt:  job.ScheduledAt,
		OriginUserID: job.OriginUserID,
		TemplateID:   job.TemplateID,
	}, nil
}

func (e *Engine) mergeEnvelope(in entity.Envelope) entity.Envelope {
	env := entity.Envelope{
		To:      trimAll(in.To),
		Cc:      trimAll(in.Cc),
		Bcc:     trimAll(in.Bcc),
		From:    strings.TrimSpace(in.From),
		ReplyTo: strings.TrimSpace(in.ReplyTo),
		Subject: strings.TrimSpace(in.Subject),
	}

	if e.template != nil {
		env.From = firstNonEmpty(env.From, e.template.Envelope.From)
		env.ReplyTo = firstNonEmpty(env.ReplyTo, e.template.Envelope.ReplyTo)
	}
	env.From = firstNonEmpty(env.From, e.factory.defaultFrom)

	return env
}

// resolveValues checks declared variables and fills defaults. Optional
// variables without a default resolve to "".
func (e *Engine) resolveValues(in entity.SendInstruction) (map[string]any, error) {
	values := map[string]any(in.Values.Clone())
	if values == nil {
		values = map[string]any{}
	}

	if e.template == nil {
		return values, nil
	}

	var missing []string
	for _, v := range e.template.Variables {
		cur, ok := values[v.Name]
		if ok && !isBlank(cur) {
			continue
		}
		if v.Required && v.Default == "" {
			missing = append(missing, v.Name, "is required")
			continue
		}
		values[v.Name] = v.Default
	}

	if len(missing) > 0 {
		return nil, goerror.NewInvalidInput(nil, missing...)
	}

	return values, nil
}

func (e *Engine) publish(ctx context.Context, job entity.MailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	headers := []messaging.Header{
		{Key: entity.HeaderCorrelationID, Value: instrument.GetCorrelationID(ctx)},
		{Key: entity.HeaderJobID, Value: job.ID},
	}
	if job.OriginUserID != "" {
		headers = append(headers, messaging.Header{Key: entity.HeaderOriginUser, Value: job.OriginUserID})
	}

	_, err = e.factory.publisher.Publish(ctx, e.factory.destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(job.ID),
		Headers: headers,
	})
	return err
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}

	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}
