package usecase

import (
	"context"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/config"
	"github.com/shandysiswandi/mailpress/internal/pkg/idempotency"
	"github.com/shandysiswandi/mailpress/internal/pkg/instrument"
	"github.com/shandysiswandi/mailpress/internal/pkg/mail"
	"github.com/shandysiswandi/mailpress/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// Registry resolves and stores templates.
type Registry interface {
	GetTemplate(ctx context.Context, id string) (*entity.Template, error)
	GetTemplates(ctx context.Context) ([]entity.Template, error)
	CreateTemplate(ctx context.Context, in entity.CreateTemplate) (*entity.Template, error)
}

// Engine renders and schedules one mail.
type Engine interface {
	ScheduleMail(ctx context.Context, in entity.SendInstruction) (*entity.SendResult, error)
}

// EngineFactory builds an Engine per call.
type EngineFactory interface {
	NewEngine(opts entity.EngineOptions) Engine
}

// EngineFactoryFunc adapts a function to EngineFactory.
type EngineFactoryFunc func(opts entity.EngineOptions) Engine

func (f EngineFactoryFunc) NewEngine(opts entity.EngineOptions) Engine {
	return f(opts)
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	registry  Registry
	engines   EngineFactory
	repoMail  repoMail
	idemp     idempotency.Idempotency
	enforcer  enforcer
	validator validator.Validator
	cfg       config.Config
	ins       instrument.Instrumentation
}

type Dependency struct {
	Registry      Registry
	EngineFactory EngineFactory
	RepoMail      repoMail
	Idempotency   idempotency.Idempotency
	Enforcer      enforcer
	Validator     validator.Validator
	Config        config.Config
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		registry:  dep.Registry,
		engines:   dep.EngineFactory,
		repoMail:  dep.RepoMail,
		idemp:     dep.Idempotency,
		enforcer:  dep.Enforcer,
		validator: dep.Validator,
		cfg:       dep.Config,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("mailpress.usecase").Start(ctx, name)
}
