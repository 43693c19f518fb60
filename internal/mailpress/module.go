package mailpress

import (
	"context"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/mailpress/inbound"
	"github.com/shandysiswandi/mailpress/internal/mailpress/outbound/db"
	"github.com/shandysiswandi/mailpress/internal/mailpress/outbound/email"
	"github.com/shandysiswandi/mailpress/internal/mailpress/outbound/engine"
	"github.com/shandysiswandi/mailpress/internal/mailpress/outbound/registry"
	"github.com/shandysiswandi/mailpress/internal/mailpress/usecase"
	"github.com/shandysiswandi/mailpress/internal/pkg/clock"
	"github.com/shandysiswandi/mailpress/internal/pkg/config"
	"github.com/shandysiswandi/mailpress/internal/pkg/goroutine"
	"github.com/shandysiswandi/mailpress/internal/pkg/idempotency"
	"github.com/shandysiswandi/mailpress/internal/pkg/instrument"
	"github.com/shandysiswandi/mailpress/internal/pkg/jwt"
	"github.com/shandysiswandi/mailpress/internal/pkg/mail"
	"github.com/shandysiswandi/mailpress/internal/pkg/messaging"
	"github.com/shandysiswandi/mailpress/internal/pkg/router"
	"github.com/shandysiswandi/mailpress/internal/pkg/uid"
	"github.com/shandysiswandi/mailpress/internal/pkg/validator"
)

type Dependency struct {
	Ctx context.Context
	// DBConn is optional; templates are kept in memory without it.
	DBConn      *pgxpool.Pool
	Goroutine   *goroutine.Manager         `validate:"required"`
	Enforcer    *casbin.Enforcer           `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	var store registry.Store = registry.NewMemoryStore(dep.Clock.Now)
	if dep.DBConn != nil {
		store = db.NewDB(dep.DBConn, dep.Instrument)
	}

	reg := registry.New(store)
	reg.RegisterBuiltins(registry.Builtins()...)

	factory := engine.NewFactory(engine.Dependency{
		Publisher:   dep.Messaging,
		Validator:   dep.Validator,
		UUID:        dep.UUID,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
		DefaultFrom: dep.Config.GetString("mail.from"),
		Destination: dep.Config.GetString("modules.mailpress.destination"),
	})

	uc := usecase.New(usecase.Dependency{
		Registry: reg,
		EngineFactory: usecase.EngineFactoryFunc(func(opts entity.EngineOptions) usecase.Engine {
			return factory.NewEngine(opts)
		}),
		RepoMail:    email.New(dep.Mail, dep.Instrument),
		Idempotency: dep.Idempotency,
		Enforcer:    dep.Enforcer,
		Validator:   dep.Validator,
		Config:      dep.Config,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.JWT)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
