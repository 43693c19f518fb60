package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/mailpress/internal/mailpress"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.mailpress.enabled") {
		slog.Warn("module mailpress is disabled")
		return
	}

	if err := mailpress.New(mailpress.Dependency{
		Ctx:         a.ctx,
		DBConn:      a.dbConn,
		Goroutine:   a.goroutine,
		Enforcer:    a.casbin,
		Router:      a.router,
		Idempotency: a.idemp,
		Messaging:   a.messaging,
		Mail:        a.mail,
		Config:      a.config,
		Instrument:  a.ins,
		UUID:        a.uuid,
		Clock:       a.clock,
		Validator:   a.validator,
		JWT:         a.jwt,
	}); err != nil {
		slog.Error("failed to init module mailpress", "error", err)
		os.Exit(1)
	}
}
