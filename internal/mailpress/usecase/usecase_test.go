package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/instrument"
	"github.com/shandysiswandi/mailpress/internal/pkg/jwt"
	"github.com/shandysiswandi/mailpress/internal/pkg/mail"
	"github.com/shandysiswandi/mailpress/internal/pkg/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) GetTemplate(ctx context.Context, id string) (*entity.Template, error) {
	args := m.Called(ctx, id)
	tpl, _ := args.Get(0).(*entity.Template)
	return tpl, args.Error(1)
}

func (m *mockRegistry) GetTemplates(ctx context.Context) ([]entity.Template, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]entity.Template)
	return items, args.Error(1)
}

func (m *mockRegistry) CreateTemplate(ctx context.Context, in entity.CreateTemplate) (*entity.Template, error) {
	args := m.Called(ctx, in)
	tpl, _ := args.Get(0).(*entity.Template)
	return tpl, args.Error(1)
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) ScheduleMail(ctx context.Context, in entity.SendInstruction) (*entity.SendResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*entity.SendResult)
	return res, args.Error(1)
}

// recordingFactory hands out one engine and remembers every construction.
type recordingFactory struct {
	engine Engine
	opts   []entity.EngineOptions
}

func (f *recordingFactory) NewEngine(opts entity.EngineOptions) Engine {
	f.opts = append(f.opts, opts)
	return f.engine
}

type mockMail struct {
	mock.Mock
}

func (m *mockMail) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type fakeEnforcer struct {
	admins map[string]bool
	err    error
}

func (f fakeEnforcer) Enforce(rvals ...any) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	sub, _ := rvals[0].(string)
	return f.admins[sub], nil
}

type fixture struct {
	uc       *Usecase
	registry *mockRegistry
	engine   *mockEngine
	factory  *recordingFactory
	mail     *mockMail
}

func newFixture(t *testing.T, dep Dependency) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := &fixture{
		registry: &mockRegistry{},
		engine:   &mockEngine{},
		mail:     &mockMail{},
	}
	f.factory = &recordingFactory{engine: f.engine}

	dep.Registry = f.registry
	dep.EngineFactory = f.factory
	dep.RepoMail = f.mail
	dep.Validator = v
	dep.Instrument = instrument.NewNoop()
	if dep.Enforcer == nil {
		dep.Enforcer = fakeEnforcer{admins: map[string]bool{"admin-1": true}}
	}

	f.uc = New(dep)

	t.Cleanup(func() {
		f.registry.AssertExpectations(t)
		f.engine.AssertExpectations(t)
		f.mail.AssertExpectations(t)
	})

	return f
}

func authed(ctx context.Context, header string, userIDs ...string) context.Context {
	claims := make([]jwt.Claims, 0, len(userIDs))
	for _, id := range userIDs {
		claims = append(claims, jwt.Claims{UserID: id, UserEmail: id + "@example.com"})
	}

	ctx = jwt.SetAuthorization(ctx, header)
	if len(claims) > 0 {
		ctx = jwt.SetAuth(ctx, claims[0])
		ctx = jwt.SetMultiAuth(ctx, claims)
	}
	return ctx
}
