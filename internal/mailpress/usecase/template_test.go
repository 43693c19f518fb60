package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func codeOf(t *testing.T, err error) goerror.Code {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	return gerr.Code()
}

func TestUsecase_TemplateAccess(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		enforcer enforcer
		wantCode goerror.Code
	}{
		{name: "anonymous", ctx: context.Background(), wantCode: goerror.CodeUnauthorized},
		{name: "not admin", ctx: authed(context.Background(), "Bearer t", "user-1"), wantCode: goerror.CodeForbidden},
		{
			name:     "enforcer failure",
			ctx:      authed(context.Background(), "Bearer t", "admin-1"),
			enforcer: fakeEnforcer{err: errors.New("model broken")},
			wantCode: goerror.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Dependency{Enforcer: tt.enforcer})

			_, err := f.uc.TemplateGet(tt.ctx, TemplateGetInput{ID: "welcome"})
			assert.Equal(t, tt.wantCode, codeOf(t, err))

			_, err = f.uc.TemplateList(tt.ctx)
			assert.Equal(t, tt.wantCode, codeOf(t, err))

			_, err = f.uc.TemplateCreate(tt.ctx, TemplateCreateInput{ID: "x", Format: "text", Content: "x"})
			assert.Equal(t, tt.wantCode, codeOf(t, err))
		})
	}
}

func TestUsecase_TemplateGet(t *testing.T) {
	ctx := authed(context.Background(), "Bearer t", "admin-1")

	t.Run("found", func(t *testing.T) {
		f := newFixture(t, Dependency{})
		tpl := &entity.Template{ID: "welcome", Builtin: true}
		f.registry.On("GetTemplate", mock.Anything, "welcome").Return(tpl, nil).Once()

		got, err := f.uc.TemplateGet(ctx, TemplateGetInput{ID: "welcome"})
		require.NoError(t, err)
		assert.Same(t, tpl, got)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, Dependency{})
		f.registry.On("GetTemplate", mock.Anything, "nope").Return(nil, goerror.ErrNotFound).Once()

		_, err := f.uc.TemplateGet(ctx, TemplateGetInput{ID: "nope"})
		assert.Equal(t, goerror.CodeNotFound, codeOf(t, err))
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(t, Dependency{})

		_, err := f.uc.TemplateGet(ctx, TemplateGetInput{ID: "Not A Slug"})
		assert.Equal(t, goerror.CodeInvalidInput, codeOf(t, err))
	})
}

func TestUsecase_TemplateList(t *testing.T) {
	ctx := authed(context.Background(), "Bearer t", "admin-1")
	f := newFixture(t, Dependency{})

	items := []entity.Template{{ID: "a"}, {ID: "b"}}
	f.registry.On("GetTemplates", mock.Anything).Return(items, nil).Once()

	got, err := f.uc.TemplateList(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestUsecase_TemplateCreate(t *testing.T) {
	ctx := authed(context.Background(), "Bearer t", "admin-1")

	valid := TemplateCreateInput{
		ID:      " invoice ",
		Format:  "Markdown",
		Subject: "Invoice {{.number}}",
		Content: "Total: {{.total}}",
		Variables: []TemplateVariableInput{
			{Name: "number", Required: true},
			{Name: "total", Default: "0"},
		},
		Envelope: TemplateEnvelopeInput{From: "billing@example.com"},
	}

	t.Run("created", func(t *testing.T) {
		f := newFixture(t, Dependency{})
		want := &entity.Template{ID: "invoice"}

		f.registry.On("CreateTemplate", mock.Anything, entity.CreateTemplate{
			ID:      "invoice",
			Format:  entity.FormatMarkdown,
			Subject: "Invoice {{.number}}",
			Content: "Total: {{.total}}",
			Variables: []entity.Variable{
				{Name: "number", Required: true},
				{Name: "total", Default: "0"},
			},
			Envelope:  entity.TemplateEnvelope{From: "billing@example.com"},
			CreatedBy: "admin-1",
		}).Return(want, nil).Once()

		got, err := f.uc.TemplateCreate(ctx, valid)
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("conflict", func(t *testing.T) {
		f := newFixture(t, Dependency{})
		f.registry.On("CreateTemplate", mock.Anything, mock.Anything).Return(nil, goerror.ErrConflict).Once()

		_, err := f.uc.TemplateCreate(ctx, valid)
		assert.Equal(t, goerror.CodeConflict, codeOf(t, err))
	})

	invalid := []struct {
		name string
		mut  func(in *TemplateCreateInput)
	}{
		{name: "bad format", mut: func(in *TemplateCreateInput) { in.Format = "pdf" }},
		{name: "empty content", mut: func(in *TemplateCreateInput) { in.Content = "" }},
		{name: "bad id", mut: func(in *TemplateCreateInput) { in.ID = "Has Spaces" }},
		{name: "bad from", mut: func(in *TemplateCreateInput) { in.Envelope.From = "nope" }},
		{name: "duplicate variable", mut: func(in *TemplateCreateInput) {
			in.Variables = []TemplateVariableInput{{Name: "a"}, {Name: "a"}}
		}},
		{name: "unparsable content", mut: func(in *TemplateCreateInput) { in.Content = "{{.total" }},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Dependency{})

			in := valid
			in.Variables = append([]TemplateVariableInput(nil), valid.Variables...)
			tt.mut(&in)

			_, err := f.uc.TemplateCreate(ctx, in)
			assert.Equal(t, goerror.CodeInvalidInput, codeOf(t, err))
			f.registry.AssertNotCalled(t, "CreateTemplate", mock.Anything, mock.Anything)
		})
	}
}
