package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
	"github.com/shandysiswandi/mailpress/internal/pkg/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUsecase_MailScheduleAnonymousPlainBody(t *testing.T) {
	f := newFixture(t, Dependency{})
	ctx := context.Background()

	env := entity.Envelope{To: []string{"a@x.com"}}
	want := &entity.SendResult{ID: "job-1", Status: entity.SendStatusScheduled, ScheduledAt: time.Now()}

	f.engine.On("ScheduleMail", mock.Anything, entity.SendInstruction{
		Envelope: env,
		Body:     strPtr("hi"),
	}).Return(want, nil).Once()

	got, err := f.uc.MailSchedule(ctx, MailScheduleInput{Envelope: env, Body: strPtr("hi")})
	require.NoError(t, err)
	assert.Same(t, want, got)

	require.Len(t, f.factory.opts, 1)
	assert.Nil(t, f.factory.opts[0].Template)
	assert.Nil(t, f.factory.opts[0].AuthorizationUser)
	f.registry.AssertNotCalled(t, "GetTemplate", mock.Anything, mock.Anything)
}

func TestUsecase_MailScheduleTemplateWithOriginUser(t *testing.T) {
	f := newFixture(t, Dependency{})
	ctx := authed(context.Background(), "Bearer tok", "u1")

	env := entity.Envelope{To: []string{"sam@x.com"}}
	welcome := &entity.Template{ID: "welcome", Format: entity.FormatHTML, Content: "<p>{{.name}}</p>"}
	values := valueobject.JSONMap{"name": "Sam"}

	f.registry.On("GetTemplate", mock.Anything, "welcome").Return(welcome, nil).Once()
	f.engine.On("ScheduleMail", mock.Anything, entity.SendInstruction{
		Envelope: env,
		Values:   values,
	}).Return(&entity.SendResult{ID: "job-2", TemplateID: "welcome", OriginUserID: "u1"}, nil).Once()

	got, err := f.uc.MailSchedule(ctx, MailScheduleInput{
		Envelope: env,
		Template: &TemplateRef{ID: "welcome", Values: values},
	})
	require.NoError(t, err)
	assert.Equal(t, "job-2", got.ID)

	require.Len(t, f.factory.opts, 1)
	assert.Same(t, welcome, f.factory.opts[0].Template)
	assert.Equal(t, &entity.AuthorizationUser{ID: "u1", Authorization: "Bearer tok"}, f.factory.opts[0].AuthorizationUser)
}

func TestUsecase_MailScheduleOriginIsFirstOfMultiAuth(t *testing.T) {
	f := newFixture(t, Dependency{})
	ctx := authed(context.Background(), "Bearer a, Bearer b", "origin", "service")

	f.engine.On("ScheduleMail", mock.Anything, mock.Anything).Return(&entity.SendResult{ID: "job"}, nil).Once()

	_, err := f.uc.MailSchedule(ctx, MailScheduleInput{Body: strPtr("x")})
	require.NoError(t, err)

	require.Len(t, f.factory.opts, 1)
	assert.Equal(t, &entity.AuthorizationUser{ID: "origin", Authorization: "Bearer a, Bearer b"}, f.factory.opts[0].AuthorizationUser)
}

func TestUsecase_MailScheduleEmptyHeaderPassedAsGiven(t *testing.T) {
	f := newFixture(t, Dependency{})
	ctx := authed(context.Background(), "", "u1")

	f.engine.On("ScheduleMail", mock.Anything, mock.Anything).Return(nil, goerror.NewBusiness("Authorization credential is required", goerror.CodeUnauthorized)).Once()

	_, err := f.uc.MailSchedule(ctx, MailScheduleInput{Body: strPtr("x")})
	require.Error(t, err)

	require.Len(t, f.factory.opts, 1)
	assert.Equal(t, &entity.AuthorizationUser{ID: "u1", Authorization: ""}, f.factory.opts[0].AuthorizationUser)
}

func TestUsecase_MailScheduleValuesWithoutTemplateID(t *testing.T) {
	f := newFixture(t, Dependency{})
	values := valueobject.JSONMap{"k": "v"}

	f.engine.On("ScheduleMail", mock.Anything, entity.SendInstruction{Values: values}).Return(&entity.SendResult{}, nil).Once()

	_, err := f.uc.MailSchedule(context.Background(), MailScheduleInput{Template: &TemplateRef{Values: values}})
	require.NoError(t, err)

	require.Len(t, f.factory.opts, 1)
	assert.Nil(t, f.factory.opts[0].Template)
	f.registry.AssertNotCalled(t, "GetTemplate", mock.Anything, mock.Anything)
}

func TestUsecase_MailScheduleTemplateLookupFails(t *testing.T) {
	storeErr := errors.New("db down")

	tests := []struct {
		name     string
		lookup   error
		wantCode goerror.Code
		wantMsg  string
	}{
		{name: "not found", lookup: goerror.ErrNotFound, wantCode: goerror.CodeNotFound, wantMsg: "template not found"},
		{name: "store failure", lookup: storeErr, wantCode: goerror.CodeInternal, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Dependency{})
			f.registry.On("GetTemplate", mock.Anything, "missing").Return(nil, tt.lookup).Once()

			got, err := f.uc.MailSchedule(authed(context.Background(), "Bearer tok", "u1"), MailScheduleInput{
				Template: &TemplateRef{ID: "missing"},
			})
			require.Error(t, err)
			assert.Nil(t, got)

			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.wantCode, gerr.Code())
			assert.Equal(t, tt.wantMsg, gerr.Msg())

			assert.Empty(t, f.factory.opts)
			f.engine.AssertNotCalled(t, "ScheduleMail", mock.Anything, mock.Anything)
		})
	}
}

func TestUsecase_MailScheduleLookupCancellationPassesThrough(t *testing.T) {
	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		t.Run(cause.Error(), func(t *testing.T) {
			f := newFixture(t, Dependency{})
			f.registry.On("GetTemplate", mock.Anything, "welcome").Return(nil, cause).Once()

			got, err := f.uc.MailSchedule(context.Background(), MailScheduleInput{
				Template: &TemplateRef{ID: "welcome"},
			})
			assert.Nil(t, got)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, cause, err)

			var gerr *goerror.Error
			assert.False(t, errors.As(err, &gerr))
			f.engine.AssertNotCalled(t, "ScheduleMail", mock.Anything, mock.Anything)
		})
	}
}

func TestUsecase_MailScheduleEngineErrorPassesThrough(t *testing.T) {
	f := newFixture(t, Dependency{})
	engineErr := goerror.NewInvalidInput(nil, "body", "mail content is required")

	f.engine.On("ScheduleMail", mock.Anything, mock.Anything).Return(nil, engineErr).Once()

	got, err := f.uc.MailSchedule(context.Background(), MailScheduleInput{})
	assert.Nil(t, got)
	assert.Same(t, engineErr, err)
}
