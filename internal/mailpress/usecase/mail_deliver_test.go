package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/config"
	"github.com/shandysiswandi/mailpress/internal/pkg/idempotency"
	"github.com/shandysiswandi/mailpress/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDeliverFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  mailpress:
    delivery:
      max_attempts: 3
      base_delay_ms: 1
`))
	require.NoError(t, err)

	return newFixture(t, Dependency{
		Idempotency: idempotency.New(client, "test:"),
		Config:      cfg,
	})
}

func testJob() entity.MailJob {
	return entity.MailJob{
		ID: "job-1",
		Envelope: entity.Envelope{
			To:      []string{"a@example.com"},
			Cc:      []string{"c@example.com"},
			From:    "noreply@example.com",
			ReplyTo: "support@example.com",
			Subject: "Hello",
		},
		TextBody:     "text",
		HTMLBody:     "<p>html</p>",
		TemplateID:   "welcome",
		OriginUserID: "u1",
	}
}

func TestUsecase_DeliverMailOnce(t *testing.T) {
	f := newDeliverFixture(t)
	job := testJob()

	f.mail.On("Send", mock.Anything, mail.Message{
		From:     "noreply@example.com",
		ReplyTo:  "support@example.com",
		To:       []string{"a@example.com"},
		Cc:       []string{"c@example.com"},
		Subject:  "Hello",
		TextBody: "text",
		HTMLBody: "<p>html</p>",
		Headers: map[string]string{
			entity.HeaderJobID:      "job-1",
			entity.HeaderOriginUser: "u1",
		},
	}).Return(nil).Once()

	require.NoError(t, f.uc.DeliverMail(context.Background(), job))
	require.NoError(t, f.uc.DeliverMail(context.Background(), job))

	f.mail.AssertNumberOfCalls(t, "Send", 1)
}

func TestUsecase_DeliverMailRetries(t *testing.T) {
	f := newDeliverFixture(t)
	job := testJob()
	job.OriginUserID = ""

	f.mail.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
		_, ok := msg.Headers[entity.HeaderOriginUser]
		return !ok && msg.Headers[entity.HeaderJobID] == "job-1"
	})).Return(errors.New("421 try later")).Twice()
	f.mail.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, f.uc.DeliverMail(context.Background(), job))
	f.mail.AssertNumberOfCalls(t, "Send", 3)
}

func TestUsecase_DeliverMailGivesUpAndReleases(t *testing.T) {
	f := newDeliverFixture(t)
	job := testJob()

	sendErr := errors.New("550 mailbox unavailable")
	f.mail.On("Send", mock.Anything, mock.Anything).Return(sendErr).Times(3)

	err := f.uc.DeliverMail(context.Background(), job)
	assert.ErrorIs(t, err, sendErr)
	f.mail.AssertNumberOfCalls(t, "Send", 3)

	// released on failure, so a redelivery tries again
	f.mail.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, f.uc.DeliverMail(context.Background(), job))
	f.mail.AssertNumberOfCalls(t, "Send", 4)
}

func TestUsecase_DeliverMailRequiresID(t *testing.T) {
	f := newDeliverFixture(t)

	err := f.uc.DeliverMail(context.Background(), entity.MailJob{})
	require.Error(t, err)
	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
