package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/config"
	"github.com/shandysiswandi/mailpress/internal/pkg/goroutine"
	"github.com/shandysiswandi/mailpress/internal/pkg/instrument"
	"github.com/shandysiswandi/mailpress/internal/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordConsumer struct {
	mu   sync.Mutex
	jobs []entity.MailJob
	cIDs []string
	err  error
}

func (r *recordConsumer) DeliverMail(ctx context.Context, job entity.MailJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = append(r.jobs, job)
	r.cIDs = append(r.cIDs, instrument.GetCorrelationID(ctx))
	return r.err
}

func (r *recordConsumer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

type stubMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m stubMessage) Body() []byte               { return m.body }
func (m stubMessage) Headers() []messaging.Header { return m.headers }
func (m stubMessage) Subject() string             { return entity.MailScheduledDestination }
func (m stubMessage) Timestamp() time.Time        { return time.Time{} }
func (m stubMessage) Ack(context.Context) error   { return nil }
func (m stubMessage) Nack(context.Context) error  { return nil }

func (m stubMessage) Header(key string) string {
	for _, h := range m.headers {
		if h.Key == key {
			return h.Value
		}
	}
	return ""
}

func jobBody(t *testing.T, id string) []byte {
	t.Helper()

	body, err := json.Marshal(entity.MailJob{ID: id, Envelope: entity.Envelope{To: []string{"a@example.com"}}})
	require.NoError(t, err)
	return body
}

func TestMQHandler_MailScheduledDelivery(t *testing.T) {
	t.Run("delivers with upstream correlation id", func(t *testing.T) {
		rc := &recordConsumer{}
		h := &MQHandler{uc: rc, uuid: fixedID("generated"), ins: instrument.NewNoop()}

		err := h.MailScheduledDelivery(context.Background(), stubMessage{
			body:    jobBody(t, "job-1"),
			headers: []messaging.Header{{Key: entity.HeaderCorrelationID, Value: "cid-upstream"}},
		})
		require.NoError(t, err)
		require.Len(t, rc.jobs, 1)
		assert.Equal(t, "job-1", rc.jobs[0].ID)
		assert.Equal(t, "cid-upstream", rc.cIDs[0])
	})

	t.Run("generates correlation id", func(t *testing.T) {
		rc := &recordConsumer{}
		h := &MQHandler{uc: rc, uuid: fixedID("generated"), ins: instrument.NewNoop()}

		require.NoError(t, h.MailScheduledDelivery(context.Background(), stubMessage{body: jobBody(t, "job-2")}))
		assert.Equal(t, "generated", rc.cIDs[0])
	})

	t.Run("drops malformed body", func(t *testing.T) {
		rc := &recordConsumer{}
		h := &MQHandler{uc: rc, uuid: fixedID("generated"), ins: instrument.NewNoop()}

		require.NoError(t, h.MailScheduledDelivery(context.Background(), stubMessage{body: []byte("{")}))
		assert.Empty(t, rc.jobs)
	})

	t.Run("returns delivery error", func(t *testing.T) {
		deliverErr := errors.New("smtp down")
		rc := &recordConsumer{err: deliverErr}
		h := &MQHandler{uc: rc, uuid: fixedID("generated"), ins: instrument.NewNoop()}

		assert.ErrorIs(t, h.MailScheduledDelivery(context.Background(), stubMessage{body: jobBody(t, "job-3")}), deliverErr)
	})
}

func TestRegisterMQConsumer(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  mailpress:
    consumer_names: mailpress-delivery
    consumer_concurrency: 2
`))
	require.NoError(t, err)

	broker := messaging.NewMemory(messaging.MemoryConfig{})
	routine := goroutine.NewManager(4)
	rc := &recordConsumer{}

	body := jobBody(t, "job-1")
	ctx, cancel := context.WithCancel(context.Background())
	RegisterMQConsumer(ctx, cfg, routine, broker, fixedID("cid"), rc, instrument.NewNoop())

	require.Eventually(t, func() bool {
		if _, err := broker.Publish(ctx, entity.MailScheduledDestination, messaging.OutgoingMessage{Body: body}); err != nil {
			return false
		}
		return rc.count() > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	_ = broker.Close()
	_ = routine.Wait()
}

func TestRegisterMQConsumer_Disabled(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`modules: {}`))
	require.NoError(t, err)

	routine := goroutine.NewManager(1)
	RegisterMQConsumer(context.Background(), cfg, routine, messaging.NewMemory(messaging.MemoryConfig{}), fixedID("cid"), &recordConsumer{}, instrument.NewNoop())

	assert.NoError(t, routine.Wait())
}
