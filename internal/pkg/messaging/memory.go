package messaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const defaultMemoryBuffer = 64

// MemoryConfig configures the in-process broker.
type MemoryConfig struct {
	// Buffer is the per-group queue length; Publish blocks when it is full.
	Buffer int
}

// Memory is an in-process broker with NATS-like semantics: every group
// subscribed to a subject receives each message once, consumers sharing a
// group split the stream, and nacked messages are not redelivered.
type Memory struct {
	buffer int
	done   chan struct{}

	mu       sync.Mutex
	closed   bool
	private  int
	subjects map[string]map[string]*memoryGroup
}

type memoryGroup struct {
	ch      chan *memoryMessage
	members int
}

// NewMemory constructs an in-process broker.
func NewMemory(cfg MemoryConfig) *Memory {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = defaultMemoryBuffer
	}

	return &Memory{
		buffer:   buffer,
		done:     make(chan struct{}),
		subjects: map[string]map[string]*memoryGroup{},
	}
}

// Close stops every consumer; further calls fail with io.ErrClosedPipe.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Publish hands the message to every group subscribed to destination.
// Messages for a subject without subscribers are dropped.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return PublishResult{}, io.ErrClosedPipe
	}
	groups := make([]*memoryGroup, 0, len(m.subjects[destination]))
	for _, g := range m.subjects[destination] {
		groups = append(groups, g)
	}
	m.mu.Unlock()

	now := time.Now()
	for _, g := range groups {
		delivery := &memoryMessage{
			subject:   destination,
			body:      append([]byte(nil), msg.Body...),
			headers:   append([]Header(nil), msg.Headers...),
			timestamp: now,
		}

		select {
		case g.ch <- delivery:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		case <-m.done:
			return PublishResult{}, io.ErrClosedPipe
		}
	}

	return PublishResult{Destination: destination, Timestamp: now}, nil
}

// Consume joins the group on source and blocks until ctx is done or the broker closes.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	key, g, err := m.join(source, co.group)
	if err != nil {
		return err
	}
	defer m.leave(source, key)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case msg := <-g.ch:
					if err := dispatch(ctx, "memory", msg, handler, co.autoAck); err != nil {
						slog.WarnContext(ctx, "memory settle failed", "subject", source, "error", err)
					}
				}
			}
		})
	}
	wg.Wait()

	select {
	case <-m.done:
		return io.ErrClosedPipe
	default:
		return ctx.Err()
	}
}

func (m *Memory) join(subject, group string) (string, *memoryGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", nil, io.ErrClosedPipe
	}

	groups, ok := m.subjects[subject]
	if !ok {
		groups = map[string]*memoryGroup{}
		m.subjects[subject] = groups
	}

	// Consumers without a group each get a private stream.
	key := group
	if key == "" {
		m.private++
		key = fmt.Sprintf("\x00private-%d", m.private)
	}
	g, ok := groups[key]
	if !ok {
		g = &memoryGroup{ch: make(chan *memoryMessage, m.buffer)}
		groups[key] = g
	}
	g.members++
	return key, g, nil
}

func (m *Memory) leave(subject, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups := m.subjects[subject]
	if g, ok := groups[key]; ok {
		g.members--
		if g.members <= 0 {
			delete(groups, key)
		}
	}
	if len(groups) == 0 {
		delete(m.subjects, subject)
	}
}

// subscribers reports how many groups listen on subject.
func (m *Memory) subscribers(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subjects[subject])
}

type memoryMessage struct {
	responder

	subject   string
	body      []byte
	headers   []Header
	timestamp time.Time
}

func (m *memoryMessage) Body() []byte              { return m.body }
func (m *memoryMessage) Headers() []Header         { return m.headers }
func (m *memoryMessage) Header(key string) string  { return headerValue(m.headers, key) }
func (m *memoryMessage) Subject() string           { return m.subject }
func (m *memoryMessage) Timestamp() time.Time      { return m.timestamp }
func (m *memoryMessage) Ack(context.Context) error { m.claim(); return nil }

func (m *memoryMessage) Nack(context.Context) error {
	if m.claim() {
		slog.Warn("memory broker dropped nacked message", "subject", m.subject)
	}
	return nil
}
