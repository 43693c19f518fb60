package registry

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
)

// MemoryStore keeps templates in process. It backs the registry when no
// database is configured.
type MemoryStore struct {
	now func() time.Time

	mu    sync.RWMutex
	items map[string]entity.Template
	order []string
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, items: make(map[string]entity.Template)}
}

func (m *MemoryStore) GetTemplate(_ context.Context, id string) (*entity.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tpl, ok := m.items[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &tpl, nil
}

func (m *MemoryStore) ListTemplates(context.Context) ([]entity.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]entity.Template, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.items[id])
	}
	return items, nil
}

func (m *MemoryStore) CreateTemplate(_ context.Context, in entity.CreateTemplate) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[in.ID]; ok {
		return nil, goerror.ErrConflict
	}

	tpl := entity.Template{
		ID:          in.ID,
		Description: in.Description,
		Format:      in.Format,
		Subject:     in.Subject,
		Content:     in.Content,
		Variables:   in.Variables,
		Envelope:    in.Envelope,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   m.now(),
	}
	m.items[in.ID] = tpl
	m.order = append(m.order, in.ID)

	return &tpl, nil
}
