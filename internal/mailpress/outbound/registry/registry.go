package registry

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/shandysiswandi/mailpress/internal/mailpress/entity"
	"github.com/shandysiswandi/mailpress/internal/pkg/goerror"
)

// Store persists user-defined templates.
type Store interface {
	GetTemplate(ctx context.Context, id string) (*entity.Template, error)
	ListTemplates(ctx context.Context) ([]entity.Template, error)
	CreateTemplate(ctx context.Context, in entity.CreateTemplate) (*entity.Template, error)
}

// Registry resolves templates from the built-in set first and the store second.
type Registry struct {
	store Store

	mu       sync.RWMutex
	builtins map[string]*entity.Template
}

func New(store Store) *Registry {
	return &Registry{
		store:    store,
		builtins: make(map[string]*entity.Template),
	}
}

// RegisterBuiltins adds templates to the built-in set. A template id that is
// already registered is kept and the duplicate skipped.
func (r *Registry) RegisterBuiltins(tpls ...entity.Template) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range tpls {
		tpl := tpls[i]
		if _, ok := r.builtins[tpl.ID]; ok {
			slog.Warn("registry: duplicate builtin template skipped", "template_id", tpl.ID)
			continue
		}
		tpl.Builtin = true
		r.builtins[tpl.ID] = &tpl
	}
}

func (r *Registry) builtin(id string) (*entity.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.builtins[id]
	return tpl, ok
}

// GetTemplate returns goerror.ErrNotFound when id is unknown.
func (r *Registry) GetTemplate(ctx context.Context, id string) (*entity.Template, error) {
	if tpl, ok := r.builtin(id); ok {
		return tpl, nil
	}

	if r.store == nil {
		return nil, goerror.ErrNotFound
	}

	return r.store.GetTemplate(ctx, id)
}

// GetTemplates lists built-in and stored templates sorted by id.
func (r *Registry) GetTemplates(ctx context.Context) ([]entity.Template, error) {
	r.mu.RLock()
	items := make([]entity.Template, 0, len(r.builtins))
	for _, tpl := range r.builtins {
		items = append(items, *tpl)
	}
	r.mu.RUnlock()

	if r.store != nil {
		stored, err := r.store.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		for _, tpl := range stored {
			if _, ok := r.builtin(tpl.ID); ok {
				continue
			}
			items = append(items, tpl)
		}
	}

	slices.SortFunc(items, func(a, b entity.Template) int { return cmp.Compare(a.ID, b.ID) })

	return items, nil
}

// CreateTemplate returns goerror.ErrConflict for built-in or existing ids.
func (r *Registry) CreateTemplate(ctx context.Context, in entity.CreateTemplate) (*entity.Template, error) {
	if _, ok := r.builtin(in.ID); ok {
		return nil, goerror.ErrConflict
	}

	if r.store == nil {
		return nil, errors.New("registry: template store is not configured")
	}

	return r.store.CreateTemplate(ctx, in)
}
