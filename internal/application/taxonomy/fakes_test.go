package taxonomy

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

type memCategories struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*catalog.Category
}

func newMemCategories(categories ...*catalog.Category) *memCategories {
	m := &memCategories{byID: make(map[uuid.UUID]*catalog.Category)}
	for _, c := range categories {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCategories) FindByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memCategories) FindBySlug(_ context.Context, slug string) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memCategories) FindDefault(_ context.Context) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.IsDefault {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memCategories) FindAll(_ context.Context) ([]*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*catalog.Category, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCategories) Save(_ context.Context, c *catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[c.ID] = c
	return nil
}

type memMappings struct {
	mu    sync.Mutex
	rows  map[string]*catalog.CategoryMapping
	finds int
}

func newMemMappings() *memMappings {
	return &memMappings{rows: make(map[string]*catalog.CategoryMapping)}
}

func (m *memMappings) FindActive(_ context.Context, platform, label string) (*catalog.CategoryMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if row, ok := m.rows[platform+"|"+label]; ok && row.IsActive {
		return row, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memMappings) Create(_ context.Context, mapping *catalog.CategoryMapping) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mapping.Platform + "|" + mapping.ExternalLabel
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	m.rows[key] = mapping
	return true, nil
}

func (m *memMappings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// spyMatcher counts calls to the wrapped matcher
type spyMatcher struct {
	mu    sync.Mutex
	inner KeywordMatcher
	calls []string
}

func (s *spyMatcher) Match(label string) (string, bool) {
	s.mu.Lock()
	s.calls = append(s.calls, label)
	s.mu.Unlock()
	return s.inner.Match(label)
}

func (s *spyMatcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func mustCategory(slug, name string, isDefault bool) *catalog.Category {
	c, err := catalog.NewCategory(slug, name)
	if err != nil {
		panic(err)
	}
	c.IsDefault = isDefault
	return c
}
