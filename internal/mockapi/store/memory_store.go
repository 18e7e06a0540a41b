package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

type memAsset struct {
	meta    domain.Asset
	content []byte
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	projects    map[string]*domain.Project
	order       []string
	assets      map[string][]*memAsset // by project id
	processes   map[string][]*domain.Process
	pendingKeys map[string]string // by email
	apiKeys     map[string]string // by user id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:    make(map[string]*domain.Project),
		assets:      make(map[string][]*memAsset),
		processes:   make(map[string][]*domain.Process),
		pendingKeys: make(map[string]string),
		apiKeys:     make(map[string]string),
	}
}

func (s *MemoryStore) CreateProject(_ context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.projects[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *MemoryStore) GetProject(_ context.Context, projectID string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return s.projectView(p), nil
}

func (s *MemoryStore) ListProjects(_ context.Context, page domain.Page) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.projectView(s.projects[id]))
	}
	return paginate(out, page), nil
}

// projectView fills child ids; callers hold the read lock.
func (s *MemoryStore) projectView(p *domain.Project) *domain.Project {
	cp := *p
	cp.AssetIDs = nil
	cp.ProcessIDs = nil
	for _, a := range s.assets[p.ID] {
		cp.AssetIDs = append(cp.AssetIDs, a.meta.ID)
	}
	for _, pr := range s.processes[p.ID] {
		cp.ProcessIDs = append(cp.ProcessIDs, pr.ID)
	}
	return &cp
}

func (s *MemoryStore) DeleteProject(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		return ErrProjectNotFound
	}
	delete(s.projects, projectID)
	delete(s.assets, projectID)
	delete(s.processes, projectID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == projectID })
	return nil
}

func (s *MemoryStore) AddAsset(_ context.Context, a *domain.Asset, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[a.ProjectID]; !ok {
		return ErrProjectNotFound
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Size = int64(len(content))
	s.assets[a.ProjectID] = append(s.assets[a.ProjectID], &memAsset{meta: *a, content: slices.Clone(content)})
	return nil
}

func (s *MemoryStore) ListAssets(_ context.Context, projectID string, page domain.Page) ([]domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.projects[projectID]; !ok {
		return nil, ErrProjectNotFound
	}
	out := make([]domain.Asset, 0, len(s.assets[projectID]))
	for _, a := range s.assets[projectID] {
		out = append(out, a.meta)
	}
	return paginate(out, page), nil
}

func (s *MemoryStore) GetAssetContent(_ context.Context, projectID, assetID string) (*domain.Asset, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.projects[projectID]; !ok {
		return nil, nil, ErrProjectNotFound
	}
	for _, a := range s.assets[projectID] {
		if a.meta.ID == assetID {
			meta := a.meta
			return &meta, slices.Clone(a.content), nil
		}
	}
	return nil, nil, ErrAssetNotFound
}

func (s *MemoryStore) DeleteAsset(_ context.Context, projectID, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		return ErrProjectNotFound
	}
	before := len(s.assets[projectID])
	s.assets[projectID] = slices.DeleteFunc(s.assets[projectID], func(a *memAsset) bool { return a.meta.ID == assetID })
	if len(s.assets[projectID]) == before {
		return ErrAssetNotFound
	}
	return nil
}

func (s *MemoryStore) AddProcess(_ context.Context, p *domain.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ProjectID]; !ok {
		return ErrProjectNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	cp := *p
	s.processes[p.ProjectID] = append(s.processes[p.ProjectID], &cp)
	return nil
}

func (s *MemoryStore) ListProcesses(_ context.Context, projectID string) ([]domain.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.projects[projectID]; !ok {
		return nil, ErrProjectNotFound
	}
	out := make([]domain.Process, 0, len(s.processes[projectID]))
	for _, p := range s.processes[projectID] {
		out = append(out, *p)
	}
	return out, nil
}

func (s *MemoryStore) PendingProcesses(_ context.Context) ([]domain.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Process
	for _, id := range s.order {
		for _, p := range s.processes[id] {
			if p.Status == domain.StatusPending {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateProcess(_ context.Context, p *domain.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.processes[p.ProjectID] {
		if existing.ID == p.ID {
			p.UpdatedAt = time.Now().UTC()
			*existing = *p
			return nil
		}
	}
	return ErrProcessNotFound
}

func (s *MemoryStore) SetPendingAPIKey(_ context.Context, email, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingKeys[email] = key
	return nil
}

func (s *MemoryStore) PendingAPIKey(_ context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.pendingKeys[email]
	if !ok {
		return "", ErrAPIKeyNotFound
	}
	return key, nil
}

func (s *MemoryStore) SetAPIKey(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys[userID] = key
	return nil
}

func (s *MemoryStore) GetAPIKey(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.apiKeys[userID]
	if !ok {
		return "", ErrAPIKeyNotFound
	}
	return key, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
