// Package store persists the mock backend's projects, assets, processes and
// API keys.
package store

import (
	"context"
	"errors"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrProcessNotFound = errors.New("process not found")
	ErrAPIKeyNotFound  = errors.New("api key not found")
)

// Store is implemented by MemoryStore and RedisStore. Lists are ordered by
// creation time, oldest first.
type Store interface {
	CreateProject(ctx context.Context, p *domain.Project) error
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)
	ListProjects(ctx context.Context, page domain.Page) ([]domain.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	AddAsset(ctx context.Context, a *domain.Asset, content []byte) error
	ListAssets(ctx context.Context, projectID string, page domain.Page) ([]domain.Asset, error)
	GetAssetContent(ctx context.Context, projectID, assetID string) (*domain.Asset, []byte, error)
	DeleteAsset(ctx context.Context, projectID, assetID string) error

	AddProcess(ctx context.Context, p *domain.Process) error
	ListProcesses(ctx context.Context, projectID string) ([]domain.Process, error)
	// PendingProcesses returns pending processes of every project.
	PendingProcesses(ctx context.Context) ([]domain.Process, error)
	UpdateProcess(ctx context.Context, p *domain.Process) error

	SetPendingAPIKey(ctx context.Context, email, key string) error
	// PendingAPIKey returns the last key issued to email and not yet saved.
	PendingAPIKey(ctx context.Context, email string) (string, error)
	SetAPIKey(ctx context.Context, userID, key string) error
	GetAPIKey(ctx context.Context, userID string) (string, error)

	Ping(ctx context.Context) error
}

// paginate slices items to the requested page; an invalid page returns all.
func paginate[T any](items []T, page domain.Page) []T {
	if !page.Valid() {
		return items
	}
	start := (page.Page - 1) * page.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
