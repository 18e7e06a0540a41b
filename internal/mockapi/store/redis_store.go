package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

const (
	projectKeyPrefix  = "gosim:project:"          // gosim:project:{id} -> project JSON
	projectIndexKey   = "gosim:projects"          // zset of project ids scored by creation time
	assetKeyPrefix    = "gosim:asset:"            // gosim:asset:{project}:{asset} -> metadata JSON
	processKeyPrefix  = "gosim:process:"          // gosim:process:{project}:{process} -> process JSON
	pendingProcessKey = "gosim:processes:pending" // set of "{project}:{process}"
	pendingAPIKeyPref = "gosim:apikey:pending:"   // gosim:apikey:pending:{email} -> key
	apiKeyPrefix      = "gosim:apikey:user:"      // gosim:apikey:user:{user} -> key
	pendingAPIKeyTTL  = 24 * time.Hour
)

// RedisStore keeps the mock backend state in Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) CreateProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	stored := *p
	stored.AssetIDs, stored.ProcessIDs = nil, nil
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.projectKey(p.ID), data, 0)
	pipe.ZAdd(ctx, projectIndexKey, redis.Z{Score: float64(p.CreatedAt.UnixMicro()), Member: p.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *RedisStore) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	data, err := r.client.Get(ctx, r.projectKey(projectID)).Result()
	if err == redis.Nil {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	var p domain.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}

	if p.AssetIDs, err = r.client.ZRange(ctx, r.assetIndexKey(projectID), 0, -1).Result(); err != nil {
		return nil, fmt.Errorf("failed to list asset ids: %w", err)
	}
	if p.ProcessIDs, err = r.client.ZRange(ctx, r.processIndexKey(projectID), 0, -1).Result(); err != nil {
		return nil, fmt.Errorf("failed to list process ids: %w", err)
	}
	if len(p.AssetIDs) == 0 {
		p.AssetIDs = nil
	}
	if len(p.ProcessIDs) == 0 {
		p.ProcessIDs = nil
	}
	return &p, nil
}

func (r *RedisStore) ListProjects(ctx context.Context, page domain.Page) ([]domain.Project, error) {
	start, stop := rangeFor(page)
	ids, err := r.client.ZRange(ctx, projectIndexKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetProject(ctx, id)
		if errors.Is(err, ErrProjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *RedisStore) DeleteProject(ctx context.Context, projectID string) error {
	if err := r.requireProject(ctx, projectID); err != nil {
		return err
	}

	assetIDs, err := r.client.ZRange(ctx, r.assetIndexKey(projectID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list asset ids: %w", err)
	}
	processIDs, err := r.client.ZRange(ctx, r.processIndexKey(projectID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list process ids: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.projectKey(projectID), r.assetIndexKey(projectID), r.processIndexKey(projectID))
	pipe.ZRem(ctx, projectIndexKey, projectID)
	for _, id := range assetIDs {
		pipe.Del(ctx, r.assetKey(projectID, id), r.assetContentKey(projectID, id))
	}
	for _, id := range processIDs {
		pipe.Del(ctx, r.processKey(projectID, id))
		pipe.SRem(ctx, pendingProcessKey, projectID+":"+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (r *RedisStore) AddAsset(ctx context.Context, a *domain.Asset, content []byte) error {
	if err := r.requireProject(ctx, a.ProjectID); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Size = int64(len(content))

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal asset: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.assetKey(a.ProjectID, a.ID), data, 0)
	pipe.Set(ctx, r.assetContentKey(a.ProjectID, a.ID), content, 0)
	pipe.ZAdd(ctx, r.assetIndexKey(a.ProjectID), redis.Z{Score: float64(a.CreatedAt.UnixMicro()), Member: a.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add asset: %w", err)
	}
	return nil
}

func (r *RedisStore) ListAssets(ctx context.Context, projectID string, page domain.Page) ([]domain.Asset, error) {
	if err := r.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	start, stop := rangeFor(page)
	ids, err := r.client.ZRange(ctx, r.assetIndexKey(projectID), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	out := make([]domain.Asset, 0, len(ids))
	for _, id := range ids {
		a, err := r.getAsset(ctx, projectID, id)
		if errors.Is(err, ErrAssetNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *RedisStore) GetAssetContent(ctx context.Context, projectID, assetID string) (*domain.Asset, []byte, error) {
	if err := r.requireProject(ctx, projectID); err != nil {
		return nil, nil, err
	}
	a, err := r.getAsset(ctx, projectID, assetID)
	if err != nil {
		return nil, nil, err
	}
	content, err := r.client.Get(ctx, r.assetContentKey(projectID, assetID)).Bytes()
	if err == redis.Nil {
		return nil, nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get asset content: %w", err)
	}
	return a, content, nil
}

func (r *RedisStore) DeleteAsset(ctx context.Context, projectID, assetID string) error {
	if err := r.requireProject(ctx, projectID); err != nil {
		return err
	}
	removed, err := r.client.ZRem(ctx, r.assetIndexKey(projectID), assetID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if removed == 0 {
		return ErrAssetNotFound
	}
	if err := r.client.Del(ctx, r.assetKey(projectID, assetID), r.assetContentKey(projectID, assetID)).Err(); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func (r *RedisStore) AddProcess(ctx context.Context, p *domain.Process) error {
	if err := r.requireProject(ctx, p.ProjectID); err != nil {
		return err
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

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal process: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.processKey(p.ProjectID, p.ID), data, 0)
	pipe.ZAdd(ctx, r.processIndexKey(p.ProjectID), redis.Z{Score: float64(p.CreatedAt.UnixMicro()), Member: p.ID})
	if p.Status == domain.StatusPending {
		pipe.SAdd(ctx, pendingProcessKey, p.ProjectID+":"+p.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add process: %w", err)
	}
	return nil
}

func (r *RedisStore) ListProcesses(ctx context.Context, projectID string) ([]domain.Process, error) {
	if err := r.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	ids, err := r.client.ZRange(ctx, r.processIndexKey(projectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	out := make([]domain.Process, 0, len(ids))
	for _, id := range ids {
		p, err := r.getProcess(ctx, projectID, id)
		if errors.Is(err, ErrProcessNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *RedisStore) PendingProcesses(ctx context.Context) ([]domain.Process, error) {
	members, err := r.client.SMembers(ctx, pendingProcessKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending processes: %w", err)
	}
	var out []domain.Process
	for _, m := range members {
		projectID, processID, ok := strings.Cut(m, ":")
		if !ok {
			continue
		}
		p, err := r.getProcess(ctx, projectID, processID)
		if errors.Is(err, ErrProcessNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *RedisStore) UpdateProcess(ctx context.Context, p *domain.Process) error {
	if _, err := r.getProcess(ctx, p.ProjectID, p.ID); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal process: %w", err)
	}

	member := p.ProjectID + ":" + p.ID
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.processKey(p.ProjectID, p.ID), data, 0)
	if p.Status == domain.StatusPending {
		pipe.SAdd(ctx, pendingProcessKey, member)
	} else {
		pipe.SRem(ctx, pendingProcessKey, member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update process: %w", err)
	}
	return nil
}

func (r *RedisStore) SetPendingAPIKey(ctx context.Context, email, key string) error {
	if err := r.client.Set(ctx, pendingAPIKeyPref+email, key, pendingAPIKeyTTL).Err(); err != nil {
		return fmt.Errorf("failed to store pending api key: %w", err)
	}
	return nil
}

func (r *RedisStore) PendingAPIKey(ctx context.Context, email string) (string, error) {
	key, err := r.client.Get(ctx, pendingAPIKeyPref+email).Result()
	if err == redis.Nil {
		return "", ErrAPIKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get pending api key: %w", err)
	}
	return key, nil
}

func (r *RedisStore) SetAPIKey(ctx context.Context, userID, key string) error {
	if err := r.client.Set(ctx, apiKeyPrefix+userID, key, 0).Err(); err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	return nil
}

func (r *RedisStore) GetAPIKey(ctx context.Context, userID string) (string, error) {
	key, err := r.client.Get(ctx, apiKeyPrefix+userID).Result()
	if err == redis.Nil {
		return "", ErrAPIKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get api key: %w", err)
	}
	return key, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) requireProject(ctx context.Context, projectID string) error {
	n, err := r.client.Exists(ctx, r.projectKey(projectID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *RedisStore) getAsset(ctx context.Context, projectID, assetID string) (*domain.Asset, error) {
	data, err := r.client.Get(ctx, r.assetKey(projectID, assetID)).Result()
	if err == redis.Nil {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	var a domain.Asset
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset: %w", err)
	}
	return &a, nil
}

func (r *RedisStore) getProcess(ctx context.Context, projectID, processID string) (*domain.Process, error) {
	data, err := r.client.Get(ctx, r.processKey(projectID, processID)).Result()
	if err == redis.Nil {
		return nil, ErrProcessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get process: %w", err)
	}
	var p domain.Process
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal process: %w", err)
	}
	return &p, nil
}

// rangeFor converts a page into ZRANGE bounds; an invalid page covers all.
func rangeFor(page domain.Page) (int64, int64) {
	if !page.Valid() {
		return 0, -1
	}
	start := int64(page.Page-1) * int64(page.PageSize)
	return start, start + int64(page.PageSize) - 1
}

// Helper methods for key generation
func (r *RedisStore) projectKey(projectID string) string {
	return projectKeyPrefix + projectID
}

func (r *RedisStore) assetIndexKey(projectID string) string {
	return fmt.Sprintf("%s%s:assets", projectKeyPrefix, projectID)
}

func (r *RedisStore) processIndexKey(projectID string) string {
	return fmt.Sprintf("%s%s:processes", projectKeyPrefix, projectID)
}

func (r *RedisStore) assetKey(projectID, assetID string) string {
	return fmt.Sprintf("%s%s:%s", assetKeyPrefix, projectID, assetID)
}

func (r *RedisStore) assetContentKey(projectID, assetID string) string {
	return r.assetKey(projectID, assetID) + ":content"
}

func (r *RedisStore) processKey(projectID, processID string) string {
	return fmt.Sprintf("%s%s:%s", processKeyPrefix, projectID, processID)
}
