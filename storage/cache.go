package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agiliza2b-source/tasks2/domain"
)

type backend interface {
	ListColumns(ctx context.Context, userID string) ([]domain.Column, error)
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	InsertTask(ctx context.Context, t domain.Task) (domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) error
	DeleteTask(ctx context.Context, userID, id string) error
	InsertColumn(ctx context.Context, c domain.Column) (domain.Column, error)
	UpdateColumn(ctx context.Context, c domain.Column) error
	DeleteColumn(ctx context.Context, userID, id string) error
	UpsertColumns(ctx context.Context, cols []domain.Column) error
	UpsertTasks(ctx context.Context, tasks []domain.Task) error
}

// Cache wraps a Storage instance with Redis-backed caching for board
// reads. Any board mutation evicts the owner's cached view. Redis
// failures fall through to the backing storage without surfacing.
type Cache struct {
	*Storage
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Storage wrapper using the provided Redis
// client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	c := &Cache{base: base, redis: client, ttl: ttl}
	if s, ok := base.(*Storage); ok {
		c.Storage = s
	}
	return c
}

func (c *Cache) ListColumns(ctx context.Context, userID string) ([]domain.Column, error) {
	if cols, ok := loadCached[[]domain.Column](ctx, c, columnsCacheKey(userID)); ok {
		return cols, nil
	}
	cols, err := c.base.ListColumns(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.storeCached(ctx, columnsCacheKey(userID), cols)
	return cols, nil
}

func (c *Cache) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if tasks, ok := loadCached[[]domain.Task](ctx, c, tasksCacheKey(userID)); ok {
		return tasks, nil
	}
	tasks, err := c.base.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.storeCached(ctx, tasksCacheKey(userID), tasks)
	return tasks, nil
}

func (c *Cache) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	created, err := c.base.InsertTask(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, created.UserID)
	return created, nil
}

func (c *Cache) UpdateTask(ctx context.Context, t domain.Task) error {
	if err := c.base.UpdateTask(ctx, t); err != nil {
		return err
	}
	c.evict(ctx, t.UserID)
	return nil
}

func (c *Cache) DeleteTask(ctx context.Context, userID, id string) error {
	if err := c.base.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	c.evict(ctx, userID)
	return nil
}

func (c *Cache) InsertColumn(ctx context.Context, col domain.Column) (domain.Column, error) {
	created, err := c.base.InsertColumn(ctx, col)
	if err != nil {
		return domain.Column{}, err
	}
	c.evict(ctx, created.UserID)
	return created, nil
}

func (c *Cache) UpdateColumn(ctx context.Context, col domain.Column) error {
	if err := c.base.UpdateColumn(ctx, col); err != nil {
		return err
	}
	c.evict(ctx, col.UserID)
	return nil
}

func (c *Cache) DeleteColumn(ctx context.Context, userID, id string) error {
	if err := c.base.DeleteColumn(ctx, userID, id); err != nil {
		return err
	}
	c.evict(ctx, userID)
	return nil
}

func (c *Cache) UpsertColumns(ctx context.Context, cols []domain.Column) error {
	if err := c.base.UpsertColumns(ctx, cols); err != nil {
		return err
	}
	if len(cols) > 0 {
		c.evict(ctx, cols[0].UserID)
	}
	return nil
}

func (c *Cache) UpsertTasks(ctx context.Context, tasks []domain.Task) error {
	if err := c.base.UpsertTasks(ctx, tasks); err != nil {
		return err
	}
	if len(tasks) > 0 {
		c.evict(ctx, tasks[0].UserID)
	}
	return nil
}

func loadCached[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T
	if c.redis == nil {
		return zero, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return zero, false
	}
	return out, true
}

func (c *Cache) storeCached(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, tasksCacheKey(userID), columnsCacheKey(userID)).Result()
}

func tasksCacheKey(userID string) string {
	return "tasks:" + userID
}

func columnsCacheKey(userID string) string {
	return "columns:" + userID
}
