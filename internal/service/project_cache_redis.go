package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	rm "github.com/christpg03/mine-bot/internal/redmine"
)

// ProjectCache guarda el listado de proyectos de Redmine por usuario para
// no golpear la API en cada /projects. Es opcional: sin Redis se usa la
// variante deshabilitada.
type ProjectCache interface {
	Get(ctx context.Context, telegramID int64) ([]rm.Project, bool)
	Set(ctx context.Context, telegramID int64, projects []rm.Project)
}

type noopProjectCache struct{}

// NewNoopProjectCache devuelve un cache que nunca acierta.
func NewNoopProjectCache() ProjectCache {
	return noopProjectCache{}
}

func (noopProjectCache) Get(_ context.Context, _ int64) ([]rm.Project, bool) { return nil, false }
func (noopProjectCache) Set(_ context.Context, _ int64, _ []rm.Project)      {}

type redisGetSetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisProjectCache struct {
	client redisGetSetter
	ttl    time.Duration
	prefix string
}

// NewRedisProjectCache construye el cache sobre Redis. Con cliente nil
// devuelve la variante deshabilitada.
func NewRedisProjectCache(client *redis.Client, ttl time.Duration) ProjectCache {
	if client == nil {
		return NewNoopProjectCache()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisProjectCache{
		client: client,
		ttl:    ttl,
		prefix: "projects:",
	}
}

func (c *redisProjectCache) key(telegramID int64) string {
	return fmt.Sprintf("%s%d", c.prefix, telegramID)
}

// Get falla abierto: cualquier error de Redis cuenta como cache miss.
func (c *redisProjectCache) Get(ctx context.Context, telegramID int64) ([]rm.Project, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(telegramID)).Result()
	if err != nil {
		return nil, false
	}
	var projects []rm.Project
	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		return nil, false
	}
	return projects, true
}

func (c *redisProjectCache) Set(ctx context.Context, telegramID int64, projects []rm.Project) {
	raw, err := json.Marshal(projects)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	c.client.Set(ctx, c.key(telegramID), raw, c.ttl)
}
