package videos

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streamgate/backend/internal/models"
)

type videoEntry struct {
	video   models.Video
	expires time.Time
}

type pageEntry struct {
	videos  []models.Video
	total   int64
	expires time.Time
}

// CachingStore wraps a Store with a TTL-based in-memory cache. Catalog reads
// dominate this workload and the underlying collection only changes when the
// seed command runs, so short TTLs keep responses fresh enough.
type CachingStore struct {
	base Store
	ttl  time.Duration

	mu     sync.RWMutex
	byID   map[string]videoEntry
	byPage map[string]pageEntry
}

// NewCachingStore returns a Store that caches lookups for the provided TTL.
func NewCachingStore(base Store, ttl time.Duration) *CachingStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachingStore{
		base:   base,
		ttl:    ttl,
		byID:   make(map[string]videoEntry),
		byPage: make(map[string]pageEntry),
	}
}

// FindByID returns a cached video when available, otherwise it delegates to
// the underlying store and stores the result.
func (c *CachingStore) FindByID(ctx context.Context, id string) (models.Video, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.byID[id]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.video, nil
	}

	video, err := c.base.FindByID(ctx, id)
	if err != nil {
		return models.Video{}, err
	}

	c.mu.Lock()
	c.byID[id] = videoEntry{video: video, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return video, nil
}

// ListActive returns a cached page when available, otherwise it delegates to
// the underlying store and stores the result.
func (c *CachingStore) ListActive(ctx context.Context, offset, limit int) ([]models.Video, int64, error) {
	key := fmt.Sprintf("%d:%d", offset, limit)
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.byPage[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.videos, entry.total, nil
	}

	videos, total, err := c.base.ListActive(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	c.mu.Lock()
	c.byPage[key] = pageEntry{videos: videos, total: total, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return videos, total, nil
}
