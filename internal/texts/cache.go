package texts

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/models"
	"wedding-invitations/internal/storage"
)

const (
	cacheKey   = "wedding_configurable_texts"
	DefaultTTL = time.Hour
)

// Fetcher loads the CMS texts from the backend
type Fetcher interface {
	ListTexts(ctx context.Context) ([]models.ConfigurableText, error)
}

// Cache keeps the configurable texts for the session
type Cache struct {
	fetcher Fetcher
	store   storage.Store
	ttl     time.Duration
	log     zerolog.Logger

	mu sync.Mutex
}

// NewCache creates a cache; ttl <= 0 uses DefaultTTL
func NewCache(fetcher Fetcher, store storage.Store, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
		log:     log.With().Str("component", "Texts").Logger(),
	}
}

// All returns every text keyed by its key. The backend is hit at most once
// per TTL window.
func (c *Cache) All(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if raw, ok, err := c.store.Get(ctx, cacheKey); err != nil {
		c.log.Debug().Err(err).Msg("Cache read failed, fetching")
	} else if ok {
		var cached map[string]string
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	list, err := c.fetcher.ListTexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch texts: %w", err)
	}
	texts := make(map[string]string, len(list))
	for _, t := range list {
		texts[t.Key] = t.Content
	}

	if b, err := json.Marshal(texts); err == nil {
		if err := c.store.Set(ctx, cacheKey, string(b), c.ttl); err != nil {
			c.log.Debug().Err(err).Msg("Cache write failed")
		}
	}
	return texts, nil
}

// Get returns one text, or fallback when it is missing or cannot be loaded
func (c *Cache) Get(ctx context.Context, key, fallback string) string {
	texts, err := c.All(ctx)
	if err != nil {
		return fallback
	}
	if v, ok := texts[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Invalidate drops the cached copy
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, cacheKey)
}
