package valkey

import (
	"context"
)

// BootstrapStore implements ports.BootstrapStore on a Valkey hash per
// user. Fields are the raw persisted home-location strings; parsing is
// left to the session layer.
type BootstrapStore struct {
	cache *Cache
}

// NewBootstrapStore creates a BootstrapStore sharing the cache client.
func NewBootstrapStore(cache *Cache) *BootstrapStore {
	return &BootstrapStore{cache: cache}
}

func homeKey(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return "bootstrap:home:" + userID
}

// LoadHome returns the persisted home fields; an empty map means no
// bootstrap data.
func (s *BootstrapStore) LoadHome(ctx context.Context, userID string) (map[string]string, error) {
	c := s.cache.client
	cmd := c.Do(ctx, c.B().Hgetall().Key(homeKey(userID)).Build())
	if cmd.Error() != nil {
		return nil, cmd.Error()
	}
	return cmd.AsStrMap()
}

// SaveHome replaces the persisted home fields.
func (s *BootstrapStore) SaveHome(ctx context.Context, userID string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	c := s.cache.client
	if err := s.ClearHome(ctx, userID); err != nil {
		return err
	}
	b := c.B().Hset().Key(homeKey(userID)).FieldValue()
	for f, v := range fields {
		b = b.FieldValue(f, v)
	}
	return c.Do(ctx, b.Build()).Error()
}

// ClearHome removes the persisted home.
func (s *BootstrapStore) ClearHome(ctx context.Context, userID string) error {
	c := s.cache.client
	return c.Do(ctx, c.B().Del().Key(homeKey(userID)).Build()).Error()
}
