package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"media-monitor/internal/monitor/model"
)

// ClippingStore persists the permanent coverage records.
type ClippingStore struct {
	stores *Stores
}

func NewClippingStore(s *Stores) *ClippingStore {
	return &ClippingStore{stores: s}
}

func (cs *ClippingStore) Insert(ctx context.Context, c *model.Clipping) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := cs.stores.Clippings.InsertOne(ctx, c); err != nil {
		return "", fmt.Errorf("insert clipping: %w", err)
	}
	return c.ID, nil
}
