package cache

import (
	"context"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
)

// Client serves repeated agent requests from a Cache. Failed calls and
// requests marked NoCache are not cached.
type Client struct {
	inner agent.Client
	store *Cache
}

// NewClient wraps inner with store.
func NewClient(inner agent.Client, store *Cache) *Client {
	return &Client{inner: inner, store: store}
}

// Invoke implements agent.Client.
func (c *Client) Invoke(ctx context.Context, req agent.Request) (agent.Document, error) {
	if req.NoCache {
		return c.inner.Invoke(ctx, req)
	}
	key := KeyFor(req)
	if doc, ok := c.store.Get(key); ok {
		return doc, nil
	}
	doc, err := c.inner.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	c.store.Put(key, doc)
	return doc, nil
}

// Store returns the underlying cache.
func (c *Client) Store() *Cache {
	return c.store
}
