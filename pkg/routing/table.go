package routing

import (
	"context"
	"fmt"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Store persists guild to channel routes.
type Store interface {
	LoadRoutes(ctx context.Context) (map[snowflake.ID]snowflake.ID, error)
	UpsertRoute(ctx context.Context, guildID snowflake.ID, channelID snowflake.ID) error
}

// Table holds the channel each guild forwards into. Reads are served from
// memory; writes go to the store first.
type Table struct {
	mu     sync.RWMutex
	routes map[snowflake.ID]snowflake.ID

	storeMu sync.Mutex
	store   Store
}

func New(store Store) *Table {
	return &Table{
		routes: make(map[snowflake.ID]snowflake.ID),
		store:  store,
	}
}

// LoadAll replaces the in-memory routes with the stored ones.
func (t *Table) LoadAll(ctx context.Context) error {
	t.storeMu.Lock()
	routes, err := t.store.LoadRoutes(ctx)
	t.storeMu.Unlock()
	if err != nil {
		return fmt.Errorf("load routes: %w", err)
	}
	t.mu.Lock()
	t.routes = routes
	if t.routes == nil {
		t.routes = make(map[snowflake.ID]snowflake.ID)
	}
	t.mu.Unlock()
	return nil
}

func (t *Table) Get(guildID snowflake.ID) (snowflake.ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	channelID, ok := t.routes[guildID]
	return channelID, ok
}

// Set routes guildID to channelID, replacing any previous route. The memory
// is only updated once the store accepted the write.
func (t *Table) Set(ctx context.Context, guildID snowflake.ID, channelID snowflake.ID) error {
	t.storeMu.Lock()
	err := t.store.UpsertRoute(ctx, guildID, channelID)
	t.storeMu.Unlock()
	if err != nil {
		return fmt.Errorf("upsert route for guild %d: %w", guildID, err)
	}
	t.mu.Lock()
	t.routes[guildID] = channelID
	t.mu.Unlock()
	return nil
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}
