package db

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is a durable routing store.
type DB interface {
	EnsureSchema(ctx context.Context) error
	LoadRoutes(ctx context.Context) (map[snowflake.ID]snowflake.ID, error)
	UpsertRoute(ctx context.Context, guildID snowflake.ID, channelID snowflake.ID) error
	Close() error
}

// Open connects to Postgres when databaseURL is set and to the SQLite file at path otherwise.
func Open(ctx context.Context, path string, databaseURL string) (DB, error) {
	if databaseURL == "" {
		sqlite, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return sqlite, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return NewPostgres(pool), nil
}

const (
	createPostgresQuery = "CREATE TABLE IF NOT EXISTS channel_id (guild_id BIGINT PRIMARY KEY, channel_id BIGINT NOT NULL);"
	selectQuery         = "SELECT guild_id, channel_id FROM channel_id;"
	upsertPostgresQuery = "INSERT INTO channel_id (guild_id, channel_id) VALUES ($1, $2) ON CONFLICT(guild_id) DO UPDATE SET channel_id=excluded.channel_id;"
)

type route struct {
	GuildID   int64 `db:"guild_id"`
	ChannelID int64 `db:"channel_id"`
}

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (db *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, createPostgresQuery)
	return err
}

func (db *Postgres) LoadRoutes(ctx context.Context) (map[snowflake.ID]snowflake.ID, error) {
	rows, _ := db.pool.Query(ctx, selectQuery)
	stored, err := pgx.CollectRows(rows, pgx.RowToStructByName[route])
	if err != nil {
		return nil, err
	}
	routes := make(map[snowflake.ID]snowflake.ID, len(stored))
	for _, r := range stored {
		routes[snowflake.ID(r.GuildID)] = snowflake.ID(r.ChannelID)
	}
	return routes, nil
}

func (db *Postgres) UpsertRoute(ctx context.Context, guildID snowflake.ID, channelID snowflake.ID) error {
	_, err := db.pool.Exec(ctx, upsertPostgresQuery, int64(guildID), int64(channelID))
	return err
}

func (db *Postgres) Close() error {
	db.pool.Close()
	return nil
}
