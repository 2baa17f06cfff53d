package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	_ "modernc.org/sqlite"
)

const (
	createSQLiteQuery = "CREATE TABLE IF NOT EXISTS channel_id (guild_id INTEGER PRIMARY KEY, channel_id INTEGER NOT NULL);"
	upsertSQLiteQuery = "INSERT INTO channel_id (guild_id, channel_id) VALUES (?, ?) ON CONFLICT(guild_id) DO UPDATE SET channel_id=excluded.channel_id;"
)

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	// a single connection serialises every read and write
	db.SetMaxOpenConns(1)
	return &SQLite{db: db}, nil
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createSQLiteQuery)
	return err
}

func (s *SQLite) LoadRoutes(ctx context.Context) (map[snowflake.ID]snowflake.ID, error) {
	rows, err := s.db.QueryContext(ctx, selectQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make(map[snowflake.ID]snowflake.ID)
	for rows.Next() {
		var r route
		if err := rows.Scan(&r.GuildID, &r.ChannelID); err != nil {
			return nil, err
		}
		routes[snowflake.ID(r.GuildID)] = snowflake.ID(r.ChannelID)
	}
	return routes, rows.Err()
}

func (s *SQLite) UpsertRoute(ctx context.Context, guildID snowflake.ID, channelID snowflake.ID) error {
	_, err := s.db.ExecContext(ctx, upsertSQLiteQuery, int64(guildID), int64(channelID))
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
