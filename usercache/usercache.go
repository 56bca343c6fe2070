// Package usercache persists the profiles of players that logged in, so
// names and UUIDs can be resolved while the player is offline.
package usercache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/models"
)

// ErrNotFound is returned for names and UUIDs that were never cached.
var ErrNotFound = errors.New("profile not cached")

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	uuid       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	name_lower TEXT NOT NULL UNIQUE,
	properties TEXT NOT NULL DEFAULT '[]',
	last_seen  INTEGER NOT NULL
)`

// Entry is a cached profile and the last time it logged in.
type Entry struct {
	Profile  *models.GameProfile
	LastSeen time.Time
}

type Cache struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create usercache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usercache %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Warn().Err(err).Msg("failed to enable WAL mode")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create usercache schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("usercache opened")
	return &Cache{db: db, path: path}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores profile as seen now. A name previously held by another UUID
// is released.
func (c *Cache) Put(ctx context.Context, profile *models.GameProfile) error {
	props := profile.Properties
	if props == nil {
		props = []models.Property{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	id := codec.FormatUUID(profile.ID, true)

	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE name_lower = ? AND uuid <> ?`,
		strings.ToLower(profile.Name), id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (uuid, name, name_lower, properties, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			name = excluded.name,
			name_lower = excluded.name_lower,
			properties = excluded.properties,
			last_seen = excluded.last_seen`,
		id, profile.Name, strings.ToLower(profile.Name), string(raw), time.Now().UnixMilli())
	if err != nil {
		return err
	}
	return tx.Commit()
}

const selectEntry = `SELECT uuid, name, properties, last_seen FROM profiles`

// ByName looks a profile up by name, ignoring case.
func (c *Cache) ByName(ctx context.Context, name string) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, selectEntry+` WHERE name_lower = ?`, strings.ToLower(name))
	return scanEntry(row)
}

func (c *Cache) ByUUID(ctx context.Context, id string) (*Entry, error) {
	u, err := codec.ParseUUID(id)
	if err != nil {
		return nil, err
	}
	row := c.db.QueryRowContext(ctx, selectEntry+` WHERE uuid = ?`, codec.FormatUUID(u, true))
	return scanEntry(row)
}

// List returns up to limit entries, most recently seen first. A limit of
// zero or less returns everything.
func (c *Cache) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := selectEntry + ` ORDER BY last_seen DESC, name_lower`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		id, name, props string
		lastSeen        int64
	)
	if err := s.Scan(&id, &name, &props, &lastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u, err := codec.ParseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt usercache row %q: %w", id, err)
	}
	profile := &models.GameProfile{ID: u, Name: name}
	if err := json.Unmarshal([]byte(props), &profile.Properties); err != nil {
		return nil, fmt.Errorf("corrupt properties for %s: %w", name, err)
	}
	if len(profile.Properties) == 0 {
		profile.Properties = nil
	}

	return &Entry{Profile: profile, LastSeen: time.UnixMilli(lastSeen)}, nil
}
