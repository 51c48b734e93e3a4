package library

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Catalog is a sqlite-backed store of scanned tracks. It follows the same
// pragma tuning and single-writer-connection discipline the rest of the
// example pack uses for an embedded sqlite database (WAL journal,
// busy_timeout, one open connection). Foreign keys are unnecessary here since
// there is exactly one table.
type Catalog struct {
	db     *sql.DB
	log    *slog.Logger
	mu     sync.RWMutex
	closed bool
}

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	path         TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	artist       TEXT NOT NULL DEFAULT '',
	album        TEXT NOT NULL DEFAULT '',
	genre        TEXT NOT NULL DEFAULT '',
	track_number INTEGER NOT NULL DEFAULT 0,
	year         INTEGER NOT NULL DEFAULT 0,
	scanned_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist);
CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album);
`

// OpenCatalog opens (creating if necessary) the sqlite database at path.
func OpenCatalog(path string, log *slog.Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA temp_store=memory",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Catalog{db: db, log: log}, nil
}

func (c *Catalog) checkClosed() error {
	if c.closed {
		return fmt.Errorf("catalog is closed")
	}
	return nil
}

// Upsert inserts or replaces a track's catalog row, keyed on its path.
func (c *Catalog) Upsert(ctx context.Context, t *Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkClosed(); err != nil {
		return err
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tracks
			(path, title, artist, album, genre, track_number, year, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Path, t.Title, t.Artist, t.Album, t.Genre, t.TrackNumber, t.Year, t.ScannedAt.Unix())
	if err != nil {
		return fmt.Errorf("upserting track %q: %w", t.Path, err)
	}
	return nil
}

// UpsertAll upserts a batch of tracks inside a single transaction, which is
// far faster than one commit per row when a scan walks a large library.
func (c *Catalog) UpsertAll(ctx context.Context, tracks []*Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkClosed(); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("beginning scan transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO tracks
			(path, title, artist, album, genre, track_number, year, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tracks {
		if _, err := stmt.ExecContext(ctx, t.Path, t.Title, t.Artist, t.Album, t.Genre,
			t.TrackNumber, t.Year, t.ScannedAt.Unix()); err != nil {
			return fmt.Errorf("upserting track %q: %w", t.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing scan transaction: %w", err)
	}
	committed = true
	if c.log != nil {
		c.log.Info("catalog scan committed", "tracks", len(tracks))
	}
	return nil
}

// ByPath looks up a single track by its exact path. It returns (nil, nil)
// when no row matches, mirroring sql.ErrNoRows being an unexceptional,
// expected outcome rather than a failure for a simple lookup.
func (c *Catalog) ByPath(ctx context.Context, path string) (*Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	row := c.db.QueryRowContext(ctx, `
		SELECT path, title, artist, album, genre, track_number, year, scanned_at
		FROM tracks WHERE path = ?`, path)
	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// All returns every catalogued track ordered by artist, then album, then
// track number, matching the order a browse view would want to render.
func (c *Catalog) All(ctx context.Context) ([]*Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT path, title, artist, album, genre, track_number, year, scanned_at
		FROM tracks ORDER BY artist, album, track_number`)
	if err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	defer rows.Close()

	var out []*Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Search does a simple substring match against title, artist, and album.
func (c *Catalog) Search(ctx context.Context, query string) ([]*Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	like := "%" + query + "%"
	rows, err := c.db.QueryContext(ctx, `
		SELECT path, title, artist, album, genre, track_number, year, scanned_at
		FROM tracks
		WHERE title LIKE ? OR artist LIKE ? OR album LIKE ?
		ORDER BY artist, album, track_number`, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	defer rows.Close()

	var out []*Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes the row for path, if any.
func (c *Catalog) Delete(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkClosed(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM tracks WHERE path = ?`, path)
	return err
}

// scanner abstracts over *sql.Row and *sql.Rows so a single scan routine can
// serve both QueryRowContext and QueryContext callers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrack(s scanner) (*Track, error) {
	var t Track
	var scannedUnix int64
	if err := s.Scan(&t.Path, &t.Title, &t.Artist, &t.Album, &t.Genre,
		&t.TrackNumber, &t.Year, &scannedUnix); err != nil {
		return nil, err
	}
	t.ScannedAt = time.Unix(scannedUnix, 0)
	return &t, nil
}

// Close runs a final PRAGMA optimize before closing the underlying
// connection, the same shutdown sequence the example pack uses for its
// sqlite-backed store.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.db.Exec("PRAGMA optimize")
	return c.db.Close()
}
