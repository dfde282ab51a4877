// Package snapshot persists scenes to a local SQLite database. Each saved
// scene is a canonical JSON document, zstd-compressed, with a blake3 digest
// recorded for integrity checks on load.
package snapshot

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"planar/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	digest TEXT NOT NULL,
	blob BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenes_name ON scenes(name, created_at);
`

// Store is a scene database backed by SQLite.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Meta describes a stored scene without its payload.
type Meta struct {
	ID        string
	Name      string
	Digest    string
	CreatedAt time.Time
}

// Open opens or creates the scene database at {dir}/planar.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "planar.db"))
	if err != nil {
		return nil, fmt.Errorf("opening scene db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Store{db: db, enc: enc, dec: dec}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.enc != nil {
		s.enc.Close()
	}
	if s.dec != nil {
		s.dec.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save serializes the state under the given name and returns the new
// scene's id. Saving the same name again creates a new version; Load by
// name returns the most recent one.
func (s *Store) Save(name string, st *core.State) (string, error) {
	data, err := EncodeScene(st)
	if err != nil {
		return "", err
	}

	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	blob := s.enc.EncodeAll(data, nil)
	id := uuid.NewString()

	_, err = s.db.Exec(
		`INSERT INTO scenes (id, name, digest, blob, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, name, digest, blob, time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting scene: %w", err)
	}
	return id, nil
}

// Load retrieves a scene by id.
func (s *Store) Load(id string) (*core.State, error) {
	var digest string
	var blob []byte
	err := s.db.QueryRow(
		"SELECT digest, blob FROM scenes WHERE id = ?", id,
	).Scan(&digest, &blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scene %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying scene: %w", err)
	}
	return s.decode(digest, blob)
}

// LoadLatestByName retrieves the most recently saved scene with the given
// name.
func (s *Store) LoadLatestByName(name string) (*core.State, error) {
	var digest string
	var blob []byte
	err := s.db.QueryRow(
		`SELECT digest, blob FROM scenes WHERE name = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		name,
	).Scan(&digest, &blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no scene named %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying scene: %w", err)
	}
	return s.decode(digest, blob)
}

func (s *Store) decode(digest string, blob []byte) (*core.State, error) {
	data, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing scene: %w", err)
	}

	sum := blake3.Sum256(data)
	if hex.EncodeToString(sum[:]) != digest {
		return nil, fmt.Errorf("scene digest mismatch: stored %s", digest)
	}
	return DecodeScene(data)
}

// List returns metadata for all stored scenes, newest first.
func (s *Store) List() ([]Meta, error) {
	rows, err := s.db.Query(
		`SELECT id, name, digest, created_at FROM scenes
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Digest, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes a scene by id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM scenes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting scene: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scene %s not found", id)
	}
	return nil
}
