// Package store persists the context model and the version cache in a
// single sqlite file, so a session can be closed and reopened without
// rebuilding shots, bindings, or rescanning publish directories.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"

	"github.com/pipelab/multishot/internal/host"
	"github.com/pipelab/multishot/internal/model"
	"github.com/pipelab/multishot/internal/vcache"
)

const schema = `
CREATE TABLE IF NOT EXISTS project (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	code TEXT NOT NULL,
	episode TEXT NOT NULL,
	sequence TEXT NOT NULL,
	config_path TEXT NOT NULL DEFAULT '',
	active_shot TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS shots (
	episode TEXT NOT NULL,
	sequence TEXT NOT NULL,
	code TEXT NOT NULL,
	frame_start INTEGER NOT NULL,
	frame_end INTEGER NOT NULL,
	group_handle TEXT NOT NULL DEFAULT '',
	ord INTEGER NOT NULL,
	PRIMARY KEY (episode, sequence, code)
);

CREATE TABLE IF NOT EXISTS bindings (
	episode TEXT NOT NULL,
	sequence TEXT NOT NULL,
	shot TEXT NOT NULL,
	asset_type TEXT NOT NULL,
	asset_name TEXT NOT NULL,
	variant TEXT NOT NULL,
	dept TEXT NOT NULL DEFAULT '',
	version TEXT NOT NULL DEFAULT '',
	template TEXT NOT NULL DEFAULT '',
	ext TEXT NOT NULL DEFAULT '',
	target_handle TEXT NOT NULL DEFAULT '',
	target_kind TEXT NOT NULL DEFAULT '',
	target_link INTEGER NOT NULL DEFAULT 0,
	ord INTEGER NOT NULL,
	PRIMARY KEY (episode, sequence, shot, asset_type, asset_name, variant)
);

CREATE TABLE IF NOT EXISTS cache_entries (
	dir TEXT PRIMARY KEY,
	scanned_at INTEGER NOT NULL,
	assets JSON NOT NULL
);
`

// Store wraps the sqlite session file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the session file and initializes the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveModel replaces the persisted model with the given one, in a single
// transaction. Whole-state replacement keeps the file consistent even when
// shots were removed since the last save.
func (s *Store) SaveModel(m *model.Model) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"project", "shots", "bindings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	if p := m.Project(); p != nil {
		_, err = tx.Exec(`INSERT INTO project (id, code, episode, sequence, config_path, active_shot)
			VALUES (1, ?, ?, ?, ?, ?)`,
			p.Code, p.Episode, p.Sequence, p.ConfigPath, p.ActiveShotID)
		if err != nil {
			return err
		}
	}

	shotStmt, err := tx.Prepare(`INSERT INTO shots
		(episode, sequence, code, frame_start, frame_end, group_handle, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer shotStmt.Close()

	bindStmt, err := tx.Prepare(`INSERT INTO bindings
		(episode, sequence, shot, asset_type, asset_name, variant,
		 dept, version, template, ext, target_handle, target_kind, target_link, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer bindStmt.Close()

	for i, shot := range m.Shots() {
		id := shot.ID
		if _, err := shotStmt.Exec(id.Episode, id.Sequence, id.Code,
			shot.FrameStart, shot.FrameEnd, shot.GroupHandle, i); err != nil {
			return err
		}
		for j, b := range shot.Bindings() {
			if _, err := bindStmt.Exec(id.Episode, id.Sequence, id.Code,
				b.Key.AssetType, b.Key.AssetName, b.Key.Variant,
				b.Dept, b.Version, b.Template, b.Ext,
				b.Target.Handle, string(b.Target.Kind), int(b.Target.Link), j); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadModel reconstructs a model from the session file. Loading is silent:
// no listener events fire for the replayed state.
func (s *Store) LoadModel() (*model.Model, error) {
	m := model.New()

	var loadErr error
	m.Silent(func() { loadErr = s.loadInto(m) })
	if loadErr != nil {
		return nil, loadErr
	}
	return m, nil
}

func (s *Store) loadInto(m *model.Model) error {
	var activeShot string
	row := s.db.QueryRow(`SELECT code, episode, sequence, config_path, active_shot FROM project WHERE id = 1`)
	var code, episode, sequence, configPath string
	switch err := row.Scan(&code, &episode, &sequence, &configPath, &activeShot); err {
	case nil:
		m.GetOrCreateProject(code, episode, sequence, configPath)
	case sql.ErrNoRows:
	default:
		return err
	}

	shotRows, err := s.db.Query(`SELECT episode, sequence, code, frame_start, frame_end, group_handle
		FROM shots ORDER BY ord`)
	if err != nil {
		return err
	}
	defer shotRows.Close()

	var active *model.ShotID
	for shotRows.Next() {
		var id model.ShotID
		var frameStart, frameEnd int
		var group string
		if err := shotRows.Scan(&id.Episode, &id.Sequence, &id.Code, &frameStart, &frameEnd, &group); err != nil {
			return err
		}
		if _, err := m.CreateShot(id, frameStart, frameEnd, group); err != nil {
			return err
		}
		if id.String() == activeShot {
			sid := id
			active = &sid
		}
	}
	if err := shotRows.Err(); err != nil {
		return err
	}

	bindRows, err := s.db.Query(`SELECT episode, sequence, shot,
		asset_type, asset_name, variant, dept, version, template, ext,
		target_handle, target_kind, target_link
		FROM bindings ORDER BY ord`)
	if err != nil {
		return err
	}
	defer bindRows.Close()

	for bindRows.Next() {
		var id model.ShotID
		var b model.Binding
		var kind string
		var link int
		if err := bindRows.Scan(&id.Episode, &id.Sequence, &id.Code,
			&b.Key.AssetType, &b.Key.AssetName, &b.Key.Variant,
			&b.Dept, &b.Version, &b.Template, &b.Ext,
			&b.Target.Handle, &kind, &link); err != nil {
			return err
		}
		b.Target.Kind = host.TargetKind(kind)
		b.Target.Link = host.LinkState(link)
		if _, err := m.AddBinding(id, b); err != nil {
			return err
		}
	}
	if err := bindRows.Err(); err != nil {
		return err
	}

	if active != nil {
		if err := m.Activate(*active); err != nil {
			return err
		}
	}
	return nil
}

// SaveCache persists the version cache index.
func (s *Store) SaveCache(c *vcache.Cache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM cache_entries"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO cache_entries (dir, scanned_at, assets) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	snapshot := c.Snapshot()
	for _, dir := range c.Dirs() {
		scannedAt, _ := c.ScannedAt(dir)
		payload := oj.JSON(snapshot[dir])
		if _, err := stmt.Exec(dir, scannedAt.UnixNano(), payload); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadCache restores persisted entries into the cache. Restored entries are
// stale by definition; callers rescan when freshness matters.
func (s *Store) LoadCache(c *vcache.Cache) error {
	rows, err := s.db.Query(`SELECT dir, scanned_at, assets FROM cache_entries`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var dir, payload string
		var scannedAt int64
		if err := rows.Scan(&dir, &scannedAt, &payload); err != nil {
			return err
		}
		var assets map[string][]string
		if err := oj.Unmarshal([]byte(payload), &assets); err != nil {
			return fmt.Errorf("cache entry %s: %w", dir, err)
		}
		c.Restore(dir, assets, time.Unix(0, scannedAt))
	}
	return rows.Err()
}
