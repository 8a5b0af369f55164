// Package vcache maintains the filesystem-backed index of published asset
// versions. It is a pure cache: reads never scan, scans never happen
// implicitly, and a missing entry means "never scanned", not "no versions".
package vcache

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	billy "github.com/go-git/go-billy/v5"

	"github.com/pipelab/multishot/internal/naming"
)

// RefreshReport summarizes one scan of a publish directory.
// Unparseable filenames and unreadable subdirectories are recorded here
// rather than failing the scan.
type RefreshReport struct {
	Dir       string
	Assets    int
	Versions  int
	Warnings  []string
	Failed    []string
	ScannedAt time.Time
}

type dirEntry struct {
	assets    map[string][]string // asset identity -> versions, newest first
	scannedAt time.Time
}

// Cache indexes (publish directory, asset identity) -> discovered versions.
// Refresh replaces a directory's entry atomically; slices handed out by
// reads are copies, so an in-flight caller never observes a mid-refresh
// mutation.
type Cache struct {
	mu      sync.RWMutex
	fs      billy.Filesystem
	codec   *naming.Codec
	entries map[string]dirEntry
}

// New builds a cache scanning through the given filesystem. The billy
// seam keeps production on osfs and tests on memfs.
func New(fs billy.Filesystem, codec *naming.Codec) *Cache {
	return &Cache{
		fs:      fs,
		codec:   codec,
		entries: make(map[string]dirEntry),
	}
}

// Refresh scans a publish directory for version-named subdirectories and
// indexes every filename inside them that matches the full-name convention.
//
// A missing directory records an explicit zero-version entry (the location
// was scanned; nothing is published there yet). An unreadable version
// subdirectory is recorded in Failed and its siblings still scan.
func (c *Cache) Refresh(dir string) (*RefreshReport, error) {
	report := &RefreshReport{Dir: dir, ScannedAt: time.Now()}
	assets := make(map[string][]string)

	if _, err := c.fs.Stat(dir); os.IsNotExist(err) {
		report.Failed = append(report.Failed, fmt.Sprintf("%s: does not exist", dir))
	} else {
		infos, err := c.fs.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read publish dir %s: %w", dir, err)
		}
		for _, info := range infos {
			if !info.IsDir() || !naming.IsVersion(info.Name()) {
				continue
			}
			c.scanVersionDir(dir, info.Name(), assets, report)
		}
	}

	for id := range assets {
		naming.SortVersionsDesc(assets[id])
		report.Versions += len(assets[id])
	}
	report.Assets = len(assets)

	c.mu.Lock()
	c.entries[dir] = dirEntry{assets: assets, scannedAt: report.ScannedAt}
	c.mu.Unlock()

	return report, nil
}

func (c *Cache) scanVersionDir(dir, version string, assets map[string][]string, report *RefreshReport) {
	sub := c.fs.Join(dir, version)
	infos, err := c.fs.ReadDir(sub)
	if err != nil {
		report.Failed = append(report.Failed, fmt.Sprintf("%s: %v", sub, err))
		return
	}
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		fields, ok := c.codec.ParseFullName(info.Name())
		if !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s/%s: does not match naming convention", version, info.Name()))
			continue
		}
		id := fields.AssetID()
		if !containsString(assets[id], version) {
			assets[id] = append(assets[id], version)
		}
	}
}

// Versions returns the discovered versions for an asset, newest first.
// Empty for unknown assets and unscanned directories alike; use HasEntry
// when that distinction matters.
func (c *Cache) Versions(dir, assetID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[dir]
	if !ok {
		return nil
	}
	vs := entry.assets[assetID]
	out := make([]string, len(vs))
	copy(out, vs)
	return out
}

// Latest returns the newest discovered version, or false when the
// directory was never scanned or the asset has no versions.
func (c *Cache) Latest(dir, assetID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[dir]
	if !ok {
		return "", false
	}
	vs := entry.assets[assetID]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// HasEntry reports whether the directory has ever been scanned.
func (c *Cache) HasEntry(dir string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[dir]
	return ok
}

// Invalidate drops one directory's entry. Reads never invalidate.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, dir)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]dirEntry)
}

// Dirs returns every scanned directory, sorted.
func (c *Cache) Dirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dirs := make([]string, 0, len(c.entries))
	for dir := range c.entries {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Snapshot copies the whole index for persistence.
func (c *Cache) Snapshot() map[string]map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]map[string][]string, len(c.entries))
	for dir, entry := range c.entries {
		assets := make(map[string][]string, len(entry.assets))
		for id, vs := range entry.assets {
			cp := make([]string, len(vs))
			copy(cp, vs)
			assets[id] = cp
		}
		out[dir] = assets
	}
	return out
}

// Restore installs a previously persisted entry for a directory.
func (c *Cache) Restore(dir string, assets map[string][]string, scannedAt time.Time) {
	cp := make(map[string][]string, len(assets))
	for id, vs := range assets {
		vsCopy := make([]string, len(vs))
		copy(vsCopy, vs)
		naming.SortVersionsDesc(vsCopy)
		cp[id] = vsCopy
	}
	c.mu.Lock()
	c.entries[dir] = dirEntry{assets: cp, scannedAt: scannedAt}
	c.mu.Unlock()
}

// ScannedAt returns when a directory was last scanned.
func (c *Cache) ScannedAt(dir string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[dir]
	return entry.scannedAt, ok
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
