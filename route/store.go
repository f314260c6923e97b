// route/store.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package route owns the saved-route side of a sync cycle: discovering
// candidate route files for the current leg, deciding whether one is
// fresh enough to keep, and synthesizing or augmenting the file the
// avionics route importer reads.
package route

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"briefsync/util"
)

type FileInfo struct {
	Name      string
	CreatedAt time.Time
}

// Store is the narrow filesystem surface the evaluator and synthesizer
// run against; MemStore stands in for the plans directory in tests.
type Store interface {
	List() ([]FileInfo, error)
	ReadFile(name string) ([]byte, error)
	// WriteFile atomically replaces name with data and reports whether
	// the bytes on disk changed.
	WriteFile(name string, data []byte) (bool, error)
}

// DirStore serves a single flat directory (the simulator's plans
// folder). CreatedAt is the file's mtime: the synchronizer only ever
// rewrites a file when it is semantically recreating it, so mtime tracks
// creation for everything we own, and third-party planning tools write
// their exports once.
type DirStore struct {
	Dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirStore{Dir: dir}, nil
}

func (d *DirStore) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, err
	}

	var infos []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			if os.IsNotExist(err) { // raced with a delete
				continue
			}
			return nil, err
		}
		infos = append(infos, FileInfo{Name: e.Name(), CreatedAt: fi.ModTime()})
	}
	return infos, nil
}

func (d *DirStore) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Dir, name))
}

func (d *DirStore) WriteFile(name string, data []byte) (bool, error) {
	return util.ReplaceFile(filepath.Join(d.Dir, name), data)
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	Now   func() time.Time
	files map[string]memFile
}

type memFile struct {
	data    []byte
	created time.Time
}

func NewMemStore(now func() time.Time) *MemStore {
	if now == nil {
		now = time.Now
	}
	return &MemStore{Now: now, files: make(map[string]memFile)}
}

// Put seeds a file with an explicit creation time.
func (m *MemStore) Put(name string, data []byte, created time.Time) {
	m.files[name] = memFile{data: append([]byte(nil), data...), created: created}
}

func (m *MemStore) List() ([]FileInfo, error) {
	var infos []FileInfo
	for name, f := range m.files {
		infos = append(infos, FileInfo{Name: name, CreatedAt: f.created})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (m *MemStore) ReadFile(name string) ([]byte, error) {
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

func (m *MemStore) WriteFile(name string, data []byte) (bool, error) {
	if f, ok := m.files[name]; ok && string(f.data) == string(data) {
		return false, nil
	}
	m.files[name] = memFile{data: append([]byte(nil), data...), created: m.Now()}
	return true, nil
}
