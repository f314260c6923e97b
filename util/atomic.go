// util/atomic.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"os"
	"path/filepath"
)

// ReplaceFile writes data to path via a temporary file and rename so a
// reader never sees a partially-written file. If the file already holds
// exactly data, nothing is written; the returned bool reports whether the
// file changed on disk.
func ReplaceFile(path string, data []byte) (bool, error) {
	if onDisk, err := os.ReadFile(path); err == nil && bytes.Equal(onDisk, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return false, err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return false, err
	}
	return true, nil
}
