// Package snapshot persists scraped show entries as a JSON document.
// Writes are atomic: the previous snapshot stays intact until the new one
// is fully on disk.
package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"

	"wfmu/internal/errutil"
	"wfmu/internal/show"
)

// New builds a snapshot of entries scraped from sourceURL at now.
func New(entries []show.Entry, sourceURL string, now time.Time) show.Snapshot {
	return show.NewSnapshot(entries, sourceURL, now)
}

// Encode renders snap as indented JSON. Non-ASCII text and markup
// characters are written as-is.
func Encode(snap show.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, errors.Wrap(errutil.ErrSnapshotWrite, err.Error())
	}
	return buf.Bytes(), nil
}

// Save replaces the file at path with snap, creating parent directories.
func Save(path string, snap show.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(errutil.ErrSnapshotWrite, "creating snapshot dir: %v", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return errors.Wrapf(errutil.ErrSnapshotWrite, "creating pending file: %v", err)
	}
	// no-op once the file was committed
	defer pending.Cleanup()

	if _, err := pending.Write(data); err != nil {
		return errors.Wrapf(errutil.ErrSnapshotWrite, "writing %s: %v", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(errutil.ErrSnapshotWrite, "replacing %s: %v", path, err)
	}
	return nil
}

// Load reads the snapshot at path.
func Load(path string) (show.Snapshot, error) {
	var snap show.Snapshot

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, errors.Wrapf(errutil.ErrSnapshotMissing, "%s (run \"wfmu scrape\" first)", path)
		}
		return snap, errors.Wrapf(errutil.ErrSnapshotInvalid, "reading %s: %v", path, err)
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, errors.Wrapf(errutil.ErrSnapshotInvalid, "decoding %s: %v", path, err)
	}
	if snap.Playlists == nil {
		return snap, errors.Wrapf(errutil.ErrSnapshotInvalid, "%s has no playlists", path)
	}
	return snap, nil
}
