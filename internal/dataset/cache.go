package dataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autosales-dashboard/internal/models"
)

const cacheVersion = "v1"

type snapshot struct {
	Version string
	Source  string
	SavedAt time.Time
	Records []models.SalesRecord
}

func (l *Loader) snapshotPath(source string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, source)
	return filepath.Join(l.opts.CacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (l *Loader) saveSnapshot(ds *models.Dataset) error {
	if l.opts.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.opts.CacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(l.snapshotPath(ds.Source()))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snapshot{
		Version: cacheVersion,
		Source:  ds.Source(),
		SavedAt: time.Now(),
		Records: ds.All(),
	})
}

// loadSnapshot returns a cached table for source when one exists and is
// younger than CacheMaxAge. Local sources also have to be older than the
// snapshot itself.
func (l *Loader) loadSnapshot(source string) (*models.Dataset, bool) {
	if l.opts.CacheDir == "" {
		return nil, false
	}

	file, err := os.Open(l.snapshotPath(source))
	if err != nil {
		return nil, false
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		l.logger.Warn("discarding unreadable dataset snapshot", "source", source, "error", err)
		return nil, false
	}

	if snap.Version != cacheVersion || snap.Source != source || len(snap.Records) == 0 {
		return nil, false
	}
	if l.opts.CacheMaxAge > 0 && time.Since(snap.SavedAt) > l.opts.CacheMaxAge {
		return nil, false
	}
	if !isRemote(source) {
		info, err := os.Stat(source)
		if err != nil || !info.ModTime().Before(snap.SavedAt) {
			return nil, false
		}
	}

	return models.NewDataset(source, snap.Records), true
}
