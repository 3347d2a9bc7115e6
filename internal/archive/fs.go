package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/model/interview"
)

// FSArchiver writes one JSON file per completed interview under a directory.
type FSArchiver struct {
	dir string
	log *logging.Logger
}

// NewFSArchiver creates the archive directory if needed.
func NewFSArchiver(dir string, log *logging.Logger) (*FSArchiver, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &FSArchiver{dir: dir, log: log.Sub("archive")}, nil
}

func (a *FSArchiver) Archive(_ context.Context, rec interview.Record) (string, error) {
	id := rec.ArchiveID
	if id == "" {
		id = NewArchiveID(rec.ArchivedAt)
		rec.ArchiveID = id
	}

	blob, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding record %s: %w", id, err)
	}

	path := filepath.Join(a.dir, id+".json")
	// O_EXCL: an archival id is written at most once.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating record %s: %w", id, err)
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		return "", fmt.Errorf("writing record %s: %w", id, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing record %s: %w", id, err)
	}

	a.log.Info().Str("session", rec.SessionID).Str("archiveId", id).Msg("interview archived")
	return id, nil
}
