package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipwise/intake/internal/logging"
	"github.com/shipwise/intake/internal/model/interview"
)

func testRecord(sessionID string) interview.Record {
	return interview.Record{
		SessionID:  sessionID,
		Definition: "shipping-intake",
		History: []interview.Turn{
			{Role: interview.RoleAssistant, Content: "What can I help you ship?"},
			{Role: interview.RoleUser, Content: "A crate of guitars"},
		},
		Slots:      map[string]bool{"project": true},
		ArchivedAt: time.Now().UTC(),
	}
}

func TestArchiveWritesRecord(t *testing.T) {
	dir := t.TempDir()
	arch, err := NewFSArchiver(dir, logging.Nop())
	require.NoError(t, err)

	id, err := arch.Archive(context.Background(), testRecord("s1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "interview_"), "archival id %q", id)

	blob, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)

	var rec interview.Record
	require.NoError(t, json.Unmarshal(blob, &rec))
	assert.Equal(t, "s1", rec.SessionID)
	assert.Equal(t, id, rec.ArchiveID)
	assert.Len(t, rec.History, 2)
}

func TestArchiveIDsAreUnique(t *testing.T) {
	arch, err := NewFSArchiver(t.TempDir(), logging.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := arch.Archive(ctx, testRecord("s1"))
	require.NoError(t, err)
	second, err := arch.Archive(ctx, testRecord("s2"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestArchiveRefusesOverwrite(t *testing.T) {
	arch, err := NewFSArchiver(t.TempDir(), logging.Nop())
	require.NoError(t, err)

	rec := testRecord("s1")
	rec.ArchiveID = NewArchiveID(rec.ArchivedAt)

	ctx := context.Background()
	_, err = arch.Archive(ctx, rec)
	require.NoError(t, err)
	_, err = arch.Archive(ctx, rec)
	assert.Error(t, err, "same archival id must not be written twice")
}
