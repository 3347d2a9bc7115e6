// Package archive writes immutable records of completed interviews.
package archive

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shipwise/intake/internal/model/interview"
)

// Archiver durably stores one immutable record per completed session and
// returns its archival identifier. Records are never updated or deleted.
type Archiver interface {
	Archive(ctx context.Context, rec interview.Record) (string, error)
}

// NewArchiveID derives a unique archival identifier from the completion
// time. The timestamp keeps records browsable; the suffix rules out
// collisions between interviews finishing in the same second.
func NewArchiveID(ts time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "interview_" + ts.UTC().Format("20060102_150405") + "_" + suffix
}
