package repo

import (
	"context"
	"errors"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

// ErrCorruptMuteLog is returned by MuteLogRepo.Load when the stored log cannot be decoded
var ErrCorruptMuteLog = errors.New("stored mute log is not a JSON array")

// MuteLogRepo persists the mute log as one newest-first sequence
type MuteLogRepo interface {
	// Load returns the stored entries, newest first.
	// Entries that cannot be read are skipped.
	Load(ctx context.Context) ([]domain.MuteLogEntry, error)

	// Store replaces the stored sequence
	Store(ctx context.Context, entries []domain.MuteLogEntry) error
}

// MuteLogSink receives each accepted mute log entry.
// Publish must not block; failures are the sink's own concern.
type MuteLogSink interface {
	Publish(entry domain.MuteLogEntry)
}
