package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/repo"
)

// ErrCorruptMuteLog is returned when the stored log is not a JSON array
var ErrCorruptMuteLog = repo.ErrCorruptMuteLog

// muteLogRepo keeps the mute log as a single JSON document in the preference store
type muteLogRepo struct {
	store *Store
}

// NewMuteLogRepo creates a new mute log repository
func NewMuteLogRepo(store *Store) repo.MuteLogRepo {
	return &muteLogRepo{store: store}
}

func (r *muteLogRepo) Load(ctx context.Context) ([]domain.MuteLogEntry, error) {
	raw, err := r.store.GetString(ctx, KeyMuteLogs, "[]")
	if err != nil {
		return nil, err
	}
	return ParseMuteLog(raw)
}

func (r *muteLogRepo) Store(ctx context.Context, entries []domain.MuteLogEntry) error {
	if entries == nil {
		entries = []domain.MuteLogEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode mute log: %w", err)
	}
	return r.store.PutString(ctx, KeyMuteLogs, string(raw))
}

// ParseMuteLog decodes a stored mute log, newest first.
// Missing fields take defaults; non-object items and unknown statuses are skipped.
func ParseMuteLog(raw string) ([]domain.MuteLogEntry, error) {
	if !gjson.Valid(raw) {
		return nil, ErrCorruptMuteLog
	}
	root := gjson.Parse(raw)
	if !root.IsArray() {
		return nil, ErrCorruptMuteLog
	}

	entries := []domain.MuteLogEntry{}
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		status, ok := domain.ParseMuteStatus(optString(item.Get("status"), string(domain.MuteStatusMuted)))
		if !ok {
			return true
		}
		ts := item.Get("timestamp")
		entries = append(entries, domain.MuteLogEntry{
			Timestamp:   ts.Int(),
			GroupName:   optString(item.Get("groupName"), domain.UnknownGroupName),
			Status:      status,
			MessageText: optString(item.Get("messageText"), ""),
		})
		return true
	})
	return entries, nil
}
