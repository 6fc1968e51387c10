package repo

import (
	"context"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

// PreferencesRepo is the preference store shared with the settings UI.
// Values are kept in the serialized form the UI writes; parsing happens on read.
type PreferencesRepo interface {
	// ListSchedules parses the stored schedules, dropping malformed records
	ListSchedules(ctx context.Context) ([]*domain.Schedule, error)

	// SchedulesJSON returns the raw stored schedules document
	SchedulesJSON(ctx context.Context) (string, error)

	// SaveSchedulesJSON replaces the raw schedules document
	SaveSchedulesJSON(ctx context.Context, raw string) error

	// KeepMuteLog reads the keepMutedLog flag, true when unset or unreadable
	KeepMuteLog(ctx context.Context) bool

	// SaveSettingsJSON replaces the raw app settings document
	SaveSettingsJSON(ctx context.Context, raw string) error

	// MutedGroups returns the legacy flat muted-group list
	MutedGroups(ctx context.Context) ([]string, error)

	// SaveMutedGroups replaces the legacy muted-group list
	SaveMutedGroups(ctx context.Context, groups []string) error
}
