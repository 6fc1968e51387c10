package data

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/repo"
)

// preferencesRepo implements the preference repository
type preferencesRepo struct {
	store *Store
}

// NewPreferencesRepo creates a new preference repository
func NewPreferencesRepo(store *Store) repo.PreferencesRepo {
	return &preferencesRepo{store: store}
}

func (r *preferencesRepo) ListSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	raw, err := r.store.GetString(ctx, KeySchedules, "[]")
	if err != nil {
		return nil, err
	}
	return ParseSchedules(raw), nil
}

func (r *preferencesRepo) SchedulesJSON(ctx context.Context) (string, error) {
	return r.store.GetString(ctx, KeySchedules, "[]")
}

func (r *preferencesRepo) SaveSchedulesJSON(ctx context.Context, raw string) error {
	if !gjson.Valid(raw) {
		return fmt.Errorf("schedules must be valid JSON")
	}
	return r.store.PutString(ctx, KeySchedules, raw)
}

func (r *preferencesRepo) KeepMuteLog(ctx context.Context) bool {
	raw, err := r.store.GetString(ctx, KeyAppSettings, "{}")
	if err != nil || !gjson.Valid(raw) {
		return true
	}
	return optBool(gjson.Get(raw, "keepMutedLog"), true)
}

func (r *preferencesRepo) SaveSettingsJSON(ctx context.Context, raw string) error {
	if !gjson.Valid(raw) {
		return fmt.Errorf("settings must be valid JSON")
	}
	return r.store.PutString(ctx, KeyAppSettings, raw)
}

func (r *preferencesRepo) MutedGroups(ctx context.Context) ([]string, error) {
	raw, err := r.store.GetString(ctx, KeyMutedGroups, "")
	if err != nil {
		return nil, err
	}
	if raw == "" || !gjson.Valid(raw) {
		return []string{}, nil
	}

	groups := []string{}
	gjson.Parse(raw).ForEach(func(_, v gjson.Result) bool {
		groups = append(groups, optString(v, ""))
		return true
	})
	return groups, nil
}

func (r *preferencesRepo) SaveMutedGroups(ctx context.Context, groups []string) error {
	if groups == nil {
		groups = []string{}
	}
	raw, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}
	return r.store.PutString(ctx, KeyMutedGroups, string(raw))
}

// ParseSchedules decodes a stored schedules document.
// Records missing days or groups, or with an out-of-range time, are skipped.
// A document that is not a JSON array yields no schedules.
func ParseSchedules(raw string) []*domain.Schedule {
	if !gjson.Valid(raw) {
		return nil
	}
	root := gjson.Parse(raw)
	if !root.IsArray() {
		return nil
	}

	var schedules []*domain.Schedule
	root.ForEach(func(_, item gjson.Result) bool {
		if s, ok := parseSchedule(item); ok {
			schedules = append(schedules, s)
		}
		return true
	})
	return schedules
}

func parseSchedule(item gjson.Result) (*domain.Schedule, bool) {
	if !item.IsObject() {
		return nil, false
	}

	var days []int
	for _, d := range item.Get("days").Array() {
		day := optInt(d, 0)
		if day >= 1 && day <= 7 && !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, false
	}

	var groups []string
	for _, g := range item.Get("groups").Array() {
		if v := strings.TrimSpace(optString(g, "")); v != "" {
			groups = append(groups, v)
		}
	}
	if len(groups) == 0 {
		return nil, false
	}

	s := &domain.Schedule{
		ID:          optString(item.Get("id"), ""),
		Name:        optString(item.Get("name"), domain.DefaultScheduleName),
		StartHour:   optInt(item.Get("startHour"), -1),
		StartMinute: optInt(item.Get("startMinute"), -1),
		EndHour:     optInt(item.Get("endHour"), -1),
		EndMinute:   optInt(item.Get("endMinute"), -1),
		Days:        days,
		Groups:      groups,
		Enabled:     optBool(item.Get("enabled"), true),
	}
	if err := s.Validate(); err != nil {
		return nil, false
	}
	return s, true
}

// optInt reads a number or numeric string, truncating fractions
func optInt(r gjson.Result, def int) int {
	switch r.Type {
	case gjson.Number:
		return truncate(r.Num, def)
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return def
		}
		return truncate(f, def)
	}
	return def
}

func truncate(f float64, def int) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

func optString(r gjson.Result, def string) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number, gjson.True, gjson.False:
		return r.Raw
	}
	return def
}

func optBool(r gjson.Result, def bool) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		switch strings.ToLower(r.Str) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return def
}
