package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

// Mock implementations

type mockPrefsRepo struct {
	schedules   []*domain.Schedule
	schedErr    error
	keepMuteLog bool
	groups      []string
}

func newMockPrefs(schedules ...*domain.Schedule) *mockPrefsRepo {
	return &mockPrefsRepo{schedules: schedules, keepMuteLog: true}
}

func (m *mockPrefsRepo) ListSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	return m.schedules, m.schedErr
}

func (m *mockPrefsRepo) SchedulesJSON(ctx context.Context) (string, error) {
	return "[]", nil
}

func (m *mockPrefsRepo) SaveSchedulesJSON(ctx context.Context, raw string) error {
	return nil
}

func (m *mockPrefsRepo) KeepMuteLog(ctx context.Context) bool {
	return m.keepMuteLog
}

func (m *mockPrefsRepo) SaveSettingsJSON(ctx context.Context, raw string) error {
	return nil
}

func (m *mockPrefsRepo) MutedGroups(ctx context.Context) ([]string, error) {
	return m.groups, nil
}

func (m *mockPrefsRepo) SaveMutedGroups(ctx context.Context, groups []string) error {
	m.groups = groups
	return nil
}

type mockMuteLogRepo struct {
	mu       sync.Mutex
	entries  []domain.MuteLogEntry
	loadErr  error
	storeErr error
}

func (m *mockMuteLogRepo) Load(ctx context.Context) ([]domain.MuteLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.MuteLogEntry(nil), m.entries...), nil
}

func (m *mockMuteLogRepo) Store(ctx context.Context, entries []domain.MuteLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.entries = append([]domain.MuteLogEntry(nil), entries...)
	m.loadErr = nil
	return nil
}

type mockSink struct {
	mu      sync.Mutex
	entries []domain.MuteLogEntry
}

func (m *mockSink) Publish(entry domain.MuteLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func (m *mockSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type platformCall struct {
	eventID string
	kind    string
	index   int
	inputs  map[string]string
}

type mockPlatform struct {
	mu    sync.Mutex
	calls []platformCall
	err   error
}

func (m *mockPlatform) SendContent(ctx context.Context, event *domain.NotificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, platformCall{eventID: event.ID, kind: "content", index: -1})
	return m.err
}

func (m *mockPlatform) SendAction(ctx context.Context, event *domain.NotificationEvent, index int, inputs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, platformCall{eventID: event.ID, kind: "action", index: index, inputs: inputs})
	return m.err
}

var errPlatformDown = errors.New("platform down")
