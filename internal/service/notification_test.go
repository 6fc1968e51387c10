package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/usecase"
	"github.com/groupmute/groupmute/internal/data"
)

const nightSchedule = `[{"name":"Night","startHour":22,"startMinute":0,"endHour":8,"endMinute":0,
	"days":[1,2,3,4,5,6,7],"groups":["Family"],"enabled":true}]`

type testEnv struct {
	svc         *NotificationService
	repos       *data.Repositories
	broadcaster *Broadcaster
	clock       *time.Time
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	repos, err := data.NewRepositories(filepath.Join(t.TempDir(), "groupmute.db"), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	require.NoError(t, repos.Preferences.SaveSchedulesJSON(context.Background(), nightSchedule))

	clock := now
	state := usecase.NewListenerState()
	broadcaster := NewBroadcaster(0, nil)
	blocking := usecase.NewBlockingUsecase(repos.Preferences, repos.Platform, usecase.BlockingConfig{
		Location: time.UTC,
		Now:      func() time.Time { return clock },
	}, nil, nil)
	muteLog := usecase.NewMuteLogUsecase(repos.Preferences, repos.MuteLogs, state, broadcaster, nil, nil)
	muteLog.SetClock(func() time.Time { return clock })

	return &testEnv{
		svc:         NewNotificationService(state, blocking, muteLog, true, nil, nil),
		repos:       repos,
		broadcaster: broadcaster,
		clock:       &clock,
	}
}

func (e *testEnv) entries(t *testing.T) []domain.MuteLogEntry {
	t.Helper()
	entries, err := e.repos.MuteLogs.Load(context.Background())
	require.NoError(t, err)
	return entries
}

var (
	tuesday2300   = time.Date(2026, 10, 13, 23, 0, 0, 0, time.UTC)
	wednesday0900 = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	markRead      = domain.Action{Title: "Mark as read", Semantic: domain.SemanticActionDismiss}
)

func familyEvent(key string) *domain.NotificationEvent {
	return &domain.NotificationEvent{
		ID:            domain.EventID(domain.PackageWhatsApp, key),
		Key:           key,
		PackageName:   domain.PackageWhatsApp,
		Title:         "Family: hello",
		Text:          "dinner at 8",
		Actions:       []domain.Action{markRead},
		NativeActions: []domain.Action{markRead},
	}
}

func TestProcess_BlocksInsideOvernightWindow(t *testing.T) {
	env := newTestEnv(t, tuesday2300)
	event := familyEvent("k1")
	env.svc.OnPosted(context.Background(), event)

	entries := env.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.MuteStatusDismissed, entries[0].Status)
	assert.Equal(t, "Family: hello", entries[0].GroupName)
	assert.Equal(t, "dinner at 8", entries[0].MessageText)

	sent := env.repos.Platform.Invocations()
	require.Len(t, sent, 1)
	assert.Equal(t, event.ID, sent[0].EventID)
	assert.Equal(t, 0, sent[0].ActionIndex)
}

func TestProcess_AllowsOutsideWindow(t *testing.T) {
	env := newTestEnv(t, wednesday0900)

	out := env.svc.Process(context.Background(), familyEvent("k1"))
	assert.False(t, out.Decision.Blocked)
	assert.Empty(t, env.entries(t))
	assert.Empty(t, env.repos.Platform.Invocations())
}

func TestProcess_GroupSummaryNeverLogged(t *testing.T) {
	env := newTestEnv(t, tuesday2300)
	event := familyEvent("summary")
	event.IsGroupSummary = true
	env.svc.OnPosted(context.Background(), event)

	out := env.svc.Process(context.Background(), event)
	assert.True(t, out.Decision.Blocked)
	assert.False(t, out.Logged)
	assert.Empty(t, env.entries(t))
}

func TestProcess_NoActionsLogsMuted(t *testing.T) {
	env := newTestEnv(t, tuesday2300)
	event := familyEvent("k2")
	event.Actions = nil
	event.NativeActions = nil
	env.svc.OnPosted(context.Background(), event)

	entries := env.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.MuteStatusMuted, entries[0].Status)
}

func TestProcess_BurstLoggedOnce(t *testing.T) {
	env := newTestEnv(t, tuesday2300)
	sub := env.broadcaster.Subscribe("test")

	for i := 0; i < 3; i++ {
		env.svc.OnPosted(context.Background(), familyEvent("k1"))
	}

	assert.Len(t, env.entries(t), 1)
	assert.Len(t, sub.C, 1, "exactly one live push")
	assert.Len(t, env.repos.Platform.Invocations(), 3, "every posting is still dismissed")
}

func TestProcess_UsesLatestCachedPosting(t *testing.T) {
	env := newTestEnv(t, tuesday2300)
	first := familyEvent("k1")
	first.Actions = nil
	first.NativeActions = nil

	env.svc.state.Post(first)
	env.svc.state.Post(familyEvent("k1"))

	out := env.svc.Process(context.Background(), first)
	assert.True(t, out.Suppressed, "repost with a dismiss action overwrote the first posting")
}

func TestOnRemoved(t *testing.T) {
	env := newTestEnv(t, wednesday0900)
	event := familyEvent("k1")
	env.svc.OnPosted(context.Background(), event)

	assert.True(t, env.svc.OnRemoved(event.ID))
	assert.False(t, env.svc.OnRemoved(event.ID))
	_, ok := env.svc.state.Lookup(event.ID)
	assert.False(t, ok)
}

func TestDispatcher_ProcessesAsynchronously(t *testing.T) {
	env := newTestEnv(t, tuesday2300)

	var mu sync.Mutex
	var outcomes []Outcome
	done := make(chan struct{}, 4)
	env.svc.OnProcessed(func(event *domain.NotificationEvent, out Outcome) {
		mu.Lock()
		outcomes = append(outcomes, out)
		mu.Unlock()
		done <- struct{}{}
	})

	env.svc.Start(context.Background())
	env.svc.OnPosted(context.Background(), familyEvent("a"))
	other := familyEvent("b")
	other.Title = "Work"
	env.svc.OnPosted(context.Background(), other)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("dispatcher did not process notifications")
		}
	}
	env.svc.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 2)
	blocked := 0
	for _, o := range outcomes {
		if o.Decision.Blocked {
			blocked++
		}
	}
	assert.Equal(t, 1, blocked)
	assert.Len(t, env.entries(t), 1)
}
