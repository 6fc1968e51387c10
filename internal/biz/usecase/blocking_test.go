package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

func familyNightSchedule() *domain.Schedule {
	return &domain.Schedule{
		Name:      "Night",
		StartHour: 22,
		EndHour:   8,
		Days:      []int{1, 2, 3, 4, 5, 6, 7},
		Groups:    []string{"Family"},
		Enabled:   true,
	}
}

func newBlocking(prefs *mockPrefsRepo, platform *mockPlatform) *BlockingUsecase {
	return NewBlockingUsecase(prefs, platform, BlockingConfig{Location: time.UTC}, nil, nil)
}

func TestBlocking_ShouldBlock(t *testing.T) {
	uc := newBlocking(newMockPrefs(), &mockPlatform{})
	schedules := []*domain.Schedule{familyNightSchedule()}

	tuesday2300 := domain.Instant{Hour: 23, Minute: 0, Weekday: 2}
	wednesday0900 := domain.Instant{Hour: 9, Minute: 0, Weekday: 3}

	tests := []struct {
		name    string
		pkg     string
		title   string
		at      domain.Instant
		expects bool
	}{
		{"family at night", domain.PackageWhatsApp, "Family: hello", tuesday2300, true},
		{"business app", domain.PackageWhatsAppBusiness, "Family", tuesday2300, true},
		{"outside window", domain.PackageWhatsApp, "Family: hello", wednesday0900, false},
		{"other app", "org.telegram.messenger", "Family", tuesday2300, false},
		{"blank title", domain.PackageWhatsApp, "   ", tuesday2300, false},
		{"other group", domain.PackageWhatsApp, "Work", tuesday2300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expects, uc.ShouldBlock(tt.pkg, tt.title, tt.at, schedules))
		})
	}
}

func TestBlocking_DisabledScheduleIgnored(t *testing.T) {
	uc := newBlocking(newMockPrefs(), &mockPlatform{})
	s := familyNightSchedule()
	s.Enabled = false

	assert.False(t, uc.ShouldBlock(domain.PackageWhatsApp, "Family", domain.Instant{Hour: 23, Weekday: 1}, []*domain.Schedule{s}))
}

func TestBlocking_ExplainReportsFirstMatch(t *testing.T) {
	uc := newBlocking(newMockPrefs(), &mockPlatform{})
	work := &domain.Schedule{Name: "Work", StartHour: 0, EndHour: 23, EndMinute: 59, Days: []int{1}, Groups: []string{"Office", "Team"}, Enabled: true}

	d := uc.Explain(domain.PackageWhatsApp, "Bob in Team", domain.Instant{Hour: 10, Weekday: 1}, []*domain.Schedule{familyNightSchedule(), work})
	assert.Equal(t, Decision{Blocked: true, Schedule: "Work", Group: "Team"}, d)
}

func TestBlocking_EvaluateReadsStore(t *testing.T) {
	prefs := newMockPrefs(familyNightSchedule())
	uc := newBlocking(prefs, &mockPlatform{})
	ctx := context.Background()

	// 2026-10-13 is a Tuesday
	tuesdayNight := time.Date(2026, 10, 13, 23, 0, 0, 0, time.UTC)
	assert.True(t, uc.Evaluate(ctx, domain.PackageWhatsApp, "Family: hello", tuesdayNight).Blocked)

	wednesdayMorning := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	assert.False(t, uc.Evaluate(ctx, domain.PackageWhatsApp, "Family: hello", wednesdayMorning).Blocked)

	// schedules are read fresh on each decision
	prefs.schedules = nil
	assert.False(t, uc.Evaluate(ctx, domain.PackageWhatsApp, "Family: hello", tuesdayNight).Blocked)
}

func TestBlocking_EvaluateUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	uc := NewBlockingUsecase(newMockPrefs(familyNightSchedule()), &mockPlatform{}, BlockingConfig{Location: loc}, nil, nil)

	// 20:00 UTC is 23:00 local
	at := time.Date(2026, 10, 13, 20, 0, 0, 0, time.UTC)
	assert.True(t, uc.Evaluate(context.Background(), domain.PackageWhatsApp, "Family", at).Blocked)
}

func TestBlocking_EvaluateStoreErrorAllows(t *testing.T) {
	prefs := newMockPrefs(familyNightSchedule())
	prefs.schedErr = errors.New("disk gone")
	uc := newBlocking(prefs, &mockPlatform{})

	at := time.Date(2026, 10, 13, 23, 0, 0, 0, time.UTC)
	assert.False(t, uc.Evaluate(context.Background(), domain.PackageWhatsApp, "Family", at).Blocked)
}

func TestBlocking_CustomSourcePackages(t *testing.T) {
	uc := NewBlockingUsecase(newMockPrefs(), &mockPlatform{}, BlockingConfig{SourcePackages: []string{"com.example.chat"}}, nil, nil)
	s := []*domain.Schedule{familyNightSchedule()}
	at := domain.Instant{Hour: 23, Weekday: 1}

	assert.True(t, uc.ShouldBlock("com.example.chat", "Family", at, s))
	assert.False(t, uc.ShouldBlock(domain.PackageWhatsApp, "Family", at, s))
}

func TestBlocking_AttemptSuppress(t *testing.T) {
	markRead := domain.Action{Title: "Mark as read", Semantic: domain.SemanticActionDismiss}
	reply := domain.Action{Title: "Reply", Semantic: 1, RemoteInputs: []string{"text"}}

	t.Run("dismiss action invoked", func(t *testing.T) {
		platform := &mockPlatform{}
		uc := newBlocking(newMockPrefs(), platform)
		event := &domain.NotificationEvent{ID: "e1", Actions: []domain.Action{reply, markRead}, NativeActions: []domain.Action{reply, markRead}}

		require.True(t, uc.AttemptSuppress(context.Background(), event))
		require.Len(t, platform.calls, 1)
		assert.Equal(t, platformCall{eventID: "e1", kind: "action", index: 1}, platform.calls[0])
	})

	t.Run("no actions", func(t *testing.T) {
		platform := &mockPlatform{}
		uc := newBlocking(newMockPrefs(), platform)

		assert.False(t, uc.AttemptSuppress(context.Background(), &domain.NotificationEvent{ID: "e2"}))
		assert.Empty(t, platform.calls)
	})

	t.Run("platform failure", func(t *testing.T) {
		platform := &mockPlatform{err: errPlatformDown}
		uc := newBlocking(newMockPrefs(), platform)
		event := &domain.NotificationEvent{ID: "e3", Actions: []domain.Action{markRead}, NativeActions: []domain.Action{markRead}}

		assert.False(t, uc.AttemptSuppress(context.Background(), event))
	})
}
