package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/repo"
	"github.com/groupmute/groupmute/internal/logger"
	"github.com/groupmute/groupmute/internal/metrics"
)

// Decision is the outcome of evaluating one notification
type Decision struct {
	Blocked  bool   `json:"blocked"`
	Schedule string `json:"schedule,omitempty"` // name of the first schedule that matched
	Group    string `json:"group,omitempty"`    // group entry that matched the title
}

// BlockingConfig configures the decision engine
type BlockingConfig struct {
	SourcePackages []string       // defaults to the two chat app packages
	Location       *time.Location // wall clock used for schedules, defaults to time.Local
	Now            func() time.Time
}

// BlockingUsecase decides whether notifications are muted and suppresses them
type BlockingUsecase struct {
	prefs    repo.PreferencesRepo
	platform repo.NotificationPlatform
	packages []string
	loc      *time.Location
	now      func() time.Time
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewBlockingUsecase creates a new blocking usecase
func NewBlockingUsecase(
	prefs repo.PreferencesRepo,
	platform repo.NotificationPlatform,
	cfg BlockingConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *BlockingUsecase {
	packages := cfg.SourcePackages
	if len(packages) == 0 {
		packages = []string{domain.PackageWhatsApp, domain.PackageWhatsAppBusiness}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BlockingUsecase{
		prefs:    prefs,
		platform: platform,
		packages: packages,
		loc:      loc,
		now:      now,
		log:      log.Component("blocker"),
		metrics:  m,
	}
}

// Now returns the current time in the schedule location
func (uc *BlockingUsecase) Now() time.Time {
	return uc.now().In(uc.loc)
}

// Location returns the schedule location
func (uc *BlockingUsecase) Location() *time.Location {
	return uc.loc
}

func (uc *BlockingUsecase) isSourcePackage(packageName string) bool {
	return slices.Contains(uc.packages, packageName)
}

// Explain evaluates a notification against the given schedules
func (uc *BlockingUsecase) Explain(packageName, title string, at domain.Instant, schedules []*domain.Schedule) Decision {
	if !uc.isSourcePackage(packageName) {
		return Decision{}
	}
	if strings.TrimSpace(title) == "" {
		return Decision{}
	}

	for _, s := range schedules {
		if !s.Enabled || !s.IsActiveAt(at) {
			continue
		}
		if group, ok := domain.MatchingGroup(title, s.Groups); ok {
			return Decision{Blocked: true, Schedule: s.Name, Group: group}
		}
	}
	return Decision{}
}

// ShouldBlock reports whether any enabled schedule active at the instant mutes the title
func (uc *BlockingUsecase) ShouldBlock(packageName, title string, at domain.Instant, schedules []*domain.Schedule) bool {
	return uc.Explain(packageName, title, at, schedules).Blocked
}

// Evaluate reads the schedules fresh and decides for the given time.
// A store failure allows the notification.
func (uc *BlockingUsecase) Evaluate(ctx context.Context, packageName, title string, at time.Time) Decision {
	if !uc.isSourcePackage(packageName) || strings.TrimSpace(title) == "" {
		return Decision{}
	}

	schedules, err := uc.prefs.ListSchedules(ctx)
	if err != nil {
		uc.log.Error(err, "Failed to load schedules", "package", packageName)
		return Decision{}
	}
	if len(schedules) == 0 {
		return Decision{}
	}

	return uc.Explain(packageName, title, domain.InstantOf(at.In(uc.loc)), schedules)
}

// AttemptSuppress invokes the notification's dismiss action.
// It returns false when no matching dismiss action exists or the platform call fails.
func (uc *BlockingUsecase) AttemptSuppress(ctx context.Context, event *domain.NotificationEvent) bool {
	idx := event.DismissActionIndex()
	if idx < 0 {
		uc.metrics.Suppress(false)
		return false
	}

	if err := uc.platform.SendAction(ctx, event, idx, nil); err != nil {
		uc.log.Error(err, "Failed to send dismiss action", "event_id", event.ID, "index", idx)
		uc.metrics.Suppress(false)
		return false
	}

	uc.metrics.Suppress(true)
	return true
}

// LogDebugState logs every loaded schedule at debug level
func (uc *BlockingUsecase) LogDebugState(ctx context.Context) {
	if !uc.log.DebugEnabled() {
		return
	}

	schedules, err := uc.prefs.ListSchedules(ctx)
	if err != nil {
		uc.log.Error(err, "Failed to load schedules for debug state")
		return
	}

	uc.log.Debug("Loaded schedules", "count", len(schedules))
	for _, s := range schedules {
		uc.log.Debug("Schedule",
			"name", s.Name,
			"enabled", s.Enabled,
			"days", s.Days,
			"time", s.FormatWindow(),
			"groups", len(s.Groups),
		)
	}
}
