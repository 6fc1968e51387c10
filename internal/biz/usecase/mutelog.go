package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/repo"
	"github.com/groupmute/groupmute/internal/logger"
	"github.com/groupmute/groupmute/internal/metrics"
)

// MuteLogUsecase records blocking decisions into the bounded mute log
type MuteLogUsecase struct {
	prefs   repo.PreferencesRepo
	logs    repo.MuteLogRepo
	state   *ListenerState
	sink    repo.MuteLogSink // optional
	now     func() time.Time
	log     *logger.Logger
	metrics *metrics.Metrics

	// serializes load-prepend-store on the log
	writeMu sync.Mutex
}

// NewMuteLogUsecase creates a new mute log usecase. sink may be nil.
func NewMuteLogUsecase(
	prefs repo.PreferencesRepo,
	logs repo.MuteLogRepo,
	state *ListenerState,
	sink repo.MuteLogSink,
	log *logger.Logger,
	m *metrics.Metrics,
) *MuteLogUsecase {
	if log == nil {
		log = logger.Nop()
	}
	return &MuteLogUsecase{
		prefs:   prefs,
		logs:    logs,
		state:   state,
		sink:    sink,
		now:     time.Now,
		log:     log.Component("mutelog"),
		metrics: m,
	}
}

// SetClock overrides the time source
func (uc *MuteLogUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// RecordDecision appends an entry for a blocked notification unless logging is off,
// the event is a group summary, or the same content was logged within the dedup window.
// It reports whether an entry was recorded.
func (uc *MuteLogUsecase) RecordDecision(ctx context.Context, event *domain.NotificationEvent, title, text string, status domain.MuteStatus) bool {
	if !uc.prefs.KeepMuteLog(ctx) {
		uc.metrics.MuteLog("disabled")
		return false
	}
	if event.IsGroupSummary {
		uc.log.Debug("Skipping group summary notification log", "event_id", event.ID)
		uc.metrics.MuteLog("skipped_summary")
		return false
	}

	groupName := title
	if strings.TrimSpace(groupName) == "" {
		groupName = domain.UnknownGroupName
	}
	messageText := strings.TrimSpace(text)

	now := uc.now()
	fp := domain.NewFingerprints(event.ID, groupName, messageText)
	if !uc.state.AcceptLogEntry(fp, now.UnixMilli()) {
		uc.log.Debug("Skipping duplicate mute log entry", "event_id", event.ID)
		uc.metrics.MuteLog("duplicate")
		return false
	}

	entry := domain.MuteLogEntry{
		Timestamp:   now.UnixMilli(),
		GroupName:   strings.TrimSpace(groupName),
		Status:      status,
		MessageText: messageText,
	}
	if err := uc.prepend(ctx, entry); err != nil {
		uc.log.Error(err, "Failed to append mute log", "group", entry.GroupName)
		uc.metrics.MuteLog("failed")
		return false
	}

	uc.metrics.MuteLog("recorded")
	uc.publish(entry)
	return true
}

// Append stores a manually reported entry without dedup.
// A blank group name is ignored and an empty status defaults to Muted.
func (uc *MuteLogUsecase) Append(ctx context.Context, groupName string, status domain.MuteStatus, text string) (*domain.MuteLogEntry, error) {
	trimmed := strings.TrimSpace(groupName)
	if trimmed == "" {
		return nil, nil
	}
	if status == "" {
		status = domain.MuteStatusMuted
	}
	if _, ok := domain.ParseMuteStatus(string(status)); !ok {
		return nil, fmt.Errorf("unknown mute status %q", status)
	}

	entry := domain.MuteLogEntry{
		Timestamp:   uc.now().UnixMilli(),
		GroupName:   trimmed,
		Status:      status,
		MessageText: strings.TrimSpace(text),
	}
	if err := uc.prepend(ctx, entry); err != nil {
		return nil, err
	}

	uc.publish(entry)
	return &entry, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (uc *MuteLogUsecase) List(ctx context.Context, limit int) ([]domain.MuteLogEntry, error) {
	entries, err := uc.logs.Load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (uc *MuteLogUsecase) prepend(ctx context.Context, entry domain.MuteLogEntry) error {
	uc.writeMu.Lock()
	defer uc.writeMu.Unlock()

	existing, err := uc.logs.Load(ctx)
	switch {
	case errors.Is(err, repo.ErrCorruptMuteLog):
		// a corrupt document is replaced rather than blocking new entries
		uc.log.Warn("Discarding unreadable mute log", "error", err.Error())
		existing = nil
	case err != nil:
		return fmt.Errorf("failed to load mute log: %w", err)
	}

	l := domain.NewMuteLog(domain.MaxMuteLogEntries, existing)
	l.Prepend(entry)
	return uc.logs.Store(ctx, l.Entries())
}

func (uc *MuteLogUsecase) publish(entry domain.MuteLogEntry) {
	if uc.sink == nil {
		return
	}
	uc.sink.Publish(entry)
}
