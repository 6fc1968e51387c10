package service

import (
	"context"
	"sync"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/usecase"
	"github.com/groupmute/groupmute/internal/logger"
	"github.com/groupmute/groupmute/internal/metrics"
)

const defaultQueueSize = 256

// Outcome is what happened to one posted notification
type Outcome struct {
	Decision   usecase.Decision `json:"decision"`
	Suppressed bool             `json:"suppressed"`
	Logged     bool             `json:"logged"`
}

// NotificationService handles platform observations.
//
// Posts are cached synchronously; the decision and its side effects run on a
// single dispatcher goroutine once Start is called.
type NotificationService struct {
	state    *usecase.ListenerState
	blocking *usecase.BlockingUsecase
	muteLog  *usecase.MuteLogUsecase
	debug    bool
	log      *logger.Logger
	metrics  *metrics.Metrics

	queue   chan *domain.NotificationEvent
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	onDone  func(event *domain.NotificationEvent, out Outcome)
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	state *usecase.ListenerState,
	blocking *usecase.BlockingUsecase,
	muteLog *usecase.MuteLogUsecase,
	debug bool,
	log *logger.Logger,
	m *metrics.Metrics,
) *NotificationService {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationService{
		state:    state,
		blocking: blocking,
		muteLog:  muteLog,
		debug:    debug,
		log:      log.Component("listener"),
		metrics:  m,
		queue:    make(chan *domain.NotificationEvent, defaultQueueSize),
	}
}

// OnProcessed registers a callback run on the dispatcher after each decision
func (s *NotificationService) OnProcessed(fn func(event *domain.NotificationEvent, out Outcome)) {
	s.onDone = fn
}

// Start starts the dispatcher
func (s *NotificationService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.dispatchLoop()

	s.log.Info("Dispatcher started")
}

// Stop stops the dispatcher after draining queued notifications
func (s *NotificationService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("Dispatcher stopped")
}

// OnPosted caches the observation and queues it for a decision.
// Without a running dispatcher the decision runs inline.
func (s *NotificationService) OnPosted(ctx context.Context, event *domain.NotificationEvent) {
	s.state.Post(event)
	s.metrics.Observed("posted")
	s.metrics.SetCachedEvents(s.state.Len())

	if s.debug {
		s.log.Debug("Notification received",
			"event_id", event.ID,
			"package", event.PackageName,
			"title", event.Title,
			"actions", len(event.Actions),
			"summary", event.IsGroupSummary,
		)
		s.blocking.LogDebugState(ctx)
	}

	s.mu.RLock()
	if s.running {
		select {
		case s.queue <- event:
			s.mu.RUnlock()
			return
		default:
			s.log.Warn("Dispatch queue full, deciding inline", "event_id", event.ID)
		}
	}
	s.mu.RUnlock()

	s.finish(event, s.Process(ctx, event))
}

// OnRemoved evicts the notification from the cache
func (s *NotificationService) OnRemoved(id string) bool {
	removed := s.state.Remove(id)
	s.metrics.Observed("removed")
	s.metrics.SetCachedEvents(s.state.Len())
	if s.debug {
		s.log.Debug("Notification removed", "event_id", id, "cached", removed)
	}
	return removed
}

// Process decides one notification and applies the side effects of a block
func (s *NotificationService) Process(ctx context.Context, event *domain.NotificationEvent) Outcome {
	decision := s.blocking.Evaluate(ctx, event.PackageName, event.Title, s.blocking.Now())
	s.metrics.Decision(decision.Blocked)
	if !decision.Blocked {
		if s.debug {
			s.log.Debug("Notification allowed", "event_id", event.ID)
		}
		return Outcome{Decision: decision}
	}

	// the cached copy reflects the latest repost under this id
	current, ok := s.state.Lookup(event.ID)
	if !ok {
		current = event
	}

	out := Outcome{Decision: decision}
	out.Suppressed = s.blocking.AttemptSuppress(ctx, current)

	status := domain.MuteStatusMuted
	if out.Suppressed {
		status = domain.MuteStatusDismissed
		if s.debug {
			s.log.Debug("Notification dismissed", "event_id", event.ID, "schedule", decision.Schedule)
		}
	} else {
		s.log.Warn("No dismiss action found, notification muted only", "event_id", event.ID, "actions", len(current.Actions))
	}

	out.Logged = s.muteLog.RecordDecision(ctx, current, current.Title, current.Text, status)
	return out
}

func (s *NotificationService) dispatchLoop() {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.queue:
			s.finish(event, s.Process(s.ctx, event))
		case <-s.ctx.Done():
			s.drain()
			return
		}
	}
}

// drain handles whatever was queued before Stop
func (s *NotificationService) drain() {
	ctx := context.Background()
	for {
		select {
		case event := <-s.queue:
			s.finish(event, s.Process(ctx, event))
		default:
			return
		}
	}
}

func (s *NotificationService) finish(event *domain.NotificationEvent, out Outcome) {
	if s.onDone != nil {
		s.onDone(event, out)
	}
}
