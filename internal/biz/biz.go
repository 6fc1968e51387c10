package biz

import (
	"github.com/groupmute/groupmute/internal/biz/repo"
	"github.com/groupmute/groupmute/internal/biz/usecase"
	"github.com/groupmute/groupmute/internal/logger"
	"github.com/groupmute/groupmute/internal/metrics"
)

// Usecases contains all usecases
type Usecases struct {
	State    *usecase.ListenerState
	Blocking *usecase.BlockingUsecase
	MuteLog  *usecase.MuteLogUsecase
	Replay   *usecase.ReplayUsecase
}

// NewUsecases wires the usecases around one shared listener state
func NewUsecases(
	prefs repo.PreferencesRepo,
	logs repo.MuteLogRepo,
	platform repo.NotificationPlatform,
	sink repo.MuteLogSink,
	cfg usecase.BlockingConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Usecases {
	state := usecase.NewListenerState()
	muteLog := usecase.NewMuteLogUsecase(prefs, logs, state, sink, log, m)
	if cfg.Now != nil {
		muteLog.SetClock(cfg.Now)
	}
	return &Usecases{
		State:    state,
		Blocking: usecase.NewBlockingUsecase(prefs, platform, cfg, log, m),
		MuteLog:  muteLog,
		Replay:   usecase.NewReplayUsecase(state, platform),
	}
}
