package cli

import (
	"io"
	"os"

	"github.com/groupmute/groupmute/internal/biz"
	"github.com/groupmute/groupmute/internal/biz/usecase"
	"github.com/groupmute/groupmute/internal/conf"
	"github.com/groupmute/groupmute/internal/data"
	"github.com/groupmute/groupmute/internal/logger"
	"github.com/groupmute/groupmute/internal/metrics"
	"github.com/groupmute/groupmute/internal/service"
)

const metricsNamespace = "groupmute"

// app holds the wired layers shared by every subcommand
type app struct {
	cfg         *conf.Config
	log         *logger.Logger
	metrics     *metrics.Metrics
	repos       *data.Repositories
	broadcaster *service.Broadcaster
	usecases    *biz.Usecases
}

// newApp opens the store and wires repositories and usecases.
// Logs go to logOut, which must stay off stdout for the stdio MCP transport.
func newApp(cfg *conf.Config, logOut io.Writer) (*app, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = logger.DebugLevel
	}
	log := logger.New(&logger.Config{Level: level, Output: logOut})

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repos, err := data.NewRepositories(cfg.Store.DBPath, cfg.Platform.CallbackURL, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New(metricsNamespace)
	broadcaster := service.NewBroadcaster(0, m)
	usecases := biz.NewUsecases(repos.Preferences, repos.MuteLogs, repos.Platform, broadcaster, usecase.BlockingConfig{
		SourcePackages: cfg.Blocking.SourcePackages,
		Location:       loc,
	}, log, m)

	return &app{
		cfg:         cfg,
		log:         log,
		metrics:     m,
		repos:       repos,
		broadcaster: broadcaster,
		usecases:    usecases,
	}, nil
}

// Close releases the store and live subscribers
func (a *app) Close() {
	a.broadcaster.Close()
	if err := a.repos.Close(); err != nil {
		a.log.Error(err, "Failed to close store")
	}
}
