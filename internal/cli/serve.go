package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/groupmute/groupmute/internal/api"
	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/infra/feishu"
	redispub "github.com/groupmute/groupmute/internal/infra/redis"
	"github.com/groupmute/groupmute/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the decision dispatcher and the mute log sinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr := viper.GetString("api_addr"); addr != "" {
			cfg.API.Addr = addr
		}

		a, err := newApp(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return a.serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default :8090)")
	viper.BindPFlag("api_addr", serveCmd.Flags().Lookup("listen"))
}

func (a *app) serve(ctx context.Context) error {
	log := a.log.Component("serve")

	notifications := service.NewNotificationService(
		a.usecases.State, a.usecases.Blocking, a.usecases.MuteLog, a.cfg.Debug, a.log, a.metrics)
	notifications.Start(ctx)
	defer notifications.Stop()

	var sinks sync.WaitGroup
	a.startSinks(ctx, &sinks)

	apiServer := api.NewServer(a.repos.Preferences, a.usecases, notifications, a.broadcaster, a.metrics, a.log, a.cfg.API.Addr)
	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	if a.repos.Platform.DryRun() {
		log.Warn("No platform callback configured, invocations are recorded only")
	}
	log.Info("groupmute started",
		"addr", a.cfg.API.Addr,
		"db", a.cfg.Store.DBPath,
		"timezone", a.usecases.Blocking.Location().String(),
		"version", Version,
	)

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error(err, "API server error")
			return err
		}
	}

	// closing subscriptions ends the sink loops and any open log streams
	a.broadcaster.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error(err, "Failed to stop API server")
	}

	sinks.Wait()
	return nil
}

// startSinks subscribes the optional Feishu relay and Redis publisher
func (a *app) startSinks(ctx context.Context, wg *sync.WaitGroup) {
	log := a.log.Component("serve")

	if a.cfg.RelayEnabled() {
		client := feishu.NewClient(a.cfg.Feishu.AppID, a.cfg.Feishu.AppSecret)
		relay := feishu.NewRelay(client, a.cfg.Feishu.RelayChatID, a.cfg.Feishu.RelayPerMinute,
			a.usecases.Blocking.Location(), a.log)
		a.runSink(ctx, wg, "feishu", relay.Run)
		log.Info("Feishu relay enabled", "chat_id", a.cfg.Feishu.RelayChatID, "per_minute", a.cfg.Feishu.RelayPerMinute)
	}

	if a.cfg.Redis.URL != "" {
		publisher, err := redispub.NewPublisher(ctx, a.cfg.Redis.URL, a.cfg.Redis.Channel, a.log)
		if err != nil {
			// the log still works without fan-out
			log.Error(err, "Redis publisher disabled")
			return
		}
		a.runSink(ctx, wg, "redis", func(ctx context.Context, entries <-chan domain.MuteLogEntry) {
			defer publisher.Close()
			publisher.Run(ctx, entries)
		})
		log.Info("Redis publisher enabled", "channel", a.cfg.Redis.Channel)
	}
}

func (a *app) runSink(ctx context.Context, wg *sync.WaitGroup, name string, run func(context.Context, <-chan domain.MuteLogEntry)) {
	sub := a.broadcaster.Subscribe(name)
	wg.Add(1)
	go func() {
		defer wg.Done()
		run(ctx, sub.C)
	}()
}
