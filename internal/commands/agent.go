package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bensuskins/habit-hub/internal/agentapi"
	"github.com/bensuskins/habit-hub/internal/config"
	"github.com/bensuskins/habit-hub/internal/controller"
	"github.com/bensuskins/habit-hub/internal/localstore"
	"github.com/bensuskins/habit-hub/internal/logging"
	"github.com/bensuskins/habit-hub/internal/presentation"
	"github.com/bensuskins/habit-hub/internal/remotesync"
	"github.com/bensuskins/habit-hub/internal/server"
	"github.com/spf13/cobra"
)

const initialPullMaxElapsed = 30 * time.Second

func addAgent(topLevel *cobra.Command) {
	var port string
	var profileID string
	var dataDir string
	var serviceURL string

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run the local reminder agent.",
		Long:  "Run the reminder engine with its local control API. With a profile id it keeps habits and history in step with the profile service.",
		Example: `
habit-hub agent
habit-hub agent --profile 3f1c... --service-url http://hub:8080
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if port != "" {
				cfg.AgentPort = port
			}
			if profileID != "" {
				cfg.ProfileID = profileID
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if serviceURL != "" {
				cfg.ProfileServiceURL = serviceURL
			}
			if err := cfg.ValidateAgent(); err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runAgent(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port for the local control API.")
	cmd.Flags().StringVar(&profileID, "profile", "", "Profile id to sync with.")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for local state.")
	cmd.Flags().StringVar(&serviceURL, "service-url", "", "Base URL of the profile service.")

	topLevel.AddCommand(cmd)
}

func runAgent(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	adapter := remotesync.NewAdapter(
		remotesync.NewHTTPClient(cfg.ProfileServiceURL, cfg.SyncTimeout),
		cfg.ProfileID,
		cfg.SyncTimeout,
	)
	defer adapter.Wait()

	ctrl := controller.New(controller.Options{
		Persistence:  localstore.Open(cfg.DataDir),
		Syncer:       adapter,
		Presenter:    presentation.NewConsole(os.Stdout),
		Chime:        presentation.NewBell(os.Stdout),
		TickInterval: cfg.TickInterval,
		RingTimeout:  cfg.RingTimeout,
	})
	if err := ctrl.Load(); err != nil {
		return fmt.Errorf("loading local state: %w", err)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		ctrl.Run(ctx)
	}()

	if adapter.Enabled() {
		go initialPull(ctx, adapter, ctrl)
	} else {
		slog.Info("no profile configured, running offline")
	}

	err := server.ListenAndServe(ctx, ":"+cfg.AgentPort, agentapi.NewRouter(ctrl))
	cancel()
	<-loopDone
	return err
}

func initialPull(ctx context.Context, adapter *remotesync.Adapter, ctrl *controller.Controller) {
	profile, err := adapter.PullWithRetry(ctx, initialPullMaxElapsed)
	if err != nil {
		slog.Error("initial profile pull failed, continuing with local state", "error", err)
		return
	}

	summary, err := ctrl.ApplyProfile(ctx, profile)
	if err != nil {
		slog.Error("applying pulled profile", "error", err)
		return
	}
	slog.Info("merged remote profile", "habits_added", summary.HabitsAdded, "habits_skipped", summary.HabitsSkipped, "history_added", summary.HistoryAdded)
}
