package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/usereml/lightecho-stellar-oracle/internal/config"
	"github.com/usereml/lightecho-stellar-oracle/internal/host"
	"github.com/usereml/lightecho-stellar-oracle/internal/metrics"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the oracle server",
	Long: `Start the oracle server which provides:
- HTTP JSON-RPC API at /
- WebSocket API at /ws (unless disabled)
- Prometheus metrics at the configured metrics path

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = runServer
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, log)
}

// serve runs the HTTP listener until ctx is cancelled
func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	opts, err := cfg.OracleOptions()
	if err != nil {
		return err
	}

	manager, db, err := openState(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()

	collector := metrics.New()
	h := host.New(db, oracle.New(opts),
		host.WithNamespace(cfg.Oracle.Namespace),
		host.WithLogger(log.WithField("component", "host")),
		host.WithObserver(collector),
	)
	rpcServer := rpc.NewServer(h, cfg.Server.Timeout(),
		rpc.WithLogger(log.WithField("component", "rpc")),
		rpc.WithObserver(collector),
		rpc.WithInfo(rpc.Info{Version: Version, Backend: cfg.Storage.Backend}),
	)

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle(cfg.Server.MetricsPath, collector.Handler())
	var wsServer *rpc.WebSocketServer
	if cfg.Server.WebSocket {
		wsServer = rpc.NewWebSocketServer(rpcServer, collector)
		mux.Handle("/ws", wsServer)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: cfg.Server.Timeout(),
	}

	log.WithFields(logrus.Fields{
		"address":          cfg.Server.Address(),
		"backend":          cfg.Storage.Backend,
		"namespace":        cfg.Oracle.Namespace,
		"prune_rule":       opts.PruneRule.String(),
		"timestamp_policy": opts.TimestampPolicy.String(),
		"websocket":        cfg.Server.WebSocket,
		"config":           cfg.ConfigPath(),
	}).Info("Starting oracle server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down oracle server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if wsServer != nil {
			wsServer.Close()
		}
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
