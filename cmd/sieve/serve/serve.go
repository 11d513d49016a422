package servecmder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/sieve/cmd/sieve/cmdutil"
	"github.com/papercomputeco/sieve/pkg/config"
	"github.com/papercomputeco/sieve/pkg/logger"
	"github.com/papercomputeco/sieve/server"
)

const serveLongDesc string = `Run the candidate selection HTTP server.

Each request carries its own candidate table and optional sampling options,
which are merged over the defaults from sieve.toml. With --watch, edits to
the config file replace the defaults without a restart; an invalid edit is
logged and the previous defaults stay in place.

Endpoints:
  GET  /health          liveness
  GET  /policies        policy names
  GET  /defaults        current default sampling options
  POST /select/one      draw one candidate
  POST /select/subset   candidates the policy keeps
  GET  /metrics         Prometheus metrics

With --nats (or server.nats_url), the same requests are also answered over
NATS request/reply on <subject>.one and <subject>.subset, load balanced
across every server in the queue group.

Examples:
  sieve serve
  sieve serve --listen :8080 --config sieve.toml --watch
  sieve serve --nats nats://127.0.0.1:4222 --nats-subject lab.select`

const serveShortDesc string = "Run the selection server"

type serveCommander struct {
	listen      string
	watch       bool
	jsonLogs    bool
	natsURL     string
	natsSubject string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", config.DefaultListenAddr, "Address to listen on")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Reload default sampling options when the config file changes")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Log as JSON")
	cmd.Flags().StringVar(&cmder.natsURL, "nats", "", "NATS server URL to answer selection requests from")
	cmd.Flags().StringVar(&cmder.natsSubject, "nats-subject", server.DefaultNATSSubject, "NATS subject prefix")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	configPath := cmdutil.ConfigPath(cmd)
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	listenAddr := cfg.Server.ListenAddr
	if cmd.Flags().Changed("listen") {
		listenAddr = c.listen
	}
	if cmd.Flags().Changed("nats") {
		cfg.Server.NATSURL = c.natsURL
	}
	if cmd.Flags().Changed("nats-subject") {
		cfg.Server.NATSSubject = c.natsSubject
	}

	var logOpts []logger.Option
	if c.jsonLogs || cfg.Server.JSONLogs {
		logOpts = append(logOpts, logger.WithJSON())
	}
	log := cmdutil.Logger(cmd, logOpts...)
	defer log.Sync()

	if c.watch && configPath == "" {
		return errors.New("--watch requires a config file")
	}

	srv, err := server.New(server.Config{
		ListenAddr: listenAddr,
		Defaults:   cfg.Sampling,
	}, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", listenAddr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.watch {
		go func() {
			err := config.Watch(ctx, configPath, log, func(next config.Config) {
				if err := srv.SetDefaults(next.Sampling); err != nil {
					log.Warn("ignoring reloaded sampling options", zap.Error(err))
				}
			})
			if err != nil {
				log.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 2)

	if cfg.Server.NATSURL != "" {
		nc, err := nats.Connect(cfg.Server.NATSURL, nats.Name("sieve"), nats.Timeout(5*time.Second))
		if err != nil {
			listener.Close()
			return fmt.Errorf("could not connect to NATS at %s: %w", cfg.Server.NATSURL, err)
		}
		defer nc.Close()

		go func() {
			if err := srv.ServeNATS(ctx, nc, cfg.Server.NATSSubject, cfg.Server.NATSQueue); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		errCh <- srv.RunWithListener(listener)
	}()

	select {
	case err := <-errCh:
		_ = srv.Shutdown()
		return err
	case <-ctx.Done():
		log.Info("shutting down selection server")
		return srv.Shutdown()
	}
}
