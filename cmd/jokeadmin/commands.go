package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harveywai/jokeadmin/pkg/apiclient"
	"github.com/harveywai/jokeadmin/pkg/config"
	"github.com/harveywai/jokeadmin/pkg/console"
	"github.com/harveywai/jokeadmin/pkg/database"
	"github.com/harveywai/jokeadmin/pkg/logging"
	"github.com/harveywai/jokeadmin/pkg/stubapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the administration console",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.Banner(cmd.OutOrStdout(), "jokeadmin console", [][2]string{
				{"listen", a.cfg.Addr},
				{"api", a.cfg.APIURL},
				{"api timeout", a.cfg.APITimeout.String()},
			})
			return runServer(ctx, "console", a.cfg.Addr, consoleHandler(a.cfg, a.logger), a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Addr, "Console listen address")
	cmd.Flags().String("api-url", config.Default().APIURL, "Base URL of the bot API")
	cmd.Flags().Duration("api-timeout", config.Default().APITimeout, "Timeout of each bot API request")
	cmd.Flags().Duration("session-ttl", config.Default().SessionTTL, "Idle time after which a console session is dropped")
	return cmd
}

func newStubCmd(a *app) *cobra.Command {
	var addr string
	var seed bool

	cmd := &cobra.Command{
		Use:   "stub-api",
		Short: "Run a local SQLite-backed bot API for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.StubAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler, closeDB, err := stubHandler(a.cfg, seed, a.logger)
			if err != nil {
				return err
			}
			defer closeDB()

			logging.Banner(cmd.OutOrStdout(), "jokeadmin stub api", [][2]string{
				{"listen", a.cfg.StubAddr},
				{"database", a.cfg.StubDB},
			})
			return runServer(ctx, "stub-api", a.cfg.StubAddr, handler, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().StubAddr, "Stub API listen address")
	cmd.Flags().String("db", config.Default().StubDB, "SQLite database file")
	cmd.Flags().BoolVar(&seed, "seed", false, "Fill an empty database with demo triggers and jokes")
	return cmd
}

func newDevCmd(a *app) *cobra.Command {
	var addr string
	var seed bool

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the stub API and the console pointed at it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			a.cfg.APIURL = localURL(a.cfg.StubAddr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stub, closeDB, err := stubHandler(a.cfg, seed, a.logger)
			if err != nil {
				return err
			}
			defer closeDB()

			logging.Banner(cmd.OutOrStdout(), "jokeadmin dev", [][2]string{
				{"console", localURL(a.cfg.Addr)},
				{"stub api", a.cfg.APIURL},
				{"database", a.cfg.StubDB},
			})

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return runServer(ctx, "stub-api", a.cfg.StubAddr, stub, a.logger)
			})
			g.Go(func() error {
				return runServer(ctx, "console", a.cfg.Addr, consoleHandler(a.cfg, a.logger), a.logger)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Addr, "Console listen address")
	cmd.Flags().String("stub-addr", config.Default().StubAddr, "Stub API listen address")
	cmd.Flags().String("db", config.Default().StubDB, "SQLite database file")
	cmd.Flags().BoolVar(&seed, "seed", true, "Fill an empty database with demo triggers and jokes")
	return cmd
}

func consoleHandler(cfg config.Config, logger *zap.Logger) *gin.Engine {
	logger = logger.Named("console")
	client := apiclient.New(cfg.APIURL, apiclient.WithTimeout(cfg.APITimeout))
	sessions := console.NewSessionStore(client, cfg.SessionTTL, logger)
	return console.New(client, sessions, logger).Router()
}

func stubHandler(cfg config.Config, seed bool, logger *zap.Logger) (*gin.Engine, func(), error) {
	db, err := database.Open(cfg.StubDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open stub database: %w", err)
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close stub database", zap.Error(err))
		}
	}
	if seed {
		if err := database.SeedDemo(db); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("seed stub database: %w", err)
		}
	}
	return stubapi.NewRouter(db, logger.Named("stub")), closeDB, nil
}

// runServer serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func runServer(ctx context.Context, name, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("server", name), zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("%s: %w", name, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down", zap.String("server", name))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown: %w", name, err)
	}
	return nil
}
