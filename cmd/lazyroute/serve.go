package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm/lazyroute/example"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report dashboard",
		Long: `Serve the report dashboard built from lazy routes.

Every flag can also be set through the environment, e.g. LAZYROUTE_ADDR
or LAZYROUTE_ENGINE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	defaults := example.DefaultConfig()
	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("key", "", "key signing referrer state (random when empty)")
	flags.Bool("sealed", false, "encrypt referrer state instead of signing it")
	flags.String("engine", string(example.EngineChi), "router engine (chi or echo)")
	flags.Duration("delay", defaults.Delay, "simulated load time of the reports module")
	flags.Duration("poll", defaults.Poll, "refresh interval of pending sections")
	flags.Bool("preload", false, "load unrestricted routes before serving")

	for _, name := range []string{"addr", "key", "sealed", "engine", "delay", "poll", "preload"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	logger, err := newLogger(v.GetString("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	key := []byte(v.GetString("key"))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		logger.Warn("no key configured, using a random one")
	}

	app := example.New(example.Config{
		Key:     key,
		Sealed:  v.GetBool("sealed"),
		Delay:   v.GetDuration("delay"),
		Poll:    v.GetDuration("poll"),
		Context: ctx,
		Logger:  logger,
	})
	defer app.Close()

	engine := example.Engine(v.GetString("engine"))
	handler, err := app.Handler(engine)
	if err != nil {
		return err
	}
	if v.GetBool("preload") {
		app.Preload(ctx)
	}

	srv := &http.Server{
		Addr:              v.GetString("addr"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr), slog.String("engine", string(engine)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
