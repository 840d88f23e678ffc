package command

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/atomstore/internal/config"
	"github.com/yndnr/atomstore/internal/infra/confloader"
	"github.com/yndnr/atomstore/internal/infra/shutdown"
	"github.com/yndnr/atomstore/internal/server/httpserver"
	"github.com/yndnr/atomstore/internal/server/httpserver/handler"
	"github.com/yndnr/atomstore/internal/telemetry/logger"
)

// shutdownTimeout bounds the shutdown hooks of serve.
const shutdownTimeout = 30 * time.Second

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve atoms over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.addr)",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	rt, err := setup(c, true)
	if err != nil {
		return err
	}
	cfg := rt.cfg
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}

	var limiter *rate.Limiter
	if cfg.Server.SetRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.SetRate), max(cfg.Server.SetBurst, 1))
	}

	h := handler.New(handler.Config{
		Resolver: rt.engine.Resolver(),
		Target:   rt.engine.Preset(),
		Limiter:  limiter,
		Metrics:  rt.metrics.Atoms,
		Logger:   logger.Slog(rt.log),
	})
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Handler: h,
		Metrics: rt.metrics,
		Logger:  rt.log,
	})

	l, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		_ = rt.engine.Close()
		return err
	}
	srv := httpserver.New(cfg.Server.Addr, router)

	sh := shutdown.NewHandler(shutdownTimeout)

	// Hooks run in reverse: stop the watcher, drain HTTP, then close storage.
	sh.OnShutdown(func(context.Context) error {
		rt.log.Info("closing storage")
		return rt.engine.Close()
	})
	sh.OnShutdown(func(ctx context.Context) error {
		rt.log.Info("shutting down HTTP server")
		return srv.Shutdown(ctx)
	})

	if rt.configPath != "" {
		w, err := watchConfig(rt)
		if err != nil {
			rt.log.Warn("config hot reload disabled", "error", err)
		} else {
			sh.OnShutdown(func(context.Context) error { return w.Stop() })
		}
	}

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.log.Error("HTTP server error", "error", err)
			sh.Trigger()
		}
	}()

	rt.log.Info("atomctl serving",
		"addr", l.Addr().String(),
		"preset", rt.engine.Preset().String(),
		"config", config.Sanitize(cfg))

	if err := sh.Wait(c.Context); err != nil {
		rt.log.Error("shutdown error", "error", err)
		return err
	}
	rt.log.Info("server stopped gracefully")
	return nil
}

// watchConfig reloads the configuration file on change and applies the
// new log level. Other settings need a restart.
func watchConfig(rt *runtime) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(rt.log)))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(rt.configPath); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		cfg, err := config.Load(path, rt.overrides)
		if err != nil {
			rt.log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			rt.log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
