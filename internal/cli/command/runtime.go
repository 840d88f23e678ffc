package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/atomstore/internal/cli/output"
	"github.com/yndnr/atomstore/internal/config"
	"github.com/yndnr/atomstore/internal/storage"
	"github.com/yndnr/atomstore/internal/telemetry/logger"
	"github.com/yndnr/atomstore/internal/telemetry/metric"
	"github.com/yndnr/atomstore/pkg/atom"
)

// runtime is what a command works with once configuration is loaded.
type runtime struct {
	configPath string
	overrides  map[string]any

	cfg     *config.Config
	log     logger.Logger
	metrics *metric.Registry
	engine  *storage.Engine
}

// setup loads the configuration, builds the logger and opens storage.
// With metrics set, a registry is created and wired into storage and
// atoms. The caller closes the engine.
func setup(c *cli.Context, metrics bool) (*runtime, error) {
	rt := &runtime{
		configPath: c.String("config"),
		overrides:  overrides(c),
	}
	if rt.configPath == "" {
		rt.configPath = os.Getenv("ATOMSTORE_CONFIG")
	}

	cfg, err := config.Load(rt.configPath, rt.overrides)
	if err != nil {
		return nil, err
	}
	rt.cfg = cfg

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	rt.log = log

	opts := []storage.Option{storage.WithLogger(logger.Slog(log))}
	if metrics {
		reg, err := metric.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		rt.metrics = reg
		opts = append(opts, storage.WithMetrics(reg))
	}

	engine, err := storage.Open(cfg.Storage, opts...)
	if err != nil {
		return nil, err
	}
	rt.engine = engine

	return rt, nil
}

// overrides maps the global flags that were set to configuration keys.
func overrides(c *cli.Context) map[string]any {
	m := make(map[string]any)
	if c.IsSet("data-dir") {
		m["storage.data_dir"] = c.String("data-dir")
	}
	if c.IsSet("storage") {
		m["storage.preset"] = c.String("storage")
	}
	if c.IsSet("log-level") {
		m["log.level"] = c.String("log-level")
	}
	return m
}

// atomMetrics returns the shared atom metrics, or nil without a registry.
func (rt *runtime) atomMetrics() *atom.Metrics {
	if rt.metrics == nil {
		return nil
	}
	return rt.metrics.Atoms
}

// open creates the atom for key on the configured preset.
func (rt *runtime) open(key string, initial any) (*atom.Atom[any], error) {
	return atom.NewFromTarget(rt.engine.Resolver(), rt.engine.Preset(), atom.Options[any]{
		Key:     key,
		Initial: initial,
		Logger:  logger.Slog(rt.log),
		Metrics: rt.atomMetrics(),
	})
}

// parseJSON decodes a command-line JSON argument.
func parseJSON(name, raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%s must be JSON: %w", name, err)
	}
	return v, nil
}

// render writes data to the app's writer in the --output format.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}
