package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/demark"
	"github.com/aretw0/demark/internal/config"
	loamAdapter "github.com/aretw0/demark/pkg/adapters/loam"
	"github.com/aretw0/demark/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/demark/pkg/adapters/redis"
	"github.com/aretw0/demark/pkg/client"
	"github.com/aretw0/demark/pkg/markup"
	"github.com/aretw0/demark/pkg/observability"
	"github.com/aretw0/demark/pkg/ports"
)

// App aggregates the services shared by the commands.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Normalizer *demark.Normalizer
	Client     *client.Client

	closers []io.Closer
}

// BuildApp wires the services described by cfg.
func BuildApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	cache, err := app.newCache()
	if err != nil {
		return nil, err
	}

	opts := []demark.Option{
		demark.WithPipeline(newPipeline(cfg)),
		demark.WithLogger(logger),
		demark.WithMetrics(app.Metrics),
		demark.WithCacheTimeout(cfg.Cache.Timeout),
	}
	if cache != nil {
		opts = append(opts, demark.WithCache(cache))
	}
	app.Normalizer = demark.New(opts...)

	app.Client = client.New(cfg.Assistant.URL,
		client.WithTimeout(cfg.Assistant.Timeout),
		client.WithRetries(cfg.Assistant.Retries, cfg.Assistant.Backoff),
		client.WithLogger(logger),
	)
	return app, nil
}

func newPipeline(cfg config.Config) *markup.Pipeline {
	if form, ok := cfg.Normalize.UnicodeForm.Form(); ok {
		return markup.New(markup.WithUnicodeForm(form))
	}
	return markup.Default()
}

// newCache returns nil when caching is disabled.
func (a *App) newCache() (ports.Cache, error) {
	c := a.Config.Cache
	switch c.Backend {
	case "none":
		return nil, nil
	case "memory":
		return memory.NewCache(memory.WithTTL(c.TTL), memory.WithLimit(c.Limit)), nil
	case "redis":
		rc := redisAdapter.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB,
			redisAdapter.WithPrefix(c.Redis.Prefix),
			redisAdapter.WithTTL(c.TTL),
		)
		a.closers = append(a.closers, rc)
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

// OpenArchive opens the transcript archive in the configured directory.
func (a *App) OpenArchive() (*loamAdapter.Archive, error) {
	return loamAdapter.Open(a.Config.Archive.Dir)
}

// Close releases connections held by the services.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
