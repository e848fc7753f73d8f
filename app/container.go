package app

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"krist-explorer/api"
	"krist-explorer/bus"
	"krist-explorer/cache"
	"krist-explorer/listing"
	"krist-explorer/logger"
	"krist-explorer/models"
	"krist-explorer/store"
	"krist-explorer/tui"
	"krist-explorer/wallets"
)

// Options adjust how the container is built
type Options struct {
	// Stderr mirrors logs to stderr, for commands that do not own the screen
	Stderr bool
}

// Container wires the explorer's services. Everything is built lazily the
// first time Invoke needs it, and exactly once.
type Container struct {
	c *dig.Container

	mu      sync.Mutex
	closers []func() error
}

// New registers all providers for the given configuration
func New(cfg *models.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}

	ct := &Container{c: dig.New()}

	providers := []interface{}{
		func() *models.Config { return cfg },
		func(cfg *models.Config) *logrus.Logger {
			return logger.New(logger.Config{
				LogLevel:     cfg.LogLevel,
				LogFile:      cfg.LogFile,
				LogFileSize:  cfg.LogFileSize,
				LogFileCount: cfg.LogFileCount,
				LogCompress:  cfg.LogCompress,
				Stderr:       opts.Stderr,
			})
		},
		func(log *logrus.Logger) logrus.FieldLogger { return log },
		func(log logrus.FieldLogger) *bus.Bus {
			return bus.New(logger.For(log, "bus"))
		},
		ct.openStore,
		func(s *store.Store, log logrus.FieldLogger) *listing.History {
			return listing.NewHistory(s, logger.For(log, "history"))
		},
		func(s *store.Store, b *bus.Bus, cfg *models.Config, log logrus.FieldLogger) (*wallets.Store, error) {
			return wallets.NewStore(s, b, logger.For(log, "wallets"), cfg.Wallets)
		},
		func(cfg *models.Config, log logrus.FieldLogger) *api.Client {
			return api.NewClient(api.ClientConfig{
				BaseURL:   cfg.SyncNode,
				Timeout:   cfg.Timeout,
				UserAgent: cfg.UserAgent,
				RateLimit: cfg.RateLimit,
				RateBurst: cfg.RateBurst,
			}, logger.For(log, "api"))
		},
		ct.newCaches,
		newDeps,
	}

	for _, p := range providers {
		if err := ct.c.Provide(p); err != nil {
			return nil, errors.Wrap(err, "registering provider")
		}
	}

	return ct, nil
}

func (ct *Container) openStore(cfg *models.Config, log logrus.FieldLogger) (*store.Store, error) {
	s, err := store.Open(cfg.StateFile)
	if err != nil {
		return nil, err
	}
	logger.For(log, "store").WithField("path", s.Path()).Debug("state store opened")
	ct.onClose(s.Close)
	return s, nil
}

func (ct *Container) newCaches() *cache.Caches {
	c := cache.NewCaches()
	ct.onClose(func() error {
		c.Close()
		return nil
	})
	return c
}

func newDeps(cfg *models.Config, client *api.Client, h *listing.History, w *wallets.Store, b *bus.Bus, c *cache.Caches, log logrus.FieldLogger) tui.Deps {
	return tui.Deps{
		Config:  cfg,
		Client:  client,
		History: h,
		Wallets: w,
		Bus:     b,
		Caches:  c,
		Log:     log,
	}
}

func (ct *Container) onClose(fn func() error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.closers = append(ct.closers, fn)
}

// Invoke calls fn with its parameters resolved from the container
func (ct *Container) Invoke(fn interface{}) error {
	if err := ct.c.Invoke(fn); err != nil {
		return errors.Wrap(dig.RootCause(err), "running command")
	}
	return nil
}

// Close releases whatever was opened, newest first
func (ct *Container) Close() error {
	ct.mu.Lock()
	closers := ct.closers
	ct.closers = nil
	ct.mu.Unlock()

	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
