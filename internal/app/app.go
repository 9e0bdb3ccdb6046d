// Package app sequences service startup: open the pool, migrate the
// schema, bind the listener, then serve. The first failing step aborts the
// whole chain and nothing is served.
package app

import (
	"context"
	"fmt"
	"net"
	"time"

	httpapi "github.com/dsjohal14/propstats/internal/http"
	"github.com/dsjohal14/propstats/internal/libs/config"
	"github.com/dsjohal14/propstats/internal/scope/db"
	"github.com/rs/zerolog"
)

// State is a point in the process lifecycle.
type State string

// Lifecycle states. Failure from any state goes straight to Terminated.
const (
	StateUnconfigured     State = "unconfigured"
	StatePoolInitializing State = "pool_initializing"
	StateMigrating        State = "migrating"
	StateServing          State = "serving"
	StateTerminated       State = "terminated"
)

// StartupTimeout bounds pool initialization and migration.
const StartupTimeout = 30 * time.Second

// Store is what the service needs from the database layer.
type Store interface {
	db.PropositionCounter
	Migrate(ctx context.Context, logger zerolog.Logger) error
	Close()
}

// Deps holds the fallible startup steps so they can be replaced in tests.
type Deps struct {
	OpenStore func(ctx context.Context, target config.ConnectionTarget, maxConns int32) (Store, error)
	Listen    func(addr string) (net.Listener, error)

	// OnTransition, when set, observes every state change.
	OnTransition func(State)
}

// DefaultDeps returns the production steps backed by Postgres and TCP.
func DefaultDeps() Deps {
	return Deps{
		OpenStore: func(ctx context.Context, target config.ConnectionTarget, maxConns int32) (Store, error) {
			d, err := db.New(ctx, target, maxConns)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		Listen: httpapi.Listen,
	}
}

// Service is a started service that owns the pool and the listener.
type Service struct {
	store    Store
	listener net.Listener
	handler  *httpapi.Handler
	logger   zerolog.Logger
	notify   func(State)
}

// step is one fallible startup action. state, when set, is entered before
// the action runs.
type step struct {
	name  string
	state State
	run   func(ctx context.Context) error
}

// Start runs pool initialization, migration and listener binding in order.
// On failure every resource acquired so far is released and no listener is
// left bound.
func Start(ctx context.Context, cfg *config.Config, deps Deps, logger zerolog.Logger) (*Service, error) {
	notify := deps.OnTransition
	if notify == nil {
		notify = func(State) {}
	}
	notify(StateUnconfigured)

	s := &Service{logger: logger, notify: notify}

	startCtx, cancel := context.WithTimeout(ctx, StartupTimeout)
	defer cancel()

	steps := []step{
		{"open pool", StatePoolInitializing, func(ctx context.Context) error {
			store, err := deps.OpenStore(ctx, cfg.Database, cfg.MaxConns)
			if err != nil {
				return err
			}
			s.store = store
			return nil
		}},
		{"migrate", StateMigrating, func(ctx context.Context) error {
			return s.store.Migrate(ctx, logger)
		}},
		{"bind", "", func(context.Context) error {
			ln, err := deps.Listen(cfg.Addr())
			if err != nil {
				return err
			}
			s.listener = ln
			return nil
		}},
	}

	for _, st := range steps {
		if st.state != "" {
			notify(st.state)
		}
		logger.Debug().Str("step", st.name).Msg("startup step")

		if err := st.run(startCtx); err != nil {
			s.Close()
			notify(StateTerminated)
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
	}

	s.handler = httpapi.NewHandler(s.store, logger, cfg.StatsTimeout)
	notify(StateServing)
	return s, nil
}

// Addr returns the bound listener address.
func (s *Service) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve handles requests until ctx is cancelled, then releases the pool.
func (s *Service) Serve(ctx context.Context) error {
	defer s.Close()
	defer s.notify(StateTerminated)

	return httpapi.Serve(ctx, s.listener, httpapi.NewRouter(s.handler), s.logger)
}

// Close releases the listener and the pool.
func (s *Service) Close() {
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
}

// Run starts the service and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, deps Deps, logger zerolog.Logger) error {
	s, err := Start(ctx, cfg, deps, logger)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Migrate opens the pool, applies pending migrations and closes the pool
// again, all under StartupTimeout.
func Migrate(ctx context.Context, cfg *config.Config, deps Deps, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, StartupTimeout)
	defer cancel()

	store, err := deps.OpenStore(ctx, cfg.Database, cfg.MaxConns)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
