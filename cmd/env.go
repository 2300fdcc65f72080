package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscout/internal/admission"
	"github.com/sells-group/autoscout/internal/cache"
	"github.com/sells-group/autoscout/internal/counter"
	"github.com/sells-group/autoscout/internal/evidence"
	"github.com/sells-group/autoscout/internal/orchestrator"
	"github.com/sells-group/autoscout/internal/pipeline"
	"github.com/sells-group/autoscout/internal/store"
	anthropicpkg "github.com/sells-group/autoscout/pkg/anthropic"
	"github.com/sells-group/autoscout/pkg/jobwire"
	"github.com/sells-group/autoscout/pkg/stackprint"
	"github.com/sells-group/autoscout/pkg/wayback"
)

// appEnv holds the initialized backends and the orchestrator the
// search/research/serve commands run against.
type appEnv struct {
	Orchestrator *orchestrator.Orchestrator
	Cache        *cache.Service
	Store        store.Store

	counters counter.Store
	cacheMem *cache.MemoryStore
	cacheRds *cache.RedisStore
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if mem, ok := e.counters.(*counter.MemoryStore); ok {
		mem.Close()
	} else if rds, ok := e.counters.(*counter.RedisStore); ok {
		_ = rds.Close()
	}
	if e.cacheMem != nil {
		e.cacheMem.Close()
	}
	if e.cacheRds != nil {
		_ = e.cacheRds.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv builds the counter and cache backends, evidence clients, the
// pipeline and the orchestrator. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	env := &appEnv{}

	counters, err := initCounters()
	if err != nil {
		return nil, err
	}
	env.counters = counters
	adm := admission.New(counters, cfg.Admission)

	cch, err := env.initCache()
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Cache = cch

	st, err := initStore(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Store = st
	if st != nil {
		if err := st.Migrate(ctx); err != nil {
			env.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}

	jobwireClient := jobwire.NewClient(cfg.Evidence.JobwireKey, jobwireOptions()...)
	stackprintClient := stackprint.NewClient(cfg.Evidence.StackprintKey, stackprintOptions()...)
	waybackClient := wayback.NewClient(waybackOptions()...)
	collector := evidence.NewHTTPCollector(cfg.Evidence, jobwireClient, stackprintClient, waybackClient)

	// No API key means every pipeline stage runs its deterministic
	// implementation.
	var ai anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		ai = anthropicpkg.NewClient(cfg.Anthropic.Key)
		zap.L().Info("capability-backed analysis enabled", zap.String("model", cfg.Anthropic.Model))
	} else {
		zap.L().Info("no anthropic key set, using deterministic analysis only")
	}
	pipe := pipeline.New(ai, cfg.Anthropic)

	env.Orchestrator = orchestrator.New(cfg, adm, cch, collector, pipe, st)
	return env, nil
}

func initCounters() (counter.Store, error) {
	switch cfg.Counter.Backend {
	case "", "memory":
		return counter.NewMemory(), nil
	case "redis":
		s, err := counter.NewRedis(cfg.Counter.RedisAddr, cfg.Counter.RedisPassword, cfg.Counter.RedisDB)
		if err != nil {
			return nil, eris.Wrap(err, "init redis counter store")
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown counter backend %q", cfg.Counter.Backend)
	}
}

func (e *appEnv) initCache() (*cache.Service, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		e.cacheMem = cache.NewMemory()
		return cache.NewService(e.cacheMem, cfg.Cache), nil
	case "redis":
		s, err := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			return nil, eris.Wrap(err, "init redis cache store")
		}
		e.cacheRds = s
		return cache.NewService(s, cfg.Cache), nil
	default:
		return nil, eris.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// initStore opens the run-log database named by config. An empty driver
// disables run logging.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "":
		return nil, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.DSN)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite store")
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DSN, nil)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func jobwireOptions() []jobwire.Option {
	if cfg.Evidence.JobwireBaseURL == "" {
		return nil
	}
	return []jobwire.Option{jobwire.WithBaseURL(cfg.Evidence.JobwireBaseURL)}
}

func stackprintOptions() []stackprint.Option {
	if cfg.Evidence.StackprintBaseURL == "" {
		return nil
	}
	return []stackprint.Option{stackprint.WithBaseURL(cfg.Evidence.StackprintBaseURL)}
}

func waybackOptions() []wayback.Option {
	if cfg.Evidence.WaybackBaseURL == "" {
		return nil
	}
	return []wayback.Option{wayback.WithBaseURL(cfg.Evidence.WaybackBaseURL)}
}
