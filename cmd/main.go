package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/laurel/internal/adapters/graphstore"
	"github.com/okian/laurel/internal/adapters/http/api"
	"github.com/okian/laurel/internal/adapters/scorestore"
	"github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/config"
	"github.com/okian/laurel/internal/graphsync"
	"github.com/okian/laurel/internal/ranking"
	"github.com/okian/laurel/internal/record"
	"github.com/okian/laurel/internal/recommender"
	"github.com/okian/laurel/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	hoursPerDay       = 24
)

func main() {
	// Disable default Go metrics collection; the custom registry carries the
	// service's own metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("log sync failed: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	scores := buildScoreStore(ctx, cfg, log)
	defer func() {
		if err := scores.Close(); err != nil {
			log.Warn(ctx, "score store close failed", logger.Error(err))
		}
	}()

	graph := buildGraphStore(ctx, cfg, log)
	defer func() {
		if err := graph.Close(ctx); err != nil {
			log.Warn(ctx, "graph store close failed", logger.Error(err))
		}
	}()

	// The system of record is a collaborator in production; the embedded
	// source keeps the service runnable on its own.
	source := record.NewMemSource()

	ttl := time.Duration(cfg.LeaderboardTTLDays) * hoursPerDay * time.Hour
	svc := app.NewService(
		ranking.NewArticleEngine(scores, source,
			ranking.WithArticleTTL(ttl),
			ranking.WithArticleBatchSize(cfg.SyncBatchSize)),
		ranking.NewUserEngine(scores, source,
			ranking.WithUserTTL(ttl),
			ranking.WithUserBatchSize(cfg.SyncBatchSize)),
		graphsync.NewPipeline(graph, source,
			graphsync.WithBatchSize(cfg.SyncBatchSize)),
		recommender.NewEngine(graph,
			recommender.WithCacheTTL(time.Duration(cfg.RecommendationCacheTTLSeconds)*time.Second),
			recommender.WithCacheSize(cfg.RecommendationCacheSize),
			recommender.WithMaxLimit(cfg.MaxRecommendationLimit),
			recommender.WithMinFollowers(int64(cfg.MinInfluentialFollowers))),
		app.WithLogger(log),
	)

	// Warm both projections from the record before taking traffic.
	if _, err := svc.SyncAll(ctx); err != nil {
		log.Warn(ctx, "initial resync incomplete", logger.Error(err))
	}

	if cfg.ResyncIntervalMinutes > 0 {
		go startResyncScheduler(ctx, svc, time.Duration(cfg.ResyncIntervalMinutes)*time.Minute, log)
	}

	mux := http.NewServeMux()
	api.NewServer(svc, cfg.MaxLeaderboardLimit).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildScoreStore selects Redis when configured, the embedded store
// otherwise. A Redis that does not answer the initial ping is still used;
// the engines tolerate and log per-operation failures.
func buildScoreStore(ctx context.Context, cfg *config.Config, log logger.Logger) scorestore.Store {
	if cfg.RedisAddr == "" {
		log.Info(ctx, "using embedded score store")
		return scorestore.NewMemStore()
	}
	store := scorestore.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := store.Ping(ctx); err != nil {
		log.Warn(ctx, "redis unreachable at startup", logger.String("addr", cfg.RedisAddr), logger.Error(err))
	} else {
		log.Info(ctx, "using redis score store", logger.String("addr", cfg.RedisAddr))
	}
	return store
}

// buildGraphStore selects Neo4j when configured, the embedded graph
// otherwise. An unreachable Neo4j degrades per the store's probe policy
// instead of failing the boot.
func buildGraphStore(ctx context.Context, cfg *config.Config, log logger.Logger) graphstore.Store {
	if cfg.Neo4jURI == "" {
		log.Info(ctx, "using embedded graph store")
		return graphstore.NewMemGraph()
	}
	var opts []graphstore.ProbeOption
	if cfg.GraphReprobeSeconds > 0 {
		opts = append(opts, graphstore.WithReprobeInterval(time.Duration(cfg.GraphReprobeSeconds)*time.Second))
	}
	store, err := graphstore.NewNeo4jStore(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, opts...)
	if err != nil {
		log.Warn(ctx, "neo4j driver construction failed; using embedded graph store",
			logger.String("uri", cfg.Neo4jURI), logger.Error(err))
		return graphstore.NewMemGraph()
	}
	log.Info(ctx, "using neo4j graph store", logger.String("uri", cfg.Neo4jURI))
	return store
}

// startResyncScheduler periodically rebuilds the leaderboards and the graph
// so drift from missed events or store outages self-heals.
func startResyncScheduler(ctx context.Context, svc *app.Service, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if report, err := svc.SyncAll(ctx); err != nil {
				log.Warn(ctx, "scheduled resync failed", logger.Error(err))
			} else {
				log.Info(ctx, "scheduled resync complete",
					logger.Int("articles", report.Articles),
					logger.Int("users", report.Users),
					logger.Int("graph_entities", report.Graph.Total()))
			}
		}
	}
}
