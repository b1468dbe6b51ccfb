package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/gymlive/internal/config"
	"github.com/2beens/gymlive/internal/db"
	"github.com/2beens/gymlive/internal/live/activity"
	"github.com/2beens/gymlive/internal/live/api"
	"github.com/2beens/gymlive/internal/live/history"
	"github.com/2beens/gymlive/internal/live/resume"
	"github.com/2beens/gymlive/internal/live/session"
	"github.com/2beens/gymlive/internal/live/store"
	"github.com/2beens/gymlive/internal/middleware"
	"github.com/2beens/gymlive/internal/telemetry/metrics"
	"github.com/2beens/gymlive/internal/telemetry/tracing"
	"github.com/2beens/gymlive/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	sqliteKV    *store.SQLiteKV

	sessions *session.Manager
	gates    *resume.Gates

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	RedisPassword           string
	PostgresPassword        string
	LiveActivityToken       string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbParams := db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		SSLMode:        cfg.PostgresSSLMode,
		TracingEnabled: params.HoneycombTracingEnabled,
	}
	if cfg.RunMigrations {
		if err := db.RunMigrations(dbParams.DSN()); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Debugln("db migrations applied")
	}

	dbPool, err := db.NewDBPool(ctx, dbParams)
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("gymlive", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var rdb *redis.Client
	if cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0,
		})
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymlive", rdb)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:         cfg,
		dbPool:         dbPool,
		redisClient:    rdb,
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	var local store.KeyValueStore
	switch cfg.LocalStore {
	case config.LocalStoreRedis:
		local = store.NewRedisKV(rdb, cfg.LocalStoreTTL.Duration)
	case config.LocalStoreSQLite:
		exists, err := pkg.PathExists(cfg.SQLiteStoreDir, true)
		if err != nil {
			return nil, fmt.Errorf("sqlite store dir: %w", err)
		}
		if !exists {
			log.Infof("creating sqlite store dir: %s", cfg.SQLiteStoreDir)
		}
		s.sqliteKV, err = store.OpenSQLiteKV(cfg.SQLiteStoreDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		local = s.sqliteKV
	default:
		return nil, fmt.Errorf("unknown local store: %s", cfg.LocalStore)
	}
	log.Debugf("using [%s] local draft store", cfg.LocalStore)

	draftParams := store.DraftStoreParams{
		Local:          local,
		RemoteFallback: cfg.RemoteFallback,
		Metrics:        metricsManager,
	}
	if cfg.RemoteDrafts {
		draftParams.Remote = store.NewPsqlRemoteStore(dbPool)
	}
	drafts := store.NewDraftStore(draftParams)

	workoutHistory := history.NewCached(history.NewRepo(dbPool), cfg.HistoryCacheExpire.Duration)

	var surface activity.Surface = activity.LogSurface{}
	if cfg.LiveActivityGateway != "" {
		tracedHttpClient := &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}
		surface = activity.NewHTTPSurface(cfg.LiveActivityGateway, params.LiveActivityToken, tracedHttpClient)
		log.Debugf("live activity gateway: %s", cfg.LiveActivityGateway)
	}

	s.sessions = session.NewManager(session.ManagerParams{
		Store:            drafts,
		Committer:        workoutHistory,
		Surface:          surface,
		History:          workoutHistory,
		Metrics:          metricsManager,
		AutosaveInterval: cfg.AutosaveInterval.Duration,
		PushInterval:     cfg.PushInterval.Duration,
	})
	s.gates = resume.NewGates(drafts, cfg.LivePath)

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymlive-router"))

	// probes come without origin, so health stays outside of the chain
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "ok")
	}).Methods("GET").Name("health")

	liveRouter := r.PathPrefix("/live/{userId}").Subrouter()
	api.NewHandler(s.sessions, s.gates).SetupRoutes(liveRouter)

	liveRouter.Use(middleware.PanicRecovery(s.metricsManager))
	liveRouter.Use(middleware.LogRequest())
	liveRouter.Use(middleware.RequestMetrics(s.metricsManager))
	liveRouter.Use(middleware.Cors(s.config.AllowedOrigins, s.config.AllowedAgentPrefixes))
	if s.redisClient != nil && s.config.RateLimitPerMin > 0 {
		liveRouter.Use(middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			s.metricsManager,
			"live",
			s.config.RateLimitPerMin,
		))
	}
	liveRouter.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before the live sessions are flushed
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	s.sessions.Shutdown(ctx)
	log.Debugln("live sessions flushed")

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.sqliteKV != nil {
		if err := s.sqliteKV.Close(); err != nil {
			log.Errorf("failed to close sqlite store: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close()
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
