// cmd/jobportal/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobportal/internal/backend"
	"jobportal/internal/common/config"
	"jobportal/internal/common/database"
	apperrors "jobportal/internal/common/errors"
	apphttp "jobportal/internal/common/http"
	"jobportal/internal/common/logger"
	"jobportal/internal/common/observability"
	"jobportal/internal/common/storage"
	cvmatch "jobportal/internal/stores/cv-match"
	jobcollection "jobportal/internal/stores/job-collection"
	usersession "jobportal/internal/stores/user-session"
)

// app wires the three stores to their collaborators for one CLI invocation.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	obs     *observability.Observability
	storage storage.Store
	metrics *http.Server
	errs    *apperrors.Handler

	jobs    *jobcollection.Store
	session *usersession.Store
	cv      *cvmatch.Store
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	obs := observability.New(cfg.App.Name, log)

	hc := apphttp.NewClient(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout(),
		apphttp.WithRecorder(obs),
		apphttp.WithLogger(log),
	)
	client := backend.NewClient(hc, log, cfg.Jobs.DefaultOrigin)

	var auth backend.Authenticator = client
	if cfg.Auth.Mode == "mock" {
		auth = backend.MockAuthenticator{}
	}

	searcher, err := newSearcher(cfg, client)
	if err != nil {
		obs.Shutdown()
		return nil, err
	}

	st, err := storage.Open(ctx, cfg)
	if err != nil {
		obs.Shutdown()
		return nil, fmt.Errorf("storage open failed: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		obs:     obs,
		storage: st,
		errs:    apperrors.NewHandler(log),
		jobs:    jobcollection.NewStore(jobcollection.LoadConfig(cfg), client, searcher, log),
		session: usersession.NewStore(usersession.LoadConfig(cfg), auth, client, st, log),
		cv:      cvmatch.NewStore(cvmatch.LoadConfig(cfg), client, st, log),
	}

	addr := metricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.Address
	}
	if addr != "" {
		a.serveMetrics(addr)
	}

	log.Debug("client initialized", map[string]interface{}{
		"backend":     cfg.Backend.BaseURL,
		"authMode":    cfg.Auth.Mode,
		"searchMode":  cfg.Jobs.SearchMode,
		"storage":     cfg.Storage.Backend,
		"environment": cfg.App.Environment,
	})
	return a, nil
}

// newSearcher returns nil for local search.
func newSearcher(cfg *config.Config, client *backend.Client) (jobcollection.Searcher, error) {
	switch cfg.Jobs.SearchMode {
	case jobcollection.SearchModeRemote:
		return jobcollection.NewBackendSearcher(client), nil
	case jobcollection.SearchModeElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch init failed: %w", err)
		}
		return jobcollection.NewElasticsearchSearcher(es, cfg.Jobs.DefaultOrigin), nil
	default:
		return nil, nil
	}
}

// restore loads the persisted session and analysis in parallel.
func (a *app) restore(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.session.Restore(gctx) })
	g.Go(func() error { return a.cv.Restore(gctx) })
	return g.Wait()
}

// start restores persisted state and loads the job list together. A failed
// job fetch is reported through the store's error flag, not returned.
func (a *app) start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.restore(gctx) })
	g.Go(func() error {
		if err := a.jobs.FetchAll(gctx); err != nil && !errors.Is(err, jobcollection.ErrSuperseded) {
			a.log.Warn("initial job fetch failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	})
	return g.Wait()
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	a.log.Info("serving metrics", map[string]interface{}{"address": addr})
}

func (a *app) close() {
	_ = a.jobs.Close()
	_ = a.session.Close()
	_ = a.cv.Close()
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
	}
	if err := a.storage.Close(); err != nil {
		a.log.Warn("storage close failed", map[string]interface{}{"error": err.Error()})
	}
	a.obs.Shutdown()
}

// withApp runs fn against a started app and always closes it.
func withApp(cmd *cobra.Command, fetchJobs bool, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if fetchJobs {
		err = a.start(ctx)
	} else {
		err = a.restore(ctx)
	}
	if err != nil {
		a.errs.Handle(cmd.CommandPath(), err)
		return err
	}
	if err := fn(ctx, a); err != nil {
		a.errs.Handle(cmd.CommandPath(), err)
		return err
	}
	return nil
}
