package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/target/dash-console/config"
	httpx "github.com/target/dash-console/internal/http"
	"github.com/target/dash-console/internal/observability/statsd"
	"github.com/target/dash-console/internal/service"
	"golang.org/x/sync/errgroup"
)

// Console holds every component of a running console.
type Console struct {
	Auth       *AuthStack
	Profile    *service.ProfileService
	Navigation *service.NavigationStore
	Panels     *service.PanelRegistry
	Layout     *service.LayoutCoordinator
	Metrics    *statsd.Client
	Handler    http.Handler

	cfg    *config.AppConfig
	logger *slog.Logger
}

// ConsoleDeps groups dependencies for console initialization.
type ConsoleDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Transport overrides the outbound round tripper to the remote API (tests).
	Transport http.RoundTripper
}

func buildMetrics(logger *slog.Logger, cfg config.ObservabilityConfig) *statsd.Client {
	if !cfg.Metrics.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// NewConsole wires the console. The two report panels start closed.
func NewConsole(deps *ConsoleDeps) (*Console, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("console config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metricsClient := buildMetrics(logger, deps.Config.Observability)
	// A nil *statsd.Client is a silent sink, but a typed nil in the interface
	// would still be called, so pass an explicit nil interface.
	var sink statsd.Sink
	if metricsClient != nil {
		sink = metricsClient
	}

	auth, err := BuildAuthStack(AuthConfig{
		Config:      deps.Config,
		RedisClient: deps.RedisClient,
		Metrics:     sink,
		Logger:      logger,
		Transport:   deps.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth: %w", err)
	}

	profile := service.NewProfileService(service.ProfileServiceOptions{
		API:    auth.API,
		Auth:   auth.Service,
		Logger: logger,
	})
	store := service.NewNavigationStore(service.NavigationStoreOptions{Logger: logger, Metrics: sink})
	panels := service.NewPanelRegistry(logger)
	panels.Register(service.SlotMain, service.NewPanelState(false))
	panels.Register(service.SlotReportProd, service.NewPanelState(false))

	layout := service.NewLayoutCoordinator(service.LayoutCoordinatorOptions{
		Auth:    auth.Service,
		Store:   store,
		Panels:  panels,
		Roles:   auth.Roles,
		Catalog: auth.Catalog,
		Logger:  logger,
	})

	handler := httpx.NewRouter(httpx.RouterServices{
		Auth:             auth.Service,
		Profile:          profile,
		Navigation:       store,
		Panels:           panels,
		Catalog:          auth.Catalog,
		Logger:           logger,
		EventKeepAlive:   deps.Config.HTTP.EventKeepAlive,
		WSOriginPatterns: deps.Config.HTTP.WSAllowedOrigins,
	})

	return &Console{
		Auth:       auth,
		Profile:    profile,
		Navigation: store,
		Panels:     panels,
		Layout:     layout,
		Metrics:    metricsClient,
		Handler:    handler,
		cfg:        deps.Config,
		logger:     logger,
	}, nil
}

// Run restores the persisted session, then serves HTTP and keeps the layout
// in step with the current user until ctx is done or a component fails.
func (c *Console) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// The layout follows the user feed from the start so restored sessions
	// populate the navigation slots.
	g.Go(func() error {
		return c.Layout.Run(gctx)
	})

	if err := c.Auth.Service.Init(gctx); err != nil {
		c.logger.WarnContext(gctx, "session restore failed", "error", err)
	}
	if c.Auth.Service.IsAuthenticated() {
		if _, err := c.Auth.Service.SignInWithToken(gctx); err != nil {
			c.logger.WarnContext(gctx, "session refresh failed", "error", err)
		}
	}

	server := NewHTTPServer(c.cfg.HTTP, c.Handler)
	g.Go(func() error {
		c.logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), c.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return ShutdownHTTPServer(ShutdownConfig{Context: shutdownCtx, Server: server, Logger: c.logger})
	})

	return g.Wait()
}

// Close releases feeds and the metrics connection.
func (c *Console) Close() {
	c.Navigation.Close()
	c.Auth.Service.Close()
	if c.Metrics != nil {
		if err := c.Metrics.Close(); err != nil {
			c.logger.Warn("close statsd client", "error", err)
		}
	}
}

// RunWithShutdown runs the console until SIGINT or SIGTERM.
func RunWithShutdown(ctx context.Context, console *Console) error {
	if console == nil {
		return errors.New("console is required")
	}
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer console.Close()

	err := console.Run(sigCtx)
	console.logger.Info("console stopped")
	return err
}
