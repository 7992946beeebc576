package app

import (
	"context"
	"detectionview/internal/config"
	"detectionview/internal/logger"
	"detectionview/internal/routes"
	"detectionview/internal/service"
	"detectionview/internal/service/fetcher"
	"detectionview/internal/service/notify"
	"detectionview/internal/service/render"
	"detectionview/internal/service/websocket"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	hubService *websocket.HubService
	manager    *service.Manager
	listener   *notify.Listener
	server     *http.Server
}

func NewApp(cfg *config.Config, logger *logger.Logger) (*App, error) {
	container, err := render.NewContainer(render.DefaultPage)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	hub := websocket.NewHubService(logger)
	fetch := fetcher.NewFetcher(cfg.UpstreamURL, &http.Client{Timeout: cfg.FetchTimeout})
	mng := service.NewManager(fetch, render.NewRenderer(container), hub, cfg.RefreshQueueSize, logger)
	listener := notify.NewListener(cfg.PushURL, cfg.PushEvent, notify.ParseProtocol(cfg.PushProtocol), mng.Refresh, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		hubService: hub,
		manager:    mng,
		listener:   listener,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           routes.SetupRoutes(mng, hub, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Manager exposes the view controller.
func (a *App) Manager() *service.Manager {
	return a.manager
}

// Run serves until ctx is cancelled, then shuts the HTTP server down.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	start := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	start(a.hubService.Run)
	start(a.manager.Run)
	start(a.listen)
	if a.config.PollInterval > 0 {
		start(a.poll)
	}

	// Initial page load.
	if err := a.manager.Refresh(ctx); err != nil {
		cancel()
		wg.Wait()
		return nil
	}

	a.logger.Info("Detection view on http://%s", ln.Addr())
	a.logger.Info("Upstream: %s", a.config.UpstreamURL)
	a.logger.Info("Push channel: %s (%s, event %q)", a.config.PushURL, a.config.PushProtocol, a.config.PushEvent)

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.server.Serve(ln) }()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP shutdown: %v", err)
	}

	cancel()
	wg.Wait()
	a.logger.Info("Detection view stopped")
	return runErr
}

// listen keeps the push subscription alive, re-dialing after ReconnectDelay.
func (a *App) listen(ctx context.Context) {
	for {
		err := a.listener.Listen(ctx)
		if ctx.Err() != nil {
			return
		}
		a.logger.Warning("Push channel lost: %v (retrying in %s)", err, a.config.ReconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.config.ReconnectDelay):
		}
	}
}

func (a *App) poll(ctx context.Context) {
	ticker := time.NewTicker(a.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.manager.Refresh(ctx); err != nil {
				return
			}
		}
	}
}
