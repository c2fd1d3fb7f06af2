package bootstrap

import (
	"context"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	httpserver "github.com/turtacn/netellus-advisor/internal/interfaces/http"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/middleware"
)

// Serve runs the API server until ctx is cancelled, then drains it.
func (a *App) Serve(ctx context.Context) error {
	s := a.Config.Server
	srv := httpserver.NewServer(httpserver.ServerConfig{
		Host:            s.Host,
		Port:            s.Port,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}, a.Router(), a.Logger)
	return run(ctx, srv)
}

// ServeHealth exposes only the probes and metrics on port.  The worker uses
// it in place of the full API.
func (a *App) ServeHealth(ctx context.Context, port int) error {
	gin.SetMode(a.Config.Server.Mode)
	r := gin.New()
	r.Use(middleware.Recovery(a.Logger))
	a.Health.RegisterRoutes(r)
	if a.collector != nil {
		r.GET(a.Config.Metrics.Path, gin.WrapH(a.collector.Handler()))
	}
	srv := httpserver.NewServer(httpserver.ServerConfig{Port: port}, r, a.Logger)
	return run(ctx, srv)
}

func run(ctx context.Context, srv *httpserver.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.Background())
	})
	return g.Wait()
}
