package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mirrorboxapp/mirrorbox-server/internal/api"
	"github.com/mirrorboxapp/mirrorbox-server/internal/config"
	"github.com/mirrorboxapp/mirrorbox-server/internal/logger"
	"github.com/mirrorboxapp/mirrorbox-server/internal/ratelimit"
	"github.com/mirrorboxapp/mirrorbox-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Browse:      do.MustInvoke[*service.BrowseService](i),
		Restriction: do.MustInvoke[*service.RestrictionService](i),
		Overlay:     do.MustInvoke[*service.OverlayService](i),
		User:        do.MustInvoke[*service.UserService](i),
		Search:      do.MustInvoke[*service.SearchService](i),
		Sync:        do.MustInvoke[*service.SyncService](i),
	}

	clientLimiter := ratelimit.New(float64(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)
	apiServer := api.NewServer(services, clientLimiter, log.Logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &HTTPServerHandle{Server: server}, nil
}
