package portal

import (
	"errors"

	"lms-portal/internal/lms/client"
	lmsconfig "lms-portal/internal/lms/config"
	portalhttp "lms-portal/internal/portal/adapter/http"
	"lms-portal/internal/portal/config"
	"lms-portal/internal/portal/usecase"
	"lms-portal/internal/session"
	"lms-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// PortalModule represents the complete portal: pages, guards and the LMS client
type PortalModule struct {
	usecase    usecase.PortalUsecaseInterface
	handler    *portalhttp.PortalHTTPHandler
	middleware *portalhttp.PortalMiddleware
	config     *config.Config
}

// NewPortalModule creates a new portal module instance
func NewPortalModule(sessions *session.SessionModule, lmsCfg *lmsconfig.Config, cfg *config.Config, log logger.Logger) (*PortalModule, error) {
	if sessions == nil {
		return nil, errors.New("session module is required")
	}
	if lmsCfg == nil || cfg == nil {
		return nil, errors.New("portal configuration is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	portalUsecase := usecase.NewPortalUsecase(client.NewFactory(lmsCfg, log), sessions.Inspector(), log)

	return &PortalModule{
		usecase:    portalUsecase,
		handler:    portalhttp.NewPortalHTTPHandler(portalUsecase, log),
		middleware: portalhttp.NewPortalMiddleware(sessions, sessions.Config(), log),
		config:     cfg,
	}, nil
}

// RegisterRoutes registers the portal pages with the provided router
func (pm *PortalModule) RegisterRoutes(router fiber.Router) {
	router.Use(pm.middleware.RequestID())
	if pm.config.SecurityHeaders {
		router.Use(pm.middleware.SecurityHeaders())
	}
	pm.handler.SetupPortalRoutes(router, pm.middleware, portalhttp.RouteOptions{
		LoginLimiter: pm.middleware.LoginRateLimiter(pm.config.LoginRateLimit, pm.config.LoginRateWindow),
	})
}

// GetUsecase returns the portal usecase for external access
func (pm *PortalModule) GetUsecase() usecase.PortalUsecaseInterface {
	return pm.usecase
}
