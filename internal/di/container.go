package di

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lmsconfig "lms-portal/internal/lms/config"
	"lms-portal/internal/portal"
	portalconfig "lms-portal/internal/portal/config"
	"lms-portal/internal/session"
	sessionconfig "lms-portal/internal/session/config"
	"lms-portal/internal/shared/logger"
)

// Container holds the application modules with lifecycle management
type Container struct {
	mu sync.RWMutex
	// Module instances
	SessionModule *session.SessionModule
	PortalModule  *portal.PortalModule
	// Configuration
	SessionConfig *sessionconfig.Config
	LMSConfig     *lmsconfig.Config
	PortalConfig  *portalconfig.Config
	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Container{Logger: log}
}

// InitializeSession opens the session storage backend
func (c *Container) InitializeSession(ctx context.Context, cfg *sessionconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessionModule, err := session.NewSessionModule(ctx, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create session module: %w", err)
	}

	c.SessionConfig = cfg
	c.SessionModule = sessionModule
	return nil
}

// InitializePortal builds the portal on top of the session module
func (c *Container) InitializePortal(lmsCfg *lmsconfig.Config, cfg *portalconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SessionModule == nil {
		return errors.New("session module must be initialized before portal module")
	}

	portalModule, err := portal.NewPortalModule(c.SessionModule, lmsCfg, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create portal module: %w", err)
	}

	c.LMSConfig = lmsCfg
	c.PortalConfig = cfg
	c.PortalModule = portalModule
	return nil
}

// GetSessionModule returns the session module instance
func (c *Container) GetSessionModule() *session.SessionModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.SessionModule
}

// GetPortalModule returns the portal module instance
func (c *Container) GetPortalModule() *portal.PortalModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.PortalModule
}

// HealthCheck checks the session storage backend
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.SessionModule == nil {
		return errors.New("session module not initialized")
	}
	if err := c.SessionModule.HealthCheck(ctx); err != nil {
		return fmt.Errorf("session storage health check failed: %w", err)
	}
	return nil
}

// Cleanup shuts modules down in reverse order of initialization
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.PortalModule = nil
	if c.SessionModule != nil {
		if err := c.SessionModule.Stop(ctx); err != nil {
			return fmt.Errorf("cleanup errors: %w", err)
		}
		c.SessionModule = nil
	}
	return nil
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	c.Logger.Info("Closing DI Container resources...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.WithError(err).Warn("Cleanup errors occurred")
		return err
	}

	c.Logger.Info("DI Container resources closed.")
	return nil
}
