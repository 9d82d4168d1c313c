package session

import (
	"context"
	"fmt"
	"time"

	"lms-portal/internal/session/adapter/persistence/memory"
	"lms-portal/internal/session/adapter/persistence/mongodb"
	sessionredis "lms-portal/internal/session/adapter/persistence/redis"
	"lms-portal/internal/session/adapter/security"
	"lms-portal/internal/session/config"
	"lms-portal/internal/session/domain/repository"
	"lms-portal/internal/session/usecase"
	"lms-portal/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionModule owns the session storage backend and hands out per-client stores.
type SessionModule struct {
	config    *config.Config
	storage   repository.Storage
	inspector *security.TokenInspector
	log       logger.Logger

	redisClient *redis.Client
	mongoClient *mongo.Client
}

// NewSessionModule opens the configured storage backend.
func NewSessionModule(ctx context.Context, cfg *config.Config, log logger.Logger) (*SessionModule, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	m := &SessionModule{
		config:    cfg,
		inspector: security.NewTokenInspector(),
		log:       log.WithComponent("session"),
	}

	switch cfg.Backend {
	case config.BackendMemory:
		m.storage = memory.NewStorage()

	case config.BackendRedis:
		m.redisClient = sessionredis.NewRedisClient(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := m.redisClient.Ping(pingCtx).Err(); err != nil {
			_ = m.redisClient.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.GetAddr(), err)
		}
		storage, err := sessionredis.NewStorage(m.redisClient, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session storage: %w", err)
		}
		m.storage = storage

	case config.BackendMongoDB:
		client, storage, err := openMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		m.mongoClient = client
		m.storage = storage

	default:
		return nil, fmt.Errorf("unsupported session backend %q", cfg.Backend)
	}

	m.log.WithFields(map[string]interface{}{
		"backend": cfg.Backend,
		"ttl":     cfg.TTL.String(),
	}).Info("Session storage ready")
	return m, nil
}

// openMongo connects to MongoDB and prepares the session collection. The client
// is disconnected when any later step fails.
func openMongo(ctx context.Context, cfg *config.Config) (client *mongo.Client, storage *mongodb.Storage, err error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err = mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		if err != nil {
			_ = client.Disconnect(context.Background())
			client, storage = nil, nil
		}
	}()

	storage, err = mongodb.NewStorage(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection), cfg.TTL)
	if err != nil {
		return client, nil, fmt.Errorf("failed to create mongodb session storage: %w", err)
	}
	if err = client.Ping(connectCtx, nil); err != nil {
		return client, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	if err = storage.EnsureIndexes(connectCtx); err != nil {
		return client, nil, fmt.Errorf("failed to ensure mongodb session indexes: %w", err)
	}
	return client, storage, nil
}

// NewSessionModuleWithStorage builds a module around an existing storage.
func NewSessionModuleWithStorage(cfg *config.Config, storage repository.Storage, log logger.Logger) *SessionModule {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SessionModule{
		config:    cfg,
		storage:   storage,
		inspector: security.NewTokenInspector(),
		log:       log.WithComponent("session"),
	}
}

// ForClient returns the session store of one client.
func (m *SessionModule) ForClient(clientID string, opts ...usecase.Option) (*usecase.Store, error) {
	opts = append([]usecase.Option{usecase.WithLogger(m.log)}, opts...)
	return usecase.NewStore(m.storage, usecase.ScopeFor(m.config.ScopePrefix, clientID), opts...)
}

// Inspector returns the token claim reader.
func (m *SessionModule) Inspector() *security.TokenInspector {
	return m.inspector
}

// Config returns the module configuration.
func (m *SessionModule) Config() *config.Config {
	return m.config
}

// HealthCheck pings the storage backend when it supports it.
func (m *SessionModule) HealthCheck(ctx context.Context) error {
	if hc, ok := m.storage.(repository.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

// Stop closes backend connections.
func (m *SessionModule) Stop(ctx context.Context) error {
	if m.redisClient != nil {
		if err := m.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}
	if m.mongoClient != nil {
		if err := m.mongoClient.Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to disconnect mongodb: %w", err)
		}
	}
	return nil
}
