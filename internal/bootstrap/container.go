package bootstrap

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/blob"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/cache"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/db"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/httpclient"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/logger"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/metrics"
	mq "github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/queue"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/tsdb"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/middleware"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/handler"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/router"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container wraps the injector and remembers which connections were opened
// so they can be closed in reverse order.
type Container struct {
	*do.Injector

	mu      sync.Mutex
	closers []func(context.Context) error
}

func (c *Container) onClose(fn func(context.Context) error) {
	c.mu.Lock()
	c.closers = append(c.closers, fn)
	c.mu.Unlock()
}

// New registers every provider. Nothing is constructed until it is invoked.
// When preloaded is nil the config is loaded from configPath.
func New(preloaded *config.Config, configPath string) *Container {
	inj := do.New()
	c := &Container{Injector: inj}

	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		if preloaded != nil {
			return preloaded, nil
		}
		return config.Load(configPath)
	})
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		return logger.New(do.MustInvoke[*config.Config](i))
	})
	do.Provide(inj, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})

	// stores
	do.Provide(inj, func(i *do.Injector) (*mongo.Database, error) {
		d, err := db.Connect(context.Background(), do.MustInvoke[*config.Config](i), do.MustInvoke[*zap.Logger](i))
		if err != nil {
			return nil, err
		}
		c.onClose(func(ctx context.Context) error { return db.Disconnect(ctx, d) })
		return d, nil
	})
	do.Provide(inj, func(i *do.Injector) (influxdb2.Client, error) {
		client, err := tsdb.NewClient(context.Background(), do.MustInvoke[*config.Config](i), do.MustInvoke[*zap.Logger](i))
		if err != nil {
			return nil, err
		}
		c.onClose(func(context.Context) error { client.Close(); return nil })
		return client, nil
	})
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		return blob.NewS3(context.Background(), do.MustInvoke[*config.Config](i))
	})
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		rdb, err := cache.NewRedis(context.Background(), do.MustInvoke[*config.Config](i))
		if err != nil || rdb == nil {
			return rdb, err
		}
		c.onClose(func(context.Context) error { return rdb.Close() })
		return rdb, nil
	})
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		p, err := mq.Connect(do.MustInvoke[*config.Config](i), do.MustInvoke[*zap.Logger](i))
		if err != nil || p == nil {
			return p, err
		}
		c.onClose(func(context.Context) error { return p.Close() })
		return p, nil
	})

	// outbound clients
	do.Provide(inj, func(i *do.Injector) (*httpclient.ConfigAPIClient, error) {
		return httpclient.NewConfigAPIClient(do.MustInvoke[*config.Config](i), do.MustInvoke[*metrics.Metrics](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*httpclient.PortalAuthClient, error) {
		return httpclient.NewPortalAuthClient(do.MustInvoke[*config.Config](i), do.MustInvoke[*metrics.Metrics](i)), nil
	})

	// repos
	do.Provide(inj, func(i *do.Injector) (repo.TestRepo, error) {
		cfg := do.MustInvoke[*config.Config](i)
		r := repo.NewTestRepo(do.MustInvoke[*mongo.Database](i))
		rdb, err := do.Invoke[*redis.Client](i)
		if err != nil {
			return nil, err
		}
		if rdb == nil {
			return r, nil
		}
		return repo.NewCachedTestRepo(r, rdb, cfg.Redis.TTL, do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.LogbookRepo, error) {
		return repo.NewLogbookRepo(do.MustInvoke[*mongo.Database](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.LogbookSeriesRepo, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return repo.NewLogbookSeriesRepo(do.MustInvoke[influxdb2.Client](i), cfg.Influx.Org, cfg.Influx.Database, cfg.Influx.Measurement), nil
	})

	// services
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		p, err := do.Invoke[*mq.Publisher](i)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, nil
		}
		return p, nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TestService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewTestService(
			do.MustInvoke[repo.TestRepo](i),
			do.MustInvoke[repo.LogbookRepo](i),
			do.MustInvoke[repo.LogbookSeriesRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*httpclient.ConfigAPIClient](i),
			cfg.Workspace.ID,
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.FileService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewFileService(
			do.MustInvoke[repo.TestRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			service.FileOptions{
				WorkspaceID:  cfg.Workspace.ID,
				SecretKey:    cfg.Upload.SecretKey,
				SignatureTTL: cfg.Upload.SignatureTTL,
			},
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.LogbookService, error) {
		return service.NewLogbookService(
			do.MustInvoke[repo.TestRepo](i),
			do.MustInvoke[repo.LogbookRepo](i),
			do.MustInvoke[repo.LogbookSeriesRepo](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.LinkService, error) {
		return service.NewLinkService(do.MustInvoke[repo.TestRepo](i)), nil
	})

	// http
	do.Provide(inj, func(i *do.Injector) (*gin.Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if cfg.App.Env != "dev" {
			gin.SetMode(gin.ReleaseMode)
		}
		return router.NewRouter(router.RouterDeps{
			ServiceName:    cfg.App.Name,
			Log:            log,
			Metrics:        do.MustInvoke[*metrics.Metrics](i),
			Auth:           middleware.NewAuth(cfg.Auth.Active, cfg.Workspace.ID, do.MustInvoke[*httpclient.PortalAuthClient](i), log),
			TestHandler:    handler.NewTestHandler(do.MustInvoke[service.TestService](i)),
			FileHandler:    handler.NewFileHandler(do.MustInvoke[service.FileService](i), cfg.Upload.MaxBytes),
			LogbookHandler: handler.NewLogbookHandler(do.MustInvoke[service.LogbookService](i)),
			LinkHandler:    handler.NewLinkHandler(do.MustInvoke[service.LinkService](i)),
		}), nil
	})

	return c
}

// Close releases the connections that were opened, newest first.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
