package router

import (
	"context"

	"github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/container"
	"github.com/oksasatya/user-account-service/internal/infrastructure/cache"
	"github.com/oksasatya/user-account-service/internal/infrastructure/media"
	"github.com/oksasatya/user-account-service/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-account-service/internal/infrastructure/search"
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
	"github.com/oksasatya/user-account-service/internal/router/modules"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/metrics"
)

type UserModuleDeps struct {
	Auth  *application.AuthService
	Users *application.UserService
	Deps  application.Deps
}

// buildDeps assembles the application collaborators from the container.
// Optional clients that are nil leave their interface field unset.
func buildDeps() application.Deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	d := application.Deps{
		Repo:         pginfra.NewUserRepository(pool),
		Audit:        pginfra.NewAuditRepository(pool),
		Tokens:       container.GetJWT(),
		Hasher:       helpers.NewPasswordHasher(),
		Logger:       container.GetLogger(),
		StoreTimeout: cfg.StoreTimeout,
	}
	if reg := container.GetRegistry(); reg != nil {
		d.Metrics = metrics.NewAuth(reg)
	}
	if rdb := container.GetRedis(); rdb != nil {
		d.Cache = cache.NewIdentityCache(rdb, cfg.IdentityCacheTTL)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Uploader = media.NewGCSUploader(gcs, cfg.GCSBucket)
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewUserDirectory(es, cfg.ESUsersIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		d.Notifier = notify.NewEmailNotifier(pub, cfg.AppName, cfg.MailSendEnabled)
	}
	return d
}

func buildUserDeps() UserModuleDeps {
	d := buildDeps()
	return UserModuleDeps{
		Auth:  application.NewAuthService(d),
		Users: application.NewUserService(d),
		Deps:  d,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	deps := buildUserDeps()

	guard := middleware.Auth(container.GetJWT(), deps.Users, logger, deps.Deps.Metrics)
	r.Add(modules.NewUserModule(
		handlers.NewAuthHandler(deps.Auth, logger, cfg.CookieDomain, cfg.MaxUploadBytes),
		handlers.NewUserHandler(deps.Users, logger, cfg.MaxUploadBytes),
		guard,
	))

	if reg := container.GetRegistry(); reg != nil && cfg.DebugMetricsEnabled {
		r.Add(modules.NewMetricsModule(reg))
	}

	checks := map[string]modules.Pinger{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	r.AddRoot(modules.NewHealthModule(checks))
}
