// Package app wires the merchant runtime: stores, clients, the identity
// provider, the session gate and the local API.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/lalaba/merchant-app/internal/api"
	"github.com/lalaba/merchant-app/internal/api/handler"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
	"github.com/lalaba/merchant-app/internal/core/service"
	"github.com/lalaba/merchant-app/internal/infrastructure/backend"
	"github.com/lalaba/merchant-app/internal/infrastructure/blob/s3"
	"github.com/lalaba/merchant-app/internal/infrastructure/db/mongo"
	"github.com/lalaba/merchant-app/internal/infrastructure/db/redis"
	"github.com/lalaba/merchant-app/internal/infrastructure/geocode"
	"github.com/lalaba/merchant-app/internal/infrastructure/identity"
	"github.com/lalaba/merchant-app/internal/infrastructure/navigation"
	"github.com/lalaba/merchant-app/internal/infrastructure/psgc"
	"github.com/lalaba/merchant-app/internal/pkg/config"
	"github.com/lalaba/merchant-app/internal/pkg/validate"
	"github.com/lalaba/merchant-app/pkg/logger"
)

// App is one running merchant runtime.
type App struct {
	Echo *echo.Echo

	cfg *config.Config
	log zerolog.Logger

	mongoClient *mongodriver.Client
	redis       *goredis.Client

	tokens   ports.TokenStore
	identity *identity.Provider
	nav      *navigation.Router
	gate     *service.Gate
	setup    *service.SetupScreen
	check    *service.SetupCheck

	cancel  context.CancelFunc
	unmount func()
	unhook  func()
	checks  sync.WaitGroup
}

// New connects every dependency and builds the services. Nothing is
// subscribed until Start.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "merchant-app",
	})
	if err != nil {
		return nil, err
	}
	a.mongoClient = mongoClient

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}
	a.redis = rdb

	businesses := mongo.NewBusinessRepository(db)
	orders := mongo.NewOrderRepository(db)
	wallets := mongo.NewWalletRepository(db)
	users := mongo.NewUserRepository(db)
	if err := mongo.EnsureIndexes(ctx, businesses, orders, users); err != nil {
		log.Warn().Err(err).Msg("index creation failed, continuing")
	}

	var images ports.ImageStore
	if cfg.S3.Bucket != "" {
		store, err := s3.New(ctx, s3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
		if err != nil {
			a.closeStores(ctx)
			return nil, err
		}
		images = store
	} else {
		log.Warn().Msg("S3_BUCKET not set, business logos will not be uploaded")
	}

	a.tokens = redis.NewTokenStore(rdb)
	rest := backend.New(backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.HTTPTimeout}, a.tokens, logger.For("backend"))
	geocoder := geocode.New(geocode.Config{
		BaseURL:           cfg.Geocode.BaseURL,
		APIKey:            cfg.Geocode.APIKey,
		RegionSuffix:      cfg.Geocode.RegionSuffix,
		RequestsPerSecond: cfg.Geocode.RPS,
		Timeout:           cfg.HTTPTimeout,
	}, logger.For("geocode"))
	divisions := psgc.New(psgc.Config{
		BaseURL:    cfg.PSGC.BaseURL,
		RegionCode: cfg.PSGC.RegionCode,
		Timeout:    cfg.HTTPTimeout,
	}, logger.For("psgc"))

	a.identity = identity.NewProvider(users, cfg.JWTSecret, cfg.TokenTTL, logger.For("identity"))
	a.nav = navigation.NewRouter(domain.RouteHome)
	a.gate = service.NewGate(a.identity, a.tokens, a.nav, logger.For("gate"))
	a.check = service.NewSetupCheck(a.gate, businesses, a.nav, logger.For("setup_check"))

	v := validate.New()
	a.setup = service.NewSetupScreen(service.WizardDeps{
		Session:           a.gate,
		Backend:           rest,
		Repo:              businesses,
		Geocoder:          geocoder,
		Images:            images,
		Validator:         v,
		DefaultCategories: cfg.DefaultCategories,
		Log:               logger.For("wizard"),
	})

	a.Echo = api.NewRouter(api.Deps{
		Gate:      a.gate,
		Navigator: a.nav,
		Auth:      service.NewAuthService(a.identity, a.tokens, a.nav, logger.For("auth")),
		Setup:     a.setup,
		Orders:    service.NewOrderService(a.gate, orders, rest, redis.NewAcceptLock(rdb, 0), logger.For("orders")),
		Wallet:    service.NewWalletService(a.gate, wallets, logger.For("wallet")),
		Locations: service.NewLocationService(divisions, geocoder, logger.For("locations")),
		Health: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		Validator: v,
		Log:       log,
	})
	return a, nil
}

// Start mounts the gate, hooks route entry and resumes the persisted session.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel

	a.unmount = a.gate.Mount(runCtx)
	a.unhook = a.nav.OnEnter(func(e domain.RouteEntry) {
		a.setup.OnRouteEnter(e)
		a.checks.Add(1)
		go func() {
			defer a.checks.Done()
			a.check.OnRouteEnter(runCtx, e)
		}()
	})

	token, err := a.tokens.Get(ctx, ports.KeyUserToken)
	if err != nil {
		a.log.Warn().Err(err).Msg("could not read persisted token, starting signed out")
	}
	if _, err := a.identity.Restore(ctx, token); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

// Serve runs the local API until ctx is cancelled, then shuts down.
func (a *App) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Msg("merchant api listening")
		if err := a.Echo.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops the API, tears down subscriptions and closes the stores.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.unhook != nil {
		a.unhook()
	}
	a.setup.Leave()
	if a.unmount != nil {
		a.unmount()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.checks.Wait()
	if err := a.closeStores(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeStores(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
		}
	}
	return errors.Join(errs...)
}
