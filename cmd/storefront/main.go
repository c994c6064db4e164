package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/buyme/internal/account"
	"github.com/Skotchmaster/buyme/internal/checkout"
	"github.com/Skotchmaster/buyme/internal/httpserver"
	"github.com/Skotchmaster/buyme/internal/media"
	"github.com/Skotchmaster/buyme/internal/repo"
	"github.com/Skotchmaster/buyme/internal/search"
	"github.com/Skotchmaster/buyme/internal/service"
	"github.com/Skotchmaster/buyme/pkg/config"
	pkgdb "github.com/Skotchmaster/buyme/pkg/db"
	"github.com/Skotchmaster/buyme/pkg/es"
	"github.com/Skotchmaster/buyme/pkg/logging"
	middleware "github.com/Skotchmaster/buyme/pkg/middleware/auth"
	"github.com/Skotchmaster/buyme/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/buyme/pkg/middleware/logging"
	"github.com/Skotchmaster/buyme/pkg/mykafka"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, closeStore, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	var events service.EventPublisher = service.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer producer.Close()
		events = producer
	}

	storefront := &service.StorefrontService{Store: store}
	admin := &service.AdminService{Store: store, Events: events, Images: media.DataURIStore{}}

	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(ctx, es.Options{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		cancel()
		if err != nil {
			logger.Warn("search index unavailable, using catalog scan", "error", err)
		} else {
			index := search.NewIndex(client, cfg.ESIndex)
			storefront.Index = index
			admin.Index = index
		}
	}

	if cfg.CloudinaryURL != "" {
		images, err := media.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		admin.Images = images
	}

	authSvc := &service.AuthService{Store: store, Events: events, Secret: cfg.SessionSecret, TTL: cfg.SessionTTL}
	sessions := checkout.NewSessions(cfg.CheckoutTTL)
	checkoutSvc := &service.CheckoutService{
		Sessions:   sessions,
		Storefront: storefront,
		Gateway:    &service.SimulatedGateway{Events: events},
	}

	guard := middleware.NewGuard(cfg.SessionSecret, func(ctx context.Context, subject string) (string, error) {
		role, err := authSvc.StoredRole(ctx, subject)
		if errors.Is(err, service.ErrNotFound) {
			return "", nil
		}
		return string(role), err
	}, account.LoginPath)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger, "/health/"))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, "X-CSRF-Token"},
			ExposeHeaders:    []string{"X-CSRF-Token", "Content-Location"},
		}))
	} else {
		e.Use(echomw.CORS())
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.SkipPrefixes = []string{"/health/"}
		e.Use(csrf.Middleware(csrfCfg))
	}

	httpserver.Register(e, &httpserver.Deps{
		Storefront: &httpserver.StorefrontHTTP{Svc: storefront},
		Checkout:   &httpserver.CheckoutHTTP{Svc: checkoutSvc},
		Auth:       &httpserver.AuthHTTP{Svc: authSvc},
		Admin:      &httpserver.AdminHTTP{Svc: admin},
		Staff:      &httpserver.StaffHTTP{Auth: authSvc, Storefront: storefront},
		Guard:      guard,
		Ready:      store.Ping,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepCheckouts(sweepCtx, sessions, logger)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	stopSweep()
	_ = srv.Shutdown(shutdownCtx)
	closeStore(shutdownCtx)

	log.Println("storefront stopped")
}

func openStore(ctx context.Context, cfg config.Config) (repo.Store, func(context.Context), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		r, err := repo.NewMongoRepo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return r, func(ctx context.Context) { _ = r.Close(ctx) }, nil
	case config.StorePostgres, config.StoreSQLite:
		open := pkgdb.Open
		dsn := cfg.DatabaseURL
		if cfg.StoreDriver == config.StoreSQLite {
			open, dsn = pkgdb.OpenSQLite, cfg.SQLitePath
		}
		db, err := open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return repo.NewGormRepo(db), func(context.Context) {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func sweepCheckouts(ctx context.Context, sessions *checkout.Sessions, logger *slog.Logger) {
	interval := max(sessions.TTL()/2, time.Minute)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Info("checkout sessions expired", "count", n)
			}
		}
	}
}
