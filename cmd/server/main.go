package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/people-sync/migrations"
	"github.com/iota-uz/people-sync/modules/people/infrastructure/persistence"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/modules/people/presentation/controllers"
	"github.com/iota-uz/people-sync/modules/people/services"
	"github.com/iota-uz/people-sync/pkg/composables"
	"github.com/iota-uz/people-sync/pkg/configuration"
	"github.com/iota-uz/people-sync/pkg/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if err := runMigrations(conf); err != nil {
		logger.WithError(err).Fatal("migrations failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to create database pool")
	}
	defer pool.Close()

	mapper, err := mapping.NewMapper()
	if err != nil {
		logger.WithError(err).Fatal("alias tables are inconsistent")
	}

	publisher := eventbus.NewEventPublisher(logger)
	services.RegisterAuditSubscriber(publisher, logger)
	profileService := services.NewProfileService(
		persistence.NewIdentityRepository(),
		persistence.NewProfileRepository(),
		persistence.NewEmployeeRepository(),
		mapper,
		publisher,
	)
	importService := services.NewImportService(profileService, persistence.NewEmployeeRepository(), mapper)

	router := mux.NewRouter()
	router.Use(requestContextMiddleware(pool, logger))

	controller := controllers.NewPeopleController(
		profileService,
		importService,
		conf.MaxUploadSize,
		conf.Import.MaxRows,
		conf.Import.BatchTimeout,
	)
	controller.Register(router)

	if conf.Prometheus.Enabled {
		router.Handle(conf.Prometheus.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      router,
		ReadTimeout:  time.Minute,
		WriteTimeout: conf.Import.BatchTimeout + time.Minute,
	}

	go func() {
		logger.Infof("listening on %s", conf.SocketAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*15)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	configuration.Use().Unload()
}

func runMigrations(conf *configuration.Configuration) error {
	db, err := sql.Open("pgx", conf.Database.Opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

// requestContextMiddleware seeds every request context with the pool and a
// request-scoped logger, the way the repositories and services expect.
func requestContextMiddleware(pool *pgxpool.Pool, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithPool(r.Context(), pool)
			ctx = composables.WithLogger(ctx, logger.WithFields(logrus.Fields{
				"path":   r.URL.Path,
				"method": r.Method,
			}))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
