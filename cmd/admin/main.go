// Command admin serves the question bank admin console.
//
// Configuration is read from the environment:
//
//	ADMIN_ENV              local or production (default local)
//	ADMIN_PORT             HTTP port (default 8080)
//	ADMIN_BACKEND_URL      REST backend base URL
//	ADMIN_MYSQL_DSN        MySQL DSN, used instead of the backend
//	ADMIN_PAGE_SIZE        default rows per page (default 10)
//	ADMIN_REQUEST_TIMEOUT  backend and database timeout (default 10s)
//	ADMIN_LOG_LEVEL        debug, info, warn or error (default info)
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZihxS/gorm-admin-datatables/pkg/admin"
	"github.com/ZihxS/gorm-admin-datatables/pkg/backend"
	"github.com/ZihxS/gorm-admin-datatables/pkg/config"
	"github.com/ZihxS/gorm-admin-datatables/pkg/entities"
	"github.com/ZihxS/gorm-admin-datatables/pkg/log"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}

	if err := log.InitZap(log.LogNameAdmin, cfg.IsLocal(), cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
	defer log.Flush()

	if err := run(cfg); err != nil {
		log.Err("admin stopped", zap.Error(err))
		log.Flush()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	stores, closeStores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	server := admin.NewServer(
		admin.Options{PageSize: cfg.PageSize, Local: cfg.IsLocal()},
		admin.NewResource("Tags", entities.TagsPath, entities.TagTable, stores.Tags),
		admin.NewResource("Tag Types", entities.TagTypesPath, entities.TagTypeTable, stores.TagTypes),
		admin.NewResource("Forms", entities.FormsPath, entities.FormTable, stores.Forms),
		admin.NewResource("Questions", entities.QuestionsPath, entities.QuestionTable, stores.Questions),
		admin.NewResource("Certificates", entities.CertificatesPath, entities.CertificateTable, stores.Certificates),
	)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.Bool("backend", cfg.UseBackend()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openStores connects to the configured data source.
func openStores(cfg config.Config) (entities.Stores, func(), error) {
	if cfg.UseBackend() {
		client, err := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)
		if err != nil {
			return entities.Stores{}, nil, err
		}
		return entities.BackendStores(client), func() {}, nil
	}

	gormLogger := log.NewGormLogger(logger.Warn)
	if cfg.IsLocal() {
		gormLogger = log.NewGormLogger(logger.Info)
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return entities.Stores{}, nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return entities.Stores{}, nil, fmt.Errorf("mysql handle: %w", err)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(10)

	operation := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		return sqlDB.PingContext(ctx)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	err = backoff.RetryNotify(operation, policy, func(err error, d time.Duration) {
		log.Warn("mysql not ready", zap.Duration("retry_in", d), zap.Error(err))
	})
	if err != nil {
		_ = sqlDB.Close()
		return entities.Stores{}, nil, fmt.Errorf("ping mysql: %w", err)
	}

	log.Info("connected to mysql")
	return entities.DatabaseStores(db), func() { _ = sqlDB.Close() }, nil
}
