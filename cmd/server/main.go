package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"items-api/backend/internal/archive"
	"items-api/backend/internal/config"
	dbpkg "items-api/backend/internal/db"
	httpx "items-api/backend/internal/http"
	"items-api/backend/internal/items"
	"items-api/backend/internal/logging"
)

const (
	probeTimeout    = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer closeStore()

	// Usage: server archive [-out file] [-key key]
	if len(os.Args) >= 2 && os.Args[1] == "archive" {
		if err := runArchive(ctx, cfg, store, log, os.Args[2:]); err != nil {
			log.WithError(err).Error("archive failed")
			closeStore()
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, store, log); err != nil {
		log.WithError(err).Error("server stopped")
		closeStore()
		os.Exit(1)
	}
}

// openStore picks the backend from DB_DRIVER. For Postgres the pool is
// probed once; a failed probe is logged and startup continues.
func openStore(ctx context.Context, cfg config.Config, log *logrus.Logger) (items.Store, func(), error) {
	if cfg.Driver == config.DriverSQLite {
		s, err := items.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("using sqlite store")
		return s, func() { _ = s.Close() }, nil
	}

	dsn := cfg.PostgresURL()
	pool, err := dbpkg.Connect(ctx, dsn, dbpkg.PoolOptions{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	if err != nil {
		return nil, nil, err
	}
	entry := log.WithField("database", config.MaskURL(dsn))
	if err := dbpkg.Probe(ctx, pool, probeTimeout); err != nil {
		entry.WithError(err).Error("database connection error")
	} else {
		entry.Info("database connected successfully")
	}
	return items.NewPostgresStore(pool), pool.Close, nil
}

func serve(ctx context.Context, cfg config.Config, store items.Store, log *logrus.Logger) error {
	srv := httpx.NewServer(store, log, httpx.Options{CORSOrigin: cfg.CORSOrigin})
	hs := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.R,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server running on http://localhost:%s", cfg.Port)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runArchive(ctx context.Context, cfg config.Config, store items.Store, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	out := fs.String("out", "items.parquet", "local file used when S3 is not configured")
	key := fs.String("key", archive.DefaultKey(time.Now()), "object key for the S3 upload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	start := time.Now()
	data, n, err := archive.Snapshot(ctx, store)
	if err != nil {
		return err
	}
	entry := log.WithFields(logrus.Fields{"rows": n, "bytes": len(data)})

	if client := archive.NewS3Client(cfg.S3); client != nil {
		if err := archive.Upload(ctx, client, cfg.S3.Bucket, *key, data, n); err != nil {
			return err
		}
		entry.WithField("key", cfg.S3.Bucket+"/"+*key).WithField("took", time.Since(start).String()).Info("archive uploaded")
		return nil
	}

	log.Info("S3 not configured, writing archive locally")
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	entry.WithField("file", *out).Info("archive written")
	return nil
}
