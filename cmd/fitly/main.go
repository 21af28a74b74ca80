package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/fitly/fitly/internal/backend"
	"github.com/fitly/fitly/internal/backend/storage"
	"github.com/fitly/fitly/internal/client/cli"
	"github.com/fitly/fitly/internal/client/clothes"
	"github.com/fitly/fitly/internal/client/config"
	"github.com/fitly/fitly/internal/client/media"
	"github.com/fitly/fitly/internal/client/session"
	"github.com/fitly/fitly/internal/client/upload"
	"github.com/fitly/fitly/internal/logging"
)

func main() {
	ctx := context.Background()

	// Configuration errors are fatal before anything else is constructed.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewDefault(cfg.LogLevel)

	client, err := backend.New(backend.Options{
		BaseURL:     cfg.BackendURL,
		AnonKey:     cfg.AnonKey,
		SessionFile: cfg.SessionFile,
		AutoRefresh: true,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer client.Close()

	store, err := newStorage(ctx, cfg, client)
	if err != nil {
		log.Fatalf("%v", err)
	}

	lib := media.NewFSLibrary(cfg.MediaDir, bufio.NewReader(os.Stdin), os.Stdout)
	uploader := upload.New(lib, store, cfg.Bucket, logger)
	wardrobe := clothes.NewService(client, logger)

	sessions := session.New(client.Auth, logger)
	sessions.Start(ctx)
	defer sessions.Close()

	app := cli.NewApp(sessions, wardrobe, uploader, logger)
	app.Run(ctx)
}

func newStorage(ctx context.Context, cfg *config.Config, client *backend.Client) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverS3:
		return storage.NewS3(ctx, storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return storage.NewREST(client.BaseURL(), client.AnonKey(), client.Auth.AccessToken, nil), nil
	}
}
