package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebelasdpib2/photo-bot/config"
	"github.com/sebelasdpib2/photo-bot/internal/controller/restapi"
	wactrl "github.com/sebelasdpib2/photo-bot/internal/controller/whatsapp"
	"github.com/sebelasdpib2/photo-bot/internal/controller/worker/supervisor"
	"github.com/sebelasdpib2/photo-bot/internal/infrastructure"
	infrakafka "github.com/sebelasdpib2/photo-bot/internal/infrastructure/kafka"
	"github.com/sebelasdpib2/photo-bot/internal/infrastructure/processor"
	"github.com/sebelasdpib2/photo-bot/internal/infrastructure/whatsapp"
	"github.com/sebelasdpib2/photo-bot/internal/repo"
	"github.com/sebelasdpib2/photo-bot/internal/repo/persistent"
	"github.com/sebelasdpib2/photo-bot/internal/usecase/album"
	"github.com/sebelasdpib2/photo-bot/internal/usecase/imageprocessor"
	"github.com/sebelasdpib2/photo-bot/internal/usecase/recent"
	"github.com/sebelasdpib2/photo-bot/internal/usecase/upload"
	"github.com/sebelasdpib2/photo-bot/pkg/cloudinaryclient"
	"github.com/sebelasdpib2/photo-bot/pkg/httpserver"
	"github.com/sebelasdpib2/photo-bot/pkg/kafka/producer"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
	"github.com/sebelasdpib2/photo-bot/pkg/postgres"
	"github.com/sebelasdpib2/photo-bot/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startedAt := time.Now()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// postgres (supabase)
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// image sink
	imageSink, err := newImageSink(ctx, cfg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newImageSink: %w", err))
	}

	// Kafka Producer, только если заданы брокеры
	var events infrastructure.EventsSender
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
		}
		events = infrakafka.NewEventProducer(kafkaProducer)
	}

	// WhatsApp
	container, device, err := whatsapp.OpenSession(ctx, cfg.WhatsApp.SessionDialect, cfg.WhatsApp.SessionDSN, l.Zerolog())
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - whatsapp.OpenSession: %w", err))
	}
	defer container.Close()

	waClient := whatsapp.NewClient(device, l.Zerolog(), l)

	// Use-Case
	cache := recent.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	albumUseCase := album.New(cache, cfg.Album.WindowSeconds)

	imageProcessorUseCase := imageprocessor.New(
		processor.New(),
		l,
		cfg.Upload.MaxWidth,
		cfg.Upload.MaxHeight,
		cfg.Upload.JPEGQuality,
	)

	uploadUseCase := upload.New(
		waClient,
		imageProcessorUseCase,
		imageSink,
		persistent.NewPhotoMetadataRepo(pg),
		events,
		upload.Settings{
			Folder:          cfg.Sink.Folder,
			TempDir:         cfg.Upload.TempDir,
			GalleryURL:      cfg.Gallery.URL,
			Caption:         cfg.Upload.Caption,
			DownloadTimeout: cfg.Upload.DownloadTimeout,
			UploadTimeout:   cfg.Upload.UploadTimeout,
			InsertTimeout:   cfg.Upload.InsertTimeout,
		},
		l,
	)

	// WhatsApp as Controller
	messageController := wactrl.New(
		cache,
		albumUseCase,
		uploadUseCase,
		waClient,
		wactrl.Texts{BotName: cfg.Gallery.BotName, WebsiteURL: cfg.Gallery.WebsiteURL},
		l,
		cfg.WhatsApp.Workers,
	)

	// Connection Supervisor
	connSupervisor := supervisor.New(waClient, l, supervisor.ReconnectDelay(cfg.WhatsApp.ReconnectDelay))

	waClient.Subscribe(messageController, connSupervisor)

	// HTTP Server
	httpServer := httpserver.New(
		l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
	)
	restapi.NewRouter(httpServer.App, connSupervisor, startedAt, l)

	// Start Components
	err = messageController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - messageController.Start: %w", err))
	}
	err = connSupervisor.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - connSupervisor.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	case <-connSupervisor.LoggedOut():
		l.Warn("app - Run - whatsapp session logged out, exiting")
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	mcShutdownCtx, mcShutdownCancel := context.WithTimeout(ctx, cfg.WhatsApp.ShutdownTimeout)
	defer mcShutdownCancel()
	err = messageController.Shutdown(mcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - messageController.Shutdown: %w", err))
	}

	csShutdownCtx, csShutdownCancel := context.WithTimeout(ctx, cfg.WhatsApp.ShutdownTimeout)
	defer csShutdownCancel()
	err = connSupervisor.Shutdown(csShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - connSupervisor.Shutdown: %w", err))
	}

	if events != nil {
		err = events.Close()
		if err != nil {
			l.Error(fmt.Errorf("app - Run - events.Close: %w", err))
		}
	}
}

func newImageSink(ctx context.Context, cfg *config.Config) (repo.ImageSink, error) {
	switch cfg.Sink.Kind {
	case config.SinkS3:
		s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
		defer s3Cancel()

		s3c, err := s3client.New(
			s3Ctx,
			cfg.S3.Endpoint,
			cfg.S3.AccessKey,
			cfg.S3.SecretKey,
			cfg.S3.Bucket,
			s3client.Region(cfg.S3.Region),
			s3client.UsePathStyle(cfg.S3.UsePathStyle),
		)
		if err != nil {
			return nil, fmt.Errorf("s3client.New: %w", err)
		}

		return persistent.NewS3ImageSink(s3c, cfg.S3.Bucket, cfg.S3.PublicBaseURL), nil
	default:
		cld, err := cloudinaryclient.New(cfg.Cloudinary.URL)
		if err != nil {
			return nil, fmt.Errorf("cloudinaryclient.New: %w", err)
		}

		return persistent.NewCloudinaryImageSink(cld), nil
	}
}
