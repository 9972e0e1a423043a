package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postbridge"
	"postbridge/config"
	"postbridge/internal/application/usecase"
	"postbridge/internal/domain/repository/broker"
	redisbroker "postbridge/internal/infrastructure/broker"
	"postbridge/internal/infrastructure/imaging"
	"postbridge/internal/infrastructure/metrics"
	"postbridge/internal/infrastructure/tracing"
	"postbridge/internal/presentation"
	"postbridge/internal/presentation/handler"
	"postbridge/internal/presentation/middleware"
	"postbridge/pkg/keylock"
	"postbridge/pkg/logger"
)

func HandleRun(args []string) {
	if len(args) < 3 {
		ExitOnError(errors.New("at least 1 arguments expected\nuse help command for more information"))
	}

	cfg, err := config.Load(args[2])
	if err != nil {
		ExitOnError(err)
	}

	logger.InitGlobalLogger(&cfg.Logger)

	logger.Info("running postbridge", "version", postbridge.StringVersion())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, postbridge.StringVersion())
	if err != nil {
		ExitOnError(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var observer metrics.Observer = metrics.Nop{}
	if cfg.Metrics.Enabled {
		observer, err = metrics.NewPrometheusObserver(cfg.Metrics.Namespace, registry)
		if err != nil {
			ExitOnError(err)
		}
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		ExitOnError(err)
	}

	cat, err := newCatalog(ctx, cfg)
	if err != nil {
		ExitOnError(err)
	}

	var publisher broker.Publisher
	if cfg.BrokerEnabled() {
		brokerClient, err := redisbroker.NewClient(cfg.BrokerConfig)
		if err != nil {
			ExitOnError(err)
		}
		defer brokerClient.Close()

		publisher = redisbroker.NewPublisher(brokerClient, cfg.PublisherConfig)
	}

	processor, err := imaging.NewProcessor(cfg.Imaging)
	if err != nil {
		ExitOnError(err)
	}

	locks := keylock.New()

	uploader := usecase.NewUploader(cat, cat, blobs, locks, publisher, observer, cfg.HTTP.PublicAddress)
	getter := usecase.NewGetter(cat, cfg.HTTP.PublicAddress)
	fetcher := usecase.NewFetcher(cat, blobs, locks, processor, cfg.Platforms, observer)

	uploadHandler := handler.NewUploadHandler(uploader, getter)
	getHandler := handler.NewGetHandler(fetcher)
	headHandler := handler.NewHeadHandler(getter)

	bodyLimit := cfg.HTTP.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "50M"
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderContentLength},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
		ExposeHeaders: []string{presentation.ReasonTag, presentation.WidthTag, presentation.HeightTag, presentation.ResizedTag},
		MaxAge:        86400,
	}))
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.Trace())
	e.Use(echoMiddleware.Secure())
	e.Use(echoMiddleware.BodyLimit(bodyLimit))
	e.Use(echoMiddleware.RateLimiter(echoMiddleware.NewRateLimiterMemoryStore(20)))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	if cfg.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	idPath := fmt.Sprintf("/files/:%s", presentation.IDParam)
	e.POST("/upload", uploadHandler.Handle)
	e.GET(idPath, getHandler.HandleGet)
	e.HEAD(idPath, headHandler.HandleHead)
	e.GET(idPath+"/meta", headHandler.HandleDescribe)

	go func() {
		if err := e.Start(cfg.HTTP.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ExitOnError(fmt.Errorf("shutting down server: %w", err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down postbridge")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}

	if err := cat.close(); err != nil {
		logger.Error("closing catalog failed", "err", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown failed", "err", err)
	}
}
