package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"smart_toll/internal/api"
	"smart_toll/internal/api/handler"
	"smart_toll/internal/api/middleware"
	"smart_toll/internal/camera"
	"smart_toll/internal/config"
	"smart_toll/internal/iot"
	"smart_toll/internal/motion"
	"smart_toll/internal/observability"
	"smart_toll/internal/remote"
	"smart_toll/internal/repository/postgresql"
	"smart_toll/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	role := flag.String("role", "", "service role: booth, geo, bridge or motion (overrides SERVICE_ROLE)")
	flag.Parse()
	if *role != "" {
		os.Setenv("SERVICE_ROLE", *role)
	}

	cfg := config.Load()
	observability.SetupLogger(cfg.LogLevel, cfg.LogFormat, cfg.ServiceRole)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cfg.ServiceRole {
	case "booth":
		err = runBooth(ctx, cfg)
	case "geo":
		err = runGeo(ctx, cfg)
	case "bridge":
		err = runBridge(ctx, cfg)
	case "motion":
		err = runMotion(ctx, cfg)
	default:
		err = fmt.Errorf("unknown service role %q", cfg.ServiceRole)
	}
	if err != nil {
		log.Fatalf("%s: %v", cfg.ServiceRole, err)
	}
	log.Println("Server stopped.")
}

// runBooth serves the capture endpoints and, when configured, consumes queued triggers.
func runBooth(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	awsCfg, err := loadAWS(ctx, cfg)
	if err != nil {
		return err
	}
	ocr := service.NewRekognitionOCR(rekognition.NewFromConfig(awsCfg), cfg.OCRMinConfidence)
	recognizer := service.NewPlateRecognizer(camera.NewSnapshotCamera(cfg.SnapshotURL, 5*time.Second), ocr)

	balanceRepo := postgresql.NewPgBalanceRepository(db)
	tolls := service.NewTollService(
		postgresql.NewPgLicensePlateRepository(db),
		balanceRepo,
		postgresql.NewPgStationRepository(db),
		remote.NewPositionClient(cfg.GeoServiceURL, cfg.GeoTimeout+5*time.Second),
		service.NewLedgerService(balanceRepo),
		cfg.GeofenceRadiusKm,
	)
	tolls.SetAuditRecorder(postgresql.NewPgAuthorizationEventRepository(db))
	if cfg.IoTMQTTEndpoint != "" {
		tolls.SetOutcomePublisher(service.NewBarrierPublisher(newIoTDataPlaneClient(awsCfg, cfg.IoTMQTTEndpoint)))
		log.Printf("Booth: barrier commands go to %s", service.BarrierTopic(cfg.StationID))
	}
	booth := service.NewBoothService(recognizer, tolls, cfg.StationID)

	var wg sync.WaitGroup
	if cfg.SQSTriggerQueueURL == "" {
		log.Println("Booth: SQS_TRIGGER_QUEUE_URL not set, SQS consumer disabled.")
	} else {
		consumer := iot.NewSQSTriggerConsumer(sqs.NewFromConfig(awsCfg), cfg.SQSTriggerQueueURL, booth)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(ctx)
			log.Println("SQS Consumer stopped.")
		}()
	}

	router := api.SetupBoothRouter(handler.NewTollHandler(booth))
	return serve(ctx, cfg.ServerPort, router, &wg)
}

// runGeo serves the coordinate rendezvous and the account API.
func runGeo(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	awsCfg, err := loadAWS(ctx, cfg)
	if err != nil {
		return err
	}
	// plate registration reads uploads only, no camera
	recognizer := service.NewPlateRecognizer(nil, service.NewRekognitionOCR(rekognition.NewFromConfig(awsCfg), cfg.OCRMinConfidence))

	rendezvous := service.NewRendezvousService(remote.NewBridgeNotifier(cfg.BridgeURL, 5*time.Second), cfg.GeoTimeout)
	var wg sync.WaitGroup
	if cfg.RedisAddr != "" {
		relay, err := service.NewRedisPositionRelay(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer relay.Close()
		rendezvous.SetRelay(relay)
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx, rendezvous.DeliverLocal)
		}()
	}

	balanceRepo := postgresql.NewPgBalanceRepository(db)
	stationRepo := postgresql.NewPgStationRepository(db)
	accounts := service.NewAccountService(
		postgresql.NewPgAccountRepository(db),
		balanceRepo,
		postgresql.NewPgLicensePlateRepository(db),
		stationRepo,
		service.NewLedgerService(balanceRepo),
		recognizer,
	)
	authService := service.NewAuthService(postgresql.NewPgUserRepository(db), cfg.JWTSecret, cfg.JWTExpirationHours)
	if cfg.AdminUsername != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Printf("Auth: admin '%s' ready", cfg.AdminUsername)
	}

	router := api.SetupGeoRouter(
		handler.NewGeoHandler(rendezvous),
		handler.NewAccountHandler(accounts),
		handler.NewAuthHandler(authService),
		handler.NewStationHandler(accounts),
		middleware.NewAuthMiddleware(authService),
		middleware.NewRateLimiter(float64(cfg.CallbackRatePerSecond), cfg.CallbackBurst),
	)
	return serve(ctx, cfg.ServerPort, router, &wg)
}

// runBridge serves the websocket bridge for Geo Reporter Clients.
func runBridge(ctx context.Context, cfg *config.Config) error {
	hub := handler.NewGeoReporterHub(remote.NewLatLonForwarder(cfg.GeoServiceURL, 5*time.Second))
	defer hub.Close()
	return serve(ctx, cfg.ServerPort, api.SetupBridgeRouter(hub), nil)
}

// runMotion watches the camera until one trigger has been sent and the shutdown delay has passed.
func runMotion(ctx context.Context, cfg *config.Config) error {
	metricsSrv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Motion: metrics listener failed: %v", err)
		}
	}()
	defer metricsSrv.Close()

	detCfg := motion.DefaultConfig()
	detCfg.ShutdownDelay = cfg.MotionShutdownDelay
	detCfg.StationID = cfg.StationID
	detector := motion.NewDetector(detCfg, remote.NewCaptureTriggerClient(cfg.BoothURL, detCfg.TriggerTimeout))

	runner := motion.NewRunner(camera.NewSnapshotCamera(cfg.SnapshotURL, 2*time.Second), motion.NewBackgroundModel(), detector, cfg.MotionFrameInterval)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.DBMigrate {
		if err := postgresql.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	log.Println("Database connected.")
	return db, nil
}

func loadAWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsgo_config.LoadDefaultConfig(ctx, awsgo_config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS SDK config: %w", err)
	}
	log.Println("AWS SDK config loaded for region:", cfg.AWSRegion)
	return awsCfg, nil
}

func newIoTDataPlaneClient(awsCfg aws.Config, endpoint string) *iotdataplane.Client {
	return iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
		if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
			endpoint = "https://" + endpoint
		}
		o.BaseEndpoint = aws.String(endpoint)
	})
}

// serve runs router until ctx is cancelled, then shuts down gracefully and waits for background work.
func serve(ctx context.Context, port string, router *gin.Engine, background *sync.WaitGroup) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server running on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ListenAndServe(): %w", err)
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shut down: %w", err)
	}

	if background != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			background.Wait()
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			log.Println("Background workers did not stop within the wait time.")
		}
	}
	return nil
}
