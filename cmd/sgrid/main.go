package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fairwaylabs/sgrid/internal/api"
	"github.com/fairwaylabs/sgrid/internal/config"
	"github.com/fairwaylabs/sgrid/internal/database"
	"github.com/fairwaylabs/sgrid/internal/dispatcher"
	"github.com/fairwaylabs/sgrid/internal/engine"
	"github.com/fairwaylabs/sgrid/internal/influx"
	"github.com/fairwaylabs/sgrid/internal/logging"
	intOtel "github.com/fairwaylabs/sgrid/internal/otel"
	"github.com/fairwaylabs/sgrid/internal/regression"
	"github.com/fairwaylabs/sgrid/internal/server"
	"github.com/fairwaylabs/sgrid/internal/storage"
	"github.com/fairwaylabs/sgrid/internal/worker"
	"github.com/rs/zerolog"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "sgrid"
)

// file paths
var (
	// ConfigDir holds sgrid.cfg.json; overridden by SGRID_CONFIG_DIR.
	ConfigDir string = "."

	LogFilePath string
	LogFile     *os.File
)

// global variables
var (
	// LogManager handles zerolog setup
	LogManager *logging.Manager = logging.NewManager()

	// Logger is the zerolog logger (convenience reference)
	Logger zerolog.Logger = zerolog.Nop()

	// OTelProvider handles OpenTelemetry metrics
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	// Services
	DBManager       *database.Manager
	InfluxManager   *influx.Manager
	APIClient       *api.Client
	Engine          *engine.Engine
	eventDispatcher *dispatcher.Dispatcher
	workerManager   *worker.Manager
	storageBackend  storage.Backend
)

const usage = `usage:
  sgrid outcome [flags] <course.geojson> <shot.json> [out.geojson]
  sgrid target  [flags] <course.geojson> <shot.json> [out.geojson]
  sgrid serve
  sgrid version

flags:
  --aim x,y[,crs]   replace the shot's aim point
  --pin x,y[,crs]   replace the pin position
  --upload          send the grid to the statistics service`

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "version":
		fmt.Printf("%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
		return
	case "outcome", "target":
		opts, parseErr := parseCLIArgs(strings.ToLower(args[0]), args[1:])
		if parseErr != nil {
			fmt.Fprintln(os.Stderr, parseErr)
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		err = runCLI(opts)
	case "serve":
		err = runServer()
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		Logger.Error().Err(err).Msg("Exiting with error")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and builds every service. Console logs go to stderr so
// CLI output on stdout stays clean.
func setup() error {
	if dir := os.Getenv("SGRID_CONFIG_DIR"); dir != "" {
		ConfigDir = dir
	}

	configErr := config.Load(ConfigDir)

	logCfg := config.GetLogConfig()
	if err := os.MkdirAll(logCfg.LogsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}
	LogFilePath = logging.LogFilePath(logCfg.LogsDir, AppName, SessionStartTime)

	// keep the previous session's file if the name collides
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to create log file %s: %w", LogFilePath, err)
	}

	if err := LogManager.Setup(os.Stderr, LogFile, logging.Config{
		Level:          logCfg.Level,
		GraylogEnabled: logCfg.GraylogEnabled,
		GraylogAddress: logCfg.GraylogAddress,
	}); err != nil {
		return err
	}
	Logger = LogManager.Logger().With().Str("version", CurrentVersion).Logger()

	if configErr != nil {
		Logger.Warn().Err(configErr).Msg("Failed to load config, using defaults!")
	} else {
		Logger.Info().Str("dir", ConfigDir).Msg("Loaded config")
	}

	setupOTel()

	// regression coefficients
	table := regression.Default()
	if path := config.GetRegressionTablePath(); path != "" {
		table, err = regression.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load regression table: %w", err)
		}
		Logger.Info().Str("path", path).Msg("Loaded regression table")
	}

	Engine, err = engine.New(config.GetEngineConfig(), table, logging.NewAdapter(Logger.With().Str("component", "engine").Logger()))
	if err != nil {
		return err
	}
	Logger.Debug().Int("workers", Engine.Config().Workers).Msg("Engine ready")

	if err := initStorage(); err != nil {
		return err
	}
	initInflux()
	initAPI()

	eventDispatcher, err = dispatcher.New(logging.NewAdapter(Logger.With().Str("component", "dispatcher").Logger()))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	deps := worker.Dependencies{
		Evaluator: Engine,
		Backend:   storageBackend,
		Logger:    Logger.With().Str("component", "worker").Logger(),
	}
	if InfluxManager != nil {
		deps.Metrics = InfluxManager
	}
	workerManager = worker.NewManager(deps, worker.Config{
		TargetDebounce: config.GetServerConfig().TargetDebounce,
	})
	workerManager.RegisterHandlers(eventDispatcher)
	Logger.Info().Msg("Worker handlers registered with dispatcher")

	return nil
}

func setupOTel() {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return
	}

	metricsPath := strings.TrimSuffix(LogFilePath, ".log") + ".metrics.log"
	metricsFile, err := os.OpenFile(metricsPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error().Err(err).Str("path", metricsPath).Msg("Failed to create metrics file")
		return
	}

	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ExportInterval: otelCfg.ExportInterval,
		MetricWriter:   metricsFile,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	})
	if err != nil {
		Logger.Error().Err(err).Msg("Failed to initialize OTel provider")
		return
	}
	OTelProvider.SetGlobal()
	Logger.Info().Str("file", metricsPath).Str("endpoint", otelCfg.Endpoint).Msg("OTel provider initialized")
}

func initInflux() {
	InfluxManager = influx.NewManager(
		Logger.With().Str("component", "influx").Logger(),
		config.GetInfluxConfig(),
		filepath.Join(config.GetLogConfig().LogsDir, "influx_backup.log.gz"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := InfluxManager.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			Logger.Error().Err(err).Msg("Failed to connect to InfluxDB")
		}
		InfluxManager = nil
	}
}

func initAPI() {
	apiCfg := config.GetAPIConfig()
	if !apiCfg.Enabled || apiCfg.ServerURL == "" {
		return
	}
	APIClient = api.New(apiCfg.ServerURL, apiCfg.APIKey)

	// log statistics service status
	if err := APIClient.Healthcheck(); err != nil {
		Logger.Warn().Err(err).Str("url", apiCfg.ServerURL).Msg("Statistics service is unreachable")
	} else {
		Logger.Info().Str("url", apiCfg.ServerURL).Msg("Statistics service is reachable")
	}
}

// shutdown drains queued work, closes storage and uploads the session export.
func shutdown() {
	if eventDispatcher != nil {
		eventDispatcher.Close()
	}

	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error().Err(err).Msg("Failed to close storage backend")
		}
		uploadExport()
	}
	if DBManager != nil {
		if err := dumpMemoryDB(DBManager, config.GetStorageConfig()); err != nil {
			Logger.Error().Err(err).Msg("Failed to dump in-memory database")
		}
		if err := DBManager.Close(); err != nil {
			Logger.Error().Err(err).Msg("Failed to close database")
		}
	}
	if InfluxManager != nil {
		if err := InfluxManager.Close(); err != nil {
			Logger.Error().Err(err).Msg("Failed to close InfluxDB manager")
		}
	}
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error().Err(err).Msg("Failed to shut down OTel provider")
		}
	}

	Logger.Info().Dur("session", time.Since(SessionStartTime)).Msg("Shutdown complete")
	LogManager.Close()
	if LogFile != nil {
		LogFile.Close()
	}
}

func uploadExport() {
	up, ok := storageBackend.(storage.Uploadable)
	if !ok || APIClient == nil {
		return
	}
	path := up.GetExportedFilePath()
	if path == "" {
		return
	}
	if err := APIClient.Upload(path, up.GetExportMetadata()); err != nil {
		Logger.Error().Err(err).Str("path", path).Msg("Failed to upload session export")
		return
	}
	Logger.Info().Str("path", path).Msg("Uploaded session export")
}

func runServer() error {
	if err := setup(); err != nil {
		return err
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(config.GetServerConfig(), eventDispatcher, Logger.With().Str("component", "server").Logger())
	if lister, ok := storageBackend.(server.EvaluationLister); ok {
		srv.WithEvaluations(lister)
	}
	return srv.Run(ctx)
}
