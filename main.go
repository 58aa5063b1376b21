package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"vermux/compose"
	"vermux/config"
	"vermux/credentials"
	"vermux/failures"
	"vermux/job"
	"vermux/logger"
	"vermux/routes"
	"vermux/success"
)

func main() {
	if err := logger.Init("vermux.log", true); err != nil {
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting Vermux server initialization")

	// Verify the external engine is reachable before accepting work
	cfg := compose.DefaultConfig()
	cfg.EncodeTimeout = config.GetEncodeTimeout()
	cfg.EncodeThreads = config.GetEncodeThreads()
	engine := compose.NewFFmpegEngine(cfg)
	if err := engine.VerifyTools(); err != nil {
		logger.Fatalf("External encoding tools unavailable: %v", err)
	}
	logger.Info("External encoding tools verified")

	routes.Configure(cfg, engine)
	job.Configure(cfg, engine)

	// Initialize credentials store
	logger.Debug("Initializing credentials database")
	if err := credentials.Open(config.GetCredentialsDBPath()); err != nil {
		logger.Fatalf("Failed to initialize credentials store: %v", err)
	}
	defer credentials.Close()
	logger.Info("Credentials database initialized successfully")

	// Initialize failure store
	logger.Debug("Initializing failures database")
	if err := failures.Init(config.GetFailuresDBPath()); err != nil {
		logger.Fatalf("Failed to initialize failure store: %v", err)
	}
	defer failures.Close()
	logger.Info("Failures database initialized successfully")

	// Initialize success store
	logger.Debug("Initializing success database")
	if err := success.Init(config.GetSuccessDBPath()); err != nil {
		logger.Fatalf("Failed to initialize success store: %v", err)
	}
	defer success.Close()
	logger.Info("Success database initialized successfully")

	// Scan for jobs left behind by a previous run
	logger.Info("Scanning for pending jobs on startup")
	if err := job.ScanForPendingJobs(); err != nil {
		logger.Errorf("Failed to scan for pending jobs: %v", err)
		// Don't exit - continue with server startup
	} else {
		logger.Info("Pending jobs scan completed")
	}

	// Start cleanup routine for old records (runs every 24 hours)
	logger.Info("Starting cleanup routine (runs every 24 hours)")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupRoutine(ctx)

	// Start job processing routine
	logger.Info("Starting job processing routine")
	go job.ProcessPendingJobs()

	// Register HTTP routes
	logger.Info("Registering HTTP routes")
	http.HandleFunc("/render", routes.RenderHandler)
	http.HandleFunc("/upload", routes.UploadHandler)
	http.HandleFunc("/health", routes.HealthHandler)
	http.HandleFunc("/version", routes.VersionHandler)
	http.HandleFunc("/status", routes.JobStatusHandler)
	http.HandleFunc("/cancel", routes.CancelJobHandler)
	http.HandleFunc("/failures", routes.FailureQueryHandler)
	http.HandleFunc("/failures/list", routes.FailureListHandler)
	http.HandleFunc("/success", routes.SuccessQueryHandler)
	http.HandleFunc("/success/list", routes.SuccessListHandler)
	http.HandleFunc("/credentials", routes.RegisterCredentialsHandler)

	// Rendered files delivered via directServe are served from here
	http.Handle("/files/", http.StripPrefix("/files/",
		http.FileServer(http.Dir(config.GetDirectServeBaseDir()))))
	logger.Info("HTTP routes registered successfully")

	addr := config.GetListenAddr()
	logger.Infof("Vermux server starting on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

// cleanupRoutine periodically cleans up old success and failure records
func cleanupRoutine(ctx context.Context) {
	logger.Info("Cleanup routine started - will run every 24 hours")
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
			logger.Info("Running scheduled cleanup of old records")
			// Clean up records older than 30 days
			maxAge := 30 * 24 * time.Hour

			if err := success.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old success records: %v", err)
			}
			if err := failures.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old failure records: %v", err)
			}
			logger.Info("Scheduled cleanup completed")
		}
	}
}
