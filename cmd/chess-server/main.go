// Package main runs the two-player chess API server and its database admin CLI.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"chessrules/cmd/chess-server/cli"
	"chessrules/internal/server/http"
	"chessrules/internal/server/processor"
	"chessrules/internal/server/service"
	"chessrules/internal/server/storage"

	_ "github.com/joho/godotenv/autoload"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	minJWTSecretLength      = 32
)

// envOr returns the environment value of key, or def when unset
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	// Flag defaults come from the environment, which a .env file may populate
	var (
		apiHost     = flag.String("api-host", envOr("CHESS_API_HOST", "localhost"), "API server host")
		apiPort     = flag.Int("api-port", envIntOr("CHESS_API_PORT", 8080), "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL journal, fixed JWT secret)")
		storagePath = flag.String("storage-path", envOr("CHESS_STORAGE_PATH", ""), "Path to SQLite database file (disables persistence if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		pf, err := writePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer pf.Release()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// 1. Storage (optional)
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path or CHESS_STORAGE_PATH to enable)")
	}

	// 2. JWT secret: environment, fixed in dev mode, or random per run
	var jwtSecret []byte
	switch secret := os.Getenv("CHESS_JWT_SECRET"); {
	case secret != "":
		if len(secret) < minJWTSecretLength {
			log.Fatalf("CHESS_JWT_SECRET must be at least %d characters", minJWTSecretLength)
		}
		jwtSecret = []byte(secret)
		log.Printf("Using JWT secret from environment")
	case *dev:
		jwtSecret = []byte("dev-secret-minimum-32-characters-long")
		log.Printf("Using fixed JWT secret (dev mode)")
	default:
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("JWT secret generated (sessions valid until restart)")
	}

	// 3. Service, with unfinished games reloaded from storage
	svc := service.New(store, jwtSecret)
	if n, err := svc.RestoreGames(); err != nil {
		log.Printf("Warning: failed to restore games: %v", err)
	} else if n > 0 {
		log.Printf("Restored %d unfinished games", n)
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	// 4. Processor and HTTP app
	proc := processor.New(svc)
	app := http.NewFiberApp(proc, svc, http.Config{DevMode: *dev})

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		if *storagePath != "" {
			log.Printf("Storage: Enabled (%s)", *storagePath)
		} else {
			log.Printf("Storage: Disabled (auth features unavailable)")
		}
		log.Printf("API Endpoints: http://%s/api/v1/games", apiAddr)
		log.Printf("Auth Endpoints: http://%s/api/v1/auth/[register|login|logout|me]", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// parked long-polls answer now instead of holding the HTTP shutdown
	if err := svc.ReleaseWaiters(gracefulShutdownTimeout); err != nil {
		log.Printf("Wait registry shutdown error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cleanupCancel()

	// closes storage after draining queued writes
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}
