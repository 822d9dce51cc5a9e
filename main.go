package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repairtrack/auth"
	"repairtrack/config"
	"repairtrack/job"
	"repairtrack/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Ensure log directory exists
	os.MkdirAll(cfg.LogDir, os.ModePerm)

	// Setup logging
	logFile, err := os.OpenFile(filepath.Join(cfg.LogDir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}
	multi := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multi)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	log.Println("Starting repairtrack server...")

	ctx := context.Background()
	store, users, err := buildStores(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	service := job.NewService(store, cfg.QueueSlot)
	handler := job.NewHandler(service)
	verifier := auth.NewVerifier(cfg.JWTSecret, users)

	createLimit, err := ratelimit.CreateJob()
	if err != nil {
		log.Fatalf("rate limiter: %v", err)
	}
	heavyLimit, err := ratelimit.Heavy()
	if err != nil {
		log.Fatalf("rate limiter: %v", err)
	}
	apiLimit, err := ratelimit.API()
	if err != nil {
		log.Fatalf("rate limiter: %v", err)
	}

	// Setup routes
	r := mux.NewRouter()
	r.HandleFunc("/", handler.Root).Methods("GET")
	r.HandleFunc("/health", handler.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/jobs", createLimit.Wrap(verifier.Optional(http.HandlerFunc(handler.Create)))).Methods("POST")
	api.Handle("/jobs", verifier.RequireStaff(http.HandlerFunc(handler.List))).Methods("GET")
	api.Handle("/jobs/stats/summary", http.HandlerFunc(handler.Stats)).Methods("GET") // keep before /jobs/{id}
	api.Handle("/jobs/queue/current", http.HandlerFunc(handler.CurrentQueue)).Methods("GET")
	api.Handle("/jobs/analytics/overview", heavyLimit.Wrap(verifier.RequireStaff(http.HandlerFunc(handler.AnalyticsOverview)))).Methods("GET")
	api.Handle("/jobs/analytics/daily", heavyLimit.Wrap(verifier.RequireStaff(http.HandlerFunc(handler.AnalyticsDaily)))).Methods("GET")
	api.Handle("/jobs/{id}", http.HandlerFunc(handler.GetByID)).Methods("GET")
	api.Handle("/jobs/{id}", verifier.RequireStaff(http.HandlerFunc(handler.UpdateStatus))).Methods("PUT")
	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	corsOpts := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	chain := handlers.CombinedLoggingHandler(multi, apiLimit.Wrap(corsOpts.Handler(requestID(r))))

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: chain,
	}

	// Graceful shutdown listener
	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	go func() {
		fmt.Println("Server started at http://localhost:" + cfg.Port)
		log.Println("Listening on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdownCtx.Done()
	log.Println("Shutdown signal received...")

	// Shutdown HTTP server gracefully
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Fatalf("HTTP server forced to shutdown: %v", err)
	}

	log.Println("Server exited cleanly.")
}

// buildStores selects the Mongo-backed stores when MONGO_URI is set and the
// snapshot-backed in-memory stores otherwise.
func buildStores(ctx context.Context, cfg *config.Config) (job.Store, auth.Users, error) {
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		db := client.Database(cfg.MongoDB)
		log.Println("Using MongoDB store:", cfg.MongoDB)
		return job.NewMongoStore(db), auth.NewMongoUsers(db), nil
	}

	mem, err := job.NewMemoryStore(cfg.DataFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SeedDemo {
		if n, err := mem.Count(ctx, job.Query{}); err == nil && n == 0 {
			if err := job.SeedDemo(ctx, mem, time.Now()); err != nil {
				return nil, nil, err
			}
			log.Println("Seeded demo job")
		}
	}
	users := auth.NewMemoryUsers(
		auth.User{UID: "admin001", DisplayName: "Admin", Role: auth.RoleAdmin, IsActive: true},
		auth.User{UID: "drop001", DisplayName: "Drop-APP Staff", Role: auth.RoleDropApp, IsActive: true},
		auth.User{UID: "asp001", DisplayName: "ASP Technician", Role: auth.RoleASP, IsActive: true},
	)
	log.Println("Using in-memory store:", cfg.DataFile)
	return mem, users, nil
}

// requestID tags each request for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}
