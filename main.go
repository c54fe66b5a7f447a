package main

import (
	"log"
	"net/http"
	"time"

	"fieldform/backend/config"
	"fieldform/backend/connectivity"
	"fieldform/backend/database"
	"fieldform/backend/handlers"
	"fieldform/backend/middleware"
	"fieldform/backend/security"
	"fieldform/backend/store"
	"fieldform/backend/syncer"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	passphrase := cfg.Store.EncryptionPassphrase
	if passphrase == "" {
		log.Println("Warning: ENCRYPTION_PASSPHRASE not set, using a default key. This is NOT secure for production!")
		passphrase = "default-key-for-development-only"
	}
	security.InitializeEncryption(passphrase)

	if err := database.InitDB(cfg.Store.DataDir); err != nil {
		log.Fatal(err)
	}
	if !database.Persistent {
		log.Println("Warning: store is running in memory; local data will not survive a restart")
	}

	log.Println("Initializing Firebase Admin SDK...")
	if err := middleware.InitializeFirebase(cfg.Firebase.ProjectID); err != nil {
		log.Printf("Warning: Failed to initialize Firebase: %v", err)
		log.Println("Auth token verification will be disabled!")
	}

	// Connectivity and sync: assume offline until the first probe says
	// otherwise, so queued work is never raced against a dead network.
	monitor := connectivity.NewMonitor(false)
	transport := syncer.NewHTTPTransport(cfg.Remote.BaseURL, store.GetRemoteToken)
	engine := syncer.New(transport, monitor)
	engine.SetInterval(cfg.Sync.Interval)
	engine.Start()
	monitor.StartProbe(cfg.PingURL(), cfg.Sync.ProbeInterval)
	defer monitor.StopProbe()

	handlers.InitSync(engine, monitor)

	r := mux.NewRouter()
	r.Use(middleware.EnableCORS)
	registerRoutes(r.PathPrefix("/api").Subrouter())

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + cfg.Server.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Printf("Starting server on port %s...", cfg.Server.Port)
	log.Fatal(srv.ListenAndServe())
}

// registerRoutes sets up all API routes
func registerRoutes(r *mux.Router) {
	// Public routes (no auth required)
	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")

	protectedRouter := r.PathPrefix("").Subrouter()
	protectedRouter.Use(middleware.AuthMiddleware)

	// User routes
	protectedRouter.HandleFunc("/users", handlers.RegisterUser).Methods("POST")
	protectedRouter.HandleFunc("/users/{id}", handlers.GetUser).Methods("GET")
	protectedRouter.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PUT")

	// Project routes
	protectedRouter.HandleFunc("/projects", handlers.GetProjects).Methods("GET")
	protectedRouter.HandleFunc("/projects", handlers.CreateProject).Methods("POST")
	protectedRouter.HandleFunc("/projects/{id}", handlers.GetProject).Methods("GET")
	protectedRouter.HandleFunc("/projects/{id}", handlers.UpdateProject).Methods("PUT")
	protectedRouter.HandleFunc("/projects/{id}", handlers.DeleteProject).Methods("DELETE")

	// Report definition routes
	protectedRouter.HandleFunc("/reports", handlers.GetReports).Methods("GET")
	protectedRouter.HandleFunc("/reports", handlers.CreateReport).Methods("POST")
	protectedRouter.HandleFunc("/reports/{id}", handlers.GetReport).Methods("GET")
	protectedRouter.HandleFunc("/reports/{id}", handlers.UpdateReport).Methods("PUT")
	protectedRouter.HandleFunc("/reports/{id}", handlers.DeleteReport).Methods("DELETE")
	protectedRouter.HandleFunc("/reports/{id}/versions", handlers.GetReportVersions).Methods("GET")

	// Submission routes
	protectedRouter.HandleFunc("/reports/{id}/draft", handlers.SaveDraft).Methods("POST")
	protectedRouter.HandleFunc("/reports/{id}/submit", handlers.SubmitReport).Methods("POST")
	protectedRouter.HandleFunc("/reports/{id}/submissions", handlers.GetReportSubmissions).Methods("GET")
	protectedRouter.HandleFunc("/submissions", handlers.GetMySubmissions).Methods("GET")
	protectedRouter.HandleFunc("/submissions/{id}", handlers.GetSubmission).Methods("GET")
	protectedRouter.HandleFunc("/submissions/{id}/retry", handlers.RetrySubmissionSync).Methods("POST")

	// Notification routes
	protectedRouter.HandleFunc("/notifications", handlers.GetNotifications).Methods("GET")
	protectedRouter.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationRead).Methods("POST")

	// Sync routes
	protectedRouter.HandleFunc("/sync/status", handlers.GetSyncStatus).Methods("GET")
	protectedRouter.HandleFunc("/sync/trigger", handlers.TriggerSync).Methods("POST")

	// Admin routes
	adminRouter := protectedRouter.PathPrefix("").Subrouter()
	adminRouter.Use(middleware.RequireAdmin())
	adminRouter.HandleFunc("/users", handlers.GetUsers).Methods("GET")
	adminRouter.HandleFunc("/sync/exhausted", handlers.ClearExhausted).Methods("DELETE")
	adminRouter.HandleFunc("/sync/token", handlers.SaveRemoteToken).Methods("PUT")
}
