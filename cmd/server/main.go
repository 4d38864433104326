package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/project-workflow/internal/config"   // Internal config loader
	"github.com/iliyamo/project-workflow/internal/database" // MySQL connection pool
	"github.com/iliyamo/project-workflow/internal/handler"  // HTTP handlers
	"github.com/iliyamo/project-workflow/internal/identity" // identity provider client + resolver
	"github.com/iliyamo/project-workflow/internal/mailer"   // best-effort SMTP sender
	"github.com/iliyamo/project-workflow/internal/middleware"
	"github.com/iliyamo/project-workflow/internal/queue" // task event consumer
	"github.com/iliyamo/project-workflow/internal/repository"
	"github.com/iliyamo/project-workflow/internal/router" // route registration
	queue_publisher "github.com/iliyamo/project-workflow/internal/service"
	"github.com/iliyamo/project-workflow/internal/storage" // uploaded document store
)

func main() {
	// Populate the environment from .env when present; in deployed
	// environments the variables come from the platform and the file is
	// simply absent.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config, fatal on missing vars

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  A nil client
	// disables both; the API itself keeps working.
	rdb := config.NewRedisClient()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	phases := repository.NewPhaseRepo(db)
	templates := repository.NewTemplateRepo(db)
	projects := repository.NewProjectRepo(db)
	tasks := repository.NewTaskRepo(db)
	statusLogs := repository.NewStatusLogRepo(db)
	documents := repository.NewDocumentRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Identity provider integration: the REST client reads the signed-in
	// account, the resolver turns group membership into a stored profile.
	idp := identity.NewClient(cfg.IDPBaseURL)
	resolver := identity.NewResolver(idp, users)

	// Uploaded documents live on local disk and are served under /uploads.
	store := storage.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL)

	// Outgoing mail is optional; a nil mailer silently skips sending.
	mail, err := mailer.New(cfg.EmailConnStr, cfg.EmailSender)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(cfg, idp, resolver, users, tokens)
	registryHandler := handler.NewRegistryHandler(phases, templates)
	projectHandler := handler.NewProjectHandler(projects, templates, users)
	taskHandler := handler.NewTaskHandler(tasks, statusLogs, documents, store,
		projects, users, notifications, queue_publisher.PublishTaskEvent)
	notificationHandler := handler.NewNotificationHandler(notifications)
	userHandler := handler.NewUserHandler(users)

	// The consumer drains task events into the activity log and relays
	// best-effort emails.  It reconnects on its own; a hard failure only
	// disables the relay.
	go func() {
		if err := queue.StartTaskEventConsumer(mail); err != nil {
			log.Printf("task event consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	var cacheMW, limitMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		limitMW = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}

	router.RegisterRoutes(e) // health check
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, limitMW)
	router.RegisterWorkflow(e, projectHandler, taskHandler, notificationHandler, cfg.JWTSecret, cacheMW)
	router.RegisterRegistry(e, registryHandler, userHandler, cfg.JWTSecret)
	router.RegisterCatalog(e, registryHandler, cfg.JWTSecret, cacheMW)

	// Stored documents are public by URL; the unguessable file keys are the
	// access control, matching how the links are shared in notifications.
	e.Static("/uploads", cfg.StorageDir)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
