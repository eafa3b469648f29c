package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/muddihilm/socapp/internal/graph"
	"github.com/muddihilm/socapp/internal/handlers"
	"github.com/muddihilm/socapp/internal/jwt"
	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/mailer"
	"github.com/muddihilm/socapp/internal/middlewares"
	"github.com/muddihilm/socapp/internal/repositories"
	"github.com/muddihilm/socapp/internal/services"
	"github.com/muddihilm/socapp/internal/storage"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title socapp API
// @version 1.0.0
// @description Social backend: identity with email verification, posts, likes and comments over a graph store
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, baseURL, logLevel,
		neoURI, neoUser, neoPassword, neoDatabase,
		redisHost, redisPort, redisDB, redisPassword, resendIntervalSec,
		mailDriver, smtpHost, smtpPort, smtpUser, smtpPassword, smtpFrom,
		kafkaBroker, kafkaTopic,
		uploadsDir,
		jwtSecret, jwtExp,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, baseURL, logLevel,
		neoURI, neoUser, neoPassword, neoDatabase,
		redisHost, redisPort, redisDB, redisPassword, resendIntervalSec,
		mailDriver, smtpHost, smtpPort, smtpUser, smtpPassword, smtpFrom,
		kafkaBroker, kafkaTopic,
		uploadsDir,
		jwtSecret, jwtExp,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, graph store, Redis, mail, storage and JWT configuration.
func parseConfig(path string) (
	appHost, appPort, baseURL, logLevel string,
	neoURI, neoUser, neoPassword, neoDatabase string,
	redisHost string, redisPort, redisDB int, redisPassword string, resendIntervalSec int,
	mailDriver, smtpHost, smtpPort, smtpUser, smtpPassword, smtpFrom string,
	kafkaBroker, kafkaTopic string,
	uploadsDir string,
	jwtSecretKey string, jwtExpSecond int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	baseURL = getEnv("APP_BASE_URL", fmt.Sprintf("http://%s:%s", appHost, appPort))
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// Neo4j config
	neoURI = getEnv("NEO4J_URI", "bolt://localhost:7687")
	neoUser = getEnv("NEO4J_USER", "neo4j")
	neoPassword = getEnv("NEO4J_PASSWORD", "password")
	neoDatabase = getEnv("NEO4J_DATABASE", "neo4j")

	// Redis config
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if resendIntervalSec, err = strconv.Atoi(getEnv("RESEND_INTERVAL_SECOND", "60")); err != nil {
		return
	}

	// Mail config
	mailDriver = getEnv("MAIL_DRIVER", "smtp")
	smtpHost = getEnv("SMTP_HOST", "localhost")
	smtpPort = getEnv("SMTP_PORT", "587")
	smtpUser = getEnv("SMTP_USERNAME", "")
	smtpPassword = getEnv("SMTP_PASSWORD", "")
	smtpFrom = getEnv("SMTP_FROM", "no-reply@socapp.local")
	kafkaBroker = getEnv("KAFKA_BROKER", "localhost:9092")
	kafkaTopic = getEnv("KAFKA_TOPIC", "verification-emails")

	// Upload storage config
	uploadsDir = getEnv("UPLOADS_DIR", "uploads")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}

	return
}

// run initializes the logger, graph store, Redis, mail dispatch, and HTTP
// server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context,
	appHost, appPort, baseURL, logLevel string,
	neoURI, neoUser, neoPassword, neoDatabase string,
	redisHost string, redisPort, redisDB int, redisPassword string, resendIntervalSec int,
	mailDriver, smtpHost, smtpPort, smtpUser, smtpPassword, smtpFrom string,
	kafkaBroker, kafkaTopic string,
	uploadsDir string,
	jwtSecretKey string, jwtExpSecond int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to Neo4j
	logger.Log.Infof("Connecting to Neo4j: %s", neoURI)
	store, err := graph.New(ctx, neoURI, neoUser, neoPassword, neoDatabase)
	if err != nil {
		logger.Log.Errorw("Neo4j connection error", "error", err)
		return err
	}
	defer store.Close(ctx)

	if err := store.EnsureConstraints(ctx); err != nil {
		logger.Log.Errorw("failed to ensure graph constraints", "error", err)
		return err
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password: redisPassword,
		DB:       redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Errorw("Redis connection error", "error", err)
		return err
	}
	defer rdb.Close()

	// Mail dispatch: direct SMTP by default, Kafka topic for an external
	// consumer when configured.
	var sender mailer.Sender
	switch mailDriver {
	case "kafka":
		kafkaWriter := &kafka.Writer{
			Addr:     kafka.TCP(kafkaBroker),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kafkaWriter.Close()
		sender = mailer.NewKafkaSender(kafkaWriter)
	default:
		sender = mailer.NewSMTPSender(smtpHost, smtpPort, smtpUser, smtpPassword, smtpFrom)
	}
	mailQueue := mailer.NewQueue(sender, 64)
	defer mailQueue.Close()

	// Upload storage
	files, err := storage.NewLocalFileStorage(uploadsDir, baseURL)
	if err != nil {
		logger.Log.Errorw("failed to initialize upload storage", "error", err)
		return err
	}

	// Initialize JWT service
	jwtSvc := jwt.New(jwtSecretKey, time.Duration(jwtExpSecond)*time.Second)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(store)
	userWriteRepo := repositories.NewUserWriteRepository(store)
	postReadRepo := repositories.NewPostReadRepository(store)
	postWriteRepo := repositories.NewPostWriteRepository(store)
	resendLimiter := repositories.NewResendLimiterRepository(rdb, time.Duration(resendIntervalSec)*time.Second)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, jwtSvc, mailQueue, resendLimiter, baseURL)
	postService := services.NewPostService(postReadRepo, postWriteRepo, files)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	verifyEmailHandler := handlers.NewVerifyEmailHandler(authService)
	resendHandler := handlers.NewResendVerificationHandler(authService)
	meHandler := handlers.NewMeHandler()
	createPostHandler := handlers.NewCreatePostHandler(postService)
	updatePostHandler := handlers.NewUpdatePostHandler(postService)
	deletePostHandler := handlers.NewDeletePostHandler(postService)
	likePostHandler := handlers.NewLikePostHandler(postService)
	listPostsHandler := handlers.NewListPostsHandler(postService)
	getPostHandler := handlers.NewGetPostHandler(postService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	authMiddleware := middlewares.AuthMiddleware(jwtSvc, userReadRepo)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", registerHandler)
		r.Get("/verify-email", verifyEmailHandler)
		r.Post("/resend-verification", resendHandler)
		r.Post("/login", loginHandler)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/users/me", meHandler)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", listPostsHandler)
		r.Get("/{id}", getPostHandler)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", createPostHandler)
			r.Put("/{id}", updatePostHandler)
			r.Delete("/{id}", deletePostHandler)
			r.Post("/{id}/like", likePostHandler)
		})
	})

	// Saved uploads are served back from the uploads dir
	uploadsFS := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
	r.Get("/uploads/*", uploadsFS.ServeHTTP)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
