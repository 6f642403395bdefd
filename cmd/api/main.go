// cmd/api/main.go
// SkillBarter API server entry point

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillbarter/backend/internal/auth"
	"github.com/skillbarter/backend/internal/chat"
	"github.com/skillbarter/backend/internal/common/database"
	"github.com/skillbarter/backend/internal/community"
	"github.com/skillbarter/backend/internal/config"
	"github.com/skillbarter/backend/internal/matching"
	"github.com/skillbarter/backend/internal/notification"
	"github.com/skillbarter/backend/internal/skills"
	"github.com/skillbarter/backend/internal/users"
)

func main() {
	log.Println("🚀 Starting SkillBarter API...")

	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Database
	log.Println("📦 Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("🔨 Running migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Redis backs access token revocation; the API degrades without it
	log.Println("🔌 Connecting to Redis...")
	var redisClient *redis.Client
	redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, token revocation disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Avatar storage
	var uploader users.Uploader
	if cfg.UseS3 {
		uploader, err = users.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("❌ Failed to initialize S3 uploader: %v", err)
		}
		log.Printf("☁️  Avatar uploads: S3 bucket %s", cfg.S3Bucket)
	} else {
		uploader, err = users.NewLocalUploader(cfg.LocalUploadDir, cfg.BaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to initialize local uploader: %v", err)
		}
		log.Printf("💾 Avatar uploads: local directory %s", cfg.LocalUploadDir)
	}

	// Notifications
	var emailProvider notification.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = notification.NewSendGridProvider(cfg.SendGridAPIKey, cfg.EmailFrom, "SkillBarter")
		log.Println("📧 Email provider: SendGrid")
	default:
		emailProvider = notification.NewMockEmailProvider()
		log.Println("📧 Email provider: mock")
	}
	var smsProvider notification.SMSProvider
	switch cfg.SMSProvider {
	case "twilio":
		smsProvider = notification.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Println("📱 SMS provider: Twilio")
	default:
		smsProvider = notification.NewMockSMSProvider()
		log.Println("📱 SMS provider: mock")
	}
	notifier := notification.NewService(emailProvider, smsProvider, cfg.BaseURL)

	// Repositories
	userRepo := users.NewPostgresRepository(db)
	authRepo := auth.NewPostgresRepository(db)
	matchRepo := matching.NewPostgresRepository(db)
	chatRepo := chat.NewPostgresRepository(db)
	communityRepo := community.NewPostgresRepository(db)
	skillRepo := skills.NewPostgresRepository(db)

	// Matching pipeline
	weights := matching.Weights{
		SkillMatch:   cfg.WeightSkillMatch,
		Location:     cfg.WeightLocation,
		Proficiency:  cfg.WeightProficiency,
		Rating:       cfg.WeightRating,
		Availability: cfg.WeightAvailability,
	}
	engine := matching.NewEngine(weights)
	discovery := matching.NewDiscovery(userRepo, engine, cfg.CandidatePoolSize)
	matchMetrics := matching.NewMetrics()

	// Services
	userService := users.NewService(userRepo, uploader)
	authService := auth.NewService(authRepo, userRepo, redisClient, cfg)
	matchService := matching.NewService(matchRepo, discovery, engine, userRepo, notifier, matchMetrics, cfg.DefaultMatchLimit)
	communityService := community.NewService(communityRepo)
	skillService := skills.NewService(skillRepo, userRepo)

	// Chat hub
	hub := chat.NewHub()
	go hub.Run()
	chatService := chat.NewService(chatRepo, matchService, hub)

	// Handlers
	authHandlers := auth.NewHandlers(authService)
	userHandlers := users.NewHandlers(userService)
	matchHandlers := matching.NewHandlers(matchService)
	chatHandlers := chat.NewHandlers(chatService, hub, cfg.JWTSecret)
	communityHandlers := community.NewHandlers(communityService)
	skillHandlers := skills.NewHandlers(skillService)

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, redisClient)

	// Router
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	router.HandleFunc("/health", healthHandler(db)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	api := router.PathPrefix("/api").Subrouter()
	auth.RegisterRoutes(api, authHandlers, authMiddleware.Authenticate)
	users.RegisterRoutes(api, userHandlers, authMiddleware.Authenticate)
	matching.RegisterRoutes(api, matchHandlers, authMiddleware.Authenticate)
	chat.RegisterRoutes(api, chatHandlers, authMiddleware.Authenticate)
	community.RegisterRoutes(api, communityHandlers, authMiddleware.Authenticate)
	skills.RegisterRoutes(api, skillHandlers, authMiddleware.Authenticate)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✅ Server listening on port %s (%s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	log.Println("👋 Server stopped")
}

// healthHandler reports liveness and database reachability
func healthHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"degraded","database":"down"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}
}

// loggingMiddleware logs method, path, status and duration per request
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// corsMiddleware allows cross-origin requests from the web client
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// runMigrations creates tables if they do not exist
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			city VARCHAR(100) NOT NULL DEFAULT '',
			state VARCHAR(100) NOT NULL DEFAULT '',
			skills_offered JSONB NOT NULL DEFAULT '[]',
			skills_wanted JSONB NOT NULL DEFAULT '[]',
			rating_average DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			skill_points INTEGER NOT NULL DEFAULT 0,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_skills_offered ON users USING GIN (skills_offered)`,
		`CREATE INDEX IF NOT EXISTS idx_users_skills_wanted ON users USING GIN (skills_wanted)`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_active ON users (last_active_at DESC)`,

		`CREATE TABLE IF NOT EXISTS skills (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE,
			category VARCHAR(30) NOT NULL,
			description VARCHAR(200) NOT NULL DEFAULT '',
			icon VARCHAR(16) NOT NULL DEFAULT '',
			popularity INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skills_category ON skills (category) WHERE is_active`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			refresh_token_hash VARCHAR(64) NOT NULL UNIQUE,
			user_agent TEXT NOT NULL DEFAULT '',
			ip_address VARCHAR(64) NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ NOT NULL,
			revoked_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions (user_id)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			user_a_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_b_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			initiator_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			score INTEGER NOT NULL DEFAULT 0,
			exchanges JSONB NOT NULL DEFAULT '[]',
			message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_a ON matches (user_a_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_b ON matches (user_b_id, status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_active_pair ON matches (
			LEAST(user_a_id, user_b_id), GREATEST(user_a_id, user_b_id)
		) WHERE status IN ('pending', 'accepted')`,

		`CREATE TABLE IF NOT EXISTS match_sessions (
			id BIGSERIAL PRIMARY KEY,
			match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			scheduled_at TIMESTAMPTZ NOT NULL,
			duration_minutes INTEGER NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
			rating_by_a INTEGER,
			rating_by_b INTEGER,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_sessions_match ON match_sessions (match_id)`,

		`CREATE TABLE IF NOT EXISTS chats (
			id BIGSERIAL PRIMARY KEY,
			match_id BIGINT NOT NULL UNIQUE REFERENCES matches(id) ON DELETE CASCADE,
			user_a_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_b_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_chat ON chat_messages (chat_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_unread ON chat_messages (chat_id) WHERE read_at IS NULL`,

		`CREATE TABLE IF NOT EXISTS communities (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			category VARCHAR(20) NOT NULL DEFAULT 'other',
			skills TEXT[] NOT NULL DEFAULT '{}',
			city VARCHAR(100) NOT NULL DEFAULT '',
			state VARCHAR(100) NOT NULL DEFAULT '',
			is_virtual BOOLEAN NOT NULL DEFAULT FALSE,
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_communities_category ON communities (category) WHERE is_public AND is_active`,

		`CREATE TABLE IF NOT EXISTS community_members (
			community_id BIGINT NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role VARCHAR(20) NOT NULL DEFAULT 'member',
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (community_id, user_id)
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
