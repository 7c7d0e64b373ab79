package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mission-board-system/handlers"
	"mission-board-system/middleware"
	"mission-board-system/models"
	"mission-board-system/services"
	"mission-board-system/store"
	"mission-board-system/utils"
	"mission-board-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Mission{},
		&models.Claim{},
		&models.UserMirror{},
		&models.LeaderboardEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	st := store.NewGormStore(db)

	missionService := services.NewMissionService(st)
	claimService := services.NewClaimService(st)
	statsService := services.NewStatsService(st)
	leaderboardService := services.NewLeaderboardService(st, statsService)

	// --- Auth service profile mirror ---
	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("MISSION_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("MISSION_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewUserSyncWorker(st, authServiceURL, "/api/v1/public/profiles", serviceToken, 1*time.Minute)
	syncWorker.Start(ctx)

	leaderboardService.StartLeaderboardScheduler(1 * time.Minute)

	// Claims export is optional — only when object storage is configured
	if os.Getenv("S3_EXPORT_BUCKET") != "" {
		if err := utils.InitS3(); err != nil {
			log.Fatal("failed to initialize S3 client:", err)
		}
		workers.NewExportWorker(st).Start(24 * time.Hour)
		log.Println("✅ Claims export scheduled (daily)")
	} else {
		log.Println("⚠️  S3_EXPORT_BUCKET not set — claims export disabled")
	}

	handlers.SetupMissionRoutes(app, missionService, claimService)
	handlers.SetupUserRoutes(app, statsService, leaderboardService, claimService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ User Sync Worker running")
	log.Println("✅ Leaderboard refresh running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
