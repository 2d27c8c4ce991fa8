package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tennis-elo-service/elo"
	"tennis-elo-service/handlers"
	"tennis-elo-service/pipeline"
	"tennis-elo-service/services"
	"tennis-elo-service/store"
	"tennis-elo-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	updateOnly := flag.Bool("update", false, "run a one-shot ratings update and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	st := store.NewGormStore(db)
	if err := st.AutoMigrate(); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureDataDir("data"); err != nil {
		log.Fatal("failed to ensure data dir:", err)
	}

	calc := elo.NewCalculator(envFloat("ELO_K_FACTOR"), envFloat("ELO_INITIAL_RATING"))
	engine := elo.NewEngine(st, calc)

	datasetCfg := pipeline.DatasetConfig{
		Source:        os.Getenv("DATASET_SOURCE"),
		Schema:        os.Getenv("DATASET_SCHEMA"),
		DataDir:       "data",
		KaggleUser:    os.Getenv("KAGGLE_USERNAME"),
		KaggleKey:     os.Getenv("KAGGLE_KEY"),
		KaggleDataset: os.Getenv("KAGGLE_DATASET"),
		S3Key:         os.Getenv("DATASET_S3_KEY"),
	}
	if datasetCfg.Source == pipeline.SourceS3 {
		if err := utils.InitDatasetBucket(); err != nil {
			log.Fatal("failed to initialize dataset bucket:", err)
		}
	}

	rankingService := services.NewRankingService(st)
	updateService := services.NewUpdateService(engine, datasetCfg)

	if *updateOnly {
		processed, err := updateService.RunUpdate(context.Background())
		if err != nil {
			log.Fatalf("❌ Update failed: %v", err)
		}
		log.Printf("✅ Update finished: %d matches processed", processed)
		return
	}

	app := fiber.New()

	// CORS for the ranking frontends.
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:5173")
		allowedOriginsEnv = "http://localhost:5173"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOriginsString,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.SetupRankingRoutes(app, rankingService, updateService)

	scheduleHours := 24
	if raw := os.Getenv("UPDATE_SCHEDULE_HOURS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			scheduleHours = n
		}
	}
	updateService.StartUpdateScheduler(scheduleHours)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if strings.ToLower(os.Getenv("RUN_UPDATE_ON_START")) == "true" {
		go func() {
			if _, err := updateService.RunUpdate(ctx); err != nil {
				log.Printf("❌ Startup update failed: %v", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)
	if scheduleHours > 0 {
		log.Printf("✅ Ratings update scheduled every %dh", scheduleHours)
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}

func envFloat(key string) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️  Ignoring invalid %s=%q", key, raw)
		return 0
	}
	return f
}
