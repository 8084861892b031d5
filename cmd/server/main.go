package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "speakpost/configs"
	"speakpost/internal/api/handlers"
	"speakpost/internal/api/middleware"
	job "speakpost/internal/jobs"
	"speakpost/internal/queue"
	"speakpost/internal/repository"
	"speakpost/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	recordingRepo := repository.NewRecordingRepository(db)
	postRepo := repository.NewPostRepository(db)
	scheduledPostRepo := repository.NewScheduledPostRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo, connectionRepo, subscriptionRepo)
	storageService := service.NewStorageService(*cfg)
	recordingService := service.NewRecordingService(recordingRepo, storageService)
	transcriptionService := service.NewTranscriptionService(*cfg, storageService)
	generationService := service.NewGenerationService(*cfg)
	pipelineService := service.NewPipelineService(recordingRepo, postRepo, transcriptionService, generationService)
	linkedinService := service.NewLinkedInService(*cfg, connectionRepo)
	tokenService := service.NewTokenService(*cfg, connectionRepo, linkedinService)
	postService := service.NewPostService(db, postRepo, scheduledPostRepo, connectionRepo, tokenService, linkedinService)
	subscriptionService := service.NewSubscriptionService(*cfg, userRepo, subscriptionRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	linkedin := handlers.NewLinkedInHandler(*cfg, linkedinService)
	app.Get("/auth/linkedin", authMiddleware.AuthMiddleware(), linkedin.Connect)
	app.Get("/auth/linkedin/callback", authMiddleware.AuthMiddleware(), linkedin.Callback)

	publishJob := job.NewPublishJob(scheduledPostRepo, postRepo, connectionRepo, tokenService, linkedinService)

	cronHandler := handlers.NewCronHandler(*cfg, publishJob)
	app.Get("/cron/publish-scheduled", cronHandler.PublishScheduled)

	payment := handlers.NewPaymentHandler(*cfg, subscriptionService)
	app.Post("/webhook/payments", payment.PaymentWebhook)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.AccountInfo)

	recording := handlers.NewRecordingHandler(recordingService, client)
	api.Post("/recordings/create", recording.CreateRecording)
	api.Get("/recordings", recording.ListRecordings)
	api.Post("/recordings/remove", recording.RemoveRecording)

	post := handlers.NewPostHandler(postService)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)
	api.Get("/schedules", post.ListSchedules)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Post("/posts/schedule/cancel", post.CancelSchedule)
	api.Post("/posts/publish", post.PublishPost)

	api.Post("/linkedin/disconnect", linkedin.Disconnect)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(connectionRepo, tokenService)

	//queue
	queueW := queue.NewQueue(pipelineService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h01m00s", publishJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeTranscribeRecording, queueW.HandleTranscribeRecordingTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
