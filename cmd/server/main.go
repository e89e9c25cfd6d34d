package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classquest/internal/config"
	"classquest/internal/database"
	"classquest/internal/gamify"
	"classquest/internal/handlers"
	"classquest/internal/repository"
	"classquest/internal/security"
	"classquest/internal/service"
	"classquest/internal/timewindow"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load the gamification rule set
	rules, err := gamify.LoadConfig(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Build the cadence calculator
	calc, err := timewindow.New(cfg.Timezone, cfg.DailySpawnTime, cfg.WeeklyEvalDay, cfg.WeeklyEvalTime, cfg.WeekEndDay)
	if err != nil {
		log.Fatalf("Failed to build time calculator: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	worldRepo := repository.NewWorldRepository(db)
	ledgerRepo := repository.NewXpEventRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	dailyRepo := repository.NewDailyEventRepository(db)
	weeklyRepo := repository.NewWeeklyResultRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionDuration)
	rewardService := service.NewRewardService(worldRepo, ledgerRepo, rewardRepo, calc, rules)
	worldService := service.NewWorldService(worldRepo, rewardRepo, dailyRepo, weeklyRepo, classroomRepo, ledgerRepo, rewardService, calc, rules)
	dailyService := service.NewDailyService(worldRepo, dailyRepo, rewardService, calc, rules)
	weeklyService := service.NewWeeklyService(worldRepo, weeklyRepo, dailyRepo, attendanceRepo, assignmentRepo, userRepo, classroomRepo, rewardService, emailService, calc, rules)
	schedulerService := service.NewSchedulerService(worldRepo, dailyService, weeklyService, cfg.TickBatchSize)
	classroomService := service.NewClassroomService(classroomRepo, attendanceRepo, assignmentRepo)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService, emailService)
	worldHandler := handlers.NewWorldHandler(worldService, rewardService, dailyService, classroomService)
	classroomHandler := handlers.NewClassroomHandler(classroomService, rewardService, worldService)
	adminHandler := handlers.NewAdminHandler(schedulerService)

	loginLimiter := security.NewRateLimiter(10, time.Minute)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", adminHandler.Health)

	// Auth routes
	mux.Handle("POST /api/auth/register", loginLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))

	// Classroom routes
	mux.HandleFunc("POST /api/classrooms", middleware.RequireTeacher(classroomHandler.Create))
	mux.HandleFunc("GET /api/classrooms", middleware.RequireTeacher(classroomHandler.List))
	mux.HandleFunc("POST /api/classrooms/join", middleware.RequireAuth(classroomHandler.Join))
	mux.HandleFunc("GET /api/classrooms/{id}/roster", middleware.RequireTeacher(classroomHandler.Roster))
	mux.HandleFunc("POST /api/classrooms/{id}/class-days", middleware.RequireTeacher(classroomHandler.AddClassDay))
	mux.HandleFunc("POST /api/classrooms/{id}/attendance", middleware.RequireTeacher(classroomHandler.RecordAttendance))
	mux.HandleFunc("POST /api/classrooms/{id}/assignments", middleware.RequireTeacher(classroomHandler.CreateAssignment))
	mux.HandleFunc("GET /api/classrooms/{id}/assignments", middleware.RequireAuth(classroomHandler.ListAssignments))
	mux.HandleFunc("POST /api/classrooms/{id}/assignments/{assignmentId}/submit", middleware.RequireAuth(classroomHandler.SubmitAssignment))

	// World routes
	mux.HandleFunc("GET /api/classrooms/{id}/world", middleware.RequireAuth(worldHandler.Snapshot))
	mux.HandleFunc("POST /api/classrooms/{id}/world/login", middleware.RequireAuth(worldHandler.RecordLogin))
	mux.HandleFunc("POST /api/classrooms/{id}/world/daily/claim", middleware.RequireAuth(worldHandler.ClaimDaily))
	mux.HandleFunc("PUT /api/classrooms/{id}/world/overlay", middleware.RequireAuth(worldHandler.SetOverlay))
	mux.HandleFunc("PUT /api/classrooms/{id}/world/image", middleware.RequireAuth(worldHandler.SelectImage))
	mux.HandleFunc("GET /api/classrooms/{id}/world/ledger", middleware.RequireAuth(worldHandler.Ledger))

	// Teacher grant routes
	mux.HandleFunc("POST /api/classrooms/{id}/students/{userId}/xp", middleware.RequireTeacher(worldHandler.GrantXp))
	mux.HandleFunc("POST /api/classrooms/{id}/students/{userId}/achievements", middleware.RequireTeacher(worldHandler.GrantAchievements))

	// Admin routes
	mux.HandleFunc("POST /api/admin/tick", middleware.RequireTeacher(adminHandler.Tick))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the cadence scheduler
	stop := make(chan struct{})
	go schedulerService.Run(cfg.TickInterval, stop)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	close(stop)
	log.Println("Server shutting down...")
}
